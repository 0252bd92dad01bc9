package models

// RefreshToken is the single live refresh credential of a principal.
type RefreshToken struct {
	ID     string `db:"id"`
	UserID int64  `db:"user_id"`
	Token  string `db:"token"`
}
