// Package models holds the rows persisted by the server.
package models

// User is a principal. Rows are immutable after registration.
type User struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}
