package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/dmitrijs2005/lessonbook/internal/server/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLRepository implements Repository over dbx.DBTX
// (satisfied by *sqlx.DB or *sqlx.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) FindByUser(ctx context.Context, userID int64) (*models.RefreshToken, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, token
		FROM refresh_tokens
		WHERE user_id = ?
	`)

	rt := &models.RefreshToken{}
	if err := sqlx.GetContext(ctx, r.db, rt, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

func (r *SQLRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, *models.User, error) {
	query := r.db.Rebind(`
		SELECT rt.id, rt.user_id, rt.token, u.id, u.email, u.username, u.password_hash
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.token = ?
	`)

	rt := &models.RefreshToken{}
	user := &models.User{}
	err := r.db.QueryRowxContext(ctx, query, token).Scan(
		&rt.ID, &rt.UserID, &rt.Token,
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	return rt, user, nil
}

func (r *SQLRepository) UpsertForUser(ctx context.Context, userID int64, token string) (*models.RefreshToken, error) {
	query := r.db.Rebind(`
		INSERT INTO refresh_tokens (id, user_id, token)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token
		RETURNING id, user_id, token
	`)

	rt := &models.RefreshToken{}
	if err := sqlx.GetContext(ctx, r.db, rt, query, uuid.NewString(), userID, token); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	query := r.db.Rebind(`
		DELETE FROM refresh_tokens
		WHERE user_id = ?
	`)
	return r.exec(ctx, query, userID)
}

func (r *SQLRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	query := r.db.Rebind(`
		DELETE FROM refresh_tokens
		WHERE token = ?
	`)
	return r.exec(ctx, query, token)
}

func (r *SQLRepository) exec(ctx context.Context, query string, arg any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
