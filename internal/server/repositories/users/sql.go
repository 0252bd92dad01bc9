package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/dmitrijs2005/lessonbook/internal/server/models"
	"github.com/jmoiron/sqlx"
)

// SQLRepository serves both Postgres and SQLite; queries are written with
// "?" placeholders and rebound for the handle's driver.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.db.Rebind(
		`INSERT INTO users (email, username, password_hash)
		 VALUES (?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query, user.Email, user.Username, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		if detail, ok := dbx.UniqueViolation(err); ok {
			if strings.Contains(detail, "username") {
				return nil, common.ErrUsernameTaken
			}
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.db.Rebind(
		`SELECT id, email, username, password_hash FROM users
		 WHERE email = ?`)

	return r.get(ctx, query, email)
}

func (r *SQLRepository) get(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
