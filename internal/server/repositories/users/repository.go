// Package users declares the principal store used by the session service.
package users

import (
	"context"

	"github.com/dmitrijs2005/lessonbook/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in its ID. A duplicate email or
	// username yields common.ErrEmailTaken or common.ErrUsernameTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
