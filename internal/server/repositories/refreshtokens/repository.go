// Package refreshtokens declares the credential store: at most one refresh
// token row per principal.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/lessonbook/internal/server/models"
)

// Repository manages the refresh credential of each principal.
type Repository interface {
	// FindByUser returns the principal's credential or common.ErrorNotFound.
	FindByUser(ctx context.Context, userID int64) (*models.RefreshToken, error)

	// FindByToken returns the credential holding token together with its
	// owner, or common.ErrorNotFound.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, *models.User, error)

	// UpsertForUser stores token as the principal's only credential,
	// replacing any existing one in a single statement.
	UpsertForUser(ctx context.Context, userID int64, token string) (*models.RefreshToken, error)

	// DeleteByUser and DeleteByToken report how many rows were removed.
	// Removing nothing is not an error.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
}
