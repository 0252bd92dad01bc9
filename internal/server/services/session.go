// Package services contains server-side business logic. This file implements
// SessionService, the only writer of refresh credentials: login,
// registration, rotate-on-use refresh and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	"github.com/dmitrijs2005/lessonbook/internal/server/auth"
	"github.com/dmitrijs2005/lessonbook/internal/server/config"
	"github.com/dmitrijs2005/lessonbook/internal/server/metrics"
	"github.com/dmitrijs2005/lessonbook/internal/server/models"
	"github.com/dmitrijs2005/lessonbook/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService moves a principal between anonymous and authenticated.
// Each principal holds at most one refresh credential; every login,
// registration and refresh replaces it.
type SessionService struct {
	db                           *sqlx.DB
	repomanager                  repomanager.RepositoryManager
	issuer                       *auth.Issuer
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	logger                       logging.Logger
	metrics                      *metrics.Metrics
}

// NewSessionService constructs a SessionService. logger and mx may be nil.
func NewSessionService(db *sqlx.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, cfg *config.Config,
	logger logging.Logger, mx *metrics.Metrics) *SessionService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		issuer:                       issuer,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
		logger:                       logger.With("module", "session"),
		metrics:                      mx,
	}
}

// Login verifies the password and issues a new pair. Unknown email and wrong
// password fail alike with common.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (pair *TokenPair, err error) {
	defer func() { s.metrics.Session("login", err) }()

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "login: lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	pair, err = s.issue(ctx, s.db, user)
	if err != nil {
		return nil, s.internal(ctx, "login: issue tokens", err)
	}

	s.logger.Info(ctx, "login", "user_id", user.ID)
	return pair, nil
}

// Registration creates the principal and its first credential in one
// transaction.
func (s *SessionService) Registration(ctx context.Context, email, password, username string) (pair *TokenPair, err error) {
	defer func() { s.metrics.Session("registration", err) }()

	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return nil, common.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, s.internal(ctx, "registration: hash password", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersTx := s.repomanager.Users(tx)

		if _, err := usersTx.GetUserByEmail(ctx, email); err == nil {
			return common.ErrEmailTaken
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		created, err := usersTx.Create(ctx, &models.User{Email: email, Username: username, PasswordHash: string(hash)})
		if err != nil {
			return err
		}
		user = created

		pair, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, s.internal(ctx, "registration", err)
	}

	s.logger.Info(ctx, "registration", "user_id", user.ID)
	return pair, nil
}

// Refresh consumes refreshToken and returns a new pair. Reusing a consumed
// token fails with common.ErrTokenNotFound. Nothing is deleted unless the
// replacement is stored in the same transaction.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer func() { s.metrics.Session("refresh", err) }()

	if refreshToken == "" {
		return nil, common.ErrTokenNotFound
	}

	stored, user, err := s.repomanager.RefreshTokens(s.db).FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenNotFound
		}
		return nil, s.internal(ctx, "refresh: lookup token", err)
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil || claims.UserID != stored.UserID {
		s.logger.Warn(ctx, "refresh rejected", "user_id", stored.UserID, "error", err)
		return nil, common.ErrTokenInvalid
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.RefreshTokens(tx).DeleteByToken(ctx, refreshToken)
		if err != nil {
			return err
		}
		if n == 0 {
			// rotated concurrently
			return common.ErrTokenNotFound
		}

		pair, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrTokenNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "refresh", err)
	}

	s.logger.Info(ctx, "refresh", "user_id", user.ID)
	return pair, nil
}

// Logout deletes the principal's credential. accessToken must be an access
// token with a valid signature; it may be expired. A second logout removes nothing and
// still succeeds.
func (s *SessionService) Logout(ctx context.Context, accessToken string) (removed int64, err error) {
	defer func() { s.metrics.Session("logout", err) }()

	claims, err := s.issuer.VerifyIgnoringExpiry(accessToken)
	if err != nil {
		return 0, common.ErrTokenInvalid
	}

	removed, err = s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, claims.UserID)
	if err != nil {
		return 0, s.internal(ctx, "logout", err)
	}

	s.logger.Info(ctx, "logout", "user_id", claims.UserID, "removed", removed)
	return removed, nil
}

// GetUserIDFromToken resolves the principal named by an access token. The
// email claim must still belong to the principal the token was minted for.
func (s *SessionService) GetUserIDFromToken(ctx context.Context, token string) (id int64, err error) {
	defer func() { s.metrics.Session("profile", err) }()

	claims, err := s.issuer.VerifyIgnoringExpiry(token)
	if err != nil {
		return 0, common.ErrTokenInvalid
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrPrincipalNotFound
		}
		return 0, s.internal(ctx, "profile: lookup user", err)
	}
	if user.ID != claims.UserID {
		return 0, common.ErrPrincipalNotFound
	}
	return user.ID, nil
}

// --- helpers below ---

// issue mints a pair for user and stores its refresh token through db,
// which is either the pool or the caller's transaction.
func (s *SessionService) issue(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenPair, error) {
	access, err := s.issuer.Mint(user.ID, user.Email, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := s.issuer.MintRefresh(user.ID, user.Email, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	if _, err := s.repomanager.RefreshTokens(db).UpsertForUser(ctx, user.ID, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SessionService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op, "error", err)
	return fmt.Errorf("%s: %w", op, common.ErrorInternal)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
