// Package auth mints and verifies the HS256 tokens handed out by the
// session service.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer signs and verifies tokens with a secret fixed at construction.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

// Mint returns a signed access token for the principal valid for validity.
func (i *Issuer) Mint(userID int64, email string, validity time.Duration) (string, error) {
	return i.mint(authapi.KindAccess, userID, email, validity)
}

// MintRefresh returns a signed refresh token. It is only accepted by
// VerifyRefresh.
func (i *Issuer) MintRefresh(userID int64, email string, validity time.Duration) (string, error) {
	return i.mint(authapi.KindRefresh, userID, email, validity)
}

func (i *Issuer) mint(kind string, userID int64, email string, validity time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, authapi.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Kind:   kind,
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(i.secret)
}

// Verify checks signature, algorithm, expiry and that tokenString is an
// access token. It returns common.ErrTokenExpired or common.ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string) (*authapi.Claims, error) {
	return i.parse(tokenString, authapi.KindAccess, jwt.WithTimeFunc(i.now))
}

// VerifyIgnoringExpiry is Verify without the expiry check.
func (i *Issuer) VerifyIgnoringExpiry(tokenString string) (*authapi.Claims, error) {
	return i.parse(tokenString, authapi.KindAccess, jwt.WithoutClaimsValidation())
}

// VerifyRefresh is Verify for refresh tokens.
func (i *Issuer) VerifyRefresh(tokenString string) (*authapi.Claims, error) {
	return i.parse(tokenString, authapi.KindRefresh, jwt.WithTimeFunc(i.now))
}

func (i *Issuer) parse(tokenString, kind string, opts ...jwt.ParserOption) (*authapi.Claims, error) {
	if tokenString == "" {
		return nil, common.ErrTokenInvalid
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parser := jwt.NewParser(opts...)

	claims := &authapi.Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}

	if !token.Valid || claims.Kind != kind || claims.UserID == 0 || claims.Email == "" {
		return nil, common.ErrTokenInvalid
	}

	return claims, nil
}
