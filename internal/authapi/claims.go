package authapi

import (
	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token kinds, carried in the typ claim. An access token is never accepted
// where a refresh token is expected, and the other way round.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims carries the principal id and email on top of the registered
// claims. Every minted token gets a fresh jti, so two tokens minted for the
// same principal within one second still differ.
type Claims struct {
	jwt.RegisteredClaims
	Kind   string `json:"typ"`
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// DecodeUnchecked reads the claims without verifying the signature or
// expiry. Only for display purposes on the client, which has no secret.
func DecodeUnchecked(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, common.ErrTokenInvalid
	}
	if claims.UserID == 0 {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}
