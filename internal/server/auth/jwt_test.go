package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify_Success(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("super-secret"))

	tok, err := iss.Mint(42, "a@b.com", time.Hour)
	require.NoError(t, err)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, authapi.KindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
}

func TestMint_DistinctWithinSameSecond(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"))
	fixed := time.Unix(1_700_000_000, 0)
	iss.now = func() time.Time { return fixed }

	a, err := iss.Mint(1, "a@b.com", time.Hour)
	require.NoError(t, err)
	b, err := iss.Mint(1, "a@b.com", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("secret"))
	tok, err := iss.Mint(1, "a@b.com", -time.Second)
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerifyIgnoringExpiry(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("secret"))
	tok, err := iss.Mint(7, "a@b.com", -time.Minute)
	require.NoError(t, err)

	claims, err := iss.VerifyIgnoringExpiry(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	_, err = NewIssuer([]byte("other")).VerifyIgnoringExpiry(tok)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer([]byte("right-secret")).Mint(2, "a@b.com", time.Hour)
	require.NoError(t, err)

	_, err = NewIssuer([]byte("wrong-secret")).Verify(tok)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"))
	for _, in := range []string{"", "not.a.jwt", "garbage"} {
		_, err := iss.Verify(in)
		require.ErrorIs(t, err, common.ErrTokenInvalid, "input %q", in)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, authapi.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Kind:             authapi.KindAccess,
		UserID:           1,
		Email:            "a@b.com",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewIssuer(secret).Verify(tok)
	require.ErrorIs(t, err, common.ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, authapi.Claims{Kind: authapi.KindAccess, UserID: 1, Email: "a@b.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer(secret).Verify(none)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_MissingIdentityClaims(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authapi.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Kind:             authapi.KindAccess,
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewIssuer(secret).Verify(tok)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_TokenKinds(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"))
	access, err := iss.Mint(5, "a@b.com", time.Hour)
	require.NoError(t, err)
	refresh, err := iss.MintRefresh(5, "a@b.com", time.Hour)
	require.NoError(t, err)

	claims, err := iss.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, authapi.KindRefresh, claims.Kind)
	assert.Equal(t, int64(5), claims.UserID)

	_, err = iss.Verify(refresh)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = iss.VerifyIgnoringExpiry(refresh)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = iss.VerifyRefresh(access)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_MissingKind(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authapi.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           1,
		Email:            "a@b.com",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewIssuer(secret).Verify(tok)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = NewIssuer(secret).VerifyRefresh(tok)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerifyRefresh_Expired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"))
	tok, err := iss.MintRefresh(1, "a@b.com", -time.Second)
	require.NoError(t, err)

	_, err = iss.VerifyRefresh(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}
