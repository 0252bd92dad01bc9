package metadata

import "context"

// RefreshTokenKey is the metadata key holding the session's refresh token.
const RefreshTokenKey = "refresh_token"

// TokenStore keeps the refresh token in a Repository.
type TokenStore struct {
	repo Repository
}

func NewTokenStore(repo Repository) *TokenStore {
	return &TokenStore{repo: repo}
}

func (s *TokenStore) Get(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *TokenStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	return s.repo.Set(ctx, RefreshTokenKey, []byte(token))
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, RefreshTokenKey)
}
