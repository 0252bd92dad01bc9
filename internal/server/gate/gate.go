package gate

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/server/auth"
	"github.com/dmitrijs2005/lessonbook/internal/server/metrics"
)

// ErrMissingToken is returned for protected routes called without a token.
var ErrMissingToken = errors.New("missing token")

// Verifier checks an access token and rejects refresh tokens.
// *auth.Issuer implements it.
type Verifier interface {
	Verify(token string) (*authapi.Claims, error)
}

// Gate applies a Policy to incoming requests.
type Gate struct {
	policy   *Policy
	verifier Verifier
	metrics  *metrics.Metrics
}

func New(policy *Policy, verifier Verifier, mx *metrics.Metrics) *Gate {
	return &Gate{policy: policy, verifier: verifier, metrics: mx}
}

func (g *Gate) Policy() *Policy { return g.policy }

// Admit lets public routes through untouched. For protected routes it
// verifies the bearer token in authorization and returns a context carrying
// the principal id. Rejections are ErrMissingToken, common.ErrTokenExpired
// or common.ErrTokenInvalid.
func (g *Gate) Admit(ctx context.Context, route, authorization string) (context.Context, error) {
	access := g.policy.Access(route)
	if access == authapi.Public {
		g.metrics.Gate(access.String(), true)
		return ctx, nil
	}

	token := auth.ExtractBearer(authorization)
	if token == "" {
		g.metrics.Gate(access.String(), false)
		return ctx, ErrMissingToken
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.metrics.Gate(access.String(), false)
		return ctx, err
	}

	g.metrics.Gate(access.String(), true)
	return WithUserID(ctx, claims.UserID), nil
}

type ctxKey struct{}

// WithUserID attaches the authenticated principal id to ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserIDFromContext returns the principal attached by the gate.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}
