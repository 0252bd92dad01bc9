package session

import (
	"io"
	"net/http"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/common"
)

// Transport is the http.RoundTripper counterpart of UnaryClientInterceptor.
// A request with a body is retried only when it can be replayed through
// GetBody.
type Transport struct {
	Base    http.RoundTripper
	Manager *Manager
}

func NewTransport(base http.RoundTripper, m *Manager) *Transport {
	return &Transport{Base: base, Manager: m}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.Manager.AccessToken()

	resp, err := t.base().RoundTrip(withBearer(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if authapi.IssuesTokensPath(req.URL.Path) {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	drain(resp)

	fresh, err := t.Manager.Refresh(req.Context(), token)
	if err != nil {
		return nil, err
	}

	retry := withBearer(req, fresh)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return t.base().RoundTrip(retry)
}

func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Del(common.AuthorizationHeaderName)
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return r
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
