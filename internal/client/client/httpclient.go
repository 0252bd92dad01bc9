package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/client/session"
	"github.com/dmitrijs2005/lessonbook/internal/common"
)

// HTTPClient talks to the JSON surface of the server.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	session *session.Manager
}

// NewHTTPClient builds a client for baseURL (e.g. "http://127.0.0.1:8080").
// base is the underlying RoundTripper; nil selects http.DefaultTransport.
func NewHTTPClient(baseURL string, m *session.Manager, base http.RoundTripper) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: session.NewTransport(base, m)},
		session: m,
	}
	m.SetRefresher(c.refresh)
	return c
}

func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) (string, string, error) {
	var resp authapi.TokenPairResponse
	err := c.do(ctx, http.MethodPost, "/auth/issueTokens", &authapi.IssueTokensRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			switch se.code {
			case http.StatusNotFound:
				return "", "", common.ErrTokenNotFound
			case http.StatusUnauthorized:
				return "", "", common.ErrTokenInvalid
			}
		}
		return "", "", c.mapError(err)
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password, username string) error {
	var resp authapi.TokenPairResponse
	req := &authapi.RegistrationRequest{Email: email, Password: password, Username: username}
	if err := c.do(ctx, http.MethodPost, "/auth/registration", req, &resp); err != nil {
		return c.mapError(err)
	}
	return c.session.SetTokens(ctx, resp.AccessToken, resp.RefreshToken)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	var resp authapi.TokenPairResponse
	req := &authapi.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return c.mapError(err)
	}
	return c.session.SetTokens(ctx, resp.AccessToken, resp.RefreshToken)
}

func (c *HTTPClient) Logout(ctx context.Context) (int64, error) {
	var resp authapi.LogoutResponse
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, &resp)

	if cerr := c.session.Clear(ctx); cerr != nil && err == nil {
		return 0, cerr
	}
	if err != nil {
		return 0, c.mapError(err)
	}
	return resp.Removed, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (int64, error) {
	var resp authapi.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &resp); err != nil {
		return 0, c.mapError(err)
	}
	return resp.PrincipalID, nil
}

func (c *HTTPClient) Me(ctx context.Context) (int64, error) {
	var resp authapi.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return 0, c.mapError(err)
	}
	return resp.PrincipalID, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// statusError is a non-2xx reply with the server's error text.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.msg)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e authapi.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &statusError{code: resp.StatusCode, msg: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, session.ErrUnauthorized) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrUnexpected) {
		return err
	}

	var se *statusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch se.code {
	case http.StatusUnauthorized:
		if se.msg == common.ErrInvalidCredentials.Error() {
			return common.ErrInvalidCredentials
		}
		return ErrUnauthorized
	case http.StatusBadRequest, http.StatusNotFound:
		return fromMessage(se.msg, se)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("%w: %w", ErrUnexpected, se)
	}
}
