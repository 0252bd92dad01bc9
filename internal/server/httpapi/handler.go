package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/server/auth"
	"github.com/dmitrijs2005/lessonbook/internal/server/gate"
	"github.com/dmitrijs2005/lessonbook/internal/server/services"
)

const maxBodyBytes = 1 << 20

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req authapi.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	writePair(w, pair, err)
}

func (s *HTTPServer) registration(w http.ResponseWriter, r *http.Request) {
	var req authapi.RegistrationRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := s.sessions.Registration(r.Context(), req.Email, req.Password, req.Username)
	writePair(w, pair, err)
}

func (s *HTTPServer) issueTokens(w http.ResponseWriter, r *http.Request) {
	var req authapi.IssueTokensRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
	writePair(w, pair, err)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	removed, err := s.sessions.Logout(r.Context(), auth.ExtractBearer(r.Header.Get("Authorization")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authapi.LogoutResponse{Removed: removed})
}

func (s *HTTPServer) profile(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.GetUserIDFromToken(r.Context(), auth.ExtractBearer(r.Header.Get("Authorization")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authapi.ProfileResponse{PrincipalID: id})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, gate.ErrMissingToken)
		return
	}
	writeJSON(w, http.StatusOK, authapi.ProfileResponse{PrincipalID: id})
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, common.ErrInvalidArgument)
		return false
	}
	return true
}

func writePair(w http.ResponseWriter, pair *services.TokenPair, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authapi.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates service and gate errors into HTTP responses.
// Unknown errors become 500 without leaking their text.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenInvalid),
		errors.Is(err, gate.ErrMissingToken):
		code, msg = http.StatusUnauthorized, err.Error()
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
	case errors.Is(err, common.ErrEmailTaken),
		errors.Is(err, common.ErrUsernameTaken),
		errors.Is(err, common.ErrInvalidArgument):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrTokenNotFound), errors.Is(err, common.ErrPrincipalNotFound):
		code, msg = http.StatusNotFound, err.Error()
	}

	writeJSON(w, code, authapi.ErrorResponse{Error: msg})
}
