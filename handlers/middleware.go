package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/satheeshds/fintrack/auth"
	"github.com/satheeshds/fintrack/ledger"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

type ctxKey int

const (
	userIDKey ctxKey = iota
	tokenKey
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// writeFailure maps engine, store and auth errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without details.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, ledger.ErrSameAccount):
		writeError(w, http.StatusBadRequest, ledger.ErrSameAccount.Error())
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, ledger.ErrInvalidAmount.Error())
	case errors.Is(err, ledger.ErrNegativeYears):
		writeError(w, http.StatusBadRequest, ledger.ErrNegativeYears.Error())
	case errors.Is(err, ledger.ErrAccountArchived):
		writeError(w, http.StatusConflict, ledger.ErrAccountArchived.Error())
	case errors.Is(err, ledger.ErrHasHistory):
		writeError(w, http.StatusConflict, ledger.ErrHasHistory.Error()+"; archive it instead")
	case errors.Is(err, ledger.ErrDuplicate):
		writeError(w, http.StatusConflict, resource+" already exists")
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, auth.ErrEmailExists.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sessionToken reads the token from the session cookie or a bearer header.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession is middleware that resolves the session token to its owner
// and rejects the request when there is none.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		userID, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeFailure(w, r, err, "session")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated owner. Only valid behind RequireSession.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
