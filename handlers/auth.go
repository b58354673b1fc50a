package handlers

import (
	"net/http"
	"time"

	"github.com/satheeshds/fintrack/models"
)

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Register creates a user
// @Summary      Register
// @Description  Create a user account. Default income and expense categories are added.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterInput  true  "Registration details"
// @Success      201   {object}  Response{data=models.User}
// @Failure      400   {object}  Response{error=string}
// @Failure      409   {object}  Response{error=string}
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	u, err := h.auth.Register(r.Context(), input)
	if err != nil {
		writeFailure(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login opens a session
// @Summary      Login
// @Description  Exchange email and password for a session token. The token is also set as the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      models.LoginInput  true  "Credentials"
// @Success      200          {object}  Response{data=loginResponse}
// @Failure      400          {object}  Response{error=string}
// @Failure      401          {object}  Response{error=string}
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sess, u, err := h.auth.Login(r.Context(), input)
	if err != nil {
		writeFailure(w, r, err, "user")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u})
}

// Logout ends the current session
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Response{data=map[string]string}
// @Router       /auth/logout [post]
// @Security     SessionToken
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := r.Context().Value(tokenKey).(string)
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeFailure(w, r, err, "session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the current user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Response{data=models.User}
// @Failure      401  {object}  Response{error=string}
// @Router       /auth/me [get]
// @Security     SessionToken
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.CurrentUser(r.Context(), userID(r))
	if err != nil {
		writeFailure(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
