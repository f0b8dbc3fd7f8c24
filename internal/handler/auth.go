package handler

import (
	"log/slog"
	"net/http"

	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/service"
)

// AuthHandler exposes the account endpoints: signup, login, logout, and the
// current user's profile.
//
// The session token travels in an HttpOnly cookie, so profile requests need
// no Authorization header and client-side script can never read the token.
type AuthHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts *service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// setSessionCookie installs the session token. HttpOnly keeps it away from
// script; SameSite=Lax keeps it off cross-site POSTs. Secure is left to the
// deployment's TLS terminator.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleSignup registers an account and logs it straight in.
//
// HTTP: POST /api/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Signup(r.Context(), req.Email, req.Password, req.Username, r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin authenticates an email/password pair.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout expires the session record and clears the cookie. The cookie
// is cleared even when the session lookup fails; logout must always leave
// the browser signed out.
//
// HTTP: POST /api/auth/logout
// Auth: required
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if ok {
		if err := h.accounts.Logout(r.Context(), id); err != nil {
			h.logger.Error("logout failed",
				slog.String("userID", id.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.accounts.Profile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	AvatarURL   *string `json:"avatarUrl"`
}

// HandleUpdateProfile merges the supplied fields into the profile. Absent
// fields are untouched.
//
// HTTP: PUT /api/me
// Auth: required
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), id, service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		Website:     req.Website,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type avatarRequest struct {
	Avatar string `json:"avatar"`
}

// HandleUpdateAvatar replaces the avatar with a captured image (data URL) or
// a plain URL.
//
// HTTP: PUT /api/me/avatar
// Auth: required
func (h *AuthHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req avatarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.UpdateAvatar(r.Context(), id, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
