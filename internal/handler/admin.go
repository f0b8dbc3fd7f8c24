package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworld/forge/internal/apperror"
	"github.com/forgeworld/forge/internal/service"
)

// AdminHandler exposes the admin console endpoints. Every route is behind
// RequireAdmin; the handlers themselves only translate.
type AdminHandler struct {
	accounts *service.AccountService
	audit    *service.AuditService
	stats    *service.StatsService
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	accounts *service.AccountService,
	audit *service.AuditService,
	stats *service.StatsService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		audit:    audit,
		stats:    stats,
		logger:   logger,
	}
}

// HandleStats returns the console aggregates.
//
// HTTP: GET /api/admin/stats
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.AdminStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleListUsers returns every registered account.
//
// HTTP: GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleDeleteUser removes a registration by email. The email travels as a
// path segment, so it arrives percent-encoded.
//
// HTTP: DELETE /api/admin/users/{email}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("email", "malformed email"))
		return
	}

	if err := h.accounts.DeleteUser(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("admin removed registration", slog.String("email", email))
	writeJSON(w, http.StatusOK, map[string]string{"message": "registration removed"})
}

// HandleListLogs returns the audit log, newest first.
//
// HTTP: GET /api/admin/logs
func (h *AdminHandler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.audit.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// HandleListSessions returns the session cookie records.
//
// HTTP: GET /api/admin/sessions
func (h *AdminHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.stats.ListSessions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
