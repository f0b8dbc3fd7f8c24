package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/readme"
	"github.com/forgeworld/forge/internal/service"
)

// RepoHandler exposes the repository collection: listing and filtering, the
// pinned library, CRUD, and README generation.
type RepoHandler struct {
	repos    *service.RepoService
	accounts *service.AccountService
	stats    *service.StatsService
	readmes  *readme.Service
	logger   *slog.Logger
}

// NewRepoHandler creates a RepoHandler.
func NewRepoHandler(
	repos *service.RepoService,
	accounts *service.AccountService,
	stats *service.StatsService,
	readmes *readme.Service,
	logger *slog.Logger,
) *RepoHandler {
	return &RepoHandler{
		repos:    repos,
		accounts: accounts,
		stats:    stats,
		readmes:  readmes,
		logger:   logger,
	}
}

// HandleList returns the collection, newest first. ?q= filters by name and
// description; the reserved query "recon" selects the reconnaissance
// library.
//
// HTTP: GET /api/repos?q=
func (h *RepoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repos.Filter(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandlePinned returns the pinned library.
//
// HTTP: GET /api/repos/pinned
func (h *RepoHandler) HandlePinned(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repos.ListPinned(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandleMine returns the authenticated user's repositories for the
// dashboard card, newest first, capped.
//
// HTTP: GET /api/me/repos
// Auth: required
func (h *RepoHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
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

	repos, err := h.repos.DashboardRepos(r.Context(), user.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandleGet returns one repository.
//
// HTTP: GET /api/repos/{id}
func (h *RepoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repos.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	IsPrivate   bool   `json:"isPrivate"`
}

// HandleCreate stores a new repository. Authentication is optional: a
// signed-in user becomes the owner, anonymous creations get the sentinel
// owner.
//
// HTTP: POST /api/repos
func (h *RepoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRepoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	owner := ""
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		user, err := h.accounts.Profile(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		owner = user.Username
	}

	repo, err := h.repos.Create(r.Context(), service.CreateRepoParams{
		Name:        req.Name,
		Description: req.Description,
		Language:    req.Language,
		IsPrivate:   req.IsPrivate,
	}, owner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, repo)
}

type updateRepoRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stars       *int    `json:"stars"`
	Forks       *int    `json:"forks"`
	IsPrivate   *bool   `json:"isPrivate"`
	Pinned      *bool   `json:"pinned"`
}

// HandleUpdate merges the supplied fields into the repository.
//
// HTTP: PUT /api/repos/{id}
// Auth: required
func (h *RepoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRepoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	repo, err := h.repos.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateRepoParams{
		Name:        req.Name,
		Description: req.Description,
		Language:    req.Language,
		Stars:       req.Stars,
		Forks:       req.Forks,
		IsPrivate:   req.IsPrivate,
		Pinned:      req.Pinned,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, repo)
}

// HandleDelete removes a repository.
//
// HTTP: DELETE /api/repos/{id}
// Auth: required
func (h *RepoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "repository deleted"})
}

type readmeResponse struct {
	Readme string `json:"readme"`
}

// HandleGenerateReadme produces a README draft for the repository. The
// response is always 200: generation falls back to a template rather than
// failing.
//
// HTTP: POST /api/repos/{id}/readme
func (h *RepoHandler) HandleGenerateReadme(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repos.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	text := h.readmes.Generate(r.Context(), repo.Name, repo.Description)
	writeJSON(w, http.StatusOK, readmeResponse{Readme: text})
}

// HandleStats returns the dashboard tab counts.
//
// HTTP: GET /api/stats
func (h *RepoHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.TabCounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
