package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// repoRouter mounts the repo handler on real chi routes so URL parameters
// resolve the way they do in the server.
func repoRouter(ts *testServer) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/repos", ts.repos.HandleList)
	r.Get("/api/repos/pinned", ts.repos.HandlePinned)
	r.Get("/api/repos/{id}", ts.repos.HandleGet)
	r.With(auth.OptionalAuth(ts.tokens)).Post("/api/repos", ts.repos.HandleCreate)
	r.Post("/api/repos/{id}/readme", ts.repos.HandleGenerateReadme)
	r.Put("/api/repos/{id}", ts.repos.HandleUpdate)
	r.Delete("/api/repos/{id}", ts.repos.HandleDelete)
	r.Get("/api/stats", ts.repos.HandleStats)
	r.With(auth.RequireAuth(ts.tokens)).Get("/api/me/repos", ts.repos.HandleMine)
	return r
}

// createRepo posts a repository through the router and decodes the response.
func createRepo(t *testing.T, router chi.Router, name string, cookie *http.Cookie) model.Repository {
	t.Helper()

	body := `{"name":"` + name + `","description":"a tool","language":"Go"}`
	req := httptest.NewRequest(http.MethodPost, "/api/repos", strings.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var repo model.Repository
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&repo))
	return repo
}

func TestHandleCreateRepo_Anonymous(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	repo := createRepo(t, router, "drive-by", nil)

	assert.Equal(t, model.AnonymousOwner, repo.Owner)
	assert.Equal(t, "drive-by", repo.Name)
	assert.Zero(t, repo.Stars)
}

func TestHandleCreateRepo_Owned(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)
	cookie := ts.signup(t, "octo@example.com", "octocat")

	repo := createRepo(t, router, "my-tool", cookie)

	assert.Equal(t, "octocat", repo.Owner)
}

func TestHandleCreateRepo_Validation(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	req := httptest.NewRequest(http.MethodPost, "/api/repos", strings.NewReader(`{"name":"  "}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "validation_error", resp.Error)
}

func TestHandleListRepos(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	createRepo(t, router, "httpx", nil)
	createRepo(t, router, "unrelated", nil)

	t.Run("all", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/repos", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var repos []model.Repository
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&repos))
		require.Len(t, repos, 2)
		// Newest first.
		assert.Equal(t, "unrelated", repos[0].Name)
	})

	t.Run("filtered", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/repos?q=http", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var repos []model.Repository
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&repos))
		require.Len(t, repos, 1)
		assert.Equal(t, "httpx", repos[0].Name)
	})
}

func TestHandleGetRepo(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	created := createRepo(t, router, "my-tool", nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/repos/"+created.ID, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var repo model.Repository
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&repo))
	assert.Equal(t, created.ID, repo.ID)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/repos/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleUpdateRepo(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	created := createRepo(t, router, "my-tool", nil)

	body := `{"stars":7,"pinned":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/repos/"+created.ID, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var repo model.Repository
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&repo))
	assert.Equal(t, 7, repo.Stars)
	assert.True(t, repo.Pinned)
	assert.Equal(t, "my-tool", repo.Name)

	// The pinned library now includes it.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/repos/pinned", nil))
	var pinned []model.Repository
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&pinned))
	require.Len(t, pinned, 1)
	assert.Equal(t, created.ID, pinned[0].ID)
}

func TestHandleDeleteRepo(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	created := createRepo(t, router, "doomed", nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/repos/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/repos/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleGenerateReadme(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	created := createRepo(t, router, "my-tool", nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/repos/"+created.ID+"/readme", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Readme string `json:"readme"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp.Readme, "# my-tool")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/repos/ghost/readme", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleMine(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)
	cookie := ts.signup(t, "octo@example.com", "octocat")

	createRepo(t, router, "mine", cookie)
	createRepo(t, router, "not-mine", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me/repos", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var repos []model.Repository
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&repos))
	require.Len(t, repos, 1)
	assert.Equal(t, "mine", repos[0].Name)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/me/repos", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleRepoStats(t *testing.T) {
	ts := newTestServer(t)
	router := repoRouter(ts)

	created := createRepo(t, router, "starred", nil)
	body := `{"stars":5}`
	req := httptest.NewRequest(http.MethodPut, "/api/repos/"+created.ID, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var counts struct {
		Repositories int `json:"repositories"`
		Stars        int `json:"stars"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&counts))
	assert.Equal(t, 1, counts.Repositories)
	assert.Equal(t, 5, counts.Stars)
}
