package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/forgeworld/forge/internal/apperror"
	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// In-memory fakes. Plain structs rather than a mock framework: what each
// fake does is visible right here, and tests stay dependency-free.

type fakeUserRepo struct {
	users  []*model.User
	nextID int
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = "user-" + string(rune('0'+f.nextID))
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	// Prepend: newest first, matching the sqlite ordering.
	f.users = append([]*model.User{&copied}, f.users...)
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("account", email)
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	for i, u := range f.users {
		if u.ID == user.ID {
			copied := *user
			copied.UpdatedAt = time.Now()
			f.users[i] = &copied
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (f *fakeUserRepo) DeleteUserByEmail(ctx context.Context, email string) error {
	for i, u := range f.users {
		if u.Email == email {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("account", email)
}

func (f *fakeUserRepo) CountUsers(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type fakeRepoRepo struct {
	repos  []*model.Repository
	nextID int
}

var _ repository.RepoRepository = (*fakeRepoRepo)(nil)

func newFakeRepoRepo() *fakeRepoRepo {
	return &fakeRepoRepo{nextID: 1}
}

func (f *fakeRepoRepo) CreateRepo(ctx context.Context, repo *model.Repository) error {
	repo.ID = "repo-" + string(rune('0'+f.nextID))
	f.nextID++
	now := time.Now()
	repo.CreatedAt = now
	repo.UpdatedAt = now
	copied := *repo
	f.repos = append([]*model.Repository{&copied}, f.repos...)
	return nil
}

func (f *fakeRepoRepo) GetRepoByID(ctx context.Context, id string) (*model.Repository, error) {
	for _, r := range f.repos {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("repository", id)
}

func (f *fakeRepoRepo) ListRepos(ctx context.Context) ([]model.Repository, error) {
	return f.collect(func(*model.Repository) bool { return true }, 0), nil
}

func (f *fakeRepoRepo) ListPinnedRepos(ctx context.Context) ([]model.Repository, error) {
	return f.collect(func(r *model.Repository) bool { return r.Pinned }, 0), nil
}

func (f *fakeRepoRepo) ListReconnaissanceRepos(ctx context.Context) ([]model.Repository, error) {
	return f.collect(func(r *model.Repository) bool {
		return r.Pinned || strings.Contains(strings.ToLower(r.Name), "recon")
	}, 0), nil
}

func (f *fakeRepoRepo) ListReposByOwner(ctx context.Context, owner string, limit int) ([]model.Repository, error) {
	return f.collect(func(r *model.Repository) bool { return r.Owner == owner }, limit), nil
}

func (f *fakeRepoRepo) SearchRepos(ctx context.Context, query string) ([]model.Repository, error) {
	q := strings.ToLower(query)
	return f.collect(func(r *model.Repository) bool {
		return strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Description), q)
	}, 0), nil
}

func (f *fakeRepoRepo) collect(match func(*model.Repository) bool, limit int) []model.Repository {
	out := make([]model.Repository, 0)
	for _, r := range f.repos {
		if match(r) {
			out = append(out, *r)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (f *fakeRepoRepo) UpdateRepo(ctx context.Context, repo *model.Repository) error {
	for i, r := range f.repos {
		if r.ID == repo.ID {
			copied := *repo
			copied.UpdatedAt = time.Now()
			f.repos[i] = &copied
			return nil
		}
	}
	return apperror.NotFound("repository", repo.ID)
}

func (f *fakeRepoRepo) DeleteRepo(ctx context.Context, id string) error {
	for i, r := range f.repos {
		if r.ID == id {
			f.repos = append(f.repos[:i], f.repos[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("repository", id)
}

func (f *fakeRepoRepo) CountReposByOwner(ctx context.Context, owner string) (int, error) {
	n := 0
	for _, r := range f.repos {
		if r.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepoRepo) RepoStats(ctx context.Context) (repository.RepoStats, error) {
	stats := repository.RepoStats{Count: len(f.repos)}
	for _, r := range f.repos {
		stats.TotalStars += r.Stars
	}
	return stats, nil
}

type fakeSessionRepo struct {
	cookies []*model.SessionCookie
	nextID  int
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{nextID: 1}
}

func (f *fakeSessionRepo) CreateSession(ctx context.Context, cookie *model.SessionCookie) error {
	cookie.ID = "sess-" + string(rune('0'+f.nextID))
	f.nextID++
	cookie.Status = model.SessionActive
	now := time.Now()
	cookie.LastActive = now
	cookie.CreatedAt = now
	copied := *cookie
	f.cookies = append([]*model.SessionCookie{&copied}, f.cookies...)
	return nil
}

func (f *fakeSessionRepo) ExpireActiveSessions(ctx context.Context, email string) (int, error) {
	n := 0
	for _, c := range f.cookies {
		if c.Email == email && c.Status == model.SessionActive {
			c.Status = model.SessionExpired
			c.LastActive = time.Now()
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) ListSessions(ctx context.Context) ([]model.SessionCookie, error) {
	out := make([]model.SessionCookie, 0, len(f.cookies))
	for _, c := range f.cookies {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeSessionRepo) CountActiveSessions(ctx context.Context) (int, error) {
	n := 0
	for _, c := range f.cookies {
		if c.Status == model.SessionActive {
			n++
		}
	}
	return n, nil
}

// activeFor counts ACTIVE cookies for one email, for invariant assertions.
func (f *fakeSessionRepo) activeFor(email string) int {
	n := 0
	for _, c := range f.cookies {
		if c.Email == email && c.Status == model.SessionActive {
			n++
		}
	}
	return n
}

type fakeAuditRepo struct {
	entries []model.AuditLog
	nextID  int
}

var _ repository.AuditLogRepository = (*fakeAuditRepo)(nil)

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{nextID: 1}
}

func (f *fakeAuditRepo) AppendAuditLog(ctx context.Context, entry *model.AuditLog) error {
	entry.ID = "log-" + string(rune('0'+f.nextID))
	f.nextID++
	entry.CreatedAt = time.Now()
	f.entries = append([]model.AuditLog{*entry}, f.entries...)
	return nil
}

func (f *fakeAuditRepo) ListAuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	out := make([]model.AuditLog, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv bundles the fakes and the services wired on top of them.
type testEnv struct {
	users    *fakeUserRepo
	repos    *fakeRepoRepo
	sessions *fakeSessionRepo
	auditLog *fakeAuditRepo

	accounts *AccountService
	audit    *AuditService
}

const testAdminEmail = "admin@forge.test"
const testAdminPassword = "admin-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)

	adminHash, err := passwords.Hash(testAdminPassword)
	if err != nil {
		t.Fatalf("hashing admin password: %v", err)
	}

	env := &testEnv{
		users:    newFakeUserRepo(),
		repos:    newFakeRepoRepo(),
		sessions: newFakeSessionRepo(),
		auditLog: newFakeAuditRepo(),
	}

	logger := testLogger()
	env.audit = NewAuditService(env.auditLog, logger)
	env.accounts = NewAccountService(
		env.users, env.repos, env.sessions,
		env.audit, passwords, tokens,
		AdminConfig{
			Email:        testAdminEmail,
			Username:     "admin",
			DisplayName:  "Administrator",
			PasswordHash: adminHash,
		},
		logger,
	)

	return env
}
