// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage is the durable implementation; tests use
// in-memory mocks.
//
// Method names carry the entity (CreateUser, not Create) because the sqlite
// DB satisfies all four interfaces on one receiver.
package repository

import (
	"context"

	"github.com/forgeworld/forge/internal/model"
)

// UserRepository stores registered accounts. The administrator is never a
// row here — it lives in configuration only.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUserByEmail(ctx context.Context, email string) error
	CountUsers(ctx context.Context) (int, error)
}

// RepoStats are aggregate figures over the whole repository collection.
type RepoStats struct {
	Count      int
	TotalStars int
}

// RepoRepository stores repository records. All listings return newest-first
// order (creation prepends); no other operation reorders.
type RepoRepository interface {
	CreateRepo(ctx context.Context, repo *model.Repository) error
	GetRepoByID(ctx context.Context, id string) (*model.Repository, error)
	ListRepos(ctx context.Context) ([]model.Repository, error)
	ListPinnedRepos(ctx context.Context) ([]model.Repository, error)
	// ListReconnaissanceRepos returns the pinned set unioned with
	// repositories whose name contains "recon" (case-insensitive).
	ListReconnaissanceRepos(ctx context.Context) ([]model.Repository, error)
	ListReposByOwner(ctx context.Context, owner string, limit int) ([]model.Repository, error)
	SearchRepos(ctx context.Context, query string) ([]model.Repository, error)
	UpdateRepo(ctx context.Context, repo *model.Repository) error
	DeleteRepo(ctx context.Context, id string) error
	CountReposByOwner(ctx context.Context, owner string) (int, error)
	RepoStats(ctx context.Context) (RepoStats, error)
}

// AuditLogRepository is the append-only identity-event log. Listing returns
// newest-first; nothing is ever mutated or deleted through this interface.
type AuditLogRepository interface {
	AppendAuditLog(ctx context.Context, entry *model.AuditLog) error
	ListAuditLogs(ctx context.Context) ([]model.AuditLog, error)
}

// SessionRepository stores session cookie records.
type SessionRepository interface {
	CreateSession(ctx context.Context, cookie *model.SessionCookie) error
	// ExpireActiveSessions flips every ACTIVE cookie for the email to
	// EXPIRED and returns how many were affected. Zero is not an error.
	ExpireActiveSessions(ctx context.Context, email string) (int, error)
	ListSessions(ctx context.Context) ([]model.SessionCookie, error)
	CountActiveSessions(ctx context.Context) (int, error)
}
