package service

import (
	"context"
	"fmt"

	"github.com/forgeworld/forge/internal/repository"
)

// TabCounts are the dashboard tab badges: the repository count and the
// aggregate star count across the whole collection.
type TabCounts struct {
	Repositories int `json:"repositories"`
	Stars        int `json:"stars"`
}

// AdminStats are the admin console aggregates. RegisteredUsers includes the
// implicit administrator (+1), which has no row in the registry.
type AdminStats struct {
	TotalRepos      int `json:"totalRepos"`
	TotalStars      int `json:"totalStars"`
	RegisteredUsers int `json:"registeredUsers"`
	ActiveSessions  int `json:"activeSessions"`
}

// StatsService derives display aggregates from the authoritative
// collections. It holds no state of its own: every call recomputes from the
// store, so the numbers can never go stale.
type StatsService struct {
	repos    repository.RepoRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
}

// NewStatsService creates a StatsService.
func NewStatsService(
	repos repository.RepoRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
) *StatsService {
	return &StatsService{repos: repos, users: users, sessions: sessions}
}

// TabCounts computes the dashboard tab badges.
func (s *StatsService) TabCounts(ctx context.Context) (TabCounts, error) {
	stats, err := s.repos.RepoStats(ctx)
	if err != nil {
		return TabCounts{}, fmt.Errorf("service/stats: %w", err)
	}
	return TabCounts{
		Repositories: stats.Count,
		Stars:        stats.TotalStars,
	}, nil
}

// AdminStats computes the admin console aggregates.
func (s *StatsService) AdminStats(ctx context.Context) (AdminStats, error) {
	repoStats, err := s.repos.RepoStats(ctx)
	if err != nil {
		return AdminStats{}, fmt.Errorf("service/stats: %w", err)
	}

	userCount, err := s.users.CountUsers(ctx)
	if err != nil {
		return AdminStats{}, fmt.Errorf("service/stats: %w", err)
	}

	active, err := s.sessions.CountActiveSessions(ctx)
	if err != nil {
		return AdminStats{}, fmt.Errorf("service/stats: %w", err)
	}

	return AdminStats{
		TotalRepos:      repoStats.Count,
		TotalStars:      repoStats.TotalStars,
		RegisteredUsers: userCount + 1, // + the implicit administrator
		ActiveSessions:  active,
	}, nil
}

// ListSessions returns all session cookie records, newest first. Admin
// console only.
func (s *StatsService) ListSessions(ctx context.Context) ([]SessionView, error) {
	cookies, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/stats: %w", err)
	}

	views := make([]SessionView, 0, len(cookies))
	for _, c := range cookies {
		views = append(views, SessionView{
			ID:         c.ID,
			Email:      c.Email,
			Username:   c.Username,
			UserAgent:  c.UserAgent,
			Status:     string(c.Status),
			AvatarURL:  c.AvatarURL,
			RepoCount:  c.RepoCount,
			LastActive: c.LastActive.Format("2006-01-02 15:04:05"),
		})
	}
	return views, nil
}

// SessionView is the admin console's rendering of a session cookie record.
type SessionView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	UserAgent  string `json:"userAgent"`
	Status     string `json:"status"`
	AvatarURL  string `json:"avatarUrl"`
	RepoCount  int    `json:"repoCount"`
	LastActive string `json:"lastActive"`
}
