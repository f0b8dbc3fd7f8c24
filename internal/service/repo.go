package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/forgeworld/forge/internal/apperror"
	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// Validation bounds for repository fields.
const (
	MaxRepoNameLength        = 100
	MaxRepoDescriptionLength = 512
)

// DashboardPinnedLimit caps the "pinned for me" dashboard list.
const DashboardPinnedLimit = 6

// reconQueryToken is the reserved filter query that selects the
// reconnaissance library instead of doing a literal substring match. A
// holdover from the original product; kept for compatibility, but it means
// a repository literally named "recon-notes" is only reachable through this
// special case, not alongside other substring results.
const reconQueryToken = "recon"

// RepoService owns the repository collection and its derived views.
type RepoService struct {
	repos  repository.RepoRepository
	logger *slog.Logger
}

// NewRepoService creates a RepoService.
func NewRepoService(repos repository.RepoRepository, logger *slog.Logger) *RepoService {
	return &RepoService{repos: repos, logger: logger}
}

// CreateRepoParams are the caller-supplied fields for a new repository.
// Everything else (ID, owner, counters, timestamps) is synthesized.
type CreateRepoParams struct {
	Name        string
	Description string
	Language    string
	IsPrivate   bool
}

// Create validates and stores a new repository. owner is the session's
// username; empty means the anonymous sentinel. Stars and forks start at
// zero and the new record sorts first (newest-first ordering).
func (s *RepoService) Create(ctx context.Context, params CreateRepoParams, owner string) (*model.Repository, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "repository name is required")
	}
	if len(name) > MaxRepoNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("repository name must be %d characters or less", MaxRepoNameLength))
	}
	if len(params.Description) > MaxRepoDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxRepoDescriptionLength))
	}

	if owner == "" {
		owner = model.AnonymousOwner
	}

	repo := &model.Repository{
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		Language:    strings.TrimSpace(params.Language),
		IsPrivate:   params.IsPrivate,
		Owner:       owner,
	}

	if err := s.repos.CreateRepo(ctx, repo); err != nil {
		s.logger.Error("failed to create repository",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating repository: %w", err)
	}

	s.logger.Info("repository created",
		slog.String("id", repo.ID),
		slog.String("name", repo.Name),
		slog.String("owner", repo.Owner),
	)

	return repo, nil
}

// GetByID retrieves a repository. Returns apperror.ErrNotFound if absent.
func (s *RepoService) GetByID(ctx context.Context, id string) (*model.Repository, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "repository ID is required")
	}
	return s.repos.GetRepoByID(ctx, id)
}

// List returns all repositories, newest first.
func (s *RepoService) List(ctx context.Context) ([]model.Repository, error) {
	return s.repos.ListRepos(ctx)
}

// ListPinned returns the pinned reconnaissance library.
func (s *RepoService) ListPinned(ctx context.Context) ([]model.Repository, error) {
	return s.repos.ListPinnedRepos(ctx)
}

// Filter returns repositories matching the query, case-insensitive, against
// name and description. The reserved token "recon" instead selects the
// pinned library unioned with name matches of "recon". An empty query lists
// everything.
func (s *RepoService) Filter(ctx context.Context, query string) ([]model.Repository, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repos.ListRepos(ctx)
	}
	if strings.EqualFold(query, reconQueryToken) {
		return s.repos.ListReconnaissanceRepos(ctx)
	}
	return s.repos.SearchRepos(ctx, query)
}

// DashboardRepos returns the current user's repositories for the dashboard
// "pinned for me" card, newest first, capped at DashboardPinnedLimit.
func (s *RepoService) DashboardRepos(ctx context.Context, owner string) ([]model.Repository, error) {
	if owner == "" {
		return []model.Repository{}, nil
	}
	return s.repos.ListReposByOwner(ctx, owner, DashboardPinnedLimit)
}

// UpdateRepoParams are the mutable repository fields. Nil leaves a field
// unchanged.
type UpdateRepoParams struct {
	Name        *string
	Description *string
	Language    *string
	Stars       *int
	Forks       *int
	IsPrivate   *bool
	Pinned      *bool
}

// Update merges the params into the stored record and persists it.
// Returns apperror.ErrNotFound when the ID doesn't exist.
func (s *RepoService) Update(ctx context.Context, id string, params UpdateRepoParams) (*model.Repository, error) {
	repo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "repository name is required")
		}
		if len(name) > MaxRepoNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("repository name must be %d characters or less", MaxRepoNameLength))
		}
		repo.Name = name
	}
	if params.Description != nil {
		if len(*params.Description) > MaxRepoDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxRepoDescriptionLength))
		}
		repo.Description = strings.TrimSpace(*params.Description)
	}
	if params.Language != nil {
		repo.Language = strings.TrimSpace(*params.Language)
	}
	if params.Stars != nil {
		if *params.Stars < 0 {
			return nil, apperror.ValidationFailed("stars", "stars cannot be negative")
		}
		repo.Stars = *params.Stars
	}
	if params.Forks != nil {
		if *params.Forks < 0 {
			return nil, apperror.ValidationFailed("forks", "forks cannot be negative")
		}
		repo.Forks = *params.Forks
	}
	if params.IsPrivate != nil {
		repo.IsPrivate = *params.IsPrivate
	}
	if params.Pinned != nil {
		repo.Pinned = *params.Pinned
	}

	if err := s.repos.UpdateRepo(ctx, repo); err != nil {
		s.logger.Error("failed to update repository",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating repository: %w", err)
	}

	s.logger.Info("repository updated", slog.String("id", repo.ID))
	return repo, nil
}

// Delete removes a repository by ID.
// Returns apperror.ErrNotFound when it doesn't exist.
func (s *RepoService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "repository ID is required")
	}

	if err := s.repos.DeleteRepo(ctx, id); err != nil {
		return err
	}

	s.logger.Info("repository deleted", slog.String("id", id))
	return nil
}
