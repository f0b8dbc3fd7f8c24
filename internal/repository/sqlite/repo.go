package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/forgeworld/forge/internal/apperror"
	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// compile-time check that *DB implements repository.RepoRepository
var _ repository.RepoRepository = (*DB)(nil)

const repoColumns = `id, name, description, language, stars, forks,
	is_private, pinned, owner, created_at, updated_at`

// Newest-first everywhere: creation "prepends", nothing else reorders.
// xid is time-sortable, so the id tiebreak keeps creation order within the
// same timestamp.
const repoOrder = ` ORDER BY created_at DESC, id DESC`

func scanRepo(row interface{ Scan(...any) error }) (*model.Repository, error) {
	var r model.Repository
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.Language,
		&r.Stars,
		&r.Forks,
		&r.IsPrivate,
		&r.Pinned,
		&r.Owner,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) queryRepos(ctx context.Context, query string, args ...any) ([]model.Repository, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing repositories: %w", err)
	}
	defer rows.Close()

	repos := make([]model.Repository, 0)
	for rows.Next() {
		r, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning repository row: %w", err)
		}
		repos = append(repos, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating repositories: %w", err)
	}

	return repos, nil
}

// CreateRepo inserts a new repository, generating the ID and timestamps on
// the caller's struct.
func (db *DB) CreateRepo(ctx context.Context, repo *model.Repository) error {
	repo.ID = xid.New().String()
	now := time.Now()
	repo.CreatedAt = now
	repo.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO repositories (id, name, description, language, stars, forks,
		 is_private, pinned, owner, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		repo.ID,
		repo.Name,
		repo.Description,
		repo.Language,
		repo.Stars,
		repo.Forks,
		repo.IsPrivate,
		repo.Pinned,
		repo.Owner,
		repo.CreatedAt,
		repo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating repository: %w", err)
	}

	return nil
}

// GetRepoByID retrieves a single repository.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetRepoByID(ctx context.Context, id string) (*model.Repository, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id)

	r, err := scanRepo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("repository", id)
		}
		return nil, fmt.Errorf("sqlite: getting repository %s: %w", id, err)
	}
	return r, nil
}

// ListRepos returns every repository, newest first.
func (db *DB) ListRepos(ctx context.Context) ([]model.Repository, error) {
	return db.queryRepos(ctx, `SELECT `+repoColumns+` FROM repositories`+repoOrder)
}

// ListPinnedRepos returns the pinned ("reconnaissance library") subset.
func (db *DB) ListPinnedRepos(ctx context.Context) ([]model.Repository, error) {
	return db.queryRepos(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE pinned = 1`+repoOrder)
}

// ListReconnaissanceRepos returns the pinned set unioned with repositories
// whose name contains "recon", case-insensitive. This backs the reserved
// filter token.
func (db *DB) ListReconnaissanceRepos(ctx context.Context) ([]model.Repository, error) {
	return db.queryRepos(ctx,
		`SELECT `+repoColumns+` FROM repositories
		 WHERE pinned = 1 OR instr(lower(name), 'recon') > 0`+repoOrder)
}

// ListReposByOwner returns repositories owned by the given username, newest
// first, capped at limit (0 means no cap).
func (db *DB) ListReposByOwner(ctx context.Context, owner string, limit int) ([]model.Repository, error) {
	if limit <= 0 {
		return db.queryRepos(ctx,
			`SELECT `+repoColumns+` FROM repositories WHERE owner = ?`+repoOrder, owner)
	}
	return db.queryRepos(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE owner = ?`+repoOrder+` LIMIT ?`,
		owner, limit)
}

// SearchRepos does a case-insensitive substring match against name and
// description.
func (db *DB) SearchRepos(ctx context.Context, query string) ([]model.Repository, error) {
	// Escape LIKE wildcards so a literal "%" in the query stays literal.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(query))
	pattern := "%" + escaped + "%"
	return db.queryRepos(ctx,
		`SELECT `+repoColumns+` FROM repositories
		 WHERE lower(name) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\'`+repoOrder,
		pattern, pattern)
}

// UpdateRepo replaces the record matching repo.ID.
// Returns apperror.ErrNotFound when no row matches.
func (db *DB) UpdateRepo(ctx context.Context, repo *model.Repository) error {
	repo.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE repositories
		 SET name = ?, description = ?, language = ?, stars = ?, forks = ?,
		     is_private = ?, pinned = ?, owner = ?, updated_at = ?
		 WHERE id = ?`,
		repo.Name,
		repo.Description,
		repo.Language,
		repo.Stars,
		repo.Forks,
		repo.IsPrivate,
		repo.Pinned,
		repo.Owner,
		repo.UpdatedAt,
		repo.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating repository %s: %w", repo.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("repository", repo.ID)
	}

	return nil
}

// DeleteRepo removes a repository by ID.
// Returns apperror.ErrNotFound when no row matches.
func (db *DB) DeleteRepo(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM repositories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting repository %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("repository", id)
	}

	return nil
}

// CountReposByOwner returns how many repositories the given username owns.
func (db *DB) CountReposByOwner(ctx context.Context, owner string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM repositories WHERE owner = ?`, owner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting repositories for %s: %w", owner, err)
	}
	return n, nil
}

// RepoStats returns aggregate figures over the whole collection.
func (db *DB) RepoStats(ctx context.Context) (repository.RepoStats, error) {
	var stats repository.RepoStats
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(stars), 0) FROM repositories`,
	).Scan(&stats.Count, &stats.TotalStars)
	if err != nil {
		return repository.RepoStats{}, fmt.Errorf("sqlite: repository stats: %w", err)
	}
	return stats, nil
}
