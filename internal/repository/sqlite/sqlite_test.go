package sqlite

import (
	"context"
	"testing"

	"github.com/forgeworld/forge/internal/model"
)

// newTestDB returns a DB backed by an in-memory database, closed when the
// test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(\":memory:\"): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		DisplayName:  username,
		Email:        email,
		PasswordHash: "$2a$04$fakefakefakefakefakefakefakefakefakefakefakefakefake",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestRepo(t *testing.T, db *DB, name, owner string, pinned bool) *model.Repository {
	t.Helper()
	repo := &model.Repository{
		Name:        name,
		Description: "description of " + name,
		Language:    "Go",
		Owner:       owner,
		Pinned:      pinned,
	}
	if err := db.CreateRepo(context.Background(), repo); err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	return repo
}
