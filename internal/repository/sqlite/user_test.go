package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/forgeworld/forge/internal/apperror"
	"github.com/forgeworld/forge/internal/model"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "octocat",
		DisplayName:  "The Octocat",
		Email:        "octo@example.com",
		PasswordHash: "$2a$04$hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com", "first")

	duplicate := &model.User{
		Username:     "second",
		Email:        "dup@example.com",
		PasswordHash: "$2a$04$hash",
	}
	if err := db.CreateUser(context.Background(), duplicate); err == nil {
		t.Fatal("CreateUser() should fail on a duplicate email (UNIQUE constraint)")
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "lookup@example.com", "lookup")

	found, err := db.GetUserByEmail(context.Background(), "lookup@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.Username != "lookup" {
		t.Errorf("Username = %q, want %q", found.Username, "lookup")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "edit@example.com", "editor")

	user.DisplayName = "Editor Prime"
	user.Bio = "I edit things."
	user.Location = "Berlin"
	if err := db.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.DisplayName != "Editor Prime" {
		t.Errorf("DisplayName = %q, want %q", found.DisplayName, "Editor Prime")
	}
	if found.Bio != "I edit things." {
		t.Errorf("Bio = %q, want %q", found.Bio, "I edit things.")
	}
	// Email is immutable through UpdateUser.
	if found.Email != "edit@example.com" {
		t.Errorf("Email = %q, want unchanged", found.Email)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "ghost", Username: "ghost"}
	if err := db.UpdateUser(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserByEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "gone@example.com", "goner")

	if err := db.DeleteUserByEmail(context.Background(), "gone@example.com"); err != nil {
		t.Fatalf("DeleteUserByEmail() error = %v", err)
	}

	if _, err := db.GetUserByEmail(context.Background(), "gone@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("user still retrievable after delete, err = %v", err)
	}

	if err := db.DeleteUserByEmail(context.Background(), "gone@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestListUsersAndCount(t *testing.T) {
	db := newTestDB(t)

	n, err := db.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountUsers() on empty table = %d, want 0", n)
	}

	createTestUser(t, db, "a@example.com", "alpha")
	createTestUser(t, db, "b@example.com", "beta")

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	// Newest first.
	if users[0].Username != "beta" {
		t.Errorf("users[0].Username = %q, want %q (newest first)", users[0].Username, "beta")
	}

	n, err = db.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountUsers() = %d, want 2", n)
	}
}
