package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"textrecords/internal/db"
	"textrecords/internal/models"
	"textrecords/internal/testutil"
)

func TestUpsertUser(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{Sub: "oidc-sub-1", Email: "first@example.com", Name: "First"}
	if err := database.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("UpsertUser() did not set ID")
	}
	if user.Provider != models.ProviderOIDC {
		t.Errorf("Provider = %q, want %q", user.Provider, models.ProviderOIDC)
	}

	updated := &models.User{Sub: "oidc-sub-1", Email: "changed@example.com", Name: "Changed"}
	if err := database.UpsertUser(ctx, updated); err != nil {
		t.Fatalf("UpsertUser() second call error = %v", err)
	}
	if updated.ID != user.ID {
		t.Errorf("UpsertUser() created a new user %v, want %v", updated.ID, user.ID)
	}

	got, err := database.GetUserBySub(ctx, "oidc-sub-1")
	if err != nil {
		t.Fatalf("GetUserBySub() error = %v", err)
	}
	if got.Email != "changed@example.com" {
		t.Errorf("Email = %q, want changed@example.com", got.Email)
	}
}

func TestCreateLocalUser(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{Email: "Local@Example.com", PasswordHash: "hash"}
	if err := database.CreateLocalUser(ctx, user); err != nil {
		t.Fatalf("CreateLocalUser() error = %v", err)
	}
	if user.Sub != "local|local@example.com" {
		t.Errorf("Sub = %q", user.Sub)
	}

	dup := &models.User{Email: "local@example.com", PasswordHash: "other"}
	if err := database.CreateLocalUser(ctx, dup); !errors.Is(err, db.ErrDuplicateEmail) {
		t.Errorf("CreateLocalUser() duplicate error = %v, want ErrDuplicateEmail", err)
	}

	got, err := database.GetLocalUserByEmail(ctx, "LOCAL@example.com")
	if err != nil {
		t.Fatalf("GetLocalUserByEmail() error = %v", err)
	}
	if got.PasswordHash != "hash" || !got.IsLocal() {
		t.Errorf("GetLocalUserByEmail() = %+v", got)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := database.GetUserBySub(ctx, "missing"); !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("GetUserBySub() error = %v, want ErrUserNotFound", err)
	}
	if _, err := database.GetUserByID(ctx, uuid.New()); !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrUserNotFound", err)
	}
	if err := database.DeleteUser(ctx, uuid.New()); !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}
