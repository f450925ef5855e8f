package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkoenig/ssoportal/database"
	"github.com/mkoenig/ssoportal/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	// Create a temporary database for testing
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"

	// Clean up function
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	// Initialize test database using the actual migration system
	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return database.GetDB()
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Test Create
	user := &models.User{
		Email:  "alice@example.com",
		Name:   "Alice",
		Active: true,
	}
	if err := user.SetPassword("hunter2"); err != nil {
		t.Fatalf("Failed to set password: %v", err)
	}

	err := repo.Create(ctx, user)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	if user.ID == 0 {
		t.Error("Expected user ID to be set after creation")
	}

	// Test GetByEmail
	retrieved, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Failed to get user by email: %v", err)
	}

	if retrieved.Name != user.Name {
		t.Errorf("Expected name %s, got %s", user.Name, retrieved.Name)
	}

	if !retrieved.CheckPassword("hunter2") {
		t.Error("Expected stored password hash to verify")
	}

	// Lookup is exact match only
	_, err = repo.GetByEmail(ctx, "ALICE@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for non-exact email, got %v", err)
	}

	// Test GetByID
	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get user by ID: %v", err)
	}

	if byID.Email != user.Email {
		t.Errorf("Expected email %s, got %s", user.Email, byID.Email)
	}

	// Test UpdateLastLogin
	if byID.LastLoginAt != nil {
		t.Error("Expected last login to be unset for a new user")
	}

	err = repo.UpdateLastLogin(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to update last login: %v", err)
	}

	byID, err = repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get user after login update: %v", err)
	}

	if byID.LastLoginAt == nil {
		t.Error("Expected last login to be set after update")
	}

	// Inactive users are not returned by email lookup
	inactive := &models.User{
		Email:  "bob@example.com",
		Name:   "Bob",
		Active: false,
	}
	if err := repo.Create(ctx, inactive); err != nil {
		t.Fatalf("Failed to create inactive user: %v", err)
	}

	_, err = repo.GetByEmail(ctx, "bob@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for inactive user, got %v", err)
	}

	// Test Count
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}

	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	// Test GetAll
	users, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("Failed to get all users: %v", err)
	}

	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}

func TestSettingsRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	// Defaults apply before anything was saved
	settings, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}

	defaults := models.DefaultSettings()
	if settings != defaults {
		t.Errorf("Expected default settings %+v, got %+v", defaults, settings)
	}

	// Test Update
	settings.ButtonText = "Log in with Contoso"
	settings.AutoRedirect = true
	settings.AutoProvision = true
	settings.DefaultRedirect = "/dashboard"

	err = repo.Update(ctx, settings)
	if err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	updated, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get updated settings: %v", err)
	}

	if updated != settings {
		t.Errorf("Expected settings %+v, got %+v", settings, updated)
	}

	// Updating again overwrites rather than duplicates
	settings.AutoRedirect = false
	err = repo.Update(ctx, settings)
	if err != nil {
		t.Fatalf("Failed to update settings twice: %v", err)
	}

	updated, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings after second update: %v", err)
	}

	if updated.AutoRedirect {
		t.Error("Expected auto redirect to be disabled after second update")
	}
}

func TestAuditRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	entry := &models.AuditLogEntry{
		UserEmail: "alice@example.com",
		Event:     models.AuditLoginSuccess,
		Detail:    "SSO login",
		UserAgent: "test-agent",
		IPAddress: "203.0.113.7",
	}

	err := repo.Create(ctx, entry)
	if err != nil {
		t.Fatalf("Failed to create audit entry: %v", err)
	}

	if entry.ID == "" {
		t.Error("Expected audit entry ID to be assigned")
	}

	second := &models.AuditLogEntry{
		UserEmail: "alice@example.com",
		Event:     models.AuditLoginFailed,
		Detail:    "state_invalid",
		Timestamp: time.Now().Add(time.Second),
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Failed to create second audit entry: %v", err)
	}

	entries, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 audit entries, got %d", len(entries))
	}

	if entries[0].Event != models.AuditLoginFailed {
		t.Errorf("Expected newest entry first, got %s", entries[0].Event)
	}

	limited, err := repo.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to read limited audit log: %v", err)
	}

	if len(limited) != 1 {
		t.Errorf("Expected 1 audit entry with limit, got %d", len(limited))
	}
}
