package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/projectdesk/projectdesk/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 740551

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// migrationNames lists the migrations in apply order.
var migrationNames = []string{
	"000001_users",
	"000002_projects",
	"000003_students",
	"000004_tasks",
}

// ResetSchema drops and recreates the full schema for tests.
// Down migrations run in reverse order so foreign keys are dropped
// before the tables they reference.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	for i := len(migrationNames) - 1; i >= 0; i-- {
		if err := applyMigration(ctx, pool, filepath.Join(root, "migrations", migrationNames[i]+".down.sql")); err != nil {
			return err
		}
	}
	for _, name := range migrationNames {
		if err := applyMigration(ctx, pool, filepath.Join(root, "migrations", name+".up.sql")); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with sensible defaults. The password hash
// is a placeholder, not a verifiable argon2 hash.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	return &model.User{
		Username:     username,
		PasswordHash: fmt.Sprintf("hash-%d", time.Now().UnixNano()),
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestProject creates a project with sensible defaults.
func NewTestProject(t testing.TB, name string, ownerID *int64) *model.Project {
	t.Helper()
	return &model.Project{
		Name:        name,
		Description: "test project " + name,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewTestStudent creates a student with sensible defaults.
func NewTestStudent(t testing.TB, code string, ownerID *int64) *model.Student {
	t.Helper()
	return &model.Student{
		CodeNumber: code,
		FirstName:  "First-" + code,
		LastName:   "Last-" + code,
		Title:      "Thesis " + code,
		OwnerID:    ownerID,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewTestTask creates a task with sensible defaults.
func NewTestTask(t testing.TB, code string, ownerID *int64) *model.Task {
	t.Helper()
	return &model.Task{
		CodeNumber: code,
		Title:      "Task " + code,
		Status:     model.TaskStatusOpen,
		Priority:   model.TaskPriorityMedium,
		Tags:       []string{"test"},
		OwnerID:    ownerID,
		CreatedAt:  time.Now().UTC(),
	}
}

// UniqueCode generates a unique code number for tests.
func UniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
