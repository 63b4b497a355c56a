package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/model"
	"github.com/projectdesk/projectdesk/internal/repository"
	"github.com/projectdesk/projectdesk/internal/testutil"
)

func TestProjectService_CreatorBecomesOwner(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)

	project, err := env.projects.Create(env.ctx, alice, ProjectInput{Name: "owned-by-alice"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.OwnerID == nil || *project.OwnerID != alice.UserID {
		t.Fatalf("expected owner %d, got %v", alice.UserID, project.OwnerID)
	}
}

func TestProjectService_OwnershipHidesForeignRecords(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)
	bob := env.identity(t, "bob", model.RoleUser)

	project, err := env.projects.Create(env.ctx, alice, ProjectInput{Name: "alice-only"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	// Owner sees it.
	if _, err := env.projects.Get(env.ctx, alice, project.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}

	// A different user gets the same error as for a nonexistent ID.
	_, errForeign := env.projects.Get(env.ctx, bob, project.ID)
	_, errMissing := env.projects.Get(env.ctx, bob, project.ID+100000)
	if !errors.Is(errForeign, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign record, got %v", errForeign)
	}
	if !errors.Is(errForeign, errMissing) && errForeign.Error() != errMissing.Error() {
		t.Fatalf("foreign and missing records must be indistinguishable: %v vs %v", errForeign, errMissing)
	}

	// Mutations are hidden the same way.
	if _, err := env.projects.Update(env.ctx, bob, project.ID, ProjectInput{Name: "hijack"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}
	if err := env.projects.Delete(env.ctx, bob, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}
}

func TestProjectService_AdminOverrideOnlyForUnowned(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)
	admin := env.identity(t, "root", model.RoleAdmin)

	owned, err := env.projects.Create(env.ctx, alice, ProjectInput{Name: "alice-owned"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	// Admins do not see through user ownership.
	if _, err := env.projects.Get(env.ctx, admin, owned.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for admin on owned record, got %v", err)
	}

	// But they do reach records with no owner at all.
	orphan := testutil.NewTestProject(t, "legacy-import", nil)
	if err := env.repo.CreateProject(env.ctx, orphan); err != nil {
		t.Fatalf("create orphan: %v", err)
	}
	if _, err := env.projects.Get(env.ctx, admin, orphan.ID); err != nil {
		t.Fatalf("admin get unowned: %v", err)
	}
	if _, err := env.projects.Get(env.ctx, alice, orphan.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for regular user on unowned record, got %v", err)
	}
}

func TestProjectService_ListCacheInvalidatedOnMutation(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)

	if _, err := env.projects.Create(env.ctx, alice, ProjectInput{Name: "first"}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	// Prime the cache.
	listed, err := env.projects.List(env.ctx, alice)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 project, got %d", len(listed))
	}

	if _, err := env.projects.Create(env.ctx, alice, ProjectInput{Name: "second"}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	// Mutation must not serve the stale cached listing.
	listed, err = env.projects.List(env.ctx, alice)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 projects after create, got %d", len(listed))
	}
}

func TestStudentService_ProjectAssignmentRequiresVisibility(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)
	bob := env.identity(t, "bob", model.RoleUser)

	project, err := env.projects.Create(env.ctx, alice, ProjectInput{Name: "alice-thesis"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	input := StudentInput{
		CodeNumber: "S-1",
		FirstName:  "Jan",
		LastName:   "deVries",
		Title:      "Thesis",
		ProjectID:  project.ID,
	}

	// Bob cannot attach a student to a project he cannot see.
	if _, err := env.students.Create(env.ctx, bob, input); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for invisible project, got %v", err)
	}

	// The owner can.
	student, err := env.students.Create(env.ctx, alice, input)
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	if student.OwnerID == nil || *student.OwnerID != alice.UserID {
		t.Fatalf("expected owner %d, got %v", alice.UserID, student.OwnerID)
	}
}

func TestStudentService_SearchByCodeHidesForeignRecords(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)
	bob := env.identity(t, "bob", model.RoleUser)

	if _, err := env.students.Create(env.ctx, alice, StudentInput{
		CodeNumber: "S-77",
		FirstName:  "Eva",
		LastName:   "Smit",
		Title:      "Thesis",
	}); err != nil {
		t.Fatalf("create student: %v", err)
	}

	if _, err := env.students.SearchByCode(env.ctx, alice, "S-77"); err != nil {
		t.Fatalf("owner search: %v", err)
	}
	if _, err := env.students.SearchByCode(env.ctx, bob, "S-77"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign code, got %v", err)
	}
}

func TestTaskService_StatusDefaultsAndValidation(t *testing.T) {
	env := newServiceTestEnv(t)

	alice := env.identity(t, "alice", model.RoleUser)

	task, err := env.tasks.Create(env.ctx, alice, TaskInput{Title: "write intro"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.TaskStatusOpen {
		t.Fatalf("expected default status OPEN, got %q", task.Status)
	}

	if _, err := env.tasks.Create(env.ctx, alice, TaskInput{Title: "bad", Status: "ARCHIVED"}); !errors.Is(err, ErrTaskInvalidStatus) {
		t.Fatalf("expected ErrTaskInvalidStatus, got %v", err)
	}
	if _, err := env.tasks.Create(env.ctx, alice, TaskInput{Title: "bad", Priority: "URGENT"}); !errors.Is(err, ErrTaskInvalidPriority) {
		t.Fatalf("expected ErrTaskInvalidPriority, got %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

type serviceTestEnv struct {
	ctx      context.Context
	repo     *repository.Repository
	projects *ProjectService
	students *StudentService
	tasks    *TaskService
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cacheClient := cache.NewWithClient(client)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &serviceTestEnv{
		ctx:      ctx,
		repo:     repo,
		projects: NewProjectService(repo, cacheClient, logger),
		students: NewStudentService(repo, cacheClient, logger),
		tasks:    NewTaskService(repo, cacheClient, logger),
	}
}

// identity creates a user row and returns the matching identity.
func (env *serviceTestEnv) identity(t *testing.T, username string, role model.Role) *auth.Identity {
	t.Helper()
	user := testutil.NewTestUser(t, username)
	user.Role = role
	if err := env.repo.CreateUser(env.ctx, user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &auth.Identity{UserID: user.ID, Username: username, Role: role}
}
