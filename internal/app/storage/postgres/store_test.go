package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := New(db)
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	manager, err := store.CreateUser(ctx, user.User{Email: "manager@example.com", Name: "Manager"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	due := time.Now().Add(72 * time.Hour).UTC()
	proj, err := store.CreateProject(ctx, project.Project{
		Name:      "rollout",
		Status:    project.StatusActive,
		Priority:  project.PriorityHigh,
		DueDate:   &due,
		ManagerID: manager.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if _, err := store.UpsertMember(ctx, project.Member{ProjectID: proj.ID, UserID: manager.ID, Role: project.RoleLead}); err != nil {
		t.Fatalf("upsert member: %v", err)
	}
	// Second upsert must update, not duplicate.
	if _, err := store.UpsertMember(ctx, project.Member{ProjectID: proj.ID, UserID: manager.ID, Role: project.RoleViewer}); err != nil {
		t.Fatalf("upsert member again: %v", err)
	}
	members, err := store.ListMembers(ctx, proj.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].Role != project.RoleViewer {
		t.Fatalf("expected one member with role viewer, got %+v", members)
	}

	tsk, err := store.CreateTask(ctx, task.Task{
		ProjectID: proj.ID,
		Title:     "ship it",
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		CreatedBy: manager.ID,
		Tags:      []string{"release"},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := store.CreateComment(ctx, task.Comment{TaskID: tsk.ID, AuthorID: manager.ID, Content: "on it"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// Cascade: deleting the project removes tasks and comments.
	if err := store.DeleteProject(ctx, proj.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := store.GetTask(ctx, tsk.ID); err == nil {
		t.Fatal("expected task to be gone after project delete")
	}
}
