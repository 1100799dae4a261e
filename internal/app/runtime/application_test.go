package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/services/projects"
	"github.com/taskforge/taskforge/internal/app/services/tasks"
	"github.com/taskforge/taskforge/internal/config"
)

// newTestApp wires the application on the in-memory store with the
// background services running, and tears them down with the test.
func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.OpsListenAddr = "127.0.0.1:0"
	app, err := NewApplication(cfg)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("application did not shut down in time")
		}
	})
	return app
}

func (a *Application) waitForNotifications(t *testing.T, recipientID string, kind notification.Kind, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ns, err := a.store.ListNotifications(context.Background(), recipientID)
		if err != nil {
			t.Fatalf("list notifications: %v", err)
		}
		got := 0
		for _, n := range ns {
			if n.Kind == kind {
				got++
			}
		}
		if got >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("recipient %s never received %d %s notifications", recipientID, want, kind)
}

func TestProjectLifecycleEndToEnd(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	mgr, err := app.store.CreateUser(ctx, user.User{Name: "mgr", Email: "mgr@example.com", Role: user.RoleMember})
	if err != nil {
		t.Fatalf("seed manager: %v", err)
	}
	dev, err := app.store.CreateUser(ctx, user.User{Name: "dev", Email: "dev@example.com", Role: user.RoleMember})
	if err != nil {
		t.Fatalf("seed dev: %v", err)
	}

	p, err := app.Projects.Create(ctx, mgr, projects.CreateInput{Name: "Launch", ManagerID: mgr.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	// Immediate notice plus the asynchronous member fan-out.
	app.waitForNotifications(t, mgr.ID, notification.KindProjectCreated, 2)

	if _, err := app.Projects.AddMember(ctx, mgr, p.ID, dev.ID, project.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	app.waitForNotifications(t, dev.ID, notification.KindMemberAdded, 1)

	tk, err := app.Tasks.Create(ctx, mgr, tasks.CreateInput{
		ProjectID: p.ID, Title: "Write docs", AssigneeID: dev.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	app.waitForNotifications(t, dev.ID, notification.KindTaskAssigned, 1)

	if _, err := app.Tasks.UpdateStatus(ctx, dev, tk.ID, task.StatusInProgress); err != nil {
		t.Fatalf("update status: %v", err)
	}
	app.waitForNotifications(t, dev.ID, notification.KindStatusChanged, 1)

	// A comment from the assignee reaches the creator asynchronously.
	if _, err := app.Tasks.AddComment(ctx, dev, tk.ID, "done soon", nil); err != nil {
		t.Fatalf("comment: %v", err)
	}
	app.waitForNotifications(t, mgr.ID, notification.KindCommentAdded, 1)

	if _, err := app.Tasks.UpdateStatus(ctx, dev, tk.ID, task.StatusDone); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	m, err := app.Projects.ComputeMetrics(ctx, p.ID)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if m.TotalTasks != 1 || m.TasksByStatus[task.StatusDone] != 1 || m.ProgressPercentage != 100 {
		t.Fatalf("metrics = %+v, want one done task at 100%%", m)
	}

	if err := app.Projects.Delete(ctx, mgr, p.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	app.waitForNotifications(t, dev.ID, notification.KindProjectDeleted, 1)
}
