package auditlog

import (
	"context"
	"errors"
	"testing"

	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/storage/memory"
)

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(context.Context, queue.Job) error {
	h.calls++
	return h.err
}

func TestObserveRecordsBeforeHandling(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	rec := NewRecorder(store, nil)
	next := &countingHandler{}

	err := rec.Observe(next).Handle(ctx, queue.TaskStatusChanged{
		TaskID: "t1", PriorStatus: task.StatusTodo, ActorID: "u1",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("next handler ran %d times, want 1", next.calls)
	}

	entries, err := store.ListAudit(ctx, "task", "t1")
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Actor != "u1" || e.Action != "task.status_changed" || e.Origin != "queue" {
		t.Fatalf("entry = %+v", e)
	}
	if e.OldValues["status"] != string(task.StatusTodo) {
		t.Fatalf("old values = %v, want prior status", e.OldValues)
	}
}

func TestObservePropagatesHandlerError(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	next := &countingHandler{err: errors.New("fanout broke")}

	err := rec.Observe(next).Handle(context.Background(), queue.ProjectCreated{
		ProjectID: "p1", ActorID: "u1",
	})
	if err == nil {
		t.Fatal("expected the handler error to propagate")
	}
	// The entry is still recorded.
	entries, _ := store.ListAudit(context.Background(), "project", "p1")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}

func TestProjectUpdatedCarriesPriorValues(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	next := &countingHandler{}

	err := rec.Observe(next).Handle(context.Background(), queue.ProjectUpdated{
		ProjectID: "p1",
		Prior:     project.Snapshot{Name: "old", Status: project.StatusPlanning, ManagerID: "m1"},
		ActorID:   "u1",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	entries, _ := store.ListAudit(context.Background(), "project", "p1")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].OldValues["status"] != string(project.StatusPlanning) {
		t.Fatalf("old values = %v", entries[0].OldValues)
	}
}
