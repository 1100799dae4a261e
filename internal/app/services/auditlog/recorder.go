// Package auditlog records lifecycle events into the append-only audit
// store. It observes the job stream rather than being called from lifecycle
// methods, so auditing can be detached without touching the services.
package auditlog

import (
	"context"

	"github.com/taskforge/taskforge/internal/app/domain/audit"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Recorder appends audit entries to the store.
type Recorder struct {
	store storage.AuditStore
	log   *logger.Logger
}

var _ audit.Recorder = (*Recorder)(nil)

// NewRecorder creates a store-backed audit recorder.
func NewRecorder(store storage.AuditStore, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.NewDefault("audit")
	}
	return &Recorder{store: store, log: log}
}

// Record appends one entry.
func (r *Recorder) Record(ctx context.Context, entry audit.Entry) error {
	_, err := r.store.AppendAudit(ctx, entry)
	return err
}

// Observe wraps a job handler so every job is recorded before it runs. An
// audit write failure is logged but never fails the job: the audit trail is
// an observer, not a gatekeeper.
func (r *Recorder) Observe(next queue.Handler) queue.Handler {
	return queue.HandlerFunc(func(ctx context.Context, job queue.Job) error {
		if err := r.Record(ctx, entryFor(job)); err != nil {
			r.log.WithError(err).WithField("kind", job.Kind()).Warn("audit append failed")
		}
		return next.Handle(ctx, job)
	})
}

func entryFor(job queue.Job) audit.Entry {
	entry := audit.Entry{
		Actor:  job.Actor(),
		Action: job.Kind(),
		Origin: "queue",
	}
	switch j := job.(type) {
	case queue.ProjectCreated:
		entry.SubjectType = "project"
		entry.SubjectID = j.ProjectID
	case queue.ProjectUpdated:
		entry.SubjectType = "project"
		entry.SubjectID = j.ProjectID
		entry.OldValues = map[string]any{
			"name":       j.Prior.Name,
			"status":     string(j.Prior.Status),
			"manager_id": j.Prior.ManagerID,
			"due_date":   j.Prior.DueDate,
		}
	case queue.TaskCreated:
		entry.SubjectType = "task"
		entry.SubjectID = j.TaskID
	case queue.TaskStatusChanged:
		entry.SubjectType = "task"
		entry.SubjectID = j.TaskID
		entry.OldValues = map[string]any{"status": string(j.PriorStatus)}
	case queue.CommentAdded:
		entry.SubjectType = "task"
		entry.SubjectID = j.TaskID
		entry.NewValues = map[string]any{"comment_id": j.CommentID}
	}
	return entry
}
