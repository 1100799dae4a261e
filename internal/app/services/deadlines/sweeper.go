// Package deadlines scans for approaching and missed due dates and emits
// reminder notifications on a schedule.
package deadlines

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/metrics"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/pkg/logger"
)

const (
	// taskReminderWindow is how far ahead the sweep looks for tasks coming due.
	taskReminderWindow = 24 * time.Hour
	// projectReminderWindow is how far ahead it looks for project deadlines.
	projectReminderWindow = 72 * time.Hour
)

// Notifier delivers one reminder to one recipient.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) error
}

// Summary counts the reminders emitted by one sweep.
type Summary struct {
	DueSoon          int
	Overdue          int
	ProjectDeadlines int
}

// Sweeper finds assigned tasks due within the reminder window, assigned
// overdue tasks, and projects approaching their deadline, and notifies the
// responsible users. Each run re-reports everything still matching; reminders
// repeat on every sweep until the underlying state changes.
type Sweeper struct {
	projects storage.ProjectStore
	tasks    storage.TaskStore
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewSweeper constructs a deadline sweeper.
func NewSweeper(projects storage.ProjectStore, tasks storage.TaskStore, notifier Notifier, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewDefault("deadlines")
	}
	return &Sweeper{
		projects: projects,
		tasks:    tasks,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the sweeper clock. Tests use it to pin "now".
func (s *Sweeper) WithClock(now func() time.Time) { s.now = now }

// SweepOnce runs one full scan. Individual delivery failures are logged and
// skipped; the sweep itself fails only when a store read fails.
func (s *Sweeper) SweepOnce(ctx context.Context) (Summary, error) {
	start := time.Now()
	now := s.now()
	var sum Summary

	dueSoon, err := s.tasks.ListOpenTasksDueBetween(ctx, now, now.Add(taskReminderWindow))
	if err != nil {
		return sum, err
	}
	for _, t := range dueSoon {
		if !t.Assigned() {
			continue
		}
		s.send(ctx, t.AssigneeID, notification.KindDeadlineSoon, map[string]any{
			"task_id":  t.ID,
			"title":    t.Title,
			"due_date": t.DueDate,
		})
		sum.DueSoon++
	}

	overdue, err := s.tasks.ListOpenTasksDueBetween(ctx, time.Time{}, now)
	if err != nil {
		return sum, err
	}
	for _, t := range overdue {
		if !t.Assigned() {
			continue
		}
		payload := map[string]any{
			"task_id":  t.ID,
			"title":    t.Title,
			"due_date": t.DueDate,
		}
		s.send(ctx, t.AssigneeID, notification.KindOverdue, payload)
		if t.CreatedBy != "" && t.CreatedBy != t.AssigneeID {
			s.send(ctx, t.CreatedBy, notification.KindOverdue, payload)
		}
		sum.Overdue++
	}

	projects, err := s.projects.ListOpenProjectsDueBefore(ctx, now.Add(projectReminderWindow))
	if err != nil {
		return sum, err
	}
	for _, p := range projects {
		if p.ManagerID == "" {
			continue
		}
		s.send(ctx, p.ManagerID, notification.KindProjectDeadline, map[string]any{
			"project_id": p.ID,
			"name":       p.Name,
			"due_date":   p.DueDate,
		})
		sum.ProjectDeadlines++
	}

	metrics.RecordSweep(time.Since(start), map[string]int{
		"due_soon":         sum.DueSoon,
		"overdue":          sum.Overdue,
		"project_deadline": sum.ProjectDeadlines,
	})
	s.log.WithField("due_soon", sum.DueSoon).
		WithField("overdue", sum.Overdue).
		WithField("project_deadlines", sum.ProjectDeadlines).
		Info("deadline sweep completed")
	return sum, nil
}

func (s *Sweeper) send(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) {
	if err := s.notifier.Notify(ctx, recipientID, kind, payload); err != nil {
		s.log.WithError(err).
			WithField("recipient", recipientID).
			WithField("kind", string(kind)).
			Warn("reminder delivery failed")
	}
}
