// Package tasks orchestrates the task lifecycle: create, update, status
// transitions, deletion, and comments.
package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Notifier delivers a synchronous notification to one recipient.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) error
}

// Service coordinates task lifecycle operations.
type Service struct {
	users    storage.UserStore
	projects storage.ProjectStore
	tasks    storage.TaskStore
	comments storage.CommentStore
	notifier Notifier
	queue    queue.Queue
	log      *logger.Logger
	now      func() time.Time
}

// New constructs a task service.
func New(
	users storage.UserStore,
	projects storage.ProjectStore,
	tasks storage.TaskStore,
	comments storage.CommentStore,
	notifier Notifier,
	q queue.Queue,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewDefault("tasks")
	}
	return &Service{
		users:    users,
		projects: projects,
		tasks:    tasks,
		comments: comments,
		notifier: notifier,
		queue:    q,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) { s.now = now }

// CreateInput carries the fields accepted when creating a task.
type CreateInput struct {
	ProjectID      string
	Title          string
	Description    string
	Status         task.Status
	Priority       task.Priority
	AssigneeID     string
	DueDate        *time.Time
	EstimatedHours float64
	Tags           []string
}

// Create persists a new task stamped with the acting user as creator. When
// the task is born assigned, the assignee gets an immediate assignment
// notification after the commit; the project-level fan-out runs
// asynchronously.
func (s *Service) Create(ctx context.Context, actor user.User, in CreateInput) (task.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.AssigneeID = strings.TrimSpace(in.AssigneeID)
	if in.Title == "" {
		return task.Task{}, core.RequiredError("title")
	}
	if in.ProjectID == "" {
		return task.Task{}, core.RequiredError("project_id")
	}
	if in.Status == "" {
		in.Status = task.StatusTodo
	}
	if !in.Status.Valid() {
		return task.Task{}, core.NewValidationError("status", "unknown value "+string(in.Status))
	}
	if in.Priority == "" {
		in.Priority = task.PriorityMedium
	}
	if !in.Priority.Valid() {
		return task.Task{}, core.NewValidationError("priority", "unknown value "+string(in.Priority))
	}

	if _, err := s.projects.GetProject(ctx, in.ProjectID); err != nil {
		return task.Task{}, err
	}
	if in.AssigneeID != "" {
		if _, err := s.users.GetUser(ctx, in.AssigneeID); err != nil {
			return task.Task{}, err
		}
	}

	created, err := s.tasks.CreateTask(ctx, task.Task{
		ProjectID:      in.ProjectID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		Priority:       in.Priority,
		AssigneeID:     in.AssigneeID,
		CreatedBy:      actor.ID,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		Tags:           in.Tags,
	})
	if err != nil {
		return task.Task{}, err
	}

	if created.Assigned() {
		s.notifyAssignment(ctx, created)
	}
	s.enqueue(ctx, queue.TaskCreated{TaskID: created.ID, ActorID: actor.ID})

	s.log.WithField("task_id", created.ID).
		WithField("project_id", created.ProjectID).
		Info("task created")
	return created, nil
}

// UpdateInput carries a partial task update. Nil fields are unchanged. An
// AssigneeID pointing at the empty string unassigns the task.
type UpdateInput struct {
	Title          *string
	Description    *string
	Status         *task.Status
	Priority       *task.Priority
	AssigneeID     *string
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
}

// Update applies a partial update in one write. A transition into done stamps
// CompletedAt only when it was never set, so re-completing through this path
// keeps the original completion time. A new assignee is notified immediately;
// a status change additionally enqueues the stakeholder fan-out with the
// pre-change status.
func (s *Service) Update(ctx context.Context, actor user.User, taskID string, in UpdateInput) (task.Task, error) {
	current, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return task.Task{}, err
	}
	priorStatus := current.Status
	priorAssignee := current.AssigneeID

	if in.Status != nil && !in.Status.Valid() {
		return task.Task{}, core.NewValidationError("status", "unknown value "+string(*in.Status))
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return task.Task{}, core.NewValidationError("priority", "unknown value "+string(*in.Priority))
	}
	if in.AssigneeID != nil && *in.AssigneeID != "" && *in.AssigneeID != priorAssignee {
		if _, err := s.users.GetUser(ctx, *in.AssigneeID); err != nil {
			return task.Task{}, err
		}
	}

	modified := current
	if in.Title != nil {
		modified.Title = *in.Title
	}
	if in.Description != nil {
		modified.Description = *in.Description
	}
	if in.Status != nil {
		modified.Status = *in.Status
	}
	if in.Priority != nil {
		modified.Priority = *in.Priority
	}
	if in.AssigneeID != nil {
		modified.AssigneeID = *in.AssigneeID
	}
	if in.DueDate != nil {
		modified.DueDate = in.DueDate
	}
	if in.EstimatedHours != nil {
		modified.EstimatedHours = *in.EstimatedHours
	}
	if in.ActualHours != nil {
		modified.ActualHours = *in.ActualHours
	}
	if in.Tags != nil {
		modified.Tags = in.Tags
	}
	if modified.Status == task.StatusDone && modified.CompletedAt == nil {
		now := s.now()
		modified.CompletedAt = &now
	}

	updated, err := s.tasks.UpdateTask(ctx, modified)
	if err != nil {
		return task.Task{}, err
	}

	if updated.Assigned() && updated.AssigneeID != priorAssignee {
		s.notifyAssignment(ctx, updated)
	}
	if updated.Status != priorStatus {
		s.enqueue(ctx, queue.TaskStatusChanged{
			TaskID:      updated.ID,
			PriorStatus: priorStatus,
			ActorID:     actor.ID,
		})
	}

	s.log.WithField("task_id", updated.ID).Info("task updated")
	return updated, nil
}

// UpdateStatus performs a dedicated status transition. Entering done always
// restamps CompletedAt with the current time, unlike the general update path.
// Leaving todo for in-progress stamps StartedAt. The assignee, when there is
// one, is told synchronously; there is no asynchronous fan-out on this path.
func (s *Service) UpdateStatus(ctx context.Context, actor user.User, taskID string, status task.Status) (task.Task, error) {
	if !status.Valid() {
		return task.Task{}, core.NewValidationError("status", "unknown value "+string(status))
	}
	current, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return task.Task{}, err
	}
	priorStatus := current.Status

	modified := current
	modified.Status = status
	now := s.now()
	if status == task.StatusDone {
		modified.CompletedAt = &now
	}
	if priorStatus == task.StatusTodo && status == task.StatusInProgress {
		modified.StartedAt = &now
	}

	updated, err := s.tasks.UpdateTask(ctx, modified)
	if err != nil {
		return task.Task{}, err
	}

	if updated.Assigned() {
		if err := s.notifier.Notify(ctx, updated.AssigneeID, notification.KindStatusChanged, map[string]any{
			"task_id":     updated.ID,
			"title":       updated.Title,
			"from_status": string(priorStatus),
			"to_status":   string(updated.Status),
		}); err != nil {
			s.log.WithError(err).WithField("task_id", updated.ID).Warn("status notification failed")
		}
	}

	s.log.WithField("task_id", updated.ID).
		WithField("status", string(updated.Status)).
		Info("task status changed")
	return updated, nil
}

// Delete removes the task and its comments. Deletion is silent; nobody is
// notified.
func (s *Service) Delete(ctx context.Context, actor user.User, taskID string) error {
	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.log.WithField("task_id", taskID).Info("task deleted")
	return nil
}

// AddComment attaches a comment to the task and enqueues notification of the
// task's stakeholders. Recipients are the assignee and the task creator,
// skipping whichever is unset and always excluding the comment author.
func (s *Service) AddComment(ctx context.Context, actor user.User, taskID, content string, attachments []string) (task.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return task.Comment{}, core.RequiredError("content")
	}
	t, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return task.Comment{}, err
	}

	c, err := s.comments.CreateComment(ctx, task.Comment{
		TaskID:      taskID,
		AuthorID:    actor.ID,
		Content:     content,
		Attachments: attachments,
	})
	if err != nil {
		return task.Comment{}, err
	}

	recipients := commentRecipients(t, actor.ID)
	if len(recipients) > 0 {
		s.enqueue(ctx, queue.CommentAdded{
			TaskID:       taskID,
			CommentID:    c.ID,
			RecipientIDs: recipients,
			ActorID:      actor.ID,
		})
	}

	s.log.WithField("task_id", taskID).
		WithField("comment_id", c.ID).
		Info("comment added")
	return c, nil
}

// commentRecipients computes the stakeholder set for a comment: assignee and
// creator, deduplicated, minus unset slots and the author.
func commentRecipients(t task.Task, authorID string) []string {
	var out []string
	seen := map[string]bool{"": true, authorID: true}
	for _, id := range []string{t.AssigneeID, t.CreatedBy} {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, taskID string) (task.Task, error) {
	return s.tasks.GetTask(ctx, taskID)
}

// List returns the project's tasks.
func (s *Service) List(ctx context.Context, projectID string) ([]task.Task, error) {
	return s.tasks.ListTasks(ctx, projectID)
}

// ListComments returns the task's comments in creation order.
func (s *Service) ListComments(ctx context.Context, taskID string) ([]task.Comment, error) {
	return s.comments.ListComments(ctx, taskID)
}

func (s *Service) notifyAssignment(ctx context.Context, t task.Task) {
	if err := s.notifier.Notify(ctx, t.AssigneeID, notification.KindTaskAssigned, map[string]any{
		"task_id":    t.ID,
		"title":      t.Title,
		"project_id": t.ProjectID,
	}); err != nil {
		s.log.WithError(err).WithField("task_id", t.ID).Warn("assignment notification failed")
	}
}

func (s *Service) enqueue(ctx context.Context, job queue.Job) {
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.WithError(err).WithField("kind", job.Kind()).Warn("enqueue failed")
	}
}
