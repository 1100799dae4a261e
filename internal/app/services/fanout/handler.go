// Package fanout consumes queued lifecycle jobs and expands them into
// per-recipient notifications and webhook posts.
package fanout

import (
	"context"
	"fmt"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/notify"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Notifier is the delivery surface the handler needs.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) error
	NotifyEach(ctx context.Context, recipientIDs []string, kind notification.Kind, payload map[string]any) int
}

// Handler expands lifecycle jobs into notifications. It satisfies
// queue.Handler and is safe to run more than once per job: payloads are
// snapshots, so repeated runs deliver the same message again rather than a
// diverging one.
type Handler struct {
	users    storage.UserStore
	projects storage.ProjectStore
	members  storage.MemberStore
	tasks    storage.TaskStore
	notifier Notifier
	webhook  *notify.WebhookPoster
	log      *logger.Logger
}

var _ queue.Handler = (*Handler)(nil)

// New constructs the fan-out handler. webhook may be nil.
func New(
	users storage.UserStore,
	projects storage.ProjectStore,
	members storage.MemberStore,
	tasks storage.TaskStore,
	notifier Notifier,
	webhook *notify.WebhookPoster,
	log *logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewDefault("fanout")
	}
	return &Handler{
		users:    users,
		projects: projects,
		members:  members,
		tasks:    tasks,
		notifier: notifier,
		webhook:  webhook,
		log:      log,
	}
}

// Handle dispatches on the concrete job type. An unknown type is a job
// failure, not a silent skip.
func (h *Handler) Handle(ctx context.Context, job queue.Job) error {
	switch j := job.(type) {
	case queue.ProjectCreated:
		return h.projectCreated(ctx, j)
	case queue.ProjectUpdated:
		return h.projectUpdated(ctx, j)
	case queue.TaskCreated:
		return h.taskCreated(ctx, j)
	case queue.TaskStatusChanged:
		return h.taskStatusChanged(ctx, j)
	case queue.CommentAdded:
		return h.commentAdded(ctx, j)
	default:
		return fmt.Errorf("unhandled job type %T", job)
	}
}

func (h *Handler) projectCreated(ctx context.Context, j queue.ProjectCreated) error {
	p, err := h.projects.GetProject(ctx, j.ProjectID)
	if err != nil {
		// A delete can race the creation fan-out; nothing left to announce.
		if core.IsNotFound(err) {
			h.log.WithField("project_id", j.ProjectID).Debug("project gone before fanout, skipping")
			return nil
		}
		return err
	}
	ids, err := h.memberIDs(ctx, j.ProjectID)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"project_id": p.ID,
		"name":       p.Name,
		"manager_id": p.ManagerID,
	}
	delivered := h.notifier.NotifyEach(ctx, ids, notification.KindProjectCreated, payload)
	h.webhook.Post(ctx, string(notification.KindProjectCreated), payload)
	h.log.WithField("project_id", p.ID).
		WithField("delivered", delivered).
		Debug("project creation fanned out")
	return nil
}

func (h *Handler) projectUpdated(ctx context.Context, j queue.ProjectUpdated) error {
	p, err := h.projects.GetProject(ctx, j.ProjectID)
	if err != nil {
		// The project may be gone by the time the job runs; there is nothing
		// left to announce.
		if core.IsNotFound(err) {
			h.log.WithField("project_id", j.ProjectID).Debug("project gone before fanout, skipping")
			return nil
		}
		return err
	}
	ids, err := h.memberIDs(ctx, j.ProjectID)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"project_id":     p.ID,
		"name":           p.Name,
		"status":         string(p.Status),
		"manager_id":     p.ManagerID,
		"prior_status":   string(j.Prior.Status),
		"prior_manager":  j.Prior.ManagerID,
		"prior_due_date": j.Prior.DueDate,
	}
	delivered := h.notifier.NotifyEach(ctx, ids, notification.KindProjectUpdated, payload)
	h.webhook.Post(ctx, string(notification.KindProjectUpdated), payload)
	h.log.WithField("project_id", p.ID).
		WithField("delivered", delivered).
		Debug("project update fanned out")
	return nil
}

// taskCreated tells the project manager about a new task, unless the manager
// created it themselves.
func (h *Handler) taskCreated(ctx context.Context, j queue.TaskCreated) error {
	t, err := h.tasks.GetTask(ctx, j.TaskID)
	if err != nil {
		if core.IsNotFound(err) {
			h.log.WithField("task_id", j.TaskID).Debug("task gone before fanout, skipping")
			return nil
		}
		return err
	}
	p, err := h.projects.GetProject(ctx, t.ProjectID)
	if err != nil {
		return err
	}
	if p.ManagerID == "" || p.ManagerID == t.CreatedBy {
		return nil
	}
	if err := h.notifier.Notify(ctx, p.ManagerID, notification.KindTaskCreated, map[string]any{
		"task_id":    t.ID,
		"title":      t.Title,
		"project_id": t.ProjectID,
		"created_by": t.CreatedBy,
	}); err != nil {
		h.log.WithError(err).WithField("task_id", t.ID).Warn("manager notification failed")
	}
	return nil
}

// taskStatusChanged tells every stakeholder of the task about the
// transition: assignee, creator, and project manager, deduplicated.
func (h *Handler) taskStatusChanged(ctx context.Context, j queue.TaskStatusChanged) error {
	t, err := h.tasks.GetTask(ctx, j.TaskID)
	if err != nil {
		if core.IsNotFound(err) {
			h.log.WithField("task_id", j.TaskID).Debug("task gone before fanout, skipping")
			return nil
		}
		return err
	}
	p, err := h.projects.GetProject(ctx, t.ProjectID)
	if err != nil {
		return err
	}

	var ids []string
	seen := map[string]bool{"": true}
	for _, id := range []string{t.AssigneeID, t.CreatedBy, p.ManagerID} {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	h.notifier.NotifyEach(ctx, ids, notification.KindStatusChanged, map[string]any{
		"task_id":     t.ID,
		"title":       t.Title,
		"from_status": string(j.PriorStatus),
		"to_status":   string(t.Status),
	})
	return nil
}

// commentAdded delivers to the recipient set computed at enqueue time. A
// recipient deleted since then is skipped, never a job failure.
func (h *Handler) commentAdded(ctx context.Context, j queue.CommentAdded) error {
	for _, id := range j.RecipientIDs {
		if _, err := h.users.GetUser(ctx, id); err != nil {
			if core.IsNotFound(err) {
				h.log.WithField("user_id", id).Debug("comment recipient gone, skipping")
				continue
			}
			return err
		}
		if err := h.notifier.Notify(ctx, id, notification.KindCommentAdded, map[string]any{
			"task_id":    j.TaskID,
			"comment_id": j.CommentID,
			"author_id":  j.ActorID,
		}); err != nil {
			h.log.WithError(err).WithField("user_id", id).Warn("comment notification failed")
		}
	}
	return nil
}

func (h *Handler) memberIDs(ctx context.Context, projectID string) ([]string, error) {
	members, err := h.members.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}
