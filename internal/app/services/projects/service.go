// Package projects orchestrates the project lifecycle: create, update and
// delete, manager reassignment, member synchronization, and read-side
// metrics.
package projects

import (
	"context"
	"strings"
	"time"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/services/membership"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Notifier is the delivery surface this service needs: a synchronous
// notification to a single direct actor and isolated per-recipient fan-out.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) error
	NotifyEach(ctx context.Context, recipientIDs []string, kind notification.Kind, payload map[string]any) int
}

// Service coordinates project lifecycle operations.
type Service struct {
	users    storage.UserStore
	projects storage.ProjectStore
	tasks    storage.TaskStore
	members  *membership.Service
	tx       storage.Transactor
	notifier Notifier
	queue    queue.Queue
	log      *logger.Logger
	now      func() time.Time
}

// New constructs a project service.
func New(
	users storage.UserStore,
	projects storage.ProjectStore,
	tasks storage.TaskStore,
	members *membership.Service,
	tx storage.Transactor,
	notifier Notifier,
	q queue.Queue,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewDefault("projects")
	}
	return &Service{
		users:    users,
		projects: projects,
		tasks:    tasks,
		members:  members,
		tx:       tx,
		notifier: notifier,
		queue:    q,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) { s.now = now }

// CreateInput carries the fields accepted when creating a project.
type CreateInput struct {
	Name        string
	Description string
	Status      project.Status
	Priority    project.Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Budget      float64
	ManagerID   string
	Settings    map[string]string
}

// Create persists a new project, adds the manager as a lead member inside
// the same transaction, then sends the manager an immediate creation
// notification and enqueues the member fan-out.
func (s *Service) Create(ctx context.Context, actor user.User, in CreateInput) (project.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ManagerID = strings.TrimSpace(in.ManagerID)
	if in.Name == "" {
		return project.Project{}, core.RequiredError("name")
	}
	if in.ManagerID == "" {
		return project.Project{}, core.RequiredError("manager_id")
	}
	if in.Status == "" {
		in.Status = project.StatusPlanning
	}
	if !in.Status.Valid() {
		return project.Project{}, core.NewValidationError("status", "unknown value "+string(in.Status))
	}
	if in.Priority == "" {
		in.Priority = project.PriorityMedium
	}
	if !in.Priority.Valid() {
		return project.Project{}, core.NewValidationError("priority", "unknown value "+string(in.Priority))
	}

	if _, err := s.users.GetUser(ctx, in.ManagerID); err != nil {
		return project.Project{}, err
	}

	var created project.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.projects.CreateProject(ctx, project.Project{
			Name:        in.Name,
			Description: in.Description,
			Status:      in.Status,
			Priority:    in.Priority,
			StartDate:   in.StartDate,
			DueDate:     in.DueDate,
			Budget:      in.Budget,
			ManagerID:   in.ManagerID,
			Settings:    in.Settings,
		})
		if err != nil {
			return err
		}
		_, err = s.members.AddMember(ctx, created.ID, in.ManagerID, project.RoleLead)
		return err
	})
	if err != nil {
		return project.Project{}, err
	}

	// Persistence committed; notification failures no longer roll anything
	// back and are handled at the dispatch boundary.
	if err := s.notifier.Notify(ctx, created.ManagerID, notification.KindProjectCreated, map[string]any{
		"project_id": created.ID,
		"name":       created.Name,
	}); err != nil {
		s.log.WithError(err).WithField("project_id", created.ID).Warn("immediate creation notification failed")
	}
	s.enqueue(ctx, queue.ProjectCreated{ProjectID: created.ID, ActorID: actor.ID})

	s.log.WithField("project_id", created.ID).
		WithField("manager_id", created.ManagerID).
		Info("project created")
	return created, nil
}

// UpdateInput carries a partial project update. Nil fields are unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *project.Status
	Priority    *project.Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Budget      *float64
	ManagerID   *string
	Settings    map[string]string
}

// Update applies a partial update. When the manager changes, the new manager
// becomes a lead member and the old manager leaves the membership unless they
// hold an administrative role. A change to status, due date or manager
// enqueues the member fan-out carrying the pre-change snapshot. Returns the
// authoritative post-commit snapshot.
func (s *Service) Update(ctx context.Context, actor user.User, projectID string, in UpdateInput) (project.Project, error) {
	current, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}
	prior := project.NewSnapshot(current)

	if in.Status != nil && !in.Status.Valid() {
		return project.Project{}, core.NewValidationError("status", "unknown value "+string(*in.Status))
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return project.Project{}, core.NewValidationError("priority", "unknown value "+string(*in.Priority))
	}

	managerChanged := in.ManagerID != nil && *in.ManagerID != current.ManagerID
	if managerChanged {
		if _, err := s.users.GetUser(ctx, *in.ManagerID); err != nil {
			return project.Project{}, err
		}
	}

	modified := current
	if in.Name != nil {
		modified.Name = *in.Name
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
	if in.StartDate != nil {
		modified.StartDate = in.StartDate
	}
	if in.DueDate != nil {
		modified.DueDate = in.DueDate
	}
	if in.Budget != nil {
		modified.Budget = *in.Budget
	}
	if in.ManagerID != nil {
		modified.ManagerID = *in.ManagerID
	}
	if in.Settings != nil {
		modified.Settings = in.Settings
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.projects.UpdateProject(ctx, modified); err != nil {
			return err
		}
		if !managerChanged {
			return nil
		}
		if _, err := s.members.AddMember(ctx, projectID, modified.ManagerID, project.RoleLead); err != nil {
			return err
		}
		// Administrators are never auto-removed from project membership.
		old, err := s.users.GetUser(ctx, current.ManagerID)
		if err == nil && old.IsAdmin() {
			return nil
		}
		return s.members.RemoveMember(ctx, projectID, current.ManagerID)
	})
	if err != nil {
		return project.Project{}, err
	}

	refreshed, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}

	if notifyRelevantChange(prior, refreshed) {
		s.enqueue(ctx, queue.ProjectUpdated{ProjectID: projectID, Prior: prior, ActorID: actor.ID})
	}

	s.log.WithField("project_id", projectID).Info("project updated")
	return refreshed, nil
}

func notifyRelevantChange(prior project.Snapshot, p project.Project) bool {
	if prior.Status != p.Status || prior.ManagerID != p.ManagerID {
		return true
	}
	return !timeEqual(prior.DueDate, p.DueDate)
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Delete notifies every current member that the project is being deleted,
// then deletes it, cascading to tasks and memberships. A notification
// failure for one member aborts neither the deletion nor delivery to the
// other members.
func (s *Service) Delete(ctx context.Context, actor user.User, projectID string) error {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	members, err := s.members.List(ctx, projectID)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		recipientIDs := make([]string, 0, len(members))
		for _, m := range members {
			recipientIDs = append(recipientIDs, m.UserID)
		}
		s.notifier.NotifyEach(ctx, recipientIDs, notification.KindProjectDeleted, map[string]any{
			"project_id": p.ID,
			"name":       p.Name,
		})
		return s.projects.DeleteProject(ctx, projectID)
	})
	if err != nil {
		return err
	}

	s.log.WithField("project_id", projectID).
		WithField("members_notified", len(members)).
		Info("project deleted")
	return nil
}

// AddMember adds the user to the project and notifies the affected user of
// the membership change. The rest of the team is not notified.
func (s *Service) AddMember(ctx context.Context, actor user.User, projectID, userID string, role project.MemberRole) (project.Member, error) {
	m, err := s.members.AddMember(ctx, projectID, userID, role)
	if err != nil {
		return project.Member{}, err
	}
	if err := s.notifier.Notify(ctx, userID, notification.KindMemberAdded, map[string]any{
		"project_id": projectID,
		"role":       string(m.Role),
	}); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("membership notification failed")
	}
	return m, nil
}

// RemoveMember removes the user from the project and notifies them.
func (s *Service) RemoveMember(ctx context.Context, actor user.User, projectID, userID string) error {
	if err := s.members.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	if err := s.notifier.Notify(ctx, userID, notification.KindMemberRemoved, map[string]any{
		"project_id": projectID,
	}); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("membership notification failed")
	}
	return nil
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, projectID string) (project.Project, error) {
	return s.projects.GetProject(ctx, projectID)
}

// List returns all projects.
func (s *Service) List(ctx context.Context) ([]project.Project, error) {
	return s.projects.ListProjects(ctx)
}

func (s *Service) enqueue(ctx context.Context, job queue.Job) {
	if err := s.queue.Enqueue(ctx, job); err != nil {
		// The mutation committed; a lost fan-out is the accepted degraded
		// mode and only observable here.
		s.log.WithError(err).WithField("kind", job.Kind()).Warn("enqueue failed")
	}
}
