// Package storage defines the persistence interfaces the lifecycle services
// depend on. Implementations live in the memory and postgres subpackages.
package storage

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/app/domain/audit"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
)

// Transactor runs a function atomically. Writes made through the store inside
// fn become visible only when fn returns nil; any error rolls the whole
// operation back. Nested calls join the enclosing transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore reads identity records. Users are owned by the surrounding auth
// layer; the core only resolves and lists them.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// ProjectStore persists project records. DeleteProject cascades to the
// project's tasks, their comments, and its memberships.
type ProjectStore interface {
	CreateProject(ctx context.Context, p project.Project) (project.Project, error)
	UpdateProject(ctx context.Context, p project.Project) (project.Project, error)
	GetProject(ctx context.Context, id string) (project.Project, error)
	ListProjects(ctx context.Context) ([]project.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// ListOpenProjectsDueBefore returns projects with a due date before the
	// cutoff whose status is not completed or cancelled.
	ListOpenProjectsDueBefore(ctx context.Context, cutoff time.Time) ([]project.Project, error)
}

// MemberStore persists project membership entries, unique per
// (project, user) pair.
type MemberStore interface {
	// UpsertMember inserts the membership or, when the pair already exists,
	// updates its role and joined timestamp.
	UpsertMember(ctx context.Context, m project.Member) (project.Member, error)
	// RemoveMember deletes the membership if present; absent is a no-op.
	RemoveMember(ctx context.Context, projectID, userID string) error
	GetMember(ctx context.Context, projectID, userID string) (project.Member, error)
	ListMembers(ctx context.Context, projectID string) ([]project.Member, error)
}

// TaskStore persists task records. DeleteTask cascades to the task's
// comments.
type TaskStore interface {
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	UpdateTask(ctx context.Context, t task.Task) (task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	ListTasks(ctx context.Context, projectID string) ([]task.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// ListOpenTasksDueBetween returns tasks whose due date falls in
	// [from, to) and whose status is not done.
	ListOpenTasksDueBetween(ctx context.Context, from, to time.Time) ([]task.Task, error)
}

// CommentStore persists task comments.
type CommentStore interface {
	CreateComment(ctx context.Context, c task.Comment) (task.Comment, error)
	GetComment(ctx context.Context, id string) (task.Comment, error)
	ListComments(ctx context.Context, taskID string) ([]task.Comment, error)
}

// NotificationStore records in-app notification deliveries.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	ListNotifications(ctx context.Context, recipientID string) ([]notification.Notification, error)
}

// AuditStore appends audit entries. Entries are never updated or deleted.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry audit.Entry) (audit.Entry, error)
	ListAudit(ctx context.Context, subjectType, subjectID string) ([]audit.Entry, error)
}

// Store aggregates every persistence interface plus the transaction
// boundary. Both the memory and postgres implementations satisfy it.
type Store interface {
	Transactor
	UserStore
	ProjectStore
	MemberStore
	TaskStore
	CommentStore
	NotificationStore
	AuditStore
}
