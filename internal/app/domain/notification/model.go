// Package notification defines the notification kinds and the in-app record
// persisted by the in-app channel.
package notification

import "time"

// Kind classifies a notification for rendering and routing.
type Kind string

const (
	KindProjectCreated  Kind = "project.created"
	KindProjectUpdated  Kind = "project.updated"
	KindProjectDeleted  Kind = "project.deleted"
	KindMemberAdded     Kind = "project.member_added"
	KindMemberRemoved   Kind = "project.member_removed"
	KindTaskCreated     Kind = "task.created"
	KindTaskAssigned    Kind = "task.assigned"
	KindStatusChanged   Kind = "task.status_changed"
	KindCommentAdded    Kind = "task.comment_added"
	KindDeadlineSoon    Kind = "reminder.due_soon"
	KindOverdue         Kind = "reminder.overdue"
	KindProjectDeadline Kind = "reminder.project_due"
	KindJobFailed       Kind = "job.failed"
)

// Notification is a delivered message to one recipient. The dispatch
// contract does not require persistence; the in-app channel records one of
// these per delivery.
type Notification struct {
	ID          string
	RecipientID string
	Kind        Kind
	Payload     map[string]any
	CreatedAt   time.Time
	ReadAt      *time.Time
}
