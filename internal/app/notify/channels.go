package notify

import (
	"context"
	"fmt"

	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/storage"
)

// InAppChannel records notifications in the store so they show up in the
// recipient's in-app feed.
type InAppChannel struct {
	store storage.NotificationStore
}

// NewInAppChannel creates the in-app channel backed by the given store.
func NewInAppChannel(store storage.NotificationStore) *InAppChannel {
	return &InAppChannel{store: store}
}

func (c *InAppChannel) Name() string { return "in-app" }

func (c *InAppChannel) Send(ctx context.Context, n notification.Notification) error {
	_, err := c.store.CreateNotification(ctx, n)
	return err
}

// EmailSender is the external mail transport. SMTP mechanics live outside
// this core.
type EmailSender interface {
	SendEmail(ctx context.Context, recipientID, subject string, payload map[string]any) error
}

// EmailChannel adapts an EmailSender to the Channel interface.
type EmailChannel struct {
	sender EmailSender
}

// NewEmailChannel creates the email channel over the given transport.
func NewEmailChannel(sender EmailSender) *EmailChannel {
	return &EmailChannel{sender: sender}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, n notification.Notification) error {
	subject := subjectFor(n.Kind)
	return c.sender.SendEmail(ctx, n.RecipientID, subject, n.Payload)
}

func subjectFor(kind notification.Kind) string {
	switch kind {
	case notification.KindProjectCreated:
		return "Project created"
	case notification.KindProjectUpdated:
		return "Project updated"
	case notification.KindProjectDeleted:
		return "Project deleted"
	case notification.KindMemberAdded:
		return "You were added to a project"
	case notification.KindMemberRemoved:
		return "You were removed from a project"
	case notification.KindTaskCreated:
		return "New task"
	case notification.KindTaskAssigned:
		return "Task assigned to you"
	case notification.KindStatusChanged:
		return "Task status changed"
	case notification.KindCommentAdded:
		return "New comment"
	case notification.KindDeadlineSoon:
		return "Task due soon"
	case notification.KindOverdue:
		return "Task overdue"
	case notification.KindProjectDeadline:
		return "Project deadline approaching"
	case notification.KindJobFailed:
		return "Background job failed"
	default:
		return fmt.Sprintf("Notification: %s", kind)
	}
}
