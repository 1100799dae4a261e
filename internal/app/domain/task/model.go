// Package task defines the task aggregate and its comments.
package task

import "time"

// Status is the task workflow state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Valid reports whether the status is a known workflow state.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task is a unit of work within a project. CreatedBy is stamped from the
// acting identity at creation and never changes afterwards. CompletedAt is
// managed exclusively by the status-change paths.
type Task struct {
	ID             string
	ProjectID      string
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	AssigneeID     string // empty when unassigned
	CreatedBy      string
	DueDate        *time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	EstimatedHours float64
	ActualHours    float64
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Assigned reports whether the task has an assignee.
func (t Task) Assigned() bool { return t.AssigneeID != "" }

// Comment is attached to a task and immutable once created; the attachment
// list is fixed at creation time.
type Comment struct {
	ID          string
	TaskID      string
	AuthorID    string
	Content     string
	Attachments []string
	CreatedAt   time.Time
}
