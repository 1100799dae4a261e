// Package project defines the project aggregate: the project record, its
// membership entries, and the pre-mutation snapshot used for fan-out diffing.
package project

import "time"

// Status is the project lifecycle state.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on-hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Closed reports whether the project is in a terminal state. Closed projects
// are excluded from overdue checks and deadline reminders.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority ranks a project for planning purposes.
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

// MemberRole is a user's role within one project.
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleLead   MemberRole = "lead"
	RoleViewer MemberRole = "viewer"
)

// Valid reports whether the member role is a known value.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleMember, RoleLead, RoleViewer:
		return true
	}
	return false
}

// Project is the project record. The manager is always also a member with
// role lead; the lifecycle service maintains that invariant.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      Status
	Priority    Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Budget      float64
	ManagerID   string
	Settings    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member is one (project, user) membership entry. Unique per pair; adding an
// existing member updates role and joined timestamp instead of duplicating.
type Member struct {
	ProjectID string
	UserID    string
	Role      MemberRole
	JoinedAt  time.Time
}

// Snapshot is an immutable copy of the fields fan-out consumers diff
// against. It is captured before a mutation and carried in job payloads so
// handlers never re-read mutated state.
type Snapshot struct {
	Name      string
	Status    Status
	DueDate   *time.Time
	ManagerID string
}

// NewSnapshot captures the notification-relevant fields of a project.
func NewSnapshot(p Project) Snapshot {
	return Snapshot{
		Name:      p.Name,
		Status:    p.Status,
		DueDate:   cloneTime(p.DueDate),
		ManagerID: p.ManagerID,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
