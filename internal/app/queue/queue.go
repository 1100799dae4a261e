// Package queue defines the asynchronous fan-out job contract: one typed job
// variant per lifecycle event, an enqueue interface for producers, and an
// in-process worker pool for consumers.
//
// Payloads are snapshots captured at enqueue time. Handlers must never
// re-read "current" entity state for diffing, so jobs executing out of
// submission order stay correct.
package queue

import (
	"context"

	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
)

// Job is one asynchronous fan-out unit. Each variant carries its own
// strongly-typed payload; consumers switch on the concrete type.
type Job interface {
	// Kind is a stable name used for logging and metrics.
	Kind() string
	// Actor is the user whose action produced the job. Job failures notify
	// this user as a courtesy.
	Actor() string
}

// ProjectCreated fans out after a project is created.
type ProjectCreated struct {
	ProjectID string
	ActorID   string
}

func (ProjectCreated) Kind() string    { return "project.created" }
func (j ProjectCreated) Actor() string { return j.ActorID }

// ProjectUpdated fans out after a notification-relevant project update. Prior
// holds the pre-change field values for diffing on the receiving end.
type ProjectUpdated struct {
	ProjectID string
	Prior     project.Snapshot
	ActorID   string
}

func (ProjectUpdated) Kind() string    { return "project.updated" }
func (j ProjectUpdated) Actor() string { return j.ActorID }

// TaskCreated fans out after a task is created.
type TaskCreated struct {
	TaskID  string
	ActorID string
}

func (TaskCreated) Kind() string    { return "task.created" }
func (j TaskCreated) Actor() string { return j.ActorID }

// TaskStatusChanged fans out after a task status transition.
type TaskStatusChanged struct {
	TaskID      string
	PriorStatus task.Status
	ActorID     string
}

func (TaskStatusChanged) Kind() string    { return "task.status_changed" }
func (j TaskStatusChanged) Actor() string { return j.ActorID }

// CommentAdded fans out after a comment is attached to a task. RecipientIDs
// is the stakeholder set computed at enqueue time, author already excluded.
type CommentAdded struct {
	TaskID       string
	CommentID    string
	RecipientIDs []string
	ActorID      string
}

func (CommentAdded) Kind() string    { return "task.comment_added" }
func (j CommentAdded) Actor() string { return j.ActorID }

// Queue is the producer side: fire-and-forget enqueue. Producers return
// immediately and never block on delivery completion.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler is the consumer side. A handler error marks the job failed; the
// queue infrastructure decides whether to retry, so handlers must be safe to
// run more than once.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, job Job) error

func (f HandlerFunc) Handle(ctx context.Context, job Job) error {
	if f == nil {
		return nil
	}
	return f(ctx, job)
}
