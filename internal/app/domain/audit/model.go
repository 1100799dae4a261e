// Package audit defines the append-only audit trail entry. The core never
// mutates or deletes entries; it only writes through a Recorder.
package audit

import (
	"context"
	"time"
)

// Entry is one append-only audit record.
type Entry struct {
	ID          string
	Actor       string
	Action      string
	SubjectType string
	SubjectID   string
	OldValues   map[string]any
	NewValues   map[string]any
	Origin      string
	CreatedAt   time.Time
}

// Recorder is the write sink for audit entries. It is called by framework
// level hooks around the lifecycle services, not by the services themselves.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
