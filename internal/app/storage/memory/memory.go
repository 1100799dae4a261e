// Package memory provides a thread-safe in-memory implementation of the
// storage interfaces. It is intended for tests and local development and
// deliberately keeps the implementation simple.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/audit"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use. Transactions serialize on a dedicated mutex and roll
// back by restoring a snapshot of every table.
type Store struct {
	txMu sync.Mutex

	mu            sync.RWMutex
	nextID        int64
	users         map[string]user.User
	projects      map[string]project.Project
	members       map[string]project.Member // key: projectID + "/" + userID
	tasks         map[string]task.Task
	comments      map[string]task.Comment
	notifications map[string]notification.Notification
	auditEntries  []audit.Entry
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:        1,
		users:         make(map[string]user.User),
		projects:      make(map[string]project.Project),
		members:       make(map[string]project.Member),
		tasks:         make(map[string]task.Task),
		comments:      make(map[string]task.Comment),
		notifications: make(map[string]notification.Notification),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func memberKey(projectID, userID string) string {
	return projectID + "/" + userID
}

// Transactor implementation ---------------------------------------------------

type txKey struct{}

// WithinTx serializes the function against other transactions and restores a
// snapshot of all tables when it fails. Non-transactional writes racing a
// transaction are not protected; production code uses the postgres store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type tables struct {
	nextID        int64
	users         map[string]user.User
	projects      map[string]project.Project
	members       map[string]project.Member
	tasks         map[string]task.Task
	comments      map[string]task.Comment
	notifications map[string]notification.Notification
	auditEntries  []audit.Entry
}

func (s *Store) snapshot() tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tables{
		nextID:        s.nextID,
		users:         copyTable(s.users),
		projects:      copyTable(s.projects),
		members:       copyTable(s.members),
		tasks:         copyTable(s.tasks),
		comments:      copyTable(s.comments),
		notifications: copyTable(s.notifications),
		auditEntries:  append([]audit.Entry(nil), s.auditEntries...),
	}
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = t.nextID
	s.users = t.users
	s.projects = t.projects
	s.members = t.members
	s.tasks = t.tasks
	s.comments = t.comments
	s.notifications = t.notifications
	s.auditEntries = t.auditEntries
}

func copyTable[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, core.NewConflictError("user", u.ID, "already exists")
	}
	if u.Role == "" {
		u.Role = user.RoleMember
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, core.NewNotFoundError("user", id)
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ProjectStore implementation -------------------------------------------------

func (s *Store) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.projects[p.ID]; exists {
		return project.Project{}, core.NewConflictError("project", p.ID, "already exists")
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Settings = copySettings(p.Settings)

	s.projects[p.ID] = p
	return cloneProject(p), nil
}

func (s *Store) UpdateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.projects[p.ID]
	if !ok {
		return project.Project{}, core.NewNotFoundError("project", p.ID)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	p.Settings = copySettings(p.Settings)

	s.projects[p.ID] = p
	return cloneProject(p), nil
}

func (s *Store) GetProject(_ context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, core.NewNotFoundError("project", id)
	}
	return cloneProject(p), nil
}

func (s *Store) ListProjects(_ context.Context) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		result = append(result, cloneProject(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeleteProject removes the project and cascades to its tasks, their
// comments, and its memberships.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return core.NewNotFoundError("project", id)
	}
	delete(s.projects, id)

	for taskID, t := range s.tasks {
		if t.ProjectID != id {
			continue
		}
		delete(s.tasks, taskID)
		for commentID, c := range s.comments {
			if c.TaskID == taskID {
				delete(s.comments, commentID)
			}
		}
	}
	for key, m := range s.members {
		if m.ProjectID == id {
			delete(s.members, key)
		}
	}
	return nil
}

func (s *Store) ListOpenProjectsDueBefore(_ context.Context, cutoff time.Time) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []project.Project
	for _, p := range s.projects {
		if p.DueDate == nil || p.Status.Closed() {
			continue
		}
		if p.DueDate.Before(cutoff) {
			result = append(result, cloneProject(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MemberStore implementation --------------------------------------------------

func (s *Store) UpsertMember(_ context.Context, m project.Member) (project.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[m.ProjectID]; !ok {
		return project.Member{}, core.NewNotFoundError("project", m.ProjectID)
	}
	m.JoinedAt = time.Now().UTC()
	s.members[memberKey(m.ProjectID, m.UserID)] = m
	return m, nil
}

func (s *Store) RemoveMember(_ context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, memberKey(projectID, userID))
	return nil
}

func (s *Store) GetMember(_ context.Context, projectID, userID string) (project.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberKey(projectID, userID)]
	if !ok {
		return project.Member{}, core.NewNotFoundError("member", userID)
	}
	return m, nil
}

func (s *Store) ListMembers(_ context.Context, projectID string) ([]project.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []project.Member
	for _, m := range s.members {
		if m.ProjectID == projectID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// TaskStore implementation ----------------------------------------------------

func (s *Store) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[t.ProjectID]; !ok {
		return task.Task{}, core.NewNotFoundError("project", t.ProjectID)
	}
	if t.ID == "" {
		t.ID = s.nextIDLocked()
	} else if _, exists := s.tasks[t.ID]; exists {
		return task.Task{}, core.NewConflictError("task", t.ID, "already exists")
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Tags = append([]string(nil), t.Tags...)

	s.tasks[t.ID] = t
	return cloneTask(t), nil
}

func (s *Store) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.tasks[t.ID]
	if !ok {
		return task.Task{}, core.NewNotFoundError("task", t.ID)
	}

	t.CreatedAt = original.CreatedAt
	t.CreatedBy = original.CreatedBy
	t.UpdatedAt = time.Now().UTC()
	t.Tags = append([]string(nil), t.Tags...)

	s.tasks[t.ID] = t
	return cloneTask(t), nil
}

func (s *Store) GetTask(_ context.Context, id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, core.NewNotFoundError("task", id)
	}
	return cloneTask(t), nil
}

func (s *Store) ListTasks(_ context.Context, projectID string) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []task.Task
	for _, t := range s.tasks {
		if projectID == "" || t.ProjectID == projectID {
			result = append(result, cloneTask(t))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeleteTask removes the task and cascades to its comments.
func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return core.NewNotFoundError("task", id)
	}
	delete(s.tasks, id)
	for commentID, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, commentID)
		}
	}
	return nil
}

func (s *Store) ListOpenTasksDueBetween(_ context.Context, from, to time.Time) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []task.Task
	for _, t := range s.tasks {
		if t.DueDate == nil || t.Status == task.StatusDone {
			continue
		}
		due := *t.DueDate
		if !due.Before(from) && due.Before(to) {
			result = append(result, cloneTask(t))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CommentStore implementation -------------------------------------------------

func (s *Store) CreateComment(_ context.Context, c task.Comment) (task.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[c.TaskID]; !ok {
		return task.Comment{}, core.NewNotFoundError("task", c.TaskID)
	}
	if c.ID == "" {
		c.ID = s.nextIDLocked()
	}
	c.CreatedAt = time.Now().UTC()
	c.Attachments = append([]string(nil), c.Attachments...)

	s.comments[c.ID] = c
	return cloneComment(c), nil
}

func (s *Store) GetComment(_ context.Context, id string) (task.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return task.Comment{}, core.NewNotFoundError("comment", id)
	}
	return cloneComment(c), nil
}

func (s *Store) ListComments(_ context.Context, taskID string) ([]task.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []task.Comment
	for _, c := range s.comments {
		if c.TaskID == taskID {
			result = append(result, cloneComment(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// NotificationStore implementation --------------------------------------------

func (s *Store) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = s.nextIDLocked()
	}
	n.CreatedAt = time.Now().UTC()

	s.notifications[n.ID] = n
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID string) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []notification.Notification
	for _, n := range s.notifications {
		if recipientID == "" || n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AuditStore implementation ---------------------------------------------------

func (s *Store) AppendAudit(_ context.Context, entry audit.Entry) (audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = s.nextIDLocked()
	}
	entry.CreatedAt = time.Now().UTC()
	s.auditEntries = append(s.auditEntries, entry)
	return entry, nil
}

func (s *Store) ListAudit(_ context.Context, subjectType, subjectID string) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []audit.Entry
	for _, e := range s.auditEntries {
		if subjectType != "" && e.SubjectType != subjectType {
			continue
		}
		if subjectID != "" && e.SubjectID != subjectID {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// Helpers ---------------------------------------------------------------------

func copySettings(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneProject(p project.Project) project.Project {
	p.Settings = copySettings(p.Settings)
	return p
}

func cloneTask(t task.Task) task.Task {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

func cloneComment(c task.Comment) task.Comment {
	c.Attachments = append([]string(nil), c.Attachments...)
	return c
}
