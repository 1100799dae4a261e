// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/audit"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Transactor implementation ---------------------------------------------------

type txKey struct{}

// WithinTx runs fn inside a database transaction. A nested call joins the
// transaction already carried by the context.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewTransactionError("begin", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.NewTransactionError("commit", err)
	}
	return nil
}

// ext returns the transaction carried by ctx, or the pool when outside one.
func (s *Store) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// UserStore implementation ----------------------------------------------------

type userRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toDomain() user.User {
	return user.User{ID: r.ID, Email: r.Email, Name: r.Name, Role: user.Role(r.Role), CreatedAt: r.CreatedAt}
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = user.RoleMember
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.ext(ctx).ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Email, u.Name, string(u.Role), u.CreatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, s.ext(ctx), &row, `
		SELECT id, email, name, role, created_at FROM users WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, core.NewNotFoundError("user", id)
	}
	if err != nil {
		return user.User{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT id, email, name, role, created_at FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	result := make([]user.User, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// ProjectStore implementation -------------------------------------------------

type projectRow struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	Priority    string     `db:"priority"`
	StartDate   *time.Time `db:"start_date"`
	DueDate     *time.Time `db:"due_date"`
	Budget      float64    `db:"budget"`
	ManagerID   string     `db:"manager_id"`
	Settings    []byte     `db:"settings"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r projectRow) toDomain() (project.Project, error) {
	p := project.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      project.Status(r.Status),
		Priority:    project.Priority(r.Priority),
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		Budget:      r.Budget,
		ManagerID:   r.ManagerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Settings) > 0 {
		if err := json.Unmarshal(r.Settings, &p.Settings); err != nil {
			return project.Project{}, err
		}
	}
	return p, nil
}

const projectColumns = `id, name, description, status, priority, start_date, due_date, budget, manager_id, settings, created_at, updated_at`

func (s *Store) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return project.Project{}, err
	}

	_, err = s.ext(ctx).ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.Name, p.Description, string(p.Status), string(p.Priority),
		p.StartDate, p.DueDate, p.Budget, p.ManagerID, settings, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	p.UpdatedAt = time.Now().UTC()

	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return project.Project{}, err
	}

	res, err := s.ext(ctx).ExecContext(ctx, `
		UPDATE projects SET
			name = $2, description = $3, status = $4, priority = $5,
			start_date = $6, due_date = $7, budget = $8, manager_id = $9,
			settings = $10, updated_at = $11
		WHERE id = $1
	`, p.ID, p.Name, p.Description, string(p.Status), string(p.Priority),
		p.StartDate, p.DueDate, p.Budget, p.ManagerID, settings, p.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return project.Project{}, core.NewNotFoundError("project", p.ID)
	}
	return s.GetProject(ctx, p.ID)
}

func (s *Store) GetProject(ctx context.Context, id string) (project.Project, error) {
	var row projectRow
	err := sqlx.GetContext(ctx, s.ext(ctx), &row, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, core.NewNotFoundError("project", id)
	}
	if err != nil {
		return project.Project{}, err
	}
	return row.toDomain()
}

func (s *Store) ListProjects(ctx context.Context) ([]project.Project, error) {
	var rows []projectRow
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT `+projectColumns+` FROM projects ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	return projectRowsToDomain(rows)
}

// DeleteProject deletes the project row; tasks, comments and memberships go
// with it through the schema's ON DELETE CASCADE rules.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.ext(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.NewNotFoundError("project", id)
	}
	return nil
}

func (s *Store) ListOpenProjectsDueBefore(ctx context.Context, cutoff time.Time) ([]project.Project, error) {
	var rows []projectRow
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT `+projectColumns+` FROM projects
		WHERE due_date IS NOT NULL AND due_date < $1
		  AND status NOT IN ('completed', 'cancelled')
		ORDER BY due_date
	`, cutoff)
	if err != nil {
		return nil, err
	}
	return projectRowsToDomain(rows)
}

func projectRowsToDomain(rows []projectRow) ([]project.Project, error) {
	result := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// MemberStore implementation --------------------------------------------------

type memberRow struct {
	ProjectID string    `db:"project_id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	JoinedAt  time.Time `db:"joined_at"`
}

func (r memberRow) toDomain() project.Member {
	return project.Member{ProjectID: r.ProjectID, UserID: r.UserID, Role: project.MemberRole(r.Role), JoinedAt: r.JoinedAt}
}

func (s *Store) UpsertMember(ctx context.Context, m project.Member) (project.Member, error) {
	m.JoinedAt = time.Now().UTC()
	_, err := s.ext(ctx).ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, joined_at = EXCLUDED.joined_at
	`, m.ProjectID, m.UserID, string(m.Role), m.JoinedAt)
	if err != nil {
		return project.Member{}, err
	}
	return m, nil
}

func (s *Store) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := s.ext(ctx).ExecContext(ctx, `
		DELETE FROM project_members WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	return err
}

func (s *Store) GetMember(ctx context.Context, projectID, userID string) (project.Member, error) {
	var row memberRow
	err := sqlx.GetContext(ctx, s.ext(ctx), &row, `
		SELECT project_id, user_id, role, joined_at FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Member{}, core.NewNotFoundError("member", userID)
	}
	if err != nil {
		return project.Member{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	var rows []memberRow
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT project_id, user_id, role, joined_at FROM project_members
		WHERE project_id = $1 ORDER BY joined_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	result := make([]project.Member, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// TaskStore implementation ----------------------------------------------------

type taskRow struct {
	ID             string         `db:"id"`
	ProjectID      string         `db:"project_id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Status         string         `db:"status"`
	Priority       string         `db:"priority"`
	AssigneeID     sql.NullString `db:"assignee_id"`
	CreatedBy      string         `db:"created_by"`
	DueDate        *time.Time     `db:"due_date"`
	StartedAt      *time.Time     `db:"started_at"`
	CompletedAt    *time.Time     `db:"completed_at"`
	EstimatedHours float64        `db:"estimated_hours"`
	ActualHours    float64        `db:"actual_hours"`
	Tags           pq.StringArray `db:"tags"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r taskRow) toDomain() task.Task {
	return task.Task{
		ID:             r.ID,
		ProjectID:      r.ProjectID,
		Title:          r.Title,
		Description:    r.Description,
		Status:         task.Status(r.Status),
		Priority:       task.Priority(r.Priority),
		AssigneeID:     r.AssigneeID.String,
		CreatedBy:      r.CreatedBy,
		DueDate:        r.DueDate,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
		Tags:           append([]string(nil), r.Tags...),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const taskColumns = `id, project_id, title, description, status, priority, assignee_id, created_by, due_date, started_at, completed_at, estimated_hours, actual_hours, tags, created_at, updated_at`

func (s *Store) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.ext(ctx).ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
		nullable(t.AssigneeID), t.CreatedBy, t.DueDate, t.StartedAt, t.CompletedAt,
		t.EstimatedHours, t.ActualHours, pq.Array(t.Tags), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.UpdatedAt = time.Now().UTC()

	res, err := s.ext(ctx).ExecContext(ctx, `
		UPDATE tasks SET
			title = $2, description = $3, status = $4, priority = $5,
			assignee_id = $6, due_date = $7, started_at = $8, completed_at = $9,
			estimated_hours = $10, actual_hours = $11, tags = $12, updated_at = $13
		WHERE id = $1
	`, t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
		nullable(t.AssigneeID), t.DueDate, t.StartedAt, t.CompletedAt,
		t.EstimatedHours, t.ActualHours, pq.Array(t.Tags), t.UpdatedAt)
	if err != nil {
		return task.Task{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return task.Task{}, core.NewNotFoundError("task", t.ID)
	}
	return s.GetTask(ctx, t.ID)
}

func (s *Store) GetTask(ctx context.Context, id string) (task.Task, error) {
	var row taskRow
	err := sqlx.GetContext(ctx, s.ext(ctx), &row, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, core.NewNotFoundError("task", id)
	}
	if err != nil {
		return task.Task{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	var rows []taskRow
	var err error
	if projectID == "" {
		err = sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
			SELECT `+taskColumns+` FROM tasks ORDER BY created_at
		`)
	} else {
		err = sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
			SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at
		`, projectID)
	}
	if err != nil {
		return nil, err
	}
	result := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// DeleteTask deletes the task row; comments cascade via the schema.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.ext(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.NewNotFoundError("task", id)
	}
	return nil
}

func (s *Store) ListOpenTasksDueBetween(ctx context.Context, from, to time.Time) ([]task.Task, error) {
	var rows []taskRow
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT `+taskColumns+` FROM tasks
		WHERE due_date IS NOT NULL AND due_date >= $1 AND due_date < $2
		  AND status <> 'done'
		ORDER BY due_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	result := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// CommentStore implementation -------------------------------------------------

type commentRow struct {
	ID          string         `db:"id"`
	TaskID      string         `db:"task_id"`
	AuthorID    string         `db:"author_id"`
	Content     string         `db:"content"`
	Attachments pq.StringArray `db:"attachments"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r commentRow) toDomain() task.Comment {
	return task.Comment{
		ID:          r.ID,
		TaskID:      r.TaskID,
		AuthorID:    r.AuthorID,
		Content:     r.Content,
		Attachments: append([]string(nil), r.Attachments...),
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Store) CreateComment(ctx context.Context, c task.Comment) (task.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := s.ext(ctx).ExecContext(ctx, `
		INSERT INTO task_comments (id, task_id, author_id, content, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.TaskID, c.AuthorID, c.Content, pq.Array(c.Attachments), c.CreatedAt)
	if err != nil {
		return task.Comment{}, err
	}
	return c, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (task.Comment, error) {
	var row commentRow
	err := sqlx.GetContext(ctx, s.ext(ctx), &row, `
		SELECT id, task_id, author_id, content, attachments, created_at
		FROM task_comments WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Comment{}, core.NewNotFoundError("comment", id)
	}
	if err != nil {
		return task.Comment{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]task.Comment, error) {
	var rows []commentRow
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT id, task_id, author_id, content, attachments, created_at
		FROM task_comments WHERE task_id = $1 ORDER BY created_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	result := make([]task.Comment, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// NotificationStore implementation --------------------------------------------

func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return notification.Notification{}, err
	}

	_, err = s.ext(ctx).ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, kind, payload, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.RecipientID, string(n.Kind), payload, n.CreatedAt, n.ReadAt)
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string) ([]notification.Notification, error) {
	type row struct {
		ID          string     `db:"id"`
		RecipientID string     `db:"recipient_id"`
		Kind        string     `db:"kind"`
		Payload     []byte     `db:"payload"`
		CreatedAt   time.Time  `db:"created_at"`
		ReadAt      *time.Time `db:"read_at"`
	}
	var rows []row
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT id, recipient_id, kind, payload, created_at, read_at
		FROM notifications WHERE recipient_id = $1 ORDER BY created_at
	`, recipientID)
	if err != nil {
		return nil, err
	}
	result := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		n := notification.Notification{
			ID:          r.ID,
			RecipientID: r.RecipientID,
			Kind:        notification.Kind(r.Kind),
			CreatedAt:   r.CreatedAt,
			ReadAt:      r.ReadAt,
		}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &n.Payload); err != nil {
				return nil, err
			}
		}
		result = append(result, n)
	}
	return result, nil
}

// AuditStore implementation ---------------------------------------------------

func (s *Store) AppendAudit(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()

	oldValues, err := json.Marshal(entry.OldValues)
	if err != nil {
		return audit.Entry{}, err
	}
	newValues, err := json.Marshal(entry.NewValues)
	if err != nil {
		return audit.Entry{}, err
	}

	_, err = s.ext(ctx).ExecContext(ctx, `
		INSERT INTO audit_log (id, actor, action, subject_type, subject_id, old_values, new_values, origin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.Actor, entry.Action, entry.SubjectType, entry.SubjectID,
		oldValues, newValues, entry.Origin, entry.CreatedAt)
	if err != nil {
		return audit.Entry{}, err
	}
	return entry, nil
}

func (s *Store) ListAudit(ctx context.Context, subjectType, subjectID string) ([]audit.Entry, error) {
	type row struct {
		ID          string    `db:"id"`
		Actor       string    `db:"actor"`
		Action      string    `db:"action"`
		SubjectType string    `db:"subject_type"`
		SubjectID   string    `db:"subject_id"`
		OldValues   []byte    `db:"old_values"`
		NewValues   []byte    `db:"new_values"`
		Origin      string    `db:"origin"`
		CreatedAt   time.Time `db:"created_at"`
	}
	var rows []row
	err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, `
		SELECT id, actor, action, subject_type, subject_id, old_values, new_values, origin, created_at
		FROM audit_log WHERE subject_type = $1 AND subject_id = $2 ORDER BY created_at
	`, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	result := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		e := audit.Entry{
			ID:          r.ID,
			Actor:       r.Actor,
			Action:      r.Action,
			SubjectType: r.SubjectType,
			SubjectID:   r.SubjectID,
			Origin:      r.Origin,
			CreatedAt:   r.CreatedAt,
		}
		if len(r.OldValues) > 0 {
			if err := json.Unmarshal(r.OldValues, &e.OldValues); err != nil {
				return nil, err
			}
		}
		if len(r.NewValues) > 0 {
			if err := json.Unmarshal(r.NewValues, &e.NewValues); err != nil {
				return nil, err
			}
		}
		result = append(result, e)
	}
	return result, nil
}
