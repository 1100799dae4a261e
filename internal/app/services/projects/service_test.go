package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/task"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/queue"
	"github.com/taskforge/taskforge/internal/app/services/membership"
	"github.com/taskforge/taskforge/internal/app/storage/memory"
)

type sentNotification struct {
	recipientID string
	kind        notification.Kind
}

// recordingNotifier captures deliveries and can be told to fail for specific
// recipients.
type recordingNotifier struct {
	sent    []sentNotification
	failFor map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, recipientID string, kind notification.Kind, _ map[string]any) error {
	if n.failFor[recipientID] {
		return core.NewDeliveryError(recipientID, "in-app", errors.New("boom"))
	}
	n.sent = append(n.sent, sentNotification{recipientID: recipientID, kind: kind})
	return nil
}

func (n *recordingNotifier) NotifyEach(ctx context.Context, recipientIDs []string, kind notification.Kind, payload map[string]any) int {
	delivered := 0
	for _, id := range recipientIDs {
		if id == "" {
			continue
		}
		if err := n.Notify(ctx, id, kind, payload); err == nil {
			delivered++
		}
	}
	return delivered
}

func (n *recordingNotifier) countKind(kind notification.Kind) int {
	c := 0
	for _, s := range n.sent {
		if s.kind == kind {
			c++
		}
	}
	return c
}

type recordingQueue struct {
	jobs []queue.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job queue.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	notifier *recordingNotifier
	queue    *recordingQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	notifier := &recordingNotifier{failFor: map[string]bool{}}
	q := &recordingQueue{}
	members := membership.New(store, store, nil)
	svc := New(store, store, store, members, store, notifier, q, nil)
	return &fixture{svc: svc, store: store, notifier: notifier, queue: q}
}

func (f *fixture) seedUser(t *testing.T, name string, role user.Role) user.User {
	t.Helper()
	u, err := f.store.CreateUser(context.Background(), user.User{
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.seedUser(t, "mgr", user.RoleMember)
	actor := f.seedUser(t, "actor", user.RoleMember)

	p, err := f.svc.Create(ctx, actor, CreateInput{
		Name:      "  Launch  ",
		ManagerID: manager.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Launch" {
		t.Fatalf("name = %q, want trimmed", p.Name)
	}
	if p.Status != project.StatusPlanning {
		t.Fatalf("status = %q, want planning default", p.Status)
	}
	if p.Priority != project.PriorityMedium {
		t.Fatalf("priority = %q, want medium default", p.Priority)
	}

	m, err := f.store.GetMember(ctx, p.ID, manager.ID)
	if err != nil {
		t.Fatalf("manager membership: %v", err)
	}
	if m.Role != project.RoleLead {
		t.Fatalf("manager role = %q, want lead", m.Role)
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].recipientID != manager.ID ||
		f.notifier.sent[0].kind != notification.KindProjectCreated {
		t.Fatalf("immediate notification = %+v, want creation notice to manager", f.notifier.sent)
	}

	if len(f.queue.jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(f.queue.jobs))
	}
	job, ok := f.queue.jobs[0].(queue.ProjectCreated)
	if !ok {
		t.Fatalf("job = %T, want ProjectCreated", f.queue.jobs[0])
	}
	if job.ProjectID != p.ID || job.ActorID != actor.ID {
		t.Fatalf("job = %+v", job)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "actor", user.RoleMember)

	if _, err := f.svc.Create(ctx, actor, CreateInput{ManagerID: actor.ID}); !core.IsValidationError(err) {
		t.Fatalf("missing name: err = %v, want validation error", err)
	}
	if _, err := f.svc.Create(ctx, actor, CreateInput{Name: "x"}); !core.IsValidationError(err) {
		t.Fatalf("missing manager: err = %v, want validation error", err)
	}
	if _, err := f.svc.Create(ctx, actor, CreateInput{Name: "x", ManagerID: "nope"}); !core.IsNotFound(err) {
		t.Fatalf("unknown manager: err = %v, want not found", err)
	}
}

func TestCreateProjectSurvivesEnqueueFailure(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("queue full")
	ctx := context.Background()
	manager := f.seedUser(t, "mgr", user.RoleMember)

	p, err := f.svc.Create(ctx, manager, CreateInput{Name: "Launch", ManagerID: manager.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.store.GetProject(ctx, p.ID); err != nil {
		t.Fatalf("project should persist despite enqueue failure: %v", err)
	}
}

func TestUpdateManagerReassignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oldMgr := f.seedUser(t, "old", user.RoleMember)
	newMgr := f.seedUser(t, "new", user.RoleMember)

	p, err := f.svc.Create(ctx, oldMgr, CreateInput{Name: "Launch", ManagerID: oldMgr.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.queue.jobs = nil

	updated, err := f.svc.Update(ctx, oldMgr, p.ID, UpdateInput{ManagerID: &newMgr.ID})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ManagerID != newMgr.ID {
		t.Fatalf("manager = %q, want %q", updated.ManagerID, newMgr.ID)
	}

	m, err := f.store.GetMember(ctx, p.ID, newMgr.ID)
	if err != nil {
		t.Fatalf("new manager membership: %v", err)
	}
	if m.Role != project.RoleLead {
		t.Fatalf("new manager role = %q, want lead", m.Role)
	}
	if _, err := f.store.GetMember(ctx, p.ID, oldMgr.ID); !core.IsNotFound(err) {
		t.Fatalf("old manager membership err = %v, want not found", err)
	}

	if len(f.queue.jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(f.queue.jobs))
	}
	job, ok := f.queue.jobs[0].(queue.ProjectUpdated)
	if !ok {
		t.Fatalf("job = %T, want ProjectUpdated", f.queue.jobs[0])
	}
	if job.Prior.ManagerID != oldMgr.ID {
		t.Fatalf("prior manager = %q, want %q", job.Prior.ManagerID, oldMgr.ID)
	}
}

func TestUpdateKeepsAdminOldManagerAsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin", user.RoleAdmin)
	newMgr := f.seedUser(t, "new", user.RoleMember)

	p, err := f.svc.Create(ctx, admin, CreateInput{Name: "Launch", ManagerID: admin.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Update(ctx, admin, p.ID, UpdateInput{ManagerID: &newMgr.ID}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.store.GetMember(ctx, p.ID, admin.ID); err != nil {
		t.Fatalf("admin should remain a member: %v", err)
	}
}

func TestUpdateIrrelevantChangeSkipsFanout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mgr := f.seedUser(t, "mgr", user.RoleMember)

	p, err := f.svc.Create(ctx, mgr, CreateInput{Name: "Launch", ManagerID: mgr.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.queue.jobs = nil

	desc := "new description"
	if _, err := f.svc.Update(ctx, mgr, p.ID, UpdateInput{Description: &desc}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.queue.jobs) != 0 {
		t.Fatalf("got %d jobs, want none for description-only change", len(f.queue.jobs))
	}

	status := project.StatusActive
	if _, err := f.svc.Update(ctx, mgr, p.ID, UpdateInput{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.queue.jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 after status change", len(f.queue.jobs))
	}
}

func TestDeleteProjectNotifiesMembersAndCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mgr := f.seedUser(t, "mgr", user.RoleMember)
	dev := f.seedUser(t, "dev", user.RoleMember)
	flaky := f.seedUser(t, "flaky", user.RoleMember)

	p, err := f.svc.Create(ctx, mgr, CreateInput{Name: "Launch", ManagerID: mgr.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.AddMember(ctx, mgr, p.ID, dev.ID, project.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := f.svc.AddMember(ctx, mgr, p.ID, flaky.ID, project.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.store.CreateTask(ctx, task.Task{
			ProjectID: p.ID, Title: "work", Status: task.StatusTodo, CreatedBy: mgr.ID,
		}); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	f.notifier.sent = nil
	f.notifier.failFor[flaky.ID] = true

	if err := f.svc.Delete(ctx, mgr, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// One member failing delivery blocks neither the others nor the delete.
	if got := f.notifier.countKind(notification.KindProjectDeleted); got != 2 {
		t.Fatalf("deletion notices delivered = %d, want 2", got)
	}
	if _, err := f.store.GetProject(ctx, p.ID); !core.IsNotFound(err) {
		t.Fatalf("project err = %v, want not found", err)
	}
	members, err := f.store.ListMembers(ctx, p.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("got %d memberships after delete, want 0", len(members))
	}
	tasks, err := f.store.ListTasks(ctx, p.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("got %d tasks after delete, want 0", len(tasks))
	}
}

func TestAddRemoveMemberNotifyAffectedUserOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mgr := f.seedUser(t, "mgr", user.RoleMember)
	dev := f.seedUser(t, "dev", user.RoleMember)

	p, err := f.svc.Create(ctx, mgr, CreateInput{Name: "Launch", ManagerID: mgr.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.notifier.sent = nil

	if _, err := f.svc.AddMember(ctx, mgr, p.ID, dev.ID, project.RoleViewer); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].recipientID != dev.ID ||
		f.notifier.sent[0].kind != notification.KindMemberAdded {
		t.Fatalf("sent = %+v, want one member-added notice to dev", f.notifier.sent)
	}

	f.notifier.sent = nil
	if err := f.svc.RemoveMember(ctx, mgr, p.ID, dev.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].recipientID != dev.ID ||
		f.notifier.sent[0].kind != notification.KindMemberRemoved {
		t.Fatalf("sent = %+v, want one member-removed notice to dev", f.notifier.sent)
	}
}

func TestUpdateUnknownProject(t *testing.T) {
	f := newFixture(t)
	actor := f.seedUser(t, "actor", user.RoleMember)

	name := "x"
	_, err := f.svc.Update(context.Background(), actor, "missing", UpdateInput{Name: &name})
	if !core.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
