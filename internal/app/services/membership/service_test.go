package membership

import (
	"context"
	"testing"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/domain/user"
	"github.com/taskforge/taskforge/internal/app/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, store, nil), store
}

func seedUser(t *testing.T, store *memory.Store, name string) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Name:  name,
		Email: name + "@example.com",
		Role:  user.RoleMember,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedProject(t *testing.T, store *memory.Store) project.Project {
	t.Helper()
	p, err := store.CreateProject(context.Background(), project.Project{
		Name: "fixture", Status: project.StatusActive,
		Priority: project.PriorityMedium, ManagerID: "m1",
	})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func TestAddMemberTwiceUpdatesRole(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	u := seedUser(t, store, "alice")
	p := seedProject(t, store)

	if _, err := svc.AddMember(ctx, p.ID, u.ID, project.RoleMember); err != nil {
		t.Fatalf("first add: %v", err)
	}
	m, err := svc.AddMember(ctx, p.ID, u.ID, project.RoleLead)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if m.Role != project.RoleLead {
		t.Fatalf("role = %q, want lead", m.Role)
	}

	members, err := svc.List(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("got %d memberships, want 1", len(members))
	}
	if members[0].Role != project.RoleLead {
		t.Fatalf("stored role = %q, want lead", members[0].Role)
	}
}

func TestAddMemberDefaultsRole(t *testing.T) {
	svc, store := newService(t)
	u := seedUser(t, store, "bob")
	p := seedProject(t, store)

	m, err := svc.AddMember(context.Background(), p.ID, u.ID, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Role != project.RoleMember {
		t.Fatalf("role = %q, want member", m.Role)
	}
}

func TestAddMemberUnknownUser(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.AddMember(context.Background(), "p1", "missing", project.RoleMember)
	if !core.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	svc, store := newService(t)
	u := seedUser(t, store, "carol")

	_, err := svc.AddMember(context.Background(), "p1", u.ID, project.MemberRole("owner"))
	if !core.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRemoveMemberAbsentIsNoOp(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.RemoveMember(context.Background(), "p1", "ghost"); err != nil {
		t.Fatalf("remove absent member: %v", err)
	}
}

func TestIsMember(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	u := seedUser(t, store, "dave")
	p := seedProject(t, store)

	ok, err := svc.IsMember(ctx, p.ID, u.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if ok {
		t.Fatal("expected non-member before add")
	}

	if _, err := svc.AddMember(ctx, p.ID, u.ID, project.RoleViewer); err != nil {
		t.Fatalf("add: %v", err)
	}
	ok, err = svc.IsMember(ctx, p.ID, u.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !ok {
		t.Fatal("expected member after add")
	}
}
