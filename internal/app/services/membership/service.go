// Package membership owns project membership entries and their role
// transition rules. It performs no notification; callers decide who to tell.
package membership

import (
	"context"
	"strings"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/project"
	"github.com/taskforge/taskforge/internal/app/storage"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Service manages project membership entries.
type Service struct {
	users   storage.UserStore
	members storage.MemberStore
	log     *logger.Logger
}

// New constructs a membership service.
func New(users storage.UserStore, members storage.MemberStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("membership")
	}
	return &Service{users: users, members: members, log: log}
}

// AddMember adds the user to the project, or updates role and joined
// timestamp when the membership already exists. The empty role defaults to
// member. Fails with a NotFoundError when the user does not exist.
func (s *Service) AddMember(ctx context.Context, projectID, userID string, role project.MemberRole) (project.Member, error) {
	projectID = strings.TrimSpace(projectID)
	userID = strings.TrimSpace(userID)
	if projectID == "" {
		return project.Member{}, core.RequiredError("project_id")
	}
	if userID == "" {
		return project.Member{}, core.RequiredError("user_id")
	}
	if role == "" {
		role = project.RoleMember
	}
	if !role.Valid() {
		return project.Member{}, core.NewValidationError("role", "unknown value "+string(role))
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return project.Member{}, err
	}

	m, err := s.members.UpsertMember(ctx, project.Member{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	})
	if err != nil {
		return project.Member{}, err
	}
	s.log.WithField("project_id", projectID).
		WithField("user_id", userID).
		WithField("role", string(role)).
		Info("member upserted")
	return m, nil
}

// RemoveMember deletes the membership if present. Removing a user who is not
// a member is a no-op, not an error.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID string) error {
	if err := s.members.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	s.log.WithField("project_id", projectID).
		WithField("user_id", userID).
		Info("member removed")
	return nil
}

// List returns the project's current members.
func (s *Service) List(ctx context.Context, projectID string) ([]project.Member, error) {
	return s.members.ListMembers(ctx, projectID)
}

// IsMember reports whether the user currently belongs to the project.
func (s *Service) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	_, err := s.members.GetMember(ctx, projectID, userID)
	if core.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
