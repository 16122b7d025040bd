package clubs

import (
	"context"
	"fmt"

	"github.com/campushub/campushub/internal/shared"
)

// Service handles club business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new active club.
func (s *Service) Create(ctx context.Context, req CreateClubRequest) (*Club, error) {
	return s.repo.Create(ctx, Club{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		ContactInfo: req.ContactInfo,
	})
}

// Get returns one club. Inactive clubs are hidden unless includeInactive.
func (s *Service) Get(ctx context.Context, id int64, includeInactive bool) (*Club, error) {
	club, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !club.IsActive && !includeInactive {
		return nil, fmt.Errorf("club %d: %w", id, shared.ErrNotFound)
	}
	return club, nil
}

// List returns clubs; non-elevated callers see active clubs only.
func (s *Service) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Club, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, !includeInactive, limit, offset)
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClubRequest) (*Club, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Logo != nil {
		updates["logo"] = *req.Logo
	}
	if req.ContactInfo != nil {
		updates["contact_info"] = *req.ContactInfo
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a club. The schema cascades to forms, applications, files
// metadata, content requests and memberships.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddMember enrolls an actor into a club with a membership role.
func (s *Service) AddMember(ctx context.Context, clubID int64, req AddMemberRequest) (*Member, error) {
	if _, err := s.repo.Get(ctx, clubID); err != nil {
		return nil, err
	}
	ok, err := s.repo.ActorExists(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("actor %d: %w", req.ActorID, shared.ErrNotFound)
	}
	return s.repo.AddMember(ctx, clubID, req.ActorID, req.Role)
}

// ListMembers returns all memberships of a club.
func (s *Service) ListMembers(ctx context.Context, clubID int64) ([]Member, error) {
	if _, err := s.repo.Get(ctx, clubID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, clubID)
}

// RemoveMember deletes one membership.
func (s *Service) RemoveMember(ctx context.Context, clubID, actorID int64) error {
	return s.repo.RemoveMember(ctx, clubID, actorID)
}
