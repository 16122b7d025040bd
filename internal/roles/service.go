package roles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/shared"
)

// Service mediates grant and revoke of role records and enforces the
// system-wide role invariants.
type Service struct {
	repo   Repository
	locks  *redis.Client
	logger *slog.Logger
	audit  *shared.AuditLogger
}

// NewService constructs a Service. audit may be nil.
func NewService(repo Repository, locks *redis.Client, logger *slog.Logger, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, locks: locks, logger: logger, audit: audit}
}

// Grant creates a role grant for the target actor.
//
// SUPER_ADMIN and ADMIN may only be assigned by a super admin and carry no
// club scope. CLUB_MANAGER may be assigned by any system-elevated actor and
// requires an existing club scope. Duplicate grants are rejected.
func (s *Service) Grant(ctx context.Context, requester *identity.Actor, targetActorID int64, kind identity.RoleKind, clubID *int64) (identity.RoleGrant, error) {
	if requester == nil || !requester.IsActive {
		return identity.RoleGrant{}, shared.ErrForbidden
	}
	if !kind.Valid() {
		return identity.RoleGrant{}, fmt.Errorf("unknown role kind %q: %w", kind, shared.ErrValidation)
	}

	switch kind {
	case identity.RoleSuperAdmin, identity.RoleAdmin:
		if !requester.HasSuperAdmin() {
			return identity.RoleGrant{}, fmt.Errorf("assigning %s requires super admin: %w", kind, shared.ErrForbidden)
		}
		if clubID != nil {
			return identity.RoleGrant{}, fmt.Errorf("system roles cannot be club-scoped: %w", shared.ErrValidation)
		}
	case identity.RoleClubManager:
		if !requester.HasSystemElevation() {
			return identity.RoleGrant{}, fmt.Errorf("assigning club manager requires system elevation: %w", shared.ErrForbidden)
		}
		if clubID == nil {
			return identity.RoleGrant{}, fmt.Errorf("club manager grants require a club scope: %w", shared.ErrValidation)
		}
		ok, err := s.repo.ClubExists(ctx, *clubID)
		if err != nil {
			return identity.RoleGrant{}, err
		}
		if !ok {
			return identity.RoleGrant{}, fmt.Errorf("club %d: %w", *clubID, shared.ErrNotFound)
		}
	default:
		// Plain membership is tracked by club_members, not by role grants.
		return identity.RoleGrant{}, fmt.Errorf("role kind %q is not grantable: %w", kind, shared.ErrValidation)
	}

	ok, err := s.repo.ActorExists(ctx, targetActorID)
	if err != nil {
		return identity.RoleGrant{}, err
	}
	if !ok {
		return identity.RoleGrant{}, fmt.Errorf("actor %d: %w", targetActorID, shared.ErrNotFound)
	}

	exists, err := s.repo.Exists(ctx, targetActorID, kind, clubID)
	if err != nil {
		return identity.RoleGrant{}, err
	}
	if exists {
		return identity.RoleGrant{}, fmt.Errorf("actor %d already holds %s: %w", targetActorID, kind, shared.ErrConflict)
	}

	grant, err := s.repo.Insert(ctx, targetActorID, kind, clubID)
	if err != nil {
		return identity.RoleGrant{}, err
	}
	s.recordAudit(ctx, requester.ID, "role.grant", grant)
	return grant, nil
}

// Revoke removes a role grant.
//
// A super admin may revoke any grant, but never the last SUPER_ADMIN grant in
// the system. A plain admin may revoke ADMIN and CLUB_MANAGER grants only.
// Revokes of SUPER_ADMIN grants are serialized through a redis mutex so the
// count-then-delete check cannot race.
func (s *Service) Revoke(ctx context.Context, requester *identity.Actor, grantID int64) error {
	if requester == nil || !requester.IsActive {
		return shared.ErrForbidden
	}

	grant, err := s.repo.Get(ctx, grantID)
	if err != nil {
		return err
	}

	switch {
	case requester.HasSuperAdmin():
		if grant.Kind == identity.RoleSuperAdmin {
			return s.revokeSuperAdmin(ctx, requester, grant)
		}
	case requester.HasSystemElevation():
		if grant.Kind == identity.RoleSuperAdmin {
			return fmt.Errorf("admins cannot revoke super admin grants: %w", shared.ErrForbidden)
		}
		if grant.Kind != identity.RoleAdmin && grant.Kind != identity.RoleClubManager {
			return fmt.Errorf("admins cannot revoke %s grants: %w", grant.Kind, shared.ErrForbidden)
		}
	default:
		return shared.ErrForbidden
	}

	if err := s.repo.Delete(ctx, grantID); err != nil {
		return err
	}
	s.recordAudit(ctx, requester.ID, "role.revoke", grant)
	return nil
}

func (s *Service) revokeSuperAdmin(ctx context.Context, requester *identity.Actor, grant identity.RoleGrant) error {
	mu := shared.NewMutex(s.locks, shared.SuperAdminRevokeLockKey, 5*time.Second)
	if err := mu.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mu.Release(context.WithoutCancel(ctx)); err != nil && s.logger != nil {
			s.logger.Warn("release super admin revoke lock", slog.Any("error", err))
		}
	}()

	remaining, err := s.repo.CountSuperAdminsExcluding(ctx, grant.ID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return fmt.Errorf("last super admin: %w", shared.ErrConflict)
	}
	if err := s.repo.Delete(ctx, grant.ID); err != nil {
		return err
	}
	s.recordAudit(ctx, requester.ID, "role.revoke", grant)
	return nil
}

// ListForActor returns all grants held by one actor.
func (s *Service) ListForActor(ctx context.Context, actorID int64) ([]identity.RoleGrant, error) {
	ok, err := s.repo.ActorExists(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("actor %d: %w", actorID, shared.ErrNotFound)
	}
	return s.repo.ListByActor(ctx, actorID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, grant identity.RoleGrant) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{"kind": grant.Kind, "target_actor": grant.ActorID}
	if grant.ClubID != nil {
		meta["club_id"] = *grant.ClubID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role_grant",
		EntityID: fmt.Sprintf("%d", grant.ID),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit role change", slog.Any("error", err))
	}
}
