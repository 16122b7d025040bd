package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/shared"
)

// Resolver maps a resource reference to the club that owns it by following
// the fixed chain Club ← Form ← Application, Club ← ContentRequest and
// Club ← ClubMember.
type Resolver interface {
	Resolve(ctx context.Context, class ResourceClass, id int64) (Ownership, error)
}

// PGResolver resolves ownership against PostgreSQL.
type PGResolver struct {
	pool *pgxpool.Pool
}

// NewResolver constructs a PGResolver.
func NewResolver(pool *pgxpool.Pool) *PGResolver {
	return &PGResolver{pool: pool}
}

// Resolve returns the owning club for the resource, failing with
// shared.ErrNotFound when the resource does not exist and shared.ErrIntegrity
// when a mandatory parent reference is broken. A broken chain is never
// reported as "no owner".
func (r *PGResolver) Resolve(ctx context.Context, class ResourceClass, id int64) (Ownership, error) {
	switch class {
	case ResourceClub:
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clubs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Ownership{}, fmt.Errorf("authz: resolve club: %w", err)
		}
		if !exists {
			return Ownership{}, fmt.Errorf("club %d: %w", id, shared.ErrNotFound)
		}
		clubID := id
		return Ownership{ClubID: &clubID}, nil

	case ResourceForm:
		return r.scanClubID(ctx, `SELECT club_id FROM forms WHERE id = $1`, class, id)

	case ResourceContentRequest:
		return r.scanClubID(ctx, `SELECT club_id FROM content_requests WHERE id = $1`, class, id)

	case ResourceClubMember:
		return r.scanClubID(ctx, `SELECT club_id FROM club_members WHERE id = $1`, class, id)

	case ResourceApplication:
		var formID, submitterID int64
		err := r.pool.QueryRow(ctx, `SELECT form_id, submitter_id FROM applications WHERE id = $1`, id).Scan(&formID, &submitterID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Ownership{}, fmt.Errorf("application %d: %w", id, shared.ErrNotFound)
			}
			return Ownership{}, fmt.Errorf("authz: resolve application: %w", err)
		}
		var clubID int64
		err = r.pool.QueryRow(ctx, `SELECT club_id FROM forms WHERE id = $1`, formID).Scan(&clubID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// The parent form is gone while the application survives.
				return Ownership{}, fmt.Errorf("application %d references missing form %d: %w", id, formID, shared.ErrIntegrity)
			}
			return Ownership{}, fmt.Errorf("authz: resolve application form: %w", err)
		}
		return Ownership{ClubID: &clubID, SubmitterID: &submitterID}, nil

	case ResourceRoleGrant, ResourceContentQueue:
		// System-scoped resources have no owning club.
		return Ownership{}, nil

	default:
		return Ownership{}, fmt.Errorf("authz: unknown resource class %q: %w", class, shared.ErrValidation)
	}
}

func (r *PGResolver) scanClubID(ctx context.Context, query string, class ResourceClass, id int64) (Ownership, error) {
	var clubID *int64
	err := r.pool.QueryRow(ctx, query, id).Scan(&clubID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ownership{}, fmt.Errorf("%s %d: %w", class, id, shared.ErrNotFound)
		}
		return Ownership{}, fmt.Errorf("authz: resolve %s: %w", class, err)
	}
	if clubID == nil {
		// The data model disallows a null club reference here.
		return Ownership{}, fmt.Errorf("%s %d has no club reference: %w", class, id, shared.ErrIntegrity)
	}
	return Ownership{ClubID: clubID}, nil
}

var _ Resolver = (*PGResolver)(nil)
