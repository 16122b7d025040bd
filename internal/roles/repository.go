package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/platform/db"
	"github.com/campushub/campushub/internal/shared"
)

// Repository defines persistence for role grants.
type Repository interface {
	Get(ctx context.Context, id int64) (identity.RoleGrant, error)
	ListByActor(ctx context.Context, actorID int64) ([]identity.RoleGrant, error)
	Exists(ctx context.Context, actorID int64, kind identity.RoleKind, clubID *int64) (bool, error)
	Insert(ctx context.Context, actorID int64, kind identity.RoleKind, clubID *int64) (identity.RoleGrant, error)
	Delete(ctx context.Context, id int64) error
	CountSuperAdminsExcluding(ctx context.Context, grantID int64) (int, error)
	ActorExists(ctx context.Context, actorID int64) (bool, error)
	ClubExists(ctx context.Context, clubID int64) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Get(ctx context.Context, id int64) (identity.RoleGrant, error) {
	var g identity.RoleGrant
	err := r.pool.QueryRow(ctx,
		`SELECT id, actor_id, kind, club_id, granted_at FROM role_grants WHERE id = $1`, id,
	).Scan(&g.ID, &g.ActorID, &g.Kind, &g.ClubID, &g.GrantedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.RoleGrant{}, fmt.Errorf("role grant %d: %w", id, shared.ErrNotFound)
		}
		return identity.RoleGrant{}, fmt.Errorf("roles: get grant: %w", err)
	}
	return g, nil
}

func (r *PGRepository) ListByActor(ctx context.Context, actorID int64) ([]identity.RoleGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, kind, club_id, granted_at FROM role_grants WHERE actor_id = $1 ORDER BY granted_at`, actorID,
	)
	if err != nil {
		return nil, fmt.Errorf("roles: list grants: %w", err)
	}
	defer rows.Close()

	grants := []identity.RoleGrant{}
	for rows.Next() {
		var g identity.RoleGrant
		if err := rows.Scan(&g.ID, &g.ActorID, &g.Kind, &g.ClubID, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("roles: scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *PGRepository) Exists(ctx context.Context, actorID int64, kind identity.RoleKind, clubID *int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_grants WHERE actor_id = $1 AND kind = $2 AND club_id IS NOT DISTINCT FROM $3)`,
		actorID, kind, clubID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("roles: check duplicate: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) Insert(ctx context.Context, actorID int64, kind identity.RoleKind, clubID *int64) (identity.RoleGrant, error) {
	var g identity.RoleGrant
	err := r.pool.QueryRow(ctx,
		`INSERT INTO role_grants (actor_id, kind, club_id) VALUES ($1, $2, $3) RETURNING id, actor_id, kind, club_id, granted_at`,
		actorID, kind, clubID,
	).Scan(&g.ID, &g.ActorID, &g.Kind, &g.ClubID, &g.GrantedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return identity.RoleGrant{}, fmt.Errorf("duplicate grant: %w", shared.ErrConflict)
		}
		return identity.RoleGrant{}, fmt.Errorf("roles: insert grant: %w", err)
	}
	return g, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_grants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("roles: delete grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role grant %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *PGRepository) CountSuperAdminsExcluding(ctx context.Context, grantID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM role_grants WHERE kind = $1 AND id <> $2`,
		identity.RoleSuperAdmin, grantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("roles: count super admins: %w", err)
	}
	return count, nil
}

func (r *PGRepository) ActorExists(ctx context.Context, actorID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM actors WHERE id = $1)`, actorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("roles: check actor: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) ClubExists(ctx context.Context, clubID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clubs WHERE id = $1)`, clubID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("roles: check club: %w", err)
	}
	return exists, nil
}

var _ Repository = (*PGRepository)(nil)
