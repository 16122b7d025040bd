package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/shared"
)

// Repository defines persistence operations for the identity module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindActor(ctx context.Context, id int64) (*Actor, error)
}

// Account carries credential material; it never leaves this package's service.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, is_active FROM actors WHERE email = $1`,
		email,
	).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("identity: find by email: %w", err)
	}
	return &acc, nil
}

// FindActor loads an actor together with its full grant set. Grants are
// always loaded here, in one place, so authorization queries downstream stay
// pure.
func (r *PGRepository) FindActor(ctx context.Context, id int64) (*Actor, error) {
	var actor Actor
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name, is_active FROM actors WHERE id = $1`,
		id,
	).Scan(&actor.ID, &actor.Email, &actor.DisplayName, &actor.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("identity: find actor: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, kind, club_id, granted_at FROM role_grants WHERE actor_id = $1 ORDER BY granted_at`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("identity: load grants: %w", err)
	}
	defer rows.Close()

	actor.Grants = []RoleGrant{}
	for rows.Next() {
		var g RoleGrant
		if err := rows.Scan(&g.ID, &g.ActorID, &g.Kind, &g.ClubID, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("identity: scan grant: %w", err)
		}
		actor.Grants = append(actor.Grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("identity: load grants: %w", err)
	}
	return &actor, nil
}

var _ Repository = (*PGRepository)(nil)
