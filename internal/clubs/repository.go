package clubs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/platform/db"
	"github.com/campushub/campushub/internal/shared"
)

// Repository defines persistence operations for clubs and memberships.
type Repository interface {
	Get(ctx context.Context, id int64) (*Club, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]Club, error)
	Create(ctx context.Context, club Club) (*Club, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error

	AddMember(ctx context.Context, clubID, actorID int64, role string) (*Member, error)
	ListMembers(ctx context.Context, clubID int64) ([]Member, error)
	RemoveMember(ctx context.Context, clubID, actorID int64) error
	ActorExists(ctx context.Context, actorID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Club, error) {
	var c Club
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, logo, contact_info, is_active, created_at, updated_at FROM clubs WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Logo, &c.ContactInfo, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("club %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("clubs: get: %w", err)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]Club, error) {
	query := `SELECT id, name, description, logo, contact_info, is_active, created_at, updated_at FROM clubs`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("clubs: list: %w", err)
	}
	defer rows.Close()

	var out []Club
	for rows.Next() {
		var c Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Logo, &c.ContactInfo, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("clubs: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, club Club) (*Club, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clubs (name, description, logo, contact_info, is_active) VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		club.Name, club.Description, club.Logo, club.ContactInfo,
	).Scan(&club.ID, &club.IsActive, &club.CreatedAt, &club.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("clubs: create: %w", err)
	}
	return &club, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	pos := 1
	for _, col := range []string{"name", "description", "logo", "contact_info", "is_active"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, pos))
			args = append(args, v)
			pos++
		}
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE clubs SET %s WHERE id = $%d", strings.Join(sets, ", "), pos)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("clubs: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("club %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clubs: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("club %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, clubID, actorID int64, role string) (*Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx,
		`INSERT INTO club_members (club_id, actor_id, role) VALUES ($1, $2, $3)
		 RETURNING id, club_id, actor_id, role, joined_at`,
		clubID, actorID, role,
	).Scan(&m.ID, &m.ClubID, &m.ActorID, &m.Role, &m.JoinedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("actor %d is already a member of club %d: %w", actorID, clubID, shared.ErrConflict)
		}
		return nil, fmt.Errorf("clubs: add member: %w", err)
	}
	return &m, nil
}

func (r *repository) ListMembers(ctx context.Context, clubID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, club_id, actor_id, role, joined_at FROM club_members WHERE club_id = $1 ORDER BY joined_at`, clubID,
	)
	if err != nil {
		return nil, fmt.Errorf("clubs: list members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.ClubID, &m.ActorID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("clubs: scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) RemoveMember(ctx context.Context, clubID, actorID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM club_members WHERE club_id = $1 AND actor_id = $2`, clubID, actorID)
	if err != nil {
		return fmt.Errorf("clubs: remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membership: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ActorExists(ctx context.Context, actorID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM actors WHERE id = $1)`, actorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("clubs: check actor: %w", err)
	}
	return exists, nil
}
