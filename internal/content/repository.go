package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/shared"
)

// Repository defines persistence operations for content requests.
type Repository interface {
	Get(ctx context.Context, id int64) (*Request, error)
	Create(ctx context.Context, req Request) (*Request, error)
	ListPending(ctx context.Context, limit, offset int) ([]Request, error)
	ListByClub(ctx context.Context, clubID int64) ([]Request, error)
	Review(ctx context.Context, id int64, status string, reviewerID int64, note *string) error
	ClubExists(ctx context.Context, clubID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const requestColumns = `id, club_id, requester_id, title, body, status, reviewer_id, review_note, created_at, reviewed_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var cr Request
	err := row.Scan(&cr.ID, &cr.ClubID, &cr.RequesterID, &cr.Title, &cr.Body, &cr.Status, &cr.ReviewerID, &cr.ReviewNote, &cr.CreatedAt, &cr.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Request, error) {
	cr, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM content_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("content request %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("content: get: %w", err)
	}
	return cr, nil
}

func (r *repository) Create(ctx context.Context, req Request) (*Request, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO content_requests (club_id, requester_id, title, body, status) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		req.ClubID, req.RequesterID, req.Title, req.Body, StatusPending,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("content: create: %w", err)
	}
	req.Status = StatusPending
	return &req, nil
}

func (r *repository) ListPending(ctx context.Context, limit, offset int) ([]Request, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM content_requests WHERE status = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		StatusPending, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("content: list pending: %w", err)
	}
	return collect(rows)
}

func (r *repository) ListByClub(ctx context.Context, clubID int64) ([]Request, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM content_requests WHERE club_id = $1 ORDER BY created_at DESC`, clubID,
	)
	if err != nil {
		return nil, fmt.Errorf("content: list by club: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Request, error) {
	defer rows.Close()
	var out []Request
	for rows.Next() {
		cr, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("content: scan: %w", err)
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

// Review transitions a pending request. The WHERE clause makes the terminal
// check race-free: a request reviewed concurrently affects zero rows.
func (r *repository) Review(ctx context.Context, id int64, status string, reviewerID int64, note *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE content_requests SET status = $1, reviewer_id = $2, review_note = $3, reviewed_at = NOW()
		 WHERE id = $4 AND status = $5`,
		status, reviewerID, note, id, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("content: review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("content request %d is not pending: %w", id, shared.ErrConflict)
	}
	return nil
}

func (r *repository) ClubExists(ctx context.Context, clubID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clubs WHERE id = $1)`, clubID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("content: check club: %w", err)
	}
	return exists, nil
}
