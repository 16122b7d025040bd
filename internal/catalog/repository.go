package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/platform/db"
	"github.com/campushub/campushub/internal/shared"
)

// Repository defines persistence operations for the public catalog.
type Repository interface {
	CreateCategory(ctx context.Context, c Category) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateEvent(ctx context.Context, e Event) (*Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	ListEvents(ctx context.Context, publishedOnly bool, limit, offset int) ([]Event, error)
	PublishEvent(ctx context.Context, id int64, published bool) error
	DeleteEvent(ctx context.Context, id int64) error

	CreateStory(ctx context.Context, s Story) (*Story, error)
	ListStories(ctx context.Context, publishedOnly bool) ([]Story, error)
	DeleteStory(ctx context.Context, id int64) error

	GetSetting(ctx context.Context, key string) (*Setting, error)
	ListSettings(ctx context.Context) ([]Setting, error)
	PutSetting(ctx context.Context, key, value string) (*Setting, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.Slug,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("category slug %q already exists: %w", c.Slug, shared.ErrConflict)
		}
		return nil, fmt.Errorf("catalog: create category: %w", err)
	}
	return &c, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

const eventColumns = `id, club_id, category_id, title, description, location, starts_at, ends_at, is_published, created_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.ClubID, &e.CategoryID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) CreateEvent(ctx context.Context, e Event) (*Event, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO events (club_id, category_id, title, description, location, starts_at, ends_at, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.ClubID, e.CategoryID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.IsPublished,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("catalog: create event: %w", err)
	}
	return &e, nil
}

func (r *repository) GetEvent(ctx context.Context, id int64) (*Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: get event: %w", err)
	}
	return e, nil
}

func (r *repository) ListEvents(ctx context.Context, publishedOnly bool, limit, offset int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if publishedOnly {
		query += ` WHERE is_published`
	}
	query += ` ORDER BY starts_at LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("catalog: list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *repository) PublishEvent(ctx context.Context, id int64, published bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET is_published = $1, updated_at = NOW() WHERE id = $2`, published, id)
	if err != nil {
		return fmt.Errorf("catalog: publish event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) CreateStory(ctx context.Context, s Story) (*Story, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO stories (club_id, title, body, published_at) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.ClubID, s.Title, s.Body, s.PublishedAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("catalog: create story: %w", err)
	}
	return &s, nil
}

func (r *repository) ListStories(ctx context.Context, publishedOnly bool) ([]Story, error) {
	query := `SELECT id, club_id, title, body, published_at, created_at FROM stories`
	if publishedOnly {
		query += ` WHERE published_at IS NOT NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list stories: %w", err)
	}
	defer rows.Close()

	var out []Story
	for rows.Next() {
		var s Story
		if err := rows.Scan(&s.ID, &s.ClubID, &s.Title, &s.Body, &s.PublishedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan story: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) DeleteStory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("story %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) GetSetting(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx, `SELECT key, value, updated_at FROM site_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("setting %q: %w", key, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: get setting: %w", err)
	}
	return &s, nil
}

func (r *repository) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan setting: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) PutSetting(ctx context.Context, key, value string) (*Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx,
		`INSERT INTO site_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING key, value, updated_at`,
		key, value,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("catalog: put setting: %w", err)
	}
	return &s, nil
}
