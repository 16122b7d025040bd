package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/platform/db"
	"github.com/campushub/campushub/internal/shared"
)

// FileRecord pairs a metadata row with its stored path, for reconciliation.
type FileRecord struct {
	ID            int64
	ApplicationID int64
	Path          string
}

// Repository defines persistence operations for forms and applications.
type Repository interface {
	GetForm(ctx context.Context, id int64) (*Form, error)
	ListFormsByClub(ctx context.Context, clubID int64, activeOnly bool) ([]Form, error)
	CreateForm(ctx context.Context, form Form) (*Form, error)
	UpdateForm(ctx context.Context, id int64, updates map[string]any) error
	DeleteForm(ctx context.Context, id int64) error
	ClubExists(ctx context.Context, clubID int64) (bool, error)

	CreateApplication(ctx context.Context, app Application) (*Application, error)
	DeleteApplication(ctx context.Context, id int64) error
	InsertFiles(ctx context.Context, appID int64, files []ApplicationFile) error
	GetApplication(ctx context.Context, id int64) (*Application, error)
	ListApplicationsByForm(ctx context.Context, formID int64) ([]Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status string) error

	ListFileRecords(ctx context.Context) ([]FileRecord, error)
	DeleteFileRecord(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const formColumns = `id, club_id, name, description, fields, is_active, created_at, updated_at`

func scanForm(row pgx.Row) (*Form, error) {
	var f Form
	var fieldsJSON []byte
	if err := row.Scan(&f.ID, &f.ClubID, &f.Name, &f.Description, &fieldsJSON, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fieldsJSON, &f.Fields); err != nil {
		return nil, fmt.Errorf("forms: decode fields: %w", err)
	}
	return &f, nil
}

func (r *repository) GetForm(ctx context.Context, id int64) (*Form, error) {
	f, err := scanForm(r.pool.QueryRow(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("form %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("forms: get: %w", err)
	}
	return f, nil
}

func (r *repository) ListFormsByClub(ctx context.Context, clubID int64, activeOnly bool) ([]Form, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE club_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("forms: list: %w", err)
	}
	defer rows.Close()

	var out []Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("forms: scan: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *repository) CreateForm(ctx context.Context, form Form) (*Form, error) {
	fieldsJSON, err := json.Marshal(form.Fields)
	if err != nil {
		return nil, fmt.Errorf("forms: encode fields: %w", err)
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO forms (club_id, name, description, fields, is_active) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		form.ClubID, form.Name, form.Description, fieldsJSON, form.IsActive,
	).Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("forms: create: %w", err)
	}
	return &form, nil
}

func (r *repository) UpdateForm(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	pos := 1
	for _, col := range []string{"name", "description", "fields", "is_active"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, pos))
			args = append(args, v)
			pos++
		}
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE forms SET %s WHERE id = $%d", strings.Join(sets, ", "), pos)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("forms: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("form %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteForm(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("forms: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("form %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ClubExists(ctx context.Context, clubID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clubs WHERE id = $1)`, clubID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("forms: check club: %w", err)
	}
	return exists, nil
}

func (r *repository) CreateApplication(ctx context.Context, app Application) (*Application, error) {
	dataJSON, err := json.Marshal(app.Data)
	if err != nil {
		return nil, fmt.Errorf("applications: encode data: %w", err)
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO applications (form_id, submitter_id, status, data) VALUES ($1, $2, $3, $4)
		 RETURNING id, submitted_at`,
		app.FormID, app.SubmitterID, app.Status, dataJSON,
	).Scan(&app.ID, &app.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("applications: create: %w", err)
	}
	return &app, nil
}

func (r *repository) DeleteApplication(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("applications: delete: %w", err)
	}
	return nil
}

// InsertFiles writes all metadata rows in a single transaction so either
// every upload of a submission is recorded or none are.
func (r *repository) InsertFiles(ctx context.Context, appID int64, files []ApplicationFile) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range files {
			err := tx.QueryRow(ctx,
				`INSERT INTO application_files (application_id, path, original_name, content_type) VALUES ($1, $2, $3, $4)
				 RETURNING id, uploaded_at`,
				appID, files[i].Path, files[i].OriginalName, files[i].ContentType,
			).Scan(&files[i].ID, &files[i].UploadedAt)
			if err != nil {
				return fmt.Errorf("applications: insert file metadata: %w", err)
			}
			files[i].ApplicationID = appID
		}
		return nil
	})
}

func (r *repository) GetApplication(ctx context.Context, id int64) (*Application, error) {
	var app Application
	var dataJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, form_id, submitter_id, status, data, submitted_at FROM applications WHERE id = $1`, id,
	).Scan(&app.ID, &app.FormID, &app.SubmitterID, &app.Status, &dataJSON, &app.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application %d: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("applications: get: %w", err)
	}
	if err := json.Unmarshal(dataJSON, &app.Data); err != nil {
		return nil, fmt.Errorf("applications: decode data: %w", err)
	}
	app.Files, err = r.listFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) listFiles(ctx context.Context, appID int64) ([]ApplicationFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, application_id, path, original_name, content_type, uploaded_at
		 FROM application_files WHERE application_id = $1 ORDER BY id`, appID,
	)
	if err != nil {
		return nil, fmt.Errorf("applications: list files: %w", err)
	}
	defer rows.Close()

	files := []ApplicationFile{}
	for rows.Next() {
		var f ApplicationFile
		if err := rows.Scan(&f.ID, &f.ApplicationID, &f.Path, &f.OriginalName, &f.ContentType, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("applications: scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *repository) ListApplicationsByForm(ctx context.Context, formID int64) ([]Application, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, form_id, submitter_id, status, data, submitted_at FROM applications WHERE form_id = $1 ORDER BY submitted_at`, formID,
	)
	if err != nil {
		return nil, fmt.Errorf("applications: list: %w", err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var app Application
		var dataJSON []byte
		if err := rows.Scan(&app.ID, &app.FormID, &app.SubmitterID, &app.Status, &dataJSON, &app.SubmittedAt); err != nil {
			return nil, fmt.Errorf("applications: scan: %w", err)
		}
		if err := json.Unmarshal(dataJSON, &app.Data); err != nil {
			return nil, fmt.Errorf("applications: decode data: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		files, err := r.listFiles(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Files = files
	}
	return out, nil
}

func (r *repository) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("applications: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ListFileRecords(ctx context.Context) ([]FileRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, application_id, path FROM application_files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("applications: list file records: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.ID, &rec.ApplicationID, &rec.Path); err != nil {
			return nil, fmt.Errorf("applications: scan file record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repository) DeleteFileRecord(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM application_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("applications: delete file record: %w", err)
	}
	return nil
}
