package forms

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"

	"github.com/google/uuid"

	"github.com/campushub/campushub/internal/platform/storage"
	"github.com/campushub/campushub/internal/shared"
)

// Submit runs the application submission as one logical transaction:
//
//  1. validate the payload against the form's field schema,
//  2. create the application record in status submitted,
//  3. write each upload to the file store,
//  4. persist the file metadata rows atomically.
//
// If any file write fails, the files written so far and the application
// record are removed and the error wraps shared.ErrStorage. If the metadata
// step fails, all written files and the record are removed and the error
// wraps shared.ErrTransaction. Cleanup failures are logged and never mask
// the original error.
func (s *Service) Submit(ctx context.Context, submitterID, formID int64, data map[string]any, uploads []Upload) (*Application, error) {
	form, err := s.repo.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, fmt.Errorf("form %d is not accepting applications: %w", formID, shared.ErrConflict)
	}
	if err := ValidateSubmission(form.Fields, data); err != nil {
		return nil, err
	}

	app, err := s.repo.CreateApplication(ctx, Application{
		FormID:      formID,
		SubmitterID: submitterID,
		Status:      StatusSubmitted,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(uploads))
	files := make([]ApplicationFile, 0, len(uploads))
	for _, up := range uploads {
		name := storedName(app.ID, up.Filename)
		if err := s.store.Write(ctx, name, up.Content); err != nil {
			s.rollback(ctx, app.ID, written)
			return nil, fmt.Errorf("write %q for application %d: %v: %w", up.Filename, app.ID, err, shared.ErrStorage)
		}
		written = append(written, name)
		files = append(files, ApplicationFile{
			Path:         name,
			OriginalName: up.Filename,
			ContentType:  up.ContentType,
		})
	}

	if len(files) > 0 {
		if err := s.repo.InsertFiles(ctx, app.ID, files); err != nil {
			s.rollback(ctx, app.ID, written)
			return nil, fmt.Errorf("persist file metadata for application %d: %v: %w", app.ID, err, shared.ErrTransaction)
		}
		app.Files = files
	} else {
		app.Files = []ApplicationFile{}
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  submitterID,
		Action:   "application.submit",
		Entity:   "application",
		EntityID: strconv.FormatInt(app.ID, 10),
		Meta:     map[string]any{"form_id": formID, "files": len(files)},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
	return app, nil
}

// rollback undoes a partial submission: stored files first, then the
// application record. It uses a context detached from the request's
// cancellation so an aborted request still gets cleaned up.
func (s *Service) rollback(ctx context.Context, appID int64, written []string) {
	ctx = context.WithoutCancel(ctx)
	for _, name := range written {
		if err := s.store.Delete(ctx, name); err != nil {
			s.logger.Error("submission rollback: delete file",
				slog.Int64("application_id", appID), slog.String("path", name), slog.Any("error", err))
		}
	}
	if err := s.repo.DeleteApplication(ctx, appID); err != nil {
		s.logger.Error("submission rollback: delete application",
			slog.Int64("application_id", appID), slog.Any("error", err))
	}
}

// storedName namespaces an upload under its application and prefixes a
// random token so two uploads with the same client filename cannot collide.
func storedName(appID int64, filename string) string {
	token := uuid.NewString()[:8]
	return path.Join(storage.ApplicationPrefix(appID), token+"_"+storage.SanitizeFilename(filename))
}
