package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/campushub/campushub/internal/platform/storage"
	"github.com/campushub/campushub/internal/shared"
)

// Service handles form and application business logic.
type Service struct {
	repo   Repository
	store  storage.Store
	logger *slog.Logger
	audit  *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo Repository, store storage.Store, logger *slog.Logger, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, store: store, logger: logger, audit: audit}
}

// CreateForm inserts a new form under an existing club.
func (s *Service) CreateForm(ctx context.Context, req CreateFormRequest) (*Form, error) {
	ok, err := s.repo.ClubExists(ctx, req.ClubID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("club %d: %w", req.ClubID, shared.ErrNotFound)
	}
	if err := validateFieldNames(req.Fields); err != nil {
		return nil, err
	}
	return s.repo.CreateForm(ctx, Form{
		ClubID:      req.ClubID,
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		IsActive:    req.IsActive,
	})
}

// GetForm returns one form. Inactive forms are hidden from callers without
// authority over the owning club.
func (s *Service) GetForm(ctx context.Context, id int64, includeInactive bool) (*Form, error) {
	form, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.IsActive && !includeInactive {
		return nil, fmt.Errorf("form %d: %w", id, shared.ErrNotFound)
	}
	return form, nil
}

// ListForms returns a club's forms, active only unless includeInactive.
func (s *Service) ListForms(ctx context.Context, clubID int64, includeInactive bool) ([]Form, error) {
	ok, err := s.repo.ClubExists(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("club %d: %w", clubID, shared.ErrNotFound)
	}
	return s.repo.ListFormsByClub(ctx, clubID, !includeInactive)
}

// UpdateForm applies the non-nil fields of req.
func (s *Service) UpdateForm(ctx context.Context, id int64, req UpdateFormRequest) (*Form, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Fields != nil {
		if err := validateFieldNames(*req.Fields); err != nil {
			return nil, err
		}
		fieldsJSON, err := json.Marshal(*req.Fields)
		if err != nil {
			return nil, fmt.Errorf("forms: encode fields: %w", err)
		}
		updates["fields"] = fieldsJSON
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.UpdateForm(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetForm(ctx, id)
}

// DeleteForm removes a form; the schema cascades to its applications.
func (s *Service) DeleteForm(ctx context.Context, id int64) error {
	return s.repo.DeleteForm(ctx, id)
}

// GetApplication returns one application with its file metadata.
func (s *Service) GetApplication(ctx context.Context, id int64) (*Application, error) {
	return s.repo.GetApplication(ctx, id)
}

// ListApplications returns all applications of a form.
func (s *Service) ListApplications(ctx context.Context, formID int64) ([]Application, error) {
	if _, err := s.repo.GetForm(ctx, formID); err != nil {
		return nil, err
	}
	return s.repo.ListApplicationsByForm(ctx, formID)
}

// ChangeStatus transitions an application to a new status. Accepted and
// rejected are terminal, so a transition out of them is a conflict.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id int64, status string) (*Application, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, shared.ErrValidation)
	}
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if TerminalStatus(app.Status) && app.Status != status {
		return nil, fmt.Errorf("application %d is already %s: %w", id, app.Status, shared.ErrConflict)
	}
	if app.Status == status {
		return app, nil
	}
	if err := s.repo.UpdateApplicationStatus(ctx, id, status); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "application.status",
		Entity:   "application",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"from": app.Status, "to": status},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
	app.Status = status
	return app, nil
}

func validateFieldNames(fields []FieldSpec) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("field name must not be empty: %w", shared.ErrValidation)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q: %w", f.Name, shared.ErrValidation)
		}
		seen[f.Name] = struct{}{}
		switch f.Type {
		case FieldSelect, FieldMultiSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("field %q needs at least one option: %w", f.Name, shared.ErrValidation)
			}
		}
	}
	return nil
}
