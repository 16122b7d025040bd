package forms

import (
	"io"
	"time"
)

// FieldType enumerates the supported field descriptor types.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldEmail       FieldType = "email"
	FieldNumber      FieldType = "number"
	FieldCheckbox    FieldType = "checkbox"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
)

// FieldSpec is one typed field descriptor in a form's ordered schema.
type FieldSpec struct {
	Name     string    `json:"name" validate:"required"`
	Label    string    `json:"label" validate:"required"`
	Type     FieldType `json:"type" validate:"required,oneof=text textarea email number checkbox select multiselect"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// Form belongs to exactly one club and accepts submissions while active.
type Form struct {
	ID          int64       `json:"id"`
	ClubID      int64       `json:"club_id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Fields      []FieldSpec `json:"fields"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Application statuses. Accepted and rejected are terminal.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// TerminalStatus reports whether s admits no further transitions.
func TerminalStatus(s string) bool {
	return s == StatusAccepted || s == StatusRejected
}

// Application is one submission against a form.
type Application struct {
	ID          int64             `json:"id"`
	FormID      int64             `json:"form_id"`
	SubmitterID int64             `json:"submitter_id"`
	Status      string            `json:"status"`
	Data        map[string]any    `json:"data"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Files       []ApplicationFile `json:"files"`
}

// ApplicationFile is the metadata row for one stored upload.
type ApplicationFile struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	Path          string    `json:"path"`
	OriginalName  string    `json:"original_name"`
	ContentType   string    `json:"content_type"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// Upload is one inbound file for a submission.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// CreateFormRequest carries the fields accepted on form creation.
type CreateFormRequest struct {
	ClubID      int64       `json:"club_id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Description *string     `json:"description"`
	Fields      []FieldSpec `json:"fields" validate:"required,min=1,dive"`
	IsActive    bool        `json:"is_active"`
}

// UpdateFormRequest carries optional updates; nil fields are untouched.
type UpdateFormRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Fields      *[]FieldSpec `json:"fields"`
	IsActive    *bool        `json:"is_active"`
}
