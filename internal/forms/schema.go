package forms

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/campushub/campushub/internal/shared"
)

// ValidateSubmission checks data against the form's field schema: required
// fields must be present and non-empty, values must match their declared
// type, choice values must belong to the declared options, and keys not in
// the schema are rejected. Returned errors wrap shared.ErrValidation.
func ValidateSubmission(fields []FieldSpec, data map[string]any) error {
	known := make(map[string]FieldSpec, len(fields))
	for _, f := range fields {
		known[f.Name] = f
	}

	for key := range data {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("unknown field %q: %w", key, shared.ErrValidation)
		}
	}

	for _, f := range fields {
		value, present := data[f.Name]
		if !present || value == nil {
			if f.Required {
				return fmt.Errorf("field %q is required: %w", f.Name, shared.ErrValidation)
			}
			continue
		}
		if err := validateValue(f, value); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(f FieldSpec, value any) error {
	switch f.Type {
	case FieldText, FieldTextarea:
		s, ok := value.(string)
		if !ok {
			return typeError(f, "a string")
		}
		if f.Required && strings.TrimSpace(s) == "" {
			return fmt.Errorf("field %q is required: %w", f.Name, shared.ErrValidation)
		}
	case FieldEmail:
		s, ok := value.(string)
		if !ok {
			return typeError(f, "a string")
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return fmt.Errorf("field %q must be a valid email address: %w", f.Name, shared.ErrValidation)
		}
	case FieldNumber:
		// JSON numbers decode as float64.
		switch value.(type) {
		case float64, int, int64:
		default:
			return typeError(f, "a number")
		}
	case FieldCheckbox:
		if _, ok := value.(bool); !ok {
			return typeError(f, "a boolean")
		}
	case FieldSelect:
		s, ok := value.(string)
		if !ok {
			return typeError(f, "a string")
		}
		if !hasOption(f.Options, s) {
			return optionError(f, s)
		}
	case FieldMultiSelect:
		items, ok := value.([]any)
		if !ok {
			return typeError(f, "an array of strings")
		}
		if f.Required && len(items) == 0 {
			return fmt.Errorf("field %q is required: %w", f.Name, shared.ErrValidation)
		}
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return typeError(f, "an array of strings")
			}
			if !hasOption(f.Options, s) {
				return optionError(f, s)
			}
		}
	default:
		return fmt.Errorf("field %q has unsupported type %q: %w", f.Name, f.Type, shared.ErrValidation)
	}
	return nil
}

func hasOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func typeError(f FieldSpec, want string) error {
	return fmt.Errorf("field %q must be %s: %w", f.Name, want, shared.ErrValidation)
}

func optionError(f FieldSpec, value string) error {
	return fmt.Errorf("field %q: %q is not an allowed option: %w", f.Name, value, shared.ErrValidation)
}
