package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campushub/internal/shared"
)

func testFields() []FieldSpec {
	return []FieldSpec{
		{Name: "name", Label: "Full name", Type: FieldText, Required: true},
		{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
		{Name: "year", Label: "Year of study", Type: FieldNumber},
		{Name: "agree", Label: "Code of conduct", Type: FieldCheckbox, Required: true},
		{Name: "track", Label: "Track", Type: FieldSelect, Options: []string{"tech", "design"}},
		{Name: "interests", Label: "Interests", Type: FieldMultiSelect, Options: []string{"go", "rust", "web"}},
	}
}

func TestValidateSubmissionAccepts(t *testing.T) {
	data := map[string]any{
		"name":      "Dana Kim",
		"email":     "dana@example.edu",
		"year":      float64(2),
		"agree":     true,
		"track":     "tech",
		"interests": []any{"go", "web"},
	}
	require.NoError(t, ValidateSubmission(testFields(), data))
}

func TestValidateSubmissionOptionalFieldsMayBeOmitted(t *testing.T) {
	data := map[string]any{
		"name":  "Dana Kim",
		"email": "dana@example.edu",
		"agree": true,
	}
	require.NoError(t, ValidateSubmission(testFields(), data))
}

func TestValidateSubmissionRejects(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"name":  "Dana Kim",
			"email": "dana@example.edu",
			"agree": true,
		}
	}

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing required field", func(d map[string]any) { delete(d, "name") }},
		{"required text blank", func(d map[string]any) { d["name"] = "   " }},
		{"unknown key", func(d map[string]any) { d["favorite_color"] = "blue" }},
		{"wrong type for text", func(d map[string]any) { d["name"] = 42 }},
		{"bad email", func(d map[string]any) { d["email"] = "not-an-email" }},
		{"wrong type for number", func(d map[string]any) { d["year"] = "two" }},
		{"wrong type for checkbox", func(d map[string]any) { d["agree"] = "yes" }},
		{"select outside options", func(d map[string]any) { d["track"] = "music" }},
		{"multiselect outside options", func(d map[string]any) { d["interests"] = []any{"go", "cooking"} }},
		{"multiselect wrong element type", func(d map[string]any) { d["interests"] = []any{1, 2} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := base()
			tc.mutate(data)
			err := ValidateSubmission(testFields(), data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation), "expected a validation error, got %v", err)
		})
	}
}

func TestValidateSubmissionNilValueOnOptionalField(t *testing.T) {
	data := map[string]any{
		"name":  "Dana Kim",
		"email": "dana@example.edu",
		"agree": true,
		"track": nil,
	}
	require.NoError(t, ValidateSubmission(testFields(), data))
}
