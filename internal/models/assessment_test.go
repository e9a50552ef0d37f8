package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleAssessment() Assessment {
	return Assessment{
		JobID: "job-1",
		Title: "Backend screening",
		Sections: []Section{
			{
				ID:    "basics",
				Title: "Basics",
				Questions: []Question{
					{ID: "name", Type: QuestionShortText, Label: "Preferred name", Required: true, MaxLength: ptr(20)},
					{ID: "years", Type: QuestionNumeric, Label: "Years of Go", Required: true, Min: ptr(0.0), Max: ptr(40.0)},
					{ID: "remote", Type: QuestionSingleChoice, Label: "Remote?", Required: true, Options: []string{"yes", "no"}},
				},
			},
			{
				ID:    "details",
				Title: "Details",
				Questions: []Question{
					{ID: "city", Type: QuestionShortText, Label: "City", Required: true, ShowIf: &Condition{QuestionID: "remote", Value: "no"}},
					{ID: "stack", Type: QuestionMultiChoice, Label: "Stack", Options: []string{"go", "sql", "k8s"}},
					{ID: "essay", Type: QuestionLongText, Label: "Tell us more", MinLength: ptr(10)},
					{ID: "cv", Type: QuestionFileUpload, Label: "Portfolio", MaxFileSizeMB: ptr(5.0)},
				},
			},
		},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	out := make(map[string]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestAssessment_Validate(t *testing.T) {
	t.Parallel()

	a := sampleAssessment()
	require.NoError(t, a.Validate())

	tests := []struct {
		name  string
		edit  func(a *Assessment)
		field string
	}{
		{
			name:  "duplicate id",
			edit:  func(a *Assessment) { a.Sections[1].Questions[0].ID = "name" },
			field: "name",
		},
		{
			name:  "choice without options",
			edit:  func(a *Assessment) { a.Sections[0].Questions[2].Options = nil },
			field: "remote",
		},
		{
			name:  "min above max",
			edit:  func(a *Assessment) { a.Sections[0].Questions[1].Min = ptr(50.0) },
			field: "years",
		},
		{
			name:  "showIf unknown question",
			edit:  func(a *Assessment) { a.Sections[1].Questions[0].ShowIf.QuestionID = "ghost" },
			field: "city",
		},
		{
			name:  "showIf self",
			edit:  func(a *Assessment) { a.Sections[1].Questions[0].ShowIf.QuestionID = "city" },
			field: "city",
		},
		{
			name:  "unknown type",
			edit:  func(a *Assessment) { a.Sections[1].Questions[1].Type = "slider" },
			field: "stack",
		},
		{
			name:  "missing title",
			edit:  func(a *Assessment) { a.Title = "" },
			field: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := sampleAssessment()
			tt.edit(&a)
			err := a.Validate()
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestAssessment_ValidateAnswers(t *testing.T) {
	t.Parallel()

	a := sampleAssessment()

	valid := map[string]any{
		"name":   "Ann",
		"years":  4.0,
		"remote": "yes",
		"stack":  []any{"go", "sql"},
		"cv":     map[string]any{"name": "cv.pdf", "sizeMb": 1.5},
	}
	assert.NoError(t, a.ValidateAnswers(valid))

	tests := []struct {
		name    string
		answers map[string]any
		field   string
	}{
		{name: "missing required", answers: map[string]any{"years": 1.0, "remote": "yes"}, field: "name"},
		{name: "too long", answers: map[string]any{"name": "a name that is far too long", "years": 1.0, "remote": "yes"}, field: "name"},
		{name: "out of range", answers: map[string]any{"name": "A", "years": 41.0, "remote": "yes"}, field: "years"},
		{name: "not an option", answers: map[string]any{"name": "A", "years": 1.0, "remote": "maybe"}, field: "remote"},
		{name: "visible conditional", answers: map[string]any{"name": "A", "years": 1.0, "remote": "no"}, field: "city"},
		{name: "bad multi option", answers: map[string]any{"name": "A", "years": 1.0, "remote": "yes", "stack": []any{"cobol"}}, field: "stack"},
		{name: "short essay", answers: map[string]any{"name": "A", "years": 1.0, "remote": "yes", "essay": "short"}, field: "essay"},
		{name: "big file", answers: map[string]any{"name": "A", "years": 1.0, "remote": "yes", "cv": map[string]any{"name": "cv.pdf", "sizeMb": 9.0}}, field: "cv"},
		{name: "unknown question", answers: map[string]any{"name": "A", "years": 1.0, "remote": "yes", "ghost": "boo"}, field: "ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := a.ValidateAnswers(tt.answers)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestAssessment_HiddenQuestionSkipped(t *testing.T) {
	t.Parallel()

	a := sampleAssessment()
	// City is required but hidden unless remote == "no".
	assert.NoError(t, a.ValidateAnswers(map[string]any{"name": "A", "years": 2.0, "remote": "yes"}))
	assert.NoError(t, a.ValidateAnswers(map[string]any{"name": "A", "years": 2.0, "remote": "no", "city": "Lisbon"}))
}

func TestAssessment_ValidateAnswersAcceptsJSONNumbers(t *testing.T) {
	t.Parallel()

	a := sampleAssessment()
	assert.NoError(t, a.ValidateAnswers(map[string]any{"name": "A", "years": json.Number("7"), "remote": "yes"}))
}
