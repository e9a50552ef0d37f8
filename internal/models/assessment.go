package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionShortText    QuestionType = "short_text"
	QuestionLongText     QuestionType = "long_text"
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFileUpload   QuestionType = "file_upload"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionShortText, QuestionLongText, QuestionSingleChoice,
		QuestionMultiChoice, QuestionNumeric, QuestionFileUpload:
		return true
	}
	return false
}

func (t QuestionType) isText() bool {
	return t == QuestionShortText || t == QuestionLongText
}

func (t QuestionType) isChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

// Condition shows a question only when another question's answer equals Value.
// For multi-choice answers "equals" means the selection contains Value.
type Condition struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Label         string       `json:"label"`
	Required      bool         `json:"required"`
	Options       []string     `json:"options,omitempty"`
	MinLength     *int         `json:"minLength,omitempty"`
	MaxLength     *int         `json:"maxLength,omitempty"`
	Min           *float64     `json:"min,omitempty"`
	Max           *float64     `json:"max,omitempty"`
	MaxFileSizeMB *float64     `json:"maxFileSizeMb,omitempty"`
	ShowIf        *Condition   `json:"showIf,omitempty"`
}

type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Assessment is persisted wholesale; Sections keep their builder order.
type Assessment struct {
	ID          string                       `gorm:"type:varchar(36);primaryKey" json:"id"`
	JobID       string                       `gorm:"type:varchar(36);uniqueIndex" json:"jobId"`
	Title       string                       `gorm:"type:text" json:"title"`
	Description string                       `gorm:"type:text" json:"description"`
	Sections    datatypes.JSONSlice[Section] `json:"sections"`
	CreatedAt   time.Time                    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

func (Assessment) TableName() string {
	return "assessments"
}

type AssessmentResponse struct {
	ID           string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	AssessmentID string            `gorm:"type:varchar(36);index" json:"assessmentId"`
	JobID        string            `gorm:"type:varchar(36)" json:"jobId"`
	CandidateID  string            `gorm:"type:varchar(36);index" json:"candidateId"`
	Answers      datatypes.JSONMap `json:"answers"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

func (AssessmentResponse) TableName() string {
	return "assessment_responses"
}

func (a *Assessment) questions() []Question {
	var out []Question
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// Validate checks the builder output before it is saved.
func (a *Assessment) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(a.JobID) == "" {
		errs = append(errs, FieldError{Field: "jobId", Message: "required"})
	}
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "required"})
	}

	ids := make(map[string]struct{})
	for _, q := range a.questions() {
		if q.ID == "" {
			errs = append(errs, FieldError{Field: "questions.id", Message: "required"})
			continue
		}
		if _, dup := ids[q.ID]; dup {
			errs = append(errs, FieldError{Field: q.ID, Message: "duplicate question id"})
		}
		ids[q.ID] = struct{}{}
	}

	for _, q := range a.questions() {
		if q.ID == "" {
			continue
		}
		errs = append(errs, q.validate(ids)...)
	}
	return NewValidationErrors(errs)
}

func (q Question) validate(ids map[string]struct{}) []FieldError {
	var errs []FieldError
	add := func(msg string) { errs = append(errs, FieldError{Field: q.ID, Message: msg}) }

	if !q.Type.IsValid() {
		add(fmt.Sprintf("unknown question type %q", q.Type))
	}
	if strings.TrimSpace(q.Label) == "" {
		add("label required")
	}
	if q.Type.isChoice() {
		if len(q.Options) == 0 {
			add("choice question needs options")
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if strings.TrimSpace(o) == "" {
				add("blank option")
			}
			if _, dup := seen[o]; dup {
				add(fmt.Sprintf("duplicate option %q", o))
			}
			seen[o] = struct{}{}
		}
	}
	if q.MinLength != nil && *q.MinLength < 0 {
		add("minLength must not be negative")
	}
	if q.MinLength != nil && q.MaxLength != nil && *q.MinLength > *q.MaxLength {
		add("minLength exceeds maxLength")
	}
	if q.Min != nil && q.Max != nil && *q.Min > *q.Max {
		add("min exceeds max")
	}
	if q.MaxFileSizeMB != nil && *q.MaxFileSizeMB <= 0 {
		add("maxFileSizeMb must be positive")
	}
	if q.ShowIf != nil {
		if q.ShowIf.QuestionID == q.ID {
			add("showIf cannot reference itself")
		} else if _, ok := ids[q.ShowIf.QuestionID]; !ok {
			add(fmt.Sprintf("showIf references unknown question %q", q.ShowIf.QuestionID))
		}
	}
	return errs
}

// ValidateAnswers checks a submission. Hidden questions are skipped and
// answers to unknown questions are rejected.
func (a *Assessment) ValidateAnswers(answers map[string]any) error {
	var errs []FieldError
	questions := a.questions()

	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			errs = append(errs, FieldError{Field: id, Message: "unknown question"})
		}
	}

	for _, q := range questions {
		if q.ShowIf != nil && !answerEquals(answers[q.ShowIf.QuestionID], q.ShowIf.Value) {
			continue
		}
		v, ok := answers[q.ID]
		if !ok || isBlankAnswer(v) {
			if q.Required {
				errs = append(errs, FieldError{Field: q.ID, Message: "required"})
			}
			continue
		}
		if msg := q.checkAnswer(v); msg != "" {
			errs = append(errs, FieldError{Field: q.ID, Message: msg})
		}
	}
	return NewValidationErrors(errs)
}

func (q Question) checkAnswer(v any) string {
	switch {
	case q.Type.isText():
		s, ok := v.(string)
		if !ok {
			return "expected text"
		}
		n := utf8.RuneCountInString(s)
		if q.MinLength != nil && n < *q.MinLength {
			return fmt.Sprintf("must be at least %d characters", *q.MinLength)
		}
		if q.MaxLength != nil && n > *q.MaxLength {
			return fmt.Sprintf("must be at most %d characters", *q.MaxLength)
		}
	case q.Type == QuestionSingleChoice:
		s, ok := v.(string)
		if !ok || !slices.Contains(q.Options, s) {
			return "not one of the options"
		}
	case q.Type == QuestionMultiChoice:
		picked, ok := stringSlice(v)
		if !ok {
			return "expected a list of options"
		}
		for _, s := range picked {
			if !slices.Contains(q.Options, s) {
				return fmt.Sprintf("%q is not one of the options", s)
			}
		}
	case q.Type == QuestionNumeric:
		f, ok := number(v)
		if !ok {
			return "expected a number"
		}
		if q.Min != nil && f < *q.Min {
			return fmt.Sprintf("must be >= %s", formatFloat(*q.Min))
		}
		if q.Max != nil && f > *q.Max {
			return fmt.Sprintf("must be <= %s", formatFloat(*q.Max))
		}
	case q.Type == QuestionFileUpload:
		switch f := v.(type) {
		case string:
		case map[string]any:
			if name, _ := f["name"].(string); name == "" {
				return "file name required"
			}
			if size, ok := number(f["sizeMb"]); ok && q.MaxFileSizeMB != nil && size > *q.MaxFileSizeMB {
				return fmt.Sprintf("file exceeds %s MB", formatFloat(*q.MaxFileSizeMB))
			}
		default:
			return "expected a file"
		}
	}
	return ""
}

func answerEquals(v any, want string) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t == want
	case bool:
		return strconv.FormatBool(t) == want
	}
	if list, ok := stringSlice(v); ok {
		return slices.Contains(list, want)
	}
	if f, ok := number(v); ok {
		return formatFloat(f) == want
	}
	return false
}

func isBlankAnswer(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func stringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
