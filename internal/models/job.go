package models

import (
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusArchived JobStatus = "archived"
)

func (s JobStatus) IsValid() bool {
	return s == JobStatusActive || s == JobStatusArchived
}

type Job struct {
	ID          string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string                      `gorm:"type:text;not null" json:"title"`
	Slug        string                      `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	Status      JobStatus                   `gorm:"type:varchar(16);not null;index" json:"status"`
	Department  string                      `gorm:"type:text" json:"department"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Order       int                         `gorm:"column:position;index" json:"order"`
	Description string                      `gorm:"type:text" json:"description"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(j.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "required"})
	}
	if !j.Status.IsValid() {
		errs = append(errs, FieldError{Field: "status", Message: "must be active or archived"})
	}
	return NewValidationErrors(errs)
}

// Slugify derives a url-safe slug from a job title: lower-case ASCII letters
// and digits separated by single dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "job"
	}
	return slug
}

type JobPatch struct {
	Title       *string    `json:"title,omitempty"`
	Status      *JobStatus `json:"status,omitempty"`
	Department  *string    `json:"department,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Description *string    `json:"description,omitempty"`
}

type JobFilter struct {
	Search string
	Status JobStatus
}
