package models

import (
	"net/mail"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Candidate struct {
	ID           string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string                      `gorm:"type:text;not null" json:"name"`
	Email        string                      `gorm:"type:text;index" json:"email"`
	Phone        string                      `gorm:"type:text" json:"phone"`
	ResumeURL    string                      `gorm:"type:text" json:"resumeUrl"`
	ProfileURL   string                      `gorm:"type:text" json:"profileUrl"`
	CurrentTitle string                      `gorm:"type:text" json:"currentTitle"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Stage        Stage                       `gorm:"type:varchar(20);not null;index" json:"stage"`
	JobID        string                      `gorm:"type:varchar(36);index" json:"jobId"`
	AppliedAt    time.Time                   `json:"appliedAt"`
	Notes        string                      `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
	SearchText   string                      `gorm:"type:text;index" json:"-"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// BeforeSave keeps the search column in step with the searchable fields on
// Create and Save. Map updates must set search_text themselves.
func (c *Candidate) BeforeSave(*gorm.DB) error {
	c.SearchText = c.SearchKey()
	return nil
}

// SearchKey is the lowercased name, email, title and skills joined by "\n".
// Lowercasing happens here rather than in SQL so non-ASCII letters fold the
// same way on every driver.
func (c *Candidate) SearchKey() string {
	parts := make([]string, 0, 3+len(c.Skills))
	parts = append(parts, c.Name, c.Email, c.CurrentTitle)
	parts = append(parts, c.Skills...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// Clone returns a deep copy; the board keeps clones as rollback snapshots.
func (c Candidate) Clone() Candidate {
	out := c
	if c.Skills != nil {
		out.Skills = make(datatypes.JSONSlice[string], len(c.Skills))
		copy(out.Skills, c.Skills)
	}
	return out
}

// Validate checks the invariants every persisted candidate must satisfy.
func (c *Candidate) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	} else if _, err := mail.ParseAddress(c.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "invalid format"})
	}
	if !c.Stage.IsValid() {
		errs = append(errs, FieldError{Field: "stage", Message: "unknown stage"})
	}
	if strings.TrimSpace(c.JobID) == "" {
		errs = append(errs, FieldError{Field: "jobId", Message: "required"})
	}
	return NewValidationErrors(errs)
}

// NormalizeSkills trims entries and drops blanks and case-insensitive
// duplicates, keeping the first spelling seen.
func NormalizeSkills(skills []string) datatypes.JSONSlice[string] {
	seen := make(map[string]struct{}, len(skills))
	out := make(datatypes.JSONSlice[string], 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CandidatePatch is a partial update; nil fields are left untouched.
type CandidatePatch struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	ResumeURL    *string   `json:"resumeUrl,omitempty"`
	ProfileURL   *string   `json:"profileUrl,omitempty"`
	CurrentTitle *string   `json:"currentTitle,omitempty"`
	Skills       *[]string `json:"skills,omitempty"`
	Stage        *Stage    `json:"stage,omitempty"`
	JobID        *string   `json:"jobId,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

func (p CandidatePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.ResumeURL == nil &&
		p.ProfileURL == nil && p.CurrentTitle == nil && p.Skills == nil && p.Stage == nil &&
		p.JobID == nil && p.Notes == nil
}

// Apply copies the set fields onto c.
func (p CandidatePatch) Apply(c *Candidate) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.ResumeURL != nil {
		c.ResumeURL = *p.ResumeURL
	}
	if p.ProfileURL != nil {
		c.ProfileURL = *p.ProfileURL
	}
	if p.CurrentTitle != nil {
		c.CurrentTitle = *p.CurrentTitle
	}
	if p.Skills != nil {
		c.Skills = NormalizeSkills(*p.Skills)
	}
	if p.Stage != nil {
		c.Stage = *p.Stage
	}
	if p.JobID != nil {
		c.JobID = *p.JobID
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
}

// CandidateFilter is a conjunction; zero-valued fields do not constrain.
type CandidateFilter struct {
	Search string
	Stage  Stage
	JobID  string
}

// Matches mirrors the SQL filter of the candidate repository for in-memory views.
func (f CandidateFilter) Matches(c *Candidate) bool {
	if f.Stage != "" && c.Stage != f.Stage {
		return false
	}
	if f.JobID != "" && c.JobID != f.JobID {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(c.SearchKey(), term)
}
