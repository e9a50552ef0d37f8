package models

import (
	"time"
)

type ResumeStatus string

const (
	ResumeQueued     ResumeStatus = "queued"
	ResumeProcessing ResumeStatus = "processing"
	ResumeCompleted  ResumeStatus = "completed"
	ResumeFailed     ResumeStatus = "failed"
)

// ResumeDocument is an uploaded CV and the state of its processing.
type ResumeDocument struct {
	ID               string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	CandidateID      string       `gorm:"type:varchar(36);not null;index" json:"candidateId"`
	Filename         string       `gorm:"type:text" json:"filename"`
	OriginalFilename string       `gorm:"type:text" json:"originalFilename"`
	FilePath         string       `gorm:"type:text" json:"-"`
	Status           ResumeStatus `gorm:"type:varchar(16);not null;default:'queued';index" json:"status"`
	PageCount        int          `json:"pageCount"`
	ExtractedText    string       `gorm:"type:text" json:"-"`
	ExtractedSkills  int          `json:"extractedSkills"`
	Indexed          bool         `json:"indexed"`
	ErrorMessage     string       `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (ResumeDocument) TableName() string {
	return "resume_documents"
}
