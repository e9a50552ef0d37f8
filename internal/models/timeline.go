package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type TimelineEventType string

const (
	EventApplied             TimelineEventType = "applied"
	EventStageChange         TimelineEventType = "stage_change"
	EventNoteAdded           TimelineEventType = "note_added"
	EventAssessmentCompleted TimelineEventType = "assessment_completed"
)

func (t TimelineEventType) IsValid() bool {
	switch t {
	case EventApplied, EventStageChange, EventNoteAdded, EventAssessmentCompleted:
		return true
	}
	return false
}

// TimelineEvent is an append-only audit record. Timestamps are stored and
// served in UTC; JSON encoding is RFC 3339.
type TimelineEvent struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	CandidateID string            `gorm:"type:varchar(36);not null;index" json:"candidateId"`
	Type        TimelineEventType `gorm:"type:varchar(32);not null" json:"type"`
	Description string            `gorm:"type:text" json:"description"`
	Timestamp   time.Time         `gorm:"not null;index" json:"timestamp"`
	Actor       string            `gorm:"type:text" json:"actor"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
}

func (TimelineEvent) TableName() string {
	return "timeline_events"
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(raw string) (SortOrder, error) {
	switch SortOrder(raw) {
	case SortAsc, SortDesc:
		return SortOrder(raw), nil
	}
	return "", NewValidationError("order", fmt.Sprintf("must be %q or %q", SortAsc, SortDesc))
}

func StageChangeDescription(from, to Stage) string {
	return fmt.Sprintf("Moved from %s to %s", from.DisplayName(), to.DisplayName())
}
