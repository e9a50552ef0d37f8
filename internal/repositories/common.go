package repositories

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talentflow/internal/models"
)

// clock hands out strictly increasing UTC timestamps at microsecond
// resolution so that timeline ordering by timestamp is total.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newClock() *clock {
	return &clock{now: time.Now}
}

// sharedClock is used by every repository so events written through
// different repositories still order correctly against each other.
var sharedClock = newClock()

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// classify keeps taxonomy errors as they are and turns anything else into a
// storage failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrStorageFailure) ||
		errors.Is(err, models.ErrConflict) {
		return err
	}
	return models.StorageError(op, err)
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, models.ErrNotFound)
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func appendEvent(tx *gorm.DB, event *models.TimelineEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if !event.Type.IsValid() {
		return models.NewValidationError("type", fmt.Sprintf("unknown timeline event type %q", event.Type))
	}
	if err := tx.Create(event).Error; err != nil {
		return models.StorageError("append timeline event", err)
	}
	return nil
}

func stageChangeEvent(candidateID string, from, to models.Stage, actor string, at time.Time) *models.TimelineEvent {
	return &models.TimelineEvent{
		CandidateID: candidateID,
		Type:        models.EventStageChange,
		Description: models.StageChangeDescription(from, to),
		Timestamp:   at,
		Actor:       actor,
		Metadata: map[string]interface{}{
			"from": string(from),
			"to":   string(to),
		},
	}
}
