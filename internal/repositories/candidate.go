package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/talentflow/internal/models"
)

// CandidateRepository is the only component that reads or writes candidate
// records and their timelines.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate, actor string) error
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	FindAll(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Candidate, error)
	FindPage(ctx context.Context, filter models.CandidateFilter, page models.Page) ([]models.Candidate, models.Pagination, error)
	SetStage(ctx context.Context, id string, stage models.Stage, actor string) (*models.Candidate, error)
	Update(ctx context.Context, id string, patch models.CandidatePatch, actor string) (*models.Candidate, error)
	MergeSkills(ctx context.Context, id string, skills []string) (*models.Candidate, error)
	GetTimeline(ctx context.Context, id string, order models.SortOrder) ([]models.TimelineEvent, error)
}

type candidateRepository struct {
	db    *gorm.DB
	clock *clock
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db, clock: sharedClock}
}

const candidateOrder = "applied_at ASC, created_at ASC, id ASC"

func findCandidate(tx *gorm.DB, id string) (*models.Candidate, error) {
	var c models.Candidate
	if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("candidate", id)
		}
		return nil, models.StorageError("find candidate", err)
	}
	return &c, nil
}

func jobExists(tx *gorm.DB, jobID string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Job{}).Where("id = ?", jobID).Count(&count).Error; err != nil {
		return false, models.StorageError("look up job", err)
	}
	return count > 0, nil
}

func applyCandidateFilter(q *gorm.DB, f models.CandidateFilter) *gorm.DB {
	if f.Stage != "" {
		q = q.Where("stage = ?", f.Stage)
	}
	if f.JobID != "" {
		q = q.Where("job_id = ?", f.JobID)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		q = q.Where(`search_text LIKE ? ESCAPE '\'`, like)
	}
	return q
}

// Create inserts the candidate together with its "applied" timeline event.
func (r *candidateRepository) Create(ctx context.Context, c *models.Candidate, actor string) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Stage == "" {
		c.Stage = models.StageApplied
	}
	c.Skills = models.NormalizeSkills(c.Skills)
	now := r.clock.Now()
	if c.AppliedAt.IsZero() {
		c.AppliedAt = now
	}
	c.AppliedAt = c.AppliedAt.UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	if err := c.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := jobExists(tx, c.JobID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewValidationError("jobId", "unknown job")
		}
		if err := tx.Create(c).Error; err != nil {
			return models.StorageError("create candidate", err)
		}
		return appendEvent(tx, &models.TimelineEvent{
			CandidateID: c.ID,
			Type:        models.EventApplied,
			Description: fmt.Sprintf("Applied, entered %s", c.Stage.DisplayName()),
			Timestamp:   now,
			Actor:       actor,
			Metadata:    map[string]interface{}{"stage": string(c.Stage)},
		})
	})
	return classify("create candidate", err)
}

func (r *candidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	return findCandidate(r.db.WithContext(ctx), id)
}

func (r *candidateRepository) FindAll(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	var out []models.Candidate
	q := applyCandidateFilter(r.db.WithContext(ctx).Model(&models.Candidate{}), filter)
	if err := q.Order(candidateOrder).Find(&out).Error; err != nil {
		return nil, models.StorageError("find candidates", err)
	}
	return out, nil
}

func (r *candidateRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Candidate, error) {
	var out []models.Candidate
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order(candidateOrder).Find(&out).Error; err != nil {
		return nil, models.StorageError("find candidates", err)
	}
	return out, nil
}

func (r *candidateRepository) FindPage(ctx context.Context, filter models.CandidateFilter, page models.Page) ([]models.Candidate, models.Pagination, error) {
	page = page.Normalize()
	db := r.db.WithContext(ctx)

	var total int64
	if err := applyCandidateFilter(db.Model(&models.Candidate{}), filter).Count(&total).Error; err != nil {
		return nil, models.Pagination{}, models.StorageError("count candidates", err)
	}

	out := make([]models.Candidate, 0, page.PageSize)
	err := applyCandidateFilter(db.Model(&models.Candidate{}), filter).
		Order(candidateOrder).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, models.Pagination{}, models.StorageError("find candidates", err)
	}

	return out, models.NewPagination(page, total), nil
}

// SetStage writes the new stage and its stage_change event in one
// transaction. Moving a candidate to the stage it already has changes nothing.
func (r *candidateRepository) SetStage(ctx context.Context, id string, stage models.Stage, actor string) (*models.Candidate, error) {
	if !stage.IsValid() {
		return nil, models.NewValidationError("stage", fmt.Sprintf("unknown stage %q", stage))
	}

	var out *models.Candidate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findCandidate(tx, id)
		if err != nil {
			return err
		}
		if current.Stage == stage {
			out = current
			return nil
		}

		now := r.clock.Now()
		result := tx.Model(&models.Candidate{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"stage":      stage,
				"updated_at": now,
			})
		if result.Error != nil {
			return models.StorageError("update stage", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("candidate", id)
		}

		if err := appendEvent(tx, stageChangeEvent(id, current.Stage, stage, actor, now)); err != nil {
			return err
		}

		current.Stage = stage
		current.UpdatedAt = now
		out = current
		return nil
	})
	if err != nil {
		return nil, classify("set stage", err)
	}
	return out, nil
}

// Update applies a partial patch. Stage and notes changes append their
// timeline events inside the same transaction.
func (r *candidateRepository) Update(ctx context.Context, id string, patch models.CandidatePatch, actor string) (*models.Candidate, error) {
	if patch.Stage != nil && !patch.Stage.IsValid() {
		return nil, models.NewValidationError("stage", fmt.Sprintf("unknown stage %q", *patch.Stage))
	}

	var out *models.Candidate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findCandidate(tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			out = current
			return nil
		}

		next := current.Clone()
		patch.Apply(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		if next.JobID != current.JobID {
			ok, err := jobExists(tx, next.JobID)
			if err != nil {
				return err
			}
			if !ok {
				return models.NewValidationError("jobId", "unknown job")
			}
		}

		now := r.clock.Now()
		next.UpdatedAt = now
		if err := tx.Save(&next).Error; err != nil {
			return models.StorageError("update candidate", err)
		}

		if next.Stage != current.Stage {
			if err := appendEvent(tx, stageChangeEvent(id, current.Stage, next.Stage, actor, now)); err != nil {
				return err
			}
		}
		if next.Notes != current.Notes && strings.TrimSpace(next.Notes) != "" {
			err := appendEvent(tx, &models.TimelineEvent{
				CandidateID: id,
				Type:        models.EventNoteAdded,
				Description: "Note added",
				Timestamp:   r.clock.Now(),
				Actor:       actor,
				Metadata:    map[string]interface{}{"note": excerpt(next.Notes, 140)},
			})
			if err != nil {
				return err
			}
		}

		out = &next
		return nil
	})
	if err != nil {
		return nil, classify("update candidate", err)
	}
	return out, nil
}

// MergeSkills adds skills (case-insensitively deduplicated) without touching
// the timeline.
func (r *candidateRepository) MergeSkills(ctx context.Context, id string, skills []string) (*models.Candidate, error) {
	var out *models.Candidate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findCandidate(tx, id)
		if err != nil {
			return err
		}
		merged := models.NormalizeSkills(append(append([]string{}, current.Skills...), skills...))
		if len(merged) == len(current.Skills) {
			out = current
			return nil
		}

		next := current.Clone()
		next.Skills = merged

		now := r.clock.Now()
		err = tx.Model(&models.Candidate{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"skills":      merged,
				"search_text": next.SearchKey(),
				"updated_at":  now,
			}).Error
		if err != nil {
			return models.StorageError("merge skills", err)
		}
		next.SearchText = next.SearchKey()
		next.UpdatedAt = now
		out = &next
		return nil
	})
	if err != nil {
		return nil, classify("merge skills", err)
	}
	return out, nil
}

func (r *candidateRepository) GetTimeline(ctx context.Context, id string, order models.SortOrder) ([]models.TimelineEvent, error) {
	if _, err := models.ParseSortOrder(string(order)); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	if _, err := findCandidate(db, id); err != nil {
		return nil, err
	}

	desc := order == models.SortDesc

	var events []models.TimelineEvent
	err := db.Where("candidate_id = ?", id).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Find(&events).Error
	if err != nil {
		return nil, models.StorageError("load timeline", err)
	}
	for i := range events {
		events[i].Timestamp = events[i].Timestamp.UTC()
	}
	return events, nil
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
