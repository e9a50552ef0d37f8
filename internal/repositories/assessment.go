package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talentflow/internal/models"
)

type AssessmentRepository interface {
	FindByJobID(ctx context.Context, jobID string) (*models.Assessment, error)
	Save(ctx context.Context, assessment *models.Assessment) (*models.Assessment, error)
	SubmitResponse(ctx context.Context, response *models.AssessmentResponse, actor string) error
}

type assessmentRepository struct {
	db    *gorm.DB
	clock *clock
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db, clock: sharedClock}
}

func findAssessment(tx *gorm.DB, jobID string) (*models.Assessment, error) {
	var a models.Assessment
	if err := tx.Where("job_id = ?", jobID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("assessment for job", jobID)
		}
		return nil, models.StorageError("find assessment", err)
	}
	return &a, nil
}

func (r *assessmentRepository) FindByJobID(ctx context.Context, jobID string) (*models.Assessment, error) {
	return findAssessment(r.db.WithContext(ctx), jobID)
}

// Save replaces the job's assessment wholesale, keeping the id and creation
// time of an existing one.
func (r *assessmentRepository) Save(ctx context.Context, a *models.Assessment) (*models.Assessment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := findJob(tx, "id = ?", a.JobID)
		if err != nil {
			return err
		}
		if job.Status == models.JobStatusArchived {
			return fmt.Errorf("job %s is archived: %w", job.ID, models.ErrConflict)
		}

		now := r.clock.Now()
		existing, err := findAssessment(tx, a.JobID)
		switch {
		case err == nil:
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
		case errors.Is(err, models.ErrNotFound):
			a.ID = uuid.NewString()
			a.CreatedAt = now
		default:
			return err
		}
		a.UpdatedAt = now

		if err := tx.Save(a).Error; err != nil {
			return models.StorageError("save assessment", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("save assessment", err)
	}
	return a, nil
}

// SubmitResponse validates and stores a candidate's answers and appends an
// assessment_completed event, atomically.
func (r *assessmentRepository) SubmitResponse(ctx context.Context, resp *models.AssessmentResponse, actor string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := findAssessment(tx, resp.JobID)
		if err != nil {
			return err
		}
		candidate, err := findCandidate(tx, resp.CandidateID)
		if err != nil {
			return err
		}
		if candidate.JobID != a.JobID {
			return models.NewValidationError("candidateId", "candidate did not apply to this job")
		}
		if err := a.ValidateAnswers(resp.Answers); err != nil {
			return err
		}

		now := r.clock.Now()
		resp.ID = uuid.NewString()
		resp.AssessmentID = a.ID
		resp.SubmittedAt = now
		if err := tx.Create(resp).Error; err != nil {
			return models.StorageError("save assessment response", err)
		}

		return appendEvent(tx, &models.TimelineEvent{
			CandidateID: candidate.ID,
			Type:        models.EventAssessmentCompleted,
			Description: fmt.Sprintf("Completed assessment %q", a.Title),
			Timestamp:   now,
			Actor:       actor,
			Metadata: map[string]interface{}{
				"assessmentId": a.ID,
				"responseId":   resp.ID,
			},
		})
	})
	return classify("submit assessment", err)
}
