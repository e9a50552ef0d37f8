package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talentflow/internal/models"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.ResumeDocument) error
	FindByID(ctx context.Context, id string) (*models.ResumeDocument, error)
	UpdateStatus(ctx context.Context, id string, status models.ResumeStatus) error
	UpdateResult(ctx context.Context, id string, data *DocumentUpdateData) error
	UpdateError(ctx context.Context, id string, errorMsg string) error
	FindPending(ctx context.Context, limit int) ([]models.ResumeDocument, error)
	FindByStatus(ctx context.Context, status models.ResumeStatus, limit int) ([]models.ResumeDocument, error)
}

type DocumentUpdateData struct {
	ExtractedText   string
	PageCount       int
	ExtractedSkills int
	Indexed         bool
}

type documentRepository struct {
	db    *gorm.DB
	clock *clock
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db, clock: sharedClock}
}

// Create implements DocumentRepository.
func (r *documentRepository) Create(ctx context.Context, doc *models.ResumeDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = models.ResumeQueued
	}
	now := r.clock.Now()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return models.StorageError("create resume document", err)
	}
	return nil
}

// FindByID implements DocumentRepository.
func (r *documentRepository) FindByID(ctx context.Context, id string) (*models.ResumeDocument, error) {
	var doc models.ResumeDocument
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("resume document", id)
		}
		return nil, models.StorageError("find resume document", err)
	}
	return &doc, nil
}

func (r *documentRepository) update(ctx context.Context, id string, op string, updates map[string]interface{}) error {
	updates["updated_at"] = r.clock.Now()
	result := r.db.WithContext(ctx).Model(&models.ResumeDocument{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return models.StorageError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("resume document", id)
	}
	return nil
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id string, status models.ResumeStatus) error {
	return r.update(ctx, id, "update resume status", map[string]interface{}{
		"status": status,
	})
}

func (r *documentRepository) UpdateResult(ctx context.Context, id string, data *DocumentUpdateData) error {
	if data == nil {
		return fmt.Errorf("update resume result: %w", models.NewValidationError("data", "required"))
	}
	return r.update(ctx, id, "update resume result", map[string]interface{}{
		"status":           models.ResumeCompleted,
		"extracted_text":   data.ExtractedText,
		"page_count":       data.PageCount,
		"extracted_skills": data.ExtractedSkills,
		"indexed":          data.Indexed,
		"error_message":    "",
	})
}

func (r *documentRepository) UpdateError(ctx context.Context, id string, errorMsg string) error {
	return r.update(ctx, id, "update resume error", map[string]interface{}{
		"status":        models.ResumeFailed,
		"error_message": errorMsg,
	})
}

func (r *documentRepository) FindPending(ctx context.Context, limit int) ([]models.ResumeDocument, error) {
	return r.FindByStatus(ctx, models.ResumeQueued, limit)
}

// FindByStatus returns documents oldest first. A limit <= 0 means no limit.
func (r *documentRepository) FindByStatus(ctx context.Context, status models.ResumeStatus, limit int) ([]models.ResumeDocument, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var docs []models.ResumeDocument
	if err := q.Find(&docs).Error; err != nil {
		return nil, models.StorageError("find resumes by status", err)
	}
	return docs, nil
}
