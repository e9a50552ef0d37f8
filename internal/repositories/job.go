package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talentflow/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	FindBySlug(ctx context.Context, slug string) (*models.Job, error)
	FindPage(ctx context.Context, filter models.JobFilter, page models.Page) ([]models.Job, models.Pagination, error)
	Update(ctx context.Context, id string, patch models.JobPatch) (*models.Job, error)
	Reorder(ctx context.Context, id string, fromOrder, toOrder int) (*models.Job, error)
}

type jobRepository struct {
	db    *gorm.DB
	clock *clock
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db, clock: sharedClock}
}

func findJob(tx *gorm.DB, query string, arg string) (*models.Job, error) {
	var job models.Job
	if err := tx.Where(query, arg).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("job", arg)
		}
		return nil, models.StorageError("find job", err)
	}
	return &job, nil
}

// uniqueSlug returns base, or base-2, base-3... whichever is free. excludeID
// lets a job keep its own slug on update.
func uniqueSlug(tx *gorm.DB, base, excludeID string) (string, error) {
	var taken []string
	q := tx.Model(&models.Job{}).Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", models.StorageError("check slug", err)
	}

	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, ok := used[candidate]; !ok {
			return candidate, nil
		}
	}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	job.Title = strings.TrimSpace(job.Title)
	job.Tags = models.NormalizeSkills(job.Tags)
	if err := job.Validate(); err != nil {
		return err
	}

	now := r.clock.Now()
	job.CreatedAt, job.UpdatedAt = now, now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(tx, models.Slugify(job.Title), "")
		if err != nil {
			return err
		}
		job.Slug = slug

		var maxOrder int
		if err := tx.Model(&models.Job{}).Select("COALESCE(MAX(position), 0)").Scan(&maxOrder).Error; err != nil {
			return models.StorageError("compute job order", err)
		}
		job.Order = maxOrder + 1

		if err := tx.Create(job).Error; err != nil {
			return models.StorageError("create job", err)
		}
		return nil
	})
	return classify("create job", err)
}

func (r *jobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	return findJob(r.db.WithContext(ctx), "id = ?", id)
}

func (r *jobRepository) FindBySlug(ctx context.Context, slug string) (*models.Job, error) {
	return findJob(r.db.WithContext(ctx), "slug = ?", slug)
}

func (r *jobRepository) FindPage(ctx context.Context, filter models.JobFilter, page models.Page) ([]models.Job, models.Pagination, error) {
	page = page.Normalize()
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if strings.TrimSpace(filter.Search) != "" {
			like := likePattern(filter.Search)
			q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\')`, like, like)
		}
		return q
	}
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Job{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, models.Pagination{}, models.StorageError("count jobs", err)
	}

	out := make([]models.Job, 0, page.PageSize)
	err := db.Model(&models.Job{}).Scopes(scope).
		Order("position ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, models.Pagination{}, models.StorageError("find jobs", err)
	}
	return out, models.NewPagination(page, total), nil
}

// Update applies a partial patch; a title change re-derives the slug.
// Archiving is a status flip, jobs are never deleted.
func (r *jobRepository) Update(ctx context.Context, id string, patch models.JobPatch) (*models.Job, error) {
	var out *models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := findJob(tx, "id = ?", id)
		if err != nil {
			return err
		}

		if patch.Title != nil && strings.TrimSpace(*patch.Title) != job.Title {
			job.Title = strings.TrimSpace(*patch.Title)
			slug, err := uniqueSlug(tx, models.Slugify(job.Title), job.ID)
			if err != nil {
				return err
			}
			job.Slug = slug
		}
		if patch.Status != nil {
			job.Status = *patch.Status
		}
		if patch.Department != nil {
			job.Department = *patch.Department
		}
		if patch.Tags != nil {
			job.Tags = models.NormalizeSkills(*patch.Tags)
		}
		if patch.Description != nil {
			job.Description = *patch.Description
		}
		if err := job.Validate(); err != nil {
			return err
		}

		job.UpdatedAt = r.clock.Now()
		if err := tx.Save(job).Error; err != nil {
			return models.StorageError("update job", err)
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, classify("update job", err)
	}
	return out, nil
}

// Reorder moves a job from one board position to another and shifts the
// jobs in between. fromOrder must match the stored position, otherwise the
// caller is working from a stale list.
func (r *jobRepository) Reorder(ctx context.Context, id string, fromOrder, toOrder int) (*models.Job, error) {
	if toOrder < 1 {
		return nil, models.NewValidationError("toOrder", "must be >= 1")
	}

	var out *models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := findJob(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if job.Order != fromOrder {
			return fmt.Errorf("job %s is at position %d, not %d: %w", id, job.Order, fromOrder, models.ErrConflict)
		}
		if fromOrder == toOrder {
			out = job
			return nil
		}

		var maxOrder int
		if err := tx.Model(&models.Job{}).Select("COALESCE(MAX(position), 0)").Scan(&maxOrder).Error; err != nil {
			return models.StorageError("compute job order", err)
		}
		if toOrder > maxOrder {
			return models.NewValidationError("toOrder", fmt.Sprintf("must be <= %d", maxOrder))
		}

		shift := tx.Model(&models.Job{}).Where("id <> ?", id)
		if fromOrder < toOrder {
			err = shift.Where("position > ? AND position <= ?", fromOrder, toOrder).
				UpdateColumn("position", gorm.Expr("position - 1")).Error
		} else {
			err = shift.Where("position >= ? AND position < ?", toOrder, fromOrder).
				UpdateColumn("position", gorm.Expr("position + 1")).Error
		}
		if err != nil {
			return models.StorageError("shift jobs", err)
		}

		job.Order = toOrder
		job.UpdatedAt = r.clock.Now()
		err = tx.Model(&models.Job{}).Where("id = ?", id).
			Updates(map[string]interface{}{"position": toOrder, "updated_at": job.UpdatedAt}).Error
		if err != nil {
			return models.StorageError("reorder job", err)
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, classify("reorder job", err)
	}
	return out, nil
}
