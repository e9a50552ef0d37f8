// Package repotest provides an in-memory database and seed helpers for
// tests that need real repositories.
package repotest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/talentflow/internal/config"
	"alfredoptarigan/talentflow/internal/models"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func SeedJob(t testing.TB, db *gorm.DB, title string) *models.Job {
	t.Helper()

	now := time.Now().UTC()
	var maxOrder int
	require.NoError(t, db.Model(&models.Job{}).Select("COALESCE(MAX(position), 0)").Scan(&maxOrder).Error)

	job := &models.Job{
		ID:        uuid.NewString(),
		Title:     title,
		Slug:      models.Slugify(title) + "-" + uuid.NewString()[:8],
		Status:    models.JobStatusActive,
		Order:     maxOrder + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

// SeedCandidate inserts a candidate directly, without timeline events.
// appliedOffset spaces candidates out so fetch order is predictable.
func SeedCandidate(t testing.TB, db *gorm.DB, jobID, name string, stage models.Stage, appliedOffset time.Duration) *models.Candidate {
	t.Helper()

	now := time.Now().UTC()
	c := &models.Candidate{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Stage:     stage,
		JobID:     jobID,
		Skills:    models.NormalizeSkills(nil),
		AppliedAt: now.Add(-24 * time.Hour).Add(appliedOffset),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
