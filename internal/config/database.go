package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/talentflow/internal/models"
)

func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.GetDatabaseDSN())
	default:
		dialector = sqlite.Open(cfg.Database.SQLitePath + "?_foreign_keys=1&_busy_timeout=5000")
	}

	logLevel := logger.Silent
	if cfg.IsDevelopment() {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("✅ Database connected", zap.String("driver", cfg.Database.Driver))

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("✅ Database migration completed")

	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Job{},
		&models.Candidate{},
		&models.TimelineEvent{},
		&models.Assessment{},
		&models.AssessmentResponse{},
		&models.ResumeDocument{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := backfillSearchText(db); err != nil {
		return fmt.Errorf("failed to backfill candidate search text: %w", err)
	}
	return nil
}

// backfillSearchText fills search_text for rows written before the column existed.
func backfillSearchText(db *gorm.DB) error {
	var batch []models.Candidate
	return db.Where("search_text IS NULL OR search_text = ''").
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				c := &batch[i]
				if err := tx.Model(c).UpdateColumn("search_text", c.SearchKey()).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}
