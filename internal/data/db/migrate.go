package db

import (
	"fmt"

	types "github.com/cathealth/cathealth-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

func EnsurePlanIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	// Plan lookup by owner, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_wellness_plans_user_updated
		ON wellness_plans (user_id, updated_at DESC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_wellness_plans_user_updated: %w", err)
	}
	// Call log triage by kind and recency.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_ai_call_logs_kind_created
		ON ai_call_logs (kind, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_ai_call_logs_kind_created: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsurePlanIndexes(s.db); err != nil {
		s.log.Error("Plan index migration failed", "error", err)
		return err
	}
	return nil
}
