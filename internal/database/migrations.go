package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	migrations := []string{
		createGenerationHistoryTable,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d/%d", i+1, len(migrations))
		if err := db.Exec(migration).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

const createGenerationHistoryTable = `
CREATE TABLE IF NOT EXISTS generation_history (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  session_id UUID NOT NULL,
  draft TEXT,
  dialect TEXT NOT NULL,
  script TEXT NOT NULL,
  entity_count INT,
  relationship_count INT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_generation_history_session_id ON generation_history(session_id);
CREATE INDEX IF NOT EXISTS idx_generation_history_created_at ON generation_history(created_at);
`
