package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schemadesigner/internal/models"
)

// HistoryRepository persists generated scripts so past generations can be
// audited after sessions are gone.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Create(record *models.GenerationRecord) error {
	return r.db.Create(record).Error
}

func (r *HistoryRepository) GetBySessionID(sessionID uuid.UUID, limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.GenerationRecord
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
