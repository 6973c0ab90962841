package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerationRecord maps to the generation_history table. One row is appended
// every time a script is generated for a session.
type GenerationRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID         uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Draft             string    `gorm:"type:text" json:"draft"`
	Dialect           string    `gorm:"type:text;not null" json:"dialect"`
	Script            string    `gorm:"type:text;not null" json:"script"`
	EntityCount       int       `json:"entity_count"`
	RelationshipCount int       `json:"relationship_count"`
	CreatedAt         time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (GenerationRecord) TableName() string {
	return "generation_history"
}

func (r *GenerationRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
