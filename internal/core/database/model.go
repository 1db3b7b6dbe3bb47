package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every entity. The id is always generated on insert.
type Base struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate overwrites any caller-supplied id.
func (b *Base) BeforeCreate(*gorm.DB) error {
	b.ID = uuid.New()
	return nil
}
