package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Description     string    `gorm:"type:text"`
	Category        string    `gorm:"type:varchar(20);not null"`
	Price           float64   `gorm:"type:decimal(8,2);not null"`
	DurationMinutes int       `gorm:"not null"`
	IsActive        bool      `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
