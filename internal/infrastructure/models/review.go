package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_unique"`
	MerchantID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_unique"`
	BookingID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reviews_unique"`
	Rating     int        `gorm:"not null"`
	Comment    string     `gorm:"type:text"`
	IsApproved bool       `gorm:"not null"`
	Reply      *string    `gorm:"type:text"`
	RepliedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Customer User `gorm:"foreignKey:CustomerID"`
}
