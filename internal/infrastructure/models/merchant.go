package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Merchant struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_merchants_owner_name"`
	Name               string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_merchants_owner_name"`
	Slug               string    `gorm:"type:varchar(120);uniqueIndex;not null"`
	Description        string    `gorm:"type:text"`
	Address            string    `gorm:"type:varchar(255)"`
	Latitude           *float64  `gorm:"type:decimal(9,6)"`
	Longitude          *float64  `gorm:"type:decimal(9,6)"`
	PhoneNumber        string    `gorm:"type:varchar(20)"`
	Email              *string   `gorm:"type:varchar(255)"`
	IsActive           bool      `gorm:"not null;index"`
	IsVerified         bool      `gorm:"not null"`
	BookingAdvanceDays int       `gorm:"not null"`
	CurrentTurnNumber  int       `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}
