package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RecipientID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient"`
	SenderID         *uuid.UUID `gorm:"type:uuid"`
	NotificationType string     `gorm:"type:varchar(30);not null"`
	Title            string     `gorm:"type:varchar(200);not null"`
	Message          string     `gorm:"type:text;not null"`
	BookingID        *uuid.UUID `gorm:"type:uuid;index"`
	IsRead           bool       `gorm:"not null;index:idx_notifications_recipient"`
	CreatedAt        time.Time
}
