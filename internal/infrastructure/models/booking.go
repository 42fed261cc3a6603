package models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MerchantID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_queue,priority:1"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  *string    `gorm:"type:varchar(100)"`
	CustomerPhone *string    `gorm:"type:varchar(20);index"`
	CustomerEmail *string    `gorm:"type:varchar(255)"`
	BookingDay    time.Time  `gorm:"type:date;not null;uniqueIndex:idx_bookings_queue,priority:2"`
	QueueNumber   int        `gorm:"not null;uniqueIndex:idx_bookings_queue,priority:3"`
	Status        string     `gorm:"type:varchar(20);not null;index"`
	Notes         string     `gorm:"type:text"`
	TotalPrice    float64    `gorm:"type:decimal(8,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Services []BookingService `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

type BookingService struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_booking_services_pair"`
	ServiceID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_booking_services_pair"`
	ServiceName    string    `gorm:"type:varchar(100);not null"`
	Quantity       int       `gorm:"not null"`
	PriceAtBooking float64   `gorm:"type:decimal(8,2);not null"`
}

// BookingQueueCounter holds the last queue number handed out per barbershop and day
type BookingQueueCounter struct {
	MerchantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingDay time.Time `gorm:"type:date;primaryKey"`
	LastNumber int       `gorm:"not null"`
}

// BookingHistory rows outlive their booking, so there is no foreign key
type BookingHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OldStatus string     `gorm:"type:varchar(20);not null"`
	NewStatus string     `gorm:"type:varchar(20);not null"`
	ChangedBy *uuid.UUID `gorm:"type:uuid"`
	Notes     string     `gorm:"type:text"`
	CreatedAt time.Time
}

func (BookingHistory) TableName() string {
	return "booking_histories"
}

type BookingMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null"`
	CreatedAt time.Time

	Sender User `gorm:"foreignKey:SenderID"`
}
