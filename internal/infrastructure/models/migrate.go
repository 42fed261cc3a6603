package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Merchant{},
		&Service{},
		&Booking{},
		&BookingService{},
		&BookingQueueCounter{},
		&BookingHistory{},
		&BookingMessage{},
		&Notification{},
		&Review{},
	}
}

// AutoMigrate creates or updates the schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
