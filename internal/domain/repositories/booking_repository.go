package repositories

import (
	"context"
	"time"

	"barberq.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// BookingRepository defines booking data operations
type BookingRepository interface {
	// Create inserts the booking and its service snapshots
	Create(ctx context.Context, booking *entities.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error)
	// Delete removes the booking while it still holds status and reports
	// whether a row went away
	Delete(ctx context.Context, id uuid.UUID, status entities.BookingStatus) (bool, error)

	CountActiveByCustomer(ctx context.Context, merchantID uuid.UUID, day time.Time, customerID uuid.UUID) (int64, error)
	CountActiveByPhone(ctx context.Context, merchantID uuid.UUID, day time.Time, phone string) (int64, error)
	CountByStatuses(ctx context.Context, merchantID uuid.UUID, day time.Time, statuses ...entities.BookingStatus) (int64, error)
	// NextQueueNumber atomically allocates the next queue number for the day
	NextQueueNumber(ctx context.Context, merchantID uuid.UUID, day time.Time) (int, error)

	// TransitionStatus moves the booking to `to` only while its status is one
	// of `from`, or differs from `to` when `from` is empty. It reports whether
	// a row changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.BookingStatus, to entities.BookingStatus) (bool, error)

	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entities.Booking, int64, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, filter entities.BookingFilter, limit, offset int) ([]*entities.Booking, int64, error)
	// ListWaitingCustomers returns account holders still queued at the
	// barbershop that day, excluding one booking.
	ListWaitingCustomers(ctx context.Context, merchantID uuid.UUID, day time.Time, exclude uuid.UUID) ([]*entities.Booking, error)
}

// BookingHistoryRepository is the append-only transition log
type BookingHistoryRepository interface {
	Create(ctx context.Context, history *entities.BookingHistory) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entities.BookingHistory, error)
}

// BookingMessageRepository defines chat message operations
type BookingMessageRepository interface {
	Create(ctx context.Context, message *entities.BookingMessage) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entities.BookingMessage, error)
	// MarkReadFor flags every message of the booking not sent by readerID as read
	MarkReadFor(ctx context.Context, bookingID, readerID uuid.UUID) (int64, error)
}
