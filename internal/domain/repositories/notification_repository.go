package repositories

import (
	"context"

	"barberq.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// NotificationRepository defines inbox operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *entities.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*entities.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkBookingRead(ctx context.Context, recipientID, bookingID uuid.UUID, notificationType entities.NotificationType) (int64, error)
}

// ReviewRepository defines review operations
type ReviewRepository interface {
	Create(ctx context.Context, review *entities.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Review, error)
	Update(ctx context.Context, review *entities.Review) error
	Exists(ctx context.Context, customerID, merchantID uuid.UUID, bookingID *uuid.UUID) (bool, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, approvedOnly bool, limit, offset int) ([]*entities.Review, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entities.Review, int64, error)
	Summary(ctx context.Context, merchantID uuid.UUID) (entities.RatingSummary, error)
}
