package repositories

import (
	"context"
	"time"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/internal/infrastructure/models"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notificationRepo implements repositories.NotificationRepository
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) repositories.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *entities.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = utils.GenerateUUIDv7()
	}
	n.CreatedAt = time.Now()
	return GetDB(ctx, r.db).Create(&models.Notification{
		ID:               n.ID,
		RecipientID:      n.RecipientID,
		SenderID:         n.SenderID,
		NotificationType: string(n.NotificationType),
		Title:            n.Title,
		Message:          n.Message,
		BookingID:        n.BookingID,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt,
	}).Error
}

// ListByRecipient returns the inbox newest first
func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*entities.Notification, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var ms []models.Notification
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Notification, 0, len(ms))
	for _, m := range ms {
		out = append(out, &entities.Notification{
			ID:               m.ID,
			RecipientID:      m.RecipientID,
			SenderID:         m.SenderID,
			NotificationType: entities.NotificationType(m.NotificationType),
			Title:            m.Title,
			Message:          m.Message,
			BookingID:        m.BookingID,
			IsRead:           m.IsRead,
			CreatedAt:        m.CreatedAt,
		})
	}
	return out, total, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags one notification; someone else's id reads as not found
func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	var m models.Notification
	if err := GetDB(ctx, r.db).Where("id = ? AND recipient_id = ?", id, recipientID).First(&m).Error; err != nil {
		return notFound(err, domainerrors.ErrNotFound)
	}
	if m.IsRead {
		return nil
	}
	return GetDB(ctx, r.db).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// MarkBookingRead flags the recipient's notifications of one type for a booking
func (r *notificationRepo) MarkBookingRead(ctx context.Context, recipientID, bookingID uuid.UUID, notificationType entities.NotificationType) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("recipient_id = ? AND booking_id = ? AND notification_type = ? AND is_read = ?", recipientID, bookingID, string(notificationType), false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
