package repositories

import (
	"context"
	"time"

	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/internal/infrastructure/models"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bookingMessageRepo implements repositories.BookingMessageRepository
type bookingMessageRepo struct {
	db *gorm.DB
}

// NewBookingMessageRepository creates a new chat message repository
func NewBookingMessageRepository(db *gorm.DB) repositories.BookingMessageRepository {
	return &bookingMessageRepo{db: db}
}

func (r *bookingMessageRepo) Create(ctx context.Context, msg *entities.BookingMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = utils.GenerateUUIDv7()
	}
	msg.CreatedAt = time.Now()
	return GetDB(ctx, r.db).Omit("Sender").Create(&models.BookingMessage{
		ID:        msg.ID,
		BookingID: msg.BookingID,
		SenderID:  msg.SenderID,
		Message:   msg.Message,
		IsRead:    msg.IsRead,
		CreatedAt: msg.CreatedAt,
	}).Error
}

// ListByBooking returns the thread oldest first with sender names resolved
func (r *bookingMessageRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entities.BookingMessage, error) {
	var ms []models.BookingMessage
	err := GetDB(ctx, r.db).Preload("Sender", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	}).Where("booking_id = ?", bookingID).Order("created_at ASC, id ASC").Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entities.BookingMessage, 0, len(ms))
	for _, m := range ms {
		name := m.Sender.FullName
		if name == "" {
			name = m.Sender.Username
		}
		out = append(out, &entities.BookingMessage{
			ID:         m.ID,
			BookingID:  m.BookingID,
			SenderID:   m.SenderID,
			SenderName: name,
			Message:    m.Message,
			IsRead:     m.IsRead,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}

// MarkReadFor flags the other party's unread messages as read
func (r *bookingMessageRepo) MarkReadFor(ctx context.Context, bookingID, readerID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.BookingMessage{}).
		Where("booking_id = ? AND sender_id <> ? AND is_read = ?", bookingID, readerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
