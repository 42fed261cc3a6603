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

// bookingHistoryRepo implements repositories.BookingHistoryRepository
type bookingHistoryRepo struct {
	db *gorm.DB
}

// NewBookingHistoryRepository creates a new booking history repository
func NewBookingHistoryRepository(db *gorm.DB) repositories.BookingHistoryRepository {
	return &bookingHistoryRepo{db: db}
}

func (r *bookingHistoryRepo) Create(ctx context.Context, h *entities.BookingHistory) error {
	if h.ID == uuid.Nil {
		h.ID = utils.GenerateUUIDv7()
	}
	h.CreatedAt = time.Now()
	return GetDB(ctx, r.db).Create(&models.BookingHistory{
		ID:        h.ID,
		BookingID: h.BookingID,
		OldStatus: string(h.OldStatus),
		NewStatus: string(h.NewStatus),
		ChangedBy: h.ChangedBy,
		Notes:     h.Notes,
		CreatedAt: h.CreatedAt,
	}).Error
}

// ListByBooking returns the transitions oldest first
func (r *bookingHistoryRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entities.BookingHistory, error) {
	var ms []models.BookingHistory
	if err := GetDB(ctx, r.db).Where("booking_id = ?", bookingID).Order("created_at ASC, id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.BookingHistory, 0, len(ms))
	for _, m := range ms {
		out = append(out, &entities.BookingHistory{
			ID:        m.ID,
			BookingID: m.BookingID,
			OldStatus: entities.BookingStatus(m.OldStatus),
			NewStatus: entities.BookingStatus(m.NewStatus),
			ChangedBy: m.ChangedBy,
			Notes:     m.Notes,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
