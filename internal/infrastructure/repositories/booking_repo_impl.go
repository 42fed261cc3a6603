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
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// nextQueueNumberSQL bumps the per-day counter, seeding a missing row from the
// bookings already stored for that day.
const nextQueueNumberSQL = `INSERT INTO booking_queue_counters (merchant_id, booking_day, last_number)
VALUES (?, ?, (SELECT COALESCE(MAX(queue_number), 0) + 1 FROM bookings WHERE merchant_id = ? AND booking_day = ?))
ON CONFLICT (merchant_id, booking_day) DO UPDATE SET last_number = booking_queue_counters.last_number + 1
RETURNING last_number`

var activeStatuses = []string{
	string(entities.BookingStatusPending),
	string(entities.BookingStatusConfirmed),
	string(entities.BookingStatusCompleted),
	string(entities.BookingStatusNoShow),
}

// bookingRepo implements repositories.BookingRepository
type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) repositories.BookingRepository {
	return &bookingRepo{db: db}
}

// Create inserts the booking and its service snapshots in one statement batch
func (r *bookingRepo) Create(ctx context.Context, booking *entities.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	for _, s := range booking.Services {
		if s.ID == uuid.Nil {
			s.ID = utils.GenerateUUIDv7()
		}
		s.BookingID = booking.ID
	}

	if err := GetDB(ctx, r.db).Create(r.toModel(booking)).Error; err != nil {
		if isRetryable(err) {
			return domainerrors.ErrQueueConflict
		}
		return err
	}
	return nil
}

// GetByID gets a booking with its services
func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error) {
	var m models.Booking
	if err := GetDB(ctx, r.db).Preload("Services").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrNotFound)
	}
	return r.toEntity(&m), nil
}

// Delete removes the booking and its service rows while the booking still
// holds status. It must run inside a transaction.
func (r *bookingRepo) Delete(ctx context.Context, id uuid.UUID, status entities.BookingStatus) (bool, error) {
	db := GetDB(ctx, r.db)
	result := db.Where("id = ? AND status = ?", id, string(status)).Delete(&models.Booking{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := db.Where("booking_id = ?", id).Delete(&models.BookingService{}).Error; err != nil {
		return false, err
	}
	return true, nil
}

// CountActiveByCustomer counts the customer's non-cancelled bookings that day
func (r *bookingRepo) CountActiveByCustomer(ctx context.Context, merchantID uuid.UUID, day time.Time, customerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Booking{}).
		Where("merchant_id = ? AND booking_day = ? AND customer_id = ?", merchantID, day, customerID).
		Where("status IN ?", activeStatuses).
		Count(&count).Error
	return count, err
}

// CountActiveByPhone counts guest and account bookings made with that phone
func (r *bookingRepo) CountActiveByPhone(ctx context.Context, merchantID uuid.UUID, day time.Time, phone string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Booking{}).
		Where("merchant_id = ? AND booking_day = ? AND customer_phone = ?", merchantID, day, phone).
		Where("status IN ?", activeStatuses).
		Count(&count).Error
	return count, err
}

// CountByStatuses counts the day's bookings in any of the given states
func (r *bookingRepo) CountByStatuses(ctx context.Context, merchantID uuid.UUID, day time.Time, statuses ...entities.BookingStatus) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Booking{}).
		Where("merchant_id = ? AND booking_day = ?", merchantID, day).
		Where("status IN ?", statusStrings(statuses)).
		Count(&count).Error
	return count, err
}

// NextQueueNumber allocates the next number from the counter row. It must run
// inside the admission transaction.
func (r *bookingRepo) NextQueueNumber(ctx context.Context, merchantID uuid.UUID, day time.Time) (int, error) {
	var next int
	err := GetDB(ctx, r.db).Raw(nextQueueNumberSQL, merchantID, day, merchantID, day).Scan(&next).Error
	if err != nil {
		if isRetryable(err) {
			return 0, domainerrors.ErrQueueConflict
		}
		return 0, err
	}
	return next, nil
}

// TransitionStatus is a guarded UPDATE; concurrent callers race on the WHERE
func (r *bookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.BookingStatus, to entities.BookingStatus) (bool, error) {
	query := GetDB(ctx, r.db).Model(&models.Booking{}).Where("id = ?", id)
	if len(from) > 0 {
		query = query.Where("status IN ?", statusStrings(from))
	} else {
		query = query.Where("status <> ?", string(to))
	}

	result := query.Updates(map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByCustomer returns the customer's bookings, newest day first
func (r *bookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entities.Booking, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Booking{}).Where("customer_id = ?", customerID)
	return r.page(query, limit, offset)
}

// ListByMerchant returns a barbershop's bookings, optionally filtered
func (r *bookingRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, filter entities.BookingFilter, limit, offset int) ([]*entities.Booking, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Booking{}).Where("merchant_id = ?", merchantID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Day != nil {
		query = query.Where("booking_day = ?", *filter.Day)
	}
	return r.page(query, limit, offset)
}

// ListWaitingCustomers returns account bookings still pending or confirmed
func (r *bookingRepo) ListWaitingCustomers(ctx context.Context, merchantID uuid.UUID, day time.Time, exclude uuid.UUID) ([]*entities.Booking, error) {
	var ms []models.Booking
	err := GetDB(ctx, r.db).
		Where("merchant_id = ? AND booking_day = ? AND id <> ?", merchantID, day, exclude).
		Where("customer_id IS NOT NULL").
		Where("status IN ?", []string{string(entities.BookingStatusPending), string(entities.BookingStatusConfirmed)}).
		Order("queue_number ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *bookingRepo) page(query *gorm.DB, limit, offset int) ([]*entities.Booking, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Services").Order("booking_day DESC, queue_number ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var ms []models.Booking
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return r.toEntities(ms), total, nil
}

func statusStrings(statuses []entities.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// normalizeDay drops whatever time and zone the driver attached to a DATE
func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *bookingRepo) toModel(b *entities.Booking) *models.Booking {
	m := &models.Booking{
		ID:            b.ID,
		MerchantID:    b.MerchantID,
		CustomerID:    b.CustomerID,
		CustomerName:  b.CustomerName.Ptr(),
		CustomerPhone: b.CustomerPhone.Ptr(),
		CustomerEmail: b.CustomerEmail.Ptr(),
		BookingDay:    normalizeDay(b.BookingDay),
		QueueNumber:   b.QueueNumber,
		Status:        string(b.Status),
		Notes:         b.Notes,
		TotalPrice:    b.TotalPrice,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, s := range b.Services {
		m.Services = append(m.Services, models.BookingService{
			ID:             s.ID,
			BookingID:      b.ID,
			ServiceID:      s.ServiceID,
			ServiceName:    s.ServiceName,
			Quantity:       s.Quantity,
			PriceAtBooking: s.PriceAtBooking,
		})
	}
	return m
}

func (r *bookingRepo) toEntity(m *models.Booking) *entities.Booking {
	b := &entities.Booking{
		ID:            m.ID,
		MerchantID:    m.MerchantID,
		CustomerID:    m.CustomerID,
		CustomerName:  null.StringFromPtr(m.CustomerName),
		CustomerPhone: null.StringFromPtr(m.CustomerPhone),
		CustomerEmail: null.StringFromPtr(m.CustomerEmail),
		BookingDay:    normalizeDay(m.BookingDay),
		QueueNumber:   m.QueueNumber,
		Status:        entities.BookingStatus(m.Status),
		Notes:         m.Notes,
		TotalPrice:    m.TotalPrice,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for _, s := range m.Services {
		b.Services = append(b.Services, &entities.BookingService{
			ID:             s.ID,
			BookingID:      s.BookingID,
			ServiceID:      s.ServiceID,
			ServiceName:    s.ServiceName,
			Quantity:       s.Quantity,
			PriceAtBooking: s.PriceAtBooking,
		})
	}
	return b
}

func (r *bookingRepo) toEntities(ms []models.Booking) []*entities.Booking {
	out := make([]*entities.Booking, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out
}
