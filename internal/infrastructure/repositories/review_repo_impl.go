package repositories

import (
	"context"
	"math"
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

// reviewRepo implements repositories.ReviewRepository
type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) repositories.ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *entities.Review) error {
	if review.ID == uuid.Nil {
		review.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	review.CreatedAt, review.UpdatedAt = now, now

	err := GetDB(ctx, r.db).Omit("Customer").Create(&models.Review{
		ID:         review.ID,
		CustomerID: review.CustomerID,
		MerchantID: review.MerchantID,
		BookingID:  review.BookingID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		IsApproved: review.IsApproved,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}).Error
	if isUniqueViolation(err) {
		return domainerrors.ErrAlreadyExists
	}
	return err
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Review, error) {
	var m models.Review
	if err := r.withCustomer(GetDB(ctx, r.db)).Where("reviews.id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrNotFound)
	}
	return r.toEntity(&m), nil
}

func (r *reviewRepo) Update(ctx context.Context, review *entities.Review) error {
	review.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.Review{}).Where("id = ?", review.ID).Updates(map[string]interface{}{
		"rating":      review.Rating,
		"comment":     review.Comment,
		"is_approved": review.IsApproved,
		"reply":       review.Reply.Ptr(),
		"replied_at":  review.RepliedAt.Ptr(),
		"updated_at":  review.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Exists checks the one-review-per-(customer, merchant, booking) rule
func (r *reviewRepo) Exists(ctx context.Context, customerID, merchantID uuid.UUID, bookingID *uuid.UUID) (bool, error) {
	query := GetDB(ctx, r.db).Model(&models.Review{}).Where("customer_id = ? AND merchant_id = ?", customerID, merchantID)
	if bookingID == nil {
		query = query.Where("booking_id IS NULL")
	} else {
		query = query.Where("booking_id = ?", *bookingID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *reviewRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, approvedOnly bool, limit, offset int) ([]*entities.Review, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Review{}).Where("reviews.merchant_id = ?", merchantID)
	if approvedOnly {
		query = query.Where("reviews.is_approved = ?", true)
	}
	return r.page(query, limit, offset)
}

// ListByOwner returns reviews across every shop of one owner
func (r *reviewRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entities.Review, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Review{}).
		Joins("JOIN merchants ON merchants.id = reviews.merchant_id").
		Where("merchants.owner_id = ?", ownerID)
	return r.page(query, limit, offset)
}

// Summary averages approved ratings, rounded to one decimal
func (r *reviewRepo) Summary(ctx context.Context, merchantID uuid.UUID) (entities.RatingSummary, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := GetDB(ctx, r.db).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("merchant_id = ? AND is_approved = ?", merchantID, true).
		Scan(&row).Error
	if err != nil {
		return entities.RatingSummary{}, err
	}
	return entities.RatingSummary{
		Average: math.Round(row.Average*10) / 10,
		Total:   row.Total,
	}, nil
}

func (r *reviewRepo) page(query *gorm.DB, limit, offset int) ([]*entities.Review, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.withCustomer(query).Order("reviews.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var ms []models.Review
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Review, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, total, nil
}

func (r *reviewRepo) withCustomer(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer", func(tx *gorm.DB) *gorm.DB {
		return tx.Unscoped()
	})
}

func (r *reviewRepo) toEntity(m *models.Review) *entities.Review {
	name := m.Customer.FullName
	if name == "" {
		name = m.Customer.Username
	}
	return &entities.Review{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		CustomerName: name,
		MerchantID:   m.MerchantID,
		BookingID:    m.BookingID,
		Rating:       m.Rating,
		Comment:      m.Comment,
		IsApproved:   m.IsApproved,
		Reply:        null.StringFromPtr(m.Reply),
		RepliedAt:    null.TimeFromPtr(m.RepliedAt),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
