package usecases

import (
	"context"
	"strings"
	"time"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ReviewUsecase handles barbershop ratings
type ReviewUsecase struct {
	reviewRepo   repositories.ReviewRepository
	merchantRepo repositories.MerchantRepository
	bookingRepo  repositories.BookingRepository
}

// NewReviewUsecase creates a new review usecase
func NewReviewUsecase(
	reviewRepo repositories.ReviewRepository,
	merchantRepo repositories.MerchantRepository,
	bookingRepo repositories.BookingRepository,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo:   reviewRepo,
		merchantRepo: merchantRepo,
		bookingRepo:  bookingRepo,
	}
}

// CreateReview rates a barbershop, optionally tied to one completed booking
func (u *ReviewUsecase) CreateReview(ctx context.Context, customerID, merchantID uuid.UUID, input *entities.CreateReviewInput) (*entities.Review, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant.OwnerID == customerID {
		return nil, domainerrors.Forbidden("you cannot review your own barbershop")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "rating", "Rating must be between 1 and 5.")
	}

	if input.BookingID != nil {
		booking, err := u.bookingRepo.GetByID(ctx, *input.BookingID)
		if err != nil {
			return nil, err
		}
		if !booking.IsCustomer(customerID) {
			return nil, domainerrors.ErrForbidden
		}
		if booking.MerchantID != merchantID {
			return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "booking_id", "Booking is not at this barbershop.")
		}
		if booking.Status != entities.BookingStatusCompleted {
			return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "booking_id", "Only completed bookings can be reviewed.")
		}
	}

	exists, err := u.reviewRepo.Exists(ctx, customerID, merchantID, input.BookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainerrors.Conflict("you have already reviewed this barbershop")
	}

	review := &entities.Review{
		CustomerID: customerID,
		MerchantID: merchantID,
		BookingID:  input.BookingID,
		Rating:     input.Rating,
		Comment:    strings.TrimSpace(input.Comment),
		IsApproved: true,
	}
	if err := u.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview edits the caller's own review
func (u *ReviewUsecase) UpdateReview(ctx context.Context, customerID, reviewID uuid.UUID, input *entities.UpdateReviewInput) (*entities.Review, error) {
	review, err := u.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.CustomerID != customerID {
		return nil, domainerrors.ErrForbidden
	}

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "rating", "Rating must be between 1 and 5.")
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = strings.TrimSpace(*input.Comment)
	}

	if err := u.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ReplyToReview stores the shop owner's answer
func (u *ReviewUsecase) ReplyToReview(ctx context.Context, ownerID, reviewID uuid.UUID, input *entities.ReplyReviewInput) (*entities.Review, error) {
	review, err := u.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	merchant, err := u.merchantRepo.GetByID(ctx, review.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant.OwnerID != ownerID {
		return nil, domainerrors.ErrForbidden
	}

	review.Reply = null.StringFrom(strings.TrimSpace(input.Reply))
	review.RepliedAt = null.TimeFrom(time.Now())
	if err := u.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListMerchantReviews returns a barbershop's approved reviews
func (u *ReviewUsecase) ListMerchantReviews(ctx context.Context, merchantID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Review, utils.PaginationMeta, error) {
	if _, err := u.merchantRepo.GetByID(ctx, merchantID); err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	reviews, total, err := u.reviewRepo.ListByMerchant(ctx, merchantID, true, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return reviews, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}

// ListOwnerReviews returns every review across the owner's barbershops
func (u *ReviewUsecase) ListOwnerReviews(ctx context.Context, ownerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.Review, utils.PaginationMeta, error) {
	reviews, total, err := u.reviewRepo.ListByOwner(ctx, ownerID, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return reviews, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}
