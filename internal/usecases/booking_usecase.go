package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"barberq.backend/internal/config"
	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/pkg/logger"
	"barberq.backend/pkg/metrics"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

const (
	minGuestNameLength  = 2
	minGuestPhoneLength = 10
	queueRetryBackoff   = 10 * time.Millisecond
)

// BookingUsecase admits new bookings and serves booking queries
type BookingUsecase struct {
	uow          repositories.UnitOfWork
	merchantRepo repositories.MerchantRepository
	serviceRepo  repositories.ServiceRepository
	bookingRepo  repositories.BookingRepository
	historyRepo  repositories.BookingHistoryRepository
	notifier     BookingNotifier
	metrics      *metrics.Metrics
	policy       config.BookingConfig
}

// NewBookingUsecase creates a new booking usecase
func NewBookingUsecase(
	uow repositories.UnitOfWork,
	merchantRepo repositories.MerchantRepository,
	serviceRepo repositories.ServiceRepository,
	bookingRepo repositories.BookingRepository,
	historyRepo repositories.BookingHistoryRepository,
	notifier BookingNotifier,
	m *metrics.Metrics,
	policy config.BookingConfig,
) *BookingUsecase {
	return &BookingUsecase{
		uow:          uow,
		merchantRepo: merchantRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
		historyRepo:  historyRepo,
		notifier:     notifier,
		metrics:      m,
		policy:       policy,
	}
}

// CreateBooking validates and stores a booking for an account holder
// (customerID set) or a guest. Checks run in a fixed order and the first
// failing one rejects the request.
func (u *BookingUsecase) CreateBooking(ctx context.Context, merchantID uuid.UUID, customerID *uuid.UUID, input *entities.CreateBookingInput) (*entities.BookingView, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsActive {
		return nil, domainerrors.ErrMerchantNotActive
	}

	services, err := u.resolveServices(ctx, merchant.ID, input.ServiceIDs)
	if err != nil {
		return nil, err
	}

	booking := &entities.Booking{
		MerchantID: merchant.ID,
		CustomerID: customerID,
		Status:     entities.BookingStatusPending,
		Notes:      strings.TrimSpace(input.Notes),
	}
	if customerID == nil {
		if err := applyGuestIdentity(booking, input); err != nil {
			return nil, err
		}
	}

	day, err := u.checkBookingDay(merchant, input.BookingDay)
	if err != nil {
		return nil, err
	}
	booking.BookingDay = day

	var cents int64
	for _, s := range services {
		cents += int64(math.Round(s.Price * 100))
		booking.Services = append(booking.Services, &entities.BookingService{
			ServiceID:      s.ID,
			ServiceName:    s.Name,
			Quantity:       1,
			PriceAtBooking: s.Price,
		})
	}
	booking.TotalPrice = float64(cents) / 100

	if err := u.admit(ctx, booking); err != nil {
		return nil, err
	}

	u.metrics.BookingCreated()
	logger.Info(ctx, "Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("merchant_id", merchant.ID.String()),
		zap.Int("queue_number", booking.QueueNumber),
	)
	u.notifier.NotifyBooking(ctx, entities.NotificationNewBooking, booking)
	return entities.NewBookingView(booking, merchant.Name), nil
}

// admit runs the cap check, queue allocation and insert in one serializable
// transaction, retrying when another admission wins the race
func (u *BookingUsecase) admit(ctx context.Context, booking *entities.Booking) error {
	attempts := u.policy.QueueRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		booking.ID = uuid.Nil
		err = u.uow.DoSerializable(ctx, func(txCtx context.Context) error {
			if err := u.checkDailyLimit(txCtx, booking); err != nil {
				return err
			}
			number, err := u.bookingRepo.NextQueueNumber(txCtx, booking.MerchantID, booking.BookingDay)
			if err != nil {
				return err
			}
			booking.QueueNumber = number
			return u.bookingRepo.Create(txCtx, booking)
		})
		if !errors.Is(err, domainerrors.ErrQueueConflict) || attempt == attempts {
			return err
		}

		u.metrics.QueueRetry()
		logger.Debug(ctx, "Queue number conflict, retrying", zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * queueRetryBackoff):
		}
	}
	return err
}

func (u *BookingUsecase) checkDailyLimit(ctx context.Context, booking *entities.Booking) error {
	var count int64
	var err error
	if booking.CustomerID != nil {
		count, err = u.bookingRepo.CountActiveByCustomer(ctx, booking.MerchantID, booking.BookingDay, *booking.CustomerID)
	} else {
		count, err = u.bookingRepo.CountActiveByPhone(ctx, booking.MerchantID, booking.BookingDay, booking.CustomerPhone.String)
	}
	if err != nil {
		return err
	}
	if count >= entities.DailyBookingLimit {
		return domainerrors.NewValidationError(domainerrors.ErrDailyLimitReached, "booking_day",
			fmt.Sprintf("You can only make %d bookings per day at this barbershop.", entities.DailyBookingLimit))
	}
	return nil
}

// resolveServices dedupes the requested IDs and rejects the request unless
// every one is an active service of the barbershop
func (u *BookingUsecase) resolveServices(ctx context.Context, merchantID uuid.UUID, ids []uuid.UUID) ([]*entities.Service, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, domainerrors.NewValidationError(domainerrors.ErrNoServicesSelected, "service_ids", "Please select at least one service.")
	}

	found, err := u.serviceRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entities.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	services := make([]*entities.Service, 0, len(unique))
	for _, id := range unique {
		s, ok := byID[id]
		if !ok {
			return nil, domainerrors.NewValidationError(domainerrors.ErrServiceNotInMerchant, "service_ids",
				fmt.Sprintf("Service %s is not offered by this barbershop.", id))
		}
		if s.MerchantID != merchantID || !s.IsActive {
			return nil, domainerrors.NewValidationError(domainerrors.ErrServiceNotInMerchant, "service_ids",
				fmt.Sprintf("Service %q is not offered by this barbershop.", s.Name))
		}
		services = append(services, s)
	}
	return services, nil
}

func applyGuestIdentity(booking *entities.Booking, input *entities.CreateBookingInput) error {
	name := strings.TrimSpace(input.CustomerName)
	phone := strings.TrimSpace(input.CustomerPhone)

	fields := map[string]string{}
	if utf8.RuneCountInString(name) < minGuestNameLength {
		fields["customer_name"] = "Please enter your name (at least 2 characters)."
	}
	if len(phone) < minGuestPhoneLength {
		fields["customer_phone"] = "Please enter a valid phone number (at least 10 digits)."
	}
	if len(fields) > 0 {
		return &domainerrors.ValidationError{Err: domainerrors.ErrGuestIdentityIncomplete, Fields: fields}
	}

	booking.CustomerName = null.StringFrom(name)
	booking.CustomerPhone = null.StringFrom(phone)
	if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		booking.CustomerEmail = null.StringFrom(email)
	}
	return nil
}

func (u *BookingUsecase) checkBookingDay(merchant *entities.Merchant, raw string) (time.Time, error) {
	day, err := time.Parse(entities.BookingDayLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "booking_day", "Booking day must be a date (YYYY-MM-DD).")
	}

	now := today(u.policy.Location())
	if day.Before(now) {
		return time.Time{}, domainerrors.NewValidationError(domainerrors.ErrPastBookingDay, "booking_day", "You cannot book a day in the past.")
	}
	if merchant.BookingAdvanceDays > 0 && day.After(now.AddDate(0, 0, merchant.BookingAdvanceDays)) {
		return time.Time{}, domainerrors.NewValidationError(domainerrors.ErrBookingTooFarAhead, "booking_day",
			fmt.Sprintf("Bookings open at most %d days ahead.", merchant.BookingAdvanceDays))
	}
	return day, nil
}

// GetBooking returns a booking to its customer or to the shop owner
func (u *BookingUsecase) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*entities.BookingView, error) {
	booking, merchant, err := u.visibleBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingView(booking, merchant.Name), nil
}

// GetHistory returns the transition log of a booking, oldest first
func (u *BookingUsecase) GetHistory(ctx context.Context, bookingID, userID uuid.UUID) ([]*entities.BookingHistory, error) {
	if _, _, err := u.visibleBooking(ctx, bookingID, userID); err != nil {
		return nil, err
	}
	return u.historyRepo.ListByBooking(ctx, bookingID)
}

// ListCustomerBookings returns the customer's bookings, newest day first
func (u *BookingUsecase) ListCustomerBookings(ctx context.Context, customerID uuid.UUID, pagination utils.PaginationParams) ([]*entities.BookingView, utils.PaginationMeta, error) {
	bookings, total, err := u.bookingRepo.ListByCustomer(ctx, customerID, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	names := map[uuid.UUID]string{}
	views := make([]*entities.BookingView, 0, len(bookings))
	for _, b := range bookings {
		name, ok := names[b.MerchantID]
		if !ok {
			if m, err := u.merchantRepo.GetByID(ctx, b.MerchantID); err == nil {
				name = m.Name
			}
			names[b.MerchantID] = name
		}
		views = append(views, entities.NewBookingView(b, name))
	}
	return views, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}

// ListMerchantBookings returns a barbershop's bookings to its owner
func (u *BookingUsecase) ListMerchantBookings(ctx context.Context, ownerID, merchantID uuid.UUID, filter entities.BookingFilter, pagination utils.PaginationParams) ([]*entities.BookingView, utils.PaginationMeta, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	if merchant.OwnerID != ownerID {
		return nil, utils.PaginationMeta{}, domainerrors.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationMeta{}, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "status", "Unknown booking status.")
	}

	bookings, total, err := u.bookingRepo.ListByMerchant(ctx, merchantID, filter, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	views := make([]*entities.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, entities.NewBookingView(b, merchant.Name))
	}
	return views, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}

func (u *BookingUsecase) visibleBooking(ctx context.Context, bookingID, userID uuid.UUID) (*entities.Booking, *entities.Merchant, error) {
	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	merchant, err := u.merchantRepo.GetByID(ctx, booking.MerchantID)
	if err != nil {
		return nil, nil, err
	}
	if !booking.IsCustomer(userID) && merchant.OwnerID != userID {
		return nil, nil, domainerrors.ErrForbidden
	}
	return booking, merchant, nil
}
