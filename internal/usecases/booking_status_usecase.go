package usecases

import (
	"context"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/pkg/logger"
	"barberq.backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// System chat messages sent by the transition workflow
const (
	ConfirmedChatMessage = "Congratulations! Your booking is confirmed."
	RejectedChatMessage  = "Sorry, your booking was rejected by the shop owner."
)

type actor int

const (
	actorOwner actor = iota
	actorCustomer
)

// transition describes one move of the booking state machine. An empty from
// accepts any status other than to.
type transition struct {
	to    entities.BookingStatus
	from  []entities.BookingStatus
	actor actor
	note  string
}

var (
	confirmTransition = transition{
		to: entities.BookingStatusConfirmed, from: []entities.BookingStatus{entities.BookingStatusPending},
		actor: actorOwner, note: "confirmed by owner",
	}
	rejectTransition = transition{
		to: entities.BookingStatusCancelled, from: []entities.BookingStatus{entities.BookingStatusPending},
		actor: actorOwner, note: "rejected by owner",
	}
	completeTransition = transition{
		to: entities.BookingStatusCompleted, actor: actorOwner, note: "completed",
	}
	noShowTransition = transition{
		to: entities.BookingStatusNoShow, actor: actorOwner, note: "marked as no show",
	}
	cancelTransition = transition{
		to: entities.BookingStatusCancelled, from: []entities.BookingStatus{entities.BookingStatusPending},
		actor: actorCustomer, note: "cancelled by customer",
	}
)

// SystemMessenger posts workflow messages into a booking's chat
type SystemMessenger interface {
	SendSystemMessage(ctx context.Context, booking *entities.Booking, senderID uuid.UUID, text string)
}

// BookingStatusUsecase moves bookings through their lifecycle
type BookingStatusUsecase struct {
	uow          repositories.UnitOfWork
	bookingRepo  repositories.BookingRepository
	historyRepo  repositories.BookingHistoryRepository
	merchantRepo repositories.MerchantRepository
	notifier     BookingNotifier
	messenger    SystemMessenger
	broadcaster  Broadcaster
	metrics      *metrics.Metrics
}

// NewBookingStatusUsecase creates a new booking status usecase
func NewBookingStatusUsecase(
	uow repositories.UnitOfWork,
	bookingRepo repositories.BookingRepository,
	historyRepo repositories.BookingHistoryRepository,
	merchantRepo repositories.MerchantRepository,
	notifier BookingNotifier,
	messenger SystemMessenger,
	broadcaster Broadcaster,
	m *metrics.Metrics,
) *BookingStatusUsecase {
	return &BookingStatusUsecase{
		uow:          uow,
		bookingRepo:  bookingRepo,
		historyRepo:  historyRepo,
		merchantRepo: merchantRepo,
		notifier:     notifier,
		messenger:    messenger,
		broadcaster:  broadcaster,
		metrics:      m,
	}
}

// Confirm accepts a pending booking and makes its number the current turn
func (u *BookingStatusUsecase) Confirm(ctx context.Context, bookingID, ownerID uuid.UUID) (*entities.BookingView, error) {
	booking, merchant, changed, err := u.apply(ctx, bookingID, ownerID, confirmTransition)
	if err != nil || !changed {
		return u.view(booking, merchant), err
	}

	merchant.CurrentTurnNumber = booking.QueueNumber
	u.messenger.SendSystemMessage(ctx, booking, merchant.OwnerID, ConfirmedChatMessage)
	payload := entities.NewTurnUpdatePayload(booking, merchant.CurrentTurnNumber)
	if err := u.broadcaster.Publish(ctx, entities.MerchantTopic(merchant.ID), payload); err != nil {
		logger.Warn(ctx, "Failed to broadcast turn update", zap.String("merchant_id", merchant.ID.String()), zap.Error(err))
	}
	u.notifier.NotifyBooking(ctx, entities.NotificationBookingConfirmed, booking)
	u.notifier.NotifyTurnUpdated(ctx, booking, merchant.CurrentTurnNumber)
	return u.view(booking, merchant), nil
}

// Reject cancels a pending booking on the owner's behalf
func (u *BookingStatusUsecase) Reject(ctx context.Context, bookingID, ownerID uuid.UUID) (*entities.BookingView, error) {
	booking, merchant, changed, err := u.apply(ctx, bookingID, ownerID, rejectTransition)
	if err != nil || !changed {
		return u.view(booking, merchant), err
	}

	u.messenger.SendSystemMessage(ctx, booking, merchant.OwnerID, RejectedChatMessage)
	u.notifier.NotifyBooking(ctx, entities.NotificationBookingCancelled, booking)
	return u.view(booking, merchant), nil
}

// Complete marks a booking as served
func (u *BookingStatusUsecase) Complete(ctx context.Context, bookingID, ownerID uuid.UUID) (*entities.BookingView, error) {
	booking, merchant, changed, err := u.apply(ctx, bookingID, ownerID, completeTransition)
	if err != nil || !changed {
		return u.view(booking, merchant), err
	}

	u.notifier.NotifyBooking(ctx, entities.NotificationBookingCompleted, booking)
	return u.view(booking, merchant), nil
}

// MarkNoShow records that the customer did not turn up
func (u *BookingStatusUsecase) MarkNoShow(ctx context.Context, bookingID, ownerID uuid.UUID) (*entities.BookingView, error) {
	booking, merchant, _, err := u.apply(ctx, bookingID, ownerID, noShowTransition)
	return u.view(booking, merchant), err
}

// Cancel lets the customer withdraw a pending booking
func (u *BookingStatusUsecase) Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*entities.BookingView, error) {
	booking, merchant, changed, err := u.apply(ctx, bookingID, customerID, cancelTransition)
	if err != nil || !changed {
		return u.view(booking, merchant), err
	}

	u.notifier.NotifyBooking(ctx, entities.NotificationBookingCancelled, booking)
	return u.view(booking, merchant), nil
}

// Delete removes the customer's pending booking. The history row recording
// the cancellation outlives the booking.
func (u *BookingStatusUsecase) Delete(ctx context.Context, bookingID, customerID uuid.UUID) error {
	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.IsCustomer(customerID) {
		return domainerrors.ErrForbidden
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.bookingRepo.GetByID(u.uow.WithLock(txCtx), bookingID)
		if err != nil {
			return err
		}
		if current.Status != entities.BookingStatusPending {
			return domainerrors.ErrBookingNotPending
		}
		if err := u.historyRepo.Create(txCtx, &entities.BookingHistory{
			BookingID: bookingID,
			OldStatus: current.Status,
			NewStatus: entities.BookingStatusCancelled,
			ChangedBy: &customerID,
			Notes:     "deleted by customer",
		}); err != nil {
			return err
		}
		deleted, err := u.bookingRepo.Delete(txCtx, bookingID, entities.BookingStatusPending)
		if err != nil {
			return err
		}
		if !deleted {
			return domainerrors.ErrBookingNotPending
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.metrics.BookingTransition("deleted")
	logger.Info(ctx, "Booking deleted by customer", zap.String("booking_id", bookingID.String()))
	return nil
}

// apply authorizes the actor and runs the guarded update plus its history row
// in one transaction. changed is false when the same transition had already
// been applied.
func (u *BookingStatusUsecase) apply(ctx context.Context, bookingID, userID uuid.UUID, t transition) (*entities.Booking, *entities.Merchant, bool, error) {
	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, false, err
	}
	merchant, err := u.merchantRepo.GetByID(ctx, booking.MerchantID)
	if err != nil {
		return nil, nil, false, err
	}

	switch t.actor {
	case actorOwner:
		if merchant.OwnerID != userID {
			return nil, nil, false, domainerrors.ErrForbidden
		}
	case actorCustomer:
		if !booking.IsCustomer(userID) {
			return nil, nil, false, domainerrors.ErrForbidden
		}
	}

	changed := false
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.bookingRepo.GetByID(u.uow.WithLock(txCtx), bookingID)
		if err != nil {
			return err
		}

		ok, err := u.bookingRepo.TransitionStatus(txCtx, bookingID, t.from, t.to)
		if err != nil {
			return err
		}
		if !ok {
			booking = current
			repeated, err := u.repeated(txCtx, current, t)
			if err != nil {
				return err
			}
			if repeated {
				return nil
			}
			return domainerrors.ErrBookingNotPending
		}

		if err := u.historyRepo.Create(txCtx, &entities.BookingHistory{
			BookingID: bookingID,
			OldStatus: current.Status,
			NewStatus: t.to,
			ChangedBy: &userID,
			Notes:     t.note,
		}); err != nil {
			return err
		}
		if t.to == entities.BookingStatusConfirmed {
			if err := u.merchantRepo.SetCurrentTurn(txCtx, merchant.ID, current.QueueNumber); err != nil {
				return err
			}
		}

		booking = current
		booking.Status = t.to
		changed = true
		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}

	if changed {
		u.metrics.BookingTransition(string(t.to))
		logger.Info(ctx, "Booking status changed",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(t.to)),
		)
	}
	return booking, merchant, changed, nil
}

// repeated reports whether the booking reached its status through this same
// transition, which makes a second request for it a no-op
func (u *BookingStatusUsecase) repeated(ctx context.Context, booking *entities.Booking, t transition) (bool, error) {
	if booking.Status != t.to {
		return false, nil
	}
	history, err := u.historyRepo.ListByBooking(ctx, booking.ID)
	if err != nil {
		return false, err
	}
	if len(history) == 0 {
		return false, nil
	}
	last := history[len(history)-1]
	return last.NewStatus == t.to && last.Notes == t.note, nil
}

func (u *BookingStatusUsecase) view(booking *entities.Booking, merchant *entities.Merchant) *entities.BookingView {
	if booking == nil || merchant == nil {
		return nil
	}
	return entities.NewBookingView(booking, merchant.Name)
}
