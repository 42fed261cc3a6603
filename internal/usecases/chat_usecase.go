package usecases

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"barberq.backend/internal/config"
	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatUsecase handles the message thread between a customer and the shop owner
type ChatUsecase struct {
	bookingRepo      repositories.BookingRepository
	merchantRepo     repositories.MerchantRepository
	messageRepo      repositories.BookingMessageRepository
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	broadcaster      Broadcaster
	notifier         BookingNotifier
	loc              *time.Location
}

// NewChatUsecase creates a new chat usecase
func NewChatUsecase(
	bookingRepo repositories.BookingRepository,
	merchantRepo repositories.MerchantRepository,
	messageRepo repositories.BookingMessageRepository,
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	broadcaster Broadcaster,
	notifier BookingNotifier,
	policy config.BookingConfig,
) *ChatUsecase {
	return &ChatUsecase{
		bookingRepo:      bookingRepo,
		merchantRepo:     merchantRepo,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		broadcaster:      broadcaster,
		notifier:         notifier,
		loc:              policy.Location(),
	}
}

// Authorize checks that userID is the booking's customer or the shop owner
func (u *ChatUsecase) Authorize(ctx context.Context, bookingID, userID uuid.UUID) (*entities.Booking, error) {
	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCustomer(userID) {
		return booking, nil
	}
	merchant, err := u.merchantRepo.GetByID(ctx, booking.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant.OwnerID != userID {
		return nil, domainerrors.ErrForbidden
	}
	return booking, nil
}

// SendMessage stores a message, relays it to the booking topic and notifies
// the other party
func (u *ChatUsecase) SendMessage(ctx context.Context, bookingID, senderID uuid.UUID, text string) (*entities.BookingMessage, error) {
	booking, err := u.Authorize(ctx, bookingID, senderID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "message", "Message cannot be empty.")
	}
	if utf8.RuneCountInString(text) > entities.MaxMessageLength {
		return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "message", "Message is too long.")
	}

	sender, err := u.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	message := &entities.BookingMessage{
		BookingID:  booking.ID,
		SenderID:   senderID,
		SenderName: sender.DisplayName(),
		Message:    text,
	}
	if err := u.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	u.relay(ctx, message)
	u.notifier.NotifyMessage(ctx, message, booking)
	return message, nil
}

// SendSystemMessage posts a workflow message on behalf of senderID. Failures
// are logged only.
func (u *ChatUsecase) SendSystemMessage(ctx context.Context, booking *entities.Booking, senderID uuid.UUID, text string) {
	message := &entities.BookingMessage{
		BookingID: booking.ID,
		SenderID:  senderID,
		Message:   text,
	}
	if sender, err := u.userRepo.GetByID(ctx, senderID); err == nil {
		message.SenderName = sender.DisplayName()
	}

	if err := u.messageRepo.Create(ctx, message); err != nil {
		logger.Error(ctx, "Failed to send system message",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
		return
	}
	u.relay(ctx, message)
}

// ListMessages returns the thread and marks what the reader received as read
func (u *ChatUsecase) ListMessages(ctx context.Context, bookingID, readerID uuid.UUID) ([]*entities.BookingMessage, error) {
	booking, err := u.Authorize(ctx, bookingID, readerID)
	if err != nil {
		return nil, err
	}

	if _, err := u.messageRepo.MarkReadFor(ctx, booking.ID, readerID); err != nil {
		return nil, err
	}
	if _, err := u.notificationRepo.MarkBookingRead(ctx, readerID, booking.ID, entities.NotificationNewMessage); err != nil {
		logger.Warn(ctx, "Failed to clear message notifications", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	}

	return u.messageRepo.ListByBooking(ctx, booking.ID)
}

func (u *ChatUsecase) relay(ctx context.Context, message *entities.BookingMessage) {
	payload := entities.NewChatMessagePayload(message, u.loc)
	if err := u.broadcaster.Publish(ctx, entities.ChatTopic(message.BookingID), payload); err != nil {
		logger.Warn(ctx, "Failed to broadcast chat message",
			zap.String("booking_id", message.BookingID.String()),
			zap.Error(err),
		)
	}
}
