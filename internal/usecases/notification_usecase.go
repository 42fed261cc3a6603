package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"barberq.backend/internal/config"
	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/pkg/logger"
	"barberq.backend/pkg/metrics"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const emailTimeout = 30 * time.Second

// BookingNotifier records inbox entries for booking and chat events. Its
// methods never fail the caller.
type BookingNotifier interface {
	NotifyBooking(ctx context.Context, notificationType entities.NotificationType, booking *entities.Booking)
	NotifyTurnUpdated(ctx context.Context, booking *entities.Booking, currentTurn int)
	NotifyMessage(ctx context.Context, message *entities.BookingMessage, booking *entities.Booking)
}

// NotificationUsecase dispatches notifications and serves the inbox
type NotificationUsecase struct {
	notificationRepo repositories.NotificationRepository
	merchantRepo     repositories.MerchantRepository
	bookingRepo      repositories.BookingRepository
	userRepo         repositories.UserRepository
	mailer           Mailer
	sms              SMSSender
	metrics          *metrics.Metrics
	previewLength    int

	pending sync.WaitGroup
}

// NewNotificationUsecase creates a notification usecase. mailer and sms may be
// nil to disable those channels.
func NewNotificationUsecase(
	notificationRepo repositories.NotificationRepository,
	merchantRepo repositories.MerchantRepository,
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	mailer Mailer,
	sms SMSSender,
	m *metrics.Metrics,
	policy config.BookingConfig,
) *NotificationUsecase {
	previewLength := policy.ChatPreviewLength
	if previewLength <= 0 {
		previewLength = 100
	}
	return &NotificationUsecase{
		notificationRepo: notificationRepo,
		merchantRepo:     merchantRepo,
		bookingRepo:      bookingRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		sms:              sms,
		metrics:          m,
		previewLength:    previewLength,
	}
}

// NotifyBooking records a booking lifecycle notification. Owner-directed
// types go to the shop owner; the rest go to the customer, or by SMS to a
// guest's phone.
func (u *NotificationUsecase) NotifyBooking(ctx context.Context, notificationType entities.NotificationType, booking *entities.Booking) {
	merchant, err := u.merchantRepo.GetByID(ctx, booking.MerchantID)
	if err != nil {
		u.fail(ctx, "inbox", notificationType, booking.ID, err)
		return
	}

	title, message := bookingTemplate(notificationType, merchant, booking)
	bookingID := booking.ID

	if notificationType.MerchantDirected() {
		u.store(ctx, &entities.Notification{
			RecipientID:      merchant.OwnerID,
			SenderID:         booking.CustomerID,
			NotificationType: notificationType,
			Title:            title,
			Message:          message,
			BookingID:        &bookingID,
		})
		return
	}

	if booking.IsGuest() {
		u.sendSMS(ctx, booking, message)
		return
	}

	ownerID := merchant.OwnerID
	u.store(ctx, &entities.Notification{
		RecipientID:      *booking.CustomerID,
		SenderID:         &ownerID,
		NotificationType: notificationType,
		Title:            title,
		Message:          message,
		BookingID:        &bookingID,
	})
}

// NotifyTurnUpdated tells the other customers still waiting that day which
// turn is now being served
func (u *NotificationUsecase) NotifyTurnUpdated(ctx context.Context, booking *entities.Booking, currentTurn int) {
	merchant, err := u.merchantRepo.GetByID(ctx, booking.MerchantID)
	if err != nil {
		u.fail(ctx, "inbox", entities.NotificationTurnUpdated, booking.ID, err)
		return
	}
	waiting, err := u.bookingRepo.ListWaitingCustomers(ctx, booking.MerchantID, booking.BookingDay, booking.ID)
	if err != nil {
		u.fail(ctx, "inbox", entities.NotificationTurnUpdated, booking.ID, err)
		return
	}

	ownerID := merchant.OwnerID
	seen := make(map[uuid.UUID]bool, len(waiting))
	for _, b := range waiting {
		if b.CustomerID == nil || seen[*b.CustomerID] {
			continue
		}
		seen[*b.CustomerID] = true
		bookingID := b.ID
		u.store(ctx, &entities.Notification{
			RecipientID:      *b.CustomerID,
			SenderID:         &ownerID,
			NotificationType: entities.NotificationTurnUpdated,
			Title:            "Turn updated",
			Message:          fmt.Sprintf("The current turn at %s is now %d", merchant.Name, currentTurn),
			BookingID:        &bookingID,
		})
	}
}

// NotifyMessage notifies whichever party of the booking did not send message
func (u *NotificationUsecase) NotifyMessage(ctx context.Context, message *entities.BookingMessage, booking *entities.Booking) {
	merchant, err := u.merchantRepo.GetByID(ctx, booking.MerchantID)
	if err != nil {
		u.fail(ctx, "inbox", entities.NotificationNewMessage, booking.ID, err)
		return
	}

	var recipientID uuid.UUID
	var title string
	if message.SenderID == merchant.OwnerID {
		if booking.CustomerID == nil {
			return
		}
		recipientID = *booking.CustomerID
		title = "New message from " + merchant.Name
	} else {
		recipientID = merchant.OwnerID
		title = "New message from " + message.SenderName
	}

	senderID := message.SenderID
	bookingID := booking.ID
	u.store(ctx, &entities.Notification{
		RecipientID:      recipientID,
		SenderID:         &senderID,
		NotificationType: entities.NotificationNewMessage,
		Title:            title,
		Message:          fmt.Sprintf("Booking #%d (%s): %s", booking.QueueNumber, booking.Day(), preview(message.Message, u.previewLength)),
		BookingID:        &bookingID,
	})
}

// ListNotifications returns a page of the user's inbox, newest first
func (u *NotificationUsecase) ListNotifications(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) (*entities.NotificationPage, error) {
	items, total, err := u.notificationRepo.ListByRecipient(ctx, userID, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, err
	}
	unread, err := u.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.NotificationPage{
		Items:       items,
		Meta:        utils.CalculateMeta(total, pagination.Page, pagination.Limit),
		UnreadCount: unread,
	}, nil
}

// UnreadCount returns the number of unread notifications
func (u *NotificationUsecase) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return u.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead flags one of the user's notifications as read
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return u.notificationRepo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flags every notification of the user as read
func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return u.notificationRepo.MarkAllRead(ctx, userID)
}

// Wait blocks until queued e-mail copies have been attempted
func (u *NotificationUsecase) Wait() {
	u.pending.Wait()
}

func (u *NotificationUsecase) store(ctx context.Context, n *entities.Notification) {
	if err := u.notificationRepo.Create(ctx, n); err != nil {
		u.fail(ctx, "inbox", n.NotificationType, derefID(n.BookingID), err)
		return
	}
	u.metrics.Notification("inbox", nil)
	u.emailCopy(ctx, n)
}

// emailCopy mails the notification to the recipient in the background
func (u *NotificationUsecase) emailCopy(ctx context.Context, n *entities.Notification) {
	if u.mailer == nil {
		return
	}
	recipient, err := u.userRepo.GetByID(ctx, n.RecipientID)
	if err != nil {
		logger.Warn(ctx, "Notification recipient lookup failed", zap.String("recipient_id", n.RecipientID.String()), zap.Error(err))
		return
	}
	if recipient.Email == "" {
		return
	}

	u.pending.Add(1)
	go func(to, subject, body string) {
		defer u.pending.Done()
		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
		defer cancel()

		err := u.mailer.Send(mailCtx, to, subject, body)
		u.metrics.Notification("email", err)
		if err != nil {
			logger.Warn(mailCtx, "Failed to e-mail notification", zap.String("to", to), zap.Error(err))
		}
	}(recipient.Email, n.Title, n.Message)
}

func (u *NotificationUsecase) sendSMS(ctx context.Context, booking *entities.Booking, message string) {
	if u.sms == nil || !booking.CustomerPhone.Valid || booking.CustomerPhone.String == "" {
		return
	}
	err := u.sms.Send(ctx, booking.CustomerPhone.String, message)
	u.metrics.Notification("sms", err)
	if err != nil {
		logger.Warn(ctx, "Failed to text guest", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	}
}

func (u *NotificationUsecase) fail(ctx context.Context, channel string, t entities.NotificationType, bookingID uuid.UUID, err error) {
	u.metrics.Notification(channel, err)
	logger.Error(ctx, "Failed to create notification",
		zap.String("type", string(t)),
		zap.String("booking_id", bookingID.String()),
		zap.Error(err),
	)
}

func bookingTemplate(t entities.NotificationType, merchant *entities.Merchant, booking *entities.Booking) (string, string) {
	switch t {
	case entities.NotificationNewBooking:
		names := make([]string, 0, len(booking.Services))
		for _, s := range booking.Services {
			names = append(names, s.ServiceName)
		}
		if len(names) == 1 {
			return "New booking", fmt.Sprintf("New booking at %s for service %s", merchant.Name, names[0])
		}
		return "New booking", fmt.Sprintf("New booking at %s for services: %s", merchant.Name, strings.Join(names, ", "))
	case entities.NotificationBookingConfirmed:
		return "Booking confirmed", fmt.Sprintf("Your booking at %s has been confirmed", merchant.Name)
	case entities.NotificationBookingCancelled:
		return "Booking cancelled", fmt.Sprintf("Your booking at %s has been cancelled", merchant.Name)
	case entities.NotificationBookingCompleted:
		return "Booking completed", fmt.Sprintf("Your booking at %s has been completed", merchant.Name)
	case entities.NotificationTurnUpdated:
		return "Turn updated", fmt.Sprintf("The current turn at %s is now %d", merchant.Name, merchant.CurrentTurnNumber)
	}
	return "Notification", fmt.Sprintf("Update on your booking at %s", merchant.Name)
}

// preview cuts s to n runes, marking the cut with an ellipsis
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
