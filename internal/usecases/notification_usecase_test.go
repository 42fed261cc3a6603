package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"barberq.backend/internal/config"
	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/usecases"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

type notificationMocks struct {
	notifications *MockNotificationRepository
	merchants     *MockMerchantRepository
	bookings      *MockBookingRepository
	users         *MockUserRepository
	mailer        *MockMailer
	sms           *MockSMSSender
	stored        []*entities.Notification
}

func newNotificationUsecaseForTest(t *testing.T, withMailer bool) (*usecases.NotificationUsecase, *notificationMocks) {
	t.Helper()
	m := &notificationMocks{
		notifications: new(MockNotificationRepository),
		merchants:     new(MockMerchantRepository),
		bookings:      new(MockBookingRepository),
		users:         new(MockUserRepository),
		mailer:        new(MockMailer),
		sms:           new(MockSMSSender),
	}
	m.notifications.On("Create", mock.Anything, mock.AnythingOfType("*entities.Notification")).
		Run(func(args mock.Arguments) {
			m.stored = append(m.stored, args.Get(1).(*entities.Notification))
		}).Return(nil).Maybe()

	var mailer usecases.Mailer
	if withMailer {
		mailer = m.mailer
	}
	uc := usecases.NewNotificationUsecase(m.notifications, m.merchants, m.bookings, m.users, mailer, m.sms, nil, config.DefaultBooking())
	return uc, m
}

func notificationFixture() (*entities.Merchant, *entities.Booking) {
	merchant := &entities.Merchant{ID: uuid.New(), OwnerID: uuid.New(), Name: "Fade Shop", CurrentTurnNumber: 3}
	customerID := uuid.New()
	booking := &entities.Booking{
		ID:          uuid.New(),
		MerchantID:  merchant.ID,
		CustomerID:  &customerID,
		BookingDay:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		QueueNumber: 4,
		Status:      entities.BookingStatusPending,
		Services: []*entities.BookingService{
			{ServiceName: "Haircut", PriceAtBooking: 50},
		},
	}
	return merchant, booking
}

func TestNotificationUsecase_NewBookingGoesToOwner(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	merchant, booking := notificationFixture()
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)

	uc.NotifyBooking(context.Background(), entities.NotificationNewBooking, booking)

	require.Len(t, m.stored, 1)
	n := m.stored[0]
	assert.Equal(t, merchant.OwnerID, n.RecipientID)
	assert.Equal(t, booking.CustomerID, n.SenderID)
	assert.Equal(t, "New booking", n.Title)
	assert.Equal(t, "New booking at Fade Shop for service Haircut", n.Message)
	assert.Equal(t, booking.ID, *n.BookingID)
}

func TestNotificationUsecase_NewBookingListsServices(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	merchant, booking := notificationFixture()
	booking.Services = append(booking.Services, &entities.BookingService{ServiceName: "Beard trim"})
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)

	uc.NotifyBooking(context.Background(), entities.NotificationNewBooking, booking)

	require.Len(t, m.stored, 1)
	assert.Equal(t, "New booking at Fade Shop for services: Haircut, Beard trim", m.stored[0].Message)
}

func TestNotificationUsecase_StatusChangesGoToCustomer(t *testing.T) {
	cases := []struct {
		notificationType entities.NotificationType
		title, message   string
	}{
		{entities.NotificationBookingConfirmed, "Booking confirmed", "Your booking at Fade Shop has been confirmed"},
		{entities.NotificationBookingCancelled, "Booking cancelled", "Your booking at Fade Shop has been cancelled"},
		{entities.NotificationBookingCompleted, "Booking completed", "Your booking at Fade Shop has been completed"},
		{entities.NotificationTurnUpdated, "Turn updated", "The current turn at Fade Shop is now 3"},
	}
	for _, tc := range cases {
		t.Run(string(tc.notificationType), func(t *testing.T) {
			uc, m := newNotificationUsecaseForTest(t, false)
			merchant, booking := notificationFixture()
			m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)

			uc.NotifyBooking(context.Background(), tc.notificationType, booking)

			require.Len(t, m.stored, 1)
			n := m.stored[0]
			assert.Equal(t, *booking.CustomerID, n.RecipientID)
			assert.Equal(t, merchant.OwnerID, *n.SenderID)
			assert.Equal(t, tc.notificationType, n.NotificationType)
			assert.Equal(t, tc.title, n.Title)
			assert.Equal(t, tc.message, n.Message)
		})
	}
}

func TestNotificationUsecase_GuestGetsSMS(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	merchant, booking := notificationFixture()
	booking.CustomerID = nil
	booking.CustomerName = null.StringFrom("Omar")
	booking.CustomerPhone = null.StringFrom("+201000000000")
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)
	m.sms.On("Send", mock.Anything, "+201000000000", "Your booking at Fade Shop has been confirmed").Return(nil).Once()

	uc.NotifyBooking(context.Background(), entities.NotificationBookingConfirmed, booking)

	assert.Empty(t, m.stored)
	m.sms.AssertExpectations(t)
}

func TestNotificationUsecase_GuestSMSFailureIsSwallowed(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	merchant, booking := notificationFixture()
	booking.CustomerID = nil
	booking.CustomerPhone = null.StringFrom("+201000000000")
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)
	m.sms.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("twilio down")).Once()

	assert.NotPanics(t, func() {
		uc.NotifyBooking(context.Background(), entities.NotificationBookingCancelled, booking)
	})
	m.sms.AssertExpectations(t)
}

func TestNotificationUsecase_MerchantLookupFailure(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	_, booking := notificationFixture()
	m.merchants.On("GetByID", mock.Anything, booking.MerchantID).Return(nil, errors.New("db down"))

	uc.NotifyBooking(context.Background(), entities.NotificationNewBooking, booking)
	assert.Empty(t, m.stored)
}

func TestNotificationUsecase_InboxFailureDoesNotPropagate(t *testing.T) {
	m := &notificationMocks{
		notifications: new(MockNotificationRepository),
		merchants:     new(MockMerchantRepository),
	}
	merchant, booking := notificationFixture()
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)
	m.notifications.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()

	uc := usecases.NewNotificationUsecase(m.notifications, m.merchants, nil, nil, nil, nil, nil, config.DefaultBooking())
	assert.NotPanics(t, func() {
		uc.NotifyBooking(context.Background(), entities.NotificationNewBooking, booking)
	})
	m.notifications.AssertExpectations(t)
}

func TestNotificationUsecase_EmailCopy(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, true)
	merchant, booking := notificationFixture()
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)
	m.users.On("GetByID", mock.Anything, merchant.OwnerID).Return(&entities.User{ID: merchant.OwnerID, Email: "owner@mail.com"}, nil)
	m.mailer.On("Send", mock.Anything, "owner@mail.com", "New booking", "New booking at Fade Shop for service Haircut").
		Return(errors.New("smtp down")).Once()

	uc.NotifyBooking(context.Background(), entities.NotificationNewBooking, booking)
	uc.Wait()

	require.Len(t, m.stored, 1)
	m.mailer.AssertExpectations(t)
}

func TestNotificationUsecase_EmailCopySkippedWithoutAddress(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, true)
	merchant, booking := notificationFixture()
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)
	m.users.On("GetByID", mock.Anything, *booking.CustomerID).Return(&entities.User{ID: *booking.CustomerID}, nil)

	uc.NotifyBooking(context.Background(), entities.NotificationBookingCompleted, booking)
	uc.Wait()

	require.Len(t, m.stored, 1)
	m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationUsecase_NotifyTurnUpdated(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	merchant, booking := notificationFixture()
	waitingCustomer := uuid.New()
	waiting := []*entities.Booking{
		{ID: uuid.New(), CustomerID: &waitingCustomer},
		{ID: uuid.New(), CustomerID: &waitingCustomer},
		{ID: uuid.New()},
	}
	m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)
	m.bookings.On("ListWaitingCustomers", mock.Anything, merchant.ID, booking.BookingDay, booking.ID).Return(waiting, nil).Once()

	uc.NotifyTurnUpdated(context.Background(), booking, 4)

	require.Len(t, m.stored, 1)
	n := m.stored[0]
	assert.Equal(t, waitingCustomer, n.RecipientID)
	assert.Equal(t, entities.NotificationTurnUpdated, n.NotificationType)
	assert.Equal(t, "The current turn at Fade Shop is now 4", n.Message)
	assert.Equal(t, waiting[0].ID, *n.BookingID)
}

func TestNotificationUsecase_NotifyMessage(t *testing.T) {
	t.Run("customer writes to owner", func(t *testing.T) {
		uc, m := newNotificationUsecaseForTest(t, false)
		merchant, booking := notificationFixture()
		m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)

		msg := &entities.BookingMessage{SenderID: *booking.CustomerID, SenderName: "Omar", Message: "On my way"}
		uc.NotifyMessage(context.Background(), msg, booking)

		require.Len(t, m.stored, 1)
		n := m.stored[0]
		assert.Equal(t, merchant.OwnerID, n.RecipientID)
		assert.Equal(t, "New message from Omar", n.Title)
		assert.Equal(t, "Booking #4 (2026-03-14): On my way", n.Message)
	})

	t.Run("owner writes to customer with long text", func(t *testing.T) {
		uc, m := newNotificationUsecaseForTest(t, false)
		merchant, booking := notificationFixture()
		m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)

		long := strings.Repeat("a", 150)
		msg := &entities.BookingMessage{SenderID: merchant.OwnerID, SenderName: "Barber", Message: long}
		uc.NotifyMessage(context.Background(), msg, booking)

		require.Len(t, m.stored, 1)
		n := m.stored[0]
		assert.Equal(t, *booking.CustomerID, n.RecipientID)
		assert.Equal(t, "New message from Fade Shop", n.Title)
		assert.Equal(t, "Booking #4 (2026-03-14): "+strings.Repeat("a", 100)+"...", n.Message)
	})

	t.Run("owner writes to guest", func(t *testing.T) {
		uc, m := newNotificationUsecaseForTest(t, false)
		merchant, booking := notificationFixture()
		booking.CustomerID = nil
		m.merchants.On("GetByID", mock.Anything, merchant.ID).Return(merchant, nil)

		uc.NotifyMessage(context.Background(), &entities.BookingMessage{SenderID: merchant.OwnerID, Message: "hi"}, booking)
		assert.Empty(t, m.stored)
	})
}

func TestNotificationUsecase_Inbox(t *testing.T) {
	uc, m := newNotificationUsecaseForTest(t, false)
	userID := uuid.New()
	items := []*entities.Notification{{ID: uuid.New(), RecipientID: userID}}

	m.notifications.On("ListByRecipient", mock.Anything, userID, 20, 0).Return(items, int64(1), nil).Once()
	m.notifications.On("CountUnread", mock.Anything, userID).Return(int64(1), nil)
	m.notifications.On("MarkRead", mock.Anything, items[0].ID, userID).Return(nil).Once()
	m.notifications.On("MarkAllRead", mock.Anything, userID).Return(int64(1), nil).Once()

	page, err := uc.ListNotifications(context.Background(), userID, utils.GetPaginationParams(1, 0))
	require.NoError(t, err)
	assert.Equal(t, items, page.Items)
	assert.EqualValues(t, 1, page.UnreadCount)
	assert.Equal(t, 1, page.Meta.TotalPages)

	unread, err := uc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, uc.MarkRead(context.Background(), userID, items[0].ID))

	n, err := uc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
