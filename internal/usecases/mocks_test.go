package usecases_test

import (
	"context"
	"sync"
	"time"

	"barberq.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

// Mock MerchantRepository
type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) Create(ctx context.Context, merchant *entities.Merchant) error {
	return m.Called(ctx, merchant).Error(0)
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) Update(ctx context.Context, merchant *entities.Merchant) error {
	return m.Called(ctx, merchant).Error(0)
}

func (m *MockMerchantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockMerchantRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, ownerID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockMerchantRepository) List(ctx context.Context, filter entities.MerchantFilter, limit, offset int) ([]*entities.Merchant, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Merchant), args.Get(1).(int64), args.Error(2)
}

func (m *MockMerchantRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Merchant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) ListLocated(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*entities.Merchant, error) {
	args := m.Called(ctx, minLat, maxLat, minLng, maxLng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) SetCurrentTurn(ctx context.Context, id uuid.UUID, turn int) error {
	return m.Called(ctx, id, turn).Error(0)
}

func (m *MockMerchantRepository) ResetAllTurns(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Service, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, activeOnly bool) ([]*entities.Service, error) {
	args := m.Called(ctx, merchantID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Mock BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID, status entities.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CountActiveByCustomer(ctx context.Context, merchantID uuid.UUID, day time.Time, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, merchantID, day, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CountActiveByPhone(ctx context.Context, merchantID uuid.UUID, day time.Time, phone string) (int64, error) {
	args := m.Called(ctx, merchantID, day, phone)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CountByStatuses(ctx context.Context, merchantID uuid.UUID, day time.Time, statuses ...entities.BookingStatus) (int64, error) {
	args := m.Called(ctx, merchantID, day, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) NextQueueNumber(ctx context.Context, merchantID uuid.UUID, day time.Time) (int, error) {
	args := m.Called(ctx, merchantID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.BookingStatus, to entities.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entities.Booking, int64, error) {
	args := m.Called(ctx, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, filter entities.BookingFilter, limit, offset int) ([]*entities.Booking, int64, error) {
	args := m.Called(ctx, merchantID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) ListWaitingCustomers(ctx context.Context, merchantID uuid.UUID, day time.Time, exclude uuid.UUID) ([]*entities.Booking, error) {
	args := m.Called(ctx, merchantID, day, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

// Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*entities.Notification, int64, error) {
	args := m.Called(ctx, recipientID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return m.Called(ctx, id, recipientID).Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkBookingRead(ctx context.Context, recipientID, bookingID uuid.UUID, t entities.NotificationType) (int64, error) {
	args := m.Called(ctx, recipientID, bookingID, t)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) Exists(ctx context.Context, customerID, merchantID uuid.UUID, bookingID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, merchantID, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, approvedOnly bool, limit, offset int) ([]*entities.Review, int64, error) {
	args := m.Called(ctx, merchantID, approvedOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entities.Review, int64, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Summary(ctx context.Context, merchantID uuid.UUID) (entities.RatingSummary, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).(entities.RatingSummary), args.Error(1)
}

// Mock Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

// Mock SMSSender
type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) Send(ctx context.Context, to, body string) error {
	return m.Called(ctx, to, body).Error(0)
}

// recordingBroadcaster keeps every published payload
type recordingBroadcaster struct {
	mu        sync.Mutex
	published []published
	err       error
}

type published struct {
	topic   string
	payload interface{}
}

func (b *recordingBroadcaster) Publish(_ context.Context, topic string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, published{topic: topic, payload: payload})
	return b.err
}

func (b *recordingBroadcaster) on(topic string) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []interface{}
	for _, p := range b.published {
		if p.topic == topic {
			out = append(out, p.payload)
		}
	}
	return out
}

// Mock BookingHistoryRepository
type MockBookingHistoryRepository struct {
	mock.Mock
}

func (m *MockBookingHistoryRepository) Create(ctx context.Context, history *entities.BookingHistory) error {
	return m.Called(ctx, history).Error(0)
}

func (m *MockBookingHistoryRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entities.BookingHistory, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BookingHistory), args.Error(1)
}

// Mock BookingNotifier
type MockBookingNotifier struct {
	mock.Mock
}

func (m *MockBookingNotifier) NotifyBooking(ctx context.Context, notificationType entities.NotificationType, booking *entities.Booking) {
	m.Called(ctx, notificationType, booking)
}

func (m *MockBookingNotifier) NotifyTurnUpdated(ctx context.Context, booking *entities.Booking, currentTurn int) {
	m.Called(ctx, booking, currentTurn)
}

func (m *MockBookingNotifier) NotifyMessage(ctx context.Context, message *entities.BookingMessage, booking *entities.Booking) {
	m.Called(ctx, message, booking)
}

type lockedKey struct{}

// inlineUnitOfWork runs fn on the caller's context and tags locked reads
type inlineUnitOfWork struct{}

func (inlineUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (inlineUnitOfWork) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (inlineUnitOfWork) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockedKey{}, true)
}

func lockedCtx(locked bool) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		got, _ := ctx.Value(lockedKey{}).(bool)
		return got == locked
	})
}
