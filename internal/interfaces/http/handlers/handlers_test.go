package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"barberq.backend/internal/config"
	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/infrastructure/models"
	"barberq.backend/internal/infrastructure/realtime"
	"barberq.backend/internal/infrastructure/repositories"
	"barberq.backend/internal/interfaces/http/handlers"
	"barberq.backend/internal/interfaces/http/middleware"
	"barberq.backend/internal/usecases"
	"barberq.backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	jwt       *jwt.JWTService
	hub       *realtime.Hub
	merchants *usecases.MerchantUsecase
	bookings  *usecases.BookingUsecase
	router    *gin.Engine
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	db := newTestDB(t)
	policy := config.DefaultBooking()
	jwtService := jwt.NewJWTService("test-secret", "barberq-test", time.Hour, 24*time.Hour)
	hub := realtime.NewHub(0)
	broker := realtime.NewLocalBroker(hub)

	userRepo := repositories.NewUserRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	historyRepo := repositories.NewBookingHistoryRepository(db)
	messageRepo := repositories.NewBookingMessageRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	uow := repositories.NewUnitOfWork(db)

	notifier := usecases.NewNotificationUsecase(notificationRepo, merchantRepo, bookingRepo, userRepo, nil, nil, nil, policy)
	chat := usecases.NewChatUsecase(bookingRepo, merchantRepo, messageRepo, notificationRepo, userRepo, broker, notifier, policy)
	merchants := usecases.NewMerchantUsecase(merchantRepo, serviceRepo, bookingRepo, reviewRepo, userRepo, policy)
	bookings := usecases.NewBookingUsecase(uow, merchantRepo, serviceRepo, bookingRepo, historyRepo, notifier, nil, policy)
	status := usecases.NewBookingStatusUsecase(uow, bookingRepo, historyRepo, merchantRepo, notifier, chat, broker, nil)
	reviews := usecases.NewReviewUsecase(reviewRepo, merchantRepo, bookingRepo)

	auth := middleware.AuthMiddleware(jwtService)
	optional := middleware.OptionalAuthMiddleware(jwtService)
	mh := handlers.NewMerchantHandler(merchants)
	bh := handlers.NewBookingHandler(bookings, status)
	ch := handlers.NewChatHandler(chat)
	nh := handlers.NewNotificationHandler(notifier)
	rh := handlers.NewReviewHandler(reviews)
	ws := handlers.NewWSHandler(merchants, chat, jwtService, hub)

	r := gin.New()
	r.GET("/merchants/nearby", mh.Nearby)
	r.GET("/merchants/:id/turn", mh.TurnStatus)
	r.POST("/merchants/:id/services", auth, mh.CreateService)
	r.POST("/merchants/:id/bookings", optional, bh.CreateBooking)
	r.GET("/merchants/:id/bookings", auth, bh.ListMerchantBookings)
	r.GET("/merchants/:id/reviews", rh.ListMerchantReviews)
	r.POST("/merchants/:id/reviews", auth, rh.CreateReview)
	r.GET("/bookings", auth, bh.ListMine)
	r.GET("/bookings/:id", auth, bh.GetBooking)
	r.GET("/bookings/:id/history", auth, bh.GetHistory)
	r.POST("/bookings/:id/confirm", auth, bh.Confirm)
	r.POST("/bookings/:id/cancel", auth, bh.Cancel)
	r.DELETE("/bookings/:id", auth, bh.DeleteBooking)
	r.GET("/bookings/:id/messages", auth, ch.ListMessages)
	r.POST("/bookings/:id/messages", auth, ch.SendMessage)
	r.GET("/notifications", auth, nh.List)
	r.GET("/notifications/unread-count", auth, nh.UnreadCount)
	r.POST("/notifications/read-all", auth, nh.MarkAllRead)
	r.GET("/ws/barbershop/:id", ws.Barbershop)
	r.GET("/ws/chat/:booking_id", ws.Chat)

	return &testEnv{
		db:        db,
		jwt:       jwtService,
		hub:       hub,
		merchants: merchants,
		bookings:  bookings,
		router:    r,
	}
}

func (e *testEnv) user(t *testing.T, username string, role entities.UserRole) (*entities.User, string) {
	t.Helper()
	u := &entities.User{
		Email:        username + "@example.com",
		Username:     username,
		FullName:     username + " Test",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, repositories.NewUserRepository(e.db).Create(context.Background(), u))
	pair, err := e.jwt.GenerateTokenPair(u.ID, u.Username, string(u.Role))
	require.NoError(t, err)
	return u, pair.AccessToken
}

func (e *testEnv) shop(t *testing.T, owner *entities.User) (*entities.Merchant, *entities.Service) {
	t.Helper()
	ctx := context.Background()
	lat, lng := 30.0444, 31.2357
	m, err := e.merchants.CreateMerchant(ctx, owner.ID, &entities.CreateMerchantInput{
		Name:        "Fade Shop",
		Address:     "1 Main St",
		PhoneNumber: "+201000000000",
		Latitude:    &lat,
		Longitude:   &lng,
	})
	require.NoError(t, err)
	s, err := e.merchants.CreateService(ctx, owner.ID, m.ID, &entities.CreateServiceInput{
		Name: "Haircut", Price: 50, DurationMinutes: 30,
	})
	require.NoError(t, err)
	return m, s
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func tomorrow() string {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC).Format(entities.BookingDayLayout)
}
