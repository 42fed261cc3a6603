package main

import (
	"barberq.backend/internal/config"
	"barberq.backend/internal/infrastructure/realtime"
	"barberq.backend/internal/infrastructure/repositories"
	"barberq.backend/internal/interfaces/http/handlers"
	"barberq.backend/internal/interfaces/http/middleware"
	"barberq.backend/internal/usecases"
	"barberq.backend/pkg/jwt"
	"barberq.backend/pkg/metrics"
	"gorm.io/gorm"
)

// outbound groups the side-effect channels chosen at startup
type outbound struct {
	hub         *realtime.Hub
	broadcaster usecases.Broadcaster
	mailer      usecases.Mailer
	sms         usecases.SMSSender
	metrics     *metrics.Metrics
}

// app is the wired object graph behind the router
type app struct {
	routes   routeDeps
	notifier *usecases.NotificationUsecase
	merchant *usecases.MerchantUsecase
}

func wireApp(db *gorm.DB, cfg *config.Config, out outbound) *app {
	policy := cfg.Booking

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	historyRepo := repositories.NewBookingHistoryRepository(db)
	messageRepo := repositories.NewBookingMessageRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	notifier := usecases.NewNotificationUsecase(notificationRepo, merchantRepo, bookingRepo, userRepo, out.mailer, out.sms, out.metrics, policy)
	chatUsecase := usecases.NewChatUsecase(bookingRepo, merchantRepo, messageRepo, notificationRepo, userRepo, out.broadcaster, notifier, policy)
	merchantUsecase := usecases.NewMerchantUsecase(merchantRepo, serviceRepo, bookingRepo, reviewRepo, userRepo, policy)
	bookingUsecase := usecases.NewBookingUsecase(uow, merchantRepo, serviceRepo, bookingRepo, historyRepo, notifier, out.metrics, policy)
	statusUsecase := usecases.NewBookingStatusUsecase(uow, bookingRepo, historyRepo, merchantRepo, notifier, chatUsecase, out.broadcaster, out.metrics)
	reviewUsecase := usecases.NewReviewUsecase(reviewRepo, merchantRepo, bookingRepo)

	return &app{
		routes: routeDeps{
			authHandler:         handlers.NewAuthHandler(authUsecase),
			merchantHandler:     handlers.NewMerchantHandler(merchantUsecase),
			bookingHandler:      handlers.NewBookingHandler(bookingUsecase, statusUsecase),
			chatHandler:         handlers.NewChatHandler(chatUsecase),
			notificationHandler: handlers.NewNotificationHandler(notifier),
			reviewHandler:       handlers.NewReviewHandler(reviewUsecase),
			wsHandler:           handlers.NewWSHandler(merchantUsecase, chatUsecase, jwtService, out.hub),
			authMiddleware:      middleware.AuthMiddleware(jwtService),
			optionalAuth:        middleware.OptionalAuthMiddleware(jwtService),
		},
		notifier: notifier,
		merchant: merchantUsecase,
	}
}
