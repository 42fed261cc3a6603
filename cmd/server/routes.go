package main

import (
	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/interfaces/http/handlers"
	"barberq.backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	authHandler         *handlers.AuthHandler
	merchantHandler     *handlers.MerchantHandler
	bookingHandler      *handlers.BookingHandler
	chatHandler         *handlers.ChatHandler
	notificationHandler *handlers.NotificationHandler
	reviewHandler       *handlers.ReviewHandler
	wsHandler           *handlers.WSHandler
	authMiddleware      gin.HandlerFunc
	optionalAuth        gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	barberOnly := middleware.RequireRole(string(entities.UserRoleBarber))

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Barbershop routes
		merchants := v1.Group("/merchants")
		{
			merchants.GET("", d.merchantHandler.ListMerchants)
			merchants.GET("/nearby", d.merchantHandler.Nearby)
			merchants.GET("/mine", d.authMiddleware, barberOnly, d.merchantHandler.ListMine)
			merchants.POST("", d.authMiddleware, barberOnly, d.merchantHandler.CreateMerchant)
			merchants.GET("/:id", d.merchantHandler.GetMerchant)
			merchants.PUT("/:id", d.authMiddleware, d.merchantHandler.UpdateMerchant)

			merchants.GET("/:id/services", d.optionalAuth, d.merchantHandler.ListServices)
			merchants.POST("/:id/services", d.authMiddleware, d.merchantHandler.CreateService)
			merchants.PUT("/:id/services/:serviceId", d.authMiddleware, d.merchantHandler.UpdateService)
			merchants.DELETE("/:id/services/:serviceId", d.authMiddleware, d.merchantHandler.DeleteService)

			merchants.GET("/:id/turn", d.merchantHandler.TurnStatus)
			merchants.GET("/:id/bookings", d.authMiddleware, d.bookingHandler.ListMerchantBookings)
			merchants.POST("/:id/bookings", d.optionalAuth, d.bookingHandler.CreateBooking)

			merchants.GET("/:id/reviews", d.reviewHandler.ListMerchantReviews)
			merchants.POST("/:id/reviews", d.authMiddleware, d.reviewHandler.CreateReview)
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(d.authMiddleware)
		{
			bookings.GET("", d.bookingHandler.ListMine)
			bookings.GET("/:id", d.bookingHandler.GetBooking)
			bookings.GET("/:id/history", d.bookingHandler.GetHistory)
			bookings.POST("/:id/confirm", d.bookingHandler.Confirm)
			bookings.POST("/:id/reject", d.bookingHandler.Reject)
			bookings.POST("/:id/complete", d.bookingHandler.Complete)
			bookings.POST("/:id/no-show", d.bookingHandler.MarkNoShow)
			bookings.POST("/:id/cancel", d.bookingHandler.Cancel)
			bookings.DELETE("/:id", d.bookingHandler.DeleteBooking)

			bookings.GET("/:id/messages", d.chatHandler.ListMessages)
			bookings.POST("/:id/messages", d.chatHandler.SendMessage)
		}

		// Notification routes (protected)
		notifications := v1.Group("/notifications")
		notifications.Use(d.authMiddleware)
		{
			notifications.GET("", d.notificationHandler.List)
			notifications.GET("/unread-count", d.notificationHandler.UnreadCount)
			notifications.POST("/read-all", d.notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", d.notificationHandler.MarkRead)
		}

		// Review routes (protected)
		reviews := v1.Group("/reviews")
		reviews.Use(d.authMiddleware)
		{
			reviews.GET("/mine-shops", d.reviewHandler.ListOwnerReviews)
			reviews.PUT("/:id", d.reviewHandler.UpdateReview)
			reviews.POST("/:id/reply", d.reviewHandler.Reply)
		}
	}

	// Sockets authenticate on their own so browsers can pass ?token=
	ws := r.Group("/ws")
	{
		ws.GET("/barbershop/:id", d.wsHandler.Barbershop)
		ws.GET("/chat/:booking_id", d.wsHandler.Chat)
	}
}
