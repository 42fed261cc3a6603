package handlers

import (
	"context"
	"net/http"
	"time"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/interfaces/http/middleware"
	"barberq.backend/internal/interfaces/http/response"
	"barberq.backend/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles booking admission, queries and status changes
type BookingHandler struct {
	bookingUsecase *usecases.BookingUsecase
	statusUsecase  *usecases.BookingStatusUsecase
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingUsecase *usecases.BookingUsecase, statusUsecase *usecases.BookingStatusUsecase) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		statusUsecase:  statusUsecase,
	}
}

// CreateBooking books a place in the queue for a customer or a guest
// POST /api/v1/merchants/:id/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.CreateBookingInput
	if !bindJSON(c, &input) {
		return
	}

	view, err := h.bookingUsecase.CreateBooking(c.Request.Context(), merchantID, middleware.OptionalUserID(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// ListMine lists the caller's bookings
// GET /api/v1/bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, meta, err := h.bookingUsecase.ListCustomerBookings(c.Request.Context(), userID, paginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// ListMerchantBookings lists a barbershop's bookings for its owner
// GET /api/v1/merchants/:id/bookings?status=&day=
func (h *BookingHandler) ListMerchantBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	filter := entities.BookingFilter{Status: entities.BookingStatus(c.Query("status"))}
	if raw := c.Query("day"); raw != "" {
		day, err := time.Parse(entities.BookingDayLayout, raw)
		if err != nil {
			response.Error(c, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "day", "Day must be a date (YYYY-MM-DD)."))
			return
		}
		filter.Day = &day
	}

	items, meta, err := h.bookingUsecase.ListMerchantBookings(c.Request.Context(), userID, merchantID, filter, paginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// GetBooking returns one booking to its customer or the shop owner
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.bookingUsecase.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetHistory returns the booking's status transitions
// GET /api/v1/bookings/:id/history
func (h *BookingHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	items, err := h.bookingUsecase.GetHistory(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// Confirm POST /api/v1/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.statusUsecase.Confirm)
}

// Reject POST /api/v1/bookings/:id/reject
func (h *BookingHandler) Reject(c *gin.Context) {
	h.transition(c, h.statusUsecase.Reject)
}

// Complete POST /api/v1/bookings/:id/complete
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.statusUsecase.Complete)
}

// MarkNoShow POST /api/v1/bookings/:id/no-show
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.statusUsecase.MarkNoShow)
}

// Cancel POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.statusUsecase.Cancel)
}

// DeleteBooking removes the caller's pending booking
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.statusUsecase.Delete(c.Request.Context(), bookingID, userID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, bookingID, userID uuid.UUID) (*entities.BookingView, error)

func (h *BookingHandler) transition(c *gin.Context, apply transitionFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := apply(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
