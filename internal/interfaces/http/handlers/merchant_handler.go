package handlers

import (
	"net/http"
	"strconv"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/interfaces/http/middleware"
	"barberq.backend/internal/interfaces/http/response"
	"barberq.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// MerchantHandler handles barbershop and service catalog endpoints
type MerchantHandler struct {
	merchantUsecase *usecases.MerchantUsecase
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantUsecase *usecases.MerchantUsecase) *MerchantHandler {
	return &MerchantHandler{merchantUsecase: merchantUsecase}
}

// ListMerchants lists active barbershops
// GET /api/v1/merchants?search=&page=&limit=
func (h *MerchantHandler) ListMerchants(c *gin.Context) {
	pagination := paginationParams(c)
	items, meta, err := h.merchantUsecase.ListMerchants(c.Request.Context(), c.Query("search"), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// Nearby lists barbershops around a point, closest first
// GET /api/v1/merchants/nearby?lat=&lng=&max_km=
func (h *MerchantHandler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		response.Error(c, &domainerrors.ValidationError{
			Err:    domainerrors.ErrInvalidInput,
			Fields: map[string]string{"lat": "Latitude is required.", "lng": "Longitude is required."},
		})
		return
	}

	var maxKm float64
	if raw := c.Query("max_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "max_km", "Radius must be a positive number."))
			return
		}
		maxKm = parsed
	}

	items, err := h.merchantUsecase.FindNearby(c.Request.Context(), lat, lng, maxKm)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// ListMine lists the caller's barbershops
// GET /api/v1/merchants/mine
func (h *MerchantHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.merchantUsecase.ListMyMerchants(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// CreateMerchant registers a barbershop
// POST /api/v1/merchants
func (h *MerchantHandler) CreateMerchant(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.CreateMerchantInput
	if !bindJSON(c, &input) {
		return
	}

	merchant, err := h.merchantUsecase.CreateMerchant(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, merchant)
}

// GetMerchant returns a barbershop with services and rating
// GET /api/v1/merchants/:id
func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.merchantUsecase.GetMerchant(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// UpdateMerchant edits an owned barbershop
// PUT /api/v1/merchants/:id
func (h *MerchantHandler) UpdateMerchant(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.UpdateMerchantInput
	if !bindJSON(c, &input) {
		return
	}

	merchant, err := h.merchantUsecase.UpdateMerchant(c.Request.Context(), userID, merchantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, merchant)
}

// ListServices returns a barbershop's catalog. The owner also sees inactive
// services.
// GET /api/v1/merchants/:id/services
func (h *MerchantHandler) ListServices(c *gin.Context) {
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	items, err := h.merchantUsecase.ListServices(c.Request.Context(), merchantID, middleware.OptionalUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// CreateService adds a service
// POST /api/v1/merchants/:id/services
func (h *MerchantHandler) CreateService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.CreateServiceInput
	if !bindJSON(c, &input) {
		return
	}

	service, err := h.merchantUsecase.CreateService(c.Request.Context(), userID, merchantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, service)
}

// UpdateService edits a service
// PUT /api/v1/merchants/:id/services/:serviceId
func (h *MerchantHandler) UpdateService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}
	var input entities.UpdateServiceInput
	if !bindJSON(c, &input) {
		return
	}

	service, err := h.merchantUsecase.UpdateService(c.Request.Context(), userID, merchantID, serviceID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, service)
}

// DeleteService removes a service from the catalog
// DELETE /api/v1/merchants/:id/services/:serviceId
func (h *MerchantHandler) DeleteService(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}

	if err := h.merchantUsecase.DeleteService(c.Request.Context(), userID, merchantID, serviceID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TurnStatus returns the turn being served today
// GET /api/v1/merchants/:id/turn
func (h *MerchantHandler) TurnStatus(c *gin.Context) {
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	status, err := h.merchantUsecase.GetTurnStatus(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}
