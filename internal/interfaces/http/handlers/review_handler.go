package handlers

import (
	"net/http"

	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/interfaces/http/response"
	"barberq.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles barbershop reviews
type ReviewHandler struct {
	reviewUsecase *usecases.ReviewUsecase
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewUsecase *usecases.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{reviewUsecase: reviewUsecase}
}

// ListMerchantReviews GET /api/v1/merchants/:id/reviews
func (h *ReviewHandler) ListMerchantReviews(c *gin.Context) {
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	items, meta, err := h.reviewUsecase.ListMerchantReviews(c.Request.Context(), merchantID, paginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// CreateReview POST /api/v1/merchants/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.CreateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviewUsecase.CreateReview(c.Request.Context(), userID, merchantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, review)
}

// ListOwnerReviews GET /api/v1/reviews/mine-shops
func (h *ReviewHandler) ListOwnerReviews(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, meta, err := h.reviewUsecase.ListOwnerReviews(c.Request.Context(), userID, paginationParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// UpdateReview PUT /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.UpdateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviewUsecase.UpdateReview(c.Request.Context(), userID, reviewID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, review)
}

// Reply POST /api/v1/reviews/:id/reply
func (h *ReviewHandler) Reply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.ReplyReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviewUsecase.ReplyToReview(c.Request.Context(), userID, reviewID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, review)
}
