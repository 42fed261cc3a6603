package handlers

import (
	"net/http"

	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/interfaces/http/response"
	"barberq.backend/internal/usecases"
	"github.com/gin-gonic/gin"
)

// ChatHandler serves the REST side of booking chat
type ChatHandler struct {
	chatUsecase *usecases.ChatUsecase
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatUsecase *usecases.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

// ListMessages returns the thread and marks it read for the caller
// GET /api/v1/bookings/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	items, err := h.chatUsecase.ListMessages(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// SendMessage posts a chat message
// POST /api/v1/bookings/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input entities.SendMessageInput
	if !bindJSON(c, &input) {
		return
	}

	message, err := h.chatUsecase.SendMessage(c.Request.Context(), bookingID, userID, input.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}
