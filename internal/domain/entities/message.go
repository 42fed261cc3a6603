package entities

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds one chat message
const MaxMessageLength = 1000

// BookingMessage is a chat line between the two parties of a booking
type BookingMessage struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"bookingId"`
	SenderID   uuid.UUID `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SendMessageInput is a chat message posted over REST or the socket
type SendMessageInput struct {
	Message string `json:"message" binding:"required"`
}
