package entities

import (
	"time"

	"github.com/google/uuid"
)

// Socket payload types
const (
	PayloadTurnStatus        = "turn_status"
	PayloadBookingTurnUpdate = "booking_turn_update"
	PayloadChatMessage       = "chat_message"
)

// ChatTimeLayout formats chat timestamps in socket payloads
const ChatTimeLayout = "02/01/2006 15:04"

// MerchantTopic is the turn-update topic of a barbershop
func MerchantTopic(merchantID uuid.UUID) string {
	return "barbershop_" + merchantID.String()
}

// ChatTopic is the chat topic of a booking
func ChatTopic(bookingID uuid.UUID) string {
	return "chat_" + bookingID.String()
}

// TurnStatusPayload is sent once when a client joins a barbershop topic
type TurnStatusPayload struct {
	Type                  string `json:"type"`
	CurrentTurnNumber     int    `json:"current_turn_number"`
	FinishedBookingsCount int64  `json:"finished_bookings_count"`
}

// TurnUpdatePayload is broadcast when a booking is confirmed
type TurnUpdatePayload struct {
	Type              string    `json:"type"`
	BookingID         uuid.UUID `json:"booking_id"`
	Status            string    `json:"status"`
	StatusClass       string    `json:"status_class"`
	CurrentTurnNumber int       `json:"current_turn_number"`
}

// NewTurnUpdatePayload builds the broadcast for a confirmed booking
func NewTurnUpdatePayload(b *Booking, currentTurn int) TurnUpdatePayload {
	return TurnUpdatePayload{
		Type:              PayloadBookingTurnUpdate,
		BookingID:         b.ID,
		Status:            b.Status.Label(),
		StatusClass:       b.Status.Class(),
		CurrentTurnNumber: currentTurn,
	}
}

// ChatMessagePayload relays one chat message to a booking topic
type ChatMessagePayload struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	SenderID  uuid.UUID `json:"sender_id"`
	CreatedAt string    `json:"created_at"`
}

// NewChatMessagePayload builds the broadcast for a stored message
func NewChatMessagePayload(m *BookingMessage, loc *time.Location) ChatMessagePayload {
	if loc == nil {
		loc = time.UTC
	}
	return ChatMessagePayload{
		Type:      PayloadChatMessage,
		Message:   m.Message,
		Sender:    m.SenderName,
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt.In(loc).Format(ChatTimeLayout),
	}
}
