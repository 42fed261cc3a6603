package entities

import (
	"time"

	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
)

// NotificationType identifies the event a notification reports
type NotificationType string

const (
	NotificationNewBooking       NotificationType = "new_booking"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingCompleted NotificationType = "booking_completed"
	NotificationTurnUpdated      NotificationType = "turn_updated"
	NotificationNewMessage       NotificationType = "new_message"
)

// MerchantDirected reports whether the owner, not the customer, receives it
func (t NotificationType) MerchantDirected() bool {
	return t == NotificationNewBooking
}

// Notification is an inbox entry for one user
type Notification struct {
	ID               uuid.UUID        `json:"id"`
	RecipientID      uuid.UUID        `json:"recipientId"`
	SenderID         *uuid.UUID       `json:"senderId,omitempty"`
	NotificationType NotificationType `json:"notificationType"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	BookingID        *uuid.UUID       `json:"bookingId,omitempty"`
	IsRead           bool             `json:"isRead"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// NotificationPage is one page of a user's inbox
type NotificationPage struct {
	Items       []*Notification      `json:"items"`
	Meta        utils.PaginationMeta `json:"meta"`
	UnreadCount int64                `json:"unreadCount"`
}
