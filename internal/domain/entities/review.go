package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Review is a customer's rating of a barbershop
type Review struct {
	ID           uuid.UUID   `json:"id"`
	CustomerID   uuid.UUID   `json:"customerId"`
	CustomerName string      `json:"customerName,omitempty"`
	MerchantID   uuid.UUID   `json:"merchantId"`
	BookingID    *uuid.UUID  `json:"bookingId,omitempty"`
	Rating       int         `json:"rating"`
	Comment      string      `json:"comment"`
	IsApproved   bool        `json:"isApproved"`
	Reply        null.String `json:"reply,omitempty"`
	RepliedAt    null.Time   `json:"repliedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// CreateReviewInput represents input for rating a barbershop
type CreateReviewInput struct {
	Rating    int        `json:"rating" binding:"required,min=1,max=5"`
	Comment   string     `json:"comment" binding:"max=2000"`
	BookingID *uuid.UUID `json:"bookingId"`
}

// UpdateReviewInput lets a customer edit their own review
type UpdateReviewInput struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// ReplyReviewInput is the owner's public answer to a review
type ReplyReviewInput struct {
	Reply string `json:"reply" binding:"required,min=1,max=2000"`
}
