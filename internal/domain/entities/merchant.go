package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DefaultBookingAdvanceDays is how far ahead a barbershop accepts bookings
// unless configured otherwise. Zero means no limit.
const DefaultBookingAdvanceDays = 7

// Merchant represents a barbershop
type Merchant struct {
	ID                 uuid.UUID    `json:"id"`
	OwnerID            uuid.UUID    `json:"ownerId"`
	Name               string       `json:"name"`
	Slug               string       `json:"slug"`
	Description        string       `json:"description"`
	Address            string       `json:"address"`
	Latitude           null.Float64 `json:"latitude,omitempty"`
	Longitude          null.Float64 `json:"longitude,omitempty"`
	PhoneNumber        string       `json:"phoneNumber"`
	Email              null.String  `json:"email,omitempty"`
	IsActive           bool         `json:"isActive"`
	IsVerified         bool         `json:"isVerified"`
	BookingAdvanceDays int          `json:"bookingAdvanceDays"`
	CurrentTurnNumber  int          `json:"currentTurnNumber"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	DeletedAt          null.Time    `json:"-"`
}

// HasLocation reports whether both coordinates are set
func (m *Merchant) HasLocation() bool {
	return m.Latitude.Valid && m.Longitude.Valid
}

// CreateMerchantInput represents input for registering a barbershop
type CreateMerchantInput struct {
	Name               string   `json:"name" binding:"required,min=2,max=100"`
	Description        string   `json:"description" binding:"max=2000"`
	Address            string   `json:"address" binding:"required,max=255"`
	Latitude           *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude          *float64 `json:"longitude" binding:"omitempty,longitude"`
	PhoneNumber        string   `json:"phoneNumber" binding:"required,phone"`
	Email              string   `json:"email" binding:"omitempty,email"`
	BookingAdvanceDays *int     `json:"bookingAdvanceDays" binding:"omitempty,min=0,max=365"`
}

// UpdateMerchantInput holds the settings an owner may change. Nil fields are
// left untouched.
type UpdateMerchantInput struct {
	Name               *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Description        *string  `json:"description" binding:"omitempty,max=2000"`
	Address            *string  `json:"address" binding:"omitempty,max=255"`
	Latitude           *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude          *float64 `json:"longitude" binding:"omitempty,longitude"`
	PhoneNumber        *string  `json:"phoneNumber" binding:"omitempty,phone"`
	Email              *string  `json:"email" binding:"omitempty,email"`
	IsActive           *bool    `json:"isActive"`
	BookingAdvanceDays *int     `json:"bookingAdvanceDays" binding:"omitempty,min=0,max=365"`
}

// MerchantFilter narrows the public listing
type MerchantFilter struct {
	Search     string
	ActiveOnly bool
}

// RatingSummary aggregates approved reviews of a barbershop
type RatingSummary struct {
	Average float64 `json:"average"`
	Total   int64   `json:"total"`
}

// MerchantDetail is a barbershop with its services and rating
type MerchantDetail struct {
	*Merchant
	Services []*Service    `json:"services"`
	Rating   RatingSummary `json:"rating"`
}

// NearbyMerchant is a barbershop annotated with its distance from the caller
type NearbyMerchant struct {
	*Merchant
	DistanceKm    float64 `json:"distanceKm"`
	DistanceLabel string  `json:"distanceLabel"`
}

// TurnStatus is the public view of a barbershop's queue today
type TurnStatus struct {
	MerchantID            uuid.UUID `json:"merchantId"`
	CurrentTurnNumber     int       `json:"currentTurnNumber"`
	FinishedBookingsCount int64     `json:"finishedBookingsCount"`
}
