package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DailyBookingLimit is the number of non-cancelled bookings one identity may
// hold at a barbershop on a single day.
const DailyBookingLimit = 2

// BookingDayLayout is the wire format of a booking day
const BookingDayLayout = "2006-01-02"

// BookingStatus represents a booking's lifecycle state
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

var bookingStatusDisplay = map[BookingStatus]struct{ label, class string }{
	BookingStatusPending:   {"Pending", "bg-warning text-dark"},
	BookingStatusConfirmed: {"Confirmed", "bg-success text-white"},
	BookingStatusCompleted: {"Completed", "bg-info text-white"},
	BookingStatusCancelled: {"Cancelled", "bg-danger text-white"},
	BookingStatusNoShow:    {"No show", "bg-secondary text-white"},
}

// Valid reports whether s is a known status
func (s BookingStatus) Valid() bool {
	_, ok := bookingStatusDisplay[s]
	return ok
}

// Label is the human readable status
func (s BookingStatus) Label() string {
	if d, ok := bookingStatusDisplay[s]; ok {
		return d.label
	}
	return string(s)
}

// Class is the badge styling class shown next to the status
func (s BookingStatus) Class() string {
	if d, ok := bookingStatusDisplay[s]; ok {
		return d.class
	}
	return "bg-secondary text-white"
}

// Booking is one customer's place in a barbershop queue for a day
type Booking struct {
	ID            uuid.UUID         `json:"id"`
	MerchantID    uuid.UUID         `json:"merchantId"`
	CustomerID    *uuid.UUID        `json:"customerId,omitempty"`
	CustomerName  null.String       `json:"customerName,omitempty"`
	CustomerPhone null.String       `json:"customerPhone,omitempty"`
	CustomerEmail null.String       `json:"customerEmail,omitempty"`
	BookingDay    time.Time         `json:"-"`
	QueueNumber   int               `json:"queueNumber"`
	Status        BookingStatus     `json:"status"`
	Notes         string            `json:"notes"`
	TotalPrice    float64           `json:"totalPrice"`
	Services      []*BookingService `json:"services,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// IsGuest reports whether the booking was made without an account
func (b *Booking) IsGuest() bool {
	return b.CustomerID == nil
}

// IsCustomer reports whether userID placed this booking
func (b *Booking) IsCustomer(userID uuid.UUID) bool {
	return b.CustomerID != nil && *b.CustomerID == userID
}

// Day renders the booking day in wire format
func (b *Booking) Day() string {
	return b.BookingDay.Format(BookingDayLayout)
}

// BookingService is the price snapshot of one service inside a booking
type BookingService struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uuid.UUID `json:"bookingId"`
	ServiceID      uuid.UUID `json:"serviceId"`
	ServiceName    string    `json:"serviceName"`
	Quantity       int       `json:"quantity"`
	PriceAtBooking float64   `json:"priceAtBooking"`
}

// BookingHistory is one audited status transition
type BookingHistory struct {
	ID        uuid.UUID     `json:"id"`
	BookingID uuid.UUID     `json:"bookingId"`
	OldStatus BookingStatus `json:"oldStatus"`
	NewStatus BookingStatus `json:"newStatus"`
	ChangedBy *uuid.UUID    `json:"changedBy,omitempty"`
	Notes     string        `json:"notes"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CreateBookingInput is the admission request. Guest fields are only read
// when the caller is not authenticated.
type CreateBookingInput struct {
	ServiceIDs    []uuid.UUID `json:"serviceIds"`
	BookingDay    string      `json:"bookingDay" binding:"required,datetime=2006-01-02"`
	CustomerName  string      `json:"customerName" binding:"max=100"`
	CustomerPhone string      `json:"customerPhone" binding:"max=20"`
	CustomerEmail string      `json:"customerEmail" binding:"omitempty,email"`
	Notes         string      `json:"notes" binding:"max=1000"`
}

// BookingFilter narrows a barbershop's booking list
type BookingFilter struct {
	Status BookingStatus
	Day    *time.Time
}

// BookingView is a booking as returned over HTTP
type BookingView struct {
	*Booking
	BookingDay   string `json:"bookingDay"`
	MerchantName string `json:"merchantName,omitempty"`
	StatusLabel  string `json:"statusLabel"`
	StatusClass  string `json:"statusClass"`
}

// NewBookingView decorates a booking with its display fields
func NewBookingView(b *Booking, merchantName string) *BookingView {
	return &BookingView{
		Booking:      b,
		BookingDay:   b.Day(),
		MerchantName: merchantName,
		StatusLabel:  b.Status.Label(),
		StatusClass:  b.Status.Class(),
	}
}
