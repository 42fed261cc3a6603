package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBookingStatus_Display(t *testing.T) {
	cases := map[BookingStatus][2]string{
		BookingStatusPending:   {"Pending", "bg-warning text-dark"},
		BookingStatusConfirmed: {"Confirmed", "bg-success text-white"},
		BookingStatusCompleted: {"Completed", "bg-info text-white"},
		BookingStatusCancelled: {"Cancelled", "bg-danger text-white"},
		BookingStatusNoShow:    {"No show", "bg-secondary text-white"},
	}
	for status, want := range cases {
		if got := status.Label(); got != want[0] {
			t.Fatalf("%s label: expected %q got %q", status, want[0], got)
		}
		if got := status.Class(); got != want[1] {
			t.Fatalf("%s class: expected %q got %q", status, want[1], got)
		}
		if !status.Valid() {
			t.Fatalf("%s should be valid", status)
		}
	}

	unknown := BookingStatus("archived")
	if unknown.Valid() {
		t.Fatal("unknown status should not be valid")
	}
	if got := unknown.Class(); got != "bg-secondary text-white" {
		t.Fatalf("unexpected fallback class %q", got)
	}
}

func TestBooking_Identity(t *testing.T) {
	customer := uuid.New()
	b := &Booking{CustomerID: &customer, BookingDay: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)}
	if b.IsGuest() {
		t.Fatal("booking with customer should not be guest")
	}
	if !b.IsCustomer(customer) || b.IsCustomer(uuid.New()) {
		t.Fatal("IsCustomer mismatch")
	}
	if b.Day() != "2026-03-09" {
		t.Fatalf("unexpected day %s", b.Day())
	}

	guest := &Booking{}
	if !guest.IsGuest() || guest.IsCustomer(customer) {
		t.Fatal("guest booking identity mismatch")
	}
}

func TestTopicsAndPayloads(t *testing.T) {
	id := uuid.MustParse("0190a4a8-1111-7000-8000-000000000001")
	if got := MerchantTopic(id); got != "barbershop_"+id.String() {
		t.Fatalf("unexpected merchant topic %s", got)
	}
	if got := ChatTopic(id); got != "chat_"+id.String() {
		t.Fatalf("unexpected chat topic %s", got)
	}

	b := &Booking{ID: id, Status: BookingStatusConfirmed, QueueNumber: 3}
	p := NewTurnUpdatePayload(b, 3)
	if p.Type != PayloadBookingTurnUpdate || p.Status != "Confirmed" || p.StatusClass != "bg-success text-white" || p.CurrentTurnNumber != 3 {
		t.Fatalf("unexpected payload %+v", p)
	}

	msg := &BookingMessage{
		SenderID:   id,
		SenderName: "Omar",
		Message:    "hi",
		CreatedAt:  time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC),
	}
	chat := NewChatMessagePayload(msg, nil)
	if chat.CreatedAt != "09/03/2026 14:05" || chat.Sender != "Omar" || chat.Type != PayloadChatMessage {
		t.Fatalf("unexpected chat payload %+v", chat)
	}
}

func TestNewBookingView(t *testing.T) {
	b := &Booking{Status: BookingStatusNoShow, BookingDay: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	v := NewBookingView(b, "Fade Factory")
	if v.BookingDay != "2026-01-02" || v.StatusLabel != "No show" || v.MerchantName != "Fade Factory" {
		t.Fatalf("unexpected view %+v", v)
	}
}
