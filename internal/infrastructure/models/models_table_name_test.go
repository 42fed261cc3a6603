package models

import (
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

func TestTableNames(t *testing.T) {
	if got := (BookingHistory{}).TableName(); got != "booking_histories" {
		t.Fatalf("unexpected BookingHistory table name: %s", got)
	}

	var cache sync.Map
	expected := map[string]interface{}{
		"booking_queue_counters": &BookingQueueCounter{},
		"booking_services":       &BookingService{},
		"booking_messages":       &BookingMessage{},
		"notifications":          &Notification{},
		"merchants":              &Merchant{},
	}
	for table, model := range expected {
		s, err := schema.Parse(model, &cache, schema.NamingStrategy{})
		if err != nil {
			t.Fatalf("parse %T: %v", model, err)
		}
		if s.Table != table {
			t.Fatalf("unexpected table for %T: %s", model, s.Table)
		}
	}
	if len(All()) != 10 {
		t.Fatalf("unexpected model count %d", len(All()))
	}
}
