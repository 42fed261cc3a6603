package usecases

import (
	"context"
	"time"
)

// Broadcaster pushes a JSON payload to every socket subscribed to topic
type Broadcaster interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Mailer delivers a plain-text e-mail
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a text message to a phone number
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

var timeNow = time.Now

// today returns the current calendar day in loc as a UTC midnight
func today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now := timeNow().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
