package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoggingBeforeInitIsSafe(t *testing.T) {
	log = nil
	once = sync.Once{}

	require.NotNil(t, GetLogger())
	Info(context.Background(), "no init yet")
	Sync()
}

func TestInitAndContextLogging(t *testing.T) {
	log = nil
	once = sync.Once{}
	Init("development")
	require.NotNil(t, GetLogger())

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	require.NotNil(t, WithContext(ctx))

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextVariants(t *testing.T) {
	Init("development")
	require.NotNil(t, WithContext(nil)) //nolint:staticcheck
	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	require.NotNil(t, WithContext(ctx))
}

func TestInitProduction(t *testing.T) {
	log = nil
	once = sync.Once{}
	Init("production")
	require.NotNil(t, GetLogger())
	Info(context.Background(), "production logger")
}
