package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitInvalidURL(t *testing.T) {
	err := Init("://invalid-url", "")
	assert.Error(t, err)
}

func TestInitUnreachable(t *testing.T) {
	err := Init("redis://127.0.0.1:1", "")
	assert.Error(t, err)
}

func TestInitWithMiniredis(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.RequireAuth("secret")

	require.NoError(t, Init("redis://"+srv.Addr(), "secret"))
	require.NotNil(t, GetClient())
}

func TestPublishAndPSubscribe(t *testing.T) {
	srv := miniredis.RunT(t)
	SetClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := PSubscribe(ctx, "barberq:*")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, Publish(ctx, "barberq:chat_1", "hello"))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "barberq:chat_1", msg.Channel)
	assert.Equal(t, "hello", msg.Payload)
}

func TestSetNX(t *testing.T) {
	srv := miniredis.RunT(t)
	SetClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	ctx := context.Background()

	ok, err := SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryLock(t *testing.T) {
	srv := miniredis.RunT(t)
	SetClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	ctx := context.Background()

	ok, err := TryLock(ctx, "job", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, srv.Exists("job"))

	ok, err = TryLock(ctx, "job", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	srv.FastForward(2 * time.Hour)
	ok, err = TryLock(ctx, "job", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
