package redis_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/map-of-pi/mapofpi/pkg/redis"
)

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	assert.EqualError(t, redis.ErrEmptyConnectionURL, "empty redis connection URL")

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
}

func TestConnect_Server(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redis.Healthcheck(client)(context.Background()))
}

type pingerFunc func(ctx context.Context) *goredis.StatusCmd

func (f pingerFunc) Ping(ctx context.Context) *goredis.StatusCmd { return f(ctx) }

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ok := redis.Healthcheck(pingerFunc(func(context.Context) *goredis.StatusCmd {
		return goredis.NewStatusResult("PONG", nil)
	}))
	assert.NoError(t, ok(context.Background()))

	boom := errors.New("boom")
	failing := redis.Healthcheck(pingerFunc(func(context.Context) *goredis.StatusCmd {
		return goredis.NewStatusResult("", boom)
	}))
	err := failing(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, boom)
}
