package broadcast

import (
	"context"
	"testing"
	"time"

	"campusreq_backend/ws"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type nopDeliverer struct{}

func (nopDeliverer) Deliver(context.Context, ws.Frame) error { return nil }

func TestFrameCodec(t *testing.T) {
	frame := ws.NewFrame(ws.RequestUpdate("req-1"), ws.Notifications("dept-1"))

	payload, err := encodeFrame(frame)
	require.NoError(t, err)
	assert.Contains(t, payload, `"type":"request_update"`)

	decoded, err := decodeFrame(payload)
	require.NoError(t, err)
	assert.Equal(t, frame.Events, decoded.Events)
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := decodeFrame("not json")
	assert.Error(t, err)

	_, err = decodeFrame(`{"events":[]}`)
	assert.Error(t, err)
}

func TestInvalidRedisURL(t *testing.T) {
	_, err := NewRedisClient("http://nope", nil)
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestRelayRetriesWhenRedisIsDown(t *testing.T) {
	// nothing listens on port 1, so every subscribe attempt fails fast
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	relay := NewRedisRelay(rdb, "campusreq:events", nopDeliverer{}, zap.New(core))
	relay.retryMin = 10 * time.Millisecond
	relay.retryMax = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.NoError(t, relay.Run(ctx), "a broken relay must not stop the server")
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond, "Run returns only on cancellation")
	assert.GreaterOrEqual(t, logs.FilterMessage("redis subscription failed, retrying").Len(), 2)
}
