package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := NewRedisBroker(ctx, Config{URL: "redis://" + mr.Addr()}, nil)
	require.NoError(t, err)
	defer broker.Close()

	msgs, err := broker.Subscribe(ctx, "dashboard.events")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, "dashboard.events", map[string]string{"type": "appointment.deleted"}))

	select {
	case raw := <-msgs:
		var got map[string]string
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "appointment.deleted", got["type"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	assert.NoError(t, broker.Ping(ctx))
}

func TestNewRedisBrokerFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisBroker(context.Background(), Config{URL: "redis://" + addr, MaxRetries: -1}, nil)
	assert.Error(t, err)
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "::nope"}, nil)
	assert.Error(t, err)
}
