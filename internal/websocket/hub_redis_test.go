package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedisHub(t *testing.T, addr string) *Hub {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := NewHub(rdb, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestHubRelaysProgressAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	holder := startRedisHub(t, mr.Addr())
	poller := startRedisHub(t, mr.Addr())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(redisChannel)[redisChannel] == 2
	}, time.Second, 5*time.Millisecond)

	browser := &Client{Hub: holder, Channel: "job-1", Send: make(chan []byte, 4)}
	require.True(t, holder.subscribe(browser))
	require.Eventually(t, func() bool { return holder.listeners("job-1") == 1 }, time.Second, 5*time.Millisecond)

	poller.Notify(dto.ProgressFrame{Channel: "job-1", Data: dto.ProgressFrameData{Status: "pending", Attempt: 3, MaxAttempts: 10, Percent: 30}})

	select {
	case raw := <-browser.Send:
		var frame dto.ProgressFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, "job-1", frame.Channel)
		assert.Equal(t, 30, frame.Data.Percent)
	case <-time.After(2 * time.Second):
		t.Fatal("frame did not cross instances")
	}
	assert.Equal(t, 0, poller.listeners("job-1"))
}

func TestHubWithRedisDeliversLocalFramesOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	hub := startRedisHub(t, mr.Addr())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(redisChannel)[redisChannel] == 1
	}, time.Second, 5*time.Millisecond)

	c := &Client{Hub: hub, Channel: "job-2", Send: make(chan []byte, 4)}
	require.True(t, hub.subscribe(c))
	require.Eventually(t, func() bool { return hub.listeners("job-2") == 1 }, time.Second, 5*time.Millisecond)

	hub.Notify(dto.ProgressFrame{Channel: "job-2"})

	require.Eventually(t, func() bool { return len(c.Send) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, c.Send, 1)
}

func TestHubFallsBackToLocalDeliveryWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	hub := NewHub(rdb, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	c := &Client{Hub: hub, Channel: "job-3", Send: make(chan []byte, 4)}
	require.True(t, hub.subscribe(c))
	require.Eventually(t, func() bool { return hub.listeners("job-3") == 1 }, time.Second, 5*time.Millisecond)

	mr.Close()
	hub.Notify(dto.ProgressFrame{Channel: "job-3"})

	assert.Len(t, c.Send, 1)
}
