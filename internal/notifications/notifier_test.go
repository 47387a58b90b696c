package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestUserChannel_RoundTrip(t *testing.T) {
	assert.Equal(t, "notifications:user:42", UserChannel(42))

	id, ok := parseUserChannel(UserChannel(42))
	require.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = parseUserChannel("notifications:user:abc")
	assert.False(t, ok)
	_, ok = parseUserChannel(AdminChannel)
	assert.False(t, ok)
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, NewEvent(EventRequestReviewed, nil)))
	assert.NoError(t, n.PublishAdmins(context.Background(), NewEvent(EventRequestCreated, nil)))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type received struct{ channel, payload string }
	got := make(chan received, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got <- received{channel, payload}
	}))

	require.NoError(t, n.PublishUser(ctx, 7, NewEvent(EventRequestReviewed, map[string]any{"id": 3})))
	require.NoError(t, n.PublishAdmins(ctx, NewEvent(EventRequestCreated, map[string]any{"id": 4})))

	seen := map[string]Event{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-got:
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(msg.payload), &ev))
			seen[msg.channel] = ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for notification")
		}
	}

	assert.Equal(t, EventRequestReviewed, seen[UserChannel(7)].Type)
	assert.Equal(t, EventRequestCreated, seen[AdminChannel].Type)
}
