package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/config"
	"userhub/internal/event"
	"userhub/internal/logger"
)

func setup(t *testing.T) (*miniredis.Miniredis, *goredis.Client, *RedisPublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pub, err := NewRedisPublisher(logger.Nop(), rdb, config.New().Channels)
	require.NoError(t, err)
	return mr, rdb, pub
}

type received struct {
	mu     sync.Mutex
	events map[string][]*event.Envelope
	notify chan struct{}
}

func newReceived() *received {
	return &received{events: map[string][]*event.Envelope{}, notify: make(chan struct{}, 16)}
}

func (r *received) add(channel string, e *event.Envelope) {
	r.mu.Lock()
	r.events[channel] = append(r.events[channel], e)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *received) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.notify:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
}

func serialized(t *testing.T, name string) string {
	t.Helper()
	e, err := event.New(name, event.TypeUser, "11111111-1111-1111-1111-111111111111", map[string]any{"k": "v"})
	require.NoError(t, err)
	s, err := e.Serialize()
	require.NoError(t, err)
	return s
}

func TestPublishAndSubscribe(t *testing.T) {
	_, rdb, pub := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := newReceived()
	sub := NewSubscriber(logger.Nop(), rdb, pub.Channels()...)
	require.NoError(t, sub.Start(ctx, got.add))

	require.NoError(t, pub.PublishCreated(ctx, serialized(t, event.UserCreated)))
	require.NoError(t, pub.PublishRemovedFromOrganisation(ctx, serialized(t, event.UserRemovedFromOrganisation)))
	got.wait(t, 2)

	got.mu.Lock()
	defer got.mu.Unlock()
	require.Len(t, got.events[config.DefaultChannelCreated], 1)
	assert.Equal(t, event.UserCreated, got.events[config.DefaultChannelCreated][0].Name)
	require.Len(t, got.events[config.DefaultChannelRemoved], 1)
	assert.Empty(t, got.events[config.DefaultChannelAdded])
}

func TestPublishUnknownTopic(t *testing.T) {
	_, _, pub := setup(t)
	assert.Error(t, pub.Publish(context.Background(), Topic("nope"), "{}"))
}

func TestParkAndReplay(t *testing.T) {
	_, rdb, pub := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, pub.Park(ctx, TopicUpdated, serialized(t, event.UserUpdated), assert.AnError))
	require.NoError(t, pub.Park(ctx, TopicDeleted, serialized(t, event.UserDeleted), nil))

	n, err := pub.Parked(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got := newReceived()
	require.NoError(t, NewSubscriber(logger.Nop(), rdb, pub.Channels()...).Start(ctx, got.add))

	replayed, err := pub.Replay(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)
	got.wait(t, 1)

	replayed, err = pub.Replay(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)
	got.wait(t, 1)

	n, err = pub.Parked(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Len(t, got.events[config.DefaultChannelUpdated], 1)
	assert.Len(t, got.events[config.DefaultChannelDeleted], 1)
}

func TestPublishFailsWhenRedisDown(t *testing.T) {
	mr, _, pub := setup(t)
	mr.Close()
	assert.Error(t, pub.PublishUpdated(context.Background(), "{}"))
}

func TestSubscriberRequiresCallback(t *testing.T) {
	_, rdb, pub := setup(t)
	assert.Error(t, NewSubscriber(logger.Nop(), rdb, pub.Channels()...).Start(context.Background(), nil))
	assert.Error(t, NewSubscriber(logger.Nop(), rdb).Start(context.Background(), func(string, *event.Envelope) {}))
}

func TestNewRedisPublisherRequiresChannels(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: miniredis.RunT(t).Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ch := config.New().Channels
	ch.Deleted = ""
	_, err := NewRedisPublisher(logger.Nop(), rdb, ch)
	assert.ErrorContains(t, err, "deleted")

	ch = config.New().Channels
	ch.DeadLetter = ""
	_, err = NewRedisPublisher(logger.Nop(), rdb, ch)
	assert.ErrorContains(t, err, "dead letter")
}
