// Package messaging delivers serialized user events over Redis pub/sub.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"userhub/internal/config"
	"userhub/internal/logger"
)

// Topic identifies one kind of user event independent of its channel name.
type Topic string

const (
	TopicCreated                 Topic = "created"
	TopicUpdated                 Topic = "updated"
	TopicAddedToOrganisation     Topic = "added_to_organisation"
	TopicRemovedFromOrganisation Topic = "removed_from_organisation"
	TopicDeleted                 Topic = "deleted"
)

// IUserEventPublisher publishes serialized event envelopes. Park stores an
// event whose publish failed so Replay can deliver it later.
type IUserEventPublisher interface {
	PublishCreated(ctx context.Context, payload string) error
	PublishUpdated(ctx context.Context, payload string) error
	PublishAddedToOrganisation(ctx context.Context, payload string) error
	PublishRemovedFromOrganisation(ctx context.Context, payload string) error
	PublishDeleted(ctx context.Context, payload string) error
	Park(ctx context.Context, topic Topic, payload string, cause error) error
	Replay(ctx context.Context, limit int) (int, error)
	Parked(ctx context.Context) (int64, error)
}

// ParkedEvent is the dead-letter list entry.
type ParkedEvent struct {
	Topic    Topic  `json:"topic"`
	Channel  string `json:"channel"`
	Payload  string `json:"payload"`
	Error    string `json:"error,omitempty"`
	ParkedAt string `json:"parked_at"`
}

// RedisPublisher implements IUserEventPublisher with PUBLISH and a Redis list
// as dead letter store.
type RedisPublisher struct {
	log      *logger.Logger
	rdb      *goredis.Client
	channels map[Topic]string
	dead     string
}

func NewRedisPublisher(log *logger.Logger, rdb *goredis.Client, ch config.ChannelsConfig) (*RedisPublisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channels := map[Topic]string{
		TopicCreated:                 ch.Created,
		TopicUpdated:                 ch.Updated,
		TopicAddedToOrganisation:     ch.AddedToOrganisation,
		TopicRemovedFromOrganisation: ch.RemovedFromOrganisation,
		TopicDeleted:                 ch.Deleted,
	}
	for topic, name := range channels {
		if name == "" {
			return nil, fmt.Errorf("no channel configured for %s events", topic)
		}
	}
	if ch.DeadLetter == "" {
		return nil, fmt.Errorf("no dead letter list configured")
	}
	return &RedisPublisher{
		log:      log.With("service", "RedisPublisher"),
		rdb:      rdb,
		channels: channels,
		dead:     ch.DeadLetter,
	}, nil
}

// Channels lists every event channel, e.g. for a subscriber.
func (p *RedisPublisher) Channels() []string {
	out := make([]string, 0, len(p.channels))
	for _, t := range []Topic{TopicCreated, TopicUpdated, TopicAddedToOrganisation, TopicRemovedFromOrganisation, TopicDeleted} {
		out = append(out, p.channels[t])
	}
	return out
}

func (p *RedisPublisher) PublishCreated(ctx context.Context, payload string) error {
	return p.Publish(ctx, TopicCreated, payload)
}

func (p *RedisPublisher) PublishUpdated(ctx context.Context, payload string) error {
	return p.Publish(ctx, TopicUpdated, payload)
}

func (p *RedisPublisher) PublishAddedToOrganisation(ctx context.Context, payload string) error {
	return p.Publish(ctx, TopicAddedToOrganisation, payload)
}

func (p *RedisPublisher) PublishRemovedFromOrganisation(ctx context.Context, payload string) error {
	return p.Publish(ctx, TopicRemovedFromOrganisation, payload)
}

func (p *RedisPublisher) PublishDeleted(ctx context.Context, payload string) error {
	return p.Publish(ctx, TopicDeleted, payload)
}

// Publish sends payload on the channel configured for topic.
func (p *RedisPublisher) Publish(ctx context.Context, topic Topic, payload string) error {
	channel, ok := p.channels[topic]
	if !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	p.log.Debug("event published", "channel", channel)
	return nil
}

func (p *RedisPublisher) Park(ctx context.Context, topic Topic, payload string, cause error) error {
	entry := ParkedEvent{
		Topic:    topic,
		Channel:  p.channels[topic],
		Payload:  payload,
		ParkedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := p.rdb.RPush(ctx, p.dead, raw).Err(); err != nil {
		return fmt.Errorf("park event on %s: %w", p.dead, err)
	}
	p.log.Warn("event parked", "topic", topic, "dead_letter", p.dead)
	return nil
}

// Replay republishes up to limit parked events in the order they were
// parked. It stops at the first failure and leaves that event at the head.
func (p *RedisPublisher) Replay(ctx context.Context, limit int) (int, error) {
	replayed := 0
	for limit <= 0 || replayed < limit {
		raw, err := p.rdb.LPop(ctx, p.dead).Result()
		if errors.Is(err, goredis.Nil) {
			return replayed, nil
		}
		if err != nil {
			return replayed, fmt.Errorf("pop %s: %w", p.dead, err)
		}

		var entry ParkedEvent
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			p.log.Error("dropping malformed parked event", "error", err)
			continue
		}
		if err := p.Publish(ctx, entry.Topic, entry.Payload); err != nil {
			if perr := p.rdb.LPush(ctx, p.dead, raw).Err(); perr != nil {
				p.log.Error("failed to requeue parked event", "error", perr)
			}
			return replayed, err
		}
		replayed++
	}
	return replayed, nil
}

// Parked returns the number of events waiting in the dead-letter list.
func (p *RedisPublisher) Parked(ctx context.Context) (int64, error) {
	return p.rdb.LLen(ctx, p.dead).Result()
}
