package messaging

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"userhub/internal/event"
	"userhub/internal/logger"
)

// Subscriber forwards decoded envelopes from Redis channels to a callback.
type Subscriber struct {
	log      *logger.Logger
	rdb      *goredis.Client
	channels []string
}

func NewSubscriber(log *logger.Logger, rdb *goredis.Client, channels ...string) *Subscriber {
	return &Subscriber{log: log.With("service", "Subscriber"), rdb: rdb, channels: channels}
}

// Start subscribes and returns once the subscription is confirmed. Messages
// are delivered on a separate goroutine until ctx is done.
func (s *Subscriber) Start(ctx context.Context, onEvent func(channel string, e *event.Envelope)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	if len(s.channels) == 0 {
		return fmt.Errorf("no channels to subscribe to")
	}

	sub := s.rdb.Subscribe(ctx, s.channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				e, err := event.Deserialize(m.Payload)
				if err != nil {
					s.log.Warn("bad event payload", "channel", m.Channel, "error", err)
					continue
				}
				onEvent(m.Channel, e)
			}
		}
	}()
	return nil
}
