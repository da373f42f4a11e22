package notify

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
)

// LocalPublisher hands events straight to the hub of this process.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Publish(ctx context.Context, event models.NotificationEvent) error {
	p.hub.Broadcast(event)
	return nil
}

// RedisPublisher sends events to a channel so every API replica can relay them.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "notify: encode")
	}
	return errors.Wrap(p.rdb.Publish(ctx, p.channel, payload).Err(), "notify: publish")
}

type Subscriber struct {
	ps  *redis.PubSub
	hub *Hub
	log logger.ILogger
}

// Subscribe returns once Redis has confirmed the subscription.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string, hub *Hub, log logger.ILogger) (*Subscriber, error) {
	ps := rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Wrap(err, "notify: subscribe")
	}
	log.Info("subscribed to notifications", logger.String("channel", channel))
	return &Subscriber{ps: ps, hub: hub, log: log}, nil
}

// Run relays messages to the hub until ctx is done.
func (s *Subscriber) Run(ctx context.Context) {
	defer s.ps.Close()

	ch := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.NotificationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.log.Warning("bad notification payload", logger.Error(err))
				continue
			}
			s.hub.Broadcast(event)
		}
	}
}
