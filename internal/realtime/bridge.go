package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisChannel carries notification envelopes between instances.
const redisChannel = "oceanguard:events"

// envelope wraps a notification with its origin so an instance can skip
// messages it published itself.
type envelope struct {
	Origin       string       `json:"origin"`
	Notification Notification `json:"notification"`
}

// Bridge fans notifications out to the local hub and across instances
// over Redis pub/sub. It degrades to hub-only delivery when Redis is
// unreachable: local observers must never lose signals because of an
// upstream outage.
type Bridge struct {
	hub        *Hub
	rdb        *redis.Client
	instanceID string
	logger     *zap.SugaredLogger
}

// NewBridge creates a bridge over the given hub. rdb may be nil, in
// which case the bridge is local-only (demo mode).
func NewBridge(hub *Hub, rdb *redis.Client, logger *zap.SugaredLogger) *Bridge {
	return &Bridge{
		hub:        hub,
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

// Publish delivers n locally and broadcasts it to peer instances.
func (b *Bridge) Publish(ctx context.Context, n Notification) {
	b.hub.Publish(ctx, n)

	if b.rdb == nil {
		return
	}
	payload, err := json.Marshal(envelope{Origin: b.instanceID, Notification: n})
	if err != nil {
		b.logger.Errorw("Failed to encode notification", "error", err)
		return
	}
	if err := b.rdb.Publish(ctx, redisChannel, payload).Err(); err != nil {
		b.logger.Warnw("Failed to broadcast notification, local delivery only",
			"topic", n.Topic, "error", err)
	}
}

// Run consumes peer notifications until ctx is cancelled. Returns
// immediately when the bridge is local-only.
func (b *Bridge) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}

	pubsub := b.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Fan-out bridge stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warnw("Dropping malformed peer notification", "error", err)
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			b.hub.Publish(ctx, env.Notification)
		}
	}
}
