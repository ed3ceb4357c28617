package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageReader is the slice of kafkago.Reader the consumer needs;
// tests substitute a fake.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Consumer ingests the append-only social-signal feed from Kafka. The
// upstream sentiment producer is opaque: records are validated, stored,
// and announced, never rescored.
type Consumer struct {
	reader  messageReader
	store   Store
	fanout  realtime.Publisher
	metrics *observability.Metrics
	logger  *zap.SugaredLogger
}

// NewConsumer creates a Kafka consumer for the social-signal topic.
func NewConsumer(brokers []string, topic, groupID string, store Store,
	fanout realtime.Publisher, metrics *observability.Metrics, logger *zap.SugaredLogger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader, store: store, fanout: fanout, metrics: metrics, logger: logger}
}

// newConsumerWithReader is the test seam.
func newConsumerWithReader(reader messageReader, store Store, fanout realtime.Publisher,
	metrics *observability.Metrics, logger *zap.SugaredLogger) *Consumer {
	return &Consumer{reader: reader, store: store, fanout: fanout, metrics: metrics, logger: logger}
}

// Run consumes until ctx is cancelled. Malformed records are dropped;
// broker errors back off exponentially instead of spinning.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()
	c.logger.Info("Social-signal consumer started")

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Social-signal consumer stopped")
				return
			}
			c.logger.Warnw("Failed to read social-signal message", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = 200 * time.Millisecond

		if err := c.ingest(ctx, msg.Value); err != nil {
			c.metrics.IngestErrors.Inc()
			c.logger.Warnw("Dropping social-signal record", "error", err)
		}
	}
}

func (c *Consumer) ingest(ctx context.Context, payload []byte) error {
	var rec models.SocialAnalytics
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	if rec.Keyword == "" {
		return fmt.Errorf("record has no keyword")
	}
	if rec.MentionCount < 0 {
		return fmt.Errorf("negative mention count %d", rec.MentionCount)
	}
	if rec.SentimentScore != nil && (*rec.SentimentScore < -1 || *rec.SentimentScore > 1) {
		return fmt.Errorf("sentiment score %f out of range", *rec.SentimentScore)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := c.store.Insert(ctx, &rec); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	c.metrics.SocialRecordsIngested.Inc()
	c.metrics.FanoutNotifications.WithLabelValues(realtime.TopicSocial).Inc()

	c.fanout.Publish(ctx, realtime.Notification{
		Topic:    realtime.TopicSocial,
		Event:    "ingested",
		EntityID: rec.ID.String(),
	})
	return nil
}
