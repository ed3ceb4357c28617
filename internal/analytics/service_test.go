package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStore wraps a Store and fails reads on demand.
type failingStore struct {
	Store
	fail bool
}

func (f *failingStore) ListRecent(ctx context.Context, limit int) ([]models.SocialAnalytics, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	return f.Store.ListRecent(ctx, limit)
}

func TestSummary_ServesLastKnownGoodWhenStoreIsDown(t *testing.T) {
	inner := NewMemoryStore()
	store := &failingStore{Store: inner}
	svc := NewService(store, zap.NewNop().Sugar())

	require.NoError(t, inner.Insert(context.Background(), &models.SocialAnalytics{
		ID: uuid.New(), Keyword: "tsunami", MentionCount: 7,
		SentimentScore: score(0.6), CreatedAt: time.Now(),
	}))

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 7, summary.TotalMentions)

	store.fail = true

	summary, cached, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 7, summary.TotalMentions)
}

func TestSummary_NoCacheAndStoreDownIsAnError(t *testing.T) {
	store := &failingStore{Store: NewMemoryStore(), fail: true}
	svc := NewService(store, zap.NewNop().Sugar())

	_, _, err := svc.Summary(context.Background())
	assert.Error(t, err)
}

func TestRecent_DefaultsAndCapsLimit(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, zap.NewNop().Sugar())

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Insert(context.Background(), &models.SocialAnalytics{
			ID: uuid.New(), Keyword: "waves", CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 20)

	recent, err = svc.Recent(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, recent, 25)
}

// --- ingest ---

type fakeReader struct {
	msgs []kafkago.Message
	idx  int
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	if f.idx >= len(f.msgs) {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumer_IngestsAndAnnouncesValidRecords(t *testing.T) {
	store := NewMemoryStore()
	hub := realtime.NewHub(zap.NewNop().Sugar())
	sub := hub.Subscribe(realtime.TopicSocial)
	defer sub.Unsubscribe()

	reader := &fakeReader{msgs: []kafkago.Message{
		{Value: []byte(`{"keyword":"tsunami","mention_count":4,"sentiment_score":-0.3,"location":"Chennai"}`)},
		{Value: []byte(`not json`)},
		{Value: []byte(`{"keyword":"","mention_count":1}`)},
		{Value: []byte(`{"keyword":"cyclone","mention_count":-2}`)},
		{Value: []byte(`{"keyword":"surge","mention_count":1,"sentiment_score":3.5}`)},
	}}
	c := newConsumerWithReader(reader, store, hub, observability.NewMetricsForTesting(), zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c.Run(ctx)

	records, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tsunami", records[0].Keyword)
	assert.NotEqual(t, uuid.Nil, records[0].ID)
	assert.False(t, records[0].CreatedAt.IsZero())

	select {
	case n := <-sub.C():
		assert.Equal(t, realtime.TopicSocial, n.Topic)
		assert.Equal(t, "ingested", n.Event)
	default:
		t.Fatal("no fan-out notification for ingested record")
	}
}
