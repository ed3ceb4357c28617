package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	"go.uber.org/zap"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// proxies.
const heartbeatInterval = 25 * time.Second

var validTopics = map[string]bool{
	realtime.TopicReports:  true,
	realtime.TopicSocial:   true,
	realtime.TopicSessions: true,
}

// EventHandler streams change notifications to clients over SSE.
type EventHandler struct {
	hub     *realtime.Hub
	metrics *observability.Metrics
	logger  *zap.SugaredLogger
}

// NewEventHandler creates a new event stream handler
func NewEventHandler(hub *realtime.Hub, metrics *observability.Metrics, logger *zap.SugaredLogger) *EventHandler {
	return &EventHandler{hub: hub, metrics: metrics, logger: logger}
}

// Stream handles GET /api/v1/events. The ?topics= query narrows the
// subscription; default is every topic. Each event is a change signal,
// not a diff: clients re-fetch state when woken.
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	topics := parseTopics(r.URL.Query().Get("topics"))
	if len(topics) == 0 {
		respondError(w, http.StatusBadRequest, "No valid topics requested")
		return
	}

	// Merge the per-topic feeds into a single channel for this client.
	merged := make(chan realtime.Notification, 8)
	var wg sync.WaitGroup
	subs := make([]*realtime.Subscription, 0, len(topics))
	for _, topic := range topics {
		sub := h.hub.Subscribe(topic)
		subs = append(subs, sub)
		wg.Add(1)
		go func(sub *realtime.Subscription) {
			defer wg.Done()
			for n := range sub.C() {
				select {
				case merged <- n:
				case <-r.Context().Done():
					return
				}
			}
		}(sub)
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		wg.Wait()
		h.metrics.EventSubscribers.Dec()
	}()
	h.metrics.EventSubscribers.Inc()

	// Headers go out after the subscriptions exist: a client that has
	// seen the response start will not miss signals published next.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case n := <-merged:
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Topic, payload)
			flusher.Flush()
		}
	}
}

func parseTopics(raw string) []string {
	if raw == "" {
		return []string{realtime.TopicReports, realtime.TopicSocial, realtime.TopicSessions}
	}
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if validTopics[t] {
			topics = append(topics, t)
		}
	}
	return topics
}
