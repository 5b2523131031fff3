package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"peerlend/internal/store"
	"peerlend/internal/websocket"
)

type publishedEvent struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type recordingHub struct {
	mu          sync.Mutex
	updates     []websocket.TrustScoreUpdate
	subscribers map[string][]func(websocket.TrustScoreUpdate)
}

func (h *recordingHub) BroadcastTrustScore(update websocket.TrustScoreUpdate) {
	h.mu.Lock()
	h.updates = append(h.updates, update)
	subscribers := h.subscribers[update.UserID]
	h.mu.Unlock()
	for _, deliver := range subscribers {
		deliver(update)
	}
}

func (h *recordingHub) subscribe(userID string, deliver func(websocket.TrustScoreUpdate)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers == nil {
		h.subscribers = make(map[string][]func(websocket.TrustScoreUpdate))
	}
	h.subscribers[userID] = append(h.subscribers[userID], deliver)
}

func (h *recordingHub) snapshot() []websocket.TrustScoreUpdate {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]websocket.TrustScoreUpdate(nil), h.updates...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(millis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(millis)
}

type testService struct {
	*LedgerService
	publisher *recordingPublisher
	hub       *recordingHub
	clock     *fakeClock
}

func newTestService(t *testing.T, opts ...Option) testService {
	t.Helper()
	publisher := &recordingPublisher{}
	hub := &recordingHub{}
	clock := &fakeClock{now: time.UnixMilli(1_000)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	service := NewLedgerService(store.NewContractStore(), store.NewTransactionStore(), store.NewTrustScoreStore(), publisher, hub, nil, opts...)
	return testService{LedgerService: service, publisher: publisher, hub: hub, clock: clock}
}
