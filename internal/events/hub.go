package events

import (
	"context"
	"errors"
	"sync"

	"communityhub/internal/observability"
)

const (
	// Max live subscribers per hub
	maxSubscribers = 1000
	// Events buffered per subscriber before it starts losing events
	subscriberBuffer = 64
)

var (
	ErrHubClosed = errors.New("event hub is closed")
	ErrHubFull   = errors.New("event hub subscriber limit reached")
)

// Hub fans events out to in-process subscribers such as websocket streams.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	closed bool
}

// NewHub returns an open hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a subscriber. The returned channel is closed by the
// cancel func or by Close, whichever comes first.
func (h *Hub) Subscribe() (<-chan Event, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, ErrHubClosed
	}
	if len(h.subs) >= maxSubscribers {
		return nil, nil, ErrHubFull
	}

	ch := make(chan Event, subscriberBuffer)
	h.subs[ch] = struct{}{}
	observability.EventSubscribers.Inc()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; !ok {
			return
		}
		delete(h.subs, ch)
		close(ch)
		observability.EventSubscribers.Dec()
	}
	return ch, cancel, nil
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			observability.EventsPublished.WithLabelValues(string(event.Subject), "dropped").Inc()
		}
	}
	return nil
}

// Close disconnects every subscriber. Later publishes are no-ops.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
		observability.EventSubscribers.Dec()
	}
	return nil
}

// Fanout publishes every event to each of its publishers in order. Nil entries
// are skipped.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
