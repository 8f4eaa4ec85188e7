package broadcast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

// ErrSubscriberClosed is returned by NextEvent once a subscriber has been
// unregistered; callers tear the connection down.
var ErrSubscriberClosed = errors.New("stormeye: subscriber closed")

// DefaultKeepalive is the liveness-probe interval used when none is
// configured, matching what intermediary proxies tolerate.
const DefaultKeepalive = 20 * time.Second

// Subscriber is one live consumer of the broadcast stream: an unbounded FIFO
// queue plus an arrival timestamp. Owned exclusively by the hub.
type Subscriber struct {
	ID       string
	JoinedAt time.Time

	mu     sync.Mutex
	queue  []domain.Event
	signal chan struct{}
	closed bool
}

// enqueue appends the event and wakes a waiting reader. Reports false once
// the subscriber is closed so the hub can prune it.
func (s *Subscriber) enqueue(ev domain.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.queue = append(s.queue, ev)
	select {
	case s.signal <- struct{}{}:
	default:
	}
	return true
}

// pop removes the head of the queue, if any.
func (s *Subscriber) pop() (domain.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Event{}, false, ErrSubscriberClosed
	}
	if len(s.queue) == 0 {
		return domain.Event{}, false, nil
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true, nil
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	close(s.signal)
}

// Hub maintains the active subscriber set and fans every published event out
// to all of them. Publish never blocks on a slow or dead consumer; delivery
// is at-most-once, FIFO per subscriber.
type Hub struct {
	mu   sync.Mutex
	subs map[string]*Subscriber

	seq       atomic.Uint64
	keepalive time.Duration
	snapshot  func() domain.Event
	obs       ports.Observability
	now       func() time.Time
}

// New builds a hub. snapshot, when non-nil, produces the cold-start event a
// fresh subscriber receives before any live traffic.
func New(keepalive time.Duration, snapshot func() domain.Event, obs ports.Observability) *Hub {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	return &Hub{
		subs:      make(map[string]*Subscriber),
		keepalive: keepalive,
		snapshot:  snapshot,
		obs:       obs,
		now:       time.Now,
	}
}

// Register adds a new subscriber and immediately queues the current snapshot
// so the observer is synchronized without waiting for the next mutation. The
// snapshot is built and enqueued under the hub lock: publishes serialize on
// the same lock, so no live event can land ahead of it.
func (h *Hub) Register() *Subscriber {
	sub := &Subscriber{
		ID:       uuid.NewString(),
		JoinedAt: h.now(),
		signal:   make(chan struct{}, 1),
	}

	h.mu.Lock()
	if h.snapshot != nil {
		ev := h.snapshot()
		h.stamp(&ev)
		sub.enqueue(ev)
	}
	h.subs[sub.ID] = sub
	n := len(h.subs)
	h.mu.Unlock()
	if h.obs != nil {
		h.obs.SetGauge("stormeye_subscribers", float64(n))
	}
	return sub
}

// Unregister removes and closes a subscriber. Safe to call more than once
// and concurrently with automatic pruning.
func (h *Hub) Unregister(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, sub.ID)
	n := len(h.subs)
	h.mu.Unlock()

	sub.close()
	if h.obs != nil {
		h.obs.SetGauge("stormeye_subscribers", float64(n))
	}
}

// Publish stamps the event and enqueues it to every live subscriber.
// Subscribers whose queue no longer accepts events are pruned; the caller
// never sees a delivery failure.
func (h *Hub) Publish(ev domain.Event) {
	h.stamp(&ev)

	h.mu.Lock()
	var dead []*Subscriber
	for _, sub := range h.subs {
		if !sub.enqueue(ev) {
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		delete(h.subs, sub.ID)
	}
	n := len(h.subs)
	h.mu.Unlock()

	if h.obs != nil {
		h.obs.IncCounter("stormeye_events_published_total", 1)
		for _, sub := range dead {
			h.obs.RecordDeadSubscriber(sub.ID, ErrSubscriberClosed)
		}
		if len(dead) > 0 {
			h.obs.SetGauge("stormeye_subscribers", float64(n))
		}
	}
}

// NextEvent waits up to the keepalive interval for the subscriber's next
// event. On timeout it returns a synthesized keepalive envelope; on context
// cancellation or a closed subscriber it returns an error so the caller can
// distinguish liveness probing from teardown.
func (h *Hub) NextEvent(ctx context.Context, sub *Subscriber) (domain.Event, error) {
	for {
		ev, ok, err := sub.pop()
		if err != nil {
			return domain.Event{}, err
		}
		if ok {
			return ev, nil
		}

		timer := time.NewTimer(h.keepalive)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Event{}, ctx.Err()
		case _, open := <-sub.signal:
			timer.Stop()
			if !open {
				return domain.Event{}, ErrSubscriberClosed
			}
		case <-timer.C:
			return domain.Event{Type: domain.EventKeepalive, TS: h.now()}, nil
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) stamp(ev *domain.Event) {
	if ev.TS.IsZero() {
		ev.TS = h.now()
	}
	ev.Seq = h.seq.Add(1)
}
