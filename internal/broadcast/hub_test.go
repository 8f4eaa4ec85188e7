package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
)

func snapshotFn() domain.Event {
	return domain.Event{Type: domain.EventHardwareUpdate, Data: "snapshot"}
}

func mustNext(t *testing.T, h *Hub, sub *Subscriber) domain.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := h.NextEvent(ctx, sub)
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	return ev
}

func TestColdStartSnapshotArrivesFirst(t *testing.T) {
	h := New(time.Second, snapshotFn, nil)

	h.Publish(domain.Event{Type: domain.EventStageState})

	sub := h.Register()
	defer h.Unregister(sub)
	h.Publish(domain.Event{Type: domain.EventManualStage})

	first := mustNext(t, h, sub)
	if first.Type != domain.EventHardwareUpdate || first.Data != "snapshot" {
		t.Fatalf("expected snapshot first, got %+v", first)
	}
	second := mustNext(t, h, sub)
	if second.Type != domain.EventManualStage {
		t.Fatalf("expected live event after snapshot, got %+v", second)
	}
}

func TestColdStartSnapshotFirstUnderConcurrentPublish(t *testing.T) {
	// A snapshot callback that takes real time, like one walking the node
	// registry, must not open a window for a live event to overtake it.
	h := New(time.Second, func() domain.Event {
		time.Sleep(2 * time.Millisecond)
		return domain.Event{Type: domain.EventStageState, Data: "snapshot"}
	}, nil)

	for i := 0; i < 20; i++ {
		stop := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					h.Publish(domain.Event{Type: domain.EventManualStage})
				}
			}
		}()

		sub := h.Register()
		first := mustNext(t, h, sub)
		close(stop)
		wg.Wait()
		h.Unregister(sub)

		if first.Type != domain.EventStageState || first.Data != "snapshot" {
			t.Fatalf("iteration %d: first delivered event %v, want the snapshot", i, first.Type)
		}
	}
}

func TestFanOutCompleteAndFIFO(t *testing.T) {
	h := New(time.Second, nil, nil)

	const k = 5
	subs := make([]*Subscriber, k)
	for i := range subs {
		subs[i] = h.Register()
		defer h.Unregister(subs[i])
	}

	h.Publish(domain.Event{Type: domain.EventHardwareUpdate, Node: "node0"})
	h.Publish(domain.Event{Type: domain.EventStageState})
	h.Publish(domain.Event{Type: domain.EventPredictionBlock})

	for i, sub := range subs {
		a := mustNext(t, h, sub)
		b := mustNext(t, h, sub)
		c := mustNext(t, h, sub)
		if a.Type != domain.EventHardwareUpdate || b.Type != domain.EventStageState || c.Type != domain.EventPredictionBlock {
			t.Fatalf("subscriber %d got events out of order: %v %v %v", i, a.Type, b.Type, c.Type)
		}
		if !(a.Seq < b.Seq && b.Seq < c.Seq) {
			t.Fatalf("subscriber %d sequence not monotone: %d %d %d", i, a.Seq, b.Seq, c.Seq)
		}
	}
}

func TestDeadSubscriberPruned(t *testing.T) {
	h := New(time.Second, nil, nil)

	alive := h.Register()
	defer h.Unregister(alive)
	dead := h.Register()
	dead.close()

	h.Publish(domain.Event{Type: domain.EventHardwareUpdate})

	if h.Len() != 1 {
		t.Fatalf("expected dead subscriber pruned, active=%d", h.Len())
	}
	if ev := mustNext(t, h, alive); ev.Type != domain.EventHardwareUpdate {
		t.Fatalf("live subscriber missed the event: %+v", ev)
	}
}

func TestKeepaliveOnTimeout(t *testing.T) {
	h := New(30*time.Millisecond, nil, nil)

	sub := h.Register()
	defer h.Unregister(sub)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	ev, err := h.NextEvent(ctx, sub)
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if ev.Type != domain.EventKeepalive {
		t.Fatalf("expected keepalive on timeout, got %v", ev.Type)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Fatalf("keepalive fired too early: %s", elapsed)
	}
	if ev.TS.IsZero() {
		t.Fatalf("keepalive must carry a timestamp")
	}
}

func TestCancellationIsNotKeepalive(t *testing.T) {
	h := New(time.Minute, nil, nil)

	sub := h.Register()
	defer h.Unregister(sub)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := h.NextEvent(ctx, sub); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	h := New(time.Second, nil, nil)

	sub := h.Register()
	h.Unregister(sub)
	h.Unregister(sub)
	h.Unregister(nil)

	if _, err := h.NextEvent(context.Background(), sub); !errors.Is(err, ErrSubscriberClosed) {
		t.Fatalf("expected ErrSubscriberClosed after unregister, got %v", err)
	}
	// publishing after teardown must not panic
	h.Publish(domain.Event{Type: domain.EventStageState})
}

func TestConcurrentPublishAndChurn(t *testing.T) {
	h := New(time.Second, snapshotFn, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Publish(domain.Event{Type: domain.EventHardwareUpdate})
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := h.Register()
				h.Unregister(sub)
			}
		}()
	}
	wg.Wait()

	if h.Len() != 0 {
		t.Fatalf("expected no subscribers after churn, got %d", h.Len())
	}
}

func TestUnregisterWakesBlockedReader(t *testing.T) {
	h := New(time.Minute, nil, nil)
	sub := h.Register()

	done := make(chan error, 1)
	go func() {
		_, err := h.NextEvent(context.Background(), sub)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	h.Unregister(sub)

	select {
	case err := <-done:
		if !errors.Is(err, ErrSubscriberClosed) {
			t.Fatalf("expected ErrSubscriberClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("NextEvent did not return after unregister")
	}
}
