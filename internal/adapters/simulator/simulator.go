// Package simulator drives periodic drift for the simulated nodes so the
// network stays visually alive between real ingests.
package simulator

import (
	"sync"
	"time"
)

// Ticker invokes a callback at a fixed interval. A non-positive interval
// disables it, which keeps the wiring unconditional at startup.
type Ticker struct {
	interval time.Duration
	tick     func()

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewTicker(interval time.Duration, tick func()) *Ticker {
	return &Ticker{interval: interval, tick: tick}
}

func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.interval <= 0 || t.tick == nil {
		return
	}
	t.started = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				t.tick()
			}
		}
	}()
}

func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.started = false
	stop := t.stop
	done := t.done
	t.mu.Unlock()

	close(stop)
	<-done
}
