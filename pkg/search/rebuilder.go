package search

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// rebuildState is the explicit lifecycle of a pending index rebuild.
type rebuildState int

const (
	stateIdle rebuildState = iota
	statePending
	stateRebuilding
	stateClosed
)

// Rebuilder coalesces bursts of post writes into one index rebuild. A
// notification arms a debounce timer; further notifications inside the
// window re-arm it, and one rebuild runs when the burst settles.
// Close cancels anything armed or running.
type Rebuilder struct {
	index *Index
	delay time.Duration
	log   *slog.Logger

	mu     sync.Mutex
	state  rebuildState
	timer  *time.Timer
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// dirty records a notification that arrived mid-rebuild; the
	// rebuild re-arms itself on completion so the write is not lost.
	dirty bool
}

func NewRebuilder(index *Index, delay time.Duration, log *slog.Logger) *Rebuilder {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Rebuilder{index: index, delay: delay, log: log}
}

// Notify signals that the post collection changed.
func (r *Rebuilder) Notify() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case stateClosed:
		return
	case stateRebuilding:
		r.dirty = true
		return
	case statePending:
		r.timer.Reset(r.delay)
		return
	case stateIdle:
		r.state = statePending
		r.timer = time.AfterFunc(r.delay, r.fire)
	}
}

// State returns the current lifecycle state. Test hook.
func (r *Rebuilder) State() rebuildState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Rebuilder) fire() {
	r.mu.Lock()
	if r.state != statePending {
		r.mu.Unlock()
		return
	}
	r.state = stateRebuilding
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()

		if err := r.index.Rebuild(ctx); err != nil {
			r.log.Warn("index rebuild failed", "error", err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.state == stateClosed {
			return
		}
		if r.dirty {
			r.dirty = false
			r.state = statePending
			r.timer = time.AfterFunc(r.delay, r.fire)
			return
		}
		r.state = stateIdle
	}()
}

// Close cancels any armed timer and in-flight rebuild, then waits for
// the worker to exit. The rebuilder is unusable afterwards.
func (r *Rebuilder) Close() {
	r.mu.Lock()
	if r.state == stateClosed {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.state = stateClosed
	r.mu.Unlock()

	r.wg.Wait()
}
