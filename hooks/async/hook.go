// Package asynchook decouples hook sinks from the caller's goroutine.
// Events are queued to a small worker pool; when the queue is full the
// event is dropped rather than blocking a query path.
//
// Usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	db, _ := resilite.New(resilite.Options{..., Hooks: hooks})
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/resilite"
)

type Hooks struct {
	inner resilite.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ resilite.Hooks = (*Hooks)(nil)

func New(inner resilite.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) RetryScheduled(attempt int, delay time.Duration, err error) {
	h.try(func() { h.inner.RetryScheduled(attempt, delay, err) })
}

func (h *Hooks) RetryExhausted(attempts int, last error) {
	h.try(func() { h.inner.RetryExhausted(attempts, last) })
}

func (h *Hooks) CacheSelfHeal(key, reason string) {
	h.try(func() { h.inner.CacheSelfHeal(key, reason) })
}

func (h *Hooks) CacheCollapsed(key string) {
	h.try(func() { h.inner.CacheCollapsed(key) })
}

func (h *Hooks) StoreSetRejected(key string) {
	h.try(func() { h.inner.StoreSetRejected(key) })
}

func (h *Hooks) ConnCloseDropped(path string, err error) {
	h.try(func() { h.inner.ConnCloseDropped(path, err) })
}
