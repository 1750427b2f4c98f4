// Package sloghooks emits resilite hook events through log/slog, with
// optional sampling for the hot ones. Cache keys can be redacted; SQL text
// may contain literals the log sink should not see.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/resilite"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery      uint64
	RetryEvery         uint64
	CacheCollapseEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	retryCtr    atomic.Uint64
	collapseCtr atomic.Uint64
}

var _ resilite.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) RetryScheduled(attempt int, delay time.Duration, err error) {
	if h.l == nil || !sample(h.opts.RetryEvery, &h.retryCtr) {
		return
	}
	h.l.Debug("resilite.retry_scheduled",
		"attempt", attempt,
		"delay", delay,
		"err", err)
}

func (h *Hooks) RetryExhausted(attempts int, last error) {
	if h.l == nil {
		return
	}
	h.l.Warn("resilite.retry_exhausted",
		"attempts", attempts,
		"err", last)
}

func (h *Hooks) CacheSelfHeal(key, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("resilite.cache_self_heal",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) CacheCollapsed(key string) {
	if h.l == nil || !sample(h.opts.CacheCollapseEvery, &h.collapseCtr) {
		return
	}
	h.l.Debug("resilite.cache_collapsed",
		"key", h.redact(key))
}

func (h *Hooks) StoreSetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("resilite.store_set_rejected",
		"key", h.redact(key))
}

func (h *Hooks) ConnCloseDropped(path string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("resilite.conn_close_dropped",
		"path", path,
		"err", err)
}
