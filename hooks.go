package resilite

import "time"

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the library calls them on hot paths.
// Wrap with hooks/async to move slow sinks off the caller's goroutine.
type Hooks interface {
	// An attempt failed and a retry is scheduled after delay.
	// attempt counts from 1.
	RetryScheduled(attempt int, delay time.Duration, err error)

	// The retry budget is spent; *RetryExhaustedError is about to surface.
	RetryExhausted(attempts int, last error)

	// A cache entry was deleted on read.
	// reason is one of "corrupt", "epoch_mismatch", "key_mismatch",
	// "decode_error".
	CacheSelfHeal(key, reason string)

	// A cache miss was collapsed into another in-flight execution of the
	// same key instead of running the operation again.
	CacheCollapsed(key string)

	// The backing store refused a Set (backpressure/admission policy).
	StoreSetRejected(key string)

	// Closing a connection failed after the wrapped operation had already
	// failed; the close error is dropped in favor of the operation error.
	ConnCloseDropped(path string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) RetryScheduled(int, time.Duration, error) {}
func (NopHooks) RetryExhausted(int, error)                {}
func (NopHooks) CacheSelfHeal(string, string)             {}
func (NopHooks) CacheCollapsed(string)                    {}
func (NopHooks) StoreSetRejected(string)                  {}
func (NopHooks) ConnCloseDropped(string, error)           {}
