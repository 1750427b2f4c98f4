// Package resilite implements a composable resilience layer over a single-node
// relational store reachable by a local filesystem path (SQLite by default).
// It manages connection lifecycle, transactional units of work, bounded retry
// with pluggable backoff, memoized read results, and concurrent fan-out of
// independent queries.
//
// Components:
//   - Driver / Conn / Tx: the storage boundary. The default implementation
//     lives in the sqlite subpackage; tests and other engines can supply
//     their own.
//   - ConnManager.With / ConnValue: scoped connection acquisition. The connection is
//     closed exactly once on every exit path; no pooling, no reuse.
//   - InTransaction / TxValue: commit on success, rollback on error; the
//     original error always wins over a successful rollback.
//   - Retry: up to MaxRetries+1 attempts with a backoff schedule
//     (cenkalti/backoff); exhaustion surfaces as *RetryExhaustedError.
//   - QueryCache: process-level memoization keyed by normalized query text,
//     backed by a pluggable byte store (unbounded in-process map by default;
//     Ristretto, BigCache and Redis stores available). Concurrent misses on
//     one key collapse to a single execution.
//   - Dispatch: runs independent operations concurrently and returns one
//     slot per task in submission order; task failures are data, never
//     raised on behalf of a sibling.
//
// The pieces compose freely, but Client wires them the common way:
//
//	cache, _ := resilite.NewQueryCache(resilite.CacheOptions{})
//	db, _ := resilite.New(resilite.Options{
//	    Path:   "users.db",
//	    Driver: sqlite.Driver{},
//	    Cache:  cache,
//	    Retry:  resilite.RetryPolicy{MaxRetries: 3, Delay: time.Second},
//	})
//	rows, err := db.ExecuteQuery(ctx, resilite.Q("SELECT * FROM users"))
//
// Known hazard: the cache key is derived from query text only. Two queries
// with identical text but different bound parameters share one cache slot;
// the second caller receives the first caller's snapshot. See Query.CacheKey.
package resilite
