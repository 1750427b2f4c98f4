package resilite

import (
	"context"
	"errors"
	"time"
)

// Options configure a Client. Path and Driver are required; everything else
// has a working zero value.
type Options struct {
	// Required
	Path   string
	Driver Driver

	// Cache enables memoized reads when set. Nil means every ExecuteQuery
	// hits the store.
	Cache *QueryCache

	// Retry applies to every unit of work the client runs. The zero value
	// means a single attempt.
	Retry RetryPolicy

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// InvalidateOnWrite drops all cached snapshots after a successful
	// write (Exec or ExecuteTransaction). Off by default; the source
	// behavior never invalidates.
	InvalidateOnWrite bool
}

// ErrNoPath is returned by New when Options.Path is empty.
var ErrNoPath = errors.New("resilite: path is required")

// Client wires the resilience stages together: retry wraps a fresh
// connection scope per attempt; reads optionally go through the cache, in
// which case a hit opens no connection at all and a miss runs under the
// cache's single-flight.
type Client struct {
	conns ConnManager
	cache *QueryCache
	retry RetryPolicy
	log   Logger
	hooks Hooks

	invalidateOnWrite bool
}

func New(opts Options) (*Client, error) {
	if opts.Driver == nil {
		return nil, ErrNilDriver
	}
	if opts.Path == "" {
		return nil, ErrNoPath
	}
	if opts.Retry.MaxRetries < 0 {
		return nil, ErrNegativeRetries
	}

	c := &Client{
		cache:             opts.Cache,
		retry:             opts.Retry,
		invalidateOnWrite: opts.InvalidateOnWrite,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.conns = ConnManager{Driver: opts.Driver, Path: opts.Path, Logger: c.log, Hooks: c.hooks}

	if c.retry.Notify == nil {
		c.retry.Notify = func(attempt int, delay time.Duration, err error) {
			c.hooks.RetryScheduled(attempt, delay, err)
			c.log.Debug("attempt failed; retry scheduled",
				Fields{"attempt": attempt, "delay": delay, "err": err})
		}
	}
	return c, nil
}

// ExecuteQuery runs a non-transactional read. With a cache configured the
// snapshot is served from cache when present; on a miss the query runs under
// retry with a fresh connection per attempt, and the result is cached.
func (c *Client) ExecuteQuery(ctx context.Context, q Query) (Rows, error) {
	run := func(ctx context.Context) (Rows, error) {
		return runRetry(c, ctx, func(ctx context.Context) (Rows, error) {
			return ConnValue(ctx, c.conns, func(conn Conn) (Rows, error) {
				return conn.Query(ctx, q)
			})
		})
	}
	if c.cache == nil {
		return run(ctx)
	}
	return c.cache.Fetch(ctx, q.Text, run)
}

// Exec runs a single non-transactional statement that returns no rows.
func (c *Client) Exec(ctx context.Context, q Query) (ExecResult, error) {
	res, err := runRetry(c, ctx, func(ctx context.Context) (ExecResult, error) {
		return ConnValue(ctx, c.conns, func(conn Conn) (ExecResult, error) {
			return conn.Exec(ctx, q)
		})
	})
	if err == nil {
		c.afterWrite()
	}
	return res, err
}

// ExecuteTransaction runs fn as one commit-or-rollback unit of work under
// retry. Every attempt opens its own connection and its own transaction, so
// fn must be safe to re-execute.
func (c *Client) ExecuteTransaction(ctx context.Context, fn func(Tx) error) error {
	_, err := runRetry(c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.conns.With(ctx, func(conn Conn) error {
			return InTransaction(ctx, conn, fn)
		})
	})
	if err == nil {
		c.afterWrite()
	}
	return err
}

// DispatchQueries fans out independent reads. Each query runs as its own
// unit of work with its own connection scope; see Dispatch for ordering and
// error semantics.
func (c *Client) DispatchQueries(ctx context.Context, queries []Query, opts ...DispatchOption) []Result[Rows] {
	tasks := make([]Operation[Rows], len(queries))
	for i, q := range queries {
		q := q
		tasks[i] = func(ctx context.Context) (Rows, error) {
			return c.ExecuteQuery(ctx, q)
		}
	}
	return Dispatch(ctx, tasks, opts...)
}

func (c *Client) afterWrite() {
	if c.invalidateOnWrite && c.cache != nil {
		c.cache.InvalidateAll()
	}
}

// runRetry applies the client's retry policy and reports retry events
// through the client's hooks and logger.
func runRetry[T any](c *Client, ctx context.Context, op Operation[T]) (T, error) {
	v, err := Retry(ctx, c.retry, op)
	var re *RetryExhaustedError
	if errors.As(err, &re) {
		c.hooks.RetryExhausted(re.Attempts, re.Last)
		c.log.Warn("retries exhausted", Fields{"attempts": re.Attempts, "err": re.Last})
	}
	return v, err
}
