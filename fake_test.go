package resilite

import (
	"context"
	"errors"
	"sync"
)

// fakeDriver is an in-memory storage boundary for tests. All counters are
// guarded by mu so dispatch tests can hammer it concurrently.
type fakeDriver struct {
	mu     sync.Mutex
	opens  int
	closes int

	failOpens int   // fail this many opens before succeeding
	openErr   error // error for failed opens; defaults to "open failed"

	closeErr error

	queryFn func(ctx context.Context, q Query) (Rows, error)
	execFn  func(ctx context.Context, q Query) (ExecResult, error)

	beginErr    error
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
}

var _ Driver = (*fakeDriver)(nil)

func (d *fakeDriver) Open(ctx context.Context, path string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.failOpens > 0 {
		d.failOpens--
		err := d.openErr
		if err == nil {
			err = errors.New("open failed")
		}
		return nil, &ConnectionError{Op: "open", Path: path, Err: err}
	}
	return &fakeConn{d: d}, nil
}

func (d *fakeDriver) counts() (opens, closes, commits, rollbacks int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.closes, d.commits, d.rollbacks
}

type fakeConn struct {
	d      *fakeDriver
	closed int
}

var _ Conn = (*fakeConn)(nil)

func (c *fakeConn) Query(ctx context.Context, q Query) (Rows, error) {
	if c.d.queryFn != nil {
		return c.d.queryFn(ctx, q)
	}
	return nil, nil
}

func (c *fakeConn) Exec(ctx context.Context, q Query) (ExecResult, error) {
	if c.d.execFn != nil {
		return c.d.execFn(ctx, q)
	}
	return ExecResult{}, nil
}

func (c *fakeConn) Begin(ctx context.Context) (Tx, error) {
	if c.d.beginErr != nil {
		return nil, c.d.beginErr
	}
	return &fakeTx{d: c.d}, nil
}

func (c *fakeConn) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.closed++
	c.d.closes++
	return c.d.closeErr
}

type fakeTx struct {
	d *fakeDriver
}

var _ Tx = (*fakeTx)(nil)

func (t *fakeTx) Query(ctx context.Context, q Query) (Rows, error) {
	if t.d.queryFn != nil {
		return t.d.queryFn(ctx, q)
	}
	return nil, nil
}

func (t *fakeTx) Exec(ctx context.Context, q Query) (ExecResult, error) {
	if t.d.execFn != nil {
		return t.d.execFn(ctx, q)
	}
	return ExecResult{}, nil
}

func (t *fakeTx) Commit() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.commits++
	return t.d.commitErr
}

func (t *fakeTx) Rollback() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.rollbacks++
	return t.d.rollbackErr
}
