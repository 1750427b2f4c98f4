package resilite

import (
	"context"
	"errors"
)

// Driver opens storage sessions. Implementations wrap open failures in
// *ConnectionError and statement failures in *QueryError; commit, rollback
// and close return the engine's error untouched - the scope helpers in this
// package own that classification.
type Driver interface {
	Open(ctx context.Context, path string) (Conn, error)
}

// Conn is one storage session. A Conn is exclusively owned by the scope that
// opened it and must never be shared across concurrent tasks; the engine is
// not assumed safe for concurrent use on one handle.
type Conn interface {
	Query(ctx context.Context, q Query) (Rows, error)
	Exec(ctx context.Context, q Query) (ExecResult, error)
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is an open transaction on a Conn. Exactly one of Commit or Rollback is
// called, once.
type Tx interface {
	Query(ctx context.Context, q Query) (Rows, error)
	Exec(ctx context.Context, q Query) (ExecResult, error)
	Commit() error
	Rollback() error
}

// ErrNilDriver is returned when a connection scope is entered without a Driver.
var ErrNilDriver = errors.New("resilite: driver is required")

// ConnManager scopes connection acquisition to a driver and path.
// The zero value is unusable; Driver and Path are required. Logger and Hooks
// are optional.
type ConnManager struct {
	Driver Driver
	Path   string
	Logger Logger
	Hooks  Hooks
}

func (m ConnManager) logger() Logger {
	return coalesce[Logger](m.Logger, NopLogger{})
}

func (m ConnManager) hooks() Hooks {
	return coalesce[Hooks](m.Hooks, NopHooks{})
}

// ConnValue opens a connection, runs fn with it, and closes the connection
// exactly once on every exit path.
//
//   - If the open fails, fn never runs and no close is attempted.
//   - If fn fails, the connection is closed best-effort and fn's error is
//     returned unchanged; a close failure on this path is dropped and
//     reported through Hooks.ConnCloseDropped.
//   - If fn succeeds but the close fails, the close failure is returned as
//     a *ConnectionError.
//
// Nested calls each open an independent connection; there is no pooling.
func ConnValue[T any](ctx context.Context, m ConnManager, fn func(Conn) (T, error)) (T, error) {
	var zero T
	if m.Driver == nil {
		return zero, ErrNilDriver
	}
	conn, err := m.Driver.Open(ctx, m.Path)
	if err != nil {
		var ce *ConnectionError
		if !errors.As(err, &ce) {
			err = &ConnectionError{Op: "open", Path: m.Path, Err: err}
		}
		return zero, err
	}
	v, ferr := fn(conn)
	cerr := conn.Close()
	if ferr != nil {
		if cerr != nil {
			m.hooks().ConnCloseDropped(m.Path, cerr)
			m.logger().Warn("close error dropped in favor of operation error",
				Fields{"path": m.Path, "err": cerr})
		}
		return zero, ferr
	}
	if cerr != nil {
		return zero, &ConnectionError{Op: "close", Path: m.Path, Err: cerr}
	}
	return v, nil
}

// With is ConnValue for operations with no result value.
func (m ConnManager) With(ctx context.Context, fn func(Conn) error) error {
	_, err := ConnValue(ctx, m, func(conn Conn) (struct{}, error) {
		return struct{}{}, fn(conn)
	})
	return err
}
