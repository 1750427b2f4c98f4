// Package sqlite implements the resilite storage boundary on database/sql
// with mattn/go-sqlite3.
//
// One resilite connection scope maps to one SQLite session: Open pins the
// database/sql pool to a single underlying connection, so a Conn is never
// shared state in disguise. The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - a busy timeout for lock contention (default 5s)
//   - foreign key enforcement
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/unkn0wn-root/resilite"
)

// Driver opens SQLite sessions. The zero value is ready to use.
type Driver struct {
	// BusyTimeout bounds how long a statement waits on a locked database.
	// 0 means 5 seconds.
	BusyTimeout time.Duration

	DisableWAL         bool
	DisableForeignKeys bool
}

var _ resilite.Driver = Driver{}

func (d Driver) Open(ctx context.Context, path string) (resilite.Conn, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &resilite.ConnectionError{Op: "open", Path: path, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &resilite.ConnectionError{Op: "open", Path: path, Err: err}
	}

	// SQLite supports one writer at a time; a Conn is one session.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := d.applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, &resilite.ConnectionError{Op: "open", Path: path, Err: err}
	}
	return &conn{db: db}, nil
}

func (d Driver) applyPragmas(ctx context.Context, db *sql.DB) error {
	busy := d.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
	}
	if !d.DisableWAL {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	if !d.DisableForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

type conn struct {
	db *sql.DB
}

func (c *conn) Query(ctx context.Context, q resilite.Query) (resilite.Rows, error) {
	rows, err := c.db.QueryContext(ctx, q.Text, q.Args...)
	if err != nil {
		return nil, &resilite.QueryError{Query: q.Text, Err: err}
	}
	defer rows.Close()
	out, err := scanRows(rows)
	if err != nil {
		return nil, &resilite.QueryError{Query: q.Text, Err: err}
	}
	return out, nil
}

func (c *conn) Exec(ctx context.Context, q resilite.Query) (resilite.ExecResult, error) {
	res, err := c.db.ExecContext(ctx, q.Text, q.Args...)
	if err != nil {
		return resilite.ExecResult{}, &resilite.QueryError{Query: q.Text, Err: err}
	}
	return execResult(res), nil
}

// Begin returns the engine error untouched; resilite's transaction scope
// owns begin/commit/rollback classification.
func (c *conn) Begin(ctx context.Context) (resilite.Tx, error) {
	t, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &tx{tx: t}, nil
}

func (c *conn) Close() error {
	return c.db.Close()
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) Query(ctx context.Context, q resilite.Query) (resilite.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, q.Text, q.Args...)
	if err != nil {
		return nil, &resilite.QueryError{Query: q.Text, Err: err}
	}
	defer rows.Close()
	out, err := scanRows(rows)
	if err != nil {
		return nil, &resilite.QueryError{Query: q.Text, Err: err}
	}
	return out, nil
}

func (t *tx) Exec(ctx context.Context, q resilite.Query) (resilite.ExecResult, error) {
	res, err := t.tx.ExecContext(ctx, q.Text, q.Args...)
	if err != nil {
		return resilite.ExecResult{}, &resilite.QueryError{Query: q.Text, Err: err}
	}
	return execResult(res), nil
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func execResult(res sql.Result) resilite.ExecResult {
	out := resilite.ExecResult{}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	return out
}

// scanRows materializes every row so the snapshot stays valid after the
// connection closes.
func scanRows(rows *sql.Rows) (resilite.Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out resilite.Rows
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(resilite.Row, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
