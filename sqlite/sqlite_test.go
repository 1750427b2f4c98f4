package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/resilite"
	"github.com/unkn0wn-root/resilite/sqlite"
)

func newTestDB(t *testing.T) (string, *resilite.Client) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	c, err := resilite.New(resilite.Options{Path: path, Driver: sqlite.Driver{}})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Exec(ctx, resilite.Q(`
		CREATE TABLE users (
			id    INTEGER PRIMARY KEY,
			name  TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			age   INTEGER
		)`))
	require.NoError(t, err)

	seed := []resilite.Query{
		resilite.Q("INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Alice", "alice@example.com", 30),
		resilite.Q("INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Bob", "bob@example.com", 25),
		resilite.Q("INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Carol", "carol@example.com", 41),
		resilite.Q("INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Dave", "dave@example.com", 19),
	}
	for _, q := range seed {
		_, err := c.Exec(ctx, q)
		require.NoError(t, err)
	}
	return path, c
}

func countUsers(t *testing.T, c *resilite.Client) int64 {
	t.Helper()
	rows, err := c.ExecuteQuery(context.Background(), resilite.Q("SELECT COUNT(*) AS n FROM users"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	n, ok := rows[0]["n"].(int64)
	require.True(t, ok, "COUNT(*) scans as int64, got %T", rows[0]["n"])
	return n
}

func TestQuery_SnapshotTypes(t *testing.T) {
	_, c := newTestDB(t)

	rows, err := c.ExecuteQuery(context.Background(),
		resilite.Q("SELECT id, name, email, age FROM users ORDER BY id"))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	require.Equal(t, int64(1), rows[0]["id"])
	require.Equal(t, "Alice", rows[0]["name"])
	require.Equal(t, "alice@example.com", rows[0]["email"])
	require.Equal(t, int64(30), rows[0]["age"])
}

func TestQuery_ParameterBinding(t *testing.T) {
	_, c := newTestDB(t)

	rows, err := c.ExecuteQuery(context.Background(),
		resilite.Q("SELECT name FROM users WHERE age > ? ORDER BY age", 26))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Alice", rows[0]["name"])
	require.Equal(t, "Carol", rows[1]["name"])
}

func TestExec_ReportsRowsAffectedAndInsertID(t *testing.T) {
	_, c := newTestDB(t)

	res, err := c.Exec(context.Background(),
		resilite.Q("INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Eve", "eve@example.com", 33))
	require.NoError(t, err)
	require.Equal(t, int64(5), res.LastInsertID)
	require.Equal(t, int64(1), res.RowsAffected)

	res, err = c.Exec(context.Background(), resilite.Q("UPDATE users SET age = age + 1"))
	require.NoError(t, err)
	require.Equal(t, int64(5), res.RowsAffected)
}

func TestTransaction_UniqueViolationRollsBackEverything(t *testing.T) {
	_, c := newTestDB(t)
	before := countUsers(t, c)

	err := c.ExecuteTransaction(context.Background(), func(tx resilite.Tx) error {
		ctx := context.Background()
		if _, err := tx.Exec(ctx, resilite.Q(
			"INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Frank", "frank@example.com", 52)); err != nil {
			return err
		}
		// duplicate email; the whole unit of work must unwind
		_, err := tx.Exec(ctx, resilite.Q(
			"INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Fake Alice", "alice@example.com", 99))
		return err
	})

	var qe *resilite.QueryError
	require.ErrorAs(t, err, &qe)
	require.Contains(t, qe.Err.Error(), "UNIQUE constraint failed")
	require.Equal(t, before, countUsers(t, c), "partial insert must not survive the rollback")
}

func TestTransaction_CommitsAllOrNothing(t *testing.T) {
	_, c := newTestDB(t)

	err := c.ExecuteTransaction(context.Background(), func(tx resilite.Tx) error {
		ctx := context.Background()
		if _, err := tx.Exec(ctx, resilite.Q("UPDATE users SET age = age + 1 WHERE name = ?", "Alice")); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, resilite.Q("UPDATE users SET age = age - 1 WHERE name = ?", "Bob"))
		return err
	})
	require.NoError(t, err)

	rows, err := c.ExecuteQuery(context.Background(),
		resilite.Q("SELECT name, age FROM users WHERE name IN ('Alice', 'Bob') ORDER BY name"))
	require.NoError(t, err)
	require.Equal(t, int64(31), rows[0]["age"])
	require.Equal(t, int64(24), rows[1]["age"])
}

func TestCachedReads_SkipTheDatabaseUntilInvalidated(t *testing.T) {
	path, seedClient := newTestDB(t)
	_ = seedClient

	cache, err := resilite.NewQueryCache(resilite.CacheOptions{})
	require.NoError(t, err)
	defer cache.Close(context.Background())

	c, err := resilite.New(resilite.Options{
		Path:              path,
		Driver:            sqlite.Driver{},
		Cache:             cache,
		InvalidateOnWrite: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := c.ExecuteQuery(ctx, resilite.Q("SELECT COUNT(*) AS n FROM users"))
	require.NoError(t, err)
	require.Equal(t, int64(4), first[0]["n"])

	// write behind the cache through a separate client; the stale snapshot
	// is still served until a write through c invalidates
	_, err = seedClient.Exec(ctx, resilite.Q(
		"INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Eve", "eve@example.com", 33))
	require.NoError(t, err)

	stale, err := c.ExecuteQuery(ctx, resilite.Q("SELECT COUNT(*) AS n FROM users"))
	require.NoError(t, err)
	require.Equal(t, int64(4), stale[0]["n"], "cached snapshot served without touching the database")

	_, err = c.Exec(ctx, resilite.Q(
		"INSERT INTO users (name, email, age) VALUES (?, ?, ?)", "Frank", "frank@example.com", 52))
	require.NoError(t, err)

	fresh, err := c.ExecuteQuery(ctx, resilite.Q("SELECT COUNT(*) AS n FROM users"))
	require.NoError(t, err)
	require.Equal(t, int64(6), fresh[0]["n"])
}

func TestDispatch_BadTableDoesNotPoisonSiblings(t *testing.T) {
	_, c := newTestDB(t)

	results := c.DispatchQueries(context.Background(), []resilite.Query{
		resilite.Q("SELECT COUNT(*) AS n FROM users"),
		resilite.Q("SELECT * FROM no_such_table"),
		resilite.Q("SELECT name FROM users WHERE id = ?", 1),
	})
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.Equal(t, int64(4), results[0].Value[0]["n"])

	var qe *resilite.QueryError
	require.ErrorAs(t, results[1].Err, &qe)
	require.Contains(t, qe.Err.Error(), "no such table")

	require.NoError(t, results[2].Err)
	require.Equal(t, "Alice", results[2].Value[0]["name"])
}

func TestOpen_MissingDirectoryIsAConnectionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "users.db")
	d := sqlite.Driver{}

	_, err := d.Open(context.Background(), path)
	var ce *resilite.ConnectionError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "open", ce.Op)
	require.Equal(t, path, ce.Path)
}

func TestRetry_ReopensThroughCountingDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	cd := &countingDriver{inner: sqlite.Driver{}, failFirst: 2}

	c, err := resilite.New(resilite.Options{
		Path:   path,
		Driver: cd,
		Retry:  resilite.RetryPolicy{MaxRetries: 3},
	})
	require.NoError(t, err)

	_, err = c.Exec(context.Background(), resilite.Q("CREATE TABLE t (id INTEGER)"))
	require.NoError(t, err)
	require.Equal(t, 3, cd.opens, "two rejected opens, then one real session")
}

// countingDriver rejects the first failFirst opens, then delegates.
type countingDriver struct {
	inner     sqlite.Driver
	failFirst int
	opens     int
}

func (d *countingDriver) Open(ctx context.Context, path string) (resilite.Conn, error) {
	d.opens++
	if d.opens <= d.failFirst {
		return nil, &resilite.ConnectionError{Op: "open", Path: path, Err: errors.New("database is locked")}
	}
	return d.inner.Open(ctx, path)
}
