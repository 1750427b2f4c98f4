package resilite

import "strings"

// Query is an immutable unit of SQL: statement text plus bound parameters.
// Callers never splice values into Text; Args travel separately to the driver.
type Query struct {
	Text string
	Args []any
}

// Q builds a Query.
func Q(text string, args ...any) Query {
	return Query{Text: text, Args: args}
}

// CacheKey returns the normalized form of the query text used by QueryCache:
// surrounding whitespace trimmed, case folded. Bound parameters are NOT part
// of the key, so two queries with identical text and different Args share one
// cache slot. Text-only keying is kept deliberately; callers that need
// per-parameter results must bypass the cache or inline the discriminating
// value into the text.
func (q Query) CacheKey() string {
	return NormalizeQueryText(q.Text)
}

// NormalizeQueryText trims surrounding whitespace and folds case so that
// "SELECT * FROM users" and "  select * from users " map to one cache key.
func NormalizeQueryText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Row is a single result row keyed by column name.
type Row map[string]any

// Rows is a result snapshot: every row fully materialized, safe to retain
// after the connection that produced it is closed.
type Rows []Row

// ExecResult reports the outcome of a statement that does not return rows.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
}
