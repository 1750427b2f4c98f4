package resilite

import "fmt"

// ConnectionError reports an open or close failure at the storage boundary.
type ConnectionError struct {
	Op   string // "open" or "close"
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("resilite: %s connection to %q: %v", e.Op, e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a statement the storage engine rejected: malformed SQL,
// a constraint violation, a missing table.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("resilite: query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// TransactionError reports a begin, commit or rollback failure.
//
// When a rollback fails while unwinding an operation error, Err holds the
// rollback failure and Cause holds the operation error that triggered the
// rollback. Unwrap exposes both, so errors.Is/As reach the original failure.
type TransactionError struct {
	Op    string // "begin", "commit" or "rollback"
	Err   error
	Cause error
}

func (e *TransactionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resilite: %s failed: %v (while handling: %v)", e.Op, e.Err, e.Cause)
	}
	return fmt.Sprintf("resilite: %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// RetryExhaustedError is returned by Retry after the final failed attempt.
// Attempts is the number of times the operation actually ran; Last is the
// error from the final attempt. Intermediate failures never escape Retry.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("resilite: retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }
