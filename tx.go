package resilite

import "context"

// TxValue runs fn inside a transaction on conn.
//
// If fn returns nil the transaction is committed; a commit failure surfaces
// as a *TransactionError with Op "commit" and is never silently downgraded
// to a rollback. If fn returns an error the transaction is rolled back and
// fn's error is returned unchanged - unless the rollback itself fails, in
// which case a *TransactionError with Op "rollback" supersedes it and
// carries fn's error as Cause.
//
// Commit runs only after fn has fully returned without error, so no partial
// commit is observable.
func TxValue[T any](ctx context.Context, conn Conn, fn func(Tx) (T, error)) (T, error) {
	var zero T
	tx, err := conn.Begin(ctx)
	if err != nil {
		return zero, &TransactionError{Op: "begin", Err: err}
	}
	v, ferr := fn(tx)
	if ferr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return zero, &TransactionError{Op: "rollback", Err: rbErr, Cause: ferr}
		}
		return zero, ferr
	}
	if err := tx.Commit(); err != nil {
		return zero, &TransactionError{Op: "commit", Err: err}
	}
	return v, nil
}

// InTransaction is TxValue for operations with no result value.
func InTransaction(ctx context.Context, conn Conn, fn func(Tx) error) error {
	_, err := TxValue(ctx, conn, func(tx Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}
