package resilite

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Operation is a unit of work: a zero-argument function of context, retried,
// cached and dispatched by the combinators in this package.
type Operation[T any] func(ctx context.Context) (T, error)

// RetryPolicy bounds re-execution of a failing operation.
//
// An operation runs at most MaxRetries+1 times. Between attempts the policy
// sleeps according to Backoff when set, otherwise a constant Delay - the
// fixed-delay schedule is the default on purpose; linear and exponential
// schedules come from cenkalti/backoff (e.g. backoff.NewExponentialBackOff).
//
// The zero value retries nothing: one attempt, no delay.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Backoff    backoff.BackOff

	// Notify, when set, observes each scheduled retry. attempt counts from 1.
	Notify func(attempt int, delay time.Duration, err error)
}

// ErrNegativeRetries is returned for a RetryPolicy with MaxRetries < 0.
var ErrNegativeRetries = errors.New("resilite: MaxRetries must be >= 0")

func (p RetryPolicy) schedule() backoff.BackOff {
	if p.Backoff != nil {
		return p.Backoff
	}
	return backoff.NewConstantBackOff(p.Delay)
}

// Retry executes op until it succeeds, the attempt budget is spent, the
// backoff schedule stops, or ctx is cancelled.
//
// On success at any attempt the result is returned immediately. Intermediate
// failures never escape; after the final failed attempt the caller gets a
// *RetryExhaustedError carrying the last underlying error. The delay between
// attempts blocks only the calling goroutine and is cut short by ctx
// cancellation, in which case ctx.Err() is returned instead.
//
// Each attempt re-executes the entire operation, including any connection
// open performed inside it; a failed attempt's connection is never reused.
func Retry[T any](ctx context.Context, p RetryPolicy, op Operation[T]) (T, error) {
	var zero T
	if p.MaxRetries < 0 {
		return zero, ErrNegativeRetries
	}

	sched := p.schedule()
	sched.Reset()

	var last error
	attempts := 0
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		v, err := op(ctx)
		attempts++
		if err == nil {
			return v, nil
		}
		last = err

		if attempt == p.MaxRetries {
			break
		}
		d := sched.NextBackOff()
		if d == backoff.Stop {
			// schedule gave up before the attempt budget did
			break
		}
		if p.Notify != nil {
			p.Notify(attempts, d, err)
		}
		if err := sleep(ctx, d); err != nil {
			return zero, err
		}
	}
	return zero, &RetryExhaustedError{Attempts: attempts, Last: last}
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
