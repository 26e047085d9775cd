package store

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	readAttempts    = 3
	readBackoffBase = 50 * time.Millisecond
)

// ReadAllRetry reads every row of the table, absorbing transient store
// failures. Reads are idempotent, so an attempt that fails with an
// IOError is retried with jittered exponential backoff up to
// readAttempts times; any other error returns immediately.
func ReadAllRetry(ctx context.Context, s RowStore, table Schema) ([]Row, error) {
	var lastErr error

	for attempt := 0; attempt < readAttempts; attempt++ {
		if attempt > 0 {
			delay := readBackoffBase << (attempt - 1)
			delay += time.Duration(rand.Int63n(int64(delay)))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		rows, err := s.ReadAll(ctx, table)
		if err == nil {
			return rows, nil
		}

		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
