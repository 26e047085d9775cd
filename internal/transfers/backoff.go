package transfers

import (
	"context"
	"math/rand"
	"time"
)

// jitteredBackoff returns base * 2^(attempt-1) plus full jitter, so two
// sessions that collided do not collide again on the same schedule.
func jitteredBackoff(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	return delay + time.Duration(rand.Int63n(int64(delay)))
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
