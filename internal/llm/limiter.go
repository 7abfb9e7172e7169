package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between outbound backend calls.
// One limiter is shared by every caller of a gateway, so overlapping
// batches still serialize onto a single outbound-rate ceiling.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter spacing calls at least
// 60s/requestsPerMinute apart. Burst is 1: there is no banked
// allowance, every call waits out the full interval.
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	interval := rate.Every(minuteInterval(requestsPerMinute))
	return &Limiter{
		limiter: rate.NewLimiter(interval, 1),
	}
}

// Wait blocks until the next call may leave, or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

func minuteInterval(requestsPerMinute int) time.Duration {
	return time.Duration(float64(time.Minute) / float64(requestsPerMinute))
}
