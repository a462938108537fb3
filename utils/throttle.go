package utils

import (
	"context"
	"math/rand"
	"time"
)

// Throttle pauses between requests for a random whole number of units
// drawn uniformly from [Min, Max], inclusive on both ends.
type Throttle struct {
	Min  int
	Max  int
	Unit time.Duration

	rng   *rand.Rand
	sleep func(context.Context, time.Duration) error
}

// NewThrottle creates a Throttle pausing between minSec and maxSec seconds.
func NewThrottle(minSec, maxSec int) *Throttle {
	return &Throttle{
		Min:   minSec,
		Max:   maxSec,
		Unit:  time.Second,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepContext,
	}
}

// WithSleep replaces the blocking sleep, mostly for tests.
func (t *Throttle) WithSleep(fn func(context.Context, time.Duration) error) *Throttle {
	t.sleep = fn
	return t
}

// WithSeed makes the drawn delays reproducible.
func (t *Throttle) WithSeed(seed int64) *Throttle {
	t.rng = rand.New(rand.NewSource(seed))
	return t
}

// Next draws the next delay without sleeping.
func (t *Throttle) Next() time.Duration {
	if t.Max <= t.Min {
		return time.Duration(t.Min) * t.Unit
	}
	n := t.Min + t.rng.Intn(t.Max-t.Min+1)
	return time.Duration(n) * t.Unit
}

// Wait blocks for the next drawn delay and returns it.
func (t *Throttle) Wait(ctx context.Context) (time.Duration, error) {
	d := t.Next()
	return d, t.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
