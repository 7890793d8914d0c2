package bootstrap

import (
	"context"
	"time"

	"k8s.io/utils/clock"
)

// Delay blocks for a fixed duration.
type Delay interface {
	// Wait returns after d, or early with the context error.
	Wait(ctx context.Context, d time.Duration) error
}

// ClockDelay implements Delay on top of a clock.
type ClockDelay struct {
	Clock clock.Clock
}

// NewClockDelay returns a Delay backed by the real clock.
func NewClockDelay() ClockDelay {
	return ClockDelay{Clock: clock.RealClock{}}
}

// Wait implements Delay.
func (d ClockDelay) Wait(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}

	timer := d.Clock.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}
