package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestClockDelay_Wait(t *testing.T) {
	t.Parallel()
	fakeClock := clocktesting.NewFakeClock(time.Now())
	d := ClockDelay{Clock: fakeClock}

	done := make(chan error, 1)
	go func() {
		done <- d.Wait(context.Background(), 10*time.Second)
	}()

	assert.Eventually(t, fakeClock.HasWaiters, time.Second, time.Millisecond)

	fakeClock.Step(9 * time.Second)
	select {
	case <-done:
		t.Fatal("Wait returned before the delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	fakeClock.Step(time.Second)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the delay elapsed")
	}
}

func TestClockDelay_Cancelled(t *testing.T) {
	t.Parallel()
	fakeClock := clocktesting.NewFakeClock(time.Now())
	d := ClockDelay{Clock: fakeClock}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Wait(ctx, time.Minute)
	}()

	assert.Eventually(t, fakeClock.HasWaiters, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Wait ignored cancellation")
	}
}

func TestClockDelay_ZeroDuration(t *testing.T) {
	t.Parallel()
	d := NewClockDelay()
	assert.NoError(t, d.Wait(context.Background(), 0))
}
