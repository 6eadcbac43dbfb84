package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollReturnsNilOnDone(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 10, time.Millisecond, func(ctx context.Context) (Status, error) {
		calls++
		if calls == 3 {
			return StatusDone, nil
		}
		return StatusPending, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollStopsOnTerminalFailure(t *testing.T) {
	boom := fmt.Errorf("run failed internally")
	calls := 0
	err := Poll(context.Background(), 10, time.Millisecond, func(ctx context.Context) (Status, error) {
		calls++
		return StatusFailed, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestPollExhaustsAttemptCeiling(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 4, time.Millisecond, func(ctx context.Context) (Status, error) {
		calls++
		return StatusPending, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 4, calls)
}

func TestPollRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Poll(ctx, 10, 10*time.Millisecond, func(ctx context.Context) (Status, error) {
		t.Fatal("probe should not run after cancellation")
		return StatusPending, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollSurfacesProbeErrorWhilePending(t *testing.T) {
	boom := fmt.Errorf("status endpoint unreachable")
	err := Poll(context.Background(), 5, time.Millisecond, func(ctx context.Context) (Status, error) {
		return StatusPending, boom
	})

	assert.ErrorIs(t, err, boom)
}
