package retry

import (
	"context"
	"fmt"
	"time"
)

// Status is the outcome reported by one polling probe.
type Status int

const (
	// StatusPending means the remote job has not reached a terminal state.
	StatusPending Status = iota
	// StatusDone means the remote job completed.
	StatusDone
	// StatusFailed means the remote job reached a terminal failure state.
	StatusFailed
)

// ErrExhausted is returned when the attempt ceiling is reached before a
// terminal state.
var ErrExhausted = fmt.Errorf("polling attempts exhausted")

// Poll invokes probe up to maxAttempts times, sleeping interval before each
// attempt. It returns nil when the probe reports StatusDone, the probe's
// error on StatusFailed or a probe error, ErrExhausted when the ceiling is
// reached, and the context error if ctx ends first. It never polls
// indefinitely.
func Poll(ctx context.Context, maxAttempts int, interval time.Duration, probe func(ctx context.Context) (Status, error)) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		status, err := probe(ctx)
		switch status {
		case StatusDone:
			return nil
		case StatusFailed:
			if err == nil {
				err = fmt.Errorf("polling target reported failure")
			}
			return err
		case StatusPending:
			if err != nil {
				return err
			}
		}
	}

	return ErrExhausted
}
