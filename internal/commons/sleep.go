package commons

import (
	"context"
	"time"
)

// Sleep blocks for d or until ctx is cancelled, whichever comes first. The
// search pipeline sleeps between pages and locations; cancelling a session
// must cut those waits short as well.
func Sleep(ctx context.Context, d time.Duration) error {
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
