package commons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepCompletes(t *testing.T) {
	err := Sleep(context.Background(), time.Millisecond)
	assert.NoError(t, err)
}

func TestSleepZeroDuration(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestSleepZeroDurationStillReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}

func TestSleepCutShortByCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, 10*time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
