package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxedu/pkg/logger"
)

type countingCleaner struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingCleaner) Cleanup(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if c.fail {
		return 0, errors.New("redis down")
	}
	return 2, nil
}

func TestCleanupJobTicksUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartRegistrationCleanupJob(ctx, 10*time.Millisecond, cleaner, logger.NewNop())
	require.Eventually(t, func() bool { return cleaner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}

	stopped := cleaner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, cleaner.calls.Load())
}

func TestCleanupJobSurvivesErrors(t *testing.T) {
	cleaner := &countingCleaner{fail: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRegistrationCleanupJob(ctx, 10*time.Millisecond, cleaner, logger.NewNop())
	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
