package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPeriodicallyRunsEagerlyAndOnTicks(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- RunPeriodically(ctx, logger, "test", 10*time.Millisecond, true, func(ctx context.Context) error {
			if runs.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestRunPeriodicallyWithoutEagerRun(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	cancel()
	err := RunPeriodically(ctx, logger, "test", time.Hour, false, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), runs.Load())
}

func TestRunPeriodicallyRejectsBadInterval(t *testing.T) {
	logger, _ := test.NewNullLogger()
	err := RunPeriodically(context.Background(), logger, "test", 0, true, func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRunJobSurvivesErrorsAndPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx := context.Background()

	runJob(ctx, logger, "failing", func(ctx context.Context) error { return errors.New("boom") })
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	runJob(ctx, logger, "busy", func(ctx context.Context) error { return ErrCycleInProgress })
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)

	assert.NotPanics(t, func() {
		runJob(ctx, logger, "panicking", func(ctx context.Context) error { panic("kaboom") })
	})
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
