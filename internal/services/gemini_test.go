package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := withRetry(context.Background(), 3, time.Millisecond, zap.NewNop(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("503")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := withRetry(context.Background(), 2, time.Millisecond, zap.NewNop(), func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := withRetry(ctx, 5, time.Hour, zap.NewNop(), func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rate.Inf, newLimiter(0).Limit())
	assert.InDelta(t, 0.25, float64(newLimiter(15).Limit()), 1e-9)
}
