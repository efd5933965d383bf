package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsentiment/pkg/errors"
)

func TestLimiter_BurstThenBlock(t *testing.T) {
	l := NewLimiter("test", 60) // 1 rps, burst 6

	for i := 0; i < 6; i++ {
		assert.True(t, l.Allow(), "request %d within burst", i)
	}
	assert.False(t, l.Allow())
}

func TestLimiter_MinimumBurst(t *testing.T) {
	l := NewLimiter("test", 5)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewLimiter("test", 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))
}
