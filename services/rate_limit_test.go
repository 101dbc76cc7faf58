package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewRateLimitService(env.store)
	now := time.Date(2024, 5, 1, 9, 1, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, info, err := svc.IsAllowed(ctx, "10.0.0.1", RateLimitRegister)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5-(i+1), info.Remaining)
	}

	allowed, info, err := svc.IsAllowed(ctx, "10.0.0.1", RateLimitRegister)
	require.NoError(t, err)
	assert.False(t, allowed)
	require.NotNil(t, info.BlockedUntil)
	assert.True(t, info.BlockedUntil.Equal(now.Add(time.Hour)))

	allowed, _, err = svc.IsAllowed(ctx, "10.0.0.2", RateLimitRegister)
	require.NoError(t, err)
	assert.True(t, allowed)

	now = now.Add(20 * time.Minute)
	allowed, _, err = svc.IsAllowed(ctx, "10.0.0.1", RateLimitRegister)
	require.NoError(t, err)
	assert.False(t, allowed, "still blocked inside the block time")

	now = now.Add(time.Hour)
	allowed, _, err = svc.IsAllowed(ctx, "10.0.0.1", RateLimitRegister)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitUnknownTypeIsUnlimited(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewRateLimitService(env.store)

	allowed, info, err := svc.IsAllowed(context.Background(), "10.0.0.1", "nope")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, -1, info.Remaining)
	assert.Empty(t, env.mr.Keys())
}

func TestRateLimitMessage(t *testing.T) {
	svc := NewRateLimitService(nil)
	assert.Equal(t, "Too many login attempts. Please try again later.", svc.Message(RateLimitLogin))
	assert.Equal(t, "Too many requests. Please try again later.", svc.Message("other"))
}
