package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_AllowsUpToLimit(t *testing.T) {
	limiter := NewSlidingWindowLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "a")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "a")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "b")
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_WindowExpiry(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "k")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "k")
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, "k")
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_Reset(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "k")
	allowed, _ := limiter.Allow(ctx, "k")
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "k"))
	allowed, _ = limiter.Allow(ctx, "k")
	assert.True(t, allowed)
}

func TestIPAndUserLimiters_DoNotCollide(t *testing.T) {
	// The same raw key through both limiters counts separately.
	ipLimiter := NewIPRateLimiter(1)
	userLimiter := NewUserRateLimiter(1)
	ctx := context.Background()

	allowed, _ := ipLimiter.Allow(ctx, "x")
	assert.True(t, allowed)
	allowed, _ = userLimiter.Allow(ctx, "x")
	assert.True(t, allowed)
}
