package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowBurstThenRefuse(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	ok, _ := rl.Allow("u1", "place_order")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", "place_order")
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", "place_order")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	ok, _ := rl.Allow("u1", "place_order")
	assert.True(t, ok)
	ok, _ = rl.Allow("u2", "place_order")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", "review")
	assert.True(t, ok)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	rl.Allow("u1", "review")
	assert.Equal(t, 1, rl.Size())

	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.Size())

	rl.Cleanup(0)
	assert.Equal(t, 0, rl.Size())
}
