package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestPerMinute(t *testing.T) {
	cfg := PerMinute(30)
	assert.Equal(t, rate.Limit(0.5), cfg.Rate)
	assert.Equal(t, 30, cfg.Burst)

	assert.Equal(t, 1, PerMinute(0).Burst)
}

func TestRateLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	rl.limiter(1)
	rl.limiter(2)
	assert.Equal(t, 2, rl.LimiterCount())

	rl.cleanup(time.Now())
	assert.Equal(t, 2, rl.LimiterCount())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.LimiterCount())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(PerMinute(10))
	rl.Stop()
	rl.Stop()
}
