package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			krl := New(tt.rps, tt.burst)
			defer krl.Stop()

			passed := 0
			for range tt.calls {
				if krl.Allow("test") {
					passed++
				}
			}

			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("10.0.0.1"))
	assert.False(t, krl.Allow("10.0.0.1"))
	assert.True(t, krl.Allow("10.0.0.2"))
}

func TestKeyedRateLimiter_Refills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	krl := newLimiter(2, 1, DefaultIdleTTL, func() time.Time { return now })

	assert.True(t, krl.Allow("k"))
	assert.False(t, krl.Allow("k"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, krl.Allow("k"))
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	krl := newLimiter(1, 1, time.Minute, func() time.Time { return now })

	krl.Allow("old")
	now = now.Add(45 * time.Second)
	krl.Allow("recent")
	now = now.Add(30 * time.Second)

	krl.evictIdle()

	assert.Equal(t, 1, krl.Len())
	assert.Contains(t, krl.limiters, "recent")
	assert.NotContains(t, krl.limiters, "old")
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	assert.NotPanics(t, krl.Stop)
}
