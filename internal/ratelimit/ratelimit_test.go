package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{"burst allows initial requests", 1, 3, 3, 3},
		{"exceeding burst blocks", 1, 2, 5, 2},
		{"single token", 1, 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			krl := New(tt.rps, tt.burst)
			defer krl.Stop()

			passed := 0
			for range tt.calls {
				if krl.Allow("10.0.0.1") {
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
	assert.Equal(t, 2, krl.Len())
}

func TestPerMinute(t *testing.T) {
	krl := PerMinute(60, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("ip"))
	require.False(t, krl.Allow("ip"))

	wait := krl.RetryAfter("ip")
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Second)
	assert.False(t, krl.Allow("ip"), "RetryAfter does not consume a token")
}

func TestKeyedRateLimiter_Evict(t *testing.T) {
	krl := newLimiter(1, 1, time.Minute)
	defer krl.Stop()

	now := time.Now()
	krl.now = func() time.Time { return now }
	krl.Allow("old")

	now = now.Add(30 * time.Second)
	krl.Allow("recent")

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, krl.Evict())
	assert.Equal(t, 1, krl.Len())
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	krl := New(1000, 1)
	defer krl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, krl.Wait(ctx, "k"))
	require.NoError(t, krl.Wait(ctx, "k"))
}

func TestKeyedRateLimiter_WaitCanceled(t *testing.T) {
	krl := New(0.001, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("k"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, krl.Wait(ctx, "k"))
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
	assert.NoError(t, krl.Shutdown())
}
