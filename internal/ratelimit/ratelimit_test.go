package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "single token", rps: 0.2, burst: 1, calls: 4, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("acc-1") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	if !rl.Allow("acc-1") {
		t.Fatal("first request for acc-1 should pass")
	}
	if rl.Allow("acc-1") {
		t.Error("second request for acc-1 should be limited")
	}
	if !rl.Allow("acc-2") {
		t.Error("acc-2 should have its own bucket")
	}
	if rl.Len() != 2 {
		t.Errorf("Expected 2 tracked keys, got %d", rl.Len())
	}
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(100, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx, "acc-1"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
}

func TestKeyedRateLimiter_WaitCanceled(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	rl.Allow("acc-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wait(ctx, "acc-1"); err == nil {
		t.Error("Wait() should fail on a canceled context")
	}
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	rl := NewWithTTL(1, 1, time.Hour)
	defer rl.Stop()

	rl.Allow("acc-1")
	rl.evictIdle(time.Now().Add(2 * time.Hour))

	if rl.Len() != 0 {
		t.Errorf("Expected idle key to be evicted, got %d keys", rl.Len())
	}
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
