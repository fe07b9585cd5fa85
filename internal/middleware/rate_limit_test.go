package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("10.0.0.1")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if allowed, _ := rl.Allow("10.0.0.1"); allowed {
		t.Error("request over the limit should be rejected")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Fatal("first client should be allowed")
	}
	if allowed, _ := rl.Allow("10.0.0.2"); !allowed {
		t.Error("second client must have its own budget")
	}
	if allowed, _ := rl.Allow("10.0.0.1"); allowed {
		t.Error("first client should now be over its limit")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	current := time.Now()
	rl.now = func() time.Time { return current }

	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _ := rl.Allow("10.0.0.1"); allowed {
		t.Fatal("second request inside the window should be rejected")
	}

	current = current.Add(61 * time.Second)
	if allowed, _ := rl.Allow("10.0.0.1"); !allowed {
		t.Error("request after the window expired should be allowed")
	}
}

func TestRateLimiterReportsRemaining(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	if _, remaining := rl.Allow("10.0.0.1"); remaining != 2 {
		t.Errorf("expected 2 remaining, got %d", remaining)
	}
	if _, remaining := rl.Allow("10.0.0.1"); remaining != 1 {
		t.Errorf("expected 1 remaining, got %d", remaining)
	}
	if _, remaining := rl.Allow("10.0.0.1"); remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}
}
