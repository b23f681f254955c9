package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("https://www.googleapis.com/customsearch/v1") {
			t.Fatalf("request %d should pass with pacing disabled", i)
		}
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	if err := limiter.WaitWithDelay(context.Background(), "http://example.com", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", d)
	}
}

func TestLimiter_WaitWithDelay_Cancelled(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.WaitWithDelay(ctx, "http://example.com", time.Second); err == nil {
		t.Error("expected context error")
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://www.googleapis.com/a"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// burst of 1 is spent for this host
	if limiter.Allow("https://WWW.googleapis.com/b") {
		t.Error("expected host match to be case-insensitive and exhausted")
	}
	if !limiter.Allow("https://openrouter.ai/api/v1") {
		t.Error("expected other host to pass")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("slow.com", 0.1, 1)

	if !limiter.Allow("http://slow.com/x") {
		t.Error("first request should pass")
	}
	if limiter.Allow("http://slow.com/y") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("http://fast.com") {
		t.Error("other host should pass")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("http://Example.com:8080/foo")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	if _, err := hostOf("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := hostOf("/relative/path"); err == nil {
		t.Error("expected error for URL without host")
	}
}
