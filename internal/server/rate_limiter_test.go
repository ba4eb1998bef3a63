package server

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("hit over the limit must be refused")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := newRateLimiter(1, time.Minute)

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first caller should be allowed")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("second caller has its own window")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("first caller is over its limit")
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	limiter := newRateLimiter(1, time.Millisecond)

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first hit should be allowed")
	}
	time.Sleep(5 * time.Millisecond)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("hit after the window elapsed should be allowed")
	}
}

func TestRateLimiterRefusesEmptyKey(t *testing.T) {
	limiter := newRateLimiter(10, time.Minute)
	if limiter.Allow("") {
		t.Fatal("empty key must be refused")
	}
}
