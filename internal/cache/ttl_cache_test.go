package cache

import (
	"testing"
	"time"
)

func TestGetMissing(t *testing.T) {
	c := New[string, int]()
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestSetAndGet(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 42, time.Minute)

	got, ok := c.Get("a")
	if !ok || got != 42 {
		t.Fatalf("expected 42, got %d (%v)", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, 0)
	time.Sleep(2 * time.Millisecond)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry stored without ttl should not expire")
	}
}

func TestDelete(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, time.Minute)
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected deleted key to miss")
	}
}

func TestNilReceiver(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Minute)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("nil cache should always miss")
	}
}
