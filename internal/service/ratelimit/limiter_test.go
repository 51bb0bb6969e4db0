package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterDrainsAndRefills(t *testing.T) {
	now := time.Now()
	l := New()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("ip:scan", 3, 1) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("ip:scan", 3, 1) {
		t.Fatal("bucket should be empty")
	}

	// two seconds later two tokens are back
	now = now.Add(2 * time.Second)
	if !l.Allow("ip:scan", 3, 1) || !l.Allow("ip:scan", 3, 1) {
		t.Fatal("refill should restore two tokens")
	}
	if l.Allow("ip:scan", 3, 1) {
		t.Fatal("third request should be blocked")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Allow("a", 3, 1)
	}
	if l.Allow("a", 3, 1) {
		t.Fatal("key a should be exhausted")
	}
	if !l.Allow("b", 3, 1) {
		t.Fatal("key b should be untouched")
	}
}

func TestLimiterNeverExceedsCapacity(t *testing.T) {
	now := time.Now()
	l := New()
	l.now = func() time.Time { return now }

	if !l.Allow("k", 2, 5) {
		t.Fatal("fresh bucket should pass")
	}
	// long idle stretch must not bank more than capacity
	now = now.Add(time.Hour)
	if !l.Allow("k", 2, 5) || !l.Allow("k", 2, 5) {
		t.Fatal("refilled bucket should hold two tokens")
	}
	if l.Allow("k", 2, 5) {
		t.Fatal("capacity must cap the refill")
	}
}
