package server

import (
	"testing"
	"time"
)

func TestThrottle_AllowsWithinLimit(t *testing.T) {
	throttle := NewThrottle(time.Minute, 3)

	for i := 0; i < 3; i++ {
		if !throttle.Allow(1) {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if throttle.Allow(1) {
		t.Error("Request over the limit should be rejected")
	}
}

func TestThrottle_UsersCountedSeparately(t *testing.T) {
	throttle := NewThrottle(time.Minute, 1)

	if !throttle.Allow(1) {
		t.Fatal("First user's request should be allowed")
	}
	if !throttle.Allow(2) {
		t.Error("Second user must not inherit the first user's count")
	}
	if throttle.Allow(1) {
		t.Error("First user is at the limit")
	}
}

func TestThrottle_WindowExpires(t *testing.T) {
	throttle := NewThrottle(10*time.Millisecond, 1)

	if !throttle.Allow(1) {
		t.Fatal("First request should be allowed")
	}
	if throttle.Allow(1) {
		t.Fatal("Second request in the window should be rejected")
	}

	time.Sleep(20 * time.Millisecond)
	if !throttle.Allow(1) {
		t.Error("A fresh window should admit the user again")
	}
}
