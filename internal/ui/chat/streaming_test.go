// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestRenderLimiter_FirstRenderAllowed(t *testing.T) {
	rl := NewRenderLimiter()
	if !rl.Allow() {
		t.Error("first render should be allowed")
	}
}

func TestRenderLimiter_ThrottlesWithinFrame(t *testing.T) {
	rl := NewRenderLimiter()

	if !rl.Allow() {
		t.Fatal("first render should be allowed")
	}
	if rl.Allow() {
		t.Error("immediate second render should be throttled")
	}
	if !rl.Pending() {
		t.Error("throttled render should be recorded as pending")
	}
}

func TestRenderLimiter_AllowsAfterFrame(t *testing.T) {
	rl := NewRenderLimiterWithFPS(60) // ~16ms frame for a faster test

	if !rl.Allow() {
		t.Fatal("first render should be allowed")
	}
	time.Sleep(rl.MinFrame() + 5*time.Millisecond)
	if !rl.Allow() {
		t.Error("render after frame interval should be allowed")
	}
	if rl.Pending() {
		t.Error("allowed render should clear pending")
	}
}

func TestRenderLimiter_Flush(t *testing.T) {
	rl := NewRenderLimiter()

	rl.Allow()
	rl.Allow() // throttled, pending set

	if !rl.Flush() {
		t.Error("flush should report the deferred redraw")
	}
	if rl.Flush() {
		t.Error("second flush should find nothing pending")
	}
}

func TestRenderLimiter_Reset(t *testing.T) {
	rl := NewRenderLimiter()
	rl.Allow()
	rl.Allow()

	rl.Reset()
	if rl.Pending() {
		t.Error("reset should clear pending")
	}
	if !rl.Allow() {
		t.Error("render after reset should be allowed")
	}
}

func TestRenderLimiter_ConfigClamped(t *testing.T) {
	testCases := []struct {
		fps  int
		want time.Duration
	}{
		{30, 33 * time.Millisecond},
		{60, 16 * time.Millisecond},
		{0, 33 * time.Millisecond},
		{-5, 33 * time.Millisecond},
		{500, 33 * time.Millisecond},
	}

	for _, tc := range testCases {
		rl := NewRenderLimiterWithFPS(tc.fps)
		if got := rl.MinFrame(); got != tc.want {
			t.Errorf("fps %d: minFrame = %v, want %v", tc.fps, got, tc.want)
		}
	}
}
