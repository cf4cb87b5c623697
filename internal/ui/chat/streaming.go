// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the buyer-side chat view for procur-tui.
//
// This file implements redraw throttling for streaming responses. The
// controller signals every reduced chunk; redrawing the transcript for each
// one would push the terminal past 1000fps during a fast stream, causing
// flicker and high CPU. RenderLimiter caps redraws at a fixed frame rate and
// defers the overflow to a tick.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// RENDER LIMITER
// =============================================================================

// RenderLimiter gates transcript redraws at a maximum frame rate.
//
// Usage from the update loop: call Allow() on every state change. True means
// redraw now; false means the change is recorded as pending and a
// renderTickCmd should be scheduled. When the tick fires, Flush() reports
// whether a deferred redraw is still owed.
//
// Thread-safety: guarded by a mutex; Bubble Tea runs Update on one goroutine
// but commands may inspect the limiter concurrently.
type RenderLimiter struct {
	mu         sync.Mutex
	lastRender time.Time
	pending    bool

	maxFPS   int
	minFrame time.Duration
}

// NewRenderLimiter creates a limiter with the default frame budget (30fps).
func NewRenderLimiter() *RenderLimiter {
	return NewRenderLimiterWithFPS(30)
}

// NewRenderLimiterWithFPS creates a limiter with a custom frame rate.
// Values outside 1-60 fall back to 30.
func NewRenderLimiterWithFPS(maxFPS int) *RenderLimiter {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	return &RenderLimiter{
		maxFPS:   maxFPS,
		minFrame: time.Duration(1000/maxFPS) * time.Millisecond,
	}
}

// Allow reports whether a redraw may happen now. When the frame budget is
// exhausted the change is marked pending instead.
func (rl *RenderLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastRender) >= rl.minFrame {
		rl.lastRender = time.Now()
		rl.pending = false
		return true
	}
	rl.pending = true
	return false
}

// Pending reports whether a deferred redraw is owed.
func (rl *RenderLimiter) Pending() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.pending
}

// Flush consumes the pending flag, returning true if a deferred redraw is
// owed. The caller redraws when it returns true.
func (rl *RenderLimiter) Flush() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.pending {
		return false
	}
	rl.pending = false
	rl.lastRender = time.Now()
	return true
}

// Reset clears the limiter, e.g. when a new exchange starts.
func (rl *RenderLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.pending = false
	rl.lastRender = time.Time{}
}

// MinFrame returns the minimum interval between redraws.
func (rl *RenderLimiter) MinFrame() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.minFrame
}

// =============================================================================
// RENDER TICK COMMAND
// =============================================================================

// renderTickCmd schedules the deferred redraw one frame from now.
func renderTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RenderTickMsg{Time: t}
	})
}
