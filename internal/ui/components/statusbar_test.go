// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/procur-tui/internal/session"
	"github.com/jeranaias/procur-tui/internal/ui/styles"
)

func TestStatusBar_PhaseDisplay(t *testing.T) {
	bar := NewStatusBar(styles.NewThemeWithMode("dark"))
	bar.SetWidth(120)

	testCases := []struct {
		phase session.Phase
		want  string
	}{
		{session.PhaseIdle, "Ready"},
		{session.PhaseStreaming, "Streaming"},
		{session.PhaseAwaitingSupplier, "Awaiting supplier"},
	}

	for _, tc := range testCases {
		bar.Phase = tc.phase
		if view := bar.View(); !strings.Contains(view, tc.want) {
			t.Errorf("phase %q: view missing %q", tc.phase, tc.want)
		}
	}
}

func TestStatusBar_ReconnectAttempt(t *testing.T) {
	bar := NewStatusBar(styles.NewThemeWithMode("dark"))
	bar.SetWidth(120)
	bar.Conn = session.Connection{Status: session.ConnReconnecting, Attempt: 3}

	if view := bar.View(); !strings.Contains(view, "reconnecting (3)") {
		t.Error("view missing reconnect attempt")
	}
}

func TestStatusBar_ApplySnapshot(t *testing.T) {
	bar := NewStatusBar(styles.NewThemeWithMode("dark"))
	bar.SetWidth(120)

	state := session.NewState()
	state.ThreadID = "th_42"
	state.WorkflowType = "quote"
	state.Phase = session.PhaseAwaitingSupplier
	bar.Apply(state)

	view := bar.View()
	for _, want := range []string{"th_42", "quote", "Awaiting supplier"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStatusBar_NarrowLayout(t *testing.T) {
	bar := NewStatusBar(styles.NewThemeWithMode("dark"))
	bar.SetWidth(40)
	bar.Phase = session.PhaseStreaming

	// Narrow layout keeps the shape indicator, drops the verbose text.
	view := bar.View()
	if strings.Contains(view, "Awaiting") {
		t.Error("narrow view should not contain wide-layout text")
	}
	if !strings.Contains(view, "msg") {
		t.Error("narrow view missing message count")
	}
}

func TestRenderPausedBanner(t *testing.T) {
	banner := RenderPausedBanner(styles.NewThemeWithMode("dark"), 100, "supplier_wait")
	if !strings.Contains(banner, "Waiting on supplier") {
		t.Error("banner missing wait text")
	}
	if !strings.Contains(banner, "supplier_wait") {
		t.Error("banner missing next step")
	}
}

func TestRenderErrorBox(t *testing.T) {
	box := RenderErrorBox(styles.NewThemeWithMode("dark"), 80, "stream disconnected")
	if !strings.Contains(box, "stream disconnected") {
		t.Error("error box missing message")
	}
	if !strings.Contains(box, "Esc") {
		t.Error("error box missing dismissal hint")
	}
}
