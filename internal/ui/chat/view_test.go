// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/procur-tui/internal/config"
	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/notify"
	"github.com/jeranaias/procur-tui/internal/session"
)

func newTestModel(t *testing.T, transcript []model.Message, paused bool) Model {
	t.Helper()

	ctrl := session.NewController(session.Options{
		BaseURL: "http://localhost:0",
		Token:   "tok_test",
	})
	if len(transcript) > 0 {
		if err := ctrl.Hydrate("th_view", transcript, paused); err != nil {
			t.Fatalf("Hydrate failed: %v", err)
		}
	}

	cfg := config.Default()
	cfg.UI.Theme = "dark"
	m := New(ctrl, nil, cfg)
	m.resize(100, 30)
	return m
}

func TestView_EmptyTranscriptShowsWelcome(t *testing.T) {
	m := newTestModel(t, nil, false)
	if !strings.Contains(m.View(), "Describe what you need") {
		t.Error("empty transcript should show the welcome hint")
	}
}

func TestView_RendersTranscript(t *testing.T) {
	transcript := []model.Message{
		model.NewUserMessage("Need 500 keyboards"),
		model.NewMessage(model.SenderAssistant, "Found 3 suppliers."),
	}
	m := newTestModel(t, transcript, false)

	view := m.View()
	for _, want := range []string{"You", "Assistant", "Need 500 keyboards", "Found 3 suppliers."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_PausedShowsBannerAndSupplierPrompt(t *testing.T) {
	transcript := []model.Message{
		model.NewUserMessage("Need 500 keyboards"),
	}
	m := newTestModel(t, transcript, true)

	view := m.View()
	if !strings.Contains(view, "Waiting on supplier") {
		t.Error("paused view missing banner")
	}
	if !strings.Contains(view, "supplier>") {
		t.Error("paused view missing supplier prompt")
	}
}

func TestView_ReasoningHiddenWhenDisabled(t *testing.T) {
	reasoning := model.NewMessage(model.SenderAssistant, "classify_intent: done")
	reasoning.Kind = model.KindReasoning

	transcript := []model.Message{
		model.NewUserMessage("Need 500 keyboards"),
		reasoning,
	}

	m := newTestModel(t, transcript, false)
	m.cfg.UI.ShowReasoning = false
	m.refreshTranscript()
	if strings.Contains(m.View(), "classify_intent") {
		t.Error("reasoning should be hidden when disabled")
	}

	m.cfg.UI.ShowReasoning = true
	m.refreshTranscript()
	if !strings.Contains(m.View(), "classify_intent") {
		t.Error("reasoning should show when enabled")
	}
}

func TestNotification_ResumesPausedWorkflowWithoutText(t *testing.T) {
	// The supplier answered through the portal, so the push event carries
	// no text; the resume must still fire.
	transcript := []model.Message{
		model.NewUserMessage("Need 500 keyboards"),
	}
	m := newTestModel(t, transcript, true)

	updated, _ := m.Update(NotificationMsg{Event: notify.Event{
		Kind:     notify.KindSupplierResponse,
		ThreadID: "th_view",
	}})
	m = updated.(Model)

	if !strings.Contains(m.notice, "resuming") {
		t.Errorf("notice = %q, want resume notice", m.notice)
	}
	if phase := m.ctrl.Snapshot().Phase; phase == session.PhaseAwaitingSupplier {
		t.Errorf("Phase = %q, resume should leave the paused phase", phase)
	}
}

func TestView_FailedDeliveryMarked(t *testing.T) {
	failed := model.NewMessage(model.SenderAssistant, "partial answer")
	failed.Delivery = model.DeliveryFailed

	m := newTestModel(t, []model.Message{failed}, false)
	if !strings.Contains(m.View(), "(failed)") {
		t.Error("failed message should carry the failed marker")
	}
}
