// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package supplier

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/procur-tui/internal/api"
	"github.com/jeranaias/procur-tui/internal/model"
)

func sampleRequests() []model.SupplierRequest {
	return []model.SupplierRequest{
		{
			RequestID: "req_1",
			ThreadID:  "th_1",
			Subject:   "Quote for 500 keyboards",
			Message:   "Please quote 500 mechanical keyboards.",
			Status:    "pending",
			CreatedAt: time.Now(),
		},
		{
			RequestID: "req_2",
			ThreadID:  "th_2",
			Message:   "Availability check: 200 office chairs",
			Status:    "pending",
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(api.NewClient("http://localhost:0", "tok_supplier"), "dark")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestRequestsLoaded(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(requestsLoadedMsg{Requests: sampleRequests()})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "Quote for 500 keyboards") {
		t.Error("view missing first request subject")
	}
	if !strings.Contains(view, "Availability check") {
		t.Error("view missing message fallback for untitled request")
	}
}

func TestRequestsLoadError(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(requestsLoadedMsg{Err: errors.New("connection refused")})
	m = updated.(Model)

	if !strings.Contains(m.View(), "connection refused") {
		t.Error("load error not surfaced")
	}
}

func TestCursorNavigationAndOpen(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(requestsLoadedMsg{Requests: sampleRequests()})
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(Model)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	// Clamped at the end.
	updated, _ = m.Update(keyMsg("j"))
	m = updated.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", m.cursor)
	}

	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)
	if m.screen != screenRespond {
		t.Error("enter should open the respond form")
	}
	if !strings.Contains(m.View(), "Respond to th_2") {
		t.Error("respond view missing thread id")
	}
}

func TestResponseTypeCycles(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(requestsLoadedMsg{Requests: sampleRequests()})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	for i := 0; i < len(responseTypes); i++ {
		updated, _ = m.Update(keyMsg("tab"))
		m = updated.(Model)
	}
	if m.responseType != 0 {
		t.Errorf("responseType = %d, want 0 after full cycle", m.responseType)
	}
}

func TestSubmitRequiresText(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(requestsLoadedMsg{Requests: sampleRequests()})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	// Enter with an empty input must not start a send.
	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if m.sending || cmd != nil {
		t.Error("blank response should not submit")
	}
}

func TestSubmittedReturnsToListAndReloads(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(requestsLoadedMsg{Requests: sampleRequests()})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	updated, cmd := m.Update(responseSubmittedMsg{RequestID: "req_1"})
	m = updated.(Model)
	if m.screen != screenList {
		t.Error("successful submit should return to the list")
	}
	if cmd == nil {
		t.Error("successful submit should trigger a reload")
	}
	if !strings.Contains(m.View(), "workflow resumed") {
		t.Error("success notice missing")
	}
}

func TestEscReturnsToList(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(requestsLoadedMsg{Requests: sampleRequests()})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(Model)

	if m.screen != screenList {
		t.Error("esc should return to the list")
	}
}
