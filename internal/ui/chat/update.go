// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/procur-tui/internal/notify"
	"github.com/jeranaias/procur-tui/internal/session"
	"github.com/jeranaias/procur-tui/internal/storage"
	"github.com/jeranaias/procur-tui/internal/ui/components"
	"github.com/jeranaias/procur-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all Bubble Tea messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ControllerUpdateMsg:
		return m.handleControllerUpdate()

	case RenderTickMsg:
		m.tickScheduled = false
		if m.limiter.Flush() {
			m.refreshTranscript()
		}
		return m, nil

	case NotificationMsg:
		return m.handleNotification(msg.Event)

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.theme = styles.NewThemeWithMode(m.cfg.UI.Theme)
		m.statusBar = components.NewStatusBar(m.theme)
		m.statusBar.SetWidth(m.width)
		m.rebuildRenderer()
		m.refreshTranscript()
		m.notice = "Configuration reloaded"
		return m, nil

	case TranscriptSavedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, storage.ErrNoThreadID) {
			m.notice = "Transcript save failed: " + msg.Err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Everything else (cursor blink, mouse wheel) goes to the input and
	// the viewport.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleControllerUpdate re-renders from the new snapshot, throttled to the
// frame budget, and persists the transcript when an exchange settles.
func (m Model) handleControllerUpdate() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForUpdate(m.ctrl)}

	if m.limiter.Allow() {
		m.refreshTranscript()
	} else if !m.tickScheduled {
		m.tickScheduled = true
		cmds = append(cmds, renderTickCmd(m.limiter.MinFrame()))
	}

	if cmd := m.maybeSave(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// maybeSave persists the transcript after an exchange settles. Streaming
// snapshots are skipped: drafts are not transcript.
func (m *Model) maybeSave() tea.Cmd {
	if m.store == nil {
		return nil
	}
	snap := m.ctrl.Snapshot()
	if snap.Phase == session.PhaseStreaming || snap.ThreadID == "" {
		return nil
	}
	if len(snap.Transcript) == m.savedCount {
		return nil
	}
	m.savedCount = len(snap.Transcript)

	conv := &storage.StoredConversation{
		ThreadID:     snap.ThreadID,
		WorkflowType: snap.WorkflowType,
		Paused:       snap.Phase == session.PhaseAwaitingSupplier,
		Messages:     snap.Transcript,
	}
	store := m.store
	return func() tea.Msg {
		return TranscriptSavedMsg{Err: store.Save(conv)}
	}
}

// handleNotification reacts to websocket push events. A supplier response
// for the paused thread resumes the workflow with the supplier's text;
// anything else becomes a notice line.
func (m Model) handleNotification(ev notify.Event) (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot()

	if ev.Kind == notify.KindSupplierResponse &&
		snap.Phase == session.PhaseAwaitingSupplier &&
		ev.ThreadID == snap.ThreadID {
		// A notification without text means the supplier answered through
		// the portal; the backend already holds the response.
		var err error
		if ev.Message != "" {
			err = m.ctrl.ResumeWithSupplierText(ev.Message)
		} else {
			err = m.ctrl.Resume()
		}
		if err == nil {
			m.limiter.Reset()
			m.notice = "Supplier responded; resuming workflow"
			return m, nil
		}
	}

	if ev.Message != "" {
		m.notice = ev.Message
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		// Ctrl+C cancels an in-flight stream before it quits.
		if msg.String() == "ctrl+c" && snap.Phase == session.PhaseStreaming {
			m.ctrl.Cancel()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if snap.Phase == session.PhaseStreaming {
			m.ctrl.Cancel()
			return m, nil
		}
		m.notice = ""
		m.errDismissed = true
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit(snap)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.ScrollTop):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.ScrollBottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit routes Enter: a paused workflow resumes with the typed text
// as the supplier's reply, otherwise the text starts or continues the
// conversation.
func (m Model) handleSubmit(snap session.State) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	var err error
	if snap.Phase == session.PhaseAwaitingSupplier {
		err = m.ctrl.ResumeWithSupplierText(text)
	} else {
		err = m.ctrl.Submit(text)
	}

	switch {
	case err == nil:
		m.input.Reset()
		m.limiter.Reset()
		m.notice = ""
		m.refreshTranscript()
	case errors.Is(err, session.ErrBusy):
		m.notice = "An exchange is already in flight"
	case errors.Is(err, session.ErrBlankInput):
		// Unreachable after the TrimSpace guard; keep the input as-is.
	default:
		m.notice = err.Error()
	}
	return m, nil
}
