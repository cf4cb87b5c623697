// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for procur-tui.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/procur-tui/internal/session"
	"github.com/jeranaias/procur-tui/internal/ui/styles"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// StatusBar renders the bottom status line: workflow phase, connection
// condition, thread identity, and the current pipeline step.
type StatusBar struct {
	ThreadID     string
	WorkflowType string
	Phase        session.Phase
	Conn         session.Connection
	CurrentStep  string
	MessageCount int
	Width        int

	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Phase:         session.PhaseIdle,
		Conn:          session.Connection{Status: session.ConnIdle},
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// Apply refreshes the bar from a session snapshot.
func (s *StatusBar) Apply(state session.State) {
	s.ThreadID = state.ThreadID
	s.WorkflowType = state.WorkflowType
	s.Phase = state.Phase
	s.Conn = state.Conn
	s.CurrentStep = state.CurrentStep
	s.MessageCount = len(state.Transcript)
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [phase] conn msgs
func (s *StatusBar) viewNarrow() string {
	parts := []string{
		s.phaseStyle().Render(s.phaseIcon()),
		s.connStyle().Render(s.connText()),
		s.theme.ShortcutDesc.Render(util.IntToString(s.MessageCount) + " msg"),
	}

	return s.theme.StatusBar.
		Width(s.Width).
		Render(strings.Join(parts, " | "))
}

// viewWide renders the full status bar.
// Format: phase | conn | thread | workflow | step ... shortcuts
func (s *StatusBar) viewWide() string {
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	leftParts := []string{
		s.phaseStyle().Render(s.phaseIcon() + " " + s.phaseText()),
		s.connStyle().Render(s.connText()),
	}

	if s.ThreadID != "" {
		thread := util.TruncateRunes(s.ThreadID, 16)
		leftParts = append(leftParts, s.theme.ShortcutDesc.Render(thread))
	}
	if s.WorkflowType != "" {
		leftParts = append(leftParts, s.theme.ShortcutDesc.Render(s.WorkflowType))
	}
	if s.CurrentStep != "" && s.Phase == session.PhaseStreaming {
		step := util.TruncateRunes(s.CurrentStep, 32)
		leftParts = append(leftParts, s.theme.WorkingStep.Render(step))
	}

	leftSection := strings.Join(leftParts, separator)
	rightSection := ""
	if s.ShowShortcuts {
		rightSection = s.renderShortcuts()
	}

	leftWidth := lipgloss.Width(leftSection)
	rightWidth := lipgloss.Width(rightSection)
	spacing := s.Width - leftWidth - rightWidth - 2
	if spacing < 1 {
		spacing = 1
	}

	return s.theme.StatusBar.
		Width(s.Width).
		Render(leftSection + strings.Repeat(" ", spacing) + rightSection)
}

// renderShortcuts renders keyboard shortcut hints for the current phase.
func (s *StatusBar) renderShortcuts() string {
	key := s.theme.ShortcutKey
	desc := s.theme.ShortcutDesc

	var shortcuts []string
	switch s.Phase {
	case session.PhaseStreaming:
		shortcuts = []string{key.Render("Esc") + desc.Render(" cancel")}
	case session.PhaseAwaitingSupplier:
		shortcuts = []string{key.Render("Enter") + desc.Render(" supplier reply")}
	default:
		shortcuts = []string{key.Render("Enter") + desc.Render(" send")}
	}
	shortcuts = append(shortcuts, key.Render("^Q")+desc.Render(" quit"))

	return strings.Join(shortcuts, " ")
}

// =============================================================================
// PHASE AND CONNECTION DISPLAY
// =============================================================================

func (s *StatusBar) phaseText() string {
	switch s.Phase {
	case session.PhaseStreaming:
		return "Streaming"
	case session.PhaseAwaitingSupplier:
		return "Awaiting supplier"
	default:
		return "Ready"
	}
}

// phaseIcon returns a shape indicator for the phase.
// ACCESSIBILITY: Distinct shapes alongside colors for colorblind users.
func (s *StatusBar) phaseIcon() string {
	switch s.Phase {
	case session.PhaseStreaming:
		return "~"
	case session.PhaseAwaitingSupplier:
		return styles.StatusIndicators.Pending
	default:
		return styles.StatusIndicators.Success
	}
}

func (s *StatusBar) phaseStyle() lipgloss.Style {
	switch s.Phase {
	case session.PhaseStreaming:
		return s.theme.InfoStyle
	case session.PhaseAwaitingSupplier:
		return s.theme.WarningStyle
	default:
		return s.theme.SuccessStyle
	}
}

func (s *StatusBar) connText() string {
	switch s.Conn.Status {
	case session.ConnConnected:
		return "connected"
	case session.ConnReconnecting:
		return "reconnecting (" + util.IntToString(s.Conn.Attempt) + ")"
	case session.ConnError:
		return styles.StatusIndicators.Error + " disconnected"
	default:
		return "offline"
	}
}

func (s *StatusBar) connStyle() lipgloss.Style {
	switch s.Conn.Status {
	case session.ConnConnected:
		return s.theme.SuccessStyle
	case session.ConnReconnecting:
		return s.theme.WarningStyle
	case session.ConnError:
		return s.theme.ErrorStyle
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
