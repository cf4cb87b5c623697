// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/session"
	"github.com/jeranaias/procur-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the complete chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting procur-tui..."
	}

	snap := m.ctrl.Snapshot()

	sections := []string{
		m.renderHeader(snap),
		m.viewport.View(),
	}

	if snap.Phase == session.PhaseAwaitingSupplier {
		sections = append(sections, components.RenderPausedBanner(m.theme, m.width, snap.NextStep))
	}
	if snap.LastError != "" && !m.errDismissed {
		sections = append(sections, components.RenderErrorBox(m.theme, m.width, snap.LastError))
	}
	if m.notice != "" {
		sections = append(sections, m.theme.InfoStyle.Render(m.notice))
	}

	sections = append(sections,
		m.renderInput(snap),
		m.statusBar.View(),
	)

	return strings.Join(sections, "\n")
}

// renderHeader renders the one-line brand header.
func (m Model) renderHeader(snap session.State) string {
	title := "procur"
	subtitle := "procurement assistant"
	if snap.WorkflowType != "" {
		subtitle = snap.WorkflowType + " workflow"
	}
	if snap.ThreadID != "" {
		subtitle += "  " + snap.ThreadID
	}

	return m.theme.Header.
		Width(m.width).
		Render(title + "  " + m.theme.HeaderSubtitle.Render(subtitle))
}

// renderInput renders the input line. During streaming the input is
// replaced by the spinner and the current pipeline step.
func (m Model) renderInput(snap session.State) string {
	if snap.Phase == session.PhaseStreaming {
		working := m.spinner.View() + " " + m.theme.WorkingText.Render("Working...")
		if snap.CurrentStep != "" {
			working += m.theme.WorkingStep.Render(snap.CurrentStep)
		}
		return m.theme.InputContainer.Width(m.width).Render(working)
	}

	prompt := m.theme.InputPrompt.Render("> ")
	if snap.Phase == session.PhaseAwaitingSupplier {
		prompt = m.theme.WarningStyle.Render("supplier> ")
	}
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// renderTranscript renders the assembled transcript, drafts included, into
// a single viewport string.
func (m Model) renderTranscript(snap session.State) string {
	messages := session.Assemble(snap)
	if len(messages) == 0 {
		return m.renderWelcome()
	}

	var blocks []string
	for _, msg := range messages {
		if msg.Kind == model.KindReasoning && !m.cfg.UI.ShowReasoning {
			continue
		}
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

// renderMessage renders one message: a sender label line, then the styled
// content block.
func (m Model) renderMessage(msg model.Message) string {
	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName())
	if !msg.CreatedAt.IsZero() {
		label += " " + m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	}
	switch msg.Delivery {
	case model.DeliveryStreaming:
		label += " " + m.theme.WorkingText.Render("...")
	case model.DeliveryFailed:
		label += " " + m.theme.FailedLabel.Render("(failed)")
	}

	content := msg.Content
	if msg.Kind == model.KindReasoning {
		return label + "\n" + m.theme.Reasoning.Width(m.contentWidth()).Render(content)
	}

	// PERFORMANCE: markdown rendering only for settled assistant messages;
	// streaming drafts change every frame and render as plain text.
	if msg.Sender == model.SenderAssistant && msg.Delivery == model.DeliveryComplete {
		content = m.renderMarkdown(content)
	}

	return label + "\n" + m.bubbleFor(msg.Sender).Width(m.contentWidth()).Render(content)
}

// renderMarkdown renders assistant content through glamour, falling back
// to plain text on any error.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (m Model) bubbleFor(sender model.Sender) lipgloss.Style {
	switch sender {
	case model.SenderUser:
		return m.theme.UserBubble
	case model.SenderSupplier:
		return m.theme.SupplierBubble
	default:
		return m.theme.AssistantBubble
	}
}

func (m Model) contentWidth() int {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return w
}

// renderWelcome fills the empty transcript with a short usage hint.
func (m Model) renderWelcome() string {
	lines := []string{
		m.theme.HeaderTitle.Render("procur"),
		"",
		m.theme.WorkingText.Render("Describe what you need and the assistant will find"),
		m.theme.WorkingText.Render("suppliers, draft requests, and collect quotes."),
		"",
		m.theme.ShortcutDesc.Render("Example: \"I need 500 mechanical keyboards under $50/unit\""),
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
