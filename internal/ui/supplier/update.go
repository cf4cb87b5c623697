// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package supplier

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/procur-tui/internal/model"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all Bubble Tea messages for the supplier portal.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.input.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case requestsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.requests = msg.Requests
		if m.cursor >= len(m.requests) {
			m.cursor = 0
		}
		return m, nil

	case responseSubmittedMsg:
		m.sending = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.notice = "Response sent; buyer workflow resumed"
		m.screen = screenList
		m.input.Reset()
		m.loading = true
		return m, loadRequestsCmd(m.client)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+q" || msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == screenRespond {
		return m.handleRespondKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.requests)-1 {
			m.cursor++
		}
	case "r":
		m.loading = true
		m.notice = ""
		return m, loadRequestsCmd(m.client)
	case "enter":
		if req := m.selected(); req != nil {
			m.screen = screenRespond
			m.responseType = 0
			m.notice = ""
			m.err = ""
			m.input.Focus()
			return m, nil
		}
	}
	return m, nil
}

func (m Model) handleRespondKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.screen = screenList
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case "tab":
		m.responseType = (m.responseType + 1) % len(responseTypes)
		return m, nil
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed response for the selected request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	req := m.selected()
	text := strings.TrimSpace(m.input.Value())
	if req == nil || text == "" {
		return m, nil
	}

	m.sending = true
	resp := model.SupplierResponse{
		ResponseText: text,
		ResponseType: responseTypes[m.responseType],
	}
	return m, submitResponseCmd(m.client, req.RequestID, resp)
}
