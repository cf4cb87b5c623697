// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package supplier

import (
	"strings"

	"github.com/jeranaias/procur-tui/internal/ui/styles"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the active portal screen.
func (m Model) View() string {
	header := m.theme.Header.
		Width(m.width).
		Render("procur supplier portal")

	var body string
	if m.screen == screenRespond {
		body = m.viewRespond()
	} else {
		body = m.viewList()
	}

	sections := []string{header, body}
	if m.err != "" {
		sections = append(sections, styles.RenderError(m.err))
	}
	if m.notice != "" {
		sections = append(sections, styles.RenderSuccess(m.notice))
	}
	return strings.Join(sections, "\n")
}

// viewList renders the pending request list.
func (m Model) viewList() string {
	if m.loading {
		return "\n " + m.spinner.View() + " " +
			m.theme.WorkingText.Render("Loading pending requests...")
	}
	if len(m.requests) == 0 {
		return "\n" + m.theme.WorkingText.Render(" No requests waiting on you.") +
			"\n\n" + m.hintLine("r refresh", "q quit")
	}

	var lines []string
	lines = append(lines, m.theme.ListTitle.Render(" Pending requests"), "")

	for i, req := range m.requests {
		title := req.Subject
		if title == "" {
			title = util.TruncateRunes(req.Message, 60)
		}
		meta := req.ThreadID
		if req.RequestType != "" {
			meta += "  " + req.RequestType
		}
		if !req.CreatedAt.IsZero() {
			meta += "  " + req.CreatedAt.Format("Jan 2 15:04")
		}

		line := title + "  " + m.theme.ListMeta.Render(meta)
		if i == m.cursor {
			lines = append(lines, m.theme.ListItemSelected.Render("> "+line))
		} else {
			lines = append(lines, m.theme.ListItem.Render("  "+line))
		}
	}

	lines = append(lines, "", m.hintLine("Enter respond", "r refresh", "q quit"))
	return strings.Join(lines, "\n")
}

// viewRespond renders the respond form for the selected request.
func (m Model) viewRespond() string {
	req := m.selected()
	if req == nil {
		return ""
	}

	var lines []string
	lines = append(lines,
		m.theme.ListTitle.Render(" Respond to "+req.ThreadID),
		"",
		m.theme.WorkingText.Render(" Buyer request:"),
		m.theme.Container.Width(m.width-4).Render(req.Message),
		"",
	)

	// Response type selector, Tab to cycle.
	var kinds []string
	for i, kind := range responseTypes {
		if i == m.responseType {
			kinds = append(kinds, m.theme.ListItemSelected.Render(kind))
		} else {
			kinds = append(kinds, m.theme.ListItem.Render(kind))
		}
	}
	lines = append(lines, " "+strings.Join(kinds, " "), "")

	if m.sending {
		lines = append(lines, " "+m.spinner.View()+" "+
			m.theme.WorkingText.Render("Sending response..."))
	} else {
		prompt := m.theme.InputPrompt.Render("> ")
		lines = append(lines, m.theme.InputContainer.
			Width(m.width).
			Render(prompt+m.input.View()))
	}

	lines = append(lines, "", m.hintLine("Enter send", "Tab response type", "Esc back"))
	return strings.Join(lines, "\n")
}

// hintLine renders the footer shortcut hints.
func (m Model) hintLine(hints ...string) string {
	var parts []string
	for _, hint := range hints {
		fields := strings.SplitN(hint, " ", 2)
		parts = append(parts,
			m.theme.ShortcutKey.Render(fields[0])+" "+m.theme.ShortcutDesc.Render(fields[1]))
	}
	return " " + strings.Join(parts, "   ")
}
