// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/procur-tui/internal/ui/styles"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// BANNERS
// =============================================================================

// RenderPausedBanner renders the awaiting-supplier banner shown while the
// workflow is paused on a supplier reply.
func RenderPausedBanner(theme *styles.Theme, width int, nextStep string) string {
	text := styles.StatusIndicators.Pending + " Waiting on supplier response"
	if nextStep != "" {
		text += " - " + nextStep
	}
	text += "  (type a reply to resume)"

	return theme.PausedBanner.
		Width(width).
		Render(util.TruncateWidth(text, width))
}

// RenderErrorBox renders a stream or API error with a dismissal hint.
func RenderErrorBox(theme *styles.Theme, width int, message string) string {
	title := theme.ErrorTitle.Render(styles.StatusIndicators.Error + " Error")
	body := theme.ErrorMessage.Render(message)
	hint := theme.ShortcutDesc.Render("press Esc to dismiss")

	return theme.ErrorBox.
		Width(width - 2).
		Render(title + "\n" + body + "\n" + hint)
}
