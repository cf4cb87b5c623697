// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/procur-tui/internal/config"
	"github.com/jeranaias/procur-tui/internal/session"
	"github.com/jeranaias/procur-tui/internal/storage"
	"github.com/jeranaias/procur-tui/internal/ui/components"
	"github.com/jeranaias/procur-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// chromeHeight is the fixed vertical space around the transcript viewport:
// header, input container (border + line), status bar.
const chromeHeight = 5

// maxContentWidth caps the markdown wrap width on very wide terminals.
const maxContentWidth = 100

// Model is the Bubble Tea model for the buyer chat view.
type Model struct {
	ctrl  *session.Controller
	store *storage.ConversationStore
	cfg   *config.Config

	theme     *styles.Theme
	keys      KeyMap
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	statusBar *components.StatusBar
	limiter   *RenderLimiter
	renderer  *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// tickScheduled prevents stacking deferred-redraw ticks.
	tickScheduled bool

	// notice is a one-line transient message (save failures, push
	// notifications, rejected input). Cleared with Esc.
	notice string

	// errDismissed hides the current LastError box until the next failure.
	errDismissed bool
	lastError    string

	// savedCount is the transcript length already persisted, so idle
	// updates don't rewrite an unchanged cache file.
	savedCount int
}

// New creates the chat model. store may be nil to disable transcript
// caching.
func New(ctrl *session.Controller, store *storage.ConversationStore, cfg *config.Config) Model {
	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Describe what you need to procure..."
	input.Prompt = ""
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)

	m := Model{
		ctrl:      ctrl,
		store:     store,
		cfg:       cfg,
		theme:     theme,
		keys:      DefaultKeyMap(),
		input:     input,
		spinner:   sp,
		statusBar: components.NewStatusBar(theme),
		limiter:   NewRenderLimiter(),
	}
	m.savedCount = len(ctrl.Snapshot().Transcript)
	return m
}

// Init starts the input cursor, the spinner, and the controller update pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForUpdate(m.ctrl),
	)
}

// waitForUpdate blocks on the controller's change signal and converts it to
// a Bubble Tea message. Re-armed after every ControllerUpdateMsg.
func waitForUpdate(ctrl *session.Controller) tea.Cmd {
	ch := ctrl.Updates()
	return func() tea.Msg {
		<-ch
		return ControllerUpdateMsg{}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize applies a new terminal size to every component.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.statusBar.SetWidth(width)
	m.input.Width = width - 6

	viewportHeight := height - chromeHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}

	m.rebuildRenderer()
	m.refreshTranscript()
}

// rebuildRenderer recreates the markdown renderer at the current wrap
// width. A nil renderer falls back to plain text.
func (m *Model) rebuildRenderer() {
	if !m.cfg.UI.Markdown {
		m.renderer = nil
		return
	}

	wrap := m.width - 8
	if wrap > maxContentWidth {
		wrap = maxContentWidth
	}
	if wrap < 20 {
		wrap = 20
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

// refreshTranscript re-renders the transcript into the viewport and keeps
// the view pinned to the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	snap := m.ctrl.Snapshot()
	m.statusBar.Apply(snap)
	if snap.LastError != m.lastError {
		m.lastError = snap.LastError
		m.errDismissed = false
	}
	m.viewport.SetContent(m.renderTranscript(snap))
	m.viewport.GotoBottom()
}
