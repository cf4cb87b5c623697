// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package supplier provides the supplier-side portal view for procur-tui.
//
// Suppliers see the buyer requests waiting on them, pick one, and type a
// reply. Submitting posts the response and resumes the buyer's paused
// workflow. Two screens: request list and respond form.
package supplier

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/procur-tui/internal/api"
	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/ui/styles"
)

// requestTimeout bounds every portal API call.
const requestTimeout = 15 * time.Second

// responseTypes are the reply kinds a supplier can cycle through with Tab.
var responseTypes = []string{"quote", "availability", "negotiation", "general"}

// screen selects which portal screen is active.
type screen int

const (
	screenList screen = iota
	screenRespond
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// requestsLoadedMsg delivers the pending request list.
type requestsLoadedMsg struct {
	Requests []model.SupplierRequest
	Err      error
}

// responseSubmittedMsg reports the submit + resume outcome for a request.
type responseSubmittedMsg struct {
	RequestID string
	Err       error
}

// =============================================================================
// SUPPLIER MODEL
// =============================================================================

// Model is the Bubble Tea model for the supplier portal.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	screen   screen
	requests []model.SupplierRequest
	cursor   int

	input        textinput.Model
	responseType int
	spinner      spinner.Model

	width   int
	height  int
	loading bool
	sending bool
	notice  string
	err     string
}

// New creates the supplier portal model.
func New(client *api.Client, themeMode string) Model {
	theme := styles.NewThemeWithMode(themeMode)

	input := textinput.New()
	input.Placeholder = "Type your response..."
	input.Prompt = ""
	input.CharLimit = 4000

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)

	return Model{
		client:  client,
		theme:   theme,
		screen:  screenList,
		input:   input,
		spinner: sp,
		loading: true,
		width:   80,
		height:  24,
	}
}

// Init loads the pending requests.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadRequestsCmd(m.client))
}

// =============================================================================
// COMMANDS
// =============================================================================

// loadRequestsCmd fetches the requests awaiting this supplier.
func loadRequestsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		requests, err := client.PendingRequests(ctx)
		return requestsLoadedMsg{Requests: requests, Err: err}
	}
}

// submitResponseCmd posts the supplier's reply, then resumes the buyer's
// paused workflow against the same request.
func submitResponseCmd(client *api.Client, requestID string, resp model.SupplierResponse) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.SubmitResponse(ctx, requestID, resp); err != nil {
			return responseSubmittedMsg{RequestID: requestID, Err: err}
		}
		err := client.ResumeWorkflow(ctx, requestID)
		return responseSubmittedMsg{RequestID: requestID, Err: err}
	}
}

// selected returns the request under the cursor, or nil.
func (m Model) selected() *model.SupplierRequest {
	if m.cursor < 0 || m.cursor >= len(m.requests) {
		return nil
	}
	return &m.requests[m.cursor]
}
