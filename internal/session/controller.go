// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/stream"
)

// =============================================================================
// CONTROLLER ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a send arrives while an exchange is open.
	// Rejected synchronously; no queueing.
	ErrBusy = errors.New("an exchange is already in flight")

	// ErrBlankInput is returned for whitespace-only input.
	ErrBlankInput = errors.New("input is blank")

	// ErrNotPaused is returned when a resume is attempted outside the
	// awaiting-supplier phase.
	ErrNotPaused = errors.New("workflow is not awaiting a supplier response")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller.
type Options struct {
	BaseURL        string
	Token          string
	RecipientEmail string
	Channel        string
	Transport      stream.Transport
	Logger         *log.Logger
}

// Controller drives streaming exchanges and owns the session state. All
// frames pass through the reducer in arrival order on the transport's
// delivery goroutine; the UI reads copy-snapshots and is notified of
// changes through Updates.
type Controller struct {
	mu    sync.Mutex
	state State

	transport stream.Transport
	handle    *stream.Handle
	lb        stream.LineBuffer
	canceling bool

	baseURL        string
	token          string
	recipientEmail string
	channel        string

	updates chan struct{}
	logger  *log.Logger
}

// NewController creates a controller in the idle state.
func NewController(opts Options) *Controller {
	tr := opts.Transport
	if tr == nil {
		tr = stream.NewHTTPTransport()
	}
	return &Controller{
		state:          NewState(),
		transport:      tr,
		baseURL:        opts.BaseURL,
		token:          opts.Token,
		recipientEmail: opts.RecipientEmail,
		channel:        opts.Channel,
		updates:        make(chan struct{}, 1),
		logger:         opts.Logger,
	}
}

// Snapshot returns a copy of the current state, safe to read without locks.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Updates signals state changes. The channel is a level trigger: a receive
// means "take a fresh snapshot", not "one event happened".
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Busy reports whether an exchange is currently open.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// =============================================================================
// SEND OPERATIONS
// =============================================================================

// Submit sends user input, starting a new conversation when no thread ID
// has been adopted yet and continuing the existing one otherwise. The user
// message is committed to the transcript before the exchange opens, so a
// transport failure never loses what the user typed.
func (c *Controller) Submit(input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrBlankInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil || c.state.Phase == PhaseStreaming {
		return ErrBusy
	}

	var req stream.Request
	if c.state.ThreadID == "" {
		req = stream.StartRequest(c.baseURL, c.token, input, c.recipientEmail, c.channel)
	} else {
		req = stream.ContinueRequest(c.baseURL, c.token, c.state.ThreadID, input)
	}

	c.state = c.state.withMessage(model.NewUserMessage(input))
	c.state.LastSubmitted = input
	return c.openLocked(req)
}

// ResumeWithSupplierText resumes a paused workflow with the supplier's
// response text. Only valid in the awaiting-supplier phase.
func (c *Controller) ResumeWithSupplierText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrBlankInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return ErrBusy
	}
	if c.state.Phase != PhaseAwaitingSupplier {
		return ErrNotPaused
	}

	req := stream.ResumeRequest(c.baseURL, c.token, c.state.ThreadID, text)
	c.state = c.state.withMessage(model.Message{
		Sender:   model.SenderSupplier,
		Kind:     model.KindNormal,
		Content:  text,
		Delivery: model.DeliveryComplete,
	})
	c.state.LastSubmitted = text
	return c.openLocked(req)
}

// Resume reopens the stream for a paused workflow without supplying
// response text. Used when the supplier has already answered through the
// portal and the backend holds the response.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return ErrBusy
	}
	if c.state.Phase != PhaseAwaitingSupplier {
		return ErrNotPaused
	}

	return c.openLocked(stream.ResumeRequest(c.baseURL, c.token, c.state.ThreadID, ""))
}

// openLocked starts the exchange. Caller holds c.mu.
func (c *Controller) openLocked(req stream.Request) error {
	c.state.Phase = PhaseStreaming
	c.state.Conn = Connection{Status: ConnConnected}
	c.state.LastError = ""
	c.canceling = false
	c.lb = stream.LineBuffer{}

	h, err := c.transport.Open(context.Background(), req, stream.Callbacks{
		OnChunk:  c.onChunk,
		OnDone:   c.onDone,
		OnFailed: c.onFailed,
	})
	if err != nil {
		if errors.Is(err, stream.ErrStreamActive) {
			err = ErrBusy
		}
		c.state.Phase = PhaseIdle
		c.state.Conn = Connection{Status: ConnError}
		c.state.LastError = err.Error()
		c.notify()
		return err
	}
	c.handle = h
	c.notify()
	return nil
}

// =============================================================================
// TRANSPORT CALLBACKS
// =============================================================================

// onChunk runs on the transport goroutine; arrival order is reduction order.
func (c *Controller) onChunk(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canceling {
		// Late delivery from an aborted exchange.
		return
	}
	complete := c.lb.Feed(text)
	if complete == "" {
		return
	}
	c.reduceLocked(complete)
	c.notify()
}

// onDone handles clean EOF. If the reducer is still mid-stream (the
// backend closed without a terminal frame), a synthetic workflow_complete
// flushes the drafts. The phase guard keeps a pause reached earlier in the
// stream from being clobbered back to idle.
func (c *Controller) onDone() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tail := c.lb.Flush(); tail != "" && !c.canceling {
		c.reduceLocked(tail + "\n")
	}
	if c.state.Phase == PhaseStreaming && !c.canceling {
		c.state = Reduce(c.state, stream.Frame{Type: stream.EventWorkflowComplete})
	}
	c.handle = nil
	c.notify()
}

// onFailed handles transport failure. Cancellation is not an error: Cancel
// already reset the state synchronously, so the callback only clears the
// handle. Anything else becomes a synthetic error frame, which flushes
// partial drafts as failed messages.
func (c *Controller) onFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tail := c.lb.Flush(); tail != "" && !c.canceling {
		c.reduceLocked(tail + "\n")
	}
	if !c.canceling && !errors.Is(err, context.Canceled) {
		c.state = Reduce(c.state, stream.Frame{
			Type:    stream.EventError,
			Payload: stream.Payload{Error: err.Error()},
		})
		if c.logger != nil {
			c.logger.Printf("stream failed: %v", err)
		}
	}
	c.handle = nil
	c.notify()
}

// reduceLocked parses complete-line text and feeds each frame through the
// reducer. Caller holds c.mu.
func (c *Controller) reduceLocked(text string) {
	frames, dropped := stream.ParseFrames(text)
	if dropped > 0 {
		c.state.DroppedFrames += dropped
		if c.logger != nil {
			c.logger.Printf("dropped %d malformed frames", dropped)
		}
	}
	for _, f := range frames {
		c.state = Reduce(c.state, f)
	}
}

// =============================================================================
// CANCEL / RESET / HYDRATE
// =============================================================================

// Cancel aborts the in-flight exchange, if any. The state is reset
// synchronously: drafts are dropped unflushed, the phase returns to idle,
// and no error is recorded. Late frames from the aborted exchange are
// discarded by the transport teardown. No-op when nothing is in flight.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return
	}
	c.canceling = true
	c.handle.Abort()

	c.state = c.state.clone()
	c.state.AssistantDraft = ""
	c.state.ReasoningDraft = ""
	c.state.Phase = PhaseIdle
	c.state.Conn = Connection{Status: ConnIdle}
	c.notify()
}

// Reset abandons the conversation entirely and returns to the initial
// state. Used for "new conversation".
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		c.canceling = true
		c.handle.Abort()
	}
	c.state = NewState()
	c.notify()
}

// Hydrate loads a previously stored conversation: transcript and thread ID
// set, phase idle (or awaiting-supplier when the stored workflow was
// paused), no exchange in flight. Rejected while an exchange is open.
func (c *Controller) Hydrate(threadID string, transcript []model.Message, paused bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return ErrBusy
	}

	s := NewState()
	s.ThreadID = threadID
	s.Transcript = make([]model.Message, len(transcript))
	copy(s.Transcript, transcript)
	s.Seq = len(transcript)
	if paused {
		s.Phase = PhaseAwaitingSupplier
	}
	c.state = s
	c.notify()
	return nil
}

// notify wakes the UI without blocking. Caller holds c.mu.
func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
