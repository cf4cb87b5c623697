// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversation state machine: a pure reducer over
// protocol frames, a controller that drives streaming exchanges through it,
// and a transcript assembler for the UI.
package session

import (
	"time"

	"github.com/jeranaias/procur-tui/internal/model"
)

// =============================================================================
// PHASE
// =============================================================================

// Phase is the workflow position of the conversation.
type Phase string

const (
	// PhaseIdle: no exchange in flight; input is accepted.
	PhaseIdle Phase = "idle"
	// PhaseStreaming: an exchange is in flight; input is rejected.
	PhaseStreaming Phase = "streaming"
	// PhaseAwaitingSupplier: the workflow is paused on a supplier response;
	// only a resume is accepted.
	PhaseAwaitingSupplier Phase = "awaiting_supplier"
)

// =============================================================================
// CONNECTION
// =============================================================================

// ConnStatus is the transport-level condition, tracked independently of
// Phase: a stream can be reconnecting while the workflow is mid-flight.
type ConnStatus string

const (
	ConnIdle         ConnStatus = "idle"
	ConnConnected    ConnStatus = "connected"
	ConnReconnecting ConnStatus = "reconnecting"
	ConnError        ConnStatus = "error"
)

// Connection pairs the status with the reconnect attempt counter.
type Connection struct {
	Status  ConnStatus
	Attempt int
}

// =============================================================================
// STATE
// =============================================================================

// State is the complete conversation state. It is a value: Reduce never
// mutates its input, and snapshots handed to the UI are safe to read
// without locks.
type State struct {
	// ThreadID is adopted from the first frame that carries one and never
	// overwritten afterwards.
	ThreadID     string
	WorkflowType string

	// Transcript is append-only; committed messages never change.
	Transcript []model.Message

	// In-flight accumulators. Flushed into the transcript exactly once,
	// on stream termination (or earlier pause/error).
	AssistantDraft string
	ReasoningDraft string

	Phase Phase
	Conn  Connection

	// LastError is the most recent stream error, cleared on the next send.
	LastError string

	// LastSubmitted is the user input of the current exchange, kept for
	// echo suppression against backend-reflected copies.
	LastSubmitted string

	// CurrentStep and NextStep track the backend's progress reporting for
	// the status line.
	CurrentStep string
	NextStep    string

	// DroppedFrames counts malformed frames discarded by the parser.
	DroppedFrames int

	// Seq numbers reducer-committed messages so IDs are deterministic for
	// a given frame sequence.
	Seq int
}

// NewState returns the initial state of a fresh conversation.
func NewState() State {
	return State{
		Phase: PhaseIdle,
		Conn:  Connection{Status: ConnIdle},
	}
}

// clone returns a copy whose transcript is independent of the receiver's.
func (s State) clone() State {
	out := s
	out.Transcript = make([]model.Message, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	return out
}

// withMessage returns a copy with msg appended. The ID is derived from Seq
// so reducing the same frames always yields the same transcript.
func (s State) withMessage(msg model.Message) State {
	out := s.clone()
	msg.ID = messageID(out.Seq)
	out.Seq++
	out.Transcript = append(out.Transcript, msg)
	return out
}

func messageID(seq int) string {
	// Zero-padded so lexicographic order matches arrival order.
	const digits = "0123456789"
	b := []byte("evt_0000")
	for i := len(b) - 1; seq > 0 && i >= 4; i-- {
		b[i] = digits[seq%10]
		seq /= 10
	}
	return string(b)
}

// parseTimestamp converts a backend timestamp to time.Time. Unparseable or
// absent timestamps yield the zero time rather than time.Now(), keeping the
// reducer deterministic.
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
