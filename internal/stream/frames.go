// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the wire protocol between the client and the
// procurement backend: SSE-style framing over a streamed POST response.
//
// The backend emits frames of the form
//
//	: ping
//	data: {"type": "message", "content": "...", ...}
//
// separated by blank lines. The event type lives inside the JSON payload,
// not in an SSE "event:" field. The stream has no terminator frame; EOF is
// the authoritative end-of-stream signal.
package stream

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// FRAME TYPES
// =============================================================================

// Event type strings emitted by the backend.
const (
	EventConnected        = "connected"
	EventMessage          = "message"
	EventAIChunk          = "ai_chunk"
	EventAIComplete       = "ai_complete"
	EventNodeProgress     = "node_progress"
	EventIntentClassified = "intent_classified"
	EventParamsExtracted  = "parameters_extracted"
	EventSuppliersFound   = "suppliers_found"
	EventQuoteGenerated   = "quote_generated"
	EventMessageDrafted   = "message_drafted"
	EventResponseAnalyzed = "response_analyzed"
	EventSupplierWait     = "supplier_wait"
	EventPaused           = "paused"
	EventSupplierResponse = "supplier_response"
	EventWorkflowComplete = "workflow_complete"
	EventReconnecting     = "reconnecting"
	EventError            = "error"
	EventClose            = "close"
)

// Payload is the superset of fields the backend puts inside frame JSON.
// Individual event types populate only a subset; absent fields decode to
// zero values.
type Payload struct {
	ThreadID         string          `json:"thread_id,omitempty"`
	WorkflowType     string          `json:"workflow_type,omitempty"`
	Role             string          `json:"role,omitempty"`
	Node             string          `json:"node,omitempty"`
	Status           string          `json:"status,omitempty"`
	Content          string          `json:"content,omitempty"`
	Intent           string          `json:"intent,omitempty"`
	NextStep         string          `json:"next_step,omitempty"`
	IsPaused         bool            `json:"is_paused,omitempty"`
	Error            string          `json:"error,omitempty"`
	Timestamp        string          `json:"timestamp,omitempty"`
	Attempt          int             `json:"attempt,omitempty"`
	Count            int             `json:"count,omitempty"`
	QuoteID          string          `json:"quote_id,omitempty"`
	EstimatedSavings float64         `json:"estimated_savings,omitempty"`
	Suppliers        json.RawMessage `json:"suppliers,omitempty"`
	Parameters       json.RawMessage `json:"parameters,omitempty"`
}

// Frame is one decoded protocol event.
type Frame struct {
	Type    string
	Payload Payload
}

// frameEnvelope is the decode target; the type discriminator sits alongside
// the payload fields in the same JSON object.
type frameEnvelope struct {
	Type string `json:"type"`
	Payload
}

// =============================================================================
// FRAME PARSING
// =============================================================================

// ParseFrames decodes all frames in text. It is pure: no state survives
// between calls, so the caller must only pass complete-line-aligned text
// (see LineBuffer).
//
// Blank lines and comment lines (": ping" heartbeats) are discarded.
// Malformed data lines are dropped and counted, never fatal; one bad frame
// does not poison the rest of the batch.
func ParseFrames(text string) (frames []Frame, dropped int) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		// SSE comment lines; the backend uses ": ping" as a heartbeat.
		if strings.HasPrefix(line, ":") {
			continue
		}

		var data string
		switch {
		case strings.HasPrefix(line, "data: "):
			data = line[len("data: "):]
		case strings.HasPrefix(line, "data:"):
			data = line[len("data:"):]
		default:
			// Unknown field (event:, id:, retry:) - the backend never sends
			// these, but skipping them keeps the parser tolerant.
			continue
		}

		var env frameEnvelope
		if err := json.Unmarshal([]byte(data), &env); err != nil {
			dropped++
			continue
		}
		if env.Type == "" {
			dropped++
			continue
		}

		frames = append(frames, Frame{Type: env.Type, Payload: env.Payload})
	}
	return frames, dropped
}

// =============================================================================
// LINE BUFFER
// =============================================================================

// LineBuffer carries a partial trailing line between transport chunks so
// ParseFrames only ever sees complete lines. Chunk boundaries fall anywhere,
// including mid-JSON; without this, a split frame would be dropped as
// malformed on both sides of the boundary.
type LineBuffer struct {
	pending strings.Builder
}

// Feed appends chunk and returns the complete-line-aligned prefix
// accumulated so far. Text after the last newline stays buffered until a
// later chunk completes the line.
func (b *LineBuffer) Feed(chunk string) string {
	b.pending.WriteString(chunk)
	s := b.pending.String()

	idx := strings.LastIndexByte(s, '\n')
	if idx < 0 {
		return ""
	}

	complete := s[:idx+1]
	rest := s[idx+1:]
	b.pending.Reset()
	b.pending.WriteString(rest)
	return complete
}

// Flush returns any buffered partial line and resets the buffer. Called at
// end of stream; a trailing frame without a final newline is still parsed.
func (b *LineBuffer) Flush() string {
	s := b.pending.String()
	b.pending.Reset()
	return s
}
