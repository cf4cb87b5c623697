// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/stream"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// REDUCER
// =============================================================================

// Reduce applies one protocol frame to the state and returns the successor
// state. It is deterministic and performs no I/O: message IDs come from the
// state's sequence counter and timestamps from the frame payload, so the
// same state and frame sequence always produce the same result.
//
// Unrecognized frame types are deliberate no-ops; the backend adds event
// types faster than clients update.
func Reduce(s State, f stream.Frame) State {
	p := f.Payload

	switch f.Type {
	case stream.EventConnected:
		out := s.clone()
		out.adoptThreadID(p.ThreadID)
		if p.WorkflowType != "" {
			out.WorkflowType = p.WorkflowType
		}
		out.Conn = Connection{Status: ConnConnected}
		out.Phase = PhaseStreaming
		return out

	case stream.EventReconnecting:
		out := s.clone()
		out.Conn = Connection{Status: ConnReconnecting, Attempt: p.Attempt}
		return out

	case stream.EventMessage:
		// The backend reflects the submitted input back as a message frame;
		// suppressing by trimmed equality against the last submission keeps
		// the transcript from doubling it. Best effort: an identical earlier
		// message would also be suppressed.
		if strings.TrimSpace(p.Content) == strings.TrimSpace(s.LastSubmitted) {
			return s
		}
		if p.Role == "user" {
			return s.withMessage(model.Message{
				Sender:    model.SenderUser,
				Kind:      model.KindNormal,
				Content:   p.Content,
				CreatedAt: parseTimestamp(p.Timestamp),
				Delivery:  model.DeliveryComplete,
				Node:      p.Node,
			})
		}
		out := s.clone()
		if out.AssistantDraft != "" {
			out.AssistantDraft += "\n\n"
		}
		out.AssistantDraft += p.Content
		if p.Node != "" {
			out.CurrentStep = p.Node
		}
		return out

	case stream.EventAIChunk:
		if strings.TrimSpace(p.Content) == strings.TrimSpace(s.LastSubmitted) {
			return s
		}
		out := s.clone()
		out.AssistantDraft += p.Content
		return out

	case stream.EventNodeProgress:
		out := s.clone()
		if p.Node != "" {
			line := p.Node
			if p.Status != "" {
				line += ": " + p.Status
			}
			if out.ReasoningDraft != "" {
				out.ReasoningDraft += "\n"
			}
			out.ReasoningDraft += line
			out.CurrentStep = p.Node
		}
		// Progress frames can carry content of their own; it accumulates
		// like any other streamed text, echo rule included.
		if p.Content != "" &&
			strings.TrimSpace(p.Content) != strings.TrimSpace(s.LastSubmitted) {
			if out.ReasoningDraft != "" {
				out.ReasoningDraft += "\n"
			}
			out.ReasoningDraft += p.Content
		}
		if p.NextStep != "" {
			out.NextStep = p.NextStep
		}
		return out

	case stream.EventAIComplete:
		out := flushDrafts(s, model.DeliveryComplete, p.Timestamp)
		out.adoptThreadID(p.ThreadID)
		out.Phase = PhaseIdle
		out.Conn = Connection{Status: ConnIdle}
		return out

	case stream.EventWorkflowComplete:
		out := flushDrafts(s, model.DeliveryComplete, p.Timestamp)
		out.adoptThreadID(p.ThreadID)
		if p.NextStep != "" {
			out.NextStep = p.NextStep
		}
		if p.IsPaused {
			// The backend reports pause through the completion frame when
			// the workflow stops on a supplier handoff.
			out.Phase = PhaseAwaitingSupplier
		} else {
			out.Phase = PhaseIdle
		}
		out.Conn = Connection{Status: ConnIdle}
		return out

	case stream.EventSupplierWait, stream.EventPaused:
		out := flushDrafts(s, model.DeliveryComplete, p.Timestamp)
		out.Phase = PhaseAwaitingSupplier
		if p.NextStep != "" {
			out.NextStep = p.NextStep
		}
		return out

	case stream.EventSupplierResponse:
		// The response the pause was waiting on has arrived; the workflow
		// is no longer blocked on the supplier.
		out := s.withMessage(model.Message{
			Sender:    model.SenderSupplier,
			Kind:      model.KindNormal,
			Content:   p.Content,
			CreatedAt: parseTimestamp(p.Timestamp),
			Delivery:  model.DeliveryComplete,
		})
		out.Phase = PhaseIdle
		return out

	case stream.EventError:
		// Partial drafts are flushed rather than dropped so the user keeps
		// whatever arrived before the failure.
		out := flushDrafts(s, model.DeliveryFailed, p.Timestamp)
		out.Phase = PhaseIdle
		out.Conn = Connection{Status: ConnError}
		if p.Error != "" {
			out.LastError = p.Error
		} else {
			out.LastError = "stream error"
		}
		return out

	case stream.EventIntentClassified:
		out := s.clone()
		out.CurrentStep = "Intent: " + p.Intent
		return out

	case stream.EventParamsExtracted:
		out := s.clone()
		out.CurrentStep = "Parameters extracted"
		return out

	case stream.EventSuppliersFound:
		out := s.clone()
		out.CurrentStep = "Found " + util.IntToString(p.Count) + " suppliers"
		return out

	case stream.EventQuoteGenerated:
		out := s.clone()
		out.CurrentStep = "Quote " + p.QuoteID + " generated"
		if p.EstimatedSavings > 0 {
			out.CurrentStep += " (est. savings $" + util.FloatToString(p.EstimatedSavings) + ")"
		}
		return out

	case stream.EventMessageDrafted:
		out := s.clone()
		out.CurrentStep = "Supplier message drafted"
		return out

	case stream.EventResponseAnalyzed:
		out := s.clone()
		out.CurrentStep = "Supplier response analyzed"
		return out

	case stream.EventClose:
		// Informational; EOF is the authoritative terminator.
		return s

	default:
		return s
	}
}

// adoptThreadID sets the thread ID once. Later frames carrying a different
// ID never override the first adoption.
func (s *State) adoptThreadID(id string) {
	if s.ThreadID == "" && id != "" {
		s.ThreadID = id
	}
}

// flushDrafts commits both accumulators to the transcript with the given
// terminal delivery state and clears them. Empty accumulators commit
// nothing, which is what makes a second terminal frame a no-op.
func flushDrafts(s State, delivery model.Delivery, ts string) State {
	out := s
	if out.ReasoningDraft != "" {
		out = out.withMessage(model.Message{
			Sender:    model.SenderAssistant,
			Kind:      model.KindReasoning,
			Content:   out.ReasoningDraft,
			CreatedAt: parseTimestamp(ts),
			Delivery:  delivery,
		})
		out.ReasoningDraft = ""
	}
	if out.AssistantDraft != "" {
		out = out.withMessage(model.Message{
			Sender:    model.SenderAssistant,
			Kind:      model.KindNormal,
			Content:   out.AssistantDraft,
			CreatedAt: parseTimestamp(ts),
			Delivery:  delivery,
		})
		out.AssistantDraft = ""
	}
	if len(out.Transcript) == len(s.Transcript) {
		// Nothing flushed; still return an independent copy.
		out = out.clone()
	}
	return out
}
