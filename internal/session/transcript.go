// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/jeranaias/procur-tui/internal/model"

// =============================================================================
// TRANSCRIPT ASSEMBLY
// =============================================================================

// Synthetic IDs for in-flight entries. Stable across assemblies so the view
// can track the streaming rows while their content grows.
const (
	draftReasoningID = "draft_reasoning"
	draftAssistantID = "draft_assistant"
)

// Assemble produces the display transcript for a state snapshot: all
// committed messages followed by synthetic entries for any non-empty
// accumulators, marked as streaming. Pure and idempotent; calling it twice
// on the same snapshot yields the same result, and it never mutates the
// snapshot.
func Assemble(s State) []model.Message {
	out := make([]model.Message, 0, len(s.Transcript)+2)
	out = append(out, s.Transcript...)

	if s.ReasoningDraft != "" {
		out = append(out, model.Message{
			ID:       draftReasoningID,
			Sender:   model.SenderAssistant,
			Kind:     model.KindReasoning,
			Content:  s.ReasoningDraft,
			Delivery: model.DeliveryStreaming,
		})
	}
	if s.AssistantDraft != "" {
		out = append(out, model.Message{
			ID:       draftAssistantID,
			Sender:   model.SenderAssistant,
			Kind:     model.KindNormal,
			Content:  s.AssistantDraft,
			Delivery: model.DeliveryStreaming,
		})
	}
	return out
}
