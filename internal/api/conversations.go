// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations returns up to limit conversation summaries, most recent
// first. limit <= 0 uses the backend default.
func (c *Client) ListConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error) {
	path := "/conversations"
	if limit > 0 {
		path += "?limit=" + util.IntToString(limit)
	}
	var out struct {
		Conversations []model.ConversationSummary `json:"conversations"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// Status returns the workflow status for a thread.
func (c *Client) Status(ctx context.Context, threadID string) (*model.WorkflowStatus, error) {
	var out model.WorkflowStatus
	if err := c.get(ctx, "/conversations/"+threadID+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages returns the stored message history for a thread.
func (c *Client) Messages(ctx context.Context, threadID string) ([]model.Message, error) {
	var out struct {
		Messages []storedMessage `json:"messages"`
	}
	if err := c.get(ctx, "/conversations/"+threadID+"/messages", &out); err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, len(out.Messages))
	for _, sm := range out.Messages {
		msgs = append(msgs, sm.toModel())
	}
	return msgs, nil
}

// Comprehensive is the full backend view of a conversation: status,
// extracted parameters, suppliers, and quote in one response.
type Comprehensive struct {
	Status     model.WorkflowStatus      `json:"status"`
	Parameters model.ExtractedParameters `json:"extracted_parameters"`
	Suppliers  []model.Supplier          `json:"suppliers"`
	Quote      *model.Quote              `json:"quote,omitempty"`
}

// ComprehensiveView fetches the combined conversation state.
func (c *Client) ComprehensiveView(ctx context.Context, threadID string) (*Comprehensive, error) {
	var out Comprehensive
	if err := c.get(ctx, "/conversations/"+threadID+"/comprehensive", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractedParameters returns what the backend parsed from the request.
func (c *Client) ExtractedParameters(ctx context.Context, threadID string) (*model.ExtractedParameters, error) {
	var out model.ExtractedParameters
	if err := c.get(ctx, "/conversations/"+threadID+"/extracted-parameters", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suppliers returns the candidate suppliers found for a thread.
func (c *Client) Suppliers(ctx context.Context, threadID string) ([]model.Supplier, error) {
	var out struct {
		Suppliers []model.Supplier `json:"suppliers"`
	}
	if err := c.get(ctx, "/conversations/"+threadID+"/suppliers", &out); err != nil {
		return nil, err
	}
	return out.Suppliers, nil
}

// QuoteWorkflow returns the quote state for a quote-workflow thread.
func (c *Client) QuoteWorkflow(ctx context.Context, threadID string) (*model.Quote, error) {
	var out model.Quote
	if err := c.get(ctx, "/conversations/"+threadID+"/quote", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NegotiationWorkflow returns the negotiation state for a thread.
func (c *Client) NegotiationWorkflow(ctx context.Context, threadID string) (*model.NegotiationState, error) {
	var out model.NegotiationState
	if err := c.get(ctx, "/conversations/"+threadID+"/negotiation", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectSupplier picks one of the found suppliers for the workflow.
func (c *Client) SelectSupplier(ctx context.Context, threadID, supplierID string) error {
	body := map[string]string{"supplier_id": supplierID}
	return c.post(ctx, "/conversations/"+threadID+"/select-supplier", body, nil)
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// storedMessage is the backend's message shape, which differs from the
// local transcript model (role instead of sender, no delivery state).
type storedMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Node      string `json:"node,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (sm storedMessage) toModel() model.Message {
	sender := model.SenderAssistant
	switch sm.Role {
	case "user", "human":
		sender = model.SenderUser
	case "supplier":
		sender = model.SenderSupplier
	}

	var created time.Time
	if sm.Timestamp != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, sm.Timestamp); err == nil {
				created = t
				break
			}
		}
	}

	id := sm.ID
	if id == "" {
		id = fmt.Sprintf("hist_%s", sm.Timestamp)
	}

	return model.Message{
		ID:        id,
		Sender:    sender,
		Kind:      model.KindNormal,
		Content:   sm.Content,
		CreatedAt: created,
		Delivery:  model.DeliveryComplete,
		Node:      sm.Node,
	}
}
