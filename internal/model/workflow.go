// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// WORKFLOW TYPES
// =============================================================================

// WorkflowType identifies which procurement workflow a conversation runs.
type WorkflowType string

const (
	WorkflowQuote       WorkflowType = "quote"
	WorkflowNegotiation WorkflowType = "negotiation"
	WorkflowGeneral     WorkflowType = "general"
)

// ConversationSummary is one row of the conversation list endpoint.
type ConversationSummary struct {
	ThreadID     string       `json:"thread_id"`
	WorkflowType WorkflowType `json:"workflow_type"`
	Status       string       `json:"status"`
	Preview      string       `json:"preview,omitempty"`
	IsPaused     bool         `json:"is_paused"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// WorkflowStatus is the backend's view of where a conversation stands.
type WorkflowStatus struct {
	ThreadID     string       `json:"thread_id"`
	WorkflowType WorkflowType `json:"workflow_type"`
	Status       string       `json:"status"`
	IsPaused     bool         `json:"is_paused"`
	NextStep     string       `json:"next_step,omitempty"`
	CurrentNode  string       `json:"current_node,omitempty"`
}

// ExtractedParameters holds the parameters the backend pulled out of the
// buyer's request. The backend's parameter set is workflow-dependent, so
// known fields are typed and the rest ride along in Raw.
type ExtractedParameters struct {
	Product     string         `json:"product,omitempty"`
	Quantity    int            `json:"quantity,omitempty"`
	Budget      float64        `json:"budget,omitempty"`
	Deadline    string         `json:"deadline,omitempty"`
	Intent      string         `json:"intent,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// =============================================================================
// SUPPLIER + QUOTE TYPES
// =============================================================================

// Supplier is a candidate supplier returned by the search step.
type Supplier struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	LeadTime  string  `json:"lead_time,omitempty"`
	Selected  bool    `json:"selected,omitempty"`
}

// Quote is the generated quote summary for a quote workflow.
type Quote struct {
	QuoteID          string     `json:"quote_id"`
	ThreadID         string     `json:"thread_id"`
	SupplierName     string     `json:"supplier_name,omitempty"`
	TotalPrice       float64    `json:"total_price,omitempty"`
	EstimatedSavings float64    `json:"estimated_savings,omitempty"`
	Status           string     `json:"status,omitempty"`
	Suppliers        []Supplier `json:"suppliers,omitempty"`
	CreatedAt        time.Time  `json:"created_at,omitempty"`
}

// NegotiationState is the negotiation workflow's current position.
type NegotiationState struct {
	ThreadID      string  `json:"thread_id"`
	SupplierName  string  `json:"supplier_name,omitempty"`
	CurrentOffer  float64 `json:"current_offer,omitempty"`
	TargetPrice   float64 `json:"target_price,omitempty"`
	Round         int     `json:"round,omitempty"`
	LastResponse  string  `json:"last_response,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// =============================================================================
// SUPPLIER PORTAL TYPES
// =============================================================================

// SupplierRequest is a message awaiting a supplier's response.
type SupplierRequest struct {
	RequestID   string    `json:"request_id"`
	ThreadID    string    `json:"thread_id"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	RequestType string    `json:"request_type,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// SupplierResponse is what a supplier submits against a request.
type SupplierResponse struct {
	ResponseText string         `json:"response_text"`
	ResponseType string         `json:"response_type"`
	ResponseData map[string]any `json:"response_data,omitempty"`
}

// Notification is a supplier portal notification.
type Notification struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
