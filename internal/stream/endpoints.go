// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import "fmt"

// =============================================================================
// ENDPOINT REQUEST BUILDERS
// =============================================================================

// startBody is the payload for a new conversation.
type startBody struct {
	UserInput      string `json:"user_input"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	Channel        string `json:"channel"`
}

// continueBody is the payload for a follow-up turn.
type continueBody struct {
	UserInput string `json:"user_input"`
}

// resumeBody is the payload for resuming a paused workflow. The response
// text is omitted when the backend already holds the supplier's answer.
type resumeBody struct {
	SupplierResponse string `json:"supplier_response,omitempty"`
}

// StartRequest builds the exchange that opens a new conversation.
// recipientEmail is optional; channel defaults to "chat" when empty.
func StartRequest(baseURL, token, userInput, recipientEmail, channel string) Request {
	if channel == "" {
		channel = "chat"
	}
	return Request{
		URL:   baseURL + "/conversations/stream",
		Token: token,
		Body: startBody{
			UserInput:      userInput,
			RecipientEmail: recipientEmail,
			Channel:        channel,
		},
	}
}

// ContinueRequest builds the exchange for a follow-up turn on an existing
// conversation.
func ContinueRequest(baseURL, token, threadID, userInput string) Request {
	return Request{
		URL:   fmt.Sprintf("%s/conversations/%s/stream/continue", baseURL, threadID),
		Token: token,
		Body:  continueBody{UserInput: userInput},
	}
}

// ResumeRequest builds the exchange that resumes a workflow paused on a
// supplier response.
func ResumeRequest(baseURL, token, threadID, supplierResponse string) Request {
	return Request{
		URL:   fmt.Sprintf("%s/conversations/%s/stream/resume", baseURL, threadID),
		Token: token,
		Body:  resumeBody{SupplierResponse: supplierResponse},
	}
}
