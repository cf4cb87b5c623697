// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for procurement conversations.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSupplier  Sender = "supplier"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Assistant"
	case SenderSupplier:
		return "Supplier"
	default:
		return string(s)
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind distinguishes conversational content from workflow reasoning.
// Reasoning messages come from node progress events and render dimmed;
// normal messages are the conversation proper.
type Kind string

const (
	KindNormal    Kind = "normal"
	KindReasoning Kind = "reasoning"
)

// =============================================================================
// DELIVERY TYPE
// =============================================================================

// Delivery tracks the lifecycle of a message's content.
//
// Valid transitions: streaming -> complete, streaming -> failed.
// A complete or failed message never changes again.
type Delivery string

const (
	DeliveryStreaming Delivery = "streaming"
	DeliveryComplete  Delivery = "complete"
	DeliveryFailed    Delivery = "failed"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a conversation transcript.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Delivery  Delivery  `json:"delivery"`

	// Node is the workflow node that emitted the message, when the
	// backend reported one (e.g. "intent_classifier", "quote_generator").
	Node string `json:"node,omitempty"`
}

// NewMessage creates a complete message with a generated ID.
func NewMessage(sender Sender, content string) Message {
	return Message{
		ID:        generateID(),
		Sender:    sender,
		Kind:      KindNormal,
		Content:   content,
		CreatedAt: time.Now(),
		Delivery:  DeliveryComplete,
	}
}

// NewUserMessage creates a complete user message.
func NewUserMessage(content string) Message {
	return NewMessage(SenderUser, content)
}

// IsFinal reports whether the message's delivery state is terminal.
func (m Message) IsFinal() bool {
	return m.Delivery == DeliveryComplete || m.Delivery == DeliveryFailed
}

// generateID creates a unique message ID using crypto/rand.
// Format: msg_<16 hex chars>
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fallback on rand failure (extremely rare)
		return "msg_" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "msg_" + hex.EncodeToString(b)
}
