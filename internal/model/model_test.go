// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewMessage(SenderAssistant, "hello")

	if msg.Sender != SenderAssistant {
		t.Errorf("Sender = %q, want %q", msg.Sender, SenderAssistant)
	}
	if msg.Content != "hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "hello")
	}
	if msg.Kind != KindNormal {
		t.Errorf("Kind = %q, want %q", msg.Kind, KindNormal)
	}
	if msg.Delivery != DeliveryComplete {
		t.Errorf("Delivery = %q, want %q", msg.Delivery, DeliveryComplete)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestGenerateID_Format(t *testing.T) {
	id := generateID()
	if !strings.HasPrefix(id, "msg_") {
		t.Errorf("ID %q should have msg_ prefix", id)
	}
	if len(id) != len("msg_")+16 {
		t.Errorf("ID %q has length %d, want %d", id, len(id), len("msg_")+16)
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := generateID()
		if seen[id] {
			t.Fatalf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestMessage_IsFinal(t *testing.T) {
	testCases := []struct {
		delivery Delivery
		want     bool
	}{
		{DeliveryStreaming, false},
		{DeliveryComplete, true},
		{DeliveryFailed, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.delivery), func(t *testing.T) {
			m := Message{Delivery: tc.delivery}
			if got := m.IsFinal(); got != tc.want {
				t.Errorf("IsFinal() with %q = %v, want %v", tc.delivery, got, tc.want)
			}
		})
	}
}

// =============================================================================
// SENDER TESTS
// =============================================================================

func TestSender_DisplayName(t *testing.T) {
	testCases := []struct {
		sender   Sender
		expected string
	}{
		{SenderUser, "You"},
		{SenderAssistant, "Assistant"},
		{SenderSupplier, "Supplier"},
		{Sender("webhook"), "webhook"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.sender), func(t *testing.T) {
			if got := tc.sender.DisplayName(); got != tc.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tc.expected)
			}
		})
	}
}
