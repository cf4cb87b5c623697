// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local transcript persistence for procur-tui.
// Conversations are cached as JSON files keyed by backend thread ID so a
// session can be rehydrated without refetching history.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/procur-tui/internal/model"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation is a persisted conversation transcript.
type StoredConversation struct {
	// ThreadID is the backend's identifier and the storage key.
	ThreadID     string `json:"thread_id"`
	WorkflowType string `json:"workflow_type,omitempty"`
	Summary      string `json:"summary"`

	// Paused records whether the workflow was awaiting a supplier when
	// last saved, so hydration restores the right phase.
	Paused bool `json:"paused,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []model.Message `json:"messages"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ThreadID     string    `json:"thread_id"`
	WorkflowType string    `json:"workflow_type,omitempty"`
	Summary      string    `json:"summary"`
	Paused       bool      `json:"paused,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore handles transcript persistence.
type ConversationStore struct {
	// BaseDir is the directory for stored conversations.
	// Default: ~/.procur/conversations/
	BaseDir string

	// MaxConversations limits stored conversations (0 = unlimited).
	MaxConversations int
}

// NewConversationStore creates a store under the user's home directory.
func NewConversationStore() (*ConversationStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConversationStoreWithDir(filepath.Join(homeDir, ".procur", "conversations"))
}

// NewConversationStoreWithDir creates a store with a custom directory.
func NewConversationStoreWithDir(baseDir string) (*ConversationStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &ConversationStore{
		BaseDir:          baseDir,
		MaxConversations: 100,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation. The thread ID must be set; conversations
// that never adopted one (failed before the first frame) are not worth
// caching.
func (s *ConversationStore) Save(conv *StoredConversation) error {
	if conv.ThreadID == "" {
		return ErrNoThreadID
	}

	if conv.Summary == "" {
		conv.Summary = generateSummary(conv.Messages)
	}

	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.filePath(conv.ThreadID), data, 0644); err != nil {
		return err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return nil
}

// generateSummary creates a summary from the first user message.
func generateSummary(msgs []model.Message) string {
	for _, msg := range msgs {
		if msg.Sender == model.SenderUser && msg.Content != "" {
			content := strings.ReplaceAll(msg.Content, "\n", " ")
			content = strings.ReplaceAll(content, "\r", "")
			return util.TruncateRunes(content, 50)
		}
	}
	return "New conversation"
}

// enforceLimit removes the oldest conversations when over the cap.
func (s *ConversationStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	excess := len(metas) - s.MaxConversations
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].ThreadID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by thread ID.
func (s *ConversationStore) Load(threadID string) (*StoredConversation, error) {
	data, err := os.ReadFile(s.filePath(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// LoadMostRecent loads the most recently updated conversation.
func (s *ConversationStore) LoadMostRecent() (*StoredConversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, ErrConversationNotFound
	}
	return s.Load(metas[0].ThreadID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations (most recent first).
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	var metas []ConversationMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip corrupted files
		}

		preview := ""
		for _, msg := range conv.Messages {
			if msg.Sender == model.SenderUser {
				preview = util.TruncateRunes(msg.Content, 80)
				break
			}
		}

		metas = append(metas, ConversationMeta{
			ThreadID:     conv.ThreadID,
			WorkflowType: conv.WorkflowType,
			Summary:      conv.Summary,
			Paused:       conv.Paused,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
			Preview:      preview,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds conversations whose summary or preview matches the query.
func (s *ConversationStore) Search(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []ConversationMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// SearchMessages searches conversations by message content
// (case-insensitive).
func (s *ConversationStore) SearchMessages(query string) ([]ConversationMeta, error) {
	if query == "" {
		return s.List()
	}

	query = strings.ToLower(query)
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var results []ConversationMeta
	for _, meta := range all {
		conv, err := s.Load(meta.ThreadID)
		if err != nil {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by thread ID.
func (s *ConversationStore) Delete(threadID string) error {
	if err := os.Remove(s.filePath(threadID)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved conversations.
func (s *ConversationStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a thread ID.
func (s *ConversationStore) filePath(threadID string) string {
	return filepath.Join(s.BaseDir, threadID+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ErrNoThreadID is returned when saving a conversation without a thread ID.
var ErrNoThreadID = &ConversationError{Message: "conversation has no thread id"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown exports the conversation as a Markdown formatted string.
func (c *StoredConversation) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Conversation " + c.ThreadID + "\n\n")
	if c.WorkflowType != "" {
		sb.WriteString("Workflow: " + c.WorkflowType + "\n\n")
	}
	sb.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		label := "**" + msg.Sender.DisplayName() + "**"
		if msg.Kind == model.KindReasoning {
			label += " _(workflow)_"
		}
		if !msg.CreatedAt.IsZero() {
			label += " (" + msg.CreatedAt.Format("15:04") + ")"
		}
		sb.WriteString(label + ":\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// GetPreview returns a preview string from the first user message.
func (c *StoredConversation) GetPreview() string {
	for _, msg := range c.Messages {
		if msg.Sender == model.SenderUser && msg.Content != "" {
			return util.TruncateRunes(msg.Content, 80)
		}
	}
	return ""
}
