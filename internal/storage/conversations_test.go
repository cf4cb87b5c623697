// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/procur-tui/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func sampleConversation(threadID string) *StoredConversation {
	return &StoredConversation{
		ThreadID:     threadID,
		WorkflowType: "quote",
		Messages: []model.Message{
			model.NewUserMessage("Need 500 keyboards under $50/unit"),
			model.NewMessage(model.SenderAssistant, "Found 3 suppliers."),
		},
	}
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	conv := sampleConversation("th_1")
	if err := store.Save(conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("th_1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ThreadID != "th_1" || loaded.WorkflowType != "quote" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(loaded.Messages))
	}
	if loaded.Messages[0].Sender != model.SenderUser {
		t.Errorf("sender = %q", loaded.Messages[0].Sender)
	}
	if loaded.Summary == "" {
		t.Error("summary should auto-generate")
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestStore_SaveRequiresThreadID(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(&StoredConversation{})
	if !errors.Is(err, ErrNoThreadID) {
		t.Errorf("err = %v, want ErrNoThreadID", err)
	}
}

func TestStore_SavePreservesPaused(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("th_p")
	conv.Paused = true
	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("th_p")
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Paused {
		t.Error("paused flag lost")
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("th_missing")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}

// =============================================================================
// LIST / SEARCH
// =============================================================================

func TestStore_ListMostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	old := sampleConversation("th_old")
	old.CreatedAt = time.Now().Add(-time.Hour)
	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := store.Save(sampleConversation("th_new")); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("metas = %d, want 2", len(metas))
	}
	if metas[0].ThreadID != "th_new" {
		t.Errorf("order wrong: %q first", metas[0].ThreadID)
	}
	if metas[0].MessageCount != 2 || metas[0].Preview == "" {
		t.Errorf("meta = %+v", metas[0])
	}
}

func TestStore_SearchMessages(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(sampleConversation("th_kb")); err != nil {
		t.Fatal(err)
	}
	other := sampleConversation("th_ch")
	other.Messages = []model.Message{model.NewUserMessage("200 office chairs")}
	if err := store.Save(other); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchMessages("KEYBOARDS")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ThreadID != "th_kb" {
		t.Errorf("results = %+v", results)
	}
}

// =============================================================================
// DELETE / PRUNE
// =============================================================================

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(sampleConversation("th_del")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("th_del"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load("th_del"); !errors.Is(err, ErrConversationNotFound) {
		t.Error("conversation should be gone")
	}
	if err := store.Delete("th_del"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("double delete err = %v", err)
	}
}

func TestStore_EnforcesLimit(t *testing.T) {
	store := newTestStore(t)
	store.MaxConversations = 3

	for _, id := range []string{"th_a", "th_b", "th_c", "th_d", "th_e"} {
		if err := store.Save(sampleConversation(id)); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond) // distinct UpdatedAt
	}

	metas, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 {
		t.Errorf("metas = %d, want 3", len(metas))
	}
	// The newest survive.
	if metas[0].ThreadID != "th_e" {
		t.Errorf("newest = %q", metas[0].ThreadID)
	}
	for _, m := range metas {
		if m.ThreadID == "th_a" || m.ThreadID == "th_b" {
			t.Errorf("old conversation %q not pruned", m.ThreadID)
		}
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	conv := sampleConversation("th_md")
	conv.CreatedAt = time.Now()
	md := conv.ExportMarkdown()

	for _, want := range []string{"# Conversation th_md", "Workflow: quote", "**You**", "**Assistant**", "Found 3 suppliers."} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
