// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"fmt"
	"reflect"
	"testing"
)

// =============================================================================
// PARSE FRAMES TESTS
// =============================================================================

func TestParseFrames_Basic(t *testing.T) {
	text := ": ping\n" +
		`data: {"type": "connected", "thread_id": "th_1", "workflow_type": "quote"}` + "\n" +
		"\n" +
		`data: {"type": "message", "node": "intent_classifier", "role": "assistant", "content": "Hello"}` + "\n" +
		"\n"

	frames, dropped := ParseFrames(text)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	if frames[0].Type != EventConnected {
		t.Errorf("frames[0].Type = %q, want %q", frames[0].Type, EventConnected)
	}
	if frames[0].Payload.ThreadID != "th_1" {
		t.Errorf("ThreadID = %q, want %q", frames[0].Payload.ThreadID, "th_1")
	}
	if frames[1].Type != EventMessage {
		t.Errorf("frames[1].Type = %q, want %q", frames[1].Type, EventMessage)
	}
	if frames[1].Payload.Content != "Hello" {
		t.Errorf("Content = %q, want %q", frames[1].Payload.Content, "Hello")
	}
}

func TestParseFrames_SkipsHeartbeats(t *testing.T) {
	text := ": ping\n: ping\n\n: keepalive\n"
	frames, dropped := ParseFrames(text)
	if len(frames) != 0 || dropped != 0 {
		t.Errorf("got %d frames %d dropped, want 0/0", len(frames), dropped)
	}
}

func TestParseFrames_DropsMalformed(t *testing.T) {
	text := `data: {"type": "message", "content": "ok"}` + "\n" +
		`data: {not json at all` + "\n" +
		`data: {"no_type_field": true}` + "\n" +
		`data: {"type": "ai_chunk", "content": "still fine"}` + "\n"

	frames, dropped := ParseFrames(text)
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Payload.Content != "ok" || frames[1].Payload.Content != "still fine" {
		t.Error("good frames around a malformed one should survive")
	}
}

func TestParseFrames_CRLF(t *testing.T) {
	text := "data: {\"type\": \"close\"}\r\n\r\n"
	frames, dropped := ParseFrames(text)
	if dropped != 0 || len(frames) != 1 {
		t.Fatalf("got %d frames %d dropped, want 1/0", len(frames), dropped)
	}
	if frames[0].Type != EventClose {
		t.Errorf("Type = %q, want %q", frames[0].Type, EventClose)
	}
}

func TestParseFrames_UnknownFields(t *testing.T) {
	// event:/id:/retry: lines are never sent by the backend but must not
	// break the parser.
	text := "event: message\nid: 42\nretry: 1000\ndata: {\"type\": \"paused\"}\n"
	frames, dropped := ParseFrames(text)
	if dropped != 0 || len(frames) != 1 {
		t.Fatalf("got %d frames %d dropped, want 1/0", len(frames), dropped)
	}
}

// ParseFrames must be pure: identical input yields identical output
// regardless of call history.
func TestParseFrames_Pure(t *testing.T) {
	text := `data: {"type": "ai_chunk", "content": "abc"}` + "\n"

	first, _ := ParseFrames(text)
	ParseFrames(`data: {"type": "error", "error": "boom"}` + "\n")
	second, _ := ParseFrames(text)

	if len(first) != 1 || len(second) != 1 {
		t.Fatal("expected one frame per call")
	}
	if !reflect.DeepEqual(first[0], second[0]) {
		t.Errorf("results differ across calls: %+v vs %+v", first[0], second[0])
	}
}

func TestParseFrames_WorkflowComplete(t *testing.T) {
	text := `data: {"type": "workflow_complete", "thread_id": "th_9", "status": "paused", "is_paused": true, "next_step": "await_supplier"}` + "\n"
	frames, _ := ParseFrames(text)
	if len(frames) != 1 {
		t.Fatal("expected one frame")
	}
	p := frames[0].Payload
	if !p.IsPaused || p.NextStep != "await_supplier" || p.ThreadID != "th_9" {
		t.Errorf("payload not decoded: %+v", p)
	}
}

// =============================================================================
// LINE BUFFER TESTS
// =============================================================================

func TestLineBuffer_SplitFrame(t *testing.T) {
	var lb LineBuffer

	// A frame split mid-JSON across two chunks must reassemble.
	out1 := lb.Feed(`data: {"type": "mess`)
	if out1 != "" {
		t.Errorf("partial line should stay buffered, got %q", out1)
	}

	out2 := lb.Feed("age\", \"content\": \"hi\"}\n")
	frames, dropped := ParseFrames(out2)
	if dropped != 0 || len(frames) != 1 {
		t.Fatalf("got %d frames %d dropped, want 1/0", len(frames), dropped)
	}
	if frames[0].Payload.Content != "hi" {
		t.Errorf("Content = %q, want %q", frames[0].Payload.Content, "hi")
	}
}

func TestLineBuffer_MultipleLinesOneChunk(t *testing.T) {
	var lb LineBuffer
	out := lb.Feed("data: {\"type\": \"paused\"}\ndata: {\"type\": \"close\"}\ndata: {\"type\": \"trunc")

	frames, _ := ParseFrames(out)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	// The truncated third line completes on the next feed.
	out = lb.Feed("ated_is_fine\"}\n")
	frames, _ = ParseFrames(out)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Type != "truncated_is_fine" {
		t.Errorf("Type = %q", frames[0].Type)
	}
}

func TestLineBuffer_Flush(t *testing.T) {
	var lb LineBuffer
	lb.Feed(`data: {"type": "close"}`) // no trailing newline

	out := lb.Flush()
	frames, dropped := ParseFrames(out)
	if dropped != 0 || len(frames) != 1 {
		t.Fatalf("flushed tail should parse, got %d frames %d dropped", len(frames), dropped)
	}

	if lb.Flush() != "" {
		t.Error("second flush should be empty")
	}
}

func TestLineBuffer_ByteAtATime(t *testing.T) {
	line := `data: {"type": "ai_chunk", "content": "slow"}` + "\n"
	var lb LineBuffer
	var total []Frame
	for i := 0; i < len(line); i++ {
		out := lb.Feed(line[i : i+1])
		frames, dropped := ParseFrames(out)
		if dropped != 0 {
			t.Fatalf("dropped frame at byte %d", i)
		}
		total = append(total, frames...)
	}
	if len(total) != 1 || total[0].Payload.Content != "slow" {
		t.Errorf("byte-at-a-time delivery broke parsing: %+v", total)
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkParseFrames(b *testing.B) {
	var text string
	for i := 0; i < 50; i++ {
		text += ": ping\n" + fmt.Sprintf(`data: {"type": "ai_chunk", "content": "token %d"}`, i) + "\n\n"
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseFrames(text)
	}
}
