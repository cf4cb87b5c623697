// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("content = %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("content = %q, want %q", content, "updated")
	}
}

func TestAtomicWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	if err := AtomicWriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "a.json" {
			t.Errorf("leftover file %q in target directory", e.Name())
		}
	}
}

// =============================================================================
// STRING TRUNCATION TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{"truncated", "hello world", 5, "he..."},
		{"exact fit", "hello", 5, "hello"},
		{"shorter", "hi", 5, "hi"},
		{"empty", "", 5, ""},
		{"zero max", "hello world", 0, ""},
		{"no room for ellipsis", "abcd", 3, "abc"},
		{"cjk counted as runes", "日本語テスト", 4, "日..."},
		{"cjk fits", "日本語", 3, "日本語"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TruncateRunes(tc.input, tc.maxRunes)
			if result != tc.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q",
					tc.input, tc.maxRunes, result, tc.expected)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"ascii short", "hello", 10, "hello"},
		{"ascii exact", "hello", 5, "hello"},
		{"ascii truncated", "hello world", 8, "hello..."},
		{"empty", "", 5, ""},
		{"zero width", "hello", 0, ""},
		// 日本語 is 6 columns wide; at 5 only 日 (2 cols) fits before "...".
		{"cjk truncated", "日本語", 5, "日..."},
		{"cjk fits", "日本語", 6, "日本語"},
		{"narrow cut drops ellipsis", "日本語", 2, "日"},
		{"mixed", "ab日本語", 7, "ab日..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TruncateWidth(tc.input, tc.maxWidth)
			if result != tc.expected {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q",
					tc.input, tc.maxWidth, result, tc.expected)
			}
		})
	}
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestIntToString(t *testing.T) {
	testCases := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{42, "42"},
		{-7, "-7"},
	}

	for _, tc := range testCases {
		if result := IntToString(tc.input); result != tc.expected {
			t.Errorf("IntToString(%d) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestFloatToString(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{1234.5, "1234.50"},
		{0, "0.00"},
		{99.999, "100.00"},
	}

	for _, tc := range testCases {
		if result := FloatToString(tc.input); result != tc.expected {
			t.Errorf("FloatToString(%v) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}
