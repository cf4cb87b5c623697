// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the application:
// transcript messages, workflow summaries, suppliers, quotes, and the
// supplier portal types. The JSON tags mirror the backend's wire names.
package model
