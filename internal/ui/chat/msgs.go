// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/procur-tui/internal/config"
	"github.com/jeranaias/procur-tui/internal/notify"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ControllerUpdateMsg signals that the session controller state changed.
// The view re-reads Snapshot(); the message itself carries nothing.
type ControllerUpdateMsg struct{}

// RenderTickMsg fires a deferred redraw when streaming output arrives
// faster than the frame budget allows.
type RenderTickMsg struct {
	Time time.Time
}

// NotificationMsg delivers a push notification from the websocket listener.
type NotificationMsg struct {
	Event notify.Event
}

// ConfigReloadedMsg delivers a config hot-reload from the file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// TranscriptSavedMsg reports the outcome of a background transcript save.
type TranscriptSavedMsg struct {
	Err error
}
