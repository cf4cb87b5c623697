// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the buyer-side chat view for procur-tui.
//
// The view is a thin Bubble Tea layer over session.Controller: all protocol
// and transcript state lives in the controller, and the view re-renders from
// Snapshot() whenever the controller signals a change on Updates().
//
// Layout, top to bottom:
//
//   - header (brand, workflow type, thread id)
//   - transcript viewport (assembled from the session snapshot)
//   - paused banner while a workflow awaits a supplier reply
//   - error box for stream failures
//   - input line
//   - status bar (phase, connection, current pipeline step)
//
// Rendering during streaming is throttled by RenderLimiter so a fast token
// stream cannot push the terminal past ~30 redraws per second.
package chat
