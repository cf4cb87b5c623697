// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for procur-tui.
//
// Components are small, stateless-or-nearly-stateless renderers used by the
// chat and supplier views:
//
//   - StatusBar: bottom bar showing workflow phase, connection condition,
//     thread identity, and the current pipeline step.
//   - RenderPausedBanner: amber banner while a workflow waits on a supplier.
//   - RenderErrorBox: boxed stream/API error with a dismissal hint.
//
// Components take a *styles.Theme and render strings; they hold no business
// state beyond what the views copy into them each frame.
package components
