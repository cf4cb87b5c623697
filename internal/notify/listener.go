// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify listens on the backend's websocket channel for push
// notifications (a supplier answered, a workflow can resume). The channel
// carries pointers only; on receipt the UI re-fetches state over REST.
// Notification bytes never feed the frame parser.
package notify

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// NOTIFICATION EVENTS
// =============================================================================

// Event kinds pushed by the backend.
const (
	KindSupplierResponse = "supplier_response"
	KindRequestCreated   = "request_created"
)

// Event is one push notification.
type Event struct {
	Kind      string `json:"type"`
	ThreadID  string `json:"thread_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// =============================================================================
// LISTENER
// =============================================================================

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second

	// readLimit caps notification size; these are pointers, not payloads.
	readLimit = 32 * 1024
)

// Listener maintains one websocket connection with capped-backoff
// reconnect and forwards decoded events on a channel.
type Listener struct {
	url    string
	token  string
	dialer *websocket.Dialer
	events chan Event
	logger *log.Logger
}

// NewListener creates a listener for the given ws:// or wss:// URL.
func NewListener(url, token string, logger *log.Logger) *Listener {
	return &Listener{
		url:    url,
		token:  token,
		dialer: websocket.DefaultDialer,
		events: make(chan Event, 16),
		logger: logger,
	}
}

// Events delivers decoded notifications. Closed when Run returns.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run connects and reads until ctx is canceled, reconnecting with capped
// exponential backoff on any failure. Blocking; run it in a goroutine.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)

	delay := reconnectBaseDelay
	for {
		if ctx.Err() != nil {
			return
		}

		if err := l.readLoop(ctx); err != nil && l.logger != nil {
			l.logger.Printf("notify connection lost: %v", err)
		}
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// readLoop dials once and reads events until the connection drops.
func (l *Listener) readLoop(ctx context.Context) error {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}

	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)

	// Tear the read down when ctx is canceled; ReadJSON has no ctx.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if ev.Kind == "" {
			// Heartbeat or unknown shape; skip.
			continue
		}
		select {
		case l.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
