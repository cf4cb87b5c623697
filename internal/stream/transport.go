// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// =============================================================================
// TRANSPORT CONSTANTS
// =============================================================================

const (
	// readBufSize is the read buffer for incremental body reads. Chunks are
	// delivered as they arrive; line alignment is the LineBuffer's job.
	readBufSize = 4 * 1024

	// MaxErrorBodySize caps how much of a non-2xx response body is read.
	MaxErrorBodySize = 64 * 1024
)

var (
	// ErrStreamActive is returned when Open is called while a previous
	// exchange is still in flight. The transport owns at most one.
	ErrStreamActive = errors.New("stream already active")
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// No client timeout for streaming - lifetime is controlled via context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// TRANSPORT TYPES
// =============================================================================

// Request describes one streaming exchange with the backend.
type Request struct {
	URL   string
	Body  any
	Token string
}

// Callbacks receive the transport's output. All callbacks for one exchange
// are invoked from a single goroutine, in order: zero or more OnChunk calls,
// then exactly one OnDone or OnFailed.
type Callbacks struct {
	OnChunk  func(text string)
	OnDone   func()
	OnFailed func(err error)
}

// StatusError is returned when the backend answers with a non-2xx status
// before any streaming begins.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("stream request failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("stream request failed with status %d", e.Status)
}

// Transport opens streaming exchanges. The interface exists so the session
// controller can be tested against a scripted transport.
type Transport interface {
	// Open starts the exchange and returns immediately. Delivery happens
	// asynchronously through the callbacks. A second Open while an exchange
	// is in flight fails with ErrStreamActive.
	Open(ctx context.Context, req Request, cb Callbacks) (*Handle, error)
}

// Handle controls one in-flight exchange.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Abort cancels the exchange. Idempotent and best-effort: the terminal
// callback may already be in flight when Abort is called.
func (h *Handle) Abort() {
	h.once.Do(h.cancel)
}

// Done is closed once the terminal callback has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// =============================================================================
// HTTP TRANSPORT
// =============================================================================

// HTTPTransport streams frames over a POST whose response body is read
// incrementally. The body is consumed with raw buffer reads in a dedicated
// goroutine, so callers see bytes as the backend flushes them rather than
// after the response completes.
type HTTPTransport struct {
	client *http.Client

	mu     sync.Mutex
	active bool
}

// NewHTTPTransport creates a transport backed by the shared streaming client.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: sharedStreamingClient}
}

// NewHTTPTransportWithClient creates a transport with a caller-supplied
// client. Used by tests.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Open implements Transport.
func (t *HTTPTransport) Open(ctx context.Context, req Request, cb Callbacks) (*Handle, error) {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return nil, ErrStreamActive
	}
	t.active = true
	t.mu.Unlock()

	bodyBytes, err := json.Marshal(req.Body)
	if err != nil {
		t.release()
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		cancel()
		t.release()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer t.release()
		defer cancel()
		t.run(httpReq, cb)
	}()

	return h, nil
}

// run performs the exchange and invokes the callbacks. It is the only
// goroutine touching cb, which gives the ordering guarantee for free.
func (t *HTTPTransport) run(req *http.Request, cb Callbacks) {
	resp, err := t.client.Do(req)
	if err != nil {
		cb.OnFailed(fmt.Errorf("request failed: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		cb.OnFailed(&StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))})
		return
	}

	buf := make([]byte, readBufSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			cb.OnChunk(string(buf[:n]))
		}
		if err != nil {
			if err == io.EOF {
				cb.OnDone()
				return
			}
			// Context cancellation surfaces here as a read error; the
			// caller distinguishes via errors.Is(err, context.Canceled).
			cb.OnFailed(fmt.Errorf("read error: %w", err))
			return
		}
	}
}

func (t *HTTPTransport) release() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}
