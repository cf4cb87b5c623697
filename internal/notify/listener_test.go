// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestListener_DeliversEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok_ws" {
			t.Errorf("Authorization = %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		conn.WriteJSON(map[string]string{
			"type": "supplier_response", "thread_id": "th_1", "request_id": "rq_1",
		})
		// Unknown shapes are skipped, not fatal.
		conn.WriteJSON(map[string]string{"ping": "1"})
		conn.WriteJSON(map[string]string{"type": "request_created", "request_id": "rq_2"})
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(wsURL(server), "tok_ws", nil)
	go l.Run(ctx)

	var got []Event
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-l.Events():
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("only received %d events", len(got))
		}
	}

	if got[0].Kind != KindSupplierResponse || got[0].ThreadID != "th_1" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Kind != KindRequestCreated || got[1].RequestID != "rq_2" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestListener_ReconnectsAfterDrop(t *testing.T) {
	var conns atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := conns.Add(1)
		if n == 1 {
			// First connection drops immediately.
			conn.Close()
			return
		}
		defer conn.Close()
		conn.WriteJSON(map[string]string{"type": "supplier_response", "thread_id": "th_2"})
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(wsURL(server), "", nil)
	go l.Run(ctx)

	select {
	case ev := <-l.Events():
		if ev.ThreadID != "th_2" {
			t.Errorf("ev = %+v", ev)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not reconnect")
	}

	if conns.Load() < 2 {
		t.Errorf("conns = %d, want >= 2", conns.Load())
	}
}

func TestListener_StopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Hold the connection open.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener(wsURL(server), "", nil)

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Events channel closes with Run.
	if _, ok := <-l.Events(); ok {
		// A buffered event may drain first; channel must still close.
		for range l.Events() {
		}
	}
}
