// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 200 * time.Millisecond

// Watcher reloads configuration when the config file changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	reloads chan *Config
}

// NewWatcher creates a watcher for the given config file path. The parent
// directory is watched, not the file: editors replace the file on save,
// which would drop a file-level watch.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		path:    path,
		watcher: fw,
		reloads: make(chan *Config, 1),
	}, nil
}

// Reloads delivers freshly loaded configs after file changes. Invalid
// configs are dropped; the last good one stays in effect.
func (w *Watcher) Reloads() <-chan *Config {
	return w.reloads
}

// Run processes events until ctx is canceled. Blocking; run in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	defer close(w.reloads)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			cfg, err := LoadFromPath(w.path)
			if err != nil {
				continue
			}
			select {
			case w.reloads <- cfg:
			default:
				// UI hasn't drained the previous reload; replace it.
				select {
				case <-w.reloads:
				default:
				}
				w.reloads <- cfg
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
