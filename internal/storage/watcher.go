/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that the watched document was modified or removed by
// someone else.
type Change struct {
	Path    string
	Removed bool
}

// Watcher notifies when the document file changes on disk. It watches the
// directory so the atomic rename done by Save is seen as a change.
type Watcher struct {
	fw       *fsnotify.Watcher
	path     string
	debounce time.Duration
	changes  chan Change

	mu          sync.Mutex
	ignoreUntil time.Time
	timer       *time.Timer
	closed      bool
}

// Watch starts watching path. Bursts of events within debounce collapse into
// one Change.
func Watch(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	w := &Watcher{fw: fw, path: abs, debounce: debounce, changes: make(chan Change, 1)}
	go w.loop()
	return w, nil
}

// Changes delivers debounced changes. It is closed by Close.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Ignore drops events for d, so the editor's own save is not reported.
func (w *Watcher) Ignore(d time.Duration) {
	w.mu.Lock()
	w.ignoreUntil = time.Now().Add(d)
	w.mu.Unlock()
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fw.Close()
}

func (w *Watcher) loop() {
	l := logger().With(slog.String("path", w.path))
	defer func() {
		w.mu.Lock()
		w.closed = true
		close(w.changes)
		w.mu.Unlock()
	}()
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if abs, _ := filepath.Abs(ev.Name); abs != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			l.Warn("watcher error", slog.Any("err", err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || time.Now().Before(w.ignoreUntil) {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	// a remove followed by a create is the atomic replace of a save
	_, err := os.Stat(w.path)
	c := Change{Path: w.path, Removed: errors.Is(err, os.ErrNotExist)}
	select {
	case w.changes <- c:
	default:
		// a change is already pending
	}
}
