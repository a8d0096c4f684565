/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo and redo stacks of whole-document
// snapshots. Snapshots are opaque bytes; the editor stores codec output.
package undo

import (
	"sync"
	"time"
)

// DefaultDepth is the number of undo steps kept when Config.MaxDepth is unset.
const DefaultDepth = 50

// Snapshot is the document as it was before (undo stack) or after (redo
// stack) a command.
type Snapshot struct {
	Label string
	Blob  []byte
	TS    time.Time
}

// Config controls depth and memory caps and coalescing behavior.
type Config struct {
	// MaxDepth caps the undo stack; the oldest entry is dropped past it.
	MaxDepth int
	// MaxBytes is a soft cap over both stacks; the oldest undo entries are
	// pruned while it is exceeded, always keeping the newest one.
	MaxBytes int
	// MinInterval coalesces records with the same label: a record within the
	// interval of the previous one keeps the earlier snapshot, so a burst of
	// keystrokes undoes as one step. Zero disables coalescing.
	MinInterval time.Duration
	// Mergeable limits coalescing to some labels; nil allows every label.
	Mergeable func(label string) bool
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Stats describes the stacks for diagnostics.
type Stats struct {
	UndoDepth int
	RedoDepth int
	Bytes     int
}

// Manager is safe for concurrent use, though the editor drives it from a
// single goroutine.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       []Snapshot
	redo       []Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultDepth
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 64 * 1024 * 1024 // 64 MiB
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg}
}

// Record pushes the state captured before a mutation and invalidates redo.
func (m *Manager) Record(label string, before []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.cfg.Now()
	m.dropRedoLocked()
	if n := len(m.undo); n > 0 && m.cfg.MinInterval > 0 {
		last := &m.undo[n-1]
		if last.Label == label && m.mergeable(label) && now.Sub(last.TS) < m.cfg.MinInterval {
			last.TS = now
			return
		}
	}
	m.undo = append(m.undo, Snapshot{Label: label, Blob: before, TS: now})
	m.totalBytes += len(before)
	m.enforceCapsLocked()
}

// Undo pops the newest snapshot and parks current on the redo stack.
func (m *Manager) Undo(current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.totalBytes -= len(s.Blob)
	m.redo = append(m.redo, Snapshot{Label: s.Label, Blob: current, TS: m.cfg.Now()})
	m.totalBytes += len(current)
	return s, true
}

// Redo pops the newest redo snapshot and parks current on the undo stack.
func (m *Manager) Redo(current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.totalBytes -= len(s.Blob)
	m.undo = append(m.undo, Snapshot{Label: s.Label, Blob: current, TS: time.Time{}})
	m.totalBytes += len(current)
	m.enforceCapsLocked()
	return s, true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// UndoLabel names the step Undo would revert, for menu captions.
func (m *Manager) UndoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.undo); n > 0 {
		return m.undo[n-1].Label
	}
	return ""
}

// Clear empties both stacks, e.g. after loading a document.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
	m.totalBytes = 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{UndoDepth: len(m.undo), RedoDepth: len(m.redo), Bytes: m.totalBytes}
}

func (m *Manager) mergeable(label string) bool {
	return m.cfg.Mergeable == nil || m.cfg.Mergeable(label)
}

func (m *Manager) dropRedoLocked() {
	for _, s := range m.redo {
		m.totalBytes -= len(s.Blob)
	}
	m.redo = nil
}

func (m *Manager) enforceCapsLocked() {
	if drop := len(m.undo) - m.cfg.MaxDepth; drop > 0 {
		for _, s := range m.undo[:drop] {
			m.totalBytes -= len(s.Blob)
		}
		m.undo = append([]Snapshot(nil), m.undo[drop:]...)
	}
	for m.totalBytes > m.cfg.MaxBytes && len(m.undo) > 1 {
		m.totalBytes -= len(m.undo[0].Blob)
		m.undo = m.undo[1:]
	}
}
