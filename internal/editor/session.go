/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the command surface of a document being edited. A
// Session owns the page list, the undo history and the gesture in progress.
// Every mutating command takes a snapshot, mutates, and records the snapshot
// as one undo step; rejected commands report false and change nothing.
//
// A Session is not safe for concurrent use. Exporters and autosave work on
// the bytes returned by Save.
package editor

import (
	"fmt"
	"log/slog"
	"time"

	"pagecomposer/internal/codec"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/imagefill"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/render"
	"pagecomposer/internal/undo"
	"pagecomposer/internal/vector"
)

// Config holds the editing preferences a session starts with.
type Config struct {
	Page domain.PageSettings

	UndoDepth    int
	UndoMaxBytes int
	// TypingMerge joins keystrokes typed within this interval into one undo step.
	TypingMerge time.Duration

	Snap            bool
	SnapDistance    float64
	DuplicateOffset float64
	// PolygonSides selects the polygon tool preset; 0 draws a star.
	PolygonSides int

	// Images resolves image fill references. Nil reads files relative to
	// the working directory.
	Images imagefill.Resolver
	Now    func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Page:            domain.DefaultPageSettings(),
		UndoDepth:       undo.DefaultDepth,
		TypingMerge:     time.Second,
		Snap:            true,
		SnapDistance:    10,
		DuplicateOffset: 20,
		PolygonSides:    3,
	}
}

// Session edits one document.
type Session struct {
	cfg    Config
	doc    *domain.PageManager
	undo   *undo.Manager
	tool   Tool
	g      gesture
	text   textState
	find   findState
	mapper InputMapper
	guides []vector.GuideLine
	dirty  bool
	log    *slog.Logger
}

// NewSession starts with a fresh one-page document.
func NewSession(cfg Config) *Session {
	if cfg.Page.Width <= 0 || cfg.Page.Height <= 0 {
		cfg.Page = domain.DefaultPageSettings()
	}
	if cfg.DuplicateOffset == 0 {
		cfg.DuplicateOffset = 20
	}
	if cfg.SnapDistance <= 0 {
		cfg.SnapDistance = 10
	}
	if cfg.Images == nil {
		cfg.Images = imagefill.FileResolver{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Session{
		cfg: cfg,
		doc: domain.NewPageManager(cfg.Page),
		undo: undo.NewManager(undo.Config{
			MaxDepth:    cfg.UndoDepth,
			MaxBytes:    cfg.UndoMaxBytes,
			MinInterval: cfg.TypingMerge,
			Mergeable:   func(label string) bool { return label == labelTyping },
			Now:         cfg.Now,
		}),
		tool:   ToolSelect,
		mapper: IdentityMapper{},
		log:    applog.WithComponent("editor"),
	}
	return s
}

// Config returns the session preferences.
func (s *Session) Config() Config { return s.cfg }

// Document exposes the page list. Callers that mutate it bypass undo.
func (s *Session) Document() *domain.PageManager { return s.doc }

func (s *Session) CurrentPage() *domain.Page { return s.doc.Current() }

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) MarkClean() { s.dirty = false }

// Guides are the snap lines of the move in progress.
func (s *Session) Guides() []vector.GuideLine { return s.guides }

// SetImageResolver replaces the resolver, e.g. after the document moved.
func (s *Session) SetImageResolver(r imagefill.Resolver) {
	if r != nil {
		s.cfg.Images = r
	}
}

// Describe lays out the current page for painting.
func (s *Session) Describe(opt render.Options) render.Scene {
	return render.Describe(s.doc.Current(), opt)
}

// snapshot encodes the whole document. Encoding only fails on values the
// wire types cannot carry, which finite() already filters.
func (s *Session) snapshot() []byte {
	b, err := codec.Encode(s.doc)
	if err != nil {
		s.log.Error("snapshot failed", slog.String("err", err.Error()))
		return nil
	}
	return b
}

func (s *Session) commit(label string, before []byte) {
	s.undo.Record(label, before)
	s.dirty = true
	s.log.Debug("command", slog.String("op", label), slog.Int("page", s.doc.CurrentIndex()+1))
}

// mutate runs fn as one undoable command. fn must leave the document alone
// when it returns false.
func (s *Session) mutate(label string, fn func() bool) bool {
	before := s.snapshot()
	if !fn() {
		return false
	}
	s.commit(label, before)
	return true
}

// restore swaps in a decoded snapshot. Selection is not persisted, so it
// starts empty.
func (s *Session) restore(blob []byte) {
	s.reset()
	pm, rep := codec.Decode(blob, s.cfg.Page)
	if rep.Fallback {
		s.log.Warn("undo snapshot did not decode", slog.Any("reason", rep.Reason))
	}
	s.doc = pm
}

// reset drops every transient state: gesture, text caret, pending link.
func (s *Session) reset() {
	s.g = gesture{}
	s.text = textState{}
	s.guides = nil
}

// Undo reverts the last command. A gesture in progress is cancelled first.
func (s *Session) Undo() bool {
	s.Cancel()
	prev, ok := s.undo.Undo(s.snapshot())
	if !ok {
		return false
	}
	s.restore(prev.Blob)
	s.dirty = true
	return true
}

func (s *Session) Redo() bool {
	s.Cancel()
	next, ok := s.undo.Redo(s.snapshot())
	if !ok {
		return false
	}
	s.restore(next.Blob)
	s.dirty = true
	return true
}

func (s *Session) CanUndo() bool { return s.undo.CanUndo() }
func (s *Session) CanRedo() bool { return s.undo.CanRedo() }

// UndoLabel names the command Undo would revert.
func (s *Session) UndoLabel() string { return s.undo.UndoLabel() }

// UndoStats reports the history sizes.
func (s *Session) UndoStats() undo.Stats { return s.undo.Stats() }

// Save returns the persisted form of the document and marks it clean.
func (s *Session) Save() ([]byte, error) {
	b, err := codec.EncodeIndent(s.doc)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	s.dirty = false
	return b, nil
}

// Snapshot is Save without marking the document clean; autosave uses it.
func (s *Session) Snapshot() ([]byte, error) {
	b, err := codec.EncodeIndent(s.doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot document: %w", err)
	}
	return b, nil
}

// Load replaces the document. Input that is not a document is loaded as
// plain text; the report says so. History starts over.
func (s *Session) Load(data []byte) codec.Report {
	s.reset()
	s.tool = ToolSelect
	pm, rep := codec.Decode(data, s.cfg.Page)
	s.doc = pm
	s.undo.Clear()
	s.dirty = false
	s.log.Info("document loaded", slog.Int("pages", pm.PageCount()), slog.Bool("plain_text", rep.Fallback))
	return rep
}

// New replaces the document with a fresh one built from settings.
func (s *Session) New(settings domain.PageSettings) {
	s.reset()
	s.tool = ToolSelect
	s.cfg.Page = settings
	s.doc = domain.NewPageManager(settings)
	s.undo.Clear()
	s.dirty = false
}

// --- pages ---

// NewPage appends a page and makes it current.
func (s *Session) NewPage() int {
	idx := -1
	s.mutate("new page", func() bool {
		s.leavePage()
		idx = s.doc.AddPage(-1)
		return true
	})
	return idx
}

// InsertPage adds a page at index, appending when index is out of range.
func (s *Session) InsertPage(index int) int {
	idx := -1
	s.mutate("insert page", func() bool {
		s.leavePage()
		idx = s.doc.AddPage(index)
		return true
	})
	return idx
}

// DeletePage fails on the only page and on a bad index.
func (s *Session) DeletePage(index int) bool {
	if s.doc.PageCount() <= 1 {
		return false
	}
	if _, ok := s.doc.Page(index); !ok {
		return false
	}
	return s.mutate("delete page", func() bool {
		s.leavePage()
		return s.doc.DeletePage(index)
	})
}

func (s *Session) DeleteCurrentPage() bool { return s.DeletePage(s.doc.CurrentIndex()) }

func (s *Session) MovePage(from, to int) bool {
	n := s.doc.PageCount()
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	return s.mutate("move page", func() bool { return s.doc.MovePage(from, to) })
}

// SwitchPage makes index current. Navigation is not an undo step.
func (s *Session) SwitchPage(index int) bool {
	if _, ok := s.doc.Page(index); !ok {
		return false
	}
	s.leavePage()
	return s.doc.SetCurrentPage(index)
}

func (s *Session) NextPage() bool { return s.SwitchPage(s.doc.CurrentIndex() + 1) }
func (s *Session) PrevPage() bool { return s.SwitchPage(s.doc.CurrentIndex() - 1) }

func (s *Session) FirstPage() bool {
	s.leavePage()
	return s.doc.FirstPage()
}

func (s *Session) LastPage() bool {
	s.leavePage()
	return s.doc.LastPage()
}

// leavePage ends whatever was going on on the current page.
func (s *Session) leavePage() {
	s.abortGesture()
	s.EndEditText()
	s.doc.Current().ClearSelection()
}
