/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"slices"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

const labelTyping = "typing"

// InputMapper turns one keystroke into the text it inserts. Keyboard
// layouts that remap keys plug in here.
type InputMapper interface {
	Map(r rune) string
}

// IdentityMapper inserts the key as typed.
type IdentityMapper struct{}

func (IdentityMapper) Map(r rune) string { return string(r) }

// MapperFunc adapts a function to InputMapper.
type MapperFunc func(r rune) string

func (f MapperFunc) Map(r rune) string { return f(r) }

// SetInputMapper installs m; nil restores the identity mapping.
func (s *Session) SetInputMapper(m InputMapper) {
	if m == nil {
		m = IdentityMapper{}
	}
	s.mapper = m
}

// textState is the caret of the box being edited. anchor and caret bound
// the text selection; they are equal when nothing is selected.
type textState struct {
	box           string
	caret, anchor int
}

func (t textState) span() (int, int) {
	return min(t.caret, t.anchor), max(t.caret, t.anchor)
}

// BeginEditText puts the caret into a text box. Locked boxes are editable.
func (s *Session) BeginEditText(id string, caret int) bool {
	if s.g.mode != Idle {
		return false
	}
	o := s.doc.Current().Get(id)
	if o == nil || !domain.Capabilities(*o).Has(domain.CanEditText) {
		return false
	}
	caret = max(0, min(caret, domain.RuneLen(o.Runs)))
	s.text = textState{box: id, caret: caret, anchor: caret}
	return true
}

func (s *Session) EndEditText() { s.text = textState{} }

// EditingBox is the box holding the caret.
func (s *Session) EditingBox() (string, bool) { return s.text.box, s.text.box != "" }

func (s *Session) Caret() int { return s.text.caret }

// TextSelection returns the selected rune range of the edited box.
func (s *Session) TextSelection() (int, int) { return s.text.span() }

func (s *Session) editing() *domain.Object {
	if s.text.box == "" {
		return nil
	}
	o := s.doc.Current().Get(s.text.box)
	if o == nil {
		s.text = textState{}
	}
	return o
}

// SelectText selects [start,end) in the edited box; the caret goes to end.
func (s *Session) SelectText(start, end int) bool {
	o := s.editing()
	if o == nil {
		return false
	}
	n := domain.RuneLen(o.Runs)
	s.text.anchor = max(0, min(start, n))
	s.text.caret = max(0, min(end, n))
	return true
}

// MoveCaret places the caret and drops the text selection.
func (s *Session) MoveCaret(pos int) bool { return s.SelectText(pos, pos) }

// InsertChar is called once per keystroke with the key as typed. Quick
// successive keystrokes undo together.
func (s *Session) InsertChar(r rune) bool {
	text := s.mapper.Map(r)
	if text == "" {
		return false
	}
	return s.insert(text, labelTyping)
}

// InsertText inserts a string, e.g. from the clipboard, replacing the
// selected text.
func (s *Session) InsertText(text string) bool {
	if text == "" {
		return false
	}
	return s.insert(text, "insert text")
}

func (s *Session) insert(text, label string) bool {
	o := s.editing()
	if o == nil || !utf8.ValidString(text) {
		return false
	}
	before := s.snapshot()
	start, end := s.text.span()
	format := domain.FormatAt(o.Runs, start)
	runs := domain.DeleteRange(o.Runs, start, end)
	runs = domain.InsertText(runs, start, text, format)
	o.Runs = runs
	s.text.caret = start + utf8.RuneCountInString(norm.NFC.String(text))
	s.text.anchor = s.text.caret
	s.commit(label, before)
	return true
}

// Backspace deletes the selection or the rune before the caret.
func (s *Session) Backspace() bool {
	o := s.editing()
	if o == nil {
		return false
	}
	start, end := s.text.span()
	if start == end {
		if start == 0 {
			return false
		}
		start--
	}
	return s.deleteText(o, start, end)
}

// DeleteForward deletes the selection or the rune after the caret.
func (s *Session) DeleteForward() bool {
	o := s.editing()
	if o == nil {
		return false
	}
	start, end := s.text.span()
	if start == end {
		if end >= domain.RuneLen(o.Runs) {
			return false
		}
		end++
	}
	return s.deleteText(o, start, end)
}

func (s *Session) deleteText(o *domain.Object, start, end int) bool {
	before := s.snapshot()
	o.Runs = domain.DeleteRange(o.Runs, start, end)
	s.text.caret, s.text.anchor = start, start
	s.commit("delete text", before)
	return true
}

// Text returns the plain content of a text box.
func (s *Session) Text(id string) (string, bool) {
	o, _ := s.doc.Find(id)
	if o == nil || o.Kind != domain.KindText {
		return "", false
	}
	return domain.PlainText(o.Runs), true
}

// formatText applies fn to the selected text of the edited box, to the
// whole box when nothing is selected, or to every selected text box when no
// box is being edited.
func (s *Session) formatText(label string, fn func(*domain.TextRun)) bool {
	apply := func(o *domain.Object, start, end int) bool {
		runs := domain.ApplyFormat(o.Runs, start, end, fn)
		if slices.Equal(runs, o.Runs) {
			return false
		}
		o.Runs = runs
		return true
	}
	if o := s.editing(); o != nil {
		before := s.snapshot()
		start, end := s.text.span()
		if !apply(o, start, end) {
			return false
		}
		s.commit(label, before)
		return true
	}
	return s.updateSelected(label, func(o *domain.Object) bool {
		if o.Kind != domain.KindText {
			return false
		}
		return apply(o, 0, domain.RuneLen(o.Runs))
	})
}

func (s *Session) SetBold(on bool) bool {
	return s.formatText("bold", func(r *domain.TextRun) { r.Bold = on })
}

func (s *Session) SetItalic(on bool) bool {
	return s.formatText("italic", func(r *domain.TextRun) { r.Italic = on })
}

func (s *Session) SetUnderline(on bool) bool {
	return s.formatText("underline", func(r *domain.TextRun) { r.Underline = on })
}

func (s *Session) SetFontFamily(family string) bool {
	if family == "" {
		return false
	}
	return s.formatText("font", func(r *domain.TextRun) { r.Font = family })
}

func (s *Session) SetFontSize(size float64) bool {
	if size <= 0 {
		return false
	}
	return s.formatText("font size", func(r *domain.TextRun) { r.Size = size })
}

func (s *Session) SetTextColor(c vector.Color) bool {
	return s.formatText("text color", func(r *domain.TextRun) { r.Color = c })
}

// Match is a find hit: a rune range in a text box on a page.
type Match struct {
	Page       int
	ID         string
	Start, End int
}

type findState struct {
	last Match
	ok   bool
}

type textRef struct {
	page int
	id   string
}

func (s *Session) textBoxes() []textRef {
	var refs []textRef
	for i, p := range s.doc.Pages() {
		for _, o := range p.Objects {
			if o.Kind == domain.KindText {
				refs = append(refs, textRef{page: i, id: o.ID})
			}
		}
	}
	return refs
}

// Find searches every text box of every page for query, continuing after
// the previous hit and wrapping around at the end of the document. The hit
// becomes the edited box with the match selected.
func (s *Session) Find(query string, caseSensitive bool) (Match, bool) {
	if query == "" {
		return Match{}, false
	}
	refs := s.textBoxes()
	if len(refs) == 0 {
		return Match{}, false
	}
	first, from := 0, 0
	if s.find.ok {
		for i, r := range refs {
			if r.id == s.find.last.ID {
				first, from = i, s.find.last.Start+1
			}
		}
	} else {
		for i, r := range refs {
			if r.page == s.doc.CurrentIndex() {
				first = i
				break
			}
		}
	}
	qlen := utf8.RuneCountInString(norm.NFC.String(query))
	for step := 0; step <= len(refs); step++ {
		ref := refs[(first+step)%len(refs)]
		if step > 0 {
			from = 0
		}
		o, _ := s.doc.Find(ref.id)
		at := domain.Find(o.Runs, query, caseSensitive, from)
		if at < 0 {
			continue
		}
		m := Match{Page: ref.page, ID: ref.id, Start: at, End: at + qlen}
		if m.Page != s.doc.CurrentIndex() {
			s.SwitchPage(m.Page)
		}
		s.Cancel()
		s.BeginEditText(m.ID, m.End)
		s.text.anchor = m.Start
		s.find = findState{last: m, ok: true}
		return m, true
	}
	s.find = findState{}
	return Match{}, false
}

// Replace swaps the current hit for repl when it still matches, then finds
// the next one.
func (s *Session) Replace(query, repl string, caseSensitive bool) (Match, bool) {
	if o := s.editing(); o != nil && s.find.ok && s.find.last.ID == s.text.box {
		start, end := s.text.span()
		if start == s.find.last.Start && end == s.find.last.End && domain.Find(o.Runs, query, caseSensitive, start) == start {
			if repl == "" {
				s.deleteText(o, start, end)
			} else {
				s.insert(repl, "replace")
			}
			s.find.last.Start = s.text.caret - 1
		}
	}
	return s.Find(query, caseSensitive)
}

// ReplaceAll replaces every match in the document as one undo step and
// returns the number of replacements.
func (s *Session) ReplaceAll(query, repl string, caseSensitive bool) int {
	if query == "" {
		return 0
	}
	total := 0
	s.mutate("replace all", func() bool {
		for _, p := range s.doc.Pages() {
			for i := range p.Objects {
				o := &p.Objects[i]
				if o.Kind != domain.KindText {
					continue
				}
				runs, n := domain.ReplaceAll(o.Runs, query, repl, caseSensitive)
				if n > 0 {
					o.Runs = runs
					total += n
				}
			}
		}
		return total > 0
	})
	if o := s.editing(); o != nil {
		n := domain.RuneLen(o.Runs)
		s.text.caret, s.text.anchor = min(s.text.caret, n), min(s.text.anchor, n)
	}
	s.find = findState{}
	return total
}
