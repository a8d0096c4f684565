/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"
	"unicode"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

func editBox(t *testing.T, s *Session, p vector.Pt, text string) string {
	t.Helper()
	id := click(t, s, ToolTextBox, p)
	if !s.BeginEditText(id, 0) {
		t.Fatalf("begin edit refused")
	}
	if text != "" && !s.InsertText(text) {
		t.Fatalf("insert refused")
	}
	return id
}

func TestInsertAndDeleteText(t *testing.T) {
	s := newTestSession(t)
	id := editBox(t, s, vector.P(10, 10), "Hello world")
	if s.Caret() != 11 {
		t.Fatalf("caret %d", s.Caret())
	}
	s.Backspace()
	s.MoveCaret(0)
	s.DeleteForward()
	if got, _ := s.Text(id); got != "ello worl" {
		t.Fatalf("text %q", got)
	}
	s.SelectText(0, 4)
	s.InsertText("Ha")
	if got, _ := s.Text(id); got != "Ha worl" || s.Caret() != 2 {
		t.Fatalf("replace selection: %q caret %d", got, s.Caret())
	}
	s.MoveCaret(0)
	if s.Backspace() {
		t.Fatalf("backspace at the start")
	}
}

func TestInputMapper(t *testing.T) {
	s := newTestSession(t)
	id := editBox(t, s, vector.P(10, 10), "")
	s.SetInputMapper(MapperFunc(func(r rune) string { return string(unicode.ToUpper(r)) }))
	for _, r := range "abc" {
		s.InsertChar(r)
	}
	if got, _ := s.Text(id); got != "ABC" {
		t.Fatalf("mapped text %q", got)
	}
	s.SetInputMapper(nil)
	s.InsertChar('d')
	if got, _ := s.Text(id); got != "ABCd" {
		t.Fatalf("identity text %q", got)
	}
}

func TestFormatSelectionAndWholeBox(t *testing.T) {
	s := newTestSession(t)
	id := editBox(t, s, vector.P(10, 10), "plain bold")
	s.SelectText(6, 10)
	if !s.SetBold(true) {
		t.Fatalf("bold refused")
	}
	o, _ := s.Object(id)
	if len(o.Runs) != 2 || o.Runs[0].Bold || !o.Runs[1].Bold || o.Runs[1].Text != "bold" {
		t.Fatalf("runs %+v", o.Runs)
	}
	if s.SetBold(true) {
		t.Fatalf("no-op format recorded")
	}
	s.EndEditText()
	s.Select(id, false)
	if !s.SetFontSize(30) {
		t.Fatalf("font size refused")
	}
	o, _ = s.Object(id)
	for _, r := range o.Runs {
		if r.Size != 30 {
			t.Fatalf("run %q size %v", r.Text, r.Size)
		}
	}
	if s.SetFontSize(0) || s.SetFontFamily("") {
		t.Fatalf("invalid format accepted")
	}
}

func TestFindAcrossPagesWraps(t *testing.T) {
	s := newTestSession(t)
	a := editBox(t, s, vector.P(10, 10), "the cat sat")
	s.EndEditText()
	s.NewPage()
	b := editBox(t, s, vector.P(10, 10), "a Cat again")
	s.EndEditText()
	s.SwitchPage(0)

	m, ok := s.Find("cat", false)
	if !ok || m.ID != a || m.Start != 4 || m.End != 7 {
		t.Fatalf("first hit %+v", m)
	}
	m, ok = s.Find("cat", false)
	if !ok || m.ID != b || m.Page != 1 || s.Document().CurrentIndex() != 1 {
		t.Fatalf("second hit %+v", m)
	}
	if start, end := s.TextSelection(); start != 2 || end != 5 {
		t.Fatalf("selection %d-%d", start, end)
	}
	m, _ = s.Find("cat", false)
	if m.ID != a {
		t.Fatalf("find did not wrap: %+v", m)
	}
	if _, ok := s.Find("cat", true); !ok {
		t.Fatalf("case-sensitive miss")
	}
	if _, ok := s.Find("dog", false); ok {
		t.Fatalf("found a dog")
	}
}

func TestReplaceAllIsOneStep(t *testing.T) {
	s := newTestSession(t)
	a := editBox(t, s, vector.P(10, 10), "cat and cat")
	s.EndEditText()
	s.NewPage()
	b := editBox(t, s, vector.P(10, 10), "CAT")
	s.EndEditText()
	depth := s.UndoStats().UndoDepth
	if n := s.ReplaceAll("cat", "dog", false); n != 3 {
		t.Fatalf("replaced %d", n)
	}
	if s.UndoStats().UndoDepth != depth+1 {
		t.Fatalf("replace all took %d steps", s.UndoStats().UndoDepth-depth)
	}
	ta, _ := s.Text(a)
	tb, _ := s.Text(b)
	if ta != "dog and dog" || tb != "dog" {
		t.Fatalf("texts %q %q", ta, tb)
	}
	s.Undo()
	if ta, _ = s.Text(a); ta != "cat and cat" {
		t.Fatalf("undo replace all: %q", ta)
	}
}

func TestReplaceNext(t *testing.T) {
	s := newTestSession(t)
	a := editBox(t, s, vector.P(10, 10), "one two one")
	s.EndEditText()
	s.Find("one", true)
	s.Replace("one", "1", true)
	s.Replace("one", "1", true)
	if got, _ := s.Text(a); got != "1 two 1" {
		t.Fatalf("text %q", got)
	}
	o, _ := s.Object(a)
	if domain.RuneLen(o.Runs) != 7 {
		t.Fatalf("rune length %d", domain.RuneLen(o.Runs))
	}
}
