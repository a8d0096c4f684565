/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Rich text editing over runs. Offsets count runes across the whole box.
// Every function returns fresh slices and leaves its input untouched.

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// PlainText concatenates the text of all runs.
func PlainText(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// RuneLen is the length of the box content in runes.
func RuneLen(runs []TextRun) int {
	n := 0
	for _, r := range runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

// NormalizeRuns merges neighbors with equal format and drops empty runs,
// keeping one empty run so the box remembers its format.
func NormalizeRuns(runs []TextRun) []TextRun {
	out := make([]TextRun, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].SameFormat(r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 && len(runs) > 0 {
		r := runs[0]
		r.Text = ""
		out = append(out, r)
	}
	return out
}

// splitAt cuts runs so that a run boundary falls at rune offset pos and
// returns the index of the first run at or after pos.
func splitAt(runs []TextRun, pos int) ([]TextRun, int) {
	out := make([]TextRun, 0, len(runs)+1)
	idx := -1
	off := 0
	for _, r := range runs {
		n := utf8.RuneCountInString(r.Text)
		if idx < 0 && pos > off && pos < off+n {
			rs := []rune(r.Text)
			left, right := r, r
			left.Text = string(rs[:pos-off])
			right.Text = string(rs[pos-off:])
			out = append(out, left)
			idx = len(out)
			out = append(out, right)
		} else {
			if idx < 0 && pos <= off {
				idx = len(out)
			}
			out = append(out, r)
		}
		off += n
	}
	if idx < 0 {
		idx = len(out)
	}
	return out, idx
}

// FormatAt returns the format that text typed at pos inherits: the run
// ending at pos, or the first run when pos is 0.
func FormatAt(runs []TextRun, pos int) TextRun {
	if len(runs) == 0 {
		return DefaultRun("", 0)
	}
	off := 0
	for _, r := range runs {
		n := utf8.RuneCountInString(r.Text)
		if pos > off && pos <= off+n {
			r.Text = ""
			return r
		}
		off += n
	}
	r := runs[0]
	if pos > 0 {
		r = runs[len(runs)-1]
	}
	r.Text = ""
	return r
}

// InsertText puts s at pos with the given format. Input is NFC-normalized so
// that composed and decomposed keyboard output compare equal later on.
func InsertText(runs []TextRun, pos int, s string, format TextRun) []TextRun {
	s = norm.NFC.String(s)
	if s == "" {
		return NormalizeRuns(runs)
	}
	pos = clampOffset(runs, pos)
	out, idx := splitAt(runs, pos)
	format.Text = s
	out = append(out[:idx], append([]TextRun{format}, out[idx:]...)...)
	return NormalizeRuns(out)
}

// DeleteRange removes runes in [start,end).
func DeleteRange(runs []TextRun, start, end int) []TextRun {
	start, end = clampRange(runs, start, end)
	if start == end {
		return NormalizeRuns(runs)
	}
	out, i := splitAt(runs, start)
	out, j := splitAt(out, end) // runs before i are untouched by the second cut
	kept := append([]TextRun(nil), out[:i]...)
	kept = append(kept, out[j:]...)
	if len(kept) == 0 {
		r := out[i]
		r.Text = ""
		kept = []TextRun{r}
	}
	return NormalizeRuns(kept)
}

// ApplyFormat rewrites the format of runes in [start,end) with fn. An empty
// range formats the whole box.
func ApplyFormat(runs []TextRun, start, end int, fn func(*TextRun)) []TextRun {
	start, end = clampRange(runs, start, end)
	if start == end {
		start, end = 0, RuneLen(runs)
	}
	if end == 0 {
		out := append([]TextRun(nil), runs...)
		for i := range out {
			fn(&out[i])
		}
		return NormalizeRuns(out)
	}
	out, i := splitAt(runs, start)
	out, j := splitAt(out, end)
	for k := i; k < j; k++ {
		fn(&out[k])
	}
	return NormalizeRuns(out)
}

func clampOffset(runs []TextRun, pos int) int {
	return max(0, min(pos, RuneLen(runs)))
}

func clampRange(runs []TextRun, start, end int) (int, int) {
	start, end = clampOffset(runs, start), clampOffset(runs, end)
	if end < start {
		start, end = end, start
	}
	return start, end
}

// matcher compares rune windows either exactly or under Unicode case folding.
type matcher struct {
	fold  bool
	caser cases.Caser
}

func newMatcher(caseSensitive bool) *matcher {
	return &matcher{fold: !caseSensitive, caser: cases.Fold()}
}

func (m *matcher) equal(a, b string) bool {
	if !m.fold {
		return a == b
	}
	return m.caser.String(a) == m.caser.String(b)
}

// Find returns the rune offset of the first match of query at or after
// from, or -1.
func Find(runs []TextRun, query string, caseSensitive bool, from int) int {
	q := []rune(norm.NFC.String(query))
	if len(q) == 0 {
		return -1
	}
	text := []rune(PlainText(runs))
	m := newMatcher(caseSensitive)
	qs := string(q)
	for i := max(0, from); i+len(q) <= len(text); i++ {
		if m.equal(string(text[i:i+len(q)]), qs) {
			return i
		}
	}
	return -1
}

// ReplaceAll replaces every non-overlapping match. Replacement text takes
// the format of the first matched rune.
func ReplaceAll(runs []TextRun, query, repl string, caseSensitive bool) ([]TextRun, int) {
	qlen := utf8.RuneCountInString(norm.NFC.String(query))
	count := 0
	pos := 0
	for {
		i := Find(runs, query, caseSensitive, pos)
		if i < 0 {
			break
		}
		format := FormatAt(runs, i+1)
		runs = DeleteRange(runs, i, i+qlen)
		runs = InsertText(runs, i, repl, format)
		pos = i + utf8.RuneCountInString(norm.NFC.String(repl))
		count++
	}
	return runs, count
}
