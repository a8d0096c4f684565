/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func plainRuns(s string) []TextRun {
	r := DefaultRun("", 0)
	r.Text = s
	return []TextRun{r}
}

func TestInsertAndDelete(t *testing.T) {
	runs := plainRuns("Hello world")
	runs = InsertText(runs, 5, ",", FormatAt(runs, 5))
	if got := PlainText(runs); got != "Hello, world" {
		t.Fatalf("insert: %q", got)
	}
	if len(runs) != 1 {
		t.Fatalf("same-format insert split the run: %d runs", len(runs))
	}
	runs = DeleteRange(runs, 5, 6)
	if got := PlainText(runs); got != "Hello world" {
		t.Fatalf("delete: %q", got)
	}
	runs = DeleteRange(runs, 0, 100)
	if len(runs) != 1 || runs[0].Text != "" || runs[0].Font != DefaultFont {
		t.Fatalf("empty box lost its format: %+v", runs)
	}
}

func TestInsertNormalizesToNFC(t *testing.T) {
	runs := InsertText(plainRuns(""), 0, "e\u0301", DefaultRun("", 0))
	if got := PlainText(runs); got != "\u00e9" || RuneLen(runs) != 1 {
		t.Fatalf("not composed: %q", got)
	}
}

func TestApplyFormatSplitsRuns(t *testing.T) {
	runs := ApplyFormat(plainRuns("abcdef"), 2, 4, func(r *TextRun) { r.Bold = true })
	if len(runs) != 3 || runs[1].Text != "cd" || !runs[1].Bold || runs[0].Bold || runs[2].Bold {
		t.Fatalf("runs: %+v", runs)
	}
	if f := FormatAt(runs, 4); !f.Bold {
		t.Fatalf("typing after bold text should stay bold")
	}
	runs = ApplyFormat(runs, 3, 3, func(r *TextRun) { r.Bold = false })
	if len(runs) != 1 || runs[0].Bold {
		t.Fatalf("empty range should format everything: %+v", runs)
	}
}

func TestApplyFormatOnEmptyBox(t *testing.T) {
	runs := ApplyFormat(plainRuns(""), 0, 0, func(r *TextRun) { r.Size = 40 })
	if len(runs) != 1 || runs[0].Size != 40 {
		t.Fatalf("runs: %+v", runs)
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	runs := plainRuns("Straße und STRASSE")
	if i := Find(runs, "und", false, 0); i != 7 {
		t.Fatalf("find = %d", i)
	}
	if i := Find(runs, "UND", true, 0); i != -1 {
		t.Fatalf("case-sensitive find = %d", i)
	}
	if i := Find(runs, "strasse", false, 0); i != 11 {
		t.Fatalf("folded find = %d", i)
	}
}

func TestReplaceAllKeepsFormat(t *testing.T) {
	runs := ApplyFormat(plainRuns("cat and cat"), 0, 3, func(r *TextRun) { r.Italic = true })
	runs, n := ReplaceAll(runs, "CAT", "dog", false)
	if n != 2 || PlainText(runs) != "dog and dog" {
		t.Fatalf("replace: %d %q", n, PlainText(runs))
	}
	if !runs[0].Italic || runs[0].Text != "dog" {
		t.Fatalf("replacement lost format: %+v", runs)
	}
	_, n = ReplaceAll(runs, "", "x", false)
	if n != 0 {
		t.Fatalf("empty query replaced %d", n)
	}
}

func TestReplaceWithSuperstring(t *testing.T) {
	runs, n := ReplaceAll(plainRuns("aa"), "a", "aa", true)
	if n != 2 || PlainText(runs) != "aaaa" {
		t.Fatalf("replace: %d %q", n, PlainText(runs))
	}
}
