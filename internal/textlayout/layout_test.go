/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"math"
	"testing"

	"pagecomposer/internal/domain"
)

func run(text string) domain.TextRun {
	r := domain.DefaultRun("", 0)
	r.Text = text
	return r
}

func TestWordWrap_Basic(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box, err := l.Layout([]domain.TextRun{run("Hello world from Go")}, 50)
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	want := []string{"Hello ", "world ", "from Go"}
	if len(box.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(box.Lines))
	}
	for i, w := range want {
		if got := box.Lines[i].Text(); got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
	}
	if box.Height != 39 || box.Lines[1].Baseline != 24 {
		t.Fatalf("unexpected metrics: height=%v baseline=%v", box.Height, box.Lines[1].Baseline)
	}
}

func TestWordWrap_HardBreaksAndEmptyLines(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box, _ := l.Layout([]domain.TextRun{run("a\n\nb")}, 0)
	if len(box.Lines) != 3 || box.Lines[1].Text() != "" || box.Lines[2].Text() != "b" {
		t.Fatalf("lines: %+v", box.Lines)
	}
	empty, _ := l.Layout([]domain.TextRun{run("")}, 100)
	if len(empty.Lines) != 1 || empty.Height != 13 {
		t.Fatalf("empty box should keep one line: %+v", empty)
	}
}

func TestWordWrap_SpansKeepRunIndex(t *testing.T) {
	bold := run("bold")
	bold.Bold = true
	l := NewWordWrap(BasicProvider{})
	box, _ := l.Layout([]domain.TextRun{run("plain "), bold}, 0)
	spans := box.Lines[0].Spans
	if len(spans) != 2 || spans[1].Run != 1 || spans[1].X != 42 || spans[1].Font.Weight != 700 {
		t.Fatalf("spans: %+v", spans)
	}
	if box.Overflows(13) || !box.Overflows(12) {
		t.Fatalf("overflow check wrong for height %v", box.Height)
	}
}

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, []domain.TextRun{run("ABC")})
	w2, h2 := Measure(BasicProvider{}, []domain.TextRun{run("A"), run("BC")})
	if w1 != w2 || h1 != h2 || w1 != 21 {
		t.Fatalf("expected same measure, got w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestGoFontProvider(t *testing.T) {
	p := DefaultProvider()
	small := run("Hamburgefonstiv")
	small.Font = "Some Missing Family"
	small.Size = 12
	big := small
	big.Size = 24
	ws, _ := Measure(p, []domain.TextRun{small})
	wb, _ := Measure(p, []domain.TextRun{big})
	if ws <= 0 || math.Abs(float64(wb-2*ws)) > float64(wb)/10 {
		t.Fatalf("width should scale with size: %v vs %v", ws, wb)
	}
	f1, _ := p.Resolve(SpecFor(small))
	f2, _ := p.Resolve(SpecFor(small))
	if f1 != f2 {
		t.Fatalf("faces should be cached")
	}
}
