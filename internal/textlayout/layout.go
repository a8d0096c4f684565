/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement and line breaking for text box content. All measuring
// goes through a Provider so tests can use a fixed-width face.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"pagecomposer/internal/domain"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 400 regular, 700 bold
	Italic bool
}

// SpecFor maps a run's character format to a font request.
func SpecFor(r domain.TextRun) FontSpec {
	w := 400
	if r.Bold {
		w = 700
	}
	return FontSpec{Family: r.Font, SizePt: float32(r.Size), Weight: w, Italic: r.Italic}
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Span is a piece of one run placed on a line. Run indexes the source run so
// callers can recover color and underline.
type Span struct {
	Text  string
	Font  FontSpec
	Run   int
	X     float32
	Width float32
}

// Line is a single laid out line. Baseline is measured from the box top.
type Line struct {
	Spans    []Span
	Width    float32
	Ascent   float32
	Descent  float32
	Baseline float32
}

// Text returns the line's characters.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines  []Line
	Width  float32
	Height float32
}

// Overflows reports whether the laid out text is taller than h.
func (b TextBox) Overflows(h float32) bool { return b.Height > h }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Layouter performs line-breaking and measurement.
type Layouter interface {
	Layout(runs []domain.TextRun, maxWidth float32) (TextBox, error)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// WordWrapLayouter breaks lines at spaces and hard line breaks. It does not
// shape or hyphenate; a word wider than the box gets a line of its own.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

type lineBuilder struct {
	box   TextBox
	cur   Line
	gap   float32
	empty Metrics
}

func (b *lineBuilder) grow(m Metrics) {
	b.cur.Ascent = max(b.cur.Ascent, m.Ascent)
	b.cur.Descent = max(b.cur.Descent, m.Descent)
	b.gap = max(b.gap, m.LineGap)
}

func (b *lineBuilder) flush() {
	if len(b.cur.Spans) == 0 {
		b.grow(b.empty)
	}
	b.cur.Baseline = b.box.Height + b.cur.Ascent
	b.box.Height += b.cur.Ascent + b.cur.Descent + b.gap
	b.box.Width = max(b.box.Width, b.cur.Width)
	b.box.Lines = append(b.box.Lines, b.cur)
	b.cur = Line{}
	b.gap = 0
}

func (b *lineBuilder) add(text string, spec FontSpec, run int, w float32, m Metrics) {
	b.grow(m)
	if n := len(b.cur.Spans); n > 0 && b.cur.Spans[n-1].Run == run {
		b.cur.Spans[n-1].Text += text
		b.cur.Spans[n-1].Width += w
	} else {
		b.cur.Spans = append(b.cur.Spans, Span{Text: text, Font: spec, Run: run, X: b.cur.Width, Width: w})
	}
	b.cur.Width += w
}

func (l *WordWrapLayouter) Layout(runs []domain.TextRun, maxWidth float32) (TextBox, error) {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	b := &lineBuilder{}
	if len(runs) > 0 {
		_, b.empty = l.Provider.Resolve(SpecFor(runs[0]))
	}
	for ri, r := range runs {
		spec := SpecFor(r)
		face, met := l.Provider.Resolve(spec)
		drawer := &font.Drawer{Face: face}
		start := 0
		for i := 0; i <= len(r.Text); i++ {
			if i < len(r.Text) && r.Text[i] != ' ' && r.Text[i] != '\n' {
				continue
			}
			word := r.Text[start:i]
			w := advance(drawer, word)
			if word != "" && b.cur.Width > 0 && maxWidth > 0 && b.cur.Width+w > maxWidth {
				b.flush()
			}
			if word != "" {
				b.add(word, spec, ri, w, met)
			}
			if i < len(r.Text) {
				switch r.Text[i] {
				case ' ':
					b.add(" ", spec, ri, advance(drawer, " "), met)
				case '\n':
					b.grow(met)
					b.flush()
				}
			}
			start = i + 1
		}
	}
	b.flush()
	return b.box, nil
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure returns the width of runs set on one line and the tallest line height.
func Measure(provider Provider, runs []domain.TextRun) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	for _, r := range runs {
		face, met := provider.Resolve(SpecFor(r))
		w += advance(&font.Drawer{Face: face}, r.Text)
		h = max(h, met.Ascent+met.Descent)
	}
	return w, h
}
