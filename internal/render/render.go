/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a page into a flat, paint-ordered description that a
// painter (screen, PNG, SVG, PDF) can draw without knowing object kinds.
package render

import (
	"math"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/imagefill"
	"pagecomposer/internal/textlayout"
	"pagecomposer/internal/vector"
)

// TextInset is the padding between a text box edge and its text.
const TextInset = 4.0

// Options tune Describe. A nil Provider measures with the bundled Go fonts.
type Options struct {
	Provider textlayout.Provider
	// Handles adds handle positions for selected objects.
	Handles bool
}

// Scene is one page ready to paint.
type Scene struct {
	Width, Height float64
	Number        int
	Background    vector.Color
	Items         []Item
}

// Image is an image fill placed in the object's unrotated frame. Painters
// apply Item.Transform and clip to Item.Outline.
type Image struct {
	Ref    string
	Aspect domain.AspectMode
	Rect   vector.Rect
}

// TextSpan is a run fragment positioned on its line.
type TextSpan struct {
	Text      string
	X, Width  float64
	Font      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Color     vector.Color
}

// TextLine positions are in the unrotated box frame, in page units.
type TextLine struct {
	X, Baseline float64
	Width       float64
	Spans       []TextSpan
}

// Item describes one object.
type Item struct {
	ID        string
	Kind      domain.Kind
	Z         int
	Bounds    vector.Rect
	Rotation  float64
	Transform vector.Affine2D
	Outline   vector.Path
	Stroke    domain.Stroke
	Dashes    []float64
	Fill      vector.Color
	Image     *Image
	// Arrows holds one closed triangle per arrow head of a line.
	Arrows [][]vector.Pt
	Text   []TextLine
	// Overflow is set when the text does not fit the box height.
	Overflow bool
	Locked   bool
	Selected bool
	Linked   bool

	Handles      []vector.Pt
	LinkHandle   *vector.Pt
	RotateHandle *vector.Pt
}

// Describe lays out every object of p in paint order.
func Describe(p *domain.Page, opt Options) Scene {
	if opt.Provider == nil {
		opt.Provider = textlayout.DefaultProvider()
	}
	s := Scene{Width: p.Width, Height: p.Height, Number: p.Number, Background: p.Background}
	layouter := textlayout.NewWordWrap(opt.Provider)
	for _, o := range p.ZOrdered() {
		s.Items = append(s.Items, describe(o, layouter, opt))
	}
	return s
}

func describe(o domain.Object, l textlayout.Layouter, opt Options) Item {
	it := Item{
		ID: o.ID, Kind: o.Kind, Z: o.Z,
		Bounds:    domain.Bounds(o),
		Rotation:  o.Rotation,
		Transform: domain.Transform(o),
		Outline:   domain.Outline(o),
		Stroke:    o.Stroke,
		Dashes:    o.Stroke.Style.Dashes(o.Stroke.Width),
		Fill:      o.Fill.Color,
		Locked:    o.Locked,
		Selected:  o.Selected,
		Linked:    o.NextLink != "" || o.PrevLink != "",
	}
	if img := o.Fill.Image; img != nil && domain.Capabilities(o).Has(domain.CanFillImage) {
		it.Image = &Image{Ref: img.Ref, Aspect: img.Aspect, Rect: imagefill.Placement(it.Bounds, img.Width, img.Height, img.Aspect)}
	}
	switch o.Kind {
	case domain.KindLine:
		size := ArrowSize(o.Stroke.Width)
		a, b := domain.LineStart(o), domain.LineEnd(o)
		if o.ArrowStart {
			it.Arrows = append(it.Arrows, ArrowHead(a, b, size))
		}
		if o.ArrowEnd {
			it.Arrows = append(it.Arrows, ArrowHead(b, a, size))
		}
	case domain.KindText:
		it.Text, it.Overflow = layoutText(o, l)
	}
	if opt.Handles && domain.HandlesVisible(o) {
		it.Handles = domain.Handles(o)
		if p, ok := domain.LinkHandle(o); ok {
			it.LinkHandle = &p
		}
		if p, ok := domain.RotateHandle(o); ok {
			it.RotateHandle = &p
		}
	}
	return it
}

func layoutText(o domain.Object, l textlayout.Layouter) ([]TextLine, bool) {
	inner := domain.Bounds(o).Inset(TextInset, TextInset)
	box, err := l.Layout(o.Runs, float32(math.Max(inner.W, 0)))
	if err != nil {
		return nil, false
	}
	lines := make([]TextLine, 0, len(box.Lines))
	for _, ln := range box.Lines {
		tl := TextLine{X: inner.X, Baseline: inner.Y + float64(ln.Baseline), Width: float64(ln.Width)}
		for _, sp := range ln.Spans {
			r := o.Runs[sp.Run]
			tl.Spans = append(tl.Spans, TextSpan{
				Text: sp.Text, X: inner.X + float64(sp.X), Width: float64(sp.Width),
				Font: r.Font, Size: r.Size, Bold: r.Bold, Italic: r.Italic, Underline: r.Underline, Color: r.Color,
			})
		}
		lines = append(lines, tl)
	}
	return lines, box.Overflows(float32(inner.H))
}

// ArrowSize scales arrow heads with the stroke, never below 8 units.
func ArrowSize(strokeWidth float64) float64 { return math.Max(8, 4*strokeWidth) }

// ArrowHead returns the closed triangle of an arrow pointing at tip and
// coming from tail.
func ArrowHead(tip, tail vector.Pt, size float64) []vector.Pt {
	d := tip.Sub(tail)
	n := math.Hypot(d.X, d.Y)
	if n == 0 {
		return []vector.Pt{tip, tip, tip, tip}
	}
	u := d.Mul(1 / n)
	base := tip.Sub(u.Mul(size))
	perp := vector.Pt{X: -u.Y, Y: u.X}.Mul(size / 2)
	return []vector.Pt{tip, base.Add(perp), base.Sub(perp), tip}
}
