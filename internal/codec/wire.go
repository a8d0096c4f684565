/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codec

import (
	"math"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// FormatVersion is written into every document.
const FormatVersion = 1

type wireDoc struct {
	Version     int        `json:"version"`
	CurrentPage int        `json:"current_page"`
	Pages       []wirePage `json:"pages"`
}

type wirePage struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	PageNumber int           `json:"page_number"`
	Background *vector.Color `json:"background,omitempty"`
	Items      []wireItem    `json:"items"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireStroke struct {
	Style vector.LineStyle `json:"style"`
	Width float64          `json:"width"`
	Color vector.Color     `json:"color"`
}

type wireImage struct {
	Ref    string `json:"ref"`
	Aspect string `json:"aspect,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type wireFill struct {
	Color *vector.Color `json:"color,omitempty"`
	Image *wireImage    `json:"image,omitempty"`
}

type wireRun struct {
	Text      string        `json:"text"`
	Font      string        `json:"font,omitempty"`
	Size      float64       `json:"size,omitempty"`
	Bold      bool          `json:"bold,omitempty"`
	Italic    bool          `json:"italic,omitempty"`
	Underline bool          `json:"underline,omitempty"`
	Color     *vector.Color `json:"color,omitempty"`
}

// wireItem is the union of every kind's fields. Line endpoints and polygon
// vertices are persisted in absolute page coordinates.
type wireItem struct {
	Type     string      `json:"type"`
	ID       string      `json:"id,omitempty"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width,omitempty"`
	Height   float64     `json:"height,omitempty"`
	Rotation float64     `json:"rotation,omitempty"`
	Z        int         `json:"z"`
	Group    string      `json:"group,omitempty"`
	Stroke   *wireStroke `json:"stroke,omitempty"`
	Fill     *wireFill   `json:"fill,omitempty"`

	CornerRadius float64 `json:"corner_radius,omitempty"`

	A          *wirePoint `json:"a,omitempty"`
	B          *wirePoint `json:"b,omitempty"`
	ArrowStart bool       `json:"arrow_start,omitempty"`
	ArrowEnd   bool       `json:"arrow_end,omitempty"`

	Vertices []wirePoint `json:"vertices,omitempty"`

	Runs     []wireRun `json:"runs,omitempty"`
	Content  string    `json:"content,omitempty"`
	Locked   bool      `json:"locked,omitempty"`
	NextLink string    `json:"next_link,omitempty"`
	PrevLink string    `json:"prev_link,omitempty"`
}

// finite keeps NaN and infinities out of the JSON encoder.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func toWirePoint(p vector.Pt) *wirePoint { return &wirePoint{X: finite(p.X), Y: finite(p.Y)} }

func colorPtr(c vector.Color) *vector.Color { return &c }

func toWireItem(o domain.Object) wireItem {
	w := wireItem{
		Type:     string(o.Kind),
		ID:       o.ID,
		X:        finite(o.X),
		Y:        finite(o.Y),
		Rotation: finite(o.Rotation),
		Z:        o.Z,
		Group:    o.Group,
		Stroke:   &wireStroke{Style: o.Stroke.Style, Width: finite(o.Stroke.Width), Color: o.Stroke.Color},
	}
	if o.Fill.Color != (vector.Color{}) || o.Fill.Image != nil {
		w.Fill = &wireFill{}
		if o.Fill.Color != (vector.Color{}) {
			w.Fill.Color = colorPtr(o.Fill.Color)
		}
		if img := o.Fill.Image; img != nil {
			w.Fill.Image = &wireImage{Ref: img.Ref, Aspect: string(domain.ParseAspect(string(img.Aspect))), Width: img.Width, Height: img.Height}
		}
	}
	switch o.Kind {
	case domain.KindRect, domain.KindEllipse:
		w.Width, w.Height = finite(o.W), finite(o.H)
		w.CornerRadius = finite(o.CornerRadius)
	case domain.KindLine:
		w.X, w.Y = finite(domain.LineStart(o).X), finite(domain.LineStart(o).Y)
		w.A = toWirePoint(domain.LineStart(o))
		w.B = toWirePoint(domain.LineEnd(o))
		w.ArrowStart, w.ArrowEnd = o.ArrowStart, o.ArrowEnd
	case domain.KindPolygon:
		b := domain.Bounds(o)
		w.X, w.Y = finite(b.X), finite(b.Y)
		for _, p := range domain.AbsVertices(o) {
			w.Vertices = append(w.Vertices, *toWirePoint(p))
		}
	case domain.KindText:
		w.Width, w.Height = finite(o.W), finite(o.H)
		w.Locked = o.Locked
		w.NextLink, w.PrevLink = o.NextLink, o.PrevLink
		for _, r := range o.Runs {
			w.Runs = append(w.Runs, wireRun{
				Text: r.Text, Font: r.Font, Size: finite(r.Size),
				Bold: r.Bold, Italic: r.Italic, Underline: r.Underline, Color: colorPtr(r.Color),
			})
		}
	}
	return w
}

func toWirePage(p *domain.Page) wirePage {
	wp := wirePage{
		Width: finite(p.Width), Height: finite(p.Height), PageNumber: p.Number,
		Background: colorPtr(p.Background),
		Items:      make([]wireItem, 0, len(p.Objects)),
	}
	for _, o := range p.Objects {
		wp.Items = append(wp.Items, toWireItem(o))
	}
	return wp
}

// fromWireItem rebuilds an object. The bool is false for unknown types.
func fromWireItem(w wireItem, s domain.PageSettings) (domain.Object, bool) {
	var o domain.Object
	switch domain.Kind(w.Type) {
	case domain.KindRect:
		o = domain.NewRect(w.X, w.Y, w.Width, w.Height)
		o.CornerRadius = w.CornerRadius
	case domain.KindEllipse:
		o = domain.NewEllipse(w.X, w.Y, w.Width, w.Height)
	case domain.KindLine:
		a, b := vector.Pt{X: w.X, Y: w.Y}, vector.Pt{X: w.X, Y: w.Y}
		if w.A != nil {
			a = vector.Pt{X: w.A.X, Y: w.A.Y}
		}
		if w.B != nil {
			b = vector.Pt{X: w.B.X, Y: w.B.Y}
		}
		o = domain.NewLine(a, b)
		o.ArrowStart, o.ArrowEnd = w.ArrowStart, w.ArrowEnd
	case domain.KindPolygon:
		pts := make([]vector.Pt, len(w.Vertices))
		for i, v := range w.Vertices {
			pts[i] = vector.Pt{X: v.X, Y: v.Y}
		}
		o = domain.NewPolygon(pts)
	case domain.KindText:
		h := w.Height
		if h <= 0 {
			h = domain.DefaultTextBoxH
		}
		wd := w.Width
		if wd <= 0 {
			wd = domain.DefaultTextBoxW
		}
		base := domain.DefaultRun(s.Font, s.FontSize)
		o = domain.NewTextBox(w.X, w.Y, wd, h, w.Locked, base)
		switch {
		case len(w.Runs) > 0:
			o.Runs = fromWireRuns(w.Runs, base)
		case w.Content != "":
			o.Runs = runsFromHTML(w.Content, base)
		}
		o.NextLink, o.PrevLink = w.NextLink, w.PrevLink
	default:
		return domain.Object{}, false
	}
	if w.ID != "" {
		o.ID = w.ID
	}
	o.Rotation = vector.NormalizeDegrees(w.Rotation)
	o.Z = w.Z
	o.Group = w.Group
	if w.Stroke != nil {
		o.Stroke = domain.Stroke{Style: vector.ParseLineStyle(string(w.Stroke.Style)), Width: w.Stroke.Width, Color: w.Stroke.Color}
	}
	if w.Fill != nil {
		if w.Fill.Color != nil {
			o.Fill.Color = *w.Fill.Color
		}
		if img := w.Fill.Image; img != nil && img.Ref != "" {
			o.Fill.Image = &domain.ImageFill{Ref: img.Ref, Aspect: domain.ParseAspect(img.Aspect), Width: img.Width, Height: img.Height}
		}
	}
	return o, true
}

func fromWireRuns(in []wireRun, base domain.TextRun) []domain.TextRun {
	out := make([]domain.TextRun, 0, len(in))
	for _, r := range in {
		run := base
		run.Text = r.Text
		if r.Font != "" {
			run.Font = r.Font
		}
		if r.Size > 0 {
			run.Size = r.Size
		}
		run.Bold, run.Italic, run.Underline = r.Bold, r.Italic, r.Underline
		if r.Color != nil {
			run.Color = *r.Color
		}
		out = append(out, run)
	}
	return domain.NormalizeRuns(out)
}
