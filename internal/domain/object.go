/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"math"

	"pagecomposer/internal/vector"
)

const (
	DefaultFont       = "Arial"
	DefaultFontSize   = 24.0
	DefaultTextBoxW   = 300.0
	DefaultTextBoxH   = 200.0
	RoundRectRadius   = 20.0
	LinePickTolerance = 4.0
)

// DefaultShapeStroke is the outline new shapes get: 2 units of solid black.
var DefaultShapeStroke = Stroke{Style: vector.Solid, Width: 2, Color: vector.Black}

// DefaultRun is the character format of an empty text box.
func DefaultRun(font string, size float64) TextRun {
	if font == "" {
		font = DefaultFont
	}
	if size <= 0 {
		size = DefaultFontSize
	}
	return TextRun{Font: font, Size: size, Color: vector.Black}
}

func NewRect(x, y, w, h float64) Object {
	return Object{ID: NewID(), Kind: KindRect, X: x, Y: y, W: w, H: h, Stroke: DefaultShapeStroke}
}

func NewEllipse(x, y, w, h float64) Object {
	return Object{ID: NewID(), Kind: KindEllipse, X: x, Y: y, W: w, H: h, Stroke: DefaultShapeStroke}
}

// NewLine places the line origin at a and stores b relative to it.
func NewLine(a, b vector.Pt) Object {
	return Object{ID: NewID(), Kind: KindLine, X: a.X, Y: a.Y, A: vector.Pt{}, B: b.Sub(a), Stroke: DefaultShapeStroke}
}

// NewPolygon takes absolute vertices; the origin becomes their bounding-box corner.
func NewPolygon(pts []vector.Pt) Object {
	b := vector.BoundsOf(pts)
	return Object{
		ID: NewID(), Kind: KindPolygon, X: b.X, Y: b.Y,
		Vertices: vector.TranslatePoints(pts, vector.Pt{X: -b.X, Y: -b.Y}),
		Stroke:   DefaultShapeStroke,
	}
}

// NewTextBox creates an empty box. Text boxes draw no outline by default.
func NewTextBox(x, y, w, h float64, locked bool, format TextRun) Object {
	format.Text = ""
	return Object{
		ID: NewID(), Kind: KindText, X: x, Y: y, W: w, H: h, Locked: locked,
		Stroke: Stroke{Style: vector.NoLine, Width: 1, Color: vector.Black},
		Runs:   []TextRun{format},
	}
}

// Capability is a bit set of the gestures an object accepts.
type Capability uint8

const (
	CanMove Capability = 1 << iota
	CanSelect
	CanResize
	CanEditText
	CanFillImage
	CanArrow
)

func (c Capability) Has(x Capability) bool { return c&x == x }

// Capabilities derives the capability set from kind and lock state. A locked
// text box only edits text.
func Capabilities(o Object) Capability {
	switch o.Kind {
	case KindRect, KindEllipse, KindPolygon:
		return CanMove | CanSelect | CanResize | CanFillImage
	case KindLine:
		return CanMove | CanSelect | CanResize | CanArrow
	case KindText:
		if o.Locked {
			return CanEditText
		}
		return CanMove | CanSelect | CanResize | CanEditText
	}
	return 0
}

// Bounds is the unrotated bounding rectangle in page coordinates.
func Bounds(o Object) vector.Rect {
	switch o.Kind {
	case KindLine:
		return vector.BoundsOf([]vector.Pt{LineStart(o), LineEnd(o)})
	case KindPolygon:
		return vector.BoundsOf(AbsVertices(o))
	default:
		return vector.R(o.X, o.Y, o.W, o.H)
	}
}

func origin(o Object) vector.Pt { return vector.Pt{X: o.X, Y: o.Y} }

func LineStart(o Object) vector.Pt { return origin(o).Add(o.A) }
func LineEnd(o Object) vector.Pt   { return origin(o).Add(o.B) }

// AbsVertices returns polygon vertices in page coordinates.
func AbsVertices(o Object) []vector.Pt { return vector.TranslatePoints(o.Vertices, origin(o)) }

// Transform is the rotation about the bounding box center.
func Transform(o Object) vector.Affine2D {
	return vector.RotateAbout(Bounds(o).Center(), o.Rotation)
}

// Outline is the object's silhouette in page coordinates, rotation applied.
// It is the clip region for image fills.
func Outline(o Object) vector.Path {
	var p vector.Path
	switch o.Kind {
	case KindRect:
		p = vector.RoundedRectPath(Bounds(o), o.CornerRadius)
	case KindEllipse:
		p = vector.EllipsePath(Bounds(o))
	case KindPolygon:
		p = vector.PolygonPath(AbsVertices(o))
	case KindLine:
		a, b := LineStart(o), LineEnd(o)
		p.MoveTo(a.X, a.Y)
		p.LineTo(b.X, b.Y)
	case KindText:
		p = vector.RectPath(Bounds(o))
	}
	return p.Transformed(Transform(o))
}

// Node builds the hit-testable silhouette.
func Node(o Object) vector.Node {
	var n vector.Node
	switch o.Kind {
	case KindRect:
		if o.CornerRadius > 0 {
			n = vector.NewRoundedRect(Bounds(o), o.CornerRadius)
		} else {
			n = vector.NewRect(Bounds(o))
		}
	case KindEllipse:
		n = vector.NewEllipse(Bounds(o))
	case KindPolygon:
		n = vector.NewPolygon(AbsVertices(o))
	case KindLine:
		n = vector.NewLine(LineStart(o), LineEnd(o), math.Max(LinePickTolerance, o.Stroke.Width))
	default:
		n = vector.NewRect(Bounds(o))
	}
	n.SetTransform(Transform(o))
	return n
}

// MoveBy translates the object. Every kind moves by its origin alone.
func MoveBy(o Object, d vector.Pt) Object {
	o.X += d.X
	o.Y += d.Y
	return o
}

// SetRotation stores the angle normalized into [0,360).
func SetRotation(o Object, deg float64) Object {
	o.Rotation = vector.NormalizeDegrees(deg)
	return o
}

// SetSize resizes box kinds from their top-left corner, honoring the
// minimum size. Lines and polygons are left alone.
func SetSize(o Object, w, h float64) (Object, bool) {
	switch o.Kind {
	case KindRect, KindEllipse, KindText:
		if w < vector.MinSize || h < vector.MinSize {
			return o, false
		}
		o.W, o.H = w, h
		return o, true
	}
	return o, false
}
