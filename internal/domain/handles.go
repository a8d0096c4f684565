/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "pagecomposer/internal/vector"

// Handles are derived state: every call recomputes them from the current
// geometry, so nothing needs refreshing after a mutation.

// HandleRole distinguishes what a picked handle does.
type HandleRole int

const (
	RoleNone HandleRole = iota
	RoleResize
	RoleLink
	RoleRotate
)

// Handles returns handle positions in page coordinates: eight for box kinds
// and polygons, two endpoints for lines, none for locked text boxes.
func Handles(o Object) []vector.Pt {
	switch o.Kind {
	case KindLine:
		return []vector.Pt{LineStart(o), LineEnd(o)}
	case KindText:
		if o.Locked {
			return nil
		}
	}
	return transformAll(Transform(o), vector.HandlePoints(Bounds(o)))
}

func transformAll(m vector.Affine2D, pts []vector.Pt) []vector.Pt {
	for i, p := range pts {
		pts[i] = m.Apply(p)
	}
	return pts
}

// HandlesVisible reports whether handles should be drawn: the object is
// selected and its bounding box is not degenerate. A line only needs length.
func HandlesVisible(o Object) bool {
	if !o.Selected || len(Handles(o)) == 0 {
		return false
	}
	b := Bounds(o)
	if o.Kind == KindLine {
		return b.W > 0 || b.H > 0
	}
	return !b.Empty()
}

// LinkHandle is the story-link grip below an unlocked text box.
func LinkHandle(o Object) (vector.Pt, bool) {
	if o.Kind != KindText || o.Locked {
		return vector.Pt{}, false
	}
	return Transform(o).Apply(vector.LinkHandlePoint(Bounds(o))), true
}

// RotateHandle is the rotation grip off the top-right corner of an unlocked text box.
func RotateHandle(o Object) (vector.Pt, bool) {
	if o.Kind != KindText || o.Locked {
		return vector.Pt{}, false
	}
	return Transform(o).Apply(vector.RotateHandlePoint(Bounds(o))), true
}

// HandleUnder picks the handle at p on a selected object. Resize handles win
// over the link and rotate grips.
func HandleUnder(o Object, p vector.Pt) (HandleRole, int) {
	if !HandlesVisible(o) {
		return RoleNone, -1
	}
	if i := vector.HandleAt(Handles(o), p, vector.HandleTolerance); i >= 0 {
		return RoleResize, i
	}
	if lp, ok := LinkHandle(o); ok && lp.Near(p, vector.HandleTolerance) {
		return RoleLink, -1
	}
	if rp, ok := RotateHandle(o); ok && rp.Near(p, vector.HandleTolerance) {
		return RoleRotate, -1
	}
	return RoleNone, -1
}

// ApplyDrag resizes o as if handle had been dragged by delta from where o
// stands now. The caller passes the geometry captured at the start of the
// gesture and the total delta, never incremental steps. The bool is false
// when the drag was refused or constrained by the minimum size.
func ApplyDrag(o Object, handle int, delta vector.Pt) (Object, bool) {
	if !Capabilities(o).Has(CanResize) {
		return o, false
	}
	if o.Kind == KindLine {
		switch handle {
		case 0:
			o.A = o.A.Add(delta)
		case 1:
			o.B = o.B.Add(delta)
		default:
			return o, false
		}
		return canonical(o), true
	}
	h := vector.Handle(handle)
	if !h.Valid() {
		return o, false
	}
	if o.Rotation != 0 {
		delta = vector.Rotate(vector.Radians(-o.Rotation)).Apply(delta)
	}
	orig := Bounds(o)
	if o.Kind == KindPolygon {
		s := vector.UniformScale(orig, delta)
		abs := vector.ScalePoints(AbsVertices(o), orig.Center(), s)
		o.Vertices = abs
		o.X, o.Y = 0, 0
		return canonical(o), s > vector.MinScale
	}
	r, ok := vector.ResizeRect(orig, h, delta, vector.MinSize)
	o.X, o.Y, o.W, o.H = r.X, r.Y, r.W, r.H
	return o, ok
}

// canonical re-bases a line on its start point and a polygon on its
// bounding-box corner, the origins the constructors and the decoder produce.
// Page coordinates do not change.
func canonical(o Object) Object {
	switch o.Kind {
	case KindLine:
		a, b := LineStart(o), LineEnd(o)
		o.X, o.Y = a.X, a.Y
		o.A, o.B = vector.Pt{}, b.Sub(a)
	case KindPolygon:
		abs := AbsVertices(o)
		r := vector.BoundsOf(abs)
		o.X, o.Y = r.X, r.Y
		o.Vertices = vector.TranslatePoints(abs, vector.Pt{X: -r.X, Y: -r.Y})
	}
	return o
}

// RotateTo points an unlocked text box's rotate grip at p. The angle is
// absolute, recomputed from the center on every move event.
func RotateTo(o Object, p vector.Pt) (Object, bool) {
	if o.Kind != KindText || o.Locked {
		return o, false
	}
	o.Rotation = vector.RotationAt(Bounds(o).Center(), p)
	return o, true
}
