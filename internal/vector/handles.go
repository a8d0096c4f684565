/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Resize and rotate handle geometry shared by every object kind.
// All functions are pure: they take the geometry captured when a gesture
// started plus the total pointer delta since then, so repeated move events
// never accumulate rounding drift.

import "math"

// Handle identifies one of the eight bounding-box handles.
type Handle int

const (
	TopLeft Handle = iota
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
)

// HandleCount is the number of bounding-box handles.
const HandleCount = 8

const (
	// MinSize is the smallest width or height a handle drag may shrink a box to.
	MinSize = 10.0
	// MinScale bounds the uniform scale applied to polygons.
	MinScale = 0.1
	// HandleTolerance is the pick radius around a handle point.
	HandleTolerance = 6.0
	// ExtraHandleOffset places the text box link and rotate handles outside the box.
	ExtraHandleOffset = 15.0
)

func (h Handle) Valid() bool { return h >= TopLeft && h <= Left }

var handleNames = [...]string{"top-left", "top", "top-right", "right", "bottom-right", "bottom", "bottom-left", "left"}

func (h Handle) String() string {
	if !h.Valid() {
		return "invalid"
	}
	return handleNames[h]
}

// edges reports which edges of the bounding box a handle moves.
func (h Handle) edges() (left, top, right, bottom bool) {
	switch h {
	case TopLeft:
		return true, true, false, false
	case Top:
		return false, true, false, false
	case TopRight:
		return false, true, true, false
	case Right:
		return false, false, true, false
	case BottomRight:
		return false, false, true, true
	case Bottom:
		return false, false, false, true
	case BottomLeft:
		return true, false, false, true
	case Left:
		return true, false, false, false
	}
	return false, false, false, false
}

// HandlePoints returns the corner and edge-midpoint handles in index order.
func HandlePoints(r Rect) []Pt {
	c := r.Center()
	x1, y1 := r.X+r.W, r.Y+r.H
	return []Pt{
		{r.X, r.Y}, {c.X, r.Y}, {x1, r.Y}, {x1, c.Y},
		{x1, y1}, {c.X, y1}, {r.X, y1}, {r.X, c.Y},
	}
}

// LinkHandlePoint sits below the bottom edge center.
func LinkHandlePoint(r Rect) Pt {
	return Pt{r.X + r.W/2, r.Y + r.H + ExtraHandleOffset}
}

// RotateHandlePoint sits diagonally off the top-right corner.
func RotateHandlePoint(r Rect) Pt {
	return Pt{r.X + r.W + ExtraHandleOffset, r.Y - ExtraHandleOffset}
}

// HandleAt returns the index of the first handle within tolerance of p, or -1.
func HandleAt(handles []Pt, p Pt, tol float64) int {
	for i, h := range handles {
		if h.Near(p, tol) {
			return i
		}
	}
	return -1
}

// ResizeRect moves the edges selected by h by delta. A dimension that a drag
// would shrink below minSize is clamped to minSize with the opposite edge kept
// in place; a dimension that grows is accepted as is, so a freshly created
// one-unit shape can be dragged out gradually. The second result is false when
// the minimum constrained the outcome. A shrinking drag is clamped rather
// than rejected, so the box still follows the pointer down to the minimum
// instead of freezing at its last size.
func ResizeRect(orig Rect, h Handle, delta Pt, minSize float64) (Rect, bool) {
	if !h.Valid() {
		return orig, false
	}
	ml, mt, mr, mb := h.edges()
	l, t, r, b := orig.X, orig.Y, orig.X+orig.W, orig.Y+orig.H
	if ml {
		l += delta.X
	}
	if mr {
		r += delta.X
	}
	if mt {
		t += delta.Y
	}
	if mb {
		b += delta.Y
	}
	ok := true
	if w := r - l; (ml || mr) && (w < minSize && w < orig.W || w <= 0) {
		ok = false
		if ml {
			l = r - minSize
		} else {
			r = l + minSize
		}
	}
	if hgt := b - t; (mt || mb) && (hgt < minSize && hgt < orig.H || hgt <= 0) {
		ok = false
		if mt {
			t = b - minSize
		} else {
			b = t + minSize
		}
	}
	return Rect{X: l, Y: t, W: r - l, H: b - t}, ok
}

// UniformScale returns max(1+dx/w, 1+dy/h) clamped to MinScale. Degenerate
// axes do not contribute.
func UniformScale(orig Rect, delta Pt) float64 {
	s := math.Inf(-1)
	if orig.W > 0 {
		s = math.Max(s, 1+delta.X/orig.W)
	}
	if orig.H > 0 {
		s = math.Max(s, 1+delta.Y/orig.H)
	}
	if math.IsInf(s, -1) {
		s = 1
	}
	return math.Max(s, MinScale)
}

// ScalePoints scales every point about c by s.
func ScalePoints(pts []Pt, c Pt, s float64) []Pt {
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[i] = Pt{c.X + (p.X-c.X)*s, c.Y + (p.Y-c.Y)*s}
	}
	return out
}

// TranslatePoints offsets every point by d.
func TranslatePoints(pts []Pt, d Pt) []Pt {
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}

// RotationAt is the absolute rotation for a rotate handle held at p around
// center c: the pointer direction plus 90 degrees, normalized.
func RotationAt(c, p Pt) float64 {
	return NormalizeDegrees(Degrees(math.Atan2(p.Y-c.Y, p.X-c.X)) + 90)
}
