/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Snap-to-guides for the move tool. A moving selection box snaps against
// page margin guides and the bounds of other objects on the page.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance at which snapping occurs.
	Threshold float64
	// Snap to edges (left, right, top, bottom)
	SnapToEdges bool
	// Snap to centers (cx, cy)
	SnapToCenters bool
}

// Anchor is a static reference rect (another object or the margin box).
// Higher Weight wins distance ties; use 1 when unsure.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// MarginAnchor turns page size and margins into the anchor of the text area.
func MarginAnchor(pageW, pageH, left, top, right, bottom float64) Anchor {
	return Anchor{Rect: Rect{X: left, Y: top, W: pageW - left - right, H: pageH - top - bottom}, Weight: 2}
}

// Orientation of a guide line.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// GuideLine is a visual guide produced by a snap. Position is the x of a
// vertical guide or the y of a horizontal one, rounded to 3 places.
type GuideLine struct {
	Orientation Orientation
	Kind        string // "edge" or "center"
	Position    float64
	From        Pt
	To          Pt
}

type axisBest struct {
	delta float64
	dist  float64
	guide GuideLine
}

func (b *axisBest) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	if dist/math.Max(1, weight) < b.dist {
		b.dist = dist
		b.delta = delta
		b.guide = g
	}
}

// ComputeSmartGuides snaps moving against anchors, independently in X and Y,
// and returns the snapped rectangle plus the guides to draw.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 10
	}
	bx := axisBest{dist: math.Inf(1)}
	by := axisBest{dist: math.Inf(1)}

	mL, mR, mT, mB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mc := moving.Center()

	for _, a := range anchors {
		aL, aR, aT, aB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		ac := a.Rect.Center()
		if opts.SnapToEdges {
			for _, pair := range [][2]float64{{mL, aL}, {mR, aR}, {mL, aR}, {mR, aL}} {
				bx.consider(pair[0]-pair[1], opts.Threshold, a.Weight, verticalGuide(pair[1], moving, a.Rect, "edge"))
			}
			for _, pair := range [][2]float64{{mT, aT}, {mB, aB}, {mT, aB}, {mB, aT}} {
				by.consider(pair[0]-pair[1], opts.Threshold, a.Weight, horizontalGuide(pair[1], moving, a.Rect, "edge"))
			}
		}
		if opts.SnapToCenters {
			bx.consider(mc.X-ac.X, opts.Threshold, a.Weight, verticalGuide(ac.X, moving, a.Rect, "center"))
			by.consider(mc.Y-ac.Y, opts.Threshold, a.Weight, horizontalGuide(ac.Y, moving, a.Rect, "center"))
		}
	}

	var guides []GuideLine
	snapped := moving
	if bx.dist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.dist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func verticalGuide(x float64, a, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	x = FloatRound(x, 3)
	return GuideLine{Orientation: Vertical, Kind: kind, Position: x, From: Pt{x, minY}, To: Pt{x, maxY}}
}

func horizontalGuide(y float64, a, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	y = FloatRound(y, 3)
	return GuideLine{Orientation: Horizontal, Kind: kind, Position: y, From: Pt{minX, y}, To: Pt{maxX, y}}
}
