/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Node is the hit-testable silhouette of a page object. Geometry is stored
// untransformed; the transform carries rotation about the object's center.
type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Hit(p Pt) bool
}

type baseNode struct {
	xf Affine2D
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }

// local maps a page point into the node's untransformed space.
func (b *baseNode) local(p Pt) Pt { return b.xf.Invert().Apply(p) }

func transformedBounds(xf Affine2D, r Rect) Rect {
	corners := []Pt{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X, r.Y + r.H}, {r.X + r.W, r.Y + r.H}}
	for i, c := range corners {
		corners[i] = xf.Apply(c)
	}
	return BoundsOf(corners)
}

// RectNode is an axis-aligned rectangle before transform.
type RectNode struct {
	baseNode
	rect Rect
}

func NewRect(r Rect) *RectNode {
	return &RectNode{baseNode: baseNode{xf: Identity}, rect: r}
}

func (n *RectNode) Bounds() Rect  { return transformedBounds(n.xf, n.rect) }
func (n *RectNode) Hit(p Pt) bool { return n.rect.Contains(n.local(p)) }

// EllipseNode is the ellipse inscribed in rect.
type EllipseNode struct {
	baseNode
	rect Rect
}

func NewEllipse(r Rect) *EllipseNode {
	return &EllipseNode{baseNode: baseNode{xf: Identity}, rect: r}
}

func (n *EllipseNode) Bounds() Rect { return transformedBounds(n.xf, n.rect) }

func (n *EllipseNode) Hit(p Pt) bool {
	q := n.local(p)
	c := n.rect.Center()
	rx, ry := n.rect.W/2, n.rect.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	dx := (q.X - c.X) / rx
	dy := (q.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// RoundedRectNode uses one radius for all four corners.
type RoundedRectNode struct {
	baseNode
	rect Rect
	r    float64
}

func NewRoundedRect(r Rect, radius float64) *RoundedRectNode {
	radius = math.Max(0, math.Min(radius, math.Min(r.W, r.H)/2))
	return &RoundedRectNode{baseNode: baseNode{xf: Identity}, rect: r, r: radius}
}

func (n *RoundedRectNode) Bounds() Rect { return transformedBounds(n.xf, n.rect) }

func (n *RoundedRectNode) Hit(p Pt) bool {
	q := n.local(p)
	if !n.rect.Contains(q) {
		return false
	}
	core := n.rect.Inset(n.r, 0)
	if core.W >= 0 && core.Contains(q) {
		return true
	}
	core = n.rect.Inset(0, n.r)
	if core.H >= 0 && core.Contains(q) {
		return true
	}
	cx := []float64{n.rect.X + n.r, n.rect.X + n.rect.W - n.r}
	cy := []float64{n.rect.Y + n.r, n.rect.Y + n.rect.H - n.r}
	for _, x := range cx {
		for _, y := range cy {
			if q.Near(Pt{x, y}, n.r) {
				return true
			}
		}
	}
	return false
}

// PolygonNode is a closed outline hit with the even-odd rule.
type PolygonNode struct {
	baseNode
	pts []Pt
}

func NewPolygon(pts []Pt) *PolygonNode {
	cp := append([]Pt(nil), pts...)
	return &PolygonNode{baseNode: baseNode{xf: Identity}, pts: cp}
}

func (n *PolygonNode) Bounds() Rect { return transformedBounds(n.xf, BoundsOf(n.pts)) }

func (n *PolygonNode) Hit(p Pt) bool {
	q := n.local(p)
	in := false
	for i, j := 0, len(n.pts)-1; i < len(n.pts); j, i = i, i+1 {
		a, b := n.pts[i], n.pts[j]
		if (a.Y > q.Y) != (b.Y > q.Y) && q.X < (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// LineNode is a segment hit within a pick tolerance.
type LineNode struct {
	baseNode
	a, b Pt
	tol  float64
}

func NewLine(a, b Pt, tol float64) *LineNode {
	return &LineNode{baseNode: baseNode{xf: Identity}, a: a, b: b, tol: tol}
}

func (n *LineNode) Bounds() Rect { return transformedBounds(n.xf, BoundsOf([]Pt{n.a, n.b})) }

func (n *LineNode) Hit(p Pt) bool {
	return SegmentDistance(n.local(p), n.a, n.b) <= n.tol
}

// SegmentDistance is the distance from p to the segment ab.
func SegmentDistance(p, a, b Pt) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(d.Mul(t)))
}

// Group is a container for child nodes with its own transform.
type Group struct {
	baseNode
	Children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{baseNode: baseNode{xf: Identity}}
	g.Children = append(g.Children, children...)
	return g
}

func (g *Group) Bounds() Rect {
	var b Rect
	for i, c := range g.Children {
		if i == 0 {
			b = c.Bounds()
			continue
		}
		b = b.Union(c.Bounds())
	}
	return transformedBounds(g.xf, b)
}

func (g *Group) Hit(p Pt) bool {
	q := g.local(p)
	for i := len(g.Children) - 1; i >= 0; i-- { // top-most first
		if g.Children[i].Hit(q) {
			return true
		}
	}
	return false
}
