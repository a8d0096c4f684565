/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and object outlines. Outlines double as clip regions for
// image fills, so every builder produces a single closed subpath.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// points returns the number of coordinate pairs a command carries.
func (c PathCmd) points() int {
	switch c.Op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

// Bounds returns the bounding box of all end and control points. Control
// points may overshoot the curve slightly; that is fine for selection boxes.
func (p *Path) Bounds() Rect {
	var pts []Pt
	for _, c := range p.Cmds {
		for i := 0; i < c.points(); i++ {
			pts = append(pts, Pt{c.Data[2*i], c.Data[2*i+1]})
		}
	}
	return BoundsOf(pts)
}

// Transformed returns a copy with every point mapped through m.
func (p *Path) Transformed(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		nc := PathCmd{Op: c.Op}
		for k := 0; k < c.points(); k++ {
			q := m.Apply(Pt{c.Data[2*k], c.Data[2*k+1]})
			nc.Data[2*k], nc.Data[2*k+1] = q.X, q.Y
		}
		out.Cmds[i] = nc
	}
	return out
}

// kappa is the cubic control distance for a quarter circle of radius 1.
const kappa = 0.5522847498

func RectPath(r Rect) Path {
	var p Path
	p.MoveTo(r.X, r.Y)
	p.LineTo(r.X+r.W, r.Y)
	p.LineTo(r.X+r.W, r.Y+r.H)
	p.LineTo(r.X, r.Y+r.H)
	p.Close()
	return p
}

// RoundedRectPath clamps radius to half the shorter side.
func RoundedRectPath(r Rect, radius float64) Path {
	radius = min(radius, min(r.W, r.H)/2)
	if radius <= 0 {
		return RectPath(r)
	}
	k := radius * kappa
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	var p Path
	p.MoveTo(x0+radius, y0)
	p.LineTo(x1-radius, y0)
	p.CubicTo(x1-radius+k, y0, x1, y0+radius-k, x1, y0+radius)
	p.LineTo(x1, y1-radius)
	p.CubicTo(x1, y1-radius+k, x1-radius+k, y1, x1-radius, y1)
	p.LineTo(x0+radius, y1)
	p.CubicTo(x0+radius-k, y1, x0, y1-radius+k, x0, y1-radius)
	p.LineTo(x0, y0+radius)
	p.CubicTo(x0, y0+radius-k, x0+radius-k, y0, x0+radius, y0)
	p.Close()
	return p
}

// EllipsePath approximates the inscribed ellipse with four cubic segments.
func EllipsePath(r Rect) Path {
	c := r.Center()
	rx, ry := r.W/2, r.H/2
	kx, ky := rx*kappa, ry*kappa
	var p Path
	p.MoveTo(c.X+rx, c.Y)
	p.CubicTo(c.X+rx, c.Y+ky, c.X+kx, c.Y+ry, c.X, c.Y+ry)
	p.CubicTo(c.X-kx, c.Y+ry, c.X-rx, c.Y+ky, c.X-rx, c.Y)
	p.CubicTo(c.X-rx, c.Y-ky, c.X-kx, c.Y-ry, c.X, c.Y-ry)
	p.CubicTo(c.X+kx, c.Y-ry, c.X+rx, c.Y-ky, c.X+rx, c.Y)
	p.Close()
	return p
}

func PolygonPath(pts []Pt) Path {
	var p Path
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
			continue
		}
		p.LineTo(q.X, q.Y)
	}
	if len(pts) > 0 {
		p.Close()
	}
	return p
}

// Flatten approximates the path with polylines, one per subpath. Curves are
// sampled with steps segments each; Close repeats the subpath's first point.
func (p *Path) Flatten(steps int) [][]Pt {
	if steps <= 0 {
		steps = 8
	}
	var out [][]Pt
	var cur []Pt
	last := Pt{}
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case MoveTo:
			flush()
			last = Pt{d[0], d[1]}
			cur = []Pt{last}
		case LineTo:
			last = Pt{d[0], d[1]}
			cur = append(cur, last)
		case QuadTo:
			c1, end := Pt{d[0], d[1]}, Pt{d[2], d[3]}
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				u := 1 - t
				cur = append(cur, last.Mul(u*u).Add(c1.Mul(2*u*t)).Add(end.Mul(t*t)))
			}
			last = end
		case CubicTo:
			c1, c2, end := Pt{d[0], d[1]}, Pt{d[2], d[3]}, Pt{d[4], d[5]}
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				u := 1 - t
				cur = append(cur, last.Mul(u*u*u).Add(c1.Mul(3*u*u*t)).Add(c2.Mul(3*u*t*t)).Add(end.Mul(t*t*t)))
			}
			last = end
		case Close:
			if len(cur) > 0 {
				cur = append(cur, cur[0])
				last = cur[0]
			}
			flush()
		}
	}
	flush()
	return out
}
