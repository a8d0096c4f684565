/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestPath_QuadAndCubic_Bounds(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.QuadTo(10, 10, 20, 0)
	p.CubicTo(30, -10, 40, 10, 50, 0)
	p.Close()

	b := p.Bounds()
	if b != R(0, -10, 50, 20) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestOutlineBuilders(t *testing.T) {
	r := R(10, 20, 100, 60)
	for name, p := range map[string]Path{
		"rect":    RectPath(r),
		"rounded": RoundedRectPath(r, 20),
		"ellipse": EllipsePath(r),
	} {
		if got := p.Bounds(); got != r {
			t.Fatalf("%s bounds = %+v, want %+v", name, got, r)
		}
		if p.Cmds[len(p.Cmds)-1].Op != Close {
			t.Fatalf("%s outline is not closed", name)
		}
	}
	if n := len(RoundedRectPath(r, 0).Cmds); n != len(RectPath(r).Cmds) {
		t.Fatalf("zero radius should produce a plain rect, got %d cmds", n)
	}
	if got := len(PolygonPath(nil).Cmds); got != 0 {
		t.Fatalf("empty polygon should have no commands, got %d", got)
	}
}

func TestPathTransformed(t *testing.T) {
	p := RectPath(R(0, 0, 10, 10))
	q := p.Transformed(Translate(5, 5))
	if b := q.Bounds(); b != R(5, 5, 10, 10) {
		t.Fatalf("unexpected transformed bounds: %+v", b)
	}
	if b := p.Bounds(); b != R(0, 0, 10, 10) {
		t.Fatalf("source path was modified: %+v", b)
	}
}

func TestPolygonPresets(t *testing.T) {
	star := Star(0, 0, 10, 5, 5)
	if len(star) != 10 {
		t.Fatalf("five-point star needs 10 vertices, got %d", len(star))
	}
	if math.Abs(star[0].Y+10) > 1e-9 || math.Abs(star[0].X) > 1e-9 {
		t.Fatalf("first star point should be at 12 o'clock: %+v", star[0])
	}
	tri := Triangle(0, 0, 30)
	if len(tri) != 3 || math.Abs(tri[1].Y-tri[2].Y) > 1e-9 {
		t.Fatalf("triangle base should be horizontal: %+v", tri)
	}
	box := R(0, 0, 40, 20)
	quad := PolygonInBox(4, box)
	if BoundsOf(quad) != box {
		t.Fatalf("four-sided preset should span the box: %+v", quad)
	}
	if n := len(PolygonInBox(6, box)); n != 6 {
		t.Fatalf("hexagon has %d vertices", n)
	}
	if n := len(PolygonInBox(StarPolygon, box)); n != 10 {
		t.Fatalf("star preset has %d vertices", n)
	}
}

func TestPath_Flatten(t *testing.T) {
	p := RectPath(R(0, 0, 10, 5))
	polys := p.Flatten(4)
	if len(polys) != 1 || len(polys[0]) != 5 || polys[0][4] != (Pt{0, 0}) {
		t.Fatalf("rect flatten: %+v", polys)
	}
	e := EllipsePath(R(0, 0, 20, 20))
	ring := e.Flatten(8)[0]
	if len(ring) != 34 {
		t.Fatalf("ellipse points = %d", len(ring))
	}
	for _, q := range ring {
		if d := q.Dist(Pt{10, 10}); math.Abs(d-10) > 0.1 {
			t.Fatalf("point %+v is %v from center", q, d)
		}
	}
}
