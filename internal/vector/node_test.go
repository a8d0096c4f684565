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

func TestRectNode_HitAndBounds(t *testing.T) {
	n := NewRect(R(0, 0, 100, 50))
	n.SetTransform(Translate(10, 20))
	if !n.Hit(Pt{60, 45}) {
		t.Fatalf("expected hit after translation")
	}
	b := n.Bounds()
	if b != R(10, 20, 100, 50) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestRectNode_RotatedBounds(t *testing.T) {
	r := R(0, 0, 100, 20)
	n := NewRect(r)
	n.SetTransform(RotateAbout(r.Center(), 90))
	b := n.Bounds()
	if math.Abs(b.W-20) > 1e-9 || math.Abs(b.H-100) > 1e-9 {
		t.Fatalf("rotated bounds should swap extents: %+v", b)
	}
	if !n.Hit(Pt{50, 50}) || n.Hit(Pt{90, 10}) {
		t.Fatalf("hit test ignores rotation")
	}
}

func TestEllipseNode_Hit(t *testing.T) {
	n := NewEllipse(R(0, 0, 100, 100))
	if !n.Hit(Pt{50, 50}) {
		t.Fatalf("center should hit")
	}
	if n.Hit(Pt{5, 5}) {
		t.Fatalf("bounding box corner is outside the ellipse")
	}
	if NewEllipse(R(0, 0, 0, 10)).Hit(Pt{0, 5}) {
		t.Fatalf("degenerate ellipse should never hit")
	}
}

func TestRoundedRectNode_Hit(t *testing.T) {
	n := NewRoundedRect(R(0, 0, 100, 100), 20)
	if !n.Hit(Pt{10, 10}) {
		t.Fatalf("expected hit inside the corner arc")
	}
	if n.Hit(Pt{1, 1}) {
		t.Fatalf("expected miss in the cut-off corner")
	}
	if !n.Hit(Pt{50, 1}) {
		t.Fatalf("expected hit along the straight top edge")
	}
}

func TestPolygonNode_EvenOdd(t *testing.T) {
	n := NewPolygon([]Pt{{0, 0}, {10, 0}, {0, 10}})
	if !n.Hit(Pt{2, 2}) {
		t.Fatalf("expected hit inside triangle")
	}
	if n.Hit(Pt{8, 8}) {
		t.Fatalf("point inside bbox but outside triangle should miss")
	}
	if b := n.Bounds(); b != R(0, 0, 10, 10) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestLineNode_Tolerance(t *testing.T) {
	n := NewLine(Pt{0, 0}, Pt{100, 0}, 3)
	if !n.Hit(Pt{50, 2}) {
		t.Fatalf("expected hit near segment")
	}
	if n.Hit(Pt{50, 5}) || n.Hit(Pt{110, 0}) {
		t.Fatalf("expected miss away from segment")
	}
}

func TestGroup_BoundsAndHit(t *testing.T) {
	g := NewGroup(NewRect(R(0, 0, 10, 10)), NewRect(R(20, 0, 10, 10)))
	if b := g.Bounds(); b != R(0, 0, 30, 10) {
		t.Fatalf("unexpected group bounds: %+v", b)
	}
	if !g.Hit(Pt{5, 5}) || !g.Hit(Pt{25, 5}) {
		t.Fatalf("expected hits on both children")
	}
	if g.Hit(Pt{15, 5}) {
		t.Fatalf("did not expect hit in the gap")
	}
}
