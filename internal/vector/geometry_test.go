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

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(Pt{50, 40}, Pt{10, 60})
	if r != R(10, 40, 40, 20) {
		t.Fatalf("unexpected rect: %+v", r)
	}
	if !R(0, 0, 0, 5).Empty() || R(0, 0, 1, 1).Empty() {
		t.Fatalf("Empty misreports degenerate rects")
	}
}

func TestAffineBasicAndInvert(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 {
		t.Fatalf("unexpected transform result: %+v", p)
	}
	q := m.Invert().Apply(p)
	if math.Abs(q.X-1) > 1e-9 || math.Abs(q.Y-1) > 1e-9 {
		t.Fatalf("inverse did not round trip: %+v", q)
	}
}

func TestRotateAboutCenter(t *testing.T) {
	m := RotateAbout(Pt{10, 10}, 90)
	p := m.Apply(Pt{20, 10})
	if math.Abs(p.X-10) > 1e-9 || math.Abs(p.Y-20) > 1e-9 {
		t.Fatalf("unexpected rotated point: %+v", p)
	}
	if RotateAbout(Pt{1, 1}, 0) != Identity {
		t.Fatalf("zero rotation should be identity")
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := map[float64]float64{0: 0, 360: 0, 370: 10, -90: 270, 720.5: 0.5}
	for in, want := range cases {
		if got := NormalizeDegrees(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("NormalizeDegrees(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestUnionAndFloatRound(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(5, -5, 5, 10))
	if u != R(0, -5, 10, 15) {
		t.Fatalf("unexpected union: %+v", u)
	}
	if FloatRound(1.23456, 2) != 1.23 {
		t.Fatalf("float round fail")
	}
	if FloatRound(1.23456, -1) != 1.23456 {
		t.Fatalf("negative places should be no-op")
	}
}
