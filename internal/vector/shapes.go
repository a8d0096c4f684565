/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Polygon presets used by the polygon tool. Angles start at 12 o'clock.

// Triangle returns an equilateral triangle of side size centered on (cx,cy).
func Triangle(cx, cy, size float64) []Pt {
	h := size * math.Sqrt(3) / 2
	return []Pt{
		{cx, cy - 2*h/3},
		{cx - size/2, cy + h/3},
		{cx + size/2, cy + h/3},
	}
}

// Star alternates outer and inner vertices, 2*points in total.
func Star(cx, cy, outer, inner float64, points int) []Pt {
	if points < 2 {
		points = 5
	}
	step := 360.0 / float64(points)
	out := make([]Pt, 0, 2*points)
	for i := 0; i < points; i++ {
		a := Radians(float64(i)*step - 90)
		out = append(out, Pt{cx + outer*math.Cos(a), cy + outer*math.Sin(a)})
		a = Radians((float64(i)+0.5)*step - 90)
		out = append(out, Pt{cx + inner*math.Cos(a), cy + inner*math.Sin(a)})
	}
	return out
}

// RegularPolygon places n vertices on a circle of radius r.
func RegularPolygon(cx, cy, r float64, n int) []Pt {
	if n < 3 {
		n = 3
	}
	out := make([]Pt, n)
	for i := range out {
		a := Radians(float64(i)*360/float64(n) - 90)
		out[i] = Pt{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return out
}

// PolygonSpec names a polygon tool preset: 3 = triangle, 4 = box, n = regular,
// 0 = five-point star.
type PolygonSpec int

const StarPolygon PolygonSpec = 0

// PolygonInBox builds the preset so that it fills box the way the creation
// drag expects: star and regular shapes use radius max(w,h)/2 about the box
// center, the four-sided preset spans the box exactly.
func PolygonInBox(spec PolygonSpec, box Rect) []Pt {
	c := box.Center()
	r := math.Max(box.W, box.H) / 2
	switch {
	case spec == StarPolygon:
		return Star(c.X, c.Y, r, r/2, 5)
	case spec == 3:
		return Triangle(c.X, c.Y, r*2)
	case spec == 4:
		return []Pt{{box.X, box.Y}, {box.X + box.W, box.Y}, {box.X + box.W, box.Y + box.H}, {box.X, box.Y + box.H}}
	default:
		return RegularPolygon(c.X, c.Y, r, int(spec))
	}
}
