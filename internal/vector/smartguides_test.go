/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestComputeSmartGuides_SnapToMarginEdges(t *testing.T) {
	margins := MarginAnchor(794, 1123, 50, 50, 50, 50)
	moving := Rect{X: 53, Y: 46, W: 80, H: 40}
	opts := SnapOptions{Threshold: 10, SnapToEdges: true}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{margins}, opts)
	if snapped.X != 50 || snapped.Y != 50 {
		t.Fatalf("expected snap to margin corner, got %+v", snapped)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == Vertical && g.Position == 50 {
			vOK = true
		}
		if g.Orientation == Horizontal && g.Position == 50 {
			hOK = true
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected guides at x=50 (%v) and y=50 (%v)", vOK, hOK)
	}
}

func TestComputeSmartGuides_SnapToCenters(t *testing.T) {
	other := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 48, Y: 17, W: 100, H: 60}
	opts := SnapOptions{Threshold: 5, SnapToCenters: true}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: other, Weight: 1}}, opts)
	if snapped.X != 50 || snapped.Y != 20 {
		t.Fatalf("expected centers aligned, got %+v", snapped)
	}
	for _, g := range guides {
		if g.Kind != "center" {
			t.Fatalf("unexpected guide kind %q", g.Kind)
		}
	}
	if len(guides) != 2 {
		t.Fatalf("expected two center guides, got %d", len(guides))
	}
}

func TestComputeSmartGuides_ThresholdPreventsSnap(t *testing.T) {
	other := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 12, Y: 12, W: 50, H: 20}
	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: other, Weight: 1}}, SnapOptions{Threshold: 10, SnapToEdges: true})
	if snapped != moving {
		t.Fatalf("expected no snapping outside threshold; got %+v", snapped)
	}
	if len(guides) != 0 {
		t.Fatalf("expected no guides when no snap")
	}
}

func TestComputeSmartGuides_PicksClosestAxisIndependently(t *testing.T) {
	anchors := []Anchor{
		{Rect: Rect{X: 0, Y: 0, W: 100, H: 100}, Weight: 1},
		{Rect: Rect{X: 300, Y: 0, W: 100, H: 100}, Weight: 1},
	}
	moving := Rect{X: 2, Y: 97, W: 80, H: 80}
	snapped, _ := ComputeSmartGuides(moving, anchors, SnapOptions{Threshold: 5, SnapToEdges: true})
	if snapped.X != 0 {
		t.Fatalf("expected X snapped to 0, got %v", snapped.X)
	}
	if snapped.Y != 100 {
		t.Fatalf("expected Y snapped to 100, got %v", snapped.Y)
	}
}
