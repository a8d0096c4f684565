/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

func TestClickCreatesMinimalShapeThenResizeClamps(t *testing.T) {
	s := newTestSession(t)
	id := click(t, s, ToolRect, vector.P(100, 100))
	o, _ := s.Object(id)
	if o.W != 1 || o.H != 1 {
		t.Fatalf("created %vx%v", o.W, o.H)
	}
	if !s.BeginResize(id, int(vector.BottomRight)) || s.Mode() != Resizing {
		t.Fatalf("resize refused")
	}
	if !s.DragResize(vector.P(106, 106)) {
		t.Fatalf("growing was constrained")
	}
	o, _ = s.Object(id)
	if o.W != 6 || o.H != 6 {
		t.Fatalf("after +5: %vx%v", o.W, o.H)
	}
	if s.DragResize(vector.P(1, 1)) {
		t.Fatalf("shrinking past the minimum was not reported")
	}
	o, _ = s.Object(id)
	if o.W != vector.MinSize || o.H != vector.MinSize || o.X != 100 || o.Y != 100 {
		t.Fatalf("after -100: %+v", domain.Bounds(o))
	}
	if !s.EndResize() || s.UndoLabel() != "resize" {
		t.Fatalf("resize not recorded")
	}
}

func TestToolReturnsToSelectAfterCreate(t *testing.T) {
	s := newTestSession(t)
	if !s.SelectTool("ellipse") || s.Tool() != ToolEllipse {
		t.Fatalf("select tool")
	}
	if !s.Press(vector.P(300, 300), false) || s.Mode() != Creating {
		t.Fatalf("press did not start creation")
	}
	s.Drag(vector.P(340, 320))
	if !s.Release(vector.P(360, 340)) {
		t.Fatalf("release")
	}
	if s.Tool() != ToolSelect || s.Mode() != Idle {
		t.Fatalf("tool=%s mode=%s", s.Tool(), s.Mode())
	}
	sel := s.Selection()
	if len(sel) != 1 {
		t.Fatalf("selection %v", sel)
	}
	o, _ := s.Object(sel[0])
	if o.Kind != domain.KindEllipse || o.W != 60 || o.H != 40 {
		t.Fatalf("created %+v", domain.Bounds(o))
	}
	if s.SelectTool("lasso") {
		t.Fatalf("unknown tool accepted")
	}
}

func TestMinimumTextBoxes(t *testing.T) {
	s := newTestSession(t)
	text, _ := s.Object(click(t, s, ToolTextBox, vector.P(10, 10)))
	title, _ := s.Object(click(t, s, ToolTitleBox, vector.P(10, 300)))
	if text.W != minTextBoxW || text.H != minTextBoxH {
		t.Fatalf("text box %vx%v", text.W, text.H)
	}
	if title.H != minTitleBoxH || title.Locked || text.Locked {
		t.Fatalf("title box %+v", domain.Bounds(title))
	}
	poly, _ := s.Object(click(t, s, ToolPolygon, vector.P(400, 400)))
	if len(poly.Vertices) != 3 {
		t.Fatalf("polygon click made %d vertices", len(poly.Vertices))
	}
}

func TestCancelRestoresModel(t *testing.T) {
	s := newTestSession(t)
	id := drawRect(t, s, 100, 100, 80, 40)
	saved := mustSave(t, s)
	depth := s.UndoStats().UndoDepth

	s.BeginCreate(ToolRect, vector.P(400, 400))
	s.Drag(vector.P(450, 450))
	if !s.Cancel() || len(s.CurrentPage().Objects) != 1 {
		t.Fatalf("cancelled creation left %d objects", len(s.CurrentPage().Objects))
	}

	s.BeginResize(id, int(vector.BottomRight))
	s.DragResize(vector.P(300, 300))
	s.Cancel()

	s.Select(id, false)
	s.BeginMove(vector.P(120, 120))
	s.Drag(vector.P(200, 220))
	s.Cancel()

	if s.Mode() != Idle || s.UndoStats().UndoDepth != depth {
		t.Fatalf("cancel recorded history or left mode %s", s.Mode())
	}
	if got := mustSave(t, s); string(got) != string(saved) {
		t.Fatalf("model changed after cancels")
	}
	if s.Cancel() {
		t.Fatalf("cancel with nothing in progress")
	}
}

func TestPressRoutesHandlesAndMoves(t *testing.T) {
	s := newTestSession(t)
	id := drawRect(t, s, 100, 100, 80, 40)
	if !s.Press(vector.P(180, 140), false) || s.Mode() != Resizing {
		t.Fatalf("handle press: mode %s", s.Mode())
	}
	s.Release(vector.P(200, 160))
	o, _ := s.Object(id)
	if o.W != 100 || o.H != 60 {
		t.Fatalf("resized to %vx%v", o.W, o.H)
	}
	if !s.Press(vector.P(120, 110), false) || s.Mode() != Moving {
		t.Fatalf("body press: mode %s", s.Mode())
	}
	s.Release(vector.P(130, 125))
	o, _ = s.Object(id)
	if o.X != 110 || o.Y != 115 {
		t.Fatalf("moved to %v,%v", o.X, o.Y)
	}
	if s.UndoLabel() != "move" {
		t.Fatalf("label %q", s.UndoLabel())
	}
	s.Press(vector.P(600, 600), false)
	if len(s.Selection()) != 0 {
		t.Fatalf("press on empty space kept the selection")
	}
}

func TestClickWithoutMoveRecordsNothing(t *testing.T) {
	s := newTestSession(t)
	id := drawRect(t, s, 100, 100, 80, 40)
	s.ClearSelection()
	depth := s.UndoStats().UndoDepth
	s.Press(vector.P(120, 110), false)
	s.Release(vector.P(120, 110))
	if s.UndoStats().UndoDepth != depth {
		t.Fatalf("a click recorded a move")
	}
	if sel := s.Selection(); len(sel) != 1 || sel[0] != id {
		t.Fatalf("click did not select: %v", sel)
	}
}

func TestSnapToMargin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Page.BodyText = false
	s := NewSession(cfg)
	id := drawRect(t, s, 100, 100, 80, 40)
	s.BeginMove(vector.P(120, 120))
	s.Drag(vector.P(74, 120))
	if len(s.Guides()) == 0 {
		t.Fatalf("no guides while snapping")
	}
	s.EndMove()
	o, _ := s.Object(id)
	if o.X != cfg.Page.Margins.Left {
		t.Fatalf("x = %v, want snapped to the margin", o.X)
	}
}

func TestRotateTextBox(t *testing.T) {
	s := newTestSession(t)
	id := click(t, s, ToolTextBox, vector.P(100, 100))
	if !s.BeginRotate(id) {
		t.Fatalf("rotate refused")
	}
	s.DragRotate(vector.P(400, 115))
	if !s.EndRotate() {
		t.Fatalf("rotation not recorded")
	}
	o, _ := s.Object(id)
	if o.Rotation == 0 {
		t.Fatalf("rotation unchanged")
	}
	rect := drawRect(t, s, 300, 300, 20, 20)
	if s.BeginRotate(rect) {
		t.Fatalf("rect has no rotate grip")
	}
}

func TestDuplicateSelection(t *testing.T) {
	s := newTestSession(t)
	id := drawRect(t, s, 100, 100, 80, 40)
	copies := s.DuplicateSelection()
	if len(copies) != 1 || copies[0] == id {
		t.Fatalf("copies %v", copies)
	}
	c, _ := s.Object(copies[0])
	if c.X != 120 || c.Y != 120 || c.W != 80 {
		t.Fatalf("copy at %+v", domain.Bounds(c))
	}
	if sel := s.Selection(); len(sel) != 1 || sel[0] != copies[0] {
		t.Fatalf("selection %v", sel)
	}
}

func TestGroupNeedsTwoObjects(t *testing.T) {
	s := newTestSession(t)
	drawRect(t, s, 100, 100, 80, 40)
	if _, ok := s.GroupSelection(); ok {
		t.Fatalf("grouped a single object")
	}
	drawRect(t, s, 300, 100, 80, 40)
	if s.SelectAll() != 2 {
		t.Fatalf("select all")
	}
	g, ok := s.GroupSelection()
	if !ok || len(s.CurrentPage().Members(g)) != 2 {
		t.Fatalf("group %q ok=%v", g, ok)
	}
	if s.UngroupSelection() != 1 || len(s.CurrentPage().Members(g)) != 0 {
		t.Fatalf("ungroup")
	}
}

func TestDeleteSelectionAndZOrder(t *testing.T) {
	s := newTestSession(t)
	a := drawRect(t, s, 100, 100, 80, 40)
	b := drawRect(t, s, 120, 110, 80, 40)
	if !s.SetZ(a, domain.ZFront) {
		t.Fatalf("set z")
	}
	if top, _ := s.ObjectAt(vector.P(150, 120)); top != a {
		t.Fatalf("top object %s, want %s", top, a)
	}
	s.Select(b, false)
	if s.DeleteSelection() != 1 {
		t.Fatalf("delete")
	}
	if _, ok := s.Object(b); ok {
		t.Fatalf("deleted object still present")
	}
}

func TestLockedBodyNeedsTextTool(t *testing.T) {
	s := NewSession(DefaultConfig())
	body := s.CurrentPage().Objects[0].ID
	if s.Press(vector.P(300, 300), false) || len(s.Selection()) != 0 {
		t.Fatalf("select tool picked the locked body")
	}
	s.SelectTool("text")
	if !s.Press(vector.P(300, 300), false) {
		t.Fatalf("text tool could not enter the body")
	}
	if box, ok := s.EditingBox(); !ok || box != body || s.Mode() != EditingText {
		t.Fatalf("editing %q mode %s", box, s.Mode())
	}
}
