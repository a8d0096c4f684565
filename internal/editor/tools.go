/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

// Pointer gestures. Each gesture is a state of the session: Begin* enters
// it, Drag updates it from the geometry captured at the start, End* commits
// one undo step, Cancel puts back exactly what was there before.

import (
	"slices"
	"strings"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// Tool is what a press on empty page space does.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolText      Tool = "text"
	ToolTextBox   Tool = "text_box"
	ToolTitleBox  Tool = "title_box"
	ToolRect      Tool = "rect"
	ToolRoundRect Tool = "round_rect"
	ToolEllipse   Tool = "ellipse"
	ToolLine      Tool = "line"
	ToolPolygon   Tool = "polygon"
)

var toolNames = map[string]Tool{
	"select":     ToolSelect,
	"ptr":        ToolSelect,
	"pointer":    ToolSelect,
	"text":       ToolText,
	"text_box":   ToolTextBox,
	"rect_text":  ToolTextBox,
	"title_box":  ToolTitleBox,
	"title_text": ToolTitleBox,
	"rect":       ToolRect,
	"round_rect": ToolRoundRect,
	"ellipse":    ToolEllipse,
	"line":       ToolLine,
	"polygon":    ToolPolygon,
}

// ParseTool accepts tool names case-insensitively, including older aliases.
func ParseTool(s string) (Tool, bool) {
	t, ok := toolNames[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Creates reports whether the tool draws a new object.
func (t Tool) Creates() bool {
	switch t {
	case ToolTextBox, ToolTitleBox, ToolRect, ToolRoundRect, ToolEllipse, ToolLine, ToolPolygon:
		return true
	}
	return false
}

const (
	minTextBoxW  = 50.0
	minTextBoxH  = 30.0
	minTitleBoxH = 60.0
	// initialPolygon is the size of a polygon placed by a click without drag.
	initialPolygon = 50.0
)

// Mode is the gesture state of a session.
type Mode int

const (
	Idle Mode = iota
	Creating
	Resizing
	Moving
	Rotating
	AwaitingLinkTarget
	EditingText
)

var modeNames = [...]string{"idle", "creating", "resizing", "moving", "rotating", "awaiting-link-target", "editing-text"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

type gesture struct {
	mode   Mode
	tool   Tool
	start  vector.Pt
	target string
	handle int
	orig   []domain.Object
	before []byte
}

// Mode reports the gesture in progress. Text editing is reported when no
// pointer gesture is active.
func (s *Session) Mode() Mode {
	if s.g.mode != Idle {
		return s.g.mode
	}
	if s.text.box != "" {
		return EditingText
	}
	return Idle
}

func (s *Session) Tool() Tool { return s.tool }

// SelectTool switches tools and abandons any gesture or pending link.
func (s *Session) SelectTool(name string) bool {
	t, ok := ParseTool(name)
	if !ok {
		return false
	}
	s.Cancel()
	if t != ToolText {
		s.EndEditText()
	}
	s.tool = t
	return true
}

// Cancel abandons the gesture in progress and restores the model as it was
// when the gesture began. It reports whether there was anything to cancel.
func (s *Session) Cancel() bool {
	if s.g.mode == AwaitingLinkTarget {
		s.g = gesture{}
		return true
	}
	return s.abortGesture()
}

// abortGesture cancels pointer gestures but keeps a pending link, which may
// be finished on another page.
func (s *Session) abortGesture() bool {
	p := s.doc.Current()
	switch s.g.mode {
	case Creating:
		p.Remove(s.g.target)
	case Resizing, Moving, Rotating:
		for _, o := range s.g.orig {
			p.Replace(o)
		}
	default:
		return false
	}
	s.g = gesture{}
	s.guides = nil
	return true
}

// shapeFor builds the object a creation drag from a to b describes. Boxes
// never collapse below one unit so the shape stays pickable.
func (s *Session) shapeFor(t Tool, a, b vector.Pt) domain.Object {
	r := vector.RectFromPoints(a, b)
	r.W, r.H = max(r.W, 1), max(r.H, 1)
	switch t {
	case ToolRect:
		return domain.NewRect(r.X, r.Y, r.W, r.H)
	case ToolRoundRect:
		o := domain.NewRect(r.X, r.Y, r.W, r.H)
		o.CornerRadius = domain.RoundRectRadius
		return o
	case ToolEllipse:
		return domain.NewEllipse(r.X, r.Y, r.W, r.H)
	case ToolLine:
		if a == b {
			b = a.Add(vector.P(1, 1))
		}
		return domain.NewLine(a, b)
	case ToolPolygon:
		if r.W <= 1 && r.H <= 1 {
			return domain.NewPolygon(vector.Triangle(a.X, a.Y, initialPolygon))
		}
		sides := s.cfg.PolygonSides
		if sides != 0 && sides < 3 {
			sides = 3
		}
		return domain.NewPolygon(vector.PolygonInBox(vector.PolygonSpec(sides), r))
	case ToolTextBox, ToolTitleBox:
		w, h := max(r.W, minTextBoxW), max(r.H, minTextBoxH)
		if t == ToolTitleBox {
			h = max(h, minTitleBoxH)
		}
		return domain.NewTextBox(r.X, r.Y, w, h, false, domain.DefaultRun(s.cfg.Page.Font, s.cfg.Page.FontSize))
	}
	return domain.Object{}
}

// BeginCreate places a temporary object of kind at p.
func (s *Session) BeginCreate(kind Tool, p vector.Pt) bool {
	if s.g.mode != Idle || !kind.Creates() {
		return false
	}
	s.EndEditText()
	before := s.snapshot()
	page := s.doc.Current()
	page.ClearSelection()
	o := page.Add(s.shapeFor(kind, p, p))
	s.g = gesture{mode: Creating, tool: kind, start: p, target: o.ID, before: before}
	return true
}

// Drag feeds a pointer move to the gesture in progress.
func (s *Session) Drag(p vector.Pt) bool {
	switch s.g.mode {
	case Creating:
		page := s.doc.Current()
		cur := page.Get(s.g.target)
		if cur == nil {
			return false
		}
		next := s.shapeFor(s.g.tool, s.g.start, p)
		next.ID, next.Z = cur.ID, cur.Z
		return page.Replace(next)
	case Resizing:
		return s.DragResize(p)
	case Moving:
		return s.dragMove(p)
	case Rotating:
		return s.DragRotate(p)
	}
	return false
}

// EndCreate finishes the temporary object, selects it and returns to the
// select tool.
func (s *Session) EndCreate(p vector.Pt) (string, bool) {
	if s.g.mode != Creating {
		return "", false
	}
	s.Drag(p)
	id, tool, before := s.g.target, s.g.tool, s.g.before
	s.g = gesture{}
	s.doc.Current().Select(id, false)
	s.commit("create "+string(tool), before)
	s.tool = ToolSelect
	return id, true
}

// BeginResize grabs handle of a resizable object on the current page.
func (s *Session) BeginResize(id string, handle int) bool {
	if s.g.mode != Idle {
		return false
	}
	o := s.doc.Current().Get(id)
	if o == nil || !domain.Capabilities(*o).Has(domain.CanResize) {
		return false
	}
	hs := domain.Handles(*o)
	if handle < 0 || handle >= len(hs) {
		return false
	}
	s.g = gesture{mode: Resizing, target: id, handle: handle, start: hs[handle], orig: []domain.Object{domain.Clone(*o)}, before: s.snapshot()}
	return true
}

// DragResize moves the grabbed handle to p. The result is computed from the
// geometry at BeginResize, so repeated events never accumulate error. False
// means the drag was clamped to the minimum size.
func (s *Session) DragResize(p vector.Pt) bool {
	if s.g.mode != Resizing {
		return false
	}
	res, ok := domain.ApplyDrag(domain.Clone(s.g.orig[0]), s.g.handle, p.Sub(s.g.start))
	s.doc.Current().Replace(res)
	return ok
}

// EndResize commits the resize if the geometry changed.
func (s *Session) EndResize() bool {
	if s.g.mode != Resizing {
		return false
	}
	return s.finishGesture("resize")
}

// BeginMove starts dragging the movable part of the selection from p.
func (s *Session) BeginMove(p vector.Pt) bool {
	if s.g.mode != Idle {
		return false
	}
	var orig []domain.Object
	for _, o := range s.doc.Current().Objects {
		if o.Selected && domain.Capabilities(o).Has(domain.CanMove) {
			orig = append(orig, domain.Clone(o))
		}
	}
	if len(orig) == 0 {
		return false
	}
	s.g = gesture{mode: Moving, start: p, orig: orig, before: s.snapshot()}
	return true
}

func (s *Session) dragMove(p vector.Pt) bool {
	d := p.Sub(s.g.start)
	if s.cfg.Snap {
		d = s.snapDelta(d)
	}
	page := s.doc.Current()
	for _, o := range s.g.orig {
		page.Replace(domain.MoveBy(domain.Clone(o), d))
	}
	return true
}

// snapDelta adjusts a move so the selection box lands on nearby margin or
// object edges and centers.
func (s *Session) snapDelta(d vector.Pt) vector.Pt {
	var box vector.Rect
	moving := map[string]bool{}
	for i, o := range s.g.orig {
		moving[o.ID] = true
		b := domain.Node(o).Bounds()
		if i == 0 {
			box = b
		} else {
			box = box.Union(b)
		}
	}
	page := s.doc.Current()
	m := s.cfg.Page.Margins
	anchors := []vector.Anchor{vector.MarginAnchor(page.Width, page.Height, m.Left, m.Top, m.Right, m.Bottom)}
	for _, o := range page.Objects {
		if !moving[o.ID] {
			anchors = append(anchors, vector.Anchor{Rect: domain.Node(o).Bounds(), Weight: 1})
		}
	}
	moved := box.Offset(d)
	snapped, guides := vector.ComputeSmartGuides(moved, anchors, vector.SnapOptions{
		Threshold: s.cfg.SnapDistance, SnapToEdges: true, SnapToCenters: true,
	})
	s.guides = guides
	return d.Add(snapped.Min().Sub(moved.Min()))
}

// EndMove commits the move if anything moved.
func (s *Session) EndMove() bool {
	if s.g.mode != Moving {
		return false
	}
	return s.finishGesture("move")
}

// BeginRotate grabs the rotate handle of an unlocked text box.
func (s *Session) BeginRotate(id string) bool {
	if s.g.mode != Idle {
		return false
	}
	o := s.doc.Current().Get(id)
	if o == nil {
		return false
	}
	if _, ok := domain.RotateHandle(*o); !ok {
		return false
	}
	s.g = gesture{mode: Rotating, target: id, orig: []domain.Object{domain.Clone(*o)}, before: s.snapshot()}
	return true
}

// DragRotate points the box at p; the angle is absolute on every event.
func (s *Session) DragRotate(p vector.Pt) bool {
	if s.g.mode != Rotating {
		return false
	}
	res, ok := domain.RotateTo(domain.Clone(s.g.orig[0]), p)
	if ok {
		s.doc.Current().Replace(res)
	}
	return ok
}

func (s *Session) EndRotate() bool {
	if s.g.mode != Rotating {
		return false
	}
	return s.finishGesture("rotate")
}

// finishGesture records one undo step when any touched object changed.
func (s *Session) finishGesture(label string) bool {
	page := s.doc.Current()
	changed := false
	for _, o := range s.g.orig {
		if cur := page.Get(o.ID); cur != nil && !sameGeometry(*cur, o) {
			changed = true
		}
	}
	before := s.g.before
	s.g = gesture{}
	s.guides = nil
	if changed {
		s.commit(label, before)
	}
	return changed
}

func sameGeometry(a, b domain.Object) bool {
	return a.X == b.X && a.Y == b.Y && a.W == b.W && a.H == b.H && a.Rotation == b.Rotation &&
		a.A == b.A && a.B == b.B && slices.Equal(a.Vertices, b.Vertices)
}

// Press routes a pointer press by tool and by what lies under p: a pending
// link takes the target, a handle of a selected object starts its gesture,
// an object is selected and starts a move, empty space clears the selection.
func (s *Session) Press(p vector.Pt, additive bool) bool {
	page := s.doc.Current()
	if s.g.mode == AwaitingLinkTarget {
		if id, ok := page.ObjectAt(p, true); ok {
			return s.FinishLink(id)
		}
		s.CancelLink()
		return false
	}
	if s.g.mode != Idle {
		return false
	}
	switch {
	case s.tool.Creates():
		return s.BeginCreate(s.tool, p)
	case s.tool == ToolText:
		if id, ok := page.ObjectAt(p, true); ok {
			if o := page.Get(id); o.Kind == domain.KindText {
				return s.BeginEditText(id, domain.RuneLen(o.Runs))
			}
		}
		s.EndEditText()
		page.ClearSelection()
		return false
	}
	objs := page.ZOrdered()
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		switch role, idx := domain.HandleUnder(o, p); role {
		case domain.RoleResize:
			return s.BeginResize(o.ID, idx)
		case domain.RoleLink:
			return s.StartLink(o.ID)
		case domain.RoleRotate:
			return s.BeginRotate(o.ID)
		}
	}
	id, ok := page.ObjectAt(p, false)
	if !ok {
		s.EndEditText()
		page.ClearSelection()
		return false
	}
	if o := page.Get(id); additive || !o.Selected {
		page.Select(id, additive)
	}
	return s.BeginMove(p)
}

// Release ends the pointer gesture at p.
func (s *Session) Release(p vector.Pt) bool {
	switch s.g.mode {
	case Creating:
		_, ok := s.EndCreate(p)
		return ok
	case Resizing:
		s.DragResize(p)
		return s.EndResize()
	case Moving:
		s.dragMove(p)
		return s.EndMove()
	case Rotating:
		s.DragRotate(p)
		return s.EndRotate()
	}
	return false
}
