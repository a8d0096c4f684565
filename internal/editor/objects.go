/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/imagefill"
	"pagecomposer/internal/vector"
)

// Selection is not document state: selecting records no undo step.

func (s *Session) Select(id string, additive bool) bool {
	return s.doc.Current().Select(id, additive)
}

func (s *Session) SelectAll() int { return s.doc.Current().SelectAll() }

func (s *Session) ClearSelection() { s.doc.Current().ClearSelection() }

func (s *Session) Selection() []string { return s.doc.Current().Selected() }

// ObjectAt picks the topmost object under p. The locked body text is only
// pickable with the text tool.
func (s *Session) ObjectAt(p vector.Pt) (string, bool) {
	return s.doc.Current().ObjectAt(p, s.tool == ToolText)
}

// Object looks up an object anywhere in the document.
func (s *Session) Object(id string) (domain.Object, bool) {
	o, _ := s.doc.Find(id)
	if o == nil {
		return domain.Object{}, false
	}
	return domain.Clone(*o), true
}

// DeleteSelection removes the selected objects, unlinking text boxes first.
func (s *Session) DeleteSelection() int {
	ids := s.Selection()
	if len(ids) == 0 {
		return 0
	}
	s.mutate("delete", func() bool {
		for _, id := range ids {
			if id == s.text.box {
				s.EndEditText()
			}
			s.doc.RemoveObject(id)
		}
		return true
	})
	return len(ids)
}

// DuplicateSelection copies the selection with fresh identities, offset by
// the configured distance. Copies keep their grouping among themselves but
// carry no story links. The copies become the selection.
func (s *Session) DuplicateSelection() []string {
	page := s.doc.Current()
	var src []domain.Object
	for _, o := range page.Objects {
		if o.Selected {
			src = append(src, domain.Clone(o))
		}
	}
	if len(src) == 0 {
		return nil
	}
	var ids []string
	s.mutate("duplicate", func() bool {
		page.ClearSelection()
		groups := map[string]string{}
		off := vector.P(s.cfg.DuplicateOffset, s.cfg.DuplicateOffset)
		for _, o := range src {
			c := domain.MoveBy(o, off)
			c.ID = domain.NewID()
			c.NextLink, c.PrevLink = "", ""
			if c.Group != "" {
				if _, ok := groups[c.Group]; !ok {
					groups[c.Group] = domain.NewID()
				}
				c.Group = groups[c.Group]
			}
			c.Selected = true
			ids = append(ids, page.Add(c).ID)
		}
		return true
	})
	return ids
}

// GroupSelection groups two or more selected objects.
func (s *Session) GroupSelection() (string, bool) {
	ids := s.Selection()
	if len(ids) < 2 {
		return "", false
	}
	var g string
	ok := s.mutate("group", func() bool {
		var ok bool
		g, ok = s.doc.Current().GroupObjects(ids)
		return ok
	})
	return g, ok
}

// Ungroup dissolves group on the current page.
func (s *Session) Ungroup(group string) bool {
	page := s.doc.Current()
	if len(page.Members(group)) == 0 {
		return false
	}
	return s.mutate("ungroup", func() bool { return page.Ungroup(group) > 0 })
}

// UngroupSelection dissolves every group touched by the selection.
func (s *Session) UngroupSelection() int {
	page := s.doc.Current()
	groups := map[string]bool{}
	for _, o := range page.Objects {
		if o.Selected && o.Group != "" {
			groups[o.Group] = true
		}
	}
	if len(groups) == 0 {
		return 0
	}
	s.mutate("ungroup", func() bool {
		for g := range groups {
			page.Ungroup(g)
		}
		return true
	})
	return len(groups)
}

// SetZ restacks one object on the current page.
func (s *Session) SetZ(id string, op domain.ZOp) bool {
	page := s.doc.Current()
	if page.Get(id) == nil {
		return false
	}
	if _, ok := domain.ParseZOp(string(op)); !ok {
		return false
	}
	return s.mutate("arrange "+string(op), func() bool { return page.SetZ(id, op) })
}

// SetZSelection restacks every selected object in one step.
func (s *Session) SetZSelection(op domain.ZOp) bool {
	ids := s.Selection()
	if _, ok := domain.ParseZOp(string(op)); !ok || len(ids) == 0 {
		return false
	}
	page := s.doc.Current()
	return s.mutate("arrange "+string(op), func() bool {
		for _, id := range ids {
			page.SetZ(id, op)
		}
		return true
	})
}

// updateSelected applies fn to each selected object as one undo step. fn
// reports whether it changed the object.
func (s *Session) updateSelected(label string, fn func(o *domain.Object) bool) bool {
	page := s.doc.Current()
	before := s.snapshot()
	changed := false
	for i := range page.Objects {
		if page.Objects[i].Selected && fn(&page.Objects[i]) {
			changed = true
		}
	}
	if changed {
		s.commit(label, before)
	}
	return changed
}

func (s *Session) SetRotation(deg float64) bool {
	deg = vector.NormalizeDegrees(deg)
	return s.updateSelected("rotate", func(o *domain.Object) bool {
		// line handles sit on the endpoints, which do not rotate
		if o.Kind == domain.KindLine || o.Rotation == deg {
			return false
		}
		*o = domain.SetRotation(*o, deg)
		return true
	})
}

// SetShapeSize resizes box kinds from their top-left corner; sizes under
// the minimum are refused.
func (s *Session) SetShapeSize(w, h float64) bool {
	return s.updateSelected("resize", func(o *domain.Object) bool {
		if o.W == w && o.H == h {
			return false
		}
		res, ok := domain.SetSize(*o, w, h)
		if ok {
			*o = res
		}
		return ok
	})
}

func (s *Session) SetStrokeWidth(w float64) bool {
	if w < 0 {
		return false
	}
	return s.updateSelected("stroke width", func(o *domain.Object) bool {
		if o.Stroke.Width == w {
			return false
		}
		o.Stroke.Width = w
		return true
	})
}

func (s *Session) SetStrokeColor(c vector.Color) bool {
	return s.updateSelected("stroke color", func(o *domain.Object) bool {
		if o.Stroke.Color == c {
			return false
		}
		o.Stroke.Color = c
		return true
	})
}

func (s *Session) SetStrokeStyle(style vector.LineStyle) bool {
	style = vector.ParseLineStyle(string(style))
	return s.updateSelected("stroke style", func(o *domain.Object) bool {
		if o.Stroke.Style == style {
			return false
		}
		o.Stroke.Style = style
		return true
	})
}

// SetFillColor paints the inside of closed shapes and text box backgrounds.
func (s *Session) SetFillColor(c vector.Color) bool {
	return s.updateSelected("fill color", func(o *domain.Object) bool {
		if o.Kind == domain.KindLine || o.Fill.Color == c {
			return false
		}
		o.Fill.Color = c
		return true
	})
}

func (s *Session) SetCornerRadius(r float64) bool {
	if r < 0 {
		return false
	}
	return s.updateSelected("corner radius", func(o *domain.Object) bool {
		if o.Kind != domain.KindRect || o.CornerRadius == r {
			return false
		}
		o.CornerRadius = r
		return true
	})
}

func (s *Session) SetArrows(start, end bool) bool {
	return s.updateSelected("arrows", func(o *domain.Object) bool {
		if !domain.Capabilities(*o).Has(domain.CanArrow) || (o.ArrowStart == start && o.ArrowEnd == end) {
			return false
		}
		o.ArrowStart, o.ArrowEnd = start, end
		return true
	})
}

// SetImage fills the selected shapes with the image at ref. A reference
// that does not resolve leaves the shapes with no image and returns false.
// Unknown aspect modes are stored as fit.
func (s *Session) SetImage(ref string, aspect domain.AspectMode) bool {
	aspect = domain.ParseAspect(string(aspect))
	attached := false
	s.updateSelected("image", func(o *domain.Object) bool {
		if !domain.Capabilities(*o).Has(domain.CanFillImage) {
			return false
		}
		had := o.Fill.Image != nil
		res, err := imagefill.Attach(*o, ref, aspect, s.cfg.Images)
		*o = res
		if err != nil {
			s.log.Warn("image reference did not resolve", slog.String("ref", ref), slog.String("err", err.Error()))
			return had
		}
		attached = true
		return true
	})
	return attached
}

func (s *Session) ClearImage() bool {
	return s.updateSelected("clear image", func(o *domain.Object) bool {
		if o.Fill.Image == nil {
			return false
		}
		o.Fill.Image = nil
		return true
	})
}

// SetAspect changes the aspect mode of the selected image fills. Unknown
// modes are stored as fit.
func (s *Session) SetAspect(a domain.AspectMode) bool {
	a = domain.ParseAspect(string(a))
	return s.updateSelected("image aspect", func(o *domain.Object) bool {
		if o.Fill.Image == nil || o.Fill.Image.Aspect == a {
			return false
		}
		img := *o.Fill.Image
		img.Aspect = a
		o.Fill.Image = &img
		return true
	})
}

// SetLocked locks or unlocks a text box. A locked box drops out of the
// selection since it can no longer be moved or resized.
func (s *Session) SetLocked(id string, locked bool) bool {
	page := s.doc.Current()
	o := page.Get(id)
	if o == nil || o.Kind != domain.KindText || o.Locked == locked {
		return false
	}
	return s.mutate("lock", func() bool {
		o := page.Get(id)
		o.Locked = locked
		if locked {
			o.Selected = false
		}
		return true
	})
}
