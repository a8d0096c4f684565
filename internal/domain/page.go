/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"sort"
	"strings"

	"pagecomposer/internal/vector"
)

// Margins are the distances of the text area from the page edges.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// PageSettings describe how new pages are created.
type PageSettings struct {
	Width, Height float64
	Margins       Margins
	Background    vector.Color
	Font          string
	FontSize      float64
	// BodyText adds a locked text box covering the text area.
	BodyText bool
}

// A4 at 96 dpi with 50 unit margins.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Width: 794, Height: 1123,
		Margins:    Margins{Left: 50, Top: 50, Right: 50, Bottom: 50},
		Background: vector.White,
		Font:       DefaultFont,
		FontSize:   DefaultFontSize,
		BodyText:   true,
	}
}

// Page sizes at 96 dpi, portrait.
var pageSizes = map[string][2]float64{
	"a4":     {794, 1123},
	"a5":     {559, 794},
	"letter": {816, 1056},
	"legal":  {816, 1344},
}

// PageSizeNames lists the size presets accepted by WithPageSize.
func PageSizeNames() []string { return []string{"A4", "A5", "Letter", "Legal"} }

// WithPageSize returns s resized to the named preset (case-insensitive);
// landscape swaps width and height. Unknown names leave s unchanged.
func (s PageSettings) WithPageSize(name string, landscape bool) (PageSettings, bool) {
	wh, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return s, false
	}
	s.Width, s.Height = wh[0], wh[1]
	if landscape {
		s.Width, s.Height = s.Height, s.Width
	}
	return s, true
}

// TextArea is the page rectangle inside the margins.
func (s PageSettings) TextArea() vector.Rect {
	return vector.R(s.Margins.Left, s.Margins.Top,
		s.Width-s.Margins.Left-s.Margins.Right, s.Height-s.Margins.Top-s.Margins.Bottom)
}

// Page is an ordered container of objects. Objects are stored by value; the
// pointers returned by Get stay valid only until the next Add or Remove.
type Page struct {
	Width, Height float64
	Number        int
	Background    vector.Color
	Objects       []Object
}

// NewPage creates a page from settings, with its body text box when asked.
func NewPage(s PageSettings) *Page {
	p := &Page{Width: s.Width, Height: s.Height, Background: s.Background}
	if s.BodyText {
		a := s.TextArea()
		p.Add(NewTextBox(a.X, a.Y, a.W, a.H, true, DefaultRun(s.Font, s.FontSize)))
	}
	return p
}

// Clone deep-copies the page.
func (p *Page) Clone() *Page {
	c := *p
	c.Objects = make([]Object, len(p.Objects))
	for i, o := range p.Objects {
		c.Objects[i] = Clone(o)
	}
	return &c
}

func (p *Page) Index(id string) int {
	for i := range p.Objects {
		if p.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Page) Get(id string) *Object {
	if i := p.Index(id); i >= 0 {
		return &p.Objects[i]
	}
	return nil
}

// Add appends o on top of every other object and returns a pointer to the
// stored copy.
func (p *Page) Add(o Object) *Object {
	if o.ID == "" {
		o.ID = NewID()
	}
	if len(p.Objects) > 0 {
		o.Z = p.maxZ() + 1
	} else {
		o.Z = 0
	}
	p.Objects = append(p.Objects, o)
	return &p.Objects[len(p.Objects)-1]
}

// Insert stores o without touching its Z; decoding uses it to keep the
// persisted order.
func (p *Page) Insert(o Object) {
	p.Objects = append(p.Objects, o)
}

// Remove drops the object from the page. Story links are the document's
// concern; see PageManager.RemoveObject.
func (p *Page) Remove(id string) (Object, bool) {
	i := p.Index(id)
	if i < 0 {
		return Object{}, false
	}
	o := p.Objects[i]
	p.Objects = append(p.Objects[:i], p.Objects[i+1:]...)
	return o, true
}

// Replace overwrites the stored object with the same ID.
func (p *Page) Replace(o Object) bool {
	if i := p.Index(o.ID); i >= 0 {
		p.Objects[i] = o
		return true
	}
	return false
}

func (p *Page) maxZ() int {
	m := 0
	for _, o := range p.Objects {
		m = max(m, o.Z)
	}
	return m
}

func (p *Page) minZ() int {
	m := 0
	for _, o := range p.Objects {
		m = min(m, o.Z)
	}
	return m
}

// ZOrdered returns the objects in paint order: ascending Z, ties in
// insertion order.
func (p *Page) ZOrdered() []Object {
	out := append([]Object(nil), p.Objects...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// ObjectAt returns the topmost object under pt. Locked text boxes are
// skipped unless includeLocked is set, so the body text never swallows
// clicks meant for shapes above the page.
func (p *Page) ObjectAt(pt vector.Pt, includeLocked bool) (string, bool) {
	objs := p.ZOrdered()
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		if o.Kind == KindText && o.Locked && !includeLocked {
			continue
		}
		if Node(o).Hit(pt) {
			return o.ID, true
		}
	}
	return "", false
}

// Selected returns the IDs of selected objects in storage order.
func (p *Page) Selected() []string {
	var ids []string
	for _, o := range p.Objects {
		if o.Selected {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func (p *Page) ClearSelection() {
	for i := range p.Objects {
		p.Objects[i].Selected = false
	}
}

// Select marks id, and every member of its group, as selected. Without
// additive the previous selection is cleared first. Objects that cannot be
// selected are refused.
func (p *Page) Select(id string, additive bool) bool {
	o := p.Get(id)
	if o == nil || !Capabilities(*o).Has(CanSelect) {
		return false
	}
	if !additive {
		p.ClearSelection()
	}
	group := o.Group
	for i := range p.Objects {
		if p.Objects[i].ID == id || (group != "" && p.Objects[i].Group == group) {
			p.Objects[i].Selected = true
		}
	}
	return true
}

// SelectAll selects every selectable object.
func (p *Page) SelectAll() int {
	n := 0
	for i := range p.Objects {
		if Capabilities(p.Objects[i]).Has(CanSelect) {
			p.Objects[i].Selected = true
			n++
		}
	}
	return n
}

// ZOp is a stacking order change.
type ZOp string

const (
	ZFront    ZOp = "front"
	ZBack     ZOp = "back"
	ZForward  ZOp = "forward"
	ZBackward ZOp = "backward"
)

func ParseZOp(s string) (ZOp, bool) {
	switch op := ZOp(strings.ToLower(strings.TrimSpace(s))); op {
	case ZFront, ZBack, ZForward, ZBackward:
		return op, true
	}
	return "", false
}

// SetZ restacks one object: front and back jump past the current extremes
// (which start at 0), forward and backward step by one.
func (p *Page) SetZ(id string, op ZOp) bool {
	o := p.Get(id)
	if o == nil {
		return false
	}
	switch op {
	case ZFront:
		o.Z = p.maxZ() + 1
	case ZBack:
		o.Z = p.minZ() - 1
	case ZForward:
		o.Z++
	case ZBackward:
		o.Z--
	default:
		return false
	}
	return true
}

// GroupObjects puts two or more objects in a fresh group and returns its ID.
func (p *Page) GroupObjects(ids []string) (string, bool) {
	var idx []int
	for _, id := range ids {
		if i := p.Index(id); i >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return "", false
	}
	g := NewID()
	for _, i := range idx {
		p.Objects[i].Group = g
	}
	return g, true
}

// Ungroup dissolves a group and reports how many members it had.
func (p *Page) Ungroup(group string) int {
	if group == "" {
		return 0
	}
	n := 0
	for i := range p.Objects {
		if p.Objects[i].Group == group {
			p.Objects[i].Group = ""
			n++
		}
	}
	return n
}

// Members lists the IDs in a group.
func (p *Page) Members(group string) []string {
	var ids []string
	for _, o := range p.Objects {
		if group != "" && o.Group == group {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// SelectionBounds is the union of the selected objects' bounds.
func (p *Page) SelectionBounds() (vector.Rect, bool) {
	var r vector.Rect
	found := false
	for _, o := range p.Objects {
		if !o.Selected {
			continue
		}
		b := Node(o).Bounds()
		if !found {
			r, found = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, found
}
