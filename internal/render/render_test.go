/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"testing"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/textlayout"
	"pagecomposer/internal/vector"
)

func TestDescribePaintOrderAndHandles(t *testing.T) {
	p := domain.NewPage(domain.DefaultPageSettings())
	r := p.Add(domain.NewRect(100, 100, 200, 100)).ID
	e := p.Add(domain.NewEllipse(0, 0, 10, 10)).ID
	p.SetZ(e, domain.ZBack)
	p.Select(r, false)

	s := Describe(p, Options{Provider: textlayout.BasicProvider{}, Handles: true})
	if len(s.Items) != 3 || s.Width != 794 || s.Background != vector.White {
		t.Fatalf("scene: %+v", s)
	}
	if s.Items[0].ID != e || s.Items[2].ID != r {
		t.Fatalf("paint order wrong: %s %s %s", s.Items[0].ID, s.Items[1].ID, s.Items[2].ID)
	}
	body := s.Items[1]
	if body.Kind != domain.KindText || !body.Locked || body.Handles != nil {
		t.Fatalf("body box: %+v", body)
	}
	if len(s.Items[2].Handles) != 8 || s.Items[2].LinkHandle != nil {
		t.Fatalf("rect handles: %+v", s.Items[2].Handles)
	}
	if s.Items[0].Handles != nil {
		t.Fatalf("unselected object got handles")
	}
}

func TestDescribeImagePlacement(t *testing.T) {
	p := &domain.Page{Width: 100, Height: 100}
	o := domain.NewRect(0, 0, 200, 100)
	o.Fill.Image = &domain.ImageFill{Ref: "x.png", Aspect: domain.AspectFit, Width: 50, Height: 50}
	p.Add(o)
	it := Describe(p, Options{Provider: textlayout.BasicProvider{}}).Items[0]
	if it.Image == nil || it.Image.Rect != vector.R(50, 0, 100, 100) {
		t.Fatalf("image: %+v", it.Image)
	}
}

func TestDescribeTextLines(t *testing.T) {
	p := &domain.Page{Width: 500, Height: 500}
	tb := domain.NewTextBox(10, 20, 58, 30, false, domain.DefaultRun("", 0))
	tb.Runs = domain.InsertText(tb.Runs, 0, "Hello world", tb.Runs[0])
	tb.Runs = domain.ApplyFormat(tb.Runs, 6, 11, func(r *domain.TextRun) { r.Underline = true })
	p.Add(tb)
	it := Describe(p, Options{Provider: textlayout.BasicProvider{}}).Items[0]
	if len(it.Text) != 2 {
		t.Fatalf("lines: %+v", it.Text)
	}
	if it.Text[0].X != 14 || it.Text[0].Baseline != 35 {
		t.Fatalf("first line at %v,%v", it.Text[0].X, it.Text[0].Baseline)
	}
	if sp := it.Text[1].Spans[0]; sp.Text != "world" || !sp.Underline {
		t.Fatalf("second line span: %+v", sp)
	}
	if !it.Overflow {
		t.Fatalf("two 13px lines should overflow a 22px inner box")
	}
}

func TestArrowHeads(t *testing.T) {
	p := &domain.Page{Width: 100, Height: 100}
	l := domain.NewLine(vector.P(0, 0), vector.P(100, 0))
	l.ArrowEnd = true
	p.Add(l)
	it := Describe(p, Options{Provider: textlayout.BasicProvider{}}).Items[0]
	if len(it.Arrows) != 1 {
		t.Fatalf("arrows = %d", len(it.Arrows))
	}
	head := it.Arrows[0]
	if head[0] != vector.P(100, 0) || head[1] != vector.P(92, 4) || head[2] != vector.P(92, -4) {
		t.Fatalf("arrow head: %+v", head)
	}
}
