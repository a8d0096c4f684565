/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func threeBoxes(pm *PageManager) (a, b, c string) {
	p := pm.Current()
	a = p.Add(NewTextBox(0, 0, 100, 50, false, DefaultRun("", 0))).ID
	b = p.Add(NewTextBox(0, 100, 100, 50, false, DefaultRun("", 0))).ID
	c = p.Add(NewTextBox(0, 200, 100, 50, false, DefaultRun("", 0))).ID
	return
}

func get(pm *PageManager, id string) Object {
	o, _ := pm.Find(id)
	return *o
}

func TestLinkSymmetric(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	a, b, _ := threeBoxes(pm)
	if !Link(pm, a, b) {
		t.Fatalf("link failed")
	}
	if get(pm, a).NextLink != b || get(pm, b).PrevLink != a {
		t.Fatalf("link not symmetric")
	}
	if !Unlink(pm, a) {
		t.Fatalf("unlink reported no change")
	}
	if get(pm, a).NextLink != "" || get(pm, b).PrevLink != "" {
		t.Fatalf("unlink left a pointer behind")
	}
	if errs := CheckLinks(pm); len(errs) != 0 {
		t.Fatalf("check: %v", errs)
	}
}

func TestRelinkClearsOldPartner(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	a, b, c := threeBoxes(pm)
	Link(pm, a, b)
	Link(pm, a, c)
	if get(pm, b).PrevLink != "" {
		t.Fatalf("B still points back at A")
	}
	if get(pm, c).PrevLink != a || get(pm, a).NextLink != c {
		t.Fatalf("A->C not established")
	}
	if errs := CheckLinks(pm); len(errs) != 0 {
		t.Fatalf("check: %v", errs)
	}
}

func TestLinkRejectsSelfAndShapes(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	a, _, _ := threeBoxes(pm)
	r := pm.Current().Add(NewRect(0, 0, 10, 10)).ID
	if Link(pm, a, a) {
		t.Fatalf("self link accepted")
	}
	if Link(pm, a, r) || Link(pm, r, a) {
		t.Fatalf("shape linked")
	}
}

func TestLinksAcrossPagesAndPageDeletion(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	a, _, _ := threeBoxes(pm)
	pm.AddPage(-1)
	d := pm.Current().Add(NewTextBox(0, 0, 100, 50, false, DefaultRun("", 0))).ID
	if !Link(pm, a, d) {
		t.Fatalf("cross-page link failed")
	}
	if got := Chain(pm, d); len(got) != 2 || got[0] != a {
		t.Fatalf("chain = %v", got)
	}
	pm.DeletePage(1)
	if get(pm, a).NextLink != "" {
		t.Fatalf("link into deleted page survived")
	}
}

func TestRemoveObjectUnlinks(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	a, b, c := threeBoxes(pm)
	Link(pm, a, b)
	Link(pm, b, c)
	if !pm.RemoveObject(b) {
		t.Fatalf("remove failed")
	}
	if get(pm, a).NextLink != "" || get(pm, c).PrevLink != "" {
		t.Fatalf("partners of removed box still linked")
	}
}

func TestRepairLinks(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	a, b, _ := threeBoxes(pm)
	pm.Current().Get(a).NextLink = b
	pm.Current().Get(b).NextLink = "gone"
	if len(CheckLinks(pm)) != 2 {
		t.Fatalf("expected two problems, got %v", CheckLinks(pm))
	}
	if n := RepairLinks(pm); n != 2 {
		t.Fatalf("repaired %d", n)
	}
	if len(CheckLinks(pm)) != 0 {
		t.Fatalf("links still broken")
	}
}
