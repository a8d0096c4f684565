/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func checkNumbering(t *testing.T, pm *PageManager) {
	t.Helper()
	for i, p := range pm.Pages() {
		if p.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, p.Number)
		}
	}
	if pm.CurrentIndex() < 0 || pm.CurrentIndex() >= pm.PageCount() {
		t.Fatalf("current index %d out of range [0,%d)", pm.CurrentIndex(), pm.PageCount())
	}
}

func TestNewDocumentHasOnePage(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	if pm.PageCount() != 1 || pm.Current().Number != 1 {
		t.Fatalf("new document: %d pages, current number %d", pm.PageCount(), pm.Current().Number)
	}
}

func TestNumberingUnderAddDeleteMove(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	pm.AddPage(-1)
	pm.AddPage(-1)
	checkNumbering(t, pm)
	if pm.PageCount() != 3 || pm.CurrentIndex() != 2 {
		t.Fatalf("after two appends: count %d current %d", pm.PageCount(), pm.CurrentIndex())
	}

	first := pm.Pages()[0]
	if !pm.DeletePage(0) {
		t.Fatalf("delete first page failed")
	}
	checkNumbering(t, pm)
	for _, p := range pm.Pages() {
		if p == first {
			t.Fatalf("deleted page still present")
		}
	}

	pm.AddPage(0)
	checkNumbering(t, pm)
	if pm.CurrentIndex() != 0 {
		t.Fatalf("inserted page not current")
	}

	moved := pm.Pages()[0]
	if !pm.MovePage(0, 2) || pm.Pages()[2] != moved || pm.CurrentIndex() != 2 {
		t.Fatalf("move did not carry page and current index")
	}
	checkNumbering(t, pm)
	if pm.MovePage(0, 3) {
		t.Fatalf("move past end accepted")
	}
}

func TestDeleteLastPageFails(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	if pm.DeletePage(0) {
		t.Fatalf("deleted the only page")
	}
	if pm.PageCount() != 1 {
		t.Fatalf("page count %d", pm.PageCount())
	}
}

func TestDeleteClampsCurrent(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	pm.AddPage(-1)
	pm.AddPage(-1)
	pm.LastPage()
	pm.DeletePage(2)
	if pm.CurrentIndex() != 1 {
		t.Fatalf("current after deleting last = %d", pm.CurrentIndex())
	}
	pm.FirstPage()
	pm.DeletePage(1)
	if pm.CurrentIndex() != 0 {
		t.Fatalf("current after deleting later page = %d", pm.CurrentIndex())
	}
	if pm.DeletePage(5) {
		t.Fatalf("out of range delete accepted")
	}
}

func TestNavigationBounds(t *testing.T) {
	pm := NewPageManager(DefaultPageSettings())
	pm.AddPage(-1)
	pm.FirstPage()
	if pm.PrevPage() {
		t.Fatalf("prev on first page succeeded")
	}
	if !pm.NextPage() || pm.NextPage() {
		t.Fatalf("next navigation wrong")
	}
	if !pm.LastPage() || !pm.FirstPage() {
		t.Fatalf("first/last must always succeed")
	}
	if pm.SetCurrentPage(-1) || pm.SetCurrentPage(2) {
		t.Fatalf("invalid index accepted")
	}
}

func TestFromPagesClampsCurrent(t *testing.T) {
	pm := FromPages(DefaultPageSettings(), []*Page{NewPage(DefaultPageSettings())}, 7)
	if pm.CurrentIndex() != 0 || pm.Current().Number != 1 {
		t.Fatalf("current %d number %d", pm.CurrentIndex(), pm.Current().Number)
	}
	pm = FromPages(DefaultPageSettings(), nil, 0)
	if pm.PageCount() != 1 {
		t.Fatalf("empty page list not replaced")
	}
}
