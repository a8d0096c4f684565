/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// PageManager owns the ordered page list and the current page index. After
// every structural change pages are numbered 1..N in list order and the
// current index points at an existing page.
type PageManager struct {
	Settings PageSettings
	pages    []*Page
	current  int
}

// NewPageManager starts a document with one page.
func NewPageManager(s PageSettings) *PageManager {
	pm := &PageManager{Settings: s}
	pm.pages = []*Page{NewPage(s)}
	pm.renumber()
	return pm
}

// FromPages adopts decoded pages. An empty list yields one fresh page.
func FromPages(s PageSettings, pages []*Page, current int) *PageManager {
	pm := &PageManager{Settings: s, pages: pages}
	if len(pm.pages) == 0 {
		pm.pages = []*Page{NewPage(s)}
	}
	pm.current = max(0, min(current, len(pm.pages)-1))
	pm.renumber()
	return pm
}

func (pm *PageManager) renumber() {
	for i, p := range pm.pages {
		p.Number = i + 1
	}
}

// AddPage inserts a fresh page at index, or appends when index is out of
// range, makes it current and returns its index.
func (pm *PageManager) AddPage(index int) int {
	p := NewPage(pm.Settings)
	if index < 0 || index >= len(pm.pages) {
		pm.pages = append(pm.pages, p)
		index = len(pm.pages) - 1
	} else {
		pm.pages = append(pm.pages[:index], append([]*Page{p}, pm.pages[index:]...)...)
	}
	pm.current = index
	pm.renumber()
	return index
}

// DeletePage removes the page at index. The last remaining page cannot be
// deleted. Links from surviving boxes into the deleted page are cleared.
func (pm *PageManager) DeletePage(index int) bool {
	if len(pm.pages) <= 1 || index < 0 || index >= len(pm.pages) {
		return false
	}
	doomed := pm.pages[index]
	for _, o := range doomed.Objects {
		Unlink(pm, o.ID)
	}
	pm.pages = append(pm.pages[:index], pm.pages[index+1:]...)
	if pm.current > index || pm.current >= len(pm.pages) {
		pm.current--
	}
	pm.current = max(0, min(pm.current, len(pm.pages)-1))
	pm.renumber()
	return true
}

// MovePage moves the page at from to position to. The current page follows
// the move.
func (pm *PageManager) MovePage(from, to int) bool {
	n := len(pm.pages)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	cur := pm.pages[pm.current]
	p := pm.pages[from]
	pm.pages = append(pm.pages[:from], pm.pages[from+1:]...)
	pm.pages = append(pm.pages[:to], append([]*Page{p}, pm.pages[to:]...)...)
	for i, q := range pm.pages {
		if q == cur {
			pm.current = i
		}
	}
	pm.renumber()
	return true
}

func (pm *PageManager) SetCurrentPage(index int) bool {
	if index < 0 || index >= len(pm.pages) {
		return false
	}
	pm.current = index
	return true
}

func (pm *PageManager) NextPage() bool { return pm.SetCurrentPage(pm.current + 1) }
func (pm *PageManager) PrevPage() bool { return pm.SetCurrentPage(pm.current - 1) }

func (pm *PageManager) FirstPage() bool {
	pm.current = 0
	return true
}

func (pm *PageManager) LastPage() bool {
	pm.current = len(pm.pages) - 1
	return true
}

func (pm *PageManager) PageCount() int    { return len(pm.pages) }
func (pm *PageManager) CurrentIndex() int { return pm.current }
func (pm *PageManager) Current() *Page    { return pm.pages[pm.current] }

// Pages returns the page list; callers must not reorder it.
func (pm *PageManager) Pages() []*Page { return pm.pages }

func (pm *PageManager) Page(index int) (*Page, bool) {
	if index < 0 || index >= len(pm.pages) {
		return nil, false
	}
	return pm.pages[index], true
}

// Find locates an object anywhere in the document.
func (pm *PageManager) Find(id string) (*Object, int) {
	if id == "" {
		return nil, -1
	}
	for i, p := range pm.pages {
		if o := p.Get(id); o != nil {
			return o, i
		}
	}
	return nil, -1
}

// RemoveObject unlinks and removes an object from whichever page holds it.
func (pm *PageManager) RemoveObject(id string) bool {
	_, pi := pm.Find(id)
	if pi < 0 {
		return false
	}
	Unlink(pm, id)
	_, ok := pm.pages[pi].Remove(id)
	return ok
}
