/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "fmt"

// Story links are stored as partner IDs on both ends and resolved through the
// PageManager, so a chain may span pages. a.NextLink == b holds exactly when
// b.PrevLink == a.

func textBox(pm *PageManager, id string) *Object {
	o, _ := pm.Find(id)
	if o == nil || o.Kind != KindText {
		return nil
	}
	return o
}

// Link makes dst follow src. Old partners on either end lose their
// reciprocal pointer.
func Link(pm *PageManager, src, dst string) bool {
	if src == dst {
		return false
	}
	s, d := textBox(pm, src), textBox(pm, dst)
	if s == nil || d == nil {
		return false
	}
	if old := textBox(pm, s.NextLink); old != nil && old.PrevLink == src {
		old.PrevLink = ""
	}
	if old := textBox(pm, d.PrevLink); old != nil && old.NextLink == dst {
		old.NextLink = ""
	}
	s.NextLink = dst
	d.PrevLink = src
	return true
}

// Unlink detaches id from both neighbors.
func Unlink(pm *PageManager, id string) bool {
	o, _ := pm.Find(id)
	if o == nil {
		return false
	}
	changed := o.NextLink != "" || o.PrevLink != ""
	if n := textBox(pm, o.NextLink); n != nil && n.PrevLink == id {
		n.PrevLink = ""
	}
	if p := textBox(pm, o.PrevLink); p != nil && p.NextLink == id {
		p.NextLink = ""
	}
	o.NextLink, o.PrevLink = "", ""
	return changed
}

// Chain returns the story that id belongs to, from its head.
func Chain(pm *PageManager, id string) []string {
	o := textBox(pm, id)
	if o == nil {
		return nil
	}
	seen := map[string]bool{id: true}
	head := o
	for head.PrevLink != "" {
		p := textBox(pm, head.PrevLink)
		if p == nil || seen[p.ID] {
			break
		}
		seen[p.ID] = true
		head = p
	}
	var out []string
	seen = map[string]bool{}
	for cur := head; cur != nil && !seen[cur.ID]; cur = textBox(pm, cur.NextLink) {
		seen[cur.ID] = true
		out = append(out, cur.ID)
	}
	return out
}

// CheckLinks lists every asymmetric or dangling link.
func CheckLinks(pm *PageManager) []error {
	var errs []error
	for _, p := range pm.pages {
		for _, o := range p.Objects {
			if o.NextLink != "" {
				if n := textBox(pm, o.NextLink); n == nil || n.PrevLink != o.ID {
					errs = append(errs, fmt.Errorf("object %s: next link %s not reciprocated", o.ID, o.NextLink))
				}
			}
			if o.PrevLink != "" {
				if q := textBox(pm, o.PrevLink); q == nil || q.NextLink != o.ID {
					errs = append(errs, fmt.Errorf("object %s: prev link %s not reciprocated", o.ID, o.PrevLink))
				}
			}
		}
	}
	return errs
}

// RepairLinks drops every pointer that is not reciprocated and returns how
// many were cleared. Links on non-text objects are always dropped.
func RepairLinks(pm *PageManager) int {
	n := 0
	for _, p := range pm.pages {
		for i := range p.Objects {
			o := &p.Objects[i]
			if o.NextLink != "" {
				if t := textBox(pm, o.NextLink); o.Kind != KindText || t == nil || t.PrevLink != o.ID || t.ID == o.ID {
					o.NextLink = ""
					n++
				}
			}
			if o.PrevLink != "" {
				if t := textBox(pm, o.PrevLink); o.Kind != KindText || t == nil || t.NextLink != o.ID || t.ID == o.ID {
					o.PrevLink = ""
					n++
				}
			}
		}
	}
	return n
}
