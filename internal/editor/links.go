/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "pagecomposer/internal/domain"

// StartLink waits for the box that should follow id. The pending link
// survives page switches, so stories can continue on later pages.
func (s *Session) StartLink(id string) bool {
	if s.g.mode != Idle {
		return false
	}
	if o, _ := s.doc.Find(id); o == nil || o.Kind != domain.KindText {
		return false
	}
	s.g = gesture{mode: AwaitingLinkTarget, target: id}
	return true
}

// FinishLink links the pending source to id and returns to idle whether or
// not the target was acceptable.
func (s *Session) FinishLink(id string) bool {
	if s.g.mode != AwaitingLinkTarget {
		return false
	}
	src := s.g.target
	s.g = gesture{}
	if id == src {
		return false
	}
	return s.mutate("link", func() bool { return domain.Link(s.doc, src, id) })
}

func (s *Session) CancelLink() bool {
	if s.g.mode != AwaitingLinkTarget {
		return false
	}
	s.g = gesture{}
	return true
}

// LinkSource is the box a pending link starts from.
func (s *Session) LinkSource() (string, bool) {
	if s.g.mode != AwaitingLinkTarget {
		return "", false
	}
	return s.g.target, true
}

// Unlink detaches id from both story neighbors.
func (s *Session) Unlink(id string) bool {
	return s.mutate("unlink", func() bool { return domain.Unlink(s.doc, id) })
}

// Story lists the chain id belongs to, head first.
func (s *Session) Story(id string) []string { return domain.Chain(s.doc, id) }
