/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pagecomposer/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "cache", IndexFileName))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// documentWith builds a document with one text box per entry; each entry is
// the list of texts of one page.
func documentWith(pages ...[]string) *domain.PageManager {
	s := domain.DefaultPageSettings()
	s.BodyText = false
	pm := domain.NewPageManager(s)
	for i, texts := range pages {
		if i > 0 {
			pm.AddPage(-1)
		}
		p := pm.Current()
		for j, txt := range texts {
			tb := p.Add(domain.NewTextBox(60, 60+float64(j)*120, 300, 100, false, domain.DefaultRun("", 0)))
			tb.Runs = domain.InsertText(tb.Runs, 0, txt, domain.DefaultRun("", 0))
		}
	}
	pm.SetCurrentPage(0)
	return pm
}

func plainTexts(pm *domain.PageManager) []string {
	var out []string
	for _, p := range pm.Pages() {
		for _, o := range p.ZOrdered() {
			if o.Kind == domain.KindText {
				out = append(out, domain.PlainText(o.Runs))
			}
		}
	}
	return out
}
