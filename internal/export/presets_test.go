/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatchExport_WebPreset(t *testing.T) {
	root := t.TempDir()
	files, err := BatchExport(sampleDocument(t), BatchOptions{Preset: PresetWeb, OutDir: root, Base: "story"})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	checks := []string{
		filepath.Join(root, "png", "story-page-1.png"),
		filepath.Join(root, "png", "story-page-2.png"),
		filepath.Join(root, "svg", "story-page-1.svg"),
		filepath.Join(root, "svg", "story-page-2.svg"),
	}
	if len(files) != len(checks) {
		t.Fatalf("wrote %v", files)
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_PrintPresetSinglePage(t *testing.T) {
	root := t.TempDir()
	files, err := BatchExport(sampleDocument(t), BatchOptions{Preset: PresetPrint, OutDir: root, Pages: []int{1}, DPIOverride: 48})
	if err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	want := []string{
		filepath.Join(root, "pdf", "document.pdf"),
		filepath.Join(root, "png", "document-page-2.png"),
	}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("wrote %v, want %v", files, want)
	}
}

func TestParsePresetAndFormat(t *testing.T) {
	if _, err := ParsePreset("poster"); err == nil {
		t.Fatalf("unknown preset accepted")
	}
	if f, err := ParseFormat(".SVG"); err != nil || f != FormatSVG {
		t.Fatalf("format %q err %v", f, err)
	}
	if _, err := ParseFormat("tiff"); err == nil {
		t.Fatalf("unknown format accepted")
	}
}
