/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#000000":   Black,
		"#fff":      White,
		"#80ff0000": {R: 255, A: 128},
		" #00FF00 ": {G: 255, A: 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %+v, %v; want %+v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12345", "#zzzzzz"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if h := (Color{R: 255, A: 128}).Hex(); h != "#80ff0000" {
		t.Fatalf("unexpected hex %q", h)
	}
}

func TestLineStyle(t *testing.T) {
	if ParseLineStyle("Dashed") != Dashed || ParseLineStyle("weird") != Solid {
		t.Fatalf("unexpected style mapping")
	}
	if d := Dashed.Dashes(2); len(d) != 2 || d[0] != 8 {
		t.Fatalf("unexpected dashes %v", d)
	}
	if Solid.Dashes(1) != nil {
		t.Fatalf("solid lines have no dash pattern")
	}
}
