/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is 8-bit RGBA. Its text form is "#rrggbb" or "#aarrggbb".
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// Hex formats opaque colors as #rrggbb and the rest as #aarrggbb.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

// ParseColor accepts #rgb, #rrggbb and #aarrggbb.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	switch len(h) {
	case 6:
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	case 8:
		return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return Color{}, fmt.Errorf("parse color %q: unexpected length", s)
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// LineStyle is the dash pattern of a stroke.
type LineStyle string

const (
	Solid  LineStyle = "solid"
	Dashed LineStyle = "dashed"
	Dotted LineStyle = "dotted"
	NoLine LineStyle = "none"
)

// Dashes returns on/off lengths scaled by width; nil means a continuous line.
func (s LineStyle) Dashes(width float64) []float64 {
	if width <= 0 {
		width = 1
	}
	switch s {
	case Dashed:
		return []float64{4 * width, 2 * width}
	case Dotted:
		return []float64{width, 2 * width}
	}
	return nil
}

// ParseLineStyle maps free-form names to a style; unknown names are solid.
func ParseLineStyle(s string) LineStyle {
	switch LineStyle(strings.ToLower(strings.TrimSpace(s))) {
	case Dashed:
		return Dashed
	case Dotted:
		return Dotted
	case NoLine:
		return NoLine
	}
	return Solid
}
