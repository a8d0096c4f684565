/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/render"
	"pagecomposer/internal/vector"
)

// SVG writes one scene. Image fills reference their source by ref.
func SVG(w io.Writer, sc render.Scene) error {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" %s/>\n", sc.Width, sc.Height, paint("fill", sc.Background))

	for i, it := range sc.Items {
		d := svgPath(it.Outline)
		if it.Fill.A > 0 && it.Kind != domain.KindLine {
			wf("  <path d=\"%s\" %s/>\n", d, paint("fill", it.Fill))
		}
		if img := it.Image; img != nil {
			c := it.Bounds.Center()
			wf("  <clipPath id=\"clip-%d\"><path d=\"%s\"/></clipPath>\n", i, d)
			wf("  <g clip-path=\"url(#clip-%d)\"><image xlink:href=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" transform=\"rotate(%g %g %g)\"/></g>\n",
				i, escText(img.Ref), img.Rect.X, img.Rect.Y, img.Rect.W, img.Rect.H, it.Rotation, c.X, c.Y)
		}
		if len(it.Text) > 0 {
			c := it.Bounds.Center()
			b := it.Bounds
			wf("  <clipPath id=\"text-%d\"><rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"/></clipPath>\n", i, b.X, b.Y, b.W, b.H)
			wf("  <g transform=\"rotate(%g %g %g)\"><g clip-path=\"url(#text-%d)\">\n", it.Rotation, c.X, c.Y, i)
			for _, ln := range it.Text {
				for _, sp := range ln.Spans {
					wf("    <text x=\"%g\" y=\"%g\" xml:space=\"preserve\" font-family=\"%s\" font-size=\"%g\"%s %s>%s</text>\n",
						sp.X, ln.Baseline, escText(sp.Font), sp.Size, textStyle(sp), paint("fill", sp.Color), escText(sp.Text))
				}
			}
			wf("  </g></g>\n")
		}
		if stroked(it.Stroke) {
			dash := ""
			if it.Dashes != nil {
				parts := make([]string, len(it.Dashes))
				for j, v := range it.Dashes {
					parts[j] = strconv.FormatFloat(v, 'g', -1, 64)
				}
				dash = fmt.Sprintf(" stroke-dasharray=\"%s\"", strings.Join(parts, " "))
			}
			wf("  <path d=\"%s\" fill=\"none\" %s stroke-width=\"%g\"%s/>\n", d, paint("stroke", it.Stroke.Color), it.Stroke.Width, dash)
		}
		for _, head := range it.Arrows {
			wf("  <path d=\"%s\" %s/>\n", svgPath(vector.PolygonPath(head)), paint("fill", it.Stroke.Color))
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// WriteSVGPages writes one SVG per selected page into dir.
func WriteSVGPages(dir, base string, pm *domain.PageManager, opt Options) ([]string, error) {
	ss, err := scenes(pm, opt)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, sc := range ss {
		var buf bytes.Buffer
		if err := SVG(&buf, sc); err != nil {
			return written, err
		}
		name := pageFileName(dir, base, sc.Number, FormatSVG)
		f, err := createFile(name)
		if err != nil {
			return written, err
		}
		if _, err := f.Write(buf.Bytes()); err != nil {
			_ = f.Close()
			return written, fmt.Errorf("write svg: %w", err)
		}
		if err := f.Close(); err != nil {
			return written, fmt.Errorf("close svg: %w", err)
		}
		written = append(written, name)
	}
	logger().Info("exported svg", slog.String("dir", dir), slog.Int("files", len(written)))
	return written, nil
}

func svgPath(p vector.Path) string {
	var b strings.Builder
	f := func(v float64) string { return strconv.FormatFloat(vector.FloatRound(v, 3), 'f', -1, 64) }
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%s %s", f(d[0]), f(d[1]))
		case vector.LineTo:
			fmt.Fprintf(&b, "L%s %s", f(d[0]), f(d[1]))
		case vector.QuadTo:
			fmt.Fprintf(&b, "Q%s %s %s %s", f(d[0]), f(d[1]), f(d[2]), f(d[3]))
		case vector.CubicTo:
			fmt.Fprintf(&b, "C%s %s %s %s %s %s", f(d[0]), f(d[1]), f(d[2]), f(d[3]), f(d[4]), f(d[5]))
		case vector.Close:
			b.WriteString("Z")
		}
	}
	return b.String()
}

// paint renders a fill or stroke color with its opacity.
func paint(attr string, c vector.Color) string {
	s := fmt.Sprintf("%s=\"#%02x%02x%02x\"", attr, c.R, c.G, c.B)
	if c.A < 255 {
		s += fmt.Sprintf(" %s-opacity=\"%g\"", attr, vector.FloatRound(float64(c.A)/255, 3))
	}
	return s
}

func textStyle(sp render.TextSpan) string {
	var s string
	if sp.Bold {
		s += " font-weight=\"bold\""
	}
	if sp.Italic {
		s += " font-style=\"italic\""
	}
	if sp.Underline {
		s += " text-decoration=\"underline\""
	}
	return s
}

// escText escapes markup, quotes and newlines, so it serves attributes too.
func escText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
