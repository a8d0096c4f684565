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
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/render"
	"pagecomposer/internal/vector"
)

// ptPerUnit converts page units (96 dpi) to PDF points.
const ptPerUnit = 72.0 / 96.0

// PDF writes the selected pages as one document. Geometry stays vector;
// text uses the core PDF fonts closest to each run's family.
func PDF(w io.Writer, pm *domain.PageManager, opt Options) error {
	ss, err := scenes(pm, opt)
	if err != nil {
		return err
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: ss[0].Width * ptPerUnit, Ht: ss[0].Height * ptPerUnit},
	})
	pdf.SetCreator("pagecomposer", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pp := &pdfPainter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), opt: opt, images: map[string]bool{}}
	for _, sc := range ss {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: sc.Width * ptPerUnit, Ht: sc.Height * ptPerUnit})
		// draw in page units
		pdf.TransformBegin()
		pdf.TransformScale(ptPerUnit*100, ptPerUnit*100, 0, 0)
		pp.page(sc)
		pdf.TransformEnd()
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDF exports to a file at path.
func WritePDF(path string, pm *domain.PageManager, opt Options) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := PDF(f, pm, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	logger().Info("exported pdf", slog.String("path", path), slog.Int("pages", pm.PageCount()))
	return nil
}

type pdfPainter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	opt    Options
	images map[string]bool // ref -> registered
}

func (pp *pdfPainter) page(sc render.Scene) {
	pdf := pp.pdf
	setFillColor(pdf, sc.Background)
	pdf.Rect(0, 0, sc.Width, sc.Height, "F")
	for _, it := range sc.Items {
		pp.item(it)
	}
}

func (pp *pdfPainter) item(it render.Item) {
	pdf := pp.pdf
	if it.Fill.A > 0 && it.Kind != domain.KindLine {
		setFillColor(pdf, it.Fill)
		pdf.SetAlpha(float64(it.Fill.A)/255, "Normal")
		pdfPath(pdf, it.Outline)
		pdf.DrawPath("F")
		pdf.SetAlpha(1, "Normal")
	}
	if it.Image != nil {
		pp.image(it)
	}
	if it.Text != nil {
		pp.text(it)
	}
	if stroked(it.Stroke) {
		setDrawColor(pdf, it.Stroke.Color)
		pdf.SetLineWidth(it.Stroke.Width)
		if it.Dashes != nil {
			pdf.SetDashPattern(it.Dashes, 0)
		}
		pdfPath(pdf, it.Outline)
		pdf.DrawPath("D")
		pdf.SetDashPattern([]float64{}, 0)
	}
	for _, head := range it.Arrows {
		setFillColor(pdf, it.Stroke.Color)
		pdf.Polygon(pointTypes(head), "F")
	}
}

func (pp *pdfPainter) image(it render.Item) {
	pdf := pp.pdf
	name := it.Image.Ref
	ok, seen := pp.images[name]
	if !seen {
		ok = pp.register(name)
		pp.images[name] = ok
	}
	if !ok {
		return
	}
	flat := it.Outline.Flatten(16)
	if len(flat) == 0 {
		return
	}
	pdf.ClipPolygon(pointTypes(flat[0]), false)
	c := it.Bounds.Center()
	pdf.TransformBegin()
	pdf.TransformRotate(-it.Rotation, c.X, c.Y)
	r := it.Image.Rect
	pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.TransformEnd()
	pdf.ClipEnd()
}

// register loads the image and hands it to the PDF as PNG.
func (pp *pdfPainter) register(ref string) bool {
	img, err := pp.opt.resolver().Load(ref)
	if err != nil {
		logger().Warn("image fill skipped", slog.String("ref", ref), slog.String("err", err.Error()))
		return false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger().Warn("image fill skipped", slog.String("ref", ref), slog.String("err", err.Error()))
		return false
	}
	pp.pdf.RegisterImageOptionsReader(ref, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	return pp.pdf.Ok()
}

func (pp *pdfPainter) text(it render.Item) {
	pdf := pp.pdf
	c := it.Bounds.Center()
	pdf.TransformBegin()
	if it.Rotation != 0 {
		pdf.TransformRotate(-it.Rotation, c.X, c.Y)
	}
	pdf.ClipRect(it.Bounds.X, it.Bounds.Y, it.Bounds.W, it.Bounds.H, false)
	for _, ln := range it.Text {
		for _, sp := range ln.Spans {
			style := ""
			if sp.Bold {
				style += "B"
			}
			if sp.Italic {
				style += "I"
			}
			if sp.Underline {
				style += "U"
			}
			pdf.SetFont(coreFont(sp.Font), style, sp.Size)
			pdf.SetTextColor(int(sp.Color.R), int(sp.Color.G), int(sp.Color.B))
			pdf.Text(sp.X, ln.Baseline, pp.tr(sp.Text))
		}
	}
	pdf.ClipEnd()
	pdf.TransformEnd()
}

// coreFont maps a family name to the closest of the standard PDF fonts.
func coreFont(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"), strings.Contains(f, "code"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "Times"
	}
	return "Helvetica"
}

func pdfPath(pdf *gofpdf.Fpdf, p vector.Path) {
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			pdf.MoveTo(d[0], d[1])
		case vector.LineTo:
			pdf.LineTo(d[0], d[1])
		case vector.QuadTo:
			pdf.CurveTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			pdf.CurveBezierCubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			pdf.ClosePath()
		}
	}
}

func pointTypes(pts []vector.Pt) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

// stroked reports whether an outline is drawn at all.
func stroked(s domain.Stroke) bool {
	return s.Style != vector.NoLine && s.Width > 0 && s.Color.A > 0
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
