/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/render"
	"pagecomposer/internal/textlayout"
	"pagecomposer/internal/vector"
)

// flattenSteps is the number of segments per curve when stroking.
const flattenSteps = 16

// PNG encodes page index of pm.
func PNG(w io.Writer, pm *domain.PageManager, index int, opt Options) error {
	opt.Pages = []int{index}
	ss, err := scenes(pm, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, Rasterize(ss[0], opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNGPages writes one PNG per selected page into dir.
func WritePNGPages(dir, base string, pm *domain.PageManager, opt Options) ([]string, error) {
	ss, err := scenes(pm, opt)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, sc := range ss {
		name := pageFileName(dir, base, sc.Number, FormatPNG)
		f, err := createFile(name)
		if err != nil {
			return written, err
		}
		if err := png.Encode(f, Rasterize(sc, opt)); err != nil {
			_ = f.Close()
			return written, fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return written, fmt.Errorf("close png: %w", err)
		}
		written = append(written, name)
	}
	logger().Info("exported png", slog.String("dir", dir), slog.Int("files", len(written)))
	return written, nil
}

// rasterScale converts page units to pixels.
func rasterScale(sc render.Scene, opt Options) float64 {
	switch {
	case opt.Width > 0 && sc.Width > 0:
		return float64(opt.Width) / sc.Width
	case opt.DPI > 0:
		return opt.DPI / 96
	}
	return 1
}

// Rasterize paints a scene. Thumbnails use it with Options.Width.
func Rasterize(sc render.Scene, opt Options) *image.RGBA {
	s := rasterScale(sc, opt)
	w := max(1, int(math.Round(sc.Width*s)))
	h := max(1, int(math.Round(sc.Height*s)))
	rp := &rasterPainter{
		dst:   image.NewRGBA(image.Rect(0, 0, w, h)),
		scale: s,
		opt:   opt,
		fonts: glyphProvider(opt.Provider, s),
	}
	draw.Draw(rp.dst, rp.dst.Bounds(), image.NewUniform(rgba(sc.Background)), image.Point{}, draw.Src)
	for _, it := range sc.Items {
		rp.item(it)
	}
	return rp.dst
}

var (
	goFontsOnce sync.Once
	goFonts     *textlayout.FontLibrary
)

// glyphProvider returns faces sized for the raster scale. Layout measured
// runs at 72 dpi, one unit per point, so scaling the dpi scales the glyphs.
func glyphProvider(p textlayout.Provider, scale float64) textlayout.Provider {
	if ot, ok := p.(*textlayout.OTProvider); ok && ot.Lib != nil {
		return &textlayout.OTProvider{Lib: ot.Lib, DPI: 72 * scale}
	}
	if p != nil {
		return p
	}
	goFontsOnce.Do(func() {
		lib, err := textlayout.NewGoFontLibrary()
		if err != nil {
			logger().Warn("bundled fonts unavailable", slog.String("err", err.Error()))
			return
		}
		goFonts = lib
	})
	if goFonts == nil {
		return textlayout.BasicProvider{}
	}
	return &textlayout.OTProvider{Lib: goFonts, DPI: 72 * scale}
}

type rasterPainter struct {
	dst   *image.RGBA
	scale float64
	opt   Options
	fonts textlayout.Provider
}

func (rp *rasterPainter) item(it render.Item) {
	if it.Fill.A > 0 && it.Kind != domain.KindLine {
		rp.fillPath(it.Outline, it.Fill)
	}
	if it.Image != nil {
		rp.image(it)
	}
	if it.Text != nil {
		rp.text(it)
	}
	if stroked(it.Stroke) {
		rp.strokePath(it.Outline, it.Stroke, it.Dashes)
	}
	for _, head := range it.Arrows {
		rp.fillPath(vector.PolygonPath(head), it.Stroke.Color)
	}
}

func (rp *rasterPainter) rasterizer() *xvector.Rasterizer {
	b := rp.dst.Bounds()
	z := xvector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return z
}

func (rp *rasterPainter) pt(x, y float64) (float32, float32) {
	return float32(x * rp.scale), float32(y * rp.scale)
}

// addPath feeds a path to z in pixel space.
func (rp *rasterPainter) addPath(z *xvector.Rasterizer, p vector.Path) {
	open := false
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(rp.pt(d[0], d[1]))
			open = true
		case vector.LineTo:
			z.LineTo(rp.pt(d[0], d[1]))
		case vector.QuadTo:
			cx, cy := rp.pt(d[0], d[1])
			x, y := rp.pt(d[2], d[3])
			z.QuadTo(cx, cy, x, y)
		case vector.CubicTo:
			c1x, c1y := rp.pt(d[0], d[1])
			c2x, c2y := rp.pt(d[2], d[3])
			x, y := rp.pt(d[4], d[5])
			z.CubeTo(c1x, c1y, c2x, c2y, x, y)
		case vector.Close:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}
}

func (rp *rasterPainter) fillPath(p vector.Path, c vector.Color) {
	z := rp.rasterizer()
	rp.addPath(z, p)
	z.Draw(rp.dst, rp.dst.Bounds(), image.NewUniform(rgba(c)), image.Point{})
}

// strokePath covers every segment of the flattened outline with a quad of
// the stroke width, plus a square at each joint. All quads wind the same
// way, so overlaps never cancel.
func (rp *rasterPainter) strokePath(p vector.Path, s domain.Stroke, dashes []float64) {
	hw := math.Max(s.Width*rp.scale, 1) / 2
	z := rp.rasterizer()
	for _, line := range p.Flatten(flattenSteps) {
		px := make([]vector.Pt, len(line))
		for i, q := range line {
			px[i] = q.Mul(rp.scale)
		}
		for _, seg := range dashPolyline(px, scaleDashes(dashes, rp.scale)) {
			for i := 1; i < len(seg); i++ {
				strokeSegment(z, seg[i-1], seg[i], hw)
			}
			for i := 1; i < len(seg)-1; i++ {
				strokeJoint(z, seg[i], hw)
			}
		}
	}
	z.Draw(rp.dst, rp.dst.Bounds(), image.NewUniform(rgba(s.Color)), image.Point{})
}

func strokeSegment(z *xvector.Rasterizer, a, b vector.Pt, hw float64) {
	d := b.Sub(a)
	n := math.Hypot(d.X, d.Y)
	if n == 0 {
		return
	}
	off := vector.Pt{X: -d.Y / n * hw, Y: d.X / n * hw}
	quad(z, a.Add(off), b.Add(off), b.Sub(off), a.Sub(off))
}

func strokeJoint(z *xvector.Rasterizer, c vector.Pt, hw float64) {
	quad(z,
		vector.Pt{X: c.X - hw, Y: c.Y + hw}, vector.Pt{X: c.X + hw, Y: c.Y + hw},
		vector.Pt{X: c.X + hw, Y: c.Y - hw}, vector.Pt{X: c.X - hw, Y: c.Y - hw})
}

func quad(z *xvector.Rasterizer, a, b, c, d vector.Pt) {
	z.MoveTo(float32(a.X), float32(a.Y))
	z.LineTo(float32(b.X), float32(b.Y))
	z.LineTo(float32(c.X), float32(c.Y))
	z.LineTo(float32(d.X), float32(d.Y))
	z.ClosePath()
}

func scaleDashes(d []float64, s float64) []float64 {
	if d == nil {
		return nil
	}
	out := make([]float64, len(d))
	for i, v := range d {
		out[i] = v * s
	}
	return out
}

// dashPolyline splits a polyline into the "on" pieces of an on/off pattern.
// A nil pattern returns the polyline whole.
func dashPolyline(pts []vector.Pt, pattern []float64) [][]vector.Pt {
	if len(pattern) == 0 || len(pts) < 2 {
		return [][]vector.Pt{pts}
	}
	var out [][]vector.Pt
	idx, left, on := 0, pattern[0], true
	cur := []vector.Pt{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for segLen-pos > left {
			pos += left
			q := a.Add(b.Sub(a).Mul(pos / segLen))
			if on {
				out = append(out, append(cur, q))
			}
			cur = []vector.Pt{q}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= segLen - pos
		cur = append(cur, b)
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

// image draws the fill image transformed into place and clipped to the outline.
func (rp *rasterPainter) image(it render.Item) {
	img, err := rp.opt.resolver().Load(it.Image.Ref)
	if err != nil {
		logger().Warn("image fill skipped", slog.String("ref", it.Image.Ref), slog.String("err", err.Error()))
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	r := it.Image.Rect
	place := vector.Affine2D{
		A: r.W / float64(sb.Dx()), D: r.H / float64(sb.Dy()),
		E: r.X - float64(sb.Min.X)*r.W/float64(sb.Dx()),
		F: r.Y - float64(sb.Min.Y)*r.H/float64(sb.Dy()),
	}
	m := vector.Affine2D{A: rp.scale, D: rp.scale}.Mul(it.Transform).Mul(place)

	mask := image.NewAlpha(rp.dst.Bounds())
	z := rp.rasterizer()
	z.DrawOp = draw.Src
	rp.addPath(z, it.Outline)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	draw.ApproxBiLinear.Transform(rp.dst, aff3(m), img, sb, draw.Over, &draw.Options{DstMask: mask})
}

// text draws the laid out lines. Rotated boxes are painted upright into a
// layer and transformed onto the page.
func (rp *rasterPainter) text(it render.Item) {
	box := pixelRect(it.Bounds, rp.scale)
	if it.Rotation == 0 {
		rp.drawLines(rp.dst, box, it.Text)
		return
	}
	layer := image.NewRGBA(box)
	rp.drawLines(layer, box, it.Text)
	m := vector.Affine2D{A: rp.scale, D: rp.scale}.Mul(it.Transform).Mul(vector.Affine2D{A: 1 / rp.scale, D: 1 / rp.scale})
	draw.ApproxBiLinear.Transform(rp.dst, aff3(m), layer, box, draw.Over, nil)
}

func (rp *rasterPainter) drawLines(dst draw.Image, clip image.Rectangle, lines []render.TextLine) {
	clipped := clipImage{Image: dst, r: clip}
	for _, ln := range lines {
		for _, sp := range ln.Spans {
			face, _ := rp.fonts.Resolve(textlayout.FontSpec{Family: sp.Font, SizePt: float32(sp.Size), Weight: weight(sp.Bold), Italic: sp.Italic})
			col := image.NewUniform(rgba(sp.Color))
			x, y := sp.X*rp.scale, ln.Baseline*rp.scale
			d := font.Drawer{Dst: clipped, Src: col, Face: face, Dot: fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}}
			d.DrawString(sp.Text)
			if sp.Underline {
				th := max(1, int(math.Round(sp.Size*rp.scale/14)))
				u := image.Rect(int(x), int(y)+th, int(math.Round((sp.X+sp.Width)*rp.scale)), int(y)+2*th).Intersect(clip)
				draw.Draw(dst, u, col, image.Point{}, draw.Over)
			}
		}
	}
}

func weight(bold bool) int {
	if bold {
		return 700
	}
	return 400
}

// clipImage drops writes outside r, so overflowing text stays in its box.
type clipImage struct {
	draw.Image
	r image.Rectangle
}

func (c clipImage) Set(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.r) {
		c.Image.Set(x, y, col)
	}
}

func (c clipImage) Bounds() image.Rectangle { return c.r.Intersect(c.Image.Bounds()) }

func pixelRect(r vector.Rect, s float64) image.Rectangle {
	return image.Rect(int(math.Floor(r.X*s)), int(math.Floor(r.Y*s)), int(math.Ceil((r.X+r.W)*s)), int(math.Ceil((r.Y+r.H)*s)))
}

func aff3(m vector.Affine2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

func rgba(c vector.Color) color.RGBA {
	// premultiplied
	a := uint32(c.A)
	return color.RGBA{R: uint8(uint32(c.R) * a / 255), G: uint8(uint32(c.G) * a / 255), B: uint8(uint32(c.B) * a / 255), A: c.A}
}
