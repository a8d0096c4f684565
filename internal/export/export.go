/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes documents to PDF, PNG and SVG. Exporters paint the
// scenes the render package describes, so what they draw matches the
// editor's view of every page.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/imagefill"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/render"
	"pagecomposer/internal/textlayout"
)

// Format names an output format.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatPDF, FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Options apply to every format. Page units are pixels at 96 dpi.
type Options struct {
	// Pages lists zero-based page indexes; empty exports every page.
	Pages []int
	// Provider measures text; nil uses the bundled Go fonts.
	Provider textlayout.Provider
	// Images resolves image fills; nil reads files relative to the
	// working directory.
	Images imagefill.Resolver
	// DPI sets the raster resolution. Zero keeps one pixel per page unit.
	DPI float64
	// Width, when set, scales raster pages to this pixel width and wins over DPI.
	Width int
}

func logger() *slog.Logger { return applog.WithComponent("export") }

func (o Options) resolver() imagefill.Resolver {
	if o.Images == nil {
		return imagefill.FileResolver{}
	}
	return o.Images
}

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

// scenes describes the selected pages. Selection marks are never exported.
func scenes(pm *domain.PageManager, opt Options) ([]render.Scene, error) {
	if pm == nil {
		return nil, fmt.Errorf("document is nil")
	}
	var out []render.Scene
	for _, idx := range pageIndexes(pm.PageCount(), opt.Pages) {
		p, ok := pm.Page(idx)
		if !ok {
			return nil, fmt.Errorf("page index %d out of range (document has %d pages)", idx, pm.PageCount())
		}
		sc := render.Describe(p, render.Options{Provider: opt.Provider})
		for i := range sc.Items {
			sc.Items[i].Selected = false
		}
		out = append(out, sc)
	}
	return out, nil
}

// pageFileName is <base>-page-<n>.<ext>, numbered from 1.
func pageFileName(dir, base string, number int, f Format) string {
	return filepath.Join(dir, fmt.Sprintf("%s-page-%d.%s", base, number, f))
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// WriteFile exports to path, choosing the format from f. PDF writes one
// file; PNG and SVG write one file per page next to path, named after it,
// and return every path written.
func WriteFile(path string, f Format, pm *domain.PageManager, opt Options) ([]string, error) {
	switch f {
	case FormatPDF:
		if err := WritePDF(path, pm, opt); err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatPNG, FormatSVG:
		dir := filepath.Dir(path)
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if f == FormatPNG {
			return WritePNGPages(dir, base, pm, opt)
		}
		return WriteSVGPages(dir, base, pm, opt)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}
