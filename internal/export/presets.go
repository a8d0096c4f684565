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
	"path/filepath"

	"pagecomposer/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// ParsePreset accepts web and print.
func ParsePreset(s string) (PresetName, error) {
	switch p := PresetName(s); p {
	case PresetWeb, PresetPrint:
		return p, nil
	}
	return "", fmt.Errorf("unknown export preset %q", s)
}

// BatchOptions controls batch export across several formats.
//
// Outputs land under OutDir/<format>/: <Base>.pdf for PDF and
// <Base>-page-<n>.(png|svg) for the per-page formats.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format // empty means preset defaults
	Pages   []int    // zero-based; empty means all pages
	// DPIOverride, when > 0, replaces the preset's raster resolution.
	DPIOverride float64
	OutDir      string
	Base        string
	Options     Options
}

// BatchExport runs every format of the preset and returns the files written.
func BatchExport(pm *domain.PageManager, opt BatchOptions) ([]string, error) {
	if pm == nil {
		return nil, fmt.Errorf("document is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.Base
	if base == "" {
		base = "document"
	}
	outDir := opt.OutDir
	if outDir == "" {
		outDir = filepath.Join("exports", string(opt.Preset))
	}
	o := opt.Options
	o.Pages = opt.Pages
	o.DPI = presetDPI(opt.Preset)
	if opt.DPIOverride > 0 {
		o.DPI = opt.DPIOverride
	}

	var written []string
	for _, f := range formats {
		dir := filepath.Join(outDir, string(f))
		var files []string
		var err error
		switch f {
		case FormatPDF:
			out := filepath.Join(dir, base+".pdf")
			err = WritePDF(out, pm, o)
			files = []string{out}
		case FormatPNG:
			files, err = WritePNGPages(dir, base, pm, o)
		case FormatSVG:
			files, err = WriteSVGPages(dir, base, pm, o)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, files...)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetWeb:
		return []Format{FormatPNG, FormatSVG}
	case PresetPrint:
		return []Format{FormatPDF, FormatPNG}
	default:
		return []Format{FormatPDF}
	}
}

func presetDPI(p PresetName) float64 {
	if p == PresetPrint {
		return 300
	}
	return 96
}
