/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FallbackFamily is the bundled family used when a requested family is not
// loaded. Documents name system fonts the core cannot rely on having.
const FallbackFamily = "Go"

// FontLibrary stores parsed OpenType fonts by family, weight and italic flag.
// Named instances and variation axes are not supported.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// NewGoFontLibrary returns a library preloaded with the four Go font styles
// under FallbackFamily.
func NewGoFontLibrary() (*FontLibrary, error) {
	fl := NewFontLibrary()
	for _, f := range []struct {
		data         []byte
		bold, italic bool
	}{
		{goregular.TTF, false, false},
		{gobold.TTF, true, false},
		{goitalic.TTF, false, true},
		{gobolditalic.TTF, true, true},
	} {
		if err := fl.Parse(FallbackFamily, f.bold, f.italic, f.data); err != nil {
			return nil, err
		}
	}
	return fl, nil
}

// LoadTTF loads a font file into the library.
func (fl *FontLibrary) LoadTTF(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Parse(family, bold, italic, data)
}

// Parse registers font data under family.
func (fl *FontLibrary) Parse(family string, bold, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: family, bold: bold, italic: italic}] = f
	return nil
}

// Families lists the loaded family names.
func (fl *FontLibrary) Families() []string {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	return out
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	bold := spec.Weight >= 600
	for _, family := range []string{spec.Family, FallbackFamily} {
		if f, ok := fl.fonts[fontKey{family: family, bold: bold, italic: spec.Italic}]; ok {
			return f
		}
		if f, ok := fl.fonts[fontKey{family: family}]; ok {
			return f
		}
	}
	return nil
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another
// Provider. Faces are cached per spec; kerning comes from opentype.Face.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]resolved
}

type resolved struct {
	face font.Face
	m    Metrics
}

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.faces[spec]; ok {
		return r.face, r.m
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			r := resolved{face: face, m: metricsOf(face)}
			if p.faces == nil {
				p.faces = make(map[FontSpec]resolved)
			}
			p.faces[spec] = r
			return r.face, r.m
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

// DefaultProvider measures with the bundled Go fonts.
func DefaultProvider() Provider {
	lib, err := NewGoFontLibrary()
	if err != nil {
		return BasicProvider{}
	}
	return &OTProvider{Lib: lib}
}
