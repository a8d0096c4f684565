/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imagefill resolves image references for shape fills and computes
// where an image lands inside its frame for each aspect policy.
package imagefill

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// ErrEmptyRef is returned for a blank reference.
var ErrEmptyRef = errors.New("empty image reference")

// Info is what a resolved reference tells about the image.
type Info struct {
	Format        string
	Width, Height int
}

// Resolver turns an image reference into image data.
type Resolver interface {
	Resolve(ref string) (Info, error)
	Load(ref string) (image.Image, error)
}

// FileResolver reads references as file paths. Relative paths are taken
// from Root, usually the directory of the open document.
type FileResolver struct {
	Root string
}

func (r FileResolver) path(ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyRef
	}
	if filepath.IsAbs(ref) || r.Root == "" {
		return ref, nil
	}
	return filepath.Join(r.Root, ref), nil
}

// Resolve decodes only the header, which is enough to learn the size.
func (r FileResolver) Resolve(ref string) (Info, error) {
	p, err := r.path(ref)
	if err != nil {
		return Info{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return Info{}, fmt.Errorf("open image %s: %w", ref, err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("decode image %s: %w", ref, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("decode image %s: empty image", ref)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func (r FileResolver) Load(ref string) (image.Image, error) {
	p, err := r.path(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", ref, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", ref, err)
	}
	return img, nil
}

// Attach sets an image fill on o. When the reference does not resolve the
// object is returned with no image at all, along with the error.
func Attach(o domain.Object, ref string, aspect domain.AspectMode, r Resolver) (domain.Object, error) {
	if !domain.Capabilities(o).Has(domain.CanFillImage) {
		return o, fmt.Errorf("%s objects take no image fill", o.Kind)
	}
	info, err := r.Resolve(ref)
	if err != nil {
		o.Fill.Image = nil
		return o, err
	}
	o.Fill.Image = &domain.ImageFill{Ref: ref, Aspect: domain.ParseAspect(string(aspect)), Width: info.Width, Height: info.Height}
	return o, nil
}

// Placement returns the rectangle the image is drawn into, in the frame's
// coordinate space. Fit letterboxes inside the frame, cover fills it and
// overflows (the object outline clips the overflow), stretch is the frame.
func Placement(frame vector.Rect, imgW, imgH int, aspect domain.AspectMode) vector.Rect {
	if imgW <= 0 || imgH <= 0 || frame.Empty() || aspect == domain.AspectStretch {
		return frame
	}
	sx := frame.W / float64(imgW)
	sy := frame.H / float64(imgH)
	s := min(sx, sy)
	if aspect == domain.AspectCover {
		s = max(sx, sy)
	}
	w, h := float64(imgW)*s, float64(imgH)*s
	c := frame.Center()
	return vector.R(c.X-w/2, c.Y-h/2, w, h)
}
