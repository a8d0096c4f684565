/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imagefill

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

func writeImage(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	switch filepath.Ext(name) {
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestFileResolver(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.png", 40, 20)
	writeImage(t, dir, "b.bmp", 8, 16)
	r := FileResolver{Root: dir}
	cases := []struct {
		ref    string
		format string
		w, h   int
	}{
		{"a.png", "png", 40, 20},
		{"b.bmp", "bmp", 8, 16},
		{filepath.Join(dir, "a.png"), "png", 40, 20},
	}
	for _, c := range cases {
		info, err := r.Resolve(c.ref)
		if err != nil {
			t.Fatalf("resolve %s: %v", c.ref, err)
		}
		if info.Format != c.format || info.Width != c.w || info.Height != c.h {
			t.Fatalf("%s: got %+v", c.ref, info)
		}
	}
	img, err := r.Load("a.png")
	if err != nil || img.Bounds().Dx() != 40 {
		t.Fatalf("load: %v", err)
	}
	if _, err := r.Resolve("missing.png"); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := r.Resolve(""); err != ErrEmptyRef {
		t.Fatalf("expected ErrEmptyRef, got %v", err)
	}
}

func TestAttachClearsImageOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "ok.png", 10, 10)
	r := FileResolver{Root: dir}
	o := domain.NewRect(0, 0, 100, 50)
	o, err := Attach(o, "ok.png", domain.AspectCover, r)
	if err != nil || o.Fill.Image == nil || o.Fill.Image.Width != 10 {
		t.Fatalf("attach: %v %+v", err, o.Fill.Image)
	}
	o, err = Attach(o, "nope.png", domain.AspectFit, r)
	if err == nil || o.Fill.Image != nil {
		t.Fatalf("failed reference must leave no image: %+v", o.Fill.Image)
	}
	if _, err := Attach(domain.NewLine(vector.P(0, 0), vector.P(5, 5)), "ok.png", domain.AspectFit, r); err == nil {
		t.Fatalf("lines take no image fill")
	}
}

func TestPlacement(t *testing.T) {
	frame := vector.R(0, 0, 200, 100)
	cases := []struct {
		aspect domain.AspectMode
		want   vector.Rect
	}{
		{domain.AspectStretch, vector.R(0, 0, 200, 100)},
		{domain.AspectFit, vector.R(50, 0, 100, 100)},
		{domain.AspectCover, vector.R(0, -50, 200, 200)},
	}
	for _, c := range cases {
		if got := Placement(frame, 50, 50, c.aspect); got != c.want {
			t.Fatalf("%s: got %+v want %+v", c.aspect, got, c.want)
		}
	}
	if got := Placement(frame, 0, 0, domain.AspectFit); got != frame {
		t.Fatalf("unknown size should stretch, got %+v", got)
	}
}
