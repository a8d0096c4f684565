/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bundle packs a document together with the image files its fills
// reference into a single zip archive, and unpacks such archives.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pagecomposer/internal/codec"
	"pagecomposer/internal/domain"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/storage"
)

const (
	// DocumentName is the archive entry holding the document.
	DocumentName = "document" + storage.Extension
	// ImagesDir is the archive folder holding image fills.
	ImagesDir    = "images"
	manifestName = "bundle.manifest.txt"
)

// Manifest describes what Pack wrote.
type Manifest struct {
	Document string
	// Images maps the original reference to its entry in the archive.
	Images map[string]string
	// Missing lists references whose files could not be read.
	Missing []string
}

// Pack writes the document at docPath and its image files to destZip. Image
// references in the packed document point into the archive's images folder;
// the document on disk is left alone. Images that cannot be read are listed
// in the manifest and keep their reference.
func Pack(docPath, destZip string, s domain.PageSettings) (Manifest, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "pack").With(slog.String("path", docPath))
	if strings.TrimSpace(docPath) == "" {
		return Manifest{}, errors.New("docPath is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return Manifest{}, errors.New("destZip is required")
	}
	doc, err := storage.Open(docPath, s)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{Document: docPath, Images: map[string]string{}}
	root := filepath.Dir(docPath)
	files := map[string]string{} // archive entry -> source file
	used := map[string]bool{}
	for _, p := range doc.Pages.Pages() {
		for i := range p.Objects {
			img := p.Objects[i].Fill.Image
			if img == nil || img.Ref == "" {
				continue
			}
			if entry, ok := m.Images[img.Ref]; ok {
				img.Ref = entry
				continue
			}
			src := img.Ref
			if !filepath.IsAbs(src) {
				src = filepath.Join(root, src)
			}
			if st, err := os.Stat(src); err != nil || st.IsDir() {
				l.Warn("image not packed", slog.String("ref", img.Ref))
				m.Missing = append(m.Missing, img.Ref)
				continue
			}
			entry := uniqueEntry(filepath.Base(src), used)
			m.Images[img.Ref] = entry
			files[entry] = src
			img.Ref = entry
		}
	}
	data, err := codec.EncodeIndent(doc.Pages)
	if err != nil {
		return Manifest{}, err
	}

	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return Manifest{}, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZip)
	zf, err := os.Create(destZip)
	if err != nil {
		return Manifest{}, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	if err := writeEntry(zw, manifestName, strings.NewReader(m.text())); err != nil {
		return Manifest{}, fmt.Errorf("add manifest: %w", err)
	}
	if err := writeEntry(zw, DocumentName, strings.NewReader(string(data))); err != nil {
		return Manifest{}, fmt.Errorf("add document: %w", err)
	}
	entries := make([]string, 0, len(files))
	for e := range files {
		entries = append(entries, e)
	}
	sort.Strings(entries)
	for _, e := range entries {
		if err := copyInto(zw, e, files[e]); err != nil {
			return Manifest{}, fmt.Errorf("add %s: %w", e, err)
		}
	}
	if err := zw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("bundle written", slog.Int("images", len(files)), slog.Int("missing", len(m.Missing)), slog.String("zip", destZip))
	return m, nil
}

// uniqueEntry names an image entry, numbering repeated base names.
func uniqueEntry(base string, used map[string]bool) string {
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := path.Join(ImagesDir, base)
	for n := 2; used[name]; n++ {
		name = path.Join(ImagesDir, fmt.Sprintf("%s-%d%s", stem, n, ext))
	}
	used[name] = true
	return name
}

func (m Manifest) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pagecomposer bundle\nCreated: %s\nDocument: %s\n", time.Now().Format(time.RFC3339), filepath.Base(m.Document))
	refs := make([]string, 0, len(m.Images))
	for r := range m.Images {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	for _, r := range refs {
		fmt.Fprintf(&b, "Image: %s <- %s\n", m.Images[r], r)
	}
	for _, r := range m.Missing {
		fmt.Fprintf(&b, "Missing: %s\n", r)
	}
	return b.String()
}

func writeEntry(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func copyInto(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return writeEntry(zw, name, f)
}

// Unpack extracts a bundle into destDir and returns the path of the
// document. Existing files are not overwritten; entries that would land
// outside destDir are rejected.
func Unpack(zipPath, destDir string) (string, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "unpack").With(slog.String("zip", zipPath))
	if strings.TrimSpace(destDir) == "" {
		return "", errors.New("destDir is required")
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return "", fmt.Errorf("resolve dest: %w", err)
	}
	docPath := ""
	installed := 0
	for _, f := range r.File {
		if f.Name == manifestName || f.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if rel, err := filepath.Rel(root, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return docPath, fmt.Errorf("entry %q escapes the destination", f.Name)
		}
		if f.Name == DocumentName {
			docPath = target
		}
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		if err := extract(f, target); err != nil {
			return docPath, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		installed++
	}
	if docPath == "" {
		return "", fmt.Errorf("%s has no %s", filepath.Base(zipPath), DocumentName)
	}
	l.Info("bundle unpacked", slog.Int("files", installed), slog.String("dir", root))
	return docPath, nil
}

func extract(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
