/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pagecomposer/internal/bundle"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/export"
	"pagecomposer/internal/imagefill"
	"pagecomposer/internal/storage"
)

const (
	// envIndexPath replaces the per-user index location.
	envIndexPath = "PGC_INDEX"
	// keepIndexed caps the documents the index remembers for search.
	keepIndexed = 500
)

func (a *app) openIndex() (*storage.Index, error) {
	path := strings.TrimSpace(os.Getenv(envIndexPath))
	if path == "" {
		p, err := storage.DefaultIndexPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	idx, rebuilt, err := storage.OpenOrRebuildIndex(a.ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if rebuilt {
		a.log.Warn("index was damaged and has been rebuilt", slog.String("path", path))
	}
	return idx, nil
}

// remember records a document in the index. The index is a cache, so
// failures are logged and otherwise ignored.
func (a *app) remember(path string, pm *domain.PageManager) {
	idx, err := a.openIndex()
	if err != nil {
		a.log.Warn("index unavailable", slog.Any("err", err))
		return
	}
	defer idx.Close()
	if err := idx.Remember(a.ctx, path, pm); err != nil {
		a.log.Warn("document not indexed", slog.String("path", path), slog.Any("err", err))
		return
	}
	if _, err := idx.TrimRecent(a.ctx, keepIndexed); err != nil {
		a.log.Warn("trim index failed", slog.Any("err", err))
	}
}

// withExtension appends the document extension to names that have none.
func withExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + storage.Extension
	}
	return path
}

func (a *app) open(path string) (*storage.Document, error) {
	d, err := storage.Open(path, a.cfg.PageSettings())
	if err != nil {
		return nil, err
	}
	if d.Backup != "" {
		fmt.Fprintf(a.errOut, "Warning: %s could not be read; loaded backup %s\n", path, filepath.Base(d.Backup))
	}
	return d, nil
}

func (a *app) exportOptions(path string) export.Options {
	return export.Options{Images: imagefill.FileResolver{Root: filepath.Dir(path)}, DPI: a.cfg.Export.DPI}
}

func (a *app) cmdNew(path string, opts []string) error {
	path = withExtension(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	s := a.cfg.PageSettings()
	size, landscape := a.cfg.Page.Size, a.cfg.Page.Landscape
	for _, o := range opts {
		switch strings.ToLower(o) {
		case "landscape":
			landscape = true
		case "portrait":
			landscape = false
		default:
			size = o
		}
	}
	if size != "" {
		sized, ok := s.WithPageSize(size, landscape)
		if !ok {
			return usageErr(fmt.Sprintf("unknown page size %q (known: %s)", size, strings.Join(domain.PageSizeNames(), ", ")))
		}
		s = sized
	} else {
		size = "custom"
	}
	pm := domain.NewPageManager(s)
	a.log.Info("new document", slog.String("path", path), slog.String("size", size))
	if err := storage.SaveDocument(path, pm); err != nil {
		return err
	}
	a.remember(path, pm)
	fmt.Fprintf(a.out, "Created %s (%s, %gx%g)\n", path, size, s.Width, s.Height)
	return nil
}

func (a *app) cmdInfo(path string) error {
	d, err := a.open(path)
	if err != nil {
		return err
	}
	a.remember(path, d.Pages)
	fmt.Fprintf(a.out, "Document: %s\n", d.Path)
	if d.Report.Fallback {
		fmt.Fprintln(a.out, "Loaded as plain text")
	}
	if d.Report.Legacy {
		fmt.Fprintln(a.out, "Format: legacy single page")
	}
	if d.Report.Skipped > 0 {
		fmt.Fprintf(a.out, "Skipped items: %d\n", d.Report.Skipped)
	}
	if d.Report.RepairedLinks > 0 {
		fmt.Fprintf(a.out, "Repaired links: %d\n", d.Report.RepairedLinks)
	}
	fmt.Fprintf(a.out, "Pages: %d\n", d.Pages.PageCount())
	for _, p := range d.Pages.Pages() {
		var texts, shapes, links int
		for _, o := range p.Objects {
			if o.Kind == domain.KindText {
				texts++
				if o.NextLink != "" {
					links++
				}
				continue
			}
			shapes++
		}
		fmt.Fprintf(a.out, "  Page %d: %gx%g, %d text boxes, %d shapes, %d links\n", p.Number, p.Width, p.Height, texts, shapes, links)
	}
	return nil
}

func (a *app) cmdImport(src, path string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	path = withExtension(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	d, err := a.open(src)
	if err != nil {
		return err
	}
	if err := storage.SaveDocument(path, d.Pages); err != nil {
		return err
	}
	a.remember(path, d.Pages)
	if d.Report.Fallback {
		fmt.Fprintf(a.out, "Imported %d characters of text into %s\n", len([]rune(string(data))), path)
	} else {
		fmt.Fprintf(a.out, "Imported %d pages into %s\n", d.Pages.PageCount(), path)
	}
	return nil
}

// parsePages reads a 1-based page list such as "1,3-5" into zero-based
// indexes.
func parsePages(s string, total int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(part), "-")
		first, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad page %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("bad page range %q", part)
			}
		}
		if first < 1 || last > total || first > last {
			return nil, fmt.Errorf("pages %q out of range 1-%d", part, total)
		}
		for n := first; n <= last; n++ {
			out = append(out, n-1)
		}
	}
	return out, nil
}

func (a *app) cmdExport(path, target, out, pageList string) error {
	d, err := a.open(path)
	if err != nil {
		return err
	}
	pages, err := parsePages(pageList, d.Pages.PageCount())
	if err != nil {
		return usageErr(err.Error())
	}
	opt := a.exportOptions(path)
	start := time.Now()
	var written []string
	if preset, perr := export.ParsePreset(target); perr == nil {
		written, err = export.BatchExport(d.Pages, export.BatchOptions{
			Preset:      preset,
			Pages:       pages,
			DPIOverride: a.cfg.Export.DPI,
			OutDir:      out,
			Base:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Options:     opt,
		})
	} else {
		f, ferr := export.ParseFormat(target)
		if ferr != nil {
			return usageErr(fmt.Sprintf("%v (or preset web, print)", ferr))
		}
		opt.Pages = pages
		written, err = export.WriteFile(out, f, d.Pages, opt)
	}
	if err != nil {
		return err
	}
	a.log.Info("export finished", slog.String("path", path), slog.Int("files", len(written)), slog.Duration("took", time.Since(start)))
	for _, w := range written {
		fmt.Fprintln(a.out, "Wrote", w)
	}
	return nil
}

func (a *app) cmdThumb(path, page, out, width string) error {
	n, err := strconv.Atoi(page)
	if err != nil {
		return usageErr(fmt.Sprintf("bad page %q", page))
	}
	w := storage.DefaultThumbWidth
	if width != "" {
		if w, err = strconv.Atoi(width); err != nil || w <= 0 {
			return usageErr(fmt.Sprintf("bad width %q", width))
		}
	}
	d, err := a.open(path)
	if err != nil {
		return err
	}
	if n < 1 || n > d.Pages.PageCount() {
		return fmt.Errorf("page %d out of range 1-%d", n, d.Pages.PageCount())
	}
	idx, err := a.openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	t, err := idx.PageThumbnail(a.ctx, abs, d.Pages, n-1, w, a.exportOptions(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, t.PNG, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	state := "rendered"
	if t.Cached {
		state = "cached"
	}
	fmt.Fprintf(a.out, "Wrote %s (%dx%d, %s)\n", out, t.Width, t.Height, state)
	return nil
}

func (a *app) cmdPack(path, out string) error {
	m, err := bundle.Pack(path, out, a.cfg.PageSettings())
	if err != nil {
		return err
	}
	for _, ref := range m.Missing {
		fmt.Fprintf(a.errOut, "Warning: image %s not found, not packed\n", ref)
	}
	fmt.Fprintf(a.out, "Wrote %s (%d images)\n", out, len(m.Images))
	return nil
}

func (a *app) cmdUnpack(zipPath, dir string) error {
	doc, err := bundle.Unpack(zipPath, dir)
	if err != nil {
		return err
	}
	d, err := a.open(doc)
	if err != nil {
		return err
	}
	a.remember(doc, d.Pages)
	fmt.Fprintf(a.out, "Unpacked %s\n", doc)
	return nil
}

func (a *app) cmdRecover(path, out string) error {
	idx, err := a.openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()
	blob, ts, err := idx.LatestAutosave(a.ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no autosave for %s", path)
	}
	if err != nil {
		return err
	}
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".recovered" + storage.Extension
	}
	if err := storage.Save(out, blob); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recovered autosave from %s into %s\n", ts.Local().Format(time.DateTime), out)
	return nil
}

func (a *app) cmdRecent(limit string) error {
	n := a.cfg.General.RecentLimit
	if limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v <= 0 {
			return usageErr(fmt.Sprintf("bad count %q", limit))
		}
		n = v
	}
	idx, err := a.openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()
	docs, err := idx.Recent(a.ctx, n)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No recent documents.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(a.out, "%s\t%d pages\t%s\t%s\n", d.Title, d.Pages, d.OpenedAt.Local().Format(time.DateTime), d.Path)
	}
	return nil
}

func (a *app) cmdSearch(args []string) error {
	raw := false
	if len(args) > 0 && args[0] == "--raw" {
		raw, args = true, args[1:]
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return usageErr("search requires <query>")
	}
	if !raw {
		text = storage.PhraseQuery(text)
	}
	idx, err := a.openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()
	res, err := idx.Search(a.ctx, storage.SearchQuery{Text: text})
	if err != nil {
		return err
	}
	if len(res) == 0 {
		fmt.Fprintln(a.out, "No matches.")
		return nil
	}
	for _, r := range res {
		fmt.Fprintf(a.out, "%s:%d: %s\n", r.Path, r.Page, strings.ReplaceAll(r.Snippet, "\n", " "))
	}
	return nil
}

func (a *app) cmdWatch(path string) error {
	w, err := storage.Watch(path, 200*time.Millisecond)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(a.out, "Watching %s (interrupt to stop)\n", path)
	for {
		select {
		case <-a.ctx.Done():
			return nil
		case c, ok := <-w.Changes():
			if !ok {
				return nil
			}
			if c.Removed {
				fmt.Fprintf(a.out, "%s removed\n", c.Path)
				continue
			}
			d, err := a.open(c.Path)
			if err != nil {
				fmt.Fprintf(a.errOut, "%s changed but could not be read: %v\n", c.Path, err)
				continue
			}
			a.remember(c.Path, d.Pages)
			fmt.Fprintf(a.out, "%s changed: %d pages\n", c.Path, d.Pages.PageCount())
		}
	}
}
