/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pagecomposer/internal/codec"
	"pagecomposer/internal/editor"
	"pagecomposer/internal/imagefill"
	"pagecomposer/internal/script"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/vector"
)

// keepAutosaves is how many autosaves of one document the index retains.
const keepAutosaves = 5

// cmdApply runs an edit script against a document in an editing session and
// saves the result. The session is autosaved to the index while the script
// runs; a clean finish clears those autosaves.
func (a *app) cmdApply(path, scriptPath string) error {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	sc, errs := script.Parse(string(src))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(a.errOut, "%s:%s\n", scriptPath, e.Error())
		}
		return fmt.Errorf("script has %d errors", len(errs))
	}

	d, err := a.open(path)
	if err != nil {
		return err
	}
	data, err := codec.Encode(d.Pages)
	if err != nil {
		return err
	}
	ec := a.cfg.EditorConfig()
	ec.Images = imagefill.FileResolver{Root: filepath.Dir(path)}
	s := editor.NewSession(ec)
	s.Load(data)
	a.crash.Path = path
	a.crash.Snapshot = s.Snapshot

	idx, err := a.openIndex()
	if err != nil {
		a.log.Warn("autosave disabled", slog.Any("err", err))
	} else {
		defer idx.Close()
	}
	interval := a.cfg.General.AutosaveInterval
	last := time.Now()
	l := a.log.With(slog.String("path", path))

	applied := 0
	for _, c := range sc.Commands {
		if err := a.ctx.Err(); err != nil {
			return fmt.Errorf("interrupted at line %d: %w", c.LineNo, err)
		}
		if execute(s, c) {
			applied++
		} else {
			fmt.Fprintf(a.errOut, "%s:%d: %s had no effect\n", scriptPath, c.LineNo, c.Verb)
		}
		if idx != nil && interval > 0 && time.Since(last) >= interval {
			a.autosave(idx, path, s)
			last = time.Now()
		}
	}

	if s.Dirty() {
		out, err := s.Save()
		if err != nil {
			return err
		}
		if err := storage.Save(path, out); err != nil {
			return err
		}
	}
	if idx != nil {
		if err := idx.ClearAutosaves(a.ctx, path); err != nil {
			l.Warn("autosaves not cleared", slog.Any("err", err))
		}
	}
	a.remember(path, s.Document())
	l.Info("script applied", slog.Int("commands", len(sc.Commands)), slog.Int("applied", applied))
	fmt.Fprintf(a.out, "Applied %d of %d commands to %s\n", applied, len(sc.Commands), path)
	return nil
}

func (a *app) autosave(idx *storage.Index, path string, s *editor.Session) {
	blob, err := s.Snapshot()
	if err != nil {
		a.log.Warn("autosave snapshot failed", slog.Any("err", err))
		return
	}
	if err := idx.SaveAutosave(a.ctx, path, blob, time.Now()); err != nil {
		a.log.Warn("autosave failed", slog.Any("err", err))
		return
	}
	if _, err := idx.PruneAutosaves(a.ctx, path, keepAutosaves); err != nil {
		a.log.Warn("prune autosaves failed", slog.Any("err", err))
	}
}

// execute runs one command. It reports false when the session rejected it.
func execute(s *editor.Session, c script.Command) bool {
	switch c.Verb {
	case "page":
		return s.NewPage() >= 0
	case "goto":
		return s.SwitchPage(int(c.Num(0)) - 1)
	case "delete-page":
		return s.DeletePage(int(c.Num(0)) - 1)
	case "move-page":
		return s.MovePage(int(c.Num(0))-1, int(c.Num(1))-1)
	case "rect", "round_rect", "ellipse", "polygon", "text_box", "title_box":
		tool, _ := editor.ParseTool(c.Verb)
		_, ok := create(s, tool, vector.Pt{X: c.Num(0), Y: c.Num(1)}, vector.Pt{X: c.Num(0) + c.Num(2), Y: c.Num(1) + c.Num(3)})
		return ok
	case "line":
		_, ok := create(s, editor.ToolLine, vector.Pt{X: c.Num(0), Y: c.Num(1)}, vector.Pt{X: c.Num(2), Y: c.Num(3)})
		return ok
	case "text":
		id, ok := create(s, editor.ToolTextBox, vector.Pt{X: c.Num(0), Y: c.Num(1)}, vector.Pt{X: c.Num(0) + c.Num(2), Y: c.Num(1) + c.Num(3)})
		if !ok || !s.BeginEditText(id, 0) {
			return false
		}
		return c.Str(0) == "" || s.InsertText(c.Str(0))
	case "type":
		return s.InsertText(c.Str(0))
	case "bold":
		return s.SetBold(true)
	case "italic":
		return s.SetItalic(true)
	case "underline":
		return s.SetUnderline(true)
	case "font":
		return s.SetFontFamily(c.Str(0))
	case "size":
		return s.SetFontSize(c.Num(0))
	case "fill", "stroke":
		col, err := vector.ParseColor(c.Str(0))
		if err != nil {
			return false
		}
		if c.Verb == "fill" {
			return s.SetFillColor(col)
		}
		return s.SetStrokeColor(col)
	case "rotate":
		return s.SetRotation(c.Num(0))
	case "select-all":
		return s.SelectAll() > 0
	case "duplicate":
		return len(s.DuplicateSelection()) > 0
	case "delete":
		return s.DeleteSelection() > 0
	case "group":
		_, ok := s.GroupSelection()
		return ok
	case "replace", "replace-case":
		return s.ReplaceAll(c.Str(0), c.Str(1), strings.HasSuffix(c.Verb, "-case")) > 0
	case "undo":
		return s.Undo()
	case "redo":
		return s.Redo()
	}
	return false
}

// create drags out a new object from a to b.
func create(s *editor.Session, tool editor.Tool, a, b vector.Pt) (string, bool) {
	if !s.BeginCreate(tool, a) {
		return "", false
	}
	return s.EndCreate(b)
}
