/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pagecomposer/internal/domain"
)

func TestOpenIndexCreatesWALAndVersion(t *testing.T) {
	idx := newTestIndex(t)
	ctx := testContext(t)
	var mode string
	if err := idx.db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var schema int
	if err := idx.db.QueryRowContext(ctx, "SELECT schema FROM version WHERE id=1").Scan(&schema); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d", schema)
	}
}

func TestReopenKeepsRecentList(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFileName)
	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := testContext(t)
	if err := idx.Remember(ctx, "a"+Extension, documentWith([]string{"x"})); err != nil {
		t.Fatalf("remember: %v", err)
	}
	_ = idx.Close()
	idx, err = OpenIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()
	got, err := idx.Recent(ctx, 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("recent = %v, %v", got, err)
	}
}

func TestRecentOrderAndTitles(t *testing.T) {
	idx := newTestIndex(t)
	ctx := testContext(t)
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	idx.now = func() time.Time { return clock }

	dir := t.TempDir()
	a := filepath.Join(dir, "alpha"+Extension)
	b := filepath.Join(dir, "beta"+Extension)
	if err := idx.Remember(ctx, a, documentWith([]string{"  Morning Edition\nsecond line"}, nil)); err != nil {
		t.Fatalf("remember a: %v", err)
	}
	clock = clock.Add(time.Minute)
	if err := idx.Remember(ctx, b, documentWith(nil)); err != nil {
		t.Fatalf("remember b: %v", err)
	}
	got, err := idx.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Path != b || got[1].Path != a {
		t.Fatalf("order: %+v", got)
	}
	if got[1].Title != "Morning Edition" || got[1].Pages != 2 {
		t.Fatalf("alpha entry: %+v", got[1])
	}
	if got[0].Title != "beta" {
		t.Fatalf("untitled document named %q", got[0].Title)
	}
	if !got[0].OpenedAt.Equal(clock) {
		t.Fatalf("opened at %v", got[0].OpenedAt)
	}

	// reopening moves a document to the top
	clock = clock.Add(time.Minute)
	_ = idx.Remember(ctx, a, documentWith([]string{"Morning Edition"}))
	got, _ = idx.Recent(ctx, 1)
	if len(got) != 1 || got[0].Path != a || got[0].Pages != 1 {
		t.Fatalf("after reopen: %+v", got)
	}
}

func TestTrimRecentAndForget(t *testing.T) {
	idx := newTestIndex(t)
	ctx := testContext(t)
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	idx.now = func() time.Time { clock = clock.Add(time.Second); return clock }
	dir := t.TempDir()
	for _, n := range []string{"a", "b", "c", "d"} {
		if err := idx.Remember(ctx, filepath.Join(dir, n+Extension), documentWith([]string{"word " + n})); err != nil {
			t.Fatalf("remember: %v", err)
		}
	}
	n, err := idx.TrimRecent(ctx, 2)
	if err != nil || n != 2 {
		t.Fatalf("trimmed %d, %v", n, err)
	}
	got, _ := idx.Recent(ctx, 10)
	if len(got) != 2 || filepath.Base(got[0].Path) != "d"+Extension {
		t.Fatalf("left %+v", got)
	}
	if hits, _ := idx.Search(ctx, SearchQuery{Text: "a"}); len(hits) != 0 {
		t.Fatalf("text of a trimmed document still searchable: %+v", hits)
	}
	if err := idx.Forget(ctx, got[0].Path); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if got, _ = idx.Recent(ctx, 10); len(got) != 1 {
		t.Fatalf("after forget: %+v", got)
	}
}

func TestOpenOrRebuildIndexReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFileName)
	if err := os.WriteFile(path, []byte(strings.Repeat("this is not a database. ", 400)), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, rebuilt, err := OpenOrRebuildIndex(testContext(t), path)
	if err != nil {
		t.Fatalf("open or rebuild: %v", err)
	}
	defer idx.Close()
	if !rebuilt {
		t.Fatalf("garbage file accepted")
	}
	if err := idx.Remember(testContext(t), "x"+Extension, domain.NewPageManager(domain.DefaultPageSettings())); err != nil {
		t.Fatalf("rebuilt index unusable: %v", err)
	}
	if bak, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "backups", "*.bak")); len(bak) != 1 {
		t.Fatalf("backups = %v", bak)
	}
}

func TestOpenOrRebuildIndexKeepsHealthyIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFileName)
	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Close()
	idx, rebuilt, err := OpenOrRebuildIndex(testContext(t), path)
	if err != nil || rebuilt {
		t.Fatalf("rebuilt=%v err=%v", rebuilt, err)
	}
	_ = idx.Close()
}
