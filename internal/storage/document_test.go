/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pagecomposer/internal/domain"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story"+Extension)
	pm := documentWith([]string{"Chapter one"}, []string{"The end"})
	if err := SaveDocument(path, pm); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, err := Open(path, domain.DefaultPageSettings())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Backup != "" || doc.Report.Fallback {
		t.Fatalf("clean file read as backup or plain text: %+v", doc)
	}
	if doc.Pages.PageCount() != 2 {
		t.Fatalf("pages = %d", doc.Pages.PageCount())
	}
	if got := strings.Join(plainTexts(doc.Pages), "|"); got != "Chapter one|The end" {
		t.Fatalf("texts = %q", got)
	}
	if bs, _ := Backups(path); len(bs) != 0 {
		t.Fatalf("first save left backups: %v", bs)
	}
}

func TestSaveBacksUpPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc"+Extension)
	if err := Save(path, []byte("first")); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if err := Save(path, []byte("second")); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	bs, err := Backups(path)
	if err != nil || len(bs) != 1 {
		t.Fatalf("backups = %v, %v", bs, err)
	}
	if b, _ := os.ReadFile(bs[0]); string(b) != "first" {
		t.Fatalf("backup holds %q", b)
	}
	if b, _ := os.ReadFile(path); string(b) != "second" {
		t.Fatalf("file holds %q", b)
	}
	// no temp files left behind
	ents, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left: %s", e.Name())
		}
	}
}

func TestOpenCorruptFileUsesNewestValidBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc"+Extension)
	if err := SaveDocument(path, documentWith([]string{"kept"})); err != nil {
		t.Fatalf("save: %v", err)
	}
	// the second save backs up the first
	if err := SaveDocument(path, documentWith([]string{"latest"})); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"pages": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path, domain.DefaultPageSettings())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Backup == "" || doc.Report.Fallback {
		t.Fatalf("backup not used: %+v", doc)
	}
	if got := plainTexts(doc.Pages); len(got) != 1 || got[0] != "kept" {
		t.Fatalf("texts = %q", got)
	}
}

func TestOpenMissingFileUsesBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc"+Extension)
	_ = SaveDocument(path, documentWith([]string{"one"}))
	_ = SaveDocument(path, documentWith([]string{"two"}))
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path, domain.DefaultPageSettings())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Backup == "" {
		t.Fatalf("expected backup")
	}
}

func TestOpenMissingFileWithoutBackupFails(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"+Extension), domain.DefaultPageSettings())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenPlainTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("just words"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(path, domain.DefaultPageSettings())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !doc.Report.Fallback || doc.Backup != "" {
		t.Fatalf("report: %+v", doc.Report)
	}
	if got := plainTexts(doc.Pages); len(got) != 1 || got[0] != "just words" {
		t.Fatalf("texts = %q", got)
	}
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc"+Extension)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		name := backupName(path, ".bak", base.Add(time.Duration(i)*time.Minute))
		if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(name, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	n, err := PruneBackups(path, 2)
	if err != nil || n != 3 {
		t.Fatalf("pruned %d, %v", n, err)
	}
	bs, _ := Backups(path)
	if len(bs) != 2 {
		t.Fatalf("left %v", bs)
	}
	if b, _ := os.ReadFile(bs[1]); string(b) != "e" {
		t.Fatalf("newest backup lost")
	}
}

func TestAutosaveCrashSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc"+Extension)
	out, err := AutosaveCrashSnapshot(path, []byte("rescued"))
	if err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if filepath.Dir(out) != BackupDir(path) || !strings.HasSuffix(out, ".autosave") {
		t.Fatalf("unexpected location %s", out)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("document itself was written")
	}
	if bs, _ := Backups(path); len(bs) != 0 {
		t.Fatalf("autosave listed as backup")
	}
}
