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
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pagecomposer/internal/codec"
	"pagecomposer/internal/domain"
	applog "pagecomposer/internal/log"
)

const (
	// Extension is the file extension of saved documents.
	Extension = ".upg"
	// BackupsDirName holds timestamped copies next to the document.
	BackupsDirName = ".backups"
	// KeepBackups is how many backups per document Save leaves behind.
	KeepBackups = 20

	stampLayout = "20060102-150405.000"
)

// ErrNotFound is returned when a backup, thumbnail or autosave does not exist.
var ErrNotFound = errors.New("not found")

// Document is a decoded file and how it was obtained.
type Document struct {
	Path   string
	Pages  *domain.PageManager
	Report codec.Report
	// Backup is the backup file the document was read from, empty when the
	// file itself was usable.
	Backup string
}

func logger() *slog.Logger { return applog.WithComponent("storage") }

// BackupDir returns the directory holding the backups of the document at path.
func BackupDir(path string) string {
	return filepath.Join(filepath.Dir(path), BackupsDirName)
}

// Open reads and decodes the document at path. If the file cannot be read,
// or a .upg file no longer matches the document schema, the newest backup
// that does is used instead. Files that are not documents at all load as
// plain text.
func Open(path string, s domain.PageSettings) (*Document, error) {
	l := applog.WithOperation(logger(), "open").With(slog.String("path", path))
	b, err := os.ReadFile(path)
	if err != nil {
		bak, data, berr := latestValidBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
		}
		l.Warn("document unreadable, using backup", slog.String("backup", bak), slog.Any("err", err))
		return decode(path, data, s, bak), nil
	}
	if strings.EqualFold(filepath.Ext(path), Extension) {
		if verr := codec.Validate(b); verr != nil {
			if bak, data, berr := latestValidBackup(path); berr == nil {
				l.Warn("document corrupt, using backup", slog.String("backup", bak), slog.Any("err", verr))
				return decode(path, data, s, bak), nil
			}
		}
	}
	return decode(path, b, s, ""), nil
}

func decode(path string, data []byte, s domain.PageSettings, backup string) *Document {
	pm, rep := codec.Decode(data, s)
	return &Document{Path: path, Pages: pm, Report: rep, Backup: backup}
}

// SaveDocument encodes pm and writes it to path with Save.
func SaveDocument(path string, pm *domain.PageManager) error {
	data, err := codec.EncodeIndent(pm)
	if err != nil {
		return err
	}
	return Save(path, data)
}

// Save writes data to path with transactional semantics and a timestamped
// backup of the previous content (if present). Old backups beyond
// KeepBackups are pruned.
func Save(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("document path is required")
	}
	l := applog.WithOperation(logger(), "save").With(slog.String("path", path))
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	// If the file exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(path); statErr == nil {
		bpath := backupName(path, ".bak", time.Now())
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp document: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	if n, err := PruneBackups(path, KeepBackups); err != nil {
		l.Warn("prune backups failed", slog.Any("err", err))
	} else if n > 0 {
		l.Debug("pruned backups", slog.Int("removed", n))
	}
	l.Info("document saved", slog.Int("bytes", len(data)))
	return nil
}

// AutosaveCrashSnapshot writes data next to the backups of path without
// touching the document itself and returns the file written. Crash handlers
// use it; it never prunes.
func AutosaveCrashSnapshot(path string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(os.TempDir(), "untitled"+Extension)
	}
	out := backupName(path, ".autosave", time.Now())
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	if err := writeFileSync(out, data); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return out, nil
}

func backupName(path, suffix string, ts time.Time) string {
	return filepath.Join(BackupDir(path), fmt.Sprintf("%s.%s%s", filepath.Base(path), ts.Format(stampLayout), suffix))
}

// Backups lists the backup files of path, oldest first.
func Backups(path string) ([]string, error) {
	ents, err := os.ReadDir(BackupDir(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(BackupDir(path), name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// PruneBackups deletes all but the newest keep backups of path.
func PruneBackups(path string, keep int) (int, error) {
	all, err := Backups(path)
	if err != nil || keep <= 0 || len(all) <= keep {
		return 0, err
	}
	removed := 0
	for _, f := range all[:len(all)-keep] {
		if err := os.Remove(f); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		removed++
	}
	return removed, nil
}

// latestValidBackup returns the newest backup that matches the document
// schema.
func latestValidBackup(path string) (string, []byte, error) {
	all, err := Backups(path)
	if err != nil {
		return "", nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		b, err := os.ReadFile(all[i])
		if err != nil {
			continue
		}
		if codec.Validate(b) == nil {
			return all[i], b, nil
		}
	}
	return "", nil, fmt.Errorf("no usable backup: %w", ErrNotFound)
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
