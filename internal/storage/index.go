/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pagecomposer/internal/domain"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName is the per-user directory under the OS cache dir.
	IndexDirName  = "pagecomposer"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2

	// tsLayout has a fixed width so stored timestamps sort as text.
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

// Index is the embedded SQLite database shared by every document a user
// opens. It is safe for concurrent use.
type Index struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// DefaultIndexPath returns <user cache dir>/pagecomposer/index.sqlite.
func DefaultIndexPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(dir, IndexDirName, IndexFileName), nil
}

// OpenIndex ensures that the index exists at path, opens the database,
// enables WAL mode, and ensures the meta/version tables and the schema exist.
func OpenIndex(path string) (*Index, error) {
	l := applog.WithOperation(logger(), "index_init").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Set reasonable connection pool limits for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready")
	return &Index{db: db, path: path, now: time.Now}, nil
}

// OpenOrRebuildIndex opens the index at path. When the file cannot be opened
// or fails an integrity check it is backed up, removed and created afresh;
// the bool reports that.
func OpenOrRebuildIndex(ctx context.Context, path string) (*Index, bool, error) {
	idx, err := OpenIndex(path)
	if err == nil {
		if idx.healthy(ctx) {
			return idx, false, nil
		}
		_ = idx.Close()
	}
	logger().Warn("rebuilding index", slog.String("path", path), slog.Any("open_err", err))
	backupIndexFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	idx, err = OpenIndex(path)
	if err != nil {
		return nil, false, fmt.Errorf("rebuild index: %w", err)
	}
	return idx, true, nil
}

func (x *Index) healthy(ctx context.Context) bool {
	var chk string
	if err := x.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		return false
	}
	_, err := x.db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`)
	return err == nil
}

// Path is the database file.
func (x *Index) Path() string { return x.path }

func (x *Index) Close() error { return x.db.Close() }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh DB starts at the current schema
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// written by a newer build; never downgrade
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// documents gained title and page count for the recent list
			cols, err := tableColumns(ctx, db, "documents")
			if err != nil {
				return err
			}
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			var stmts []string
			if !cols["title"] {
				stmts = append(stmts, `ALTER TABLE documents ADD COLUMN title TEXT NOT NULL DEFAULT ''`)
			}
			if !cols["pages"] {
				stmts = append(stmts, `ALTER TABLE documents ADD COLUMN pages INTEGER NOT NULL DEFAULT 0`)
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// best-effort; an empty FTS table has nothing to merge
			_, _ = db.ExecContext(ctx, `INSERT INTO fts_texts(fts_texts) VALUES('optimize')`)
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per document path; the recent list.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id    INTEGER PRIMARY KEY,
			path      TEXT    NOT NULL UNIQUE,
			title     TEXT    NOT NULL DEFAULT '',
			pages     INTEGER NOT NULL DEFAULT 0,
			opened_at TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_opened ON documents(opened_at);`,

		// Text box content, one row per box.
		`CREATE TABLE IF NOT EXISTS texts (
			text_id   INTEGER PRIMARY KEY,
			doc_id    INTEGER NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
			page      INTEGER NOT NULL,
			object_id TEXT    NOT NULL,
			text      TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_texts_doc ON texts(doc_id);`,

		// External-content FTS5 index fed from texts via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_texts USING fts5(
			text,
			content='texts',
			content_rowid='text_id',
			tokenize = 'unicode61'
		);`,

		// Page thumbnails keyed by document content hash.
		`CREATE TABLE IF NOT EXISTS previews (
			id          INTEGER PRIMARY KEY,
			path        TEXT    NOT NULL,
			page        INTEGER NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			doc_hash    TEXT    NOT NULL,
			thumb_blob  BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			updated_at  TEXT    NOT NULL,
			last_access TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(path, page, w);`,

		// Autosave snapshots of unsaved work.
		`CREATE TABLE IF NOT EXISTS snapshots (
			id   INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			ts   TEXT NOT NULL,
			blob BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_path_ts ON snapshots(path, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS texts_ai AFTER INSERT ON texts BEGIN
			INSERT INTO fts_texts(rowid, text) VALUES (new.text_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS texts_ad AFTER DELETE ON texts BEGIN
			INSERT INTO fts_texts(fts_texts, rowid, text) VALUES ('delete', old.text_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS texts_au AFTER UPDATE OF text ON texts BEGIN
			INSERT INTO fts_texts(fts_texts, rowid, text) VALUES ('delete', old.text_id, old.text);
			INSERT INTO fts_texts(rowid, text) VALUES (new.text_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	// Older indexes lack the LRU columns of previews
	return ensurePreviewsMigrated(ctx, db)
}

// backupIndexFile copies the current index file into a timestamped backup
// in a backups directory next to it.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// RecentDocument is one entry of the recent-documents list.
type RecentDocument struct {
	Path     string
	Title    string
	Pages    int
	OpenedAt time.Time
}

// Remember records path as opened now and replaces its indexed text with the
// text boxes of pm. Thumbnails are keyed by content and are left alone.
func (x *Index) Remember(ctx context.Context, path string, pm *domain.PageManager) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := x.now().UTC().Format(tsLayout)
	if _, err := tx.ExecContext(ctx, `INSERT INTO documents(path, title, pages, opened_at) VALUES(?,?,?,?)
		ON CONFLICT(path) DO UPDATE SET title=excluded.title, pages=excluded.pages, opened_at=excluded.opened_at`,
		abs, documentTitle(abs, pm), pm.PageCount(), now); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	var docID int64
	if err := tx.QueryRowContext(ctx, `SELECT doc_id FROM documents WHERE path=?`, abs).Scan(&docID); err != nil {
		return fmt.Errorf("read document id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM texts WHERE doc_id=?`, docID); err != nil {
		return fmt.Errorf("clear texts: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO texts(doc_id, page, object_id, text) VALUES(?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	rows := 0
	for i, p := range pm.Pages() {
		for _, o := range p.ZOrdered() {
			if o.Kind != domain.KindText {
				continue
			}
			s := strings.TrimSpace(domain.PlainText(o.Runs))
			if s == "" {
				continue
			}
			if _, err := ins.ExecContext(ctx, docID, i+1, o.ID, s); err != nil {
				return fmt.Errorf("insert text: %w", err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	applog.WithOperation(logger(), "remember").Debug("document indexed", slog.String("path", abs), slog.Int("texts", rows))
	return nil
}

// documentTitle is the first line of the first text on page 1, or the file
// name without extension.
func documentTitle(path string, pm *domain.PageManager) string {
	if p, ok := pm.Page(0); ok {
		for _, o := range p.ZOrdered() {
			if o.Kind != domain.KindText {
				continue
			}
			first, _, _ := strings.Cut(strings.TrimSpace(domain.PlainText(o.Runs)), "\n")
			if first = strings.TrimSpace(first); first != "" {
				if r := []rune(first); len(r) > 80 {
					first = string(r[:80])
				}
				return first
			}
		}
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Recent returns up to limit documents, most recently opened first.
func (x *Index) Recent(ctx context.Context, limit int) ([]RecentDocument, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := x.db.QueryContext(ctx, `SELECT path, title, pages, opened_at FROM documents ORDER BY opened_at DESC, doc_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent query: %w", err)
	}
	defer rows.Close()
	var out []RecentDocument
	for rows.Next() {
		var r RecentDocument
		var ts string
		if err := rows.Scan(&r.Path, &r.Title, &r.Pages, &ts); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.OpenedAt, _ = time.Parse(tsLayout, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TrimRecent forgets all but the keep most recently opened documents.
func (x *Index) TrimRecent(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	stale, err := x.db.QueryContext(ctx, `SELECT path FROM documents ORDER BY opened_at DESC, doc_id DESC LIMIT -1 OFFSET ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("trim query: %w", err)
	}
	var paths []string
	for stale.Next() {
		var p string
		if err := stale.Scan(&p); err != nil {
			_ = stale.Close()
			return 0, err
		}
		paths = append(paths, p)
	}
	_ = stale.Close()
	var n int64
	for _, p := range paths {
		if err := x.Forget(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Forget drops path from the recent list together with its indexed text and
// thumbnails. Autosaves are kept.
func (x *Index) Forget(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	stmts := []string{
		`DELETE FROM texts WHERE doc_id IN (SELECT doc_id FROM documents WHERE path=?)`,
		`DELETE FROM documents WHERE path=?`,
		`DELETE FROM previews WHERE path=?`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, abs); err != nil {
			return fmt.Errorf("forget document: %w", err)
		}
	}
	return tx.Commit()
}
