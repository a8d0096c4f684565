/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"path/filepath"

	"pagecomposer/internal/codec"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/export"
)

// DefaultThumbWidth is the pixel width of page thumbnails.
const DefaultThumbWidth = 160

// Thumbnail is a cached PNG rendering of one page.
type Thumbnail struct {
	PNG    []byte
	Width  int
	Height int
	// Cached is false when the page was rendered by this call.
	Cached bool
}

// ensurePreviewsMigrated guarantees the previews table has the columns
// needed for LRU tracking. It is safe to call multiple times.
func ensurePreviewsMigrated(ctx context.Context, db *sql.DB) error {
	cols, err := tableColumns(ctx, db, "previews")
	if err != nil {
		return err
	}
	alter := map[string]string{
		"size":        `ALTER TABLE previews ADD COLUMN size INTEGER NOT NULL DEFAULT 0`,
		"last_access": `ALTER TABLE previews ADD COLUMN last_access TEXT`,
	}
	for _, col := range []string{"size", "last_access"} {
		if cols[col] {
			continue
		}
		if _, err := db.ExecContext(ctx, alter[col]); err != nil {
			return fmt.Errorf("add %s: %w", col, err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access)`); err != nil {
		return fmt.Errorf("create access index: %w", err)
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// ContentHash identifies a document state; thumbnails rendered from another
// state are stale.
func ContentHash(pm *domain.PageManager) (string, error) {
	b, err := codec.Encode(pm)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// CachedThumbnail returns the stored thumbnail of page (zero-based) at width
// if it was rendered from the document state hash. It returns ErrNotFound
// otherwise.
func (x *Index) CachedThumbnail(ctx context.Context, path string, page, width int, hash string) (Thumbnail, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("resolve path: %w", err)
	}
	var t Thumbnail
	var id int64
	err = x.db.QueryRowContext(ctx, `SELECT id, w, h, thumb_blob FROM previews WHERE path=? AND page=? AND w=? AND doc_hash=?`,
		abs, page, width, hash).Scan(&id, &t.Width, &t.Height, &t.PNG)
	if errors.Is(err, sql.ErrNoRows) {
		return Thumbnail{}, ErrNotFound
	}
	if err != nil {
		return Thumbnail{}, fmt.Errorf("read thumbnail: %w", err)
	}
	_, _ = x.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE id=?`, x.now().UTC().Format(tsLayout), id)
	t.Cached = true
	return t, nil
}

// PutThumbnail stores t for page of path, replacing any variant of the same
// width.
func (x *Index) PutThumbnail(ctx context.Context, path string, page int, hash string, t Thumbnail) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	now := x.now().UTC().Format(tsLayout)
	_, err = x.db.ExecContext(ctx, `INSERT INTO previews(path, page, w, h, doc_hash, thumb_blob, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(path, page, w) DO UPDATE SET h=excluded.h, doc_hash=excluded.doc_hash, thumb_blob=excluded.thumb_blob,
			size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		abs, page, t.Width, t.Height, hash, t.PNG, len(t.PNG), now, now)
	if err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}
	return nil
}

// PageThumbnail returns the thumbnail of page (zero-based) of pm, rendering
// and caching it when the cache has none for the current content.
func (x *Index) PageThumbnail(ctx context.Context, path string, pm *domain.PageManager, page, width int, opt export.Options) (Thumbnail, error) {
	if width <= 0 {
		width = DefaultThumbWidth
	}
	hash, err := ContentHash(pm)
	if err != nil {
		return Thumbnail{}, err
	}
	if t, err := x.CachedThumbnail(ctx, path, page, width, hash); err == nil {
		return t, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Thumbnail{}, err
	}
	opt.Width = width
	var buf bytes.Buffer
	if err := export.PNG(&buf, pm, page, opt); err != nil {
		return Thumbnail{}, fmt.Errorf("render thumbnail: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Thumbnail{}, fmt.Errorf("read thumbnail size: %w", err)
	}
	t := Thumbnail{PNG: buf.Bytes(), Width: cfg.Width, Height: cfg.Height}
	if err := x.PutThumbnail(ctx, path, page, hash, t); err != nil {
		logger().Warn("thumbnail not cached", slog.String("path", path), slog.Int("page", page+1), slog.Any("err", err))
	}
	return t, nil
}

// PrunePreviews evicts least recently used thumbnails until at most maxBytes
// of PNG data remain. It returns the number of rows removed.
func (x *Index) PrunePreviews(ctx context.Context, maxBytes int64) (int64, error) {
	if maxBytes < 0 {
		maxBytes = 0
	}
	rows, err := x.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY COALESCE(last_access, updated_at) DESC, id DESC`)
	if err != nil {
		return 0, fmt.Errorf("list previews: %w", err)
	}
	var total int64
	var evict []int64
	for rows.Next() {
		var id, size int64
		if err := rows.Scan(&id, &size); err != nil {
			_ = rows.Close()
			return 0, err
		}
		total += size
		if total > maxBytes {
			evict = append(evict, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()
	var n int64
	for _, id := range evict {
		res, err := x.db.ExecContext(ctx, `DELETE FROM previews WHERE id=?`, id)
		if err != nil {
			return n, fmt.Errorf("evict preview: %w", err)
		}
		c, _ := res.RowsAffected()
		n += c
	}
	return n, nil
}
