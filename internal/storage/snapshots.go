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
	"path/filepath"
	"time"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(path, ts, blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, blob FROM snapshots WHERE path = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE path = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE path = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// snapshotKey is the absolute path, or the literal key for unsaved documents.
func snapshotKey(path string) (string, error) {
	if path == "" {
		return "untitled", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return abs, nil
}

// SaveAutosave stores an autosave snapshot of the document at path. An empty
// path stands for a document that was never saved.
func (x *Index) SaveAutosave(ctx context.Context, path string, blob []byte, ts time.Time) error {
	key, err := snapshotKey(path)
	if err != nil {
		return err
	}
	if _, err := x.db.ExecContext(ctx, insertSnapshotSQL, key, ts.UTC().Format(tsLayout), blob); err != nil {
		return fmt.Errorf("save autosave: %w", err)
	}
	return nil
}

// LatestAutosave returns the newest autosave of path or ErrNotFound.
func (x *Index) LatestAutosave(ctx context.Context, path string) ([]byte, time.Time, error) {
	key, err := snapshotKey(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	var tsStr string
	var blob []byte
	err = x.db.QueryRowContext(ctx, selectLatestSnapshotSQL, key).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(tsLayout, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// PruneAutosaves keeps at most keepLast autosaves of path and deletes older ones.
func (x *Index) PruneAutosaves(ctx context.Context, path string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	key, err := snapshotKey(path)
	if err != nil {
		return 0, err
	}
	res, err := x.db.ExecContext(ctx, pruneOldSnapshotsSQL, key, key, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAutosaves drops every autosave of path, e.g. after a successful save.
func (x *Index) ClearAutosaves(ctx context.Context, path string) error {
	key, err := snapshotKey(path)
	if err != nil {
		return err
	}
	_, err = x.db.ExecContext(ctx, `DELETE FROM snapshots WHERE path = ?`, key)
	return err
}
