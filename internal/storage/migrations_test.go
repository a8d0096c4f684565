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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestMigrations_UpgradeV1ToV2 ensures that an older DB (schema=1) gets the
// title and page count columns of the recent list.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE documents (doc_id INTEGER PRIMARY KEY, path TEXT NOT NULL UNIQUE, opened_at TEXT NOT NULL);`,
		`INSERT INTO documents(path, opened_at) VALUES('/tmp/old.upg', '2020-01-01T00:00:00.000000000Z');`,
		`CREATE TABLE previews (id INTEGER PRIMARY KEY, path TEXT NOT NULL, page INTEGER NOT NULL, w INTEGER NOT NULL, h INTEGER NOT NULL, doc_hash TEXT NOT NULL, thumb_blob BLOB NOT NULL, updated_at TEXT NOT NULL);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("exec %q: %v", q, err)
		}
	}
	_ = db.Close()

	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer idx.Close()
	var schema int
	if err := idx.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
	cols, err := tableColumns(ctx, idx.db, "documents")
	if err != nil {
		t.Fatal(err)
	}
	if !cols["title"] || !cols["pages"] {
		t.Fatalf("documents columns: %v", cols)
	}
	if cols, _ = tableColumns(ctx, idx.db, "previews"); !cols["last_access"] || !cols["size"] {
		t.Fatalf("previews columns: %v", cols)
	}
	got, err := idx.Recent(ctx, 5)
	if err != nil || len(got) != 1 || got[0].Title != "" {
		t.Fatalf("old row: %+v, %v", got, err)
	}
}
