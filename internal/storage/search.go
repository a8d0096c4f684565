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
	"fmt"
	"path/filepath"
	"strings"
)

// SearchQuery describes a text search over indexed documents.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Path restricts results to one document. Limit/Offset implement pagination;
// reasonable defaults applied if zero.
type SearchQuery struct {
	Text   string
	Path   string
	Limit  int
	Offset int
}

// SearchResult is one matching text box. Snippet marks hits with [ ].
type SearchResult struct {
	Path     string
	Title    string
	Page     int
	ObjectID string
	Snippet  string
}

// Search performs full-text search over the text boxes of every remembered
// document. An empty query returns nothing.
func (x *Index) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}
	var args []any
	var sb strings.Builder
	sb.WriteString("SELECT d.path, d.title, t.page, t.object_id, snippet(fts_texts, 0, '[', ']', '…', 10)\n")
	sb.WriteString("FROM fts_texts JOIN texts t ON fts_texts.rowid = t.text_id JOIN documents d ON d.doc_id = t.doc_id\n")
	sb.WriteString("WHERE fts_texts MATCH ?\n")
	args = append(args, q.Text)
	if strings.TrimSpace(q.Path) != "" {
		abs, err := filepath.Abs(q.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		sb.WriteString(" AND d.path = ?\n")
		args = append(args, abs)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.opened_at DESC, t.page, t.text_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := x.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Page, &r.ObjectID, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PhraseQuery quotes s as a single FTS5 phrase so user input with operators
// or punctuation is matched literally.
func PhraseQuery(s string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(s), `"`, `""`) + `"`
}
