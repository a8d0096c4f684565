/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package codec converts documents to and from their persisted JSON form.
// The same bytes serve as undo snapshots and as file content. Decoding never
// fails: input that is not a recognizable document becomes a one-page
// document whose single text box holds the input verbatim.
package codec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/encoding/charmap"

	"pagecomposer/internal/domain"
	applog "pagecomposer/internal/log"
)

//go:embed document.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Schema returns the embedded JSON schema of the persisted format.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

// Validate checks data against the embedded schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if !res.Valid() {
		errs := res.Errors()
		return fmt.Errorf("document does not match schema: %s (%d problems)", errs[0], len(errs))
	}
	return nil
}

// Report tells the caller what decoding had to recover from.
type Report struct {
	// Fallback is set when the input was loaded as plain text.
	Fallback bool
	// Legacy is set for documents written before the paged format.
	Legacy bool
	// Skipped counts items of unknown type.
	Skipped int
	// RepairedLinks counts link pointers dropped because they were not reciprocated.
	RepairedLinks int
	// Reason holds the validation error that caused a fallback.
	Reason error
}

func logger() *slog.Logger { return applog.WithComponent("codec") }

// Encode serializes every page and the current page index.
func Encode(pm *domain.PageManager) ([]byte, error) {
	doc := wireDoc{Version: FormatVersion, CurrentPage: pm.CurrentIndex()}
	for _, p := range pm.Pages() {
		doc.Pages = append(doc.Pages, toWirePage(p))
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// EncodeIndent is Encode with human-readable indentation for files.
func EncodeIndent(pm *domain.PageManager) ([]byte, error) {
	b, err := Encode(pm)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodePage serializes a single page.
func EncodePage(p *domain.Page) ([]byte, error) {
	b, err := json.Marshal(toWirePage(p))
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return b, nil
}

// Decode rebuilds a document. Pages are created with s where the input is
// silent, and s becomes the manager's settings for pages added later.
func Decode(data []byte, s domain.PageSettings) (*domain.PageManager, Report) {
	var rep Report
	if err := Validate(data); err != nil {
		return fallback(data, s, err), Report{Fallback: true, Reason: err}
	}
	trimmed := bytes.TrimSpace(data)
	var pages []*domain.Page
	current := 0
	seen := map[string]bool{}
	switch trimmed[0] {
	case '[':
		var items []wireItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fallback(data, s, err), Report{Fallback: true, Reason: err}
		}
		rep.Legacy = true
		pages = []*domain.Page{buildPage(wirePage{Items: items}, s, seen, &rep)}
	default:
		var probe struct {
			Pages json.RawMessage `json:"pages"`
		}
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return fallback(data, s, err), Report{Fallback: true, Reason: err}
		}
		if probe.Pages == nil {
			var wp wirePage
			if err := json.Unmarshal(trimmed, &wp); err != nil {
				return fallback(data, s, err), Report{Fallback: true, Reason: err}
			}
			pages = []*domain.Page{buildPage(wp, s, seen, &rep)}
			break
		}
		var doc wireDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return fallback(data, s, err), Report{Fallback: true, Reason: err}
		}
		for _, wp := range doc.Pages {
			pages = append(pages, buildPage(wp, s, seen, &rep))
		}
		current = doc.CurrentPage
	}
	pm := domain.FromPages(s, pages, current)
	rep.RepairedLinks = domain.RepairLinks(pm)
	if rep.Skipped > 0 || rep.RepairedLinks > 0 {
		logger().Warn("document decoded with repairs", slog.Int("skipped_items", rep.Skipped), slog.Int("repaired_links", rep.RepairedLinks))
	}
	return pm, rep
}

// DecodePage rebuilds one page from EncodePage output. Links to objects
// outside the page are dropped.
func DecodePage(data []byte, s domain.PageSettings) (*domain.Page, Report) {
	pm, rep := Decode(data, s)
	return pm.Pages()[0], rep
}

// buildPage keeps identities unique across the document; a repeated ID gets
// a fresh one.
func buildPage(wp wirePage, s domain.PageSettings, seen map[string]bool, rep *Report) *domain.Page {
	p := &domain.Page{Width: wp.Width, Height: wp.Height, Background: s.Background}
	if p.Width <= 0 {
		p.Width = s.Width
	}
	if p.Height <= 0 {
		p.Height = s.Height
	}
	if wp.Background != nil {
		p.Background = *wp.Background
	}
	for _, wi := range wp.Items {
		o, ok := fromWireItem(wi, s)
		if !ok {
			rep.Skipped++
			logger().Debug("skipping unknown item", slog.String("type", wi.Type))
			continue
		}
		if seen[o.ID] {
			o.ID = domain.NewID()
		}
		seen[o.ID] = true
		p.Insert(o)
	}
	return p
}

// fallback loads input that is not a document as plain text: one page holding
// a single locked text box over the text area.
func fallback(data []byte, s domain.PageSettings, reason error) *domain.PageManager {
	logger().Info("loading input as plain text", slog.Int("bytes", len(data)), slog.String("reason", reason.Error()))
	a := s.TextArea()
	tb := domain.NewTextBox(a.X, a.Y, a.W, a.H, true, domain.DefaultRun(s.Font, s.FontSize))
	tb.Runs[0].Text = plainText(data)
	p := &domain.Page{Width: s.Width, Height: s.Height, Background: s.Background}
	p.Add(tb)
	return domain.FromPages(s, []*domain.Page{p}, 0)
}

// plainText returns data as valid UTF-8 so that snapshots reproduce it
// exactly. Input that is not UTF-8 is read as Windows-1252.
func plainText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if b, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}
