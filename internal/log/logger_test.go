/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lastJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log %q: %v", last, err)
	}
	return m
}

// File logging writes JSON with the static and contextual attributes.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	// system temp dir: Windows refuses to delete a still-open handle in t.TempDir
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("pgc_log_%d.json", time.Now().UnixNano()))
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Output: &console})

	l := WithOperation(WithComponent("editor"), "resize")
	l.Info("handle released", slog.String("handle", "bottom-right"))

	time.Sleep(50 * time.Millisecond)

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	if m["app"] != "pagecomposer" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "editor" || m["op"] != "resize" || m["handle"] != "bottom-right" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if !strings.Contains(console.String(), "handle released") {
		t.Fatalf("console output missing record: %q", console.String())
	}
}

func TestDocumentAttrFromContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Output: &buf})
	ctx := WithDocument(context.Background(), "/tmp/story.upg")
	WithComponent("storage").InfoContext(ctx, "saved")

	m := lastJSONLine(t, buf.Bytes())
	if m["doc"] != "/tmp/story.upg" {
		t.Fatalf("doc attr = %v", m["doc"])
	}
	if _, ok := DocumentFrom(context.Background()); ok {
		t.Fatalf("empty context reported a document")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Format: "text", Output: &buf})
	L().Info("quiet")
	L().Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("level filtering wrong: %q", out)
	}
}
