/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codec

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// Older documents stored text box content as rich-text HTML in a "content"
// field. runsFromHTML turns that markup into runs: inline tags and the CSS
// properties of style attributes set the format, block elements become line
// breaks.

var blockTags = map[string]bool{"p": true, "div": true, "li": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

func runsFromHTML(src string, base domain.TextRun) []domain.TextRun {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		r := base
		r.Text = src
		return []domain.TextRun{r}
	}
	root := findElement(doc, "body")
	if root == nil {
		root = doc
	}
	w := &runWriter{}
	w.walk(root, base)
	runs := domain.NormalizeRuns(w.runs)
	if len(runs) == 0 {
		r := base
		r.Text = ""
		return []domain.TextRun{r}
	}
	// trailing paragraph break
	last := &runs[len(runs)-1]
	last.Text = strings.TrimRight(last.Text, "\n")
	return domain.NormalizeRuns(runs)
}

type runWriter struct {
	runs      []domain.TextRun
	needBreak bool
}

func (w *runWriter) emit(text string, f domain.TextRun) {
	if text == "" {
		return
	}
	if w.needBreak && len(w.runs) > 0 {
		br := f
		br.Text = "\n"
		w.runs = append(w.runs, br)
	}
	w.needBreak = false
	f.Text = text
	w.runs = append(w.runs, f)
}

func (w *runWriter) walk(n *html.Node, f domain.TextRun) {
	switch n.Type {
	case html.TextNode:
		// indentation between tags
		if strings.TrimSpace(n.Data) == "" && strings.ContainsAny(n.Data, "\r\n") {
			return
		}
		w.emit(n.Data, f)
		return
	case html.ElementNode:
		switch n.Data {
		case "head", "style", "script", "title":
			return
		case "br":
			w.emit("\n", f)
			return
		case "b", "strong":
			f.Bold = true
		case "i", "em":
			f.Italic = true
		case "u":
			f.Underline = true
		case "font":
			if face := attr(n, "face"); face != "" {
				f.Font = face
			}
			if c, err := vector.ParseColor(attr(n, "color")); err == nil {
				f.Color = c
			}
		}
		applyStyle(&f, attr(n, "style"))
		if blockTags[n.Data] {
			w.needBreak = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, f)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		w.needBreak = true
	}
}

// applyStyle reads the inline CSS properties rich-text editors emit.
func applyStyle(f *domain.TextRun, style string) {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		switch k {
		case "font-family":
			first, _, _ := strings.Cut(v, ",")
			if fam := strings.Trim(strings.TrimSpace(first), `'"`); fam != "" {
				f.Font = fam
			}
		case "font-size":
			if size, ok := parseFontSize(v); ok {
				f.Size = size
			}
		case "font-weight":
			if v == "bold" || v == "bolder" {
				f.Bold = true
			} else if n, err := strconv.Atoi(v); err == nil {
				f.Bold = n >= 600
			} else if v == "normal" {
				f.Bold = false
			}
		case "font-style":
			f.Italic = v == "italic" || v == "oblique"
		case "text-decoration", "text-decoration-line":
			f.Underline = strings.Contains(v, "underline")
		case "color":
			if c, err := vector.ParseColor(v); err == nil {
				f.Color = c
			}
		}
	}
}

// parseFontSize accepts pt and px values; px are converted at 96 dpi.
func parseFontSize(v string) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	scale := 1.0
	switch {
	case strings.HasSuffix(v, "pt"):
		v = strings.TrimSuffix(v, "pt")
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
		scale = 0.75
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n * scale, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
