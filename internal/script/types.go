/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "fmt"

// Script is a parsed edit script: one command per non-empty line, in order.
type Script struct {
	Commands []Command
}

// Command is one line of an edit script. Nums holds the numeric arguments
// and Strs the text arguments, each in source order.
type Command struct {
	Verb   string
	Nums   []float64
	Strs   []string
	LineNo int // 1-based line number in the source
}

// Num returns the i-th numeric argument, or 0.
func (c Command) Num(i int) float64 {
	if i < len(c.Nums) {
		return c.Nums[i]
	}
	return 0
}

// Str returns the i-th text argument, or "".
func (c Command) Str(i int) string {
	if i < len(c.Strs) {
		return c.Strs[i]
	}
	return ""
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

// arity is the argument shape of a verb: nums numbers followed by strs
// text arguments.
type arity struct {
	nums, strs int
}

var verbs = map[string]arity{
	"page":         {0, 0},
	"goto":         {1, 0},
	"delete-page":  {1, 0},
	"move-page":    {2, 0},
	"rect":         {4, 0},
	"round_rect":   {4, 0},
	"ellipse":      {4, 0},
	"polygon":      {4, 0},
	"line":         {4, 0},
	"text_box":     {4, 0},
	"title_box":    {4, 0},
	"text":         {4, 1},
	"type":         {0, 1},
	"bold":         {0, 0},
	"italic":       {0, 0},
	"underline":    {0, 0},
	"font":         {0, 1},
	"size":         {1, 0},
	"fill":         {0, 1},
	"stroke":       {0, 1},
	"rotate":       {1, 0},
	"select-all":   {0, 0},
	"duplicate":    {0, 0},
	"delete":       {0, 0},
	"group":        {0, 0},
	"replace":      {0, 2},
	"replace-case": {0, 2},
	"undo":         {0, 0},
	"redo":         {0, 0},
}

// Verbs lists the known command verbs.
func Verbs() []string {
	out := make([]string, 0, len(verbs))
	for v := range verbs {
		out = append(out, v)
	}
	return out
}
