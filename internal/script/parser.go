/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"strconv"
	"strings"
)

// Parse parses an edit script.
// Syntax:
//   - One command per line: a verb followed by its arguments, separated by
//     blanks.
//   - Text arguments may be double-quoted with Go escapes ("a \"b\"\n");
//     bare words are taken as they are.
//   - '#' starts a comment outside quotes. Blank lines are skipped.
//
// Every malformed line is reported; well-formed lines are still returned.
func Parse(input string) (Script, []Error) {
	s := Script{Commands: []Command{}}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		toks, err := tokenize(scanner.Text())
		if err != nil {
			err.Line = lineNo
			errs = append(errs, *err)
			continue
		}
		if len(toks) == 0 {
			continue
		}
		cmd, err := build(toks)
		if err != nil {
			err.Line = lineNo
			errs = append(errs, *err)
			continue
		}
		cmd.LineNo = lineNo
		s.Commands = append(s.Commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return s, errs
}

type token struct {
	text   string
	quoted bool
	col    int
}

func tokenize(line string) ([]token, *Error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			return toks, nil
		case c == '"':
			end := i + 1
			for end < len(line) && line[end] != '"' {
				if line[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(line) {
				return nil, &Error{Column: i + 1, Message: "unterminated string"}
			}
			text, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return nil, &Error{Column: i + 1, Message: "bad string: " + err.Error()}
			}
			toks = append(toks, token{text: text, quoted: true, col: i + 1})
			i = end + 1
		default:
			start := i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' && line[i] != '\r' && line[i] != '"' {
				i++
			}
			toks = append(toks, token{text: line[start:i], col: start + 1})
		}
	}
	return toks, nil
}

func build(toks []token) (Command, *Error) {
	verb := strings.ToLower(toks[0].text)
	if toks[0].quoted {
		return Command{}, &Error{Column: toks[0].col, Message: "expected a command, got a string"}
	}
	a, ok := verbs[verb]
	if !ok {
		return Command{}, &Error{Column: toks[0].col, Message: "unknown command " + strconv.Quote(toks[0].text)}
	}
	args := toks[1:]
	if len(args) != a.nums+a.strs {
		return Command{}, &Error{Column: toks[0].col, Message: verb + ": want " + strconv.Itoa(a.nums+a.strs) + " arguments, got " + strconv.Itoa(len(args))}
	}
	cmd := Command{Verb: verb}
	for i, t := range args {
		if i < a.nums {
			n, err := strconv.ParseFloat(t.text, 64)
			if err != nil || t.quoted {
				return Command{}, &Error{Column: t.col, Message: verb + ": expected a number, got " + strconv.Quote(t.text)}
			}
			cmd.Nums = append(cmd.Nums, n)
			continue
		}
		cmd.Strs = append(cmd.Strs, t.text)
	}
	return cmd, nil
}
