/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"pagecomposer/internal/config"
	"pagecomposer/internal/crash"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "pagecomposer - page layout documents")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pagecomposer version|-v|--version                 Show version")
	fmt.Fprintln(w, "  pagecomposer new <file> [size] [landscape]          Create an empty document (A4, A5, Letter, Legal)")
	fmt.Fprintln(w, "  pagecomposer info <file>                            Print a summary of a document")
	fmt.Fprintln(w, "  pagecomposer import <txt> <file>                    Create a document holding a text file")
	fmt.Fprintln(w, "  pagecomposer export <file> <format|preset> <out> [pages]")
	fmt.Fprintln(w, "                                                      Export as pdf, png or svg, or run the web/print preset")
	fmt.Fprintln(w, "  pagecomposer thumb <file> <page> <out.png> [width]  Write a cached page thumbnail")
	fmt.Fprintln(w, "  pagecomposer apply <file> <script>                  Run an edit script against a document and save it")
	fmt.Fprintln(w, "  pagecomposer recover <file> [out]                   Write the newest autosave of a document")
	fmt.Fprintln(w, "  pagecomposer pack <file> <out.zip>                  Bundle a document with its images")
	fmt.Fprintln(w, "  pagecomposer unpack <zip> <dir>                     Extract a bundle")
	fmt.Fprintln(w, "  pagecomposer recent [n]                             List recently used documents")
	fmt.Fprintln(w, "  pagecomposer search [--raw] <query>                 Search the text of known documents")
	fmt.Fprintln(w, "  pagecomposer watch <file>                           Report changes to a document until interrupted")
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	cfg    config.AppConfig
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
	// crash is filled in by commands that hold a document in memory.
	crash *crash.Document
}

func main() {
	doc := &crash.Document{}
	defer crash.Recover(doc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, doc)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code: 0 on success,
// 1 when the command failed and 2 on bad usage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, doc *crash.Document) int {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	if doc == nil {
		doc = &crash.Document{}
	}
	a := &app{ctx: ctx, cfg: cfg, out: stdout, errOut: stderr, log: l, crash: doc}

	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "pagecomposer")
		fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "--help", "-h":
		usage(stdout)
		return 0
	case "new":
		if len(args) < 2 {
			return a.usageError("new requires <file>")
		}
		err = a.cmdNew(args[1], args[2:])
	case "info":
		if len(args) < 2 {
			return a.usageError("info requires <file>")
		}
		err = a.cmdInfo(args[1])
	case "import":
		if len(args) < 3 {
			return a.usageError("import requires <txt> and <file>")
		}
		err = a.cmdImport(args[1], args[2])
	case "export":
		if len(args) < 4 {
			return a.usageError("export requires <file>, <format|preset> and <out>")
		}
		pages := ""
		if len(args) > 4 {
			pages = args[4]
		}
		err = a.cmdExport(args[1], args[2], args[3], pages)
	case "thumb":
		if len(args) < 4 {
			return a.usageError("thumb requires <file>, <page> and <out.png>")
		}
		width := ""
		if len(args) > 4 {
			width = args[4]
		}
		err = a.cmdThumb(args[1], args[2], args[3], width)
	case "apply":
		if len(args) < 3 {
			return a.usageError("apply requires <file> and <script>")
		}
		err = a.cmdApply(args[1], args[2])
	case "recover":
		if len(args) < 2 {
			return a.usageError("recover requires <file>")
		}
		out := ""
		if len(args) > 2 {
			out = args[2]
		}
		err = a.cmdRecover(args[1], out)
	case "pack":
		if len(args) < 3 {
			return a.usageError("pack requires <file> and <out.zip>")
		}
		err = a.cmdPack(args[1], args[2])
	case "unpack":
		if len(args) < 3 {
			return a.usageError("unpack requires <zip> and <dir>")
		}
		err = a.cmdUnpack(args[1], args[2])
	case "recent":
		n := ""
		if len(args) > 1 {
			n = args[1]
		}
		err = a.cmdRecent(n)
	case "search":
		err = a.cmdSearch(args[1:])
	case "watch":
		if len(args) < 2 {
			return a.usageError("watch requires <file>")
		}
		err = a.cmdWatch(args[1])
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
	if err != nil {
		if ue, ok := err.(usageErr); ok {
			return a.usageError(string(ue))
		}
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// usageErr is returned by commands whose arguments do not parse.
type usageErr string

func (e usageErr) Error() string { return string(e) }

func (a *app) usageError(msg string) int {
	fmt.Fprintln(a.errOut, msg)
	usage(a.errOut)
	return 2
}
