/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version exposes build metadata. Release builds set the variables
// with -ldflags "-X pagecomposer/internal/version.Version=...".
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "0.1.0-dev"
	Commit  = ""
	Date    = ""
)

// String returns the version with commit and build date when known. Commit
// falls back to the VCS revision recorded by the Go toolchain.
func String() string {
	commit := Commit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	s := Version
	if commit != "" {
		s = fmt.Sprintf("%s (%s)", s, commit)
	}
	if Date != "" {
		s += " built " + Date
	}
	return s
}
