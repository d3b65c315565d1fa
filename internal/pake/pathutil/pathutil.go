// pake is a content-addressed build engine.
// Copyright (C) 2026 The pake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package pathutil canonicalizes raw target strings into the form the
// registry and resolver key their maps by, and enforces the "within root"
// invariant (§3).
package pathutil

import (
	"path"
	"strings"

	"pake/internal/pake/core"
)

// Canonicalize maps a raw file-path target string to its canonical form: a
// lexically normalized relative path with a leading "./" prefix. ".."
// segments that would resolve outside the root are rejected with
// OutOfRootError. Normalization is purely lexical (path.Clean), never
// touching the filesystem — a target need not exist to be canonicalized.
func Canonicalize(raw string) (string, error) {
	cleaned := path.Clean(raw)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &core.OutOfRootError{Target: raw}
	}
	return "./" + strings.TrimPrefix(cleaned, "./"), nil
}

// WithoutDotSlash strips a leading "./" from a canonical path, used when
// matching a Pattern rule's regex against both forms (§9).
func WithoutDotSlash(canonical string) string {
	return strings.TrimPrefix(canonical, "./")
}
