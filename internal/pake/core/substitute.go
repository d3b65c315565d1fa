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

package core

import (
	"regexp"
	"strconv"
)

var backrefRe = regexp.MustCompile(`\\([0-9]+)`)

// SubstituteBackreferences expands \1, \2, ... in template against m's
// captured groups, yielding a concrete dependency target name. \0 expands
// to the full match (m.Groups[0]); an index at or beyond the number of
// captured groups expands to the empty string, the same as an unmatched
// optional group would.
func SubstituteBackreferences(template string, m Match) string {
	return backrefRe.ReplaceAllStringFunc(template, func(tok string) string {
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 0 || n >= len(m.Groups) {
			return ""
		}
		return m.Groups[n]
	})
}
