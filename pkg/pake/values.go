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

package pake

import "pake/internal/pake/core"

// Absent is the sentinel value a virtual recipe returns to decline
// producing a comparable result. A target whose recipe returns Absent is
// always considered dirty — on itself and on every rule that depends on
// it — the next time it is resolved.
var Absent any = core.AbsentValue

// Unique returns a sentinel value that, returned from a virtual rule's
// recipe, forces that target — and transitively every target depending
// on it — dirty on every single build, without the recipe having to
// fabricate a distinct payload of its own each time. A file rule's
// recipe return value is ignored, so Unique has no effect there.
func Unique() any {
	return core.NewUniqueMarker()
}

// Always prepends the built-in "always" target to deps. A virtual rule
// built with Always is unconditionally dirty on every run: "always"
// itself is never reused across builds, and that propagates through the
// usual input-signature comparison like any other dirty dependency.
func Always(deps []string) []string {
	out := make([]string, 0, len(deps)+1)
	out = append(out, "always")
	out = append(out, deps...)
	return out
}
