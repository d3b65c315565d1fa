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

import "github.com/google/uuid"

// AbsentMarker is the sentinel value a virtual recipe returns to decline
// producing a comparable result (§4.1). The engine recognizes the marker
// by type and converts it to AbsentResult(); recipes never construct a
// Result themselves.
type AbsentMarker struct{}

// AbsentValue is the single AbsentMarker instance recipes return.
var AbsentValue = AbsentMarker{}

// UniqueMarker is the sentinel a recipe returns via Unique() to force its
// target unconditionally dirty on every run, without the caller having to
// fabricate a distinct payload each time.
type UniqueMarker struct{ ID string }

// NewUniqueMarker returns a UniqueMarker carrying a fresh random ID.
func NewUniqueMarker() UniqueMarker {
	return UniqueMarker{ID: uuid.New().String()}
}
