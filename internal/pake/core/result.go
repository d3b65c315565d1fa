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

import "pake/internal/pake/hashx"

// Kind tags the variant a Result holds.
type Kind string

const (
	// KindFile is an opaque content digest for a regular file or a
	// directory listing.
	KindFile Kind = "file"
	// KindJSON is any JSON-representable scalar, array, or object.
	KindJSON Kind = "json"
	// KindAbsent marks a virtual rule that deliberately declined to
	// produce a comparable result. Absent never equals anything,
	// including another Absent — it is always dirty.
	KindAbsent Kind = "absent"
)

// Result is the tagged value produced by a target's rule: a file digest,
// a JSON value, or Absent. Two Results are Equal iff they carry the same
// Kind and equal payloads; Absent is never Equal to anything.
type Result struct {
	Kind  Kind `json:"kind"`
	Value any  `json:"value,omitempty"`

	// neverEqual marks a JSON result (such as one produced by Unique, or
	// the built-in `always` target) that must compare unequal to every
	// other Result, including a byte-identical one recorded on a prior
	// run. It is never persisted: the resolver synthesizes a fresh `always`
	// result on every run, and a virtual rule whose result carries the
	// flag is stored without an input signature, so its recipe runs again
	// on the next run and a Unique value never recurs.
	neverEqual bool
}

// FileResult builds a Result carrying a file/directory content digest.
func FileResult(digest string) Result {
	return Result{Kind: KindFile, Value: digest}
}

// JSONResult builds a Result carrying a JSON-representable value.
func JSONResult(v any) Result {
	return Result{Kind: KindJSON, Value: v}
}

// AbsentResult builds the sentinel Result for a rule that declined to
// produce a comparable output.
func AbsentResult() Result {
	return Result{Kind: KindAbsent}
}

// NeverEqualResult builds a JSON Result that compares unequal to every
// other Result, including a byte-identical one. It backs `always` and
// Unique(): both need a result that is never "reused" by the rebuild
// decision, without requiring the payload itself to vary run to run.
func NeverEqualResult(v any) Result {
	return Result{Kind: KindJSON, Value: v, neverEqual: true}
}

// IsAbsent reports whether r is the Absent sentinel.
func (r Result) IsAbsent() bool {
	return r.Kind == KindAbsent
}

// ForcesDirty reports whether r must be treated as distinct from itself
// when folded into a dependent's input signature: true for Absent (never
// equal to anything, including another Absent) and for a neverEqual
// Result (Unique(), or the built-in `always` target).
func (r Result) ForcesDirty() bool {
	return r.Kind == KindAbsent || r.neverEqual
}

// ForceDirty returns a copy of r tagged so it, too, ForcesDirty. A rule
// whose resolved dependencies include one that ForcesDirty must tag its
// own produced Result this way, or the property stops propagating the
// moment that rule's recipe happens to return a stable value — exactly
// the case of a rule one level removed from `always` or Unique().
func (r Result) ForceDirty() Result {
	r.neverEqual = true
	return r
}

// Equal reports whether r and other represent the same recorded value.
func (r Result) Equal(other Result) bool {
	if r.Kind == KindAbsent || other.Kind == KindAbsent {
		return false
	}
	if r.neverEqual || other.neverEqual {
		return false
	}
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case KindFile:
		rv, _ := r.Value.(string)
		ov, _ := other.Value.(string)
		return rv == ov
	case KindJSON:
		return jsonDeepEqual(r.Value, other.Value)
	default:
		return false
	}
}

// jsonDeepEqual compares two values after canonicalizing them through
// JSON, so that e.g. int(1) and float64(1) — which differ only in how a
// caller's Go code happened to construct them — compare equal the same
// way two loads from the state store's JSON file would.
func jsonDeepEqual(a, b any) bool {
	na, erra := hashx.Canonicalize(a)
	nb, errb := hashx.Canonicalize(b)
	if erra != nil || errb != nil {
		return false
	}
	return deepEqual(na, nb)
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
