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

package registry

import (
	"testing"

	"pake/internal/pake/core"
)

func TestRegisterExactDuplicateRejected(t *testing.T) {
	r := New()
	if err := r.RegisterExact("./a.txt", nil, nil); err != nil {
		t.Fatal(err)
	}
	err := r.RegisterExact("./a.txt", nil, nil)
	if _, ok := err.(*core.DuplicateRuleError); !ok {
		t.Fatalf("expected DuplicateRuleError, got %v", err)
	}
}

func TestRegisterAfterFreezeRejected(t *testing.T) {
	r := New()
	r.Freeze()
	err := r.RegisterExact("./a.txt", nil, nil)
	if _, ok := err.(*core.RegistryFrozenError); !ok {
		t.Fatalf("expected RegistryFrozenError, got %v", err)
	}
}

func TestMatchPatternFirstRegisteredWins(t *testing.T) {
	r := New()
	if err := r.RegisterPattern(`.*\.o`, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterPattern(`a\.o`, nil, nil); err != nil {
		t.Fatal(err)
	}

	rule, _, ok := r.MatchPattern("./a.o")
	if !ok {
		t.Fatal("expected a match")
	}
	if rule.PatternSrc != `.*\.o` {
		t.Fatalf("expected first-registered pattern to win, got %q", rule.PatternSrc)
	}
}

func TestMatchPatternMatchesWithAndWithoutDotSlash(t *testing.T) {
	r := New()
	if err := r.RegisterPattern(`a\.o`, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := r.MatchPattern("./a.o"); !ok {
		t.Fatal("expected canonical form to match")
	}
}

func TestMatchPatternBackreferenceGroups(t *testing.T) {
	r := New()
	if err := r.RegisterPattern(`(.*)\.o`, []string{`\1.c`}, nil); err != nil {
		t.Fatal(err)
	}
	rule, m, ok := r.MatchPattern("./a.o")
	if !ok {
		t.Fatal("expected a match")
	}
	// The canonical form ("./a.o") is tried first and already matches in
	// full, so \1 captures "./a" here; re-canonicalizing the substituted
	// dependency name downstream makes this equivalent to matching "a.o".
	dep := core.SubstituteBackreferences(rule.PatternDeps[0], m)
	if dep != "./a.c" {
		t.Fatalf("expected ./a.c, got %q", dep)
	}
}
