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

// Package core holds the domain types shared by the registry, resolver,
// and state store: rules, recipes, results, and the error taxonomy. It has
// no knowledge of the filesystem layout of the engine root or of how rules
// are matched — that lives in registry and pathutil — only the vocabulary
// those packages share.
package core

import "regexp"

// RuleKind distinguishes the four rule variants of §3.
type RuleKind string

const (
	RuleExact    RuleKind = "exact"
	RulePattern  RuleKind = "pattern"
	RuleVirtual  RuleKind = "virtual"
	RuleFallback RuleKind = "fallback"
)

// Match carries the regexp match info for a Pattern rule's hit on a
// canonical target, used to substitute backreferences into the rule's
// dependency templates.
type Match struct {
	Target string
	Groups []string // Groups[0] is the full match, Groups[i] is \i
}

// DepMap is the ordered dep-name -> Result mapping a recipe receives,
// preserving the rule's declared dependency order (§3, §4.5 step 5).
type DepMap struct {
	names   []string
	results map[string]Result
}

// NewDepMap builds a DepMap from parallel slices, preserving order.
func NewDepMap(names []string, results []Result) *DepMap {
	m := &DepMap{names: append([]string(nil), names...), results: make(map[string]Result, len(names))}
	for i, n := range names {
		m.results[n] = results[i]
	}
	return m
}

// Names returns the dependency names in declaration order.
func (d *DepMap) Names() []string { return append([]string(nil), d.names...) }

// Get returns the recorded Result for a dependency name.
func (d *DepMap) Get(name string) (Result, bool) {
	r, ok := d.results[name]
	return r, ok
}

// Len reports the number of dependencies.
func (d *DepMap) Len() int { return len(d.names) }

// ExactRecipe builds the new result for an Exact file or virtual rule.
// deps preserves declaration order. The returned value is interpreted
// according to the rule's kind: ignored for file rules (the engine hashes
// the produced file itself), used verbatim (after JSON validation) for
// virtual rules.
type ExactRecipe func(target string, deps *DepMap) (any, error)

// PatternRecipe is invoked for a Pattern rule match; it additionally
// receives the Match that produced the concrete dependency names.
type PatternRecipe func(target string, deps *DepMap, m Match) (any, error)

// Rule is the variant type matched against canonical target names. Exactly
// one of the kind-specific fields is populated, selected by Kind.
type Rule struct {
	Kind RuleKind

	// Exact
	ExactTarget string
	ExactDeps   []string
	ExactFn     ExactRecipe

	// Pattern
	PatternRe    *regexp.Regexp
	PatternSrc   string
	PatternDeps  []string // templates, may contain \1, \2, ...
	PatternFn    PatternRecipe

	// Virtual
	VirtualName string
	VirtualDeps []string
	VirtualFn   ExactRecipe

	// IsBuiltinAlways marks the engine's auto-registered "always" rule.
	// The resolver bypasses the normal reuse cascade for it entirely: the
	// rule has no recipe, and the resolver synthesizes a fresh result for
	// it on every resolution that always forces dependents dirty.
	IsBuiltinAlways bool
}

