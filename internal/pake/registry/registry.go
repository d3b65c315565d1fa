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

// Package registry holds the three ordered kinds of rules a host registers
// (exact, pattern, virtual) and resolves a target name to the unique rule
// that must build it, per the precedence table in §4.3.
package registry

import (
	"fmt"
	"regexp"

	"pake/internal/pake/core"
	"pake/internal/pake/pathutil"
)

// Registry is the mutable rule table. It is not safe for concurrent use —
// the engine is single-threaded cooperative (§5) and registration is
// single-writer, finished before the first Build.
type Registry struct {
	exact    map[string]core.Rule
	virtual  map[string]core.Rule
	patterns []core.Rule

	frozen bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		exact:   make(map[string]core.Rule),
		virtual: make(map[string]core.Rule),
	}
}

// Freeze rejects further registration; called by the engine on the first
// Build.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether registration is closed.
func (r *Registry) Frozen() bool { return r.frozen }

// RegisterExact adds an Exact rule for a canonical file target. target is
// expected already canonicalized by the caller (the engine canonicalizes
// before calling in).
func (r *Registry) RegisterExact(target string, deps []string, fn core.ExactRecipe) error {
	if r.frozen {
		return &core.RegistryFrozenError{}
	}
	if _, dup := r.exact[target]; dup {
		return &core.DuplicateRuleError{Target: target}
	}
	r.exact[target] = core.Rule{Kind: core.RuleExact, ExactTarget: target, ExactDeps: deps, ExactFn: fn}
	return nil
}

// RegisterPattern appends a Pattern rule. Registration order is
// preserved and used as the tie-break among patterns that both match a
// target (§4.3, §9).
func (r *Registry) RegisterPattern(reSrc string, depTemplates []string, fn core.PatternRecipe) error {
	if r.frozen {
		return &core.RegistryFrozenError{}
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", reSrc, err)
	}
	r.patterns = append(r.patterns, core.Rule{
		Kind: core.RulePattern, PatternRe: re, PatternSrc: reSrc, PatternDeps: depTemplates, PatternFn: fn,
	})
	return nil
}

// RegisterVirtual adds a Virtual rule for a non-path target name.
func (r *Registry) RegisterVirtual(name string, deps []string, fn core.ExactRecipe) error {
	if r.frozen {
		return &core.RegistryFrozenError{}
	}
	if _, dup := r.virtual[name]; dup {
		return &core.DuplicateRuleError{Target: name}
	}
	r.virtual[name] = core.Rule{
		Kind: core.RuleVirtual, VirtualName: name, VirtualDeps: deps, VirtualFn: fn,
	}
	return nil
}

// RegisterBuiltinAlways installs the engine's "always" rule directly,
// bypassing the duplicate check and the frozen check — it is only ever
// called once, by the engine constructor, before any host registration
// can race it or before Freeze has been called. Its result is always
// synthesized by the resolver directly (a fresh never-equal token), so
// it carries no recipe of its own.
func (r *Registry) RegisterBuiltinAlways() {
	r.virtual["always"] = core.Rule{
		Kind: core.RuleVirtual, VirtualName: "always", IsBuiltinAlways: true,
	}
}

// HasVirtual reports whether a virtual rule is registered under name,
// used by the resolver to probe the raw target name before canonicalizing
// it as a path (§4.3's "probed first against the virtual map").
func (r *Registry) HasVirtual(name string) bool {
	_, ok := r.virtual[name]
	return ok
}

// Virtual returns the Virtual rule registered under name.
func (r *Registry) Virtual(name string) (core.Rule, bool) {
	rule, ok := r.virtual[name]
	return rule, ok
}

// Exact returns the Exact rule registered for a canonical path.
func (r *Registry) Exact(canonical string) (core.Rule, bool) {
	rule, ok := r.exact[canonical]
	return rule, ok
}

// MatchPattern returns the first (registration-order) Pattern rule whose
// regex matches canonical in full, tried against both the canonical form
// and the form without its leading "./" (§9: prefer the longer match when
// both succeed — they agree on groups by construction since one is a
// prefix-stripped form of the other, so "longer" only matters for which
// string produced Match.Target).
func (r *Registry) MatchPattern(canonical string) (core.Rule, core.Match, bool) {
	stripped := pathutil.WithoutDotSlash(canonical)
	for _, rule := range r.patterns {
		if groups := fullMatch(rule.PatternRe, canonical); groups != nil {
			return rule, core.Match{Target: canonical, Groups: groups}, true
		}
		if stripped != canonical {
			if groups := fullMatch(rule.PatternRe, stripped); groups != nil {
				return rule, core.Match{Target: stripped, Groups: groups}, true
			}
		}
	}
	return core.Rule{}, core.Match{}, false
}

func fullMatch(re *regexp.Regexp, s string) []string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return nil
	}
	groups := make([]string, 0, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, s[loc[i]:loc[i+1]])
	}
	return groups
}
