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

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"pake/internal/pake/metrics"
	"pake/internal/pake/pathutil"
	"pake/internal/pake/registry"
	"pake/internal/pake/resolve"
	"pake/internal/pake/state"
)

// Engine is a host's handle on one build: the rule registry it populates
// before the first Build, and the resolver that walks it afterward.
// Registering a rule after the first Build returns RegistryFrozenError.
type Engine struct {
	root string
	reg  *registry.Registry
	res  *resolve.Engine
}

// Root returns the directory every target path is resolved relative to.
// Hosts whose recipes need an absolute path (most do, to call os.ReadFile
// or os.WriteFile) join their target names onto this.
func (e *Engine) Root() string { return e.root }

type engineConfig struct {
	statePath string
	logger    *slog.Logger
	registry  prometheus.Registerer
}

// Option configures NewEngine.
type Option func(*engineConfig)

// WithStatePath overrides the state file location, which otherwise
// defaults to ".pake-state" under root.
func WithStatePath(path string) Option {
	return func(c *engineConfig) { c.statePath = path }
}

// WithLogger supplies the logger the engine reports warnings to (e.g. a
// corrupt state file). Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithMetricsRegisterer opts the engine into Prometheus instrumentation,
// registering its counters and histogram into reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *engineConfig) { c.registry = reg }
}

// SetMetricsRegisterer opts the engine into Prometheus instrumentation
// after construction, registering its counters and histogram into reg.
// A no-op collector was installed at NewEngine time if this is never
// called. Call before the first Build; metrics observed by an
// in-progress Build are not retroactively reported into reg.
func (e *Engine) SetMetricsRegisterer(reg prometheus.Registerer) {
	e.res.Metrics = metrics.New(reg)
}

// NewEngine returns an Engine rooted at root, the directory every target
// path is resolved relative to and that ".." may never escape.
func NewEngine(root string, opts ...Option) (*Engine, error) {
	cfg := engineConfig{statePath: filepath.Join(root, state.DefaultFileName)}
	for _, o := range opts {
		o(&cfg)
	}

	reg := registry.New()
	m := metrics.New(cfg.registry)
	res, err := resolve.New(root, cfg.statePath, reg, cfg.logger, m)
	if err != nil {
		return nil, err
	}
	return &Engine{root: root, reg: reg, res: res}, nil
}

// RegisterExact registers the Exact rule that alone builds target, a
// file path canonicalized relative to the engine root.
func (e *Engine) RegisterExact(target string, deps []string, fn ExactRecipe) error {
	canonical, err := pathutil.Canonicalize(target)
	if err != nil {
		return err
	}
	return e.reg.RegisterExact(canonical, deps, fn)
}

// RegisterPattern registers a Pattern rule: regex is matched in full
// against a canonical target with no Exact rule, and depTemplates — with
// \1, \2, ... substituted from the match — become that target's
// dependencies.
func (e *Engine) RegisterPattern(regex string, depTemplates []string, fn PatternRecipe) error {
	return e.reg.RegisterPattern(regex, depTemplates, fn)
}

// RegisterVirtual registers a Virtual rule under a non-path name, kept
// verbatim rather than canonicalized as a path.
func (e *Engine) RegisterVirtual(name string, deps []string, fn ExactRecipe) error {
	return e.reg.RegisterVirtual(name, deps, fn)
}

// Alias registers name as a Virtual rule with target as its sole
// dependency; its own result is a one-element list holding target's name,
// kind and value, so it changes whenever target's result changes.
func (e *Engine) Alias(name, target string) error {
	return e.reg.RegisterVirtual(name, []string{target}, passThroughRecipe)
}

// Group registers name as a Virtual rule depending on every target in
// targets, in order — "build everything, in this order" with no result
// of its own beyond the pass-through of its dependencies.
func (e *Engine) Group(name string, targets []string) error {
	return e.reg.RegisterVirtual(name, targets, passThroughRecipe)
}

// Default marks target as the build invoked when the host is asked to
// build with no arguments, equivalent to Alias("default", target).
func (e *Engine) Default(target string) error {
	return e.Alias("default", target)
}

// Build resolves every target in order and persists the resulting state,
// returning the number of recipes invoked. No targets resolves
// ["default"], failing with NoRuleError if no default rule was
// registered. The registry is frozen against further registration on the
// first call.
func (e *Engine) Build(ctx context.Context, targets ...string) (int, error) {
	return e.res.Build(ctx, targets)
}

// passThroughRecipe is the recipe behind Alias and Group: its result is
// the ordered list of its dependencies' own results, so a change to any
// one of them changes this rule's own recorded input signature too.
func passThroughRecipe(target string, deps *DepMap) (any, error) {
	out := make([]any, 0, deps.Len())
	for _, name := range deps.Names() {
		r, _ := deps.Get(name)
		out = append(out, map[string]any{"target": name, "kind": string(r.Kind), "value": r.Value})
	}
	return out, nil
}
