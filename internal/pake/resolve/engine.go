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

// Package resolve implements the target resolver/scheduler: the
// recursive resolve(T) algorithm of §4.5, built on top of registry
// (rule matching), state (persistence), and hashx (content digests).
package resolve

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"pake/internal/pake/core"
	"pake/internal/pake/hashx"
	"pake/internal/pake/metrics"
	"pake/internal/pake/registry"
	"pake/internal/pake/state"
)

// Engine drives one or more Build calls against a fixed registry and
// engine root. Registration must finish (and the registry be frozen)
// before the first Build; repeated Build calls each reload state from
// disk and start a fresh per-run memo table, as separate process
// invocations would.
type Engine struct {
	Root      string
	Reg       *registry.Registry
	StatePath string
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	cache     *hashx.Cache
}

// New constructs an Engine and installs the built-in "always" virtual
// rule into reg. logger and m may be nil; sensible defaults are used.
func New(root, statePath string, reg *registry.Registry, logger *slog.Logger, m *metrics.Metrics) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	cache, err := hashx.NewCache(4096)
	if err != nil {
		return nil, err
	}
	reg.RegisterBuiltinAlways()
	return &Engine{
		Root:      root,
		Reg:       reg,
		StatePath: statePath,
		Logger:    logger,
		Metrics:   m,
		cache:     cache,
	}, nil
}

// Build resolves every target in targets in order and persists the
// resulting state, returning the number of recipes invoked. An empty
// targets resolves ["default"], failing with NoRuleError if no default
// virtual rule is registered (§6: "exit 2 if absent").
//
// Build freezes the registry on first use. A BuildError's ExitCode
// tells a CLI caller which process exit code to use (§7).
func (e *Engine) Build(ctx context.Context, targets []string) (int, error) {
	if !e.Reg.Frozen() {
		e.Reg.Freeze()
	}

	if len(targets) == 0 {
		if !e.Reg.HasVirtual("default") {
			return 0, &core.NoRuleError{Target: "default"}
		}
		targets = []string{"default"}
	}

	runID := uuid.New().String()
	logger := e.Logger.With("run_id", runID)

	prior, err := state.Load(e.StatePath, logger)
	if err != nil {
		return 0, err
	}

	rc := newRunContext(e, logger, prior)

	logger.Info("build started", "targets", targets)
	var buildErr error
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			buildErr = &core.InterruptedError{}
			break
		}
		if _, err := rc.resolve(ctx, t); err != nil {
			buildErr = err
			break
		}
	}

	if saveErr := state.Save(e.StatePath, rc.current); saveErr != nil && buildErr == nil {
		buildErr = saveErr
	}
	if buildErr != nil {
		logger.Error("build failed", "error", buildErr, "recipes_invoked", rc.rebuiltCount)
	} else {
		logger.Info("build finished", "recipes_invoked", rc.rebuiltCount)
	}
	return rc.rebuiltCount, buildErr
}
