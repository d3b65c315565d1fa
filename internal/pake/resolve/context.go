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

package resolve

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pake/internal/pake/core"
	"pake/internal/pake/hashx"
	"pake/internal/pake/pathutil"
	"pake/internal/pake/state"
)

// runContext holds the state scoped to a single Build call: the memo
// table (§4.5 step 2 — never evicted, a correctness requirement), the
// in-progress dependency stack (cycle detection), and the state records
// touched so far this run.
type runContext struct {
	engine *Engine
	logger *slog.Logger

	prior   state.Map
	current state.Map

	memo       map[string]core.Result
	onStack    map[string]bool
	stackOrder []string

	rebuiltCount int
}

func newRunContext(e *Engine, logger *slog.Logger, prior state.Map) *runContext {
	current := make(state.Map, len(prior))
	for k, v := range prior {
		current[k] = v
	}
	return &runContext{
		engine:  e,
		logger:  logger,
		prior:   prior,
		current: current,
		memo:    make(map[string]core.Result),
		onStack: make(map[string]bool),
	}
}

// match implements §4.3's precedence table: the raw target string is
// probed against the virtual map first (by its literal, uncanonicalized
// name); only if that misses is it canonicalized as a path and matched
// against exact, then pattern, rules, falling through to the implicit
// Fallback rule for any file-shaped target nothing else claimed.
func (rc *runContext) match(raw string) (key string, rule core.Rule, m core.Match, err error) {
	if vr, ok := rc.engine.Reg.Virtual(raw); ok {
		return raw, vr, core.Match{}, nil
	}

	canonical, err := pathutil.Canonicalize(raw)
	if err != nil {
		return "", core.Rule{}, core.Match{}, err
	}

	if er, ok := rc.engine.Reg.Exact(canonical); ok {
		return canonical, er, core.Match{}, nil
	}
	if pr, match, ok := rc.engine.Reg.MatchPattern(canonical); ok {
		return canonical, pr, match, nil
	}
	return canonical, core.Rule{Kind: core.RuleFallback}, core.Match{}, nil
}

// resolve is the recursive resolve(T) of §4.5: normalize and match T,
// return the memoized result if T was already fully resolved this run,
// detect a cycle if T is still being resolved further up the stack,
// otherwise build it and memoize the result before returning.
func (rc *runContext) resolve(ctx context.Context, raw string) (core.Result, error) {
	key, rule, m, err := rc.match(raw)
	if err != nil {
		return core.Result{}, err
	}

	if res, ok := rc.memo[key]; ok {
		return res, nil
	}
	if rc.onStack[key] {
		idx := 0
		for i, s := range rc.stackOrder {
			if s == key {
				idx = i
				break
			}
		}
		path := append(append([]string{}, rc.stackOrder[idx:]...), key)
		return core.Result{}, &core.CycleError{Path: path}
	}

	rc.stackOrder = append(rc.stackOrder, key)
	rc.onStack[key] = true
	res, err := rc.build(ctx, key, rule, m)
	rc.onStack[key] = false
	rc.stackOrder = rc.stackOrder[:len(rc.stackOrder)-1]
	if err != nil {
		return core.Result{}, err
	}

	rc.memo[key] = res
	return res, nil
}

func (rc *runContext) build(ctx context.Context, key string, rule core.Rule, m core.Match) (core.Result, error) {
	switch rule.Kind {
	case core.RuleVirtual:
		return rc.buildVirtual(ctx, key, rule)
	case core.RuleExact:
		identity := "exact:" + key
		return rc.buildFile(ctx, key, core.RuleExact, identity, rule.ExactDeps, func(dm *core.DepMap) (any, error) {
			return rule.ExactFn(key, dm)
		})
	case core.RulePattern:
		depNames := make([]string, len(rule.PatternDeps))
		for i, tmpl := range rule.PatternDeps {
			depNames[i] = core.SubstituteBackreferences(tmpl, m)
		}
		identity := "pattern:" + rule.PatternSrc
		return rc.buildFile(ctx, key, core.RulePattern, identity, depNames, func(dm *core.DepMap) (any, error) {
			return rule.PatternFn(key, dm, m)
		})
	default:
		return rc.buildFallback(key)
	}
}

func (rc *runContext) resolveDeps(ctx context.Context, names []string) ([]core.Result, error) {
	results := make([]core.Result, len(names))
	for i, n := range names {
		r, err := rc.resolve(ctx, n)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

func (rc *runContext) buildVirtual(ctx context.Context, key string, rule core.Rule) (core.Result, error) {
	// The built-in `always` target never participates in the reuse
	// cascade: its result is a fresh never-equal token on every single
	// resolution, which is what gives any dependent that lists it an
	// input signature that can never repeat across runs (§4.4). It has no
	// recipe, so it is not counted among the recipes invoked.
	if rule.IsBuiltinAlways {
		result := core.NeverEqualResult(uuid.New().String())
		rc.current[key] = state.Record{Result: result}
		rc.engine.Metrics.ObserveResolved(string(core.RuleVirtual))
		return result, nil
	}

	depResults, err := rc.resolveDeps(ctx, rule.VirtualDeps)
	if err != nil {
		return core.Result{}, err
	}
	fresh, anyForcesDirty, err := computeInputSig(core.RuleVirtual, "virtual:"+key, rule.VirtualDeps, depResults)
	if err != nil {
		return core.Result{}, err
	}

	prior, hasPrior := rc.prior[key]
	dirty := !hasPrior || prior.InputSig != fresh

	var result core.Result
	if dirty {
		if err := checkInterrupt(ctx); err != nil {
			return core.Result{}, err
		}
		depMap := core.NewDepMap(rule.VirtualDeps, depResults)
		start := time.Now()
		raw, err := rule.VirtualFn(key, depMap)
		if err != nil {
			return core.Result{}, &core.RecipeFailedError{Target: key, Cause: err}
		}
		result, err = normalizeRecipeResult(raw)
		if err != nil {
			return core.Result{}, &core.InvalidResultError{Target: key, Cause: err}
		}
		rc.rebuiltCount++
		elapsed := time.Since(start)
		rc.engine.Metrics.ObserveRebuilt(string(core.RuleVirtual), elapsed.Seconds())
		rc.logger.Debug("recipe invoked", "target", key, "rule_kind", core.RuleVirtual, "duration", elapsed)
	} else {
		result = prior.Result
	}
	rc.engine.Metrics.ObserveResolved(string(core.RuleVirtual))

	if anyForcesDirty {
		result = result.ForceDirty()
	}

	// A result that ForcesDirty (Absent, Unique(), or one tainted by such a
	// dependency) is stored without an input signature, so the next run
	// never reuses it and invokes the recipe again.
	sig := fresh
	if result.ForcesDirty() {
		sig = ""
	}
	rc.current[key] = state.Record{Result: result, InputSig: sig}
	return result, nil
}

func (rc *runContext) buildFile(ctx context.Context, key string, kind core.RuleKind, identity string, depNames []string, invoke func(*core.DepMap) (any, error)) (core.Result, error) {
	depResults, err := rc.resolveDeps(ctx, depNames)
	if err != nil {
		return core.Result{}, err
	}
	fresh, anyForcesDirty, err := computeInputSig(kind, identity, depNames, depResults)
	if err != nil {
		return core.Result{}, err
	}

	abs := rc.engine.absPath(key)
	currentDigest, statErr := rc.engine.cache.Digest(abs)
	missing := errors.Is(statErr, hashx.ErrNotFound)
	if statErr != nil && !missing {
		return core.Result{}, statErr
	}

	prior, hasPrior := rc.prior[key]
	staleOnDisk := hasPrior && !missing && !prior.Result.Equal(core.FileResult(currentDigest))
	dirty := !hasPrior || missing || prior.InputSig != fresh || staleOnDisk

	var result core.Result
	if dirty {
		if err := checkInterrupt(ctx); err != nil {
			return core.Result{}, err
		}
		depMap := core.NewDepMap(depNames, depResults)
		start := time.Now()
		if _, err := invoke(depMap); err != nil {
			return core.Result{}, &core.RecipeFailedError{Target: key, Cause: err}
		}
		newDigest, err := rc.engine.cache.Digest(abs)
		if err != nil {
			if errors.Is(err, hashx.ErrNotFound) {
				return core.Result{}, &core.TargetNotProducedError{Target: key}
			}
			return core.Result{}, err
		}
		result = core.FileResult(newDigest)
		rc.rebuiltCount++
		elapsed := time.Since(start)
		rc.engine.Metrics.ObserveRebuilt(string(kind), elapsed.Seconds())
		rc.logger.Debug("recipe invoked", "target", key, "rule_kind", kind, "duration", elapsed)
	} else {
		result = core.FileResult(currentDigest)
	}
	rc.engine.Metrics.ObserveResolved(string(kind))

	if anyForcesDirty {
		result = result.ForceDirty()
	}

	rc.current[key] = state.Record{Result: result, InputSig: fresh}
	return result, nil
}

func (rc *runContext) buildFallback(key string) (core.Result, error) {
	abs := rc.engine.absPath(key)
	digest, err := rc.engine.cache.Digest(abs)
	if err != nil {
		if errors.Is(err, hashx.ErrNotFound) {
			return core.Result{}, &core.MissingSourceError{Target: key}
		}
		return core.Result{}, err
	}
	result := core.FileResult(digest)
	rc.current[key] = state.Record{Result: result}
	rc.engine.Metrics.ObserveResolved(string(core.RuleFallback))
	return result, nil
}

func normalizeRecipeResult(raw any) (core.Result, error) {
	switch v := raw.(type) {
	case core.AbsentMarker:
		return core.AbsentResult(), nil
	case core.UniqueMarker:
		return core.NeverEqualResult(v.ID), nil
	default:
		canonical, err := hashx.Canonicalize(raw)
		if err != nil {
			return core.Result{}, err
		}
		return core.JSONResult(canonical), nil
	}
}

func checkInterrupt(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &core.InterruptedError{}
	}
	return nil
}

func (e *Engine) absPath(canonical string) string {
	rel := strings.TrimPrefix(canonical, "./")
	return filepath.Join(e.Root, rel)
}
