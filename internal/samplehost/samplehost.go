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

// Package samplehost is a worked example of a build-script host: it
// registers a small C-like compile/link/manifest pipeline against a
// pake.Engine, exercising all four rule kinds. cmd/pake wires this
// package in by default; a real deployment registers its own rules
// in-process instead.
package samplehost

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pake/pkg/pake"
)

// sourceModules names the ".c" sources (without extension) the sample
// binary links together; a real deployment would discover these from
// its own build configuration instead of hardcoding them.
var sourceModules = []string{"main", "util"}

// Register populates e with the sample pipeline's rules:
//
//   - a Pattern rule compiling "*.c" into "*.o" (a no-op "compiler" that
//     just concatenates its source, standing in for cc)
//   - an Exact rule linking every object in sourceModules into "./app"
//   - a "manifest" Virtual rule recording the build's object file list
//     as a JSON value, demonstrating a non-file result
//   - a "build" Group aliasing "./app" and "manifest" together, marked
//     as the default target
//   - a "touch" Virtual rule depending on pake.Always, demonstrating a
//     target that is unconditionally dirty on every run
func Register(e *pake.Engine) error {
	root := e.Root()

	if err := e.RegisterPattern(`(.*)\.o`, []string{`\1.c`}, compileRecipe(root)); err != nil {
		return fmt.Errorf("register compile rule: %w", err)
	}

	linkDeps := make([]string, len(sourceModules))
	for i, name := range sourceModules {
		linkDeps[i] = name + ".o"
	}
	if err := e.RegisterExact("./app", linkDeps, linkRecipe(root)); err != nil {
		return fmt.Errorf("register link rule: %w", err)
	}

	if err := e.RegisterVirtual("manifest", linkDeps, manifestRecipe); err != nil {
		return fmt.Errorf("register manifest rule: %w", err)
	}

	if err := e.Group("build", []string{"./app", "manifest"}); err != nil {
		return fmt.Errorf("register build group: %w", err)
	}

	if err := e.RegisterVirtual("touch", pake.Always(nil), touchRecipe); err != nil {
		return fmt.Errorf("register touch rule: %w", err)
	}

	if err := e.Default("build"); err != nil {
		return fmt.Errorf("register default alias: %w", err)
	}
	return nil
}

// compileRecipe stands in for invoking a real compiler: it reads the
// single ".c" dependency and writes the ".o" target as a thin wrapper
// around its contents, so a change to the source always changes the
// object's digest too.
func compileRecipe(root string) pake.PatternRecipe {
	return func(target string, deps *pake.DepMap, m pake.Match) (any, error) {
		names := deps.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("compile rule expects exactly one dependency, got %d", len(names))
		}
		src, err := os.ReadFile(resolvePath(root, names[0]))
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		body := append([]byte("object:\n"), src...)
		return nil, os.WriteFile(resolvePath(root, target), body, 0644)
	}
}

// linkRecipe concatenates every object file's contents into the final
// binary target, in declared dependency order.
func linkRecipe(root string) pake.ExactRecipe {
	return func(target string, deps *pake.DepMap) (any, error) {
		var body []byte
		for _, name := range deps.Names() {
			chunk, err := os.ReadFile(resolvePath(root, name))
			if err != nil {
				return nil, fmt.Errorf("read object %s: %w", name, err)
			}
			body = append(body, chunk...)
		}
		return nil, os.WriteFile(resolvePath(root, target), body, 0755)
	}
}

// manifestRecipe returns the build's object list as a JSON value rather
// than writing a file, demonstrating a Virtual rule whose result lives
// only in the state store.
func manifestRecipe(target string, deps *pake.DepMap) (any, error) {
	type entry struct {
		Target string `json:"target"`
		Digest string `json:"digest"`
	}
	manifest := make([]entry, 0, deps.Len())
	for _, name := range deps.Names() {
		r, _ := deps.Get(name)
		digest, _ := r.Value.(string)
		manifest = append(manifest, entry{Target: name, Digest: digest})
	}
	// Round-trip through json.Marshal purely to validate the shape is
	// encodable; the engine does its own canonicalization on the
	// returned value.
	if _, err := json.Marshal(manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// touchRecipe demonstrates the always-dirty idiom: its own result
// changes every run only because it embeds the current time, but it
// would be unconditionally dirty regardless, purely from depending on
// pake.Always.
func touchRecipe(target string, deps *pake.DepMap) (any, error) {
	return map[string]any{"touched_at": time.Now().Format(time.RFC3339Nano)}, nil
}

// resolvePath turns a canonical (or bare) target name into an absolute
// filesystem path under root.
func resolvePath(root, name string) string {
	return filepath.Join(root, strings.TrimPrefix(name, "./"))
}
