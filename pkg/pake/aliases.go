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

// Package pake is the public surface of the content-addressed build
// engine: a host program registers rules against an Engine and calls
// Build to bring a set of targets up to date, the way a Makefile's rules
// are evaluated by make — except a target is rebuilt because the hash of
// its recorded inputs changed, never because of a timestamp comparison.
//
// Everything under internal/pake is implementation; this package's types
// and functions are the only contract a host program depends on.
package pake

import "pake/internal/pake/core"

// Kind tags the variant a Result holds.
type Kind = core.Kind

const (
	KindFile   = core.KindFile
	KindJSON   = core.KindJSON
	KindAbsent = core.KindAbsent
)

// Result is the tagged value a rule produces: a file/directory content
// digest, a JSON value, or Absent.
type Result = core.Result

// Match carries a Pattern rule's regexp match against a canonical
// target, passed to the rule's recipe so it can make sense of \1, \2...
// having already been substituted into its declared dependencies.
type Match = core.Match

// DepMap is the ordered dependency-name -> Result map a recipe receives.
type DepMap = core.DepMap

// ExactRecipe builds the result for an Exact file rule or a Virtual
// rule. For a file rule the returned value is ignored — the engine
// hashes the file the recipe is expected to have written. For a virtual
// rule the returned value becomes the rule's JSON result, unless it is
// Absent or the value returned by Unique().
type ExactRecipe = core.ExactRecipe

// PatternRecipe is an ExactRecipe that additionally receives the Match
// that selected it, for recipes that want the raw captured groups rather
// than just the already-substituted dependency names.
type PatternRecipe = core.PatternRecipe

// ExitCode is the process exit code a CLI should use for an error
// returned from Build.
type ExitCode = core.ExitCode

const (
	ExitOK          = core.ExitOK
	ExitRecipe      = core.ExitRecipe
	ExitUsage       = core.ExitUsage
	ExitInterrupted = core.ExitInterrupted
)

// BuildError is implemented by every error Build can return.
type BuildError = core.BuildError

// The concrete errors Build can return, aliased so callers can
// errors.As against them without importing internal/pake/core directly.
type (
	NoRuleError            = core.NoRuleError
	MissingSourceError     = core.MissingSourceError
	OutOfRootError         = core.OutOfRootError
	CycleError             = core.CycleError
	RecipeFailedError      = core.RecipeFailedError
	TargetNotProducedError = core.TargetNotProducedError
	InvalidResultError     = core.InvalidResultError
	RegistryFrozenError    = core.RegistryFrozenError
	DuplicateRuleError     = core.DuplicateRuleError
	InterruptedError       = core.InterruptedError
)
