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

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSources(t *testing.T, root string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "main.c"), []byte("int main(){}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "util.c"), []byte("void util(){}"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunBuildsDefaultTargetSuccessfully(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root)

	code := run([]string{"-C", root, "-log-level", "error"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(root, "app")); err != nil {
		t.Fatalf("expected ./app to exist: %v", err)
	}

	code = run([]string{"-C", root, "-log-level", "error"})
	if code != 0 {
		t.Fatalf("expected exit 0 on a fully-cached rebuild, got %d", code)
	}
}

func TestRunMissingSourceExitsRecipe(t *testing.T) {
	root := t.TempDir()
	// No sources written: "main.o" depends on "main.c", which is absent
	// and has no rule to produce it.

	code := run([]string{"-C", root, "-log-level", "error", "main.o"})
	if code != 1 {
		t.Fatalf("expected exit 1 (ExitRecipe), got %d", code)
	}
}

func TestRunBadFlagExitsUsage(t *testing.T) {
	code := run([]string{"-not-a-flag"})
	if code != 2 {
		t.Fatalf("expected exit 2 (ExitUsage) for a flag parse failure, got %d", code)
	}
}

func TestRunOutOfRootTargetExitsUsage(t *testing.T) {
	root := t.TempDir()
	// Requesting a target with no rule and no on-disk file, nested under
	// a path outside root, should fail during canonicalization or
	// resolution rather than panicking.
	code := run([]string{"-C", root, "-log-level", "error", "../../etc/passwd"})
	if code != 2 {
		t.Fatalf("expected exit 2 (ExitUsage) for an out-of-root target, got %d", code)
	}
}
