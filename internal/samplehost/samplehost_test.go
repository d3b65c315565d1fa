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

package samplehost

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pake/pkg/pake"
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

func TestRegisterBuildsAppAndManifest(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root)

	e, err := pake.NewEngine(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := Register(e); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Build(context.Background()); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "app")); err != nil {
		t.Fatalf("expected ./app to exist: %v", err)
	}

	n, err := e.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("second build should be fully cached, n=%d", n)
	}
}

func TestTouchRebuildsEveryRun(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root)

	e, err := pake.NewEngine(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := Register(e); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		n, err := e.Build(context.Background(), "touch")
		if err != nil {
			t.Fatalf("build %d: %v", i, err)
		}
		if n != 1 {
			t.Fatalf("build %d: expected touch to always rebuild, n=%d", i, n)
		}
	}
}
