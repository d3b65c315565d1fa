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

package hashx

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDigestFileStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	d1, err := Digest(p)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := Digest(p)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatalf("digest not stable: %s != %s", d1, d2)
	}
}

func TestDigestFileRenameDoesNotChangeContentDigest(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p1, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	before, err := Digest(p1)
	if err != nil {
		t.Fatal(err)
	}

	p2 := filepath.Join(dir, "b.txt")
	if err := os.Rename(p1, p2); err != nil {
		t.Fatal(err)
	}
	after, err := Digest(p2)
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Fatalf("rename changed content digest: %s != %s", before, after)
	}
}

func TestDigestNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Digest(filepath.Join(dir, "missing"))
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDigestDirAddingFileChangesDigest(t *testing.T) {
	dir := t.TempDir()
	before, err := Digest(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	after, err := Digest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Fatal("adding a file did not change directory digest")
	}
}

func TestDigestDirIgnoresSubdirectoryContents(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	before, err := Digest(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Writing inside the subdirectory must not change the parent's digest:
	// directory hashing is shallow (sorted entry names only).
	if err := os.WriteFile(filepath.Join(sub, "deep.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	after, err := Digest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Fatal("directory digest changed from a nested file, expected shallow hashing")
	}
}

func TestDigestJSONNormalizesKeyOrder(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2}
	b := map[string]any{"a": 2.0, "b": 1.0}

	da, err := DigestJSON(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := DigestJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Fatalf("expected equal digests for structurally equal JSON, got %s != %s", da, db)
	}
}
