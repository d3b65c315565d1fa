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
	"time"
)

func TestCacheDigestMatchesUncached(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	want, err := Digest(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Digest(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("cached digest %q != uncached %q", got, want)
	}

	// second call should hit the cache and still agree
	got2, err := c.Digest(p)
	if err != nil {
		t.Fatal(err)
	}
	if got2 != want {
		t.Fatalf("second cached digest %q != uncached %q", got2, want)
	}
}

func TestCacheDigestInvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	before, err := c.Digest(p)
	if err != nil {
		t.Fatal(err)
	}

	// Ensure a distinguishable mtime, then change the content.
	future := time.Now().Add(time.Second)
	if err := os.WriteFile(p, []byte("world"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, future, future); err != nil {
		t.Fatal(err)
	}

	after, err := c.Digest(p)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Fatal("expected digest to change after content + mtime changed")
	}
}
