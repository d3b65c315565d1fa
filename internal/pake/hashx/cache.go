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
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	digest  string
}

// Cache fronts Digest with a bounded LRU keyed by absolute path. A cache
// hit is only trusted if the file's size and modification time still
// match what was hashed; a miss or a distrusted hit just re-hashes, so
// eviction only costs time. A file rewritten with the same size and an
// unchanged modification time is not detected: its cached digest is
// returned until the entry is evicted.
type Cache struct {
	lru *lru.Cache[string, cacheEntry]
}

// NewCache returns a digest cache holding up to size entries.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Digest returns Digest(path), consulting and populating the cache. Only
// regular files are cached; directories are cheap enough, and their
// entries can change without changing any stat the cache tracks, to hash
// fresh every time.
func (c *Cache) Digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return digestDir(path)
	}

	if entry, ok := c.lru.Get(path); ok {
		if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			return entry.digest, nil
		}
	}

	digest, err := digestFile(path)
	if err != nil {
		return "", err
	}
	c.lru.Add(path, cacheEntry{modTime: info.ModTime(), size: info.Size(), digest: digest})
	return digest, nil
}
