// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package blockcache keeps decoded raster blocks in an in-memory lru cache.
package blockcache

import (
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies a block of a band of a raster
type Key struct {
	Source uint64
	Band   int
	Block  int
}

// SourceKey hashes a raster name into the Source part of a Key
func SourceKey(name string) uint64 {
	return xxhash.Sum64String(name)
}

var anonymous atomic.Uint64

// AnonymousKey returns a Source for a raster without a name. Every call returns
// a new key.
func AnonymousKey() uint64 {
	return xxhash.Sum64String(fmt.Sprintf("\x00anonymous#%d", anonymous.Add(1)))
}

// Cache is an lru cache of blocks. It is safe for concurrent use.
type Cache[V any] struct {
	c *lru.Cache[Key, V]
}

// New creates a cache holding at most entries blocks
func New[V any](entries int) (*Cache[V], error) {
	c, err := lru.New[Key, V](entries)
	if err != nil {
		return nil, fmt.Errorf("lru.new: %w", err)
	}
	return &Cache[V]{c: c}, nil
}

// Add inserts data for the given block, evicting the least recently used block
// if the cache is full
func (bc *Cache[V]) Add(k Key, data V) {
	bc.c.Add(k, data)
}

// Get fetches the data for the given block. It returns the data and wether the
// data was found in the cache or not
func (bc *Cache[V]) Get(k Key) (V, bool) {
	return bc.c.Get(k)
}

// Remove evicts a single block
func (bc *Cache[V]) Remove(k Key) {
	bc.c.Remove(k)
}

// PurgeSource evicts all the blocks of a raster
func (bc *Cache[V]) PurgeSource(source uint64) {
	for _, k := range bc.c.Keys() {
		if k.Source == source {
			bc.c.Remove(k)
		}
	}
}

// Purge empties the cache
func (bc *Cache[V]) Purge() {
	bc.c.Purge()
}

// Len returns the number of cached blocks
func (bc *Cache[V]) Len() int {
	return bc.c.Len()
}
