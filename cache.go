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

package geogrid

import (
	"fmt"

	"github.com/airbusgeo/geogrid/internal/blockcache"
)

// SharedCache is a block cache used by several rasters of a same Storage,
// passed to them with ShareBlockCache.
//
// Blocks are keyed by raster name: rasters opened on the same name share their
// cached blocks, which outlive the rasters until they are evicted or
// overwritten through one of them. Rasters without a name (in memory) get
// their own key and their blocks are dropped when they are closed.
type SharedCache struct {
	c *blockcache.Cache[*Array]
}

// NewSharedCache creates a cache holding at most entries blocks
func NewSharedCache(entries int) (*SharedCache, error) {
	c, err := blockcache.New[*Array](entries)
	if err != nil {
		return nil, fmt.Errorf("block cache: %w: %w", ErrInvalidInput, err)
	}
	return &SharedCache{c: c}, nil
}

// Len returns the number of cached blocks
func (sc *SharedCache) Len() int {
	return sc.c.Len()
}

// Purge empties the cache
func (sc *SharedCache) Purge() {
	sc.c.Purge()
}

func sourceKey(name string) uint64 {
	if name == "" {
		return blockcache.AnonymousKey()
	}
	return blockcache.SourceKey(name)
}
