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

package blockcache_test

import (
	"testing"

	"github.com/airbusgeo/geogrid/internal/blockcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	_, err := blockcache.New[[]byte](0)
	assert.Error(t, err)

	cache, err := blockcache.New[[]byte](4)
	require.NoError(t, err)
	foo := blockcache.SourceKey("foo")
	for i := 0; i < 4; i++ {
		cache.Add(blockcache.Key{Source: foo, Band: 1, Block: i}, []byte{byte(i)})
	}
	for i := 0; i < 4; i++ {
		b, ok := cache.Get(blockcache.Key{Source: foo, Band: 1, Block: i})
		if assert.True(t, ok, "block %d not found in cache", i) {
			assert.Equal(t, []byte{byte(i)}, b)
		}
	}
	cache.Add(blockcache.Key{Source: foo, Band: 1, Block: 5}, []byte{5})
	assert.Equal(t, 4, cache.Len())
	_, ok := cache.Get(blockcache.Key{Source: foo, Band: 1, Block: 0})
	assert.False(t, ok, "lru entry not evicted")

	_, ok = cache.Get(blockcache.Key{Source: foo, Band: 2, Block: 5})
	assert.False(t, ok, "bands must not collide")

	cache.Remove(blockcache.Key{Source: foo, Band: 1, Block: 5})
	_, ok = cache.Get(blockcache.Key{Source: foo, Band: 1, Block: 5})
	assert.False(t, ok)
}

func TestPurgeSource(t *testing.T) {
	cache, _ := blockcache.New[string](10)
	foo, bar := blockcache.SourceKey("foo"), blockcache.SourceKey("foobar")
	assert.NotEqual(t, foo, bar)
	assert.Equal(t, foo, blockcache.SourceKey("foo"))

	cache.Add(blockcache.Key{Source: foo, Band: 1, Block: 0}, "foo")
	cache.Add(blockcache.Key{Source: bar, Band: 1, Block: 0}, "bar")
	cache.Add(blockcache.Key{Source: bar, Band: 1, Block: 1}, "bar")
	cache.PurgeSource(foo)
	_, ok := cache.Get(blockcache.Key{Source: foo, Band: 1, Block: 0})
	assert.False(t, ok, "cache not purged")
	v, _ := cache.Get(blockcache.Key{Source: bar, Band: 1, Block: 1})
	assert.Equal(t, "bar", v)

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestAnonymousKey(t *testing.T) {
	a, b := blockcache.AnonymousKey(), blockcache.AnonymousKey()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, blockcache.SourceKey(""), a)
}
