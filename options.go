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
	"github.com/rs/zerolog"
)

type rasterOpts struct {
	logger       *zerolog.Logger
	cacheEntries int
	shared       *SharedCache
}

type openOpts struct {
	rasterOpts
	update bool
}

// OpenOption is an option that can be passed to Open, Wrap or Use
//
// Available OpenOptions are:
//
// • Update
//
// • Logger
//
// • BlockCache
//
// • ShareBlockCache
type OpenOption interface {
	setOpenOpt(oo *openOpts)
}

type createOpts struct {
	rasterOpts
	bands    int
	dtype    DataType
	driver   DriverName
	inMemory bool
	creation []string
}

// CreateOption is an option that can be passed to Create or CreateFromDefinition
//
// Available CreateOptions are:
//
// • Bands
//
// • a DataType (defaults to Float32)
//
// • a DriverName (defaults to GTiff)
//
// • InMemory
//
// • CreationOption
//
// • Logger
//
// • BlockCache
//
// • ShareBlockCache
type CreateOption interface {
	setCreateOpt(co *createOpts)
}

type cloneOpts struct {
	rasterOpts
	bands    int
	dtype    DataType
	nbits    int
	creation []string
}

// CloneOption is an option that can be passed to Raster.CloneEmpty
//
// Available CloneOptions are:
//
// • Bands (defaults to the number of bands of the source)
//
// • a DataType (defaults to Byte)
//
// • NBits
//
// • CreationOption
//
// • Logger
//
// • BlockCache
//
// • ShareBlockCache
type CloneOption interface {
	setCloneOpt(co *cloneOpts)
}

type warpOpts struct {
	rasterOpts
	inMemory bool
	driver   DriverName
	creation []string
}

// WarpOption is an option that can be passed to Raster.ChangeResolution or
// Raster.Reproject
//
// Available WarpOptions are:
//
// • InMemory
//
// • a DriverName
//
// • CreationOption
//
// • Logger
//
// • BlockCache
//
// • ShareBlockCache
type WarpOption interface {
	setWarpOpt(wo *warpOpts)
}

type resolveOpts struct {
	partial   bool
	anySystem bool
}

// ResolveOption is an option that can be passed to ResolveWindow
//
// Available ResolveOptions are:
//
// • AllowPartial
//
// • AllowAnySystem
type ResolveOption interface {
	setResolveOpt(ro *resolveOpts)
}

type updateOpt struct{}

// Update opens the raster with write access
func Update() interface {
	OpenOption
} {
	return updateOpt{}
}

func (updateOpt) setOpenOpt(oo *openOpts) {
	oo.update = true
}

type loggerOpt struct {
	l zerolog.Logger
}

// Logger sets the logger used by the raster and by the rasters derived from it.
// Defaults to a disabled logger.
func Logger(l zerolog.Logger) interface {
	OpenOption
	CreateOption
	CloneOption
	WarpOption
} {
	return loggerOpt{l}
}

func (lo loggerOpt) setOpenOpt(o *openOpts) {
	o.logger = &lo.l
}
func (lo loggerOpt) setCreateOpt(o *createOpts) {
	o.logger = &lo.l
}
func (lo loggerOpt) setCloneOpt(o *cloneOpts) {
	o.logger = &lo.l
}
func (lo loggerOpt) setWarpOpt(o *warpOpts) {
	o.logger = &lo.l
}

type blockCacheOpt struct {
	entries int
}

// BlockCache keeps the last entries blocks read by IterateBlocks, IterateBands
// and IterateStacked in memory. Writing a block evicts it.
func BlockCache(entries int) interface {
	OpenOption
	CreateOption
	CloneOption
	WarpOption
} {
	if entries < 1 {
		panic("invalid block cache size")
	}
	return blockCacheOpt{entries}
}

func (bo blockCacheOpt) setOpenOpt(o *openOpts) {
	o.cacheEntries = bo.entries
}
func (bo blockCacheOpt) setCreateOpt(o *createOpts) {
	o.cacheEntries = bo.entries
}
func (bo blockCacheOpt) setCloneOpt(o *cloneOpts) {
	o.cacheEntries = bo.entries
}
func (bo blockCacheOpt) setWarpOpt(o *warpOpts) {
	o.cacheEntries = bo.entries
}

type sharedCacheOpt struct {
	c *SharedCache
}

// ShareBlockCache makes the raster keep the blocks read by IterateBlocks,
// IterateBands and IterateStacked in c, along with the other rasters using it.
// It takes precedence over BlockCache.
func ShareBlockCache(c *SharedCache) interface {
	OpenOption
	CreateOption
	CloneOption
	WarpOption
} {
	if c == nil {
		panic("nil shared block cache")
	}
	return sharedCacheOpt{c}
}

func (so sharedCacheOpt) setOpenOpt(o *openOpts) {
	o.shared = so.c
}
func (so sharedCacheOpt) setCreateOpt(o *createOpts) {
	o.shared = so.c
}
func (so sharedCacheOpt) setCloneOpt(o *cloneOpts) {
	o.shared = so.c
}
func (so sharedCacheOpt) setWarpOpt(o *warpOpts) {
	o.shared = so.c
}

type bandsOpt struct {
	n int
}

// Bands sets the number of bands of a created raster
func Bands(n int) interface {
	CreateOption
	CloneOption
} {
	return bandsOpt{n}
}

func (bo bandsOpt) setCreateOpt(o *createOpts) {
	o.bands = bo.n
}
func (bo bandsOpt) setCloneOpt(o *cloneOpts) {
	o.bands = bo.n
}

func (dt DataType) setCreateOpt(o *createOpts) {
	o.dtype = dt
}
func (dt DataType) setCloneOpt(o *cloneOpts) {
	o.dtype = dt
}

type inMemoryOpt struct{}

// InMemory creates the raster with the storage's memory driver. The raster name
// is not required.
func InMemory() interface {
	CreateOption
	WarpOption
} {
	return inMemoryOpt{}
}

func (inMemoryOpt) setCreateOpt(o *createOpts) {
	o.inMemory = true
}
func (inMemoryOpt) setWarpOpt(o *warpOpts) {
	o.inMemory = true
}

type creationOpts struct {
	creation []string
}

// CreationOption are options to pass to a driver when creating a raster, to be
// passed in the form KEY=VALUE
//
// Examples are: COMPRESS=LZW, NUM_THREADS=8, etc...
func CreationOption(opts ...string) interface {
	CreateOption
	CloneOption
	WarpOption
} {
	return creationOpts{opts}
}

func (co creationOpts) setCreateOpt(o *createOpts) {
	o.creation = append(o.creation, co.creation...)
}
func (co creationOpts) setCloneOpt(o *cloneOpts) {
	o.creation = append(o.creation, co.creation...)
}
func (co creationOpts) setWarpOpt(o *warpOpts) {
	o.creation = append(o.creation, co.creation...)
}

type nbitsOpt struct {
	n int
}

// NBits creates a clone whose pixels are stored on n bits (e.g. 1 for masks)
func NBits(n int) interface {
	CloneOption
} {
	return nbitsOpt{n}
}

func (no nbitsOpt) setCloneOpt(o *cloneOpts) {
	o.nbits = no.n
}

type partialOpt struct{}

// AllowPartial makes ResolveWindow clip query boxes that are partially outside
// the raster instead of failing with ErrPartialCoverage
func AllowPartial() interface {
	ResolveOption
} {
	return partialOpt{}
}

func (partialOpt) setResolveOpt(o *resolveOpts) {
	o.partial = true
}

type anySystemOpt struct{}

// AllowAnySystem skips the spatial reference system comparison in ResolveWindow
func AllowAnySystem() interface {
	ResolveOption
} {
	return anySystemOpt{}
}

func (anySystemOpt) setResolveOpt(o *resolveOpts) {
	o.anySystem = true
}
