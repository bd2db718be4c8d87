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
	"github.com/rs/zerolog"
)

// Raster is a block aware view over a raster handle owned by a Storage.
//
// The raster metadata (size, geotransform, projection, block size) is loaded
// once when the Raster is built. A Raster is not safe for concurrent use.
type Raster struct {
	st       Storage
	h        Handle
	name     string
	writable bool
	logger   zerolog.Logger
	cache    *blockcache.Cache[*Array]
	shared   bool
	source   uint64

	gt     GeoTransform
	srs    string
	bands  int
	dtype  DataType
	blockW int
	blockH int
	grid   BlockGrid

	blocksComputed       bool
	blocks               []Window
	positionsComputed    bool
	positions            [][]Span
	arrayIndicesComputed bool
	arrayIndices         []BlockIndex
	blockIndicesComputed bool
	blockRowIndices      [][]int
	blockColIndices      [][]int
}

func (ro rasterOpts) zlogger(parent *zerolog.Logger) zerolog.Logger {
	switch {
	case ro.logger != nil:
		return *ro.logger
	case parent != nil:
		return *parent
	default:
		return zerolog.Nop()
	}
}

func newRaster(st Storage, h Handle, writable bool, ro rasterOpts, parent *zerolog.Logger) (*Raster, error) {
	r := &Raster{
		st:       st,
		h:        h,
		name:     h.Name(),
		writable: writable,
		logger:   ro.zlogger(parent),
	}
	if err := r.loadMetadata(); err != nil {
		return nil, err
	}
	switch {
	case ro.shared != nil:
		r.cache, r.shared = ro.shared.c, true
	case ro.cacheEntries > 0:
		c, err := blockcache.New[*Array](ro.cacheEntries)
		if err != nil {
			return nil, fmt.Errorf("block cache: %w", err)
		}
		r.cache = c
	}
	if r.cache != nil {
		r.source = sourceKey(r.name)
	}
	return r, nil
}

func (r *Raster) loadMetadata() error {
	s := r.h.Structure()
	if s.NBands < 1 {
		return fmt.Errorf("%s has no bands: %w", r.name, ErrInvalidInput)
	}
	coeffs, err := r.h.GeoTransform()
	if err != nil {
		return fmt.Errorf("%s geotransform: %v: %w", r.name, err, ErrInvalidInput)
	}
	gt, err := NewGeoTransform(coeffs, s.SizeY, s.SizeX)
	if err != nil {
		return fmt.Errorf("%s: %w", r.name, err)
	}
	grid, err := NewBlockGrid(s.SizeX, s.SizeY, s.BlockSizeX, s.BlockSizeY)
	if err != nil {
		return fmt.Errorf("%s block size: %w", r.name, err)
	}
	r.gt = gt
	r.grid = grid
	r.srs = r.h.Projection()
	r.bands = s.NBands
	r.dtype = s.DataType
	r.blockW, r.blockH = s.BlockSizeX, s.BlockSizeY

	for i, bs := range s.BandBlockSizes {
		r.logger.Debug().Str("raster", r.name).Int("band", i+1).
			Int("block_width", bs[0]).Int("block_height", bs[1]).Msg("band block size")
	}
	r.logger.Debug().Str("raster", r.name).Int("cols", gt.Cols).Int("rows", gt.Rows).
		Int("bands", r.bands).Stringer("datatype", r.dtype).Float64("pixel_size", gt.PixelSize).
		Bool("writable", r.writable).Msg("raster metadata loaded")
	return nil
}

// Open opens the named raster from st. Update() must be passed for the write
// operations to be allowed.
func Open(st Storage, name string, opts ...OpenOption) (*Raster, error) {
	oo := openOpts{}
	for _, o := range opts {
		o.setOpenOpt(&oo)
	}
	h, err := st.Open(name, oo.update)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", name, ErrIOFailure, err)
	}
	if h == nil {
		return nil, fmt.Errorf("open %s: no handle: %w", name, ErrIOFailure)
	}
	r, err := newRaster(st, h, oo.update, oo.rasterOpts, nil)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	return r, nil
}

// Wrap builds a Raster over an already opened handle. The Raster takes ownership
// of h, which is closed by Raster.Close.
func Wrap(st Storage, h Handle, opts ...OpenOption) (*Raster, error) {
	if st == nil || h == nil {
		return nil, fmt.Errorf("wrap nil storage or handle: %w", ErrInvalidInput)
	}
	oo := openOpts{}
	for _, o := range opts {
		o.setOpenOpt(&oo)
	}
	return newRaster(st, h, oo.update, oo.rasterOpts, nil)
}

// Use opens the named raster, calls fn with it and closes it whatever fn returns
func Use(st Storage, name string, fn func(*Raster) error, opts ...OpenOption) (err error) {
	r, err := Open(st, name, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(r)
}

// Create creates a new rows x cols raster whose top-left corner is at xmin,ymax.
// The returned raster is writable.
//
// Unless specified through options the raster has a single Float32 band and is
// created with the GTiff driver, in which case name is mandatory.
func Create(st Storage, name string, rows, cols int, pixelSize, xmin, ymax float64, opts ...CreateOption) (*Raster, error) {
	co := createOpts{
		bands:  1,
		dtype:  Float32,
		driver: GTiff,
	}
	for _, o := range opts {
		o.setCreateOpt(&co)
	}
	if co.inMemory {
		co.driver = Memory
	}
	if rows <= 0 || cols <= 0 || co.bands <= 0 {
		return nil, fmt.Errorf("create %dx%dx%d raster: %w", cols, rows, co.bands, ErrInvalidInput)
	}
	if pixelSize <= 0 {
		return nil, fmt.Errorf("create with pixel size %v: %w", pixelSize, ErrInvalidInput)
	}
	if co.driver != Memory && name == "" {
		return nil, fmt.Errorf("create %s raster without a name: %w", co.driver, ErrInvalidInput)
	}
	gt := GeoTransform{OriginX: xmin, OriginY: ymax, PixelSize: pixelSize, Rows: rows, Cols: cols}
	h, err := createHandle(st, name, gt, "", CreateParams{
		Width:    cols,
		Height:   rows,
		Bands:    co.bands,
		DataType: co.dtype,
		Driver:   co.driver,
		InMemory: co.inMemory,
		Options:  co.creation,
	})
	if err != nil {
		return nil, err
	}
	r, err := newRaster(st, h, true, co.rasterOpts, nil)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	return r, nil
}

// createHandle creates a raster, sets its georeferencing, and reopens it in
// update mode unless it lives in memory.
func createHandle(st Storage, name string, gt GeoTransform, srs string, p CreateParams) (Handle, error) {
	h, err := st.Create(name, p)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w: %w", name, ErrIOFailure, err)
	}
	if h == nil {
		return nil, fmt.Errorf("create %s: no handle: %w", name, ErrIOFailure)
	}
	if err := h.SetGeoTransform(gt.GDAL()); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("set geotransform: %w", err)
	}
	if srs != "" {
		if err := h.SetProjection(srs); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("set projection: %w", err)
		}
	}
	if p.InMemory || p.Driver == Memory {
		return h, nil
	}
	if err := h.Flush(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("flush %s: %w", name, err)
	}
	if err := h.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", name, err)
	}
	h, err = st.Open(name, true)
	if err != nil {
		return nil, fmt.Errorf("reopen %s: %w: %w", name, ErrIOFailure, err)
	}
	return h, nil
}

// Name is the name the raster was opened or created with
func (r *Raster) Name() string { return r.name }

// Rows is the raster height in pixels
func (r *Raster) Rows() int { return r.gt.Rows }

// Cols is the raster width in pixels
func (r *Raster) Cols() int { return r.gt.Cols }

// Bands is the number of bands
func (r *Raster) Bands() int { return r.bands }

// Shape returns rows, cols and bands
func (r *Raster) Shape() (int, int, int) { return r.gt.Rows, r.gt.Cols, r.bands }

// BlockSize returns the natural block width and height of the first band
func (r *Raster) BlockSize() (int, int) { return r.blockW, r.blockH }

// DataType is the pixel type of the raster
func (r *Raster) DataType() DataType { return r.dtype }

// GeoTransform returns the pixel to projected coordinates mapping
func (r *Raster) GeoTransform() GeoTransform { return r.gt }

// Projection returns the definition of the raster's spatial reference system.
// It may be empty.
func (r *Raster) Projection() string { return r.srs }

// Bounds returns the extent of the raster in its own system
func (r *Raster) Bounds() BoundingBox { return r.gt.Bounds(r.srs) }

// Grid returns the block grid of the raster
func (r *Raster) Grid() BlockGrid { return r.grid }

// Writable reports whether write operations are allowed
func (r *Raster) Writable() bool { return r.writable }

// Blocks returns the pixel window of every block, in column-major order
func (r *Raster) Blocks() []Window {
	if !r.blocksComputed {
		r.blocks = make([]Window, 0, r.grid.Len())
		for b, ok := r.grid.First(), true; ok; b, ok = b.Next() {
			r.blocks = append(r.blocks, b.Window)
		}
		r.blocksComputed = true
	}
	return r.blocks
}

// BlockPositions returns the end-exclusive spans of the blocks, indexed by
// [blockRow][blockCol]
func (r *Raster) BlockPositions() [][]Span {
	if !r.positionsComputed {
		r.positions = r.grid.Positions()
		r.positionsComputed = true
	}
	return r.positions
}

// BlockArrayIndices returns the (row, col) grid coordinates of every block, row by row
func (r *Raster) BlockArrayIndices() []BlockIndex {
	if !r.arrayIndicesComputed {
		r.arrayIndices = r.grid.ArrayIndices()
		r.arrayIndicesComputed = true
	}
	return r.arrayIndices
}

// BlockIndices returns the row and column index of every pixel of a nominal
// block, as two blockHeight x blockWidth matrices.
func (r *Raster) BlockIndices() (rows, cols [][]int) {
	if !r.blockIndicesComputed {
		r.blockRowIndices = make([][]int, r.blockH)
		r.blockColIndices = make([][]int, r.blockH)
		for i := 0; i < r.blockH; i++ {
			r.blockRowIndices[i] = make([]int, r.blockW)
			r.blockColIndices[i] = make([]int, r.blockW)
			for j := 0; j < r.blockW; j++ {
				r.blockRowIndices[i][j] = i
				r.blockColIndices[i][j] = j
			}
		}
		r.blockIndicesComputed = true
	}
	return r.blockRowIndices, r.blockColIndices
}

// Equal reports whether both rasters cover the same pixel grid in the same
// spatial reference system. Block sizes are not compared.
func (r *Raster) Equal(other *Raster) bool {
	if other == nil {
		return false
	}
	return r.gt == other.gt && r.st.SameSystem(r.srs, other.srs)
}

// Close releases the underlying handle. Close may be called more than once.
func (r *Raster) Close() error {
	if r.h == nil {
		return nil
	}
	switch {
	case r.cache == nil:
	case !r.shared:
		r.cache.Purge()
	case r.name == "":
		r.cache.PurgeSource(r.source)
	}
	h := r.h
	r.h = nil
	if err := h.Close(); err != nil {
		return fmt.Errorf("close %s: %w", r.name, err)
	}
	return nil
}

func (r *Raster) checkOpen() error {
	if r.h == nil {
		return fmt.Errorf("%s is closed: %w", r.name, ErrIOFailure)
	}
	return nil
}

func (r *Raster) checkBand(band int) error {
	if band < 1 || band > r.bands {
		return fmt.Errorf("band %d not in [1,%d]: %w", band, r.bands, ErrIndex)
	}
	return nil
}

func (r *Raster) checkWritable() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if !r.writable {
		return fmt.Errorf("%s: %w", r.name, ErrReadOnly)
	}
	return nil
}
