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
	"iter"

	"github.com/airbusgeo/geogrid/internal/blockcache"
	"github.com/paulmach/orb"
)

// ReadAll reads the whole raster, all bands stacked
func (r *Raster) ReadAll() (*Array, error) {
	return r.readWindow(Window{Width: r.gt.Cols, Height: r.gt.Rows})
}

// ReadPixelWindow reads rows [y0,y1) and columns [x0,x1) of all bands. The
// returned array has the band axis last.
func (r *Raster) ReadPixelWindow(y0, y1, x0, x1 int) (*Array, error) {
	w := Window{XOffset: x0, YOffset: y0, Width: x1 - x0, Height: y1 - y0}
	if w.Empty() || !w.Inside(r.gt.Cols, r.gt.Rows) {
		return nil, fmt.Errorf("read [%d:%d,%d:%d] of a %dx%d raster: %w",
			y0, y1, x0, x1, r.gt.Rows, r.gt.Cols, ErrInvalidWindow)
	}
	return r.readWindow(w)
}

// ReadProjected reads the pixels between the given projected coordinates.
// Coordinates are converted to the nearest pixel boundary, the extent is not
// checked against the raster's system.
func (r *Raster) ReadProjected(xmin, xmax, ymin, ymax float64) (*Array, error) {
	px := r.gt.PixelSize
	y0 := PixelIndex((r.gt.OriginY-ymax)/px, Nearest)
	y1 := PixelIndex((r.gt.OriginY-ymin)/px, Nearest)
	x0 := PixelIndex((xmin-r.gt.OriginX)/px, Nearest)
	x1 := PixelIndex((xmax-r.gt.OriginX)/px, Nearest)
	return r.ReadPixelWindow(y0, y1, x0, x1)
}

// ReadBound is ReadProjected for an orb.Bound
func (r *Raster) ReadBound(b orb.Bound) (*Array, error) {
	return r.ReadProjected(b.Min.X(), b.Max.X(), b.Min.Y(), b.Max.Y())
}

// ResolveWindow computes the pixel window of the raster covering bbox. See the
// package level ResolveWindow.
func (r *Raster) ResolveWindow(bbox BoundingBox, opts ...ResolveOption) (ResolvedWindow, error) {
	return ResolveWindow(r.gt, r.srs, bbox, r.st, opts...)
}

// ReadBoundingBox resolves bbox and reads the resulting window of all bands
func (r *Raster) ReadBoundingBox(bbox BoundingBox, opts ...ResolveOption) (*Array, ResolvedWindow, error) {
	rw, err := r.ResolveWindow(bbox, opts...)
	if err != nil {
		return nil, ResolvedWindow{}, err
	}
	a, err := r.readWindow(rw.Window)
	if err != nil {
		return nil, ResolvedWindow{}, err
	}
	return a, rw, nil
}

func (r *Raster) readWindow(w Window) (*Array, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	arrays := make([]*Array, r.bands)
	for b := 1; b <= r.bands; b++ {
		a, err := r.readBand(b, w)
		if err != nil {
			return nil, err
		}
		arrays[b-1] = a
	}
	return Stack(arrays...)
}

func (r *Raster) readBand(band int, w Window) (*Array, error) {
	a, err := r.h.ReadBand(band, w.XOffset, w.YOffset, w.Width, w.Height)
	if err != nil {
		return nil, fmt.Errorf("read band %d window %+v: %w", band, w, err)
	}
	if a.Width != w.Width || a.Height != w.Height || a.Bands != 1 {
		return nil, fmt.Errorf("read band %d returned a %dx%dx%d array for window %+v: %w",
			band, a.Height, a.Width, a.Bands, w, ErrShapeMismatch)
	}
	return a, nil
}

// readBlock reads a band of the block numbered index, going through the block
// cache when there is one
func (r *Raster) readBlock(band, index int) (*Array, error) {
	w, err := r.grid.WindowAt(index)
	if err != nil {
		return nil, err
	}
	if r.cache == nil {
		return r.readBand(band, w)
	}
	key := blockcache.Key{Source: r.source, Band: band, Block: index}
	if a, ok := r.cache.Get(key); ok {
		return a.Clone(), nil
	}
	a, err := r.readBand(band, w)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, a.Clone())
	return a, nil
}

// IterateBlocks yields the data of band for every block, in the order of
// Blocks(). Iteration stops after the first error.
func (r *Raster) IterateBlocks(band int) iter.Seq2[*Array, error] {
	return func(yield func(*Array, error) bool) {
		if err := r.checkOpen(); err != nil {
			yield(nil, err)
			return
		}
		if err := r.checkBand(band); err != nil {
			yield(nil, err)
			return
		}
		for i := range r.Blocks() {
			a, err := r.readBlock(band, i)
			if !yield(a, err) || err != nil {
				return
			}
		}
	}
}

// IterateBands yields, for every block, one array per requested band. All bands
// are read when none are given.
func (r *Raster) IterateBands(bands ...int) iter.Seq2[[]*Array, error] {
	return func(yield func([]*Array, error) bool) {
		if err := r.checkOpen(); err != nil {
			yield(nil, err)
			return
		}
		bands, err := r.selectBands(bands)
		if err != nil {
			yield(nil, err)
			return
		}
		for i := range r.Blocks() {
			arrays := make([]*Array, len(bands))
			for j, b := range bands {
				if arrays[j], err = r.readBlock(b, i); err != nil {
					break
				}
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(arrays, nil) {
				return
			}
		}
	}
}

// IterateStacked is IterateBands with the bands of each block stacked in a
// single array
func (r *Raster) IterateStacked(bands ...int) iter.Seq2[*Array, error] {
	return func(yield func(*Array, error) bool) {
		for arrays, err := range r.IterateBands(bands...) {
			if err != nil {
				yield(nil, err)
				return
			}
			a, err := Stack(arrays...)
			if !yield(a, err) || err != nil {
				return
			}
		}
	}
}

func (r *Raster) selectBands(bands []int) ([]int, error) {
	if len(bands) == 0 {
		bands = make([]int, r.bands)
		for i := range bands {
			bands[i] = i + 1
		}
		return bands, nil
	}
	for _, b := range bands {
		if err := r.checkBand(b); err != nil {
			return nil, err
		}
	}
	return bands, nil
}

// BlockCoordinates returns the projected coordinates of the top-left corner of
// the columns (xs) and rows (ys) of the block numbered index
func (r *Raster) BlockCoordinates(index int) (xs, ys []float64, err error) {
	w, err := r.grid.WindowAt(index)
	if err != nil {
		return nil, nil, err
	}
	xs = make([]float64, w.Width)
	for c := range xs {
		xs[c], _ = r.gt.ToProjected(0, float64(w.XOffset+c))
	}
	ys = make([]float64, w.Height)
	for l := range ys {
		_, ys[l] = r.gt.ToProjected(float64(w.YOffset+l), 0)
	}
	return xs, ys, nil
}
