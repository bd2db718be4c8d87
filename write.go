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

// WriteBlock writes the single band array data into band at the window of the
// block numbered index, and flushes the raster. data must have the exact size
// of the block window.
func (r *Raster) WriteBlock(data *Array, index, band int) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	if err := r.checkBand(band); err != nil {
		return err
	}
	w, err := r.grid.WindowAt(index)
	if err != nil {
		return err
	}
	if data == nil || data.Bands != 1 || data.Width != w.Width || data.Height != w.Height {
		return fmt.Errorf("write %s to block %d of size %dx%d: %w", shape(data), index, w.Height, w.Width, ErrShapeMismatch)
	}
	if err := r.h.WriteBand(band, data, w.XOffset, w.YOffset); err != nil {
		return fmt.Errorf("write band %d block %d: %w", band, index, err)
	}
	if r.cache != nil {
		r.cache.Remove(blockcache.Key{Source: r.source, Band: band, Block: index})
	}
	return r.flush()
}

// WriteAt writes the single band array data into band with its top-left corner
// at xOff,yOff, and flushes the raster
func (r *Raster) WriteAt(data *Array, xOff, yOff, band int) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	if err := r.checkBand(band); err != nil {
		return err
	}
	if data == nil || data.Bands != 1 {
		return fmt.Errorf("write %s to band %d: %w", shape(data), band, ErrShapeMismatch)
	}
	w := Window{XOffset: xOff, YOffset: yOff, Width: data.Width, Height: data.Height}
	if w.Empty() || !w.Inside(r.gt.Cols, r.gt.Rows) {
		return fmt.Errorf("write %s at %d,%d of a %dx%d raster: %w",
			shape(data), xOff, yOff, r.gt.Rows, r.gt.Cols, ErrInvalidWindow)
	}
	if err := r.h.WriteBand(band, data, xOff, yOff); err != nil {
		return fmt.Errorf("write band %d at %d,%d: %w", band, xOff, yOff, err)
	}
	if r.cache != nil {
		r.cache.PurgeSource(r.source)
	}
	return r.flush()
}

// WriteAll writes the single band array data into band starting at the first pixel
func (r *Raster) WriteAll(data *Array, band int) error {
	return r.WriteAt(data, 0, 0, band)
}

// SetSRS sets the spatial reference system of the raster. userInput may be any
// form understood by the storage, e.g. WKT, a PROJ string or "EPSG:4326".
func (r *Raster) SetSRS(userInput string) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	wkt, err := r.st.ImportSystem(userInput)
	if err != nil {
		return fmt.Errorf("import srs %q: %w: %w", userInput, ErrInvalidInput, err)
	}
	if err := r.h.SetProjection(wkt); err != nil {
		return fmt.Errorf("set projection: %w", err)
	}
	r.srs = r.h.Projection()
	r.logger.Debug().Str("raster", r.name).Str("srs", userInput).Msg("projection set")
	return r.flush()
}

// SetEPSG sets the spatial reference system of the raster from an EPSG code
func (r *Raster) SetEPSG(code int) error {
	return r.SetSRS(EPSG(code))
}

func (r *Raster) flush() error {
	if err := r.h.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", r.name, err)
	}
	return nil
}

func shape(a *Array) string {
	if a == nil {
		return "nil array"
	}
	return fmt.Sprintf("%dx%dx%d array", a.Height, a.Width, a.Bands)
}
