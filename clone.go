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
)

const defaultCloneBlockSize = 256

// cloneBlockSize keeps a source block dimension usable as a GeoTIFF tile size,
// i.e. a power of two no smaller than 16
func cloneBlockSize(src int) int {
	if src >= 16 && src&(src-1) == 0 {
		return src
	}
	return defaultCloneBlockSize
}

// CloneEmpty creates a new empty raster named name with the same driver, extent,
// geotransform and projection as r. The clone is tiled and writable.
//
// Unless specified through options the clone has the band count of r and a
// Byte data type.
func (r *Raster) CloneEmpty(name string, opts ...CloneOption) (*Raster, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	co := cloneOpts{
		bands: r.bands,
		dtype: Byte,
	}
	for _, o := range opts {
		o.setCloneOpt(&co)
	}
	if co.bands == 0 {
		co.bands = r.bands
	}
	if co.bands < 0 {
		return nil, fmt.Errorf("clone with %d bands: %w", co.bands, ErrInvalidInput)
	}
	driver := r.h.Driver()
	if driver != Memory && name == "" {
		return nil, fmt.Errorf("clone to %s without a name: %w", driver, ErrInvalidInput)
	}
	bw, bh := cloneBlockSize(r.blockW), cloneBlockSize(r.blockH)
	creation := []string{
		"TILED=YES",
		fmt.Sprintf("BLOCKXSIZE=%d", bw),
		fmt.Sprintf("BLOCKYSIZE=%d", bh),
	}
	if co.nbits > 0 {
		creation = append(creation, fmt.Sprintf("NBITS=%d", co.nbits))
	}
	creation = append(creation, co.creation...)

	h, err := createHandle(r.st, name, r.gt, r.srs, CreateParams{
		Width:    r.gt.Cols,
		Height:   r.gt.Rows,
		Bands:    co.bands,
		DataType: co.dtype,
		Driver:   driver,
		InMemory: driver == Memory,
		Options:  creation,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("raster", r.name).Str("clone", name).Int("block_width", bw).
		Int("block_height", bh).Msg("empty clone created")
	clone, err := newRaster(r.st, h, true, co.rasterOpts, &r.logger)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	return clone, nil
}

// ChangeResolution resamples r to a pixelSize resolution into a new raster
// named name. The output extent is aligned on multiples of pixelSize. r is left
// untouched.
//
// The output is a GeoTIFF unless InMemory or another DriverName is passed. name
// is mandatory for GeoTIFF outputs.
func (r *Raster) ChangeResolution(pixelSize float64, name string, opts ...WarpOption) (*Raster, error) {
	if pixelSize <= 0 {
		return nil, fmt.Errorf("change resolution to %v: %w", pixelSize, ErrInvalidInput)
	}
	return r.warp(name, WarpParams{Resolution: pixelSize, TargetAlignedPixels: true}, opts)
}

// Reproject warps r into the srs spatial reference system, into a new raster
// named name. r is left untouched. Output options are the ones of
// ChangeResolution.
func (r *Raster) Reproject(srs string, name string, opts ...WarpOption) (*Raster, error) {
	if srs == "" {
		return nil, fmt.Errorf("reproject to empty srs: %w", ErrInvalidInput)
	}
	return r.warp(name, WarpParams{TargetSRS: srs}, opts)
}

func (r *Raster) warp(name string, p WarpParams, opts []WarpOption) (*Raster, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	wo := warpOpts{driver: GTiff}
	for _, o := range opts {
		o.setWarpOpt(&wo)
	}
	if wo.inMemory {
		wo.driver = Memory
	}
	if wo.driver != Memory && name == "" {
		return nil, fmt.Errorf("warp to %s without a name: %w", wo.driver, ErrInvalidInput)
	}
	p.InMemory = wo.inMemory
	p.Driver = wo.driver
	p.Options = wo.creation
	h, err := r.st.Warp(r.h, name, p)
	if err != nil {
		return nil, fmt.Errorf("warp %s to %s: %w: %w", r.name, name, ErrIOFailure, err)
	}
	if h == nil {
		return nil, fmt.Errorf("warp %s to %s: no handle: %w", r.name, name, ErrIOFailure)
	}
	r.logger.Debug().Str("raster", r.name).Str("output", name).Float64("resolution", p.Resolution).
		Str("target_srs", p.TargetSRS).Msg("raster warped")
	out, err := newRaster(r.st, h, true, wo.rasterOpts, &r.logger)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	return out, nil
}
