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

import "fmt"

// RasterDefinition is the georeferencing of a raster: its pixel grid and its
// spatial reference system. It is the description exchanged with other stages
// of a processing chain.
type RasterDefinition struct {
	GeoTransform
	SRS string
}

// PixelSizeX is the horizontal step between two columns
func (d RasterDefinition) PixelSizeX() float64 {
	return d.PixelSize
}

// PixelSizeY is the vertical step between two rows. It is negative as rows go
// downwards while Y goes upwards.
func (d RasterDefinition) PixelSizeY() float64 {
	return -d.PixelSize
}

// Extent returns the area covered by the definition
func (d RasterDefinition) Extent() BoundingBox {
	return d.Bounds(d.SRS)
}

// Definition returns the georeferencing of r
func (r *Raster) Definition() RasterDefinition {
	return RasterDefinition{GeoTransform: r.gt, SRS: r.srs}
}

// CreateFromDefinition creates a new raster matching def. Options are the ones
// of Create.
func CreateFromDefinition(st Storage, name string, def RasterDefinition, opts ...CreateOption) (*Raster, error) {
	r, err := Create(st, name, def.Rows, def.Cols, def.PixelSize, def.OriginX, def.OriginY, opts...)
	if err != nil {
		return nil, err
	}
	if def.SRS == "" {
		return r, nil
	}
	if err := r.h.SetProjection(def.SRS); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("set projection: %w", err)
	}
	r.srs = r.h.Projection()
	if err := r.flush(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
