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
	"math"
)

// GeoTransform maps pixel indexes of a north-up raster to projected coordinates.
//
// OriginX,OriginY are the coordinates of the top-left corner of pixel (0,0).
// Pixel rows increase downwards while projected Y increases upwards, so pixel
// (r,c) maps to (OriginX + c*PixelSize, OriginY - r*PixelSize).
type GeoTransform struct {
	OriginX, OriginY float64
	PixelSize        float64
	Rows, Cols       int
}

// NewGeoTransform builds a GeoTransform from GDAL's affine coefficients
//
//	[originX, pixelSizeX, rotX, originY, rotY, pixelSizeY]
//
// Only the X pixel size is used, the Y step is implicitly its opposite.
func NewGeoTransform(gt [6]float64, rows, cols int) (GeoTransform, error) {
	if gt[1] <= 0 {
		return GeoTransform{}, fmt.Errorf("pixel size %v: %w", gt[1], ErrInvalidInput)
	}
	if rows <= 0 || cols <= 0 {
		return GeoTransform{}, fmt.Errorf("raster size %dx%d: %w", cols, rows, ErrInvalidInput)
	}
	return GeoTransform{
		OriginX:   gt[0],
		OriginY:   gt[3],
		PixelSize: gt[1],
		Rows:      rows,
		Cols:      cols,
	}, nil
}

// GDAL returns the affine coefficients in GDAL's order
func (gt GeoTransform) GDAL() [6]float64 {
	return [6]float64{gt.OriginX, gt.PixelSize, 0, gt.OriginY, 0, -gt.PixelSize}
}

// ToProjected returns the projected coordinates of the top-left corner of pixel (row,col).
// Fractional pixel coordinates are accepted.
func (gt GeoTransform) ToProjected(row, col float64) (x, y float64) {
	return gt.OriginX + col*gt.PixelSize, gt.OriginY - row*gt.PixelSize
}

// ToPixel is the inverse of ToProjected. The returned pixel coordinates are not
// rounded, use PixelIndex to convert them to indexes.
func (gt GeoTransform) ToPixel(x, y float64) (row, col float64) {
	return (gt.OriginY - y) / gt.PixelSize, (x - gt.OriginX) / gt.PixelSize
}

// Bounds returns the extent covered by the raster
func (gt GeoTransform) Bounds(srs string) BoundingBox {
	return BoundingBox{
		XMin: gt.OriginX,
		YMin: gt.OriginY - float64(gt.Rows)*gt.PixelSize,
		XMax: gt.OriginX + float64(gt.Cols)*gt.PixelSize,
		YMax: gt.OriginY,
		SRS:  srs,
	}
}

// Rounding selects how a fractional pixel coordinate is turned into an index
type Rounding int

const (
	// Floor rounds towards negative infinity, i.e. towards the raster origin
	// for coordinates inside the raster.
	Floor Rounding = iota
	// Nearest rounds to the closest integer, halves to the even neighbour.
	Nearest
)

// PixelIndex converts a fractional pixel coordinate to an integer index. Every
// pixel coordinate computed from projected values goes through this function.
func PixelIndex(v float64, r Rounding) int {
	switch r {
	case Nearest:
		return int(math.RoundToEven(v))
	default:
		return int(math.Floor(v))
	}
}
