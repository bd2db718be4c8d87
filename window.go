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

// ResolvedWindow is the pixel window matching a bounding box, along with the
// projected coordinates of its top-left corner. The origin may be shifted from the
// query box as the window is aligned on the pixel grid.
type ResolvedWindow struct {
	Window
	OriginX, OriginY float64
}

// Span returns the window with end-exclusive bounds
func (w Window) Span() Span {
	return Span{Y0: w.YOffset, Y1: w.YOffset + w.Height, X0: w.XOffset, X1: w.XOffset + w.Width}
}

// Empty reports whether the window contains no pixels
func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

// Inside reports whether the window lies entirely in a cols x rows raster
func (w Window) Inside(cols, rows int) bool {
	return w.XOffset >= 0 && w.YOffset >= 0 &&
		w.XOffset+w.Width <= cols && w.YOffset+w.Height <= rows
}

// ResolveWindow computes the pixel window of gt covering query.
//
// The query must be expressed in the raster's system (imageSRS) unless
// AllowAnySystem is passed. A query not intersecting the raster fails with
// ErrOutOfBounds. A query only partially inside the raster fails with
// ErrPartialCoverage unless AllowPartial is passed, in which case it is clipped
// to the raster extent.
//
// Offsets are rounded towards the raster origin so that a partially covered
// pixel on the top or left side is included. Sides clipped to the raster
// boundary get offset 0 (resp. the full remaining size) without any division.
// The width of an unclipped query is shortened by one pixel so that its right
// edge never rounds past the last covered pixel.
func ResolveWindow(gt GeoTransform, imageSRS string, query BoundingBox, systems SpatialSystems, opts ...ResolveOption) (ResolvedWindow, error) {
	ro := resolveOpts{}
	for _, o := range opts {
		o.setResolveOpt(&ro)
	}
	image := gt.Bounds(imageSRS)
	px := gt.PixelSize

	if !ro.anySystem && !systems.SameSystem(image.SRS, query.SRS) {
		return ResolvedWindow{}, fmt.Errorf("resolve window: %w", ErrSystemMismatch)
	}
	if !image.Intersects(query) {
		return ResolvedWindow{}, fmt.Errorf("resolve window [%v,%v,%v,%v]: %w",
			query.XMin, query.YMin, query.XMax, query.YMax, ErrOutOfBounds)
	}
	clipped, edges := query.Clip(image)
	if edges.Any() && !ro.partial {
		return ResolvedWindow{}, fmt.Errorf("resolve window [%v,%v,%v,%v], use AllowPartial(): %w",
			query.XMin, query.YMin, query.XMax, query.YMax, ErrPartialCoverage)
	}

	rw := ResolvedWindow{OriginX: image.XMin, OriginY: image.YMax}
	if !edges.Left {
		rw.XOffset = PixelIndex((clipped.XMin-image.XMin)/px, Floor)
		rw.OriginX = image.XMin + float64(rw.XOffset)*px
	}
	if !edges.Top {
		rw.YOffset = PixelIndex((image.YMax-clipped.YMax)/px, Floor)
		rw.OriginY = image.YMax - float64(rw.YOffset)*px
	}

	if clipped.XMax >= image.XMax {
		rw.Width = gt.Cols - rw.XOffset
	} else {
		rw.Width = PixelIndex((clipped.XMax-rw.OriginX)/px, Floor) - 1
	}
	if clipped.YMin <= image.YMin {
		rw.Height = gt.Rows - rw.YOffset
	} else {
		rw.Height = PixelIndex((rw.OriginY-clipped.YMin)/px, Floor)
	}

	if rw.Empty() {
		return ResolvedWindow{}, fmt.Errorf("resolve window [%v,%v,%v,%v] is smaller than a pixel: %w",
			query.XMin, query.YMin, query.XMax, query.YMax, ErrInvalidWindow)
	}
	if !rw.Inside(gt.Cols, gt.Rows) {
		return ResolvedWindow{}, fmt.Errorf("resolved window %+v outside %dx%d raster: %w",
			rw.Window, gt.Cols, gt.Rows, ErrInvalidWindow)
	}
	return rw, nil
}
