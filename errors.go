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

import "errors"

// Errors returned by geogrid. They are always wrapped with some context, use
// errors.Is to test for them:
//
//	_, err := raster.ResolveWindow(bbox)
//	if errors.Is(err, geogrid.ErrPartialCoverage) {
//		_, err = raster.ResolveWindow(bbox, geogrid.AllowPartial())
//	}
var (
	// ErrInvalidInput is returned for malformed arguments (nil handle, zero sized
	// raster, non-positive pixel or block size, ...)
	ErrInvalidInput = errors.New("invalid input")
	// ErrIOFailure is returned when the storage could not open or create a raster
	ErrIOFailure = errors.New("io failure")
	// ErrSystemMismatch is returned when two bounding boxes or rasters are not
	// expressed in the same spatial reference system
	ErrSystemMismatch = errors.New("spatial reference system mismatch")
	// ErrOutOfBounds is returned when a query box does not intersect the raster at all
	ErrOutOfBounds = errors.New("bounding box out of bounds")
	// ErrPartialCoverage is returned when a query box is only partially inside the
	// raster and AllowPartial was not requested
	ErrPartialCoverage = errors.New("bounding box partially out of raster extent")
	// ErrInvalidWindow is returned for pixel windows falling outside the raster
	ErrInvalidWindow = errors.New("invalid pixel window")
	// ErrIndex is returned for out of range block or band indexes
	ErrIndex = errors.New("index out of range")
	// ErrShapeMismatch is returned when a written array does not have the
	// dimensions of its target window
	ErrShapeMismatch = errors.New("array shape mismatch")
	// ErrReadOnly is returned by every write operation on a raster opened
	// without write access
	ErrReadOnly = errors.New("raster is read-only")
)
