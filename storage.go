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

// DataType is the pixel type of a raster
type DataType int

const (
	// Unknown / Unset Datatype
	Unknown DataType = iota
	// Byte / UInt8
	Byte
	// UInt16 DataType
	UInt16
	// Int16 DataType
	Int16
	// UInt32 DataType
	UInt32
	// Int32 DataType
	Int32
	// Float32 DataType
	Float32
	// Float64 DataType
	Float64
)

var dataTypeNames = map[DataType]string{
	Unknown: "Unknown",
	Byte:    "Byte",
	UInt16:  "UInt16",
	Int16:   "Int16",
	UInt32:  "UInt32",
	Int32:   "Int32",
	Float32: "Float32",
	Float64: "Float64",
}

// String implements Stringer
func (dt DataType) String() string {
	if n, ok := dataTypeNames[dt]; ok {
		return n
	}
	return "Unknown"
}

// Size returns the number of bytes needed for one instance of DataType
func (dt DataType) Size() int {
	switch dt {
	case Byte:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// ParseDataType is the inverse of DataType.String
func ParseDataType(name string) (DataType, bool) {
	for dt, n := range dataTypeNames {
		if n == name && dt != Unknown {
			return dt, true
		}
	}
	return Unknown, false
}

// Structure describes the pixel layout of a raster handle
type Structure struct {
	SizeX, SizeY           int
	BlockSizeX, BlockSizeY int
	NBands                 int
	DataType               DataType
	// BandBlockSizes holds the natural block size of every band, in band order
	BandBlockSizes [][2]int
}

// Handle is an open raster owned by a storage. Bands are numbered from 1.
type Handle interface {
	// Name is the name the handle was opened or created with
	Name() string
	// Driver is the format driver backing the handle
	Driver() DriverName
	Structure() Structure
	// ReadBand reads a width x height window of band starting at xOff,yOff into a
	// single band Array
	ReadBand(band, xOff, yOff, width, height int) (*Array, error)
	// WriteBand writes the first band of data at xOff,yOff
	WriteBand(band int, data *Array, xOff, yOff int) error
	GeoTransform() ([6]float64, error)
	SetGeoTransform(gt [6]float64) error
	// Projection returns the WKT of the raster's spatial reference system. May be empty.
	Projection() string
	SetProjection(wkt string) error
	// Flush commits pending writes
	Flush() error
	Close() error
}

// CreateParams are the parameters of Storage.Create
type CreateParams struct {
	Width, Height int
	Bands         int
	DataType      DataType
	// Driver defaults to GTiff, or Memory when InMemory is set
	Driver   DriverName
	InMemory bool
	// Options are driver creation options in the form KEY=VALUE
	Options []string
}

// WarpParams are the parameters of Storage.Warp. Zero values are left to the storage.
type WarpParams struct {
	// Resolution is the target pixel size, used for both axes
	Resolution float64
	// TargetAlignedPixels aligns the output extent on multiples of Resolution
	TargetAlignedPixels bool
	// TargetSRS is the target spatial reference system, in any form accepted
	// by SpatialSystems.ImportSystem
	TargetSRS string
	InMemory  bool
	Driver    DriverName
	Options   []string
}

// Storage is the collaborator responsible for the actual pixel storage. It knows
// nothing about blocks grids or bounding boxes.
type Storage interface {
	// Open opens an existing raster. update requests write access.
	Open(name string, update bool) (Handle, error)
	// Create creates a new raster, opened with write access
	Create(name string, p CreateParams) (Handle, error)
	// Warp resamples and/or reprojects src into a new raster named dst
	Warp(src Handle, dst string, p WarpParams) (Handle, error)
	SpatialSystems
}
