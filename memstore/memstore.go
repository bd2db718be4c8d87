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

// Package memstore is a pure Go, in-memory geogrid.Storage. Rasters created with
// a driver other than geogrid.Memory are kept by name in the Store and can be
// reopened after being closed, as files would.
//
// memstore does not resample: Warp always fails. It has no spatial reference
// system database either: SameSystem compares definitions as text, ignoring
// case and white space, so "EPSG:4326" and the WKT of EPSG:4326 are different
// systems for memstore. Use gdalstore for structural comparisons.
package memstore

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/geogrid"
)

// Store is an in-memory geogrid.Storage. It is safe for concurrent use, the
// handles it returns are not.
type Store struct {
	mu          sync.Mutex
	rasters     map[string]*raster
	blockWidth  int
	blockHeight int
}

// New creates an empty Store. Rasters created without BLOCKXSIZE/BLOCKYSIZE
// creation options get blockWidth x blockHeight blocks. A zero size makes
// blocks span the whole raster width and a single line.
func New(blockWidth, blockHeight int) *Store {
	return &Store{
		rasters:     map[string]*raster{},
		blockWidth:  blockWidth,
		blockHeight: blockHeight,
	}
}

var _ geogrid.Storage = (*Store)(nil)

type raster struct {
	mu        sync.Mutex
	name      string
	driver    geogrid.DriverName
	structure geogrid.Structure
	bands     [][]float64
	gt        [6]float64
	hasGT     bool
	proj      string
}

// Exists reports whether a raster named name is stored
func (s *Store) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rasters[name]
	return ok
}

// Remove deletes the named raster. Opened handles stay valid.
func (s *Store) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rasters, name)
}

// Open implements geogrid.Storage
func (s *Store) Open(name string, update bool) (geogrid.Handle, error) {
	s.mu.Lock()
	r, ok := s.rasters[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: no such raster", name)
	}
	return &Handle{r: r, update: update}, nil
}

// Create implements geogrid.Storage
func (s *Store) Create(name string, p geogrid.CreateParams) (geogrid.Handle, error) {
	if p.Width <= 0 || p.Height <= 0 || p.Bands <= 0 {
		return nil, fmt.Errorf("invalid size %dx%dx%d", p.Width, p.Height, p.Bands)
	}
	if p.DataType.Size() == 0 {
		return nil, fmt.Errorf("invalid datatype %s", p.DataType)
	}
	driver := p.Driver
	if p.InMemory {
		driver = geogrid.Memory
	}
	if driver == "" {
		driver = geogrid.GTiff
	}
	bw, bh, err := s.blockSize(p)
	if err != nil {
		return nil, err
	}
	r := &raster{
		name:   name,
		driver: driver,
		structure: geogrid.Structure{
			SizeX:      p.Width,
			SizeY:      p.Height,
			BlockSizeX: bw,
			BlockSizeY: bh,
			NBands:     p.Bands,
			DataType:   p.DataType,
		},
		bands: make([][]float64, p.Bands),
	}
	for i := range r.bands {
		r.bands[i] = make([]float64, p.Width*p.Height)
		r.structure.BandBlockSizes = append(r.structure.BandBlockSizes, [2]int{bw, bh})
	}
	if driver != geogrid.Memory {
		if name == "" {
			return nil, fmt.Errorf("%s raster requires a name", driver)
		}
		s.mu.Lock()
		s.rasters[name] = r
		s.mu.Unlock()
	}
	return &Handle{r: r, update: true}, nil
}

func (s *Store) blockSize(p geogrid.CreateParams) (int, int, error) {
	bw, bh := s.blockWidth, s.blockHeight
	for _, o := range p.Options {
		k, v, ok := strings.Cut(o, "=")
		if !ok {
			return 0, 0, fmt.Errorf("invalid creation option %q", o)
		}
		switch strings.ToUpper(k) {
		case "BLOCKXSIZE", "BLOCKYSIZE":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return 0, 0, fmt.Errorf("invalid creation option %q", o)
			}
			if strings.EqualFold(k, "BLOCKXSIZE") {
				bw = n
			} else {
				bh = n
			}
		}
	}
	if bw <= 0 || bh <= 0 {
		bw, bh = p.Width, 1
	}
	return min(bw, p.Width), min(bh, p.Height), nil
}

// Warp implements geogrid.Storage. memstore does not resample, Warp always
// fails with errors.ErrUnsupported.
func (s *Store) Warp(src geogrid.Handle, dst string, p geogrid.WarpParams) (geogrid.Handle, error) {
	return nil, fmt.Errorf("memstore warp %s: %w", src.Name(), errors.ErrUnsupported)
}

// SameSystem implements geogrid.SpatialSystems. Definitions are normalized with
// ImportSystem then compared ignoring case and white space. Two definitions of
// the same system in different forms (EPSG code and WKT) are not the same.
func (s *Store) SameSystem(a, b string) bool {
	return normalize(s.importOrKeep(a)) == normalize(s.importOrKeep(b))
}

func (s *Store) importOrKeep(srs string) string {
	if in, err := s.ImportSystem(srs); err == nil {
		return in
	}
	return srs
}

// ImportSystem implements geogrid.SpatialSystems. EPSG codes are normalized to
// the "EPSG:code" form, anything else is returned as is.
func (s *Store) ImportSystem(userInput string) (string, error) {
	in := strings.TrimSpace(userInput)
	if in == "" {
		return "", fmt.Errorf("empty srs")
	}
	if auth, code, ok := strings.Cut(in, ":"); ok && strings.EqualFold(auth, "EPSG") {
		n, err := strconv.Atoi(code)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid epsg code %q", code)
		}
		return geogrid.EPSG(n), nil
	}
	return in, nil
}

func normalize(srs string) string {
	return strings.ToUpper(strings.Join(strings.Fields(srs), ""))
}

// Handle is an opened memstore raster
type Handle struct {
	r      *raster
	update bool
	closed bool
}

var _ geogrid.Handle = (*Handle)(nil)

// Name implements geogrid.Handle
func (h *Handle) Name() string { return h.r.name }

// Driver implements geogrid.Handle
func (h *Handle) Driver() geogrid.DriverName { return h.r.driver }

// Structure implements geogrid.Handle
func (h *Handle) Structure() geogrid.Structure { return h.r.structure }

func (h *Handle) check(band, xOff, yOff, width, height int) error {
	if h.closed {
		return fmt.Errorf("%s is closed", h.r.name)
	}
	s := h.r.structure
	if band < 1 || band > s.NBands {
		return fmt.Errorf("band %d out of range [1,%d]", band, s.NBands)
	}
	if xOff < 0 || yOff < 0 || width <= 0 || height <= 0 || xOff+width > s.SizeX || yOff+height > s.SizeY {
		return fmt.Errorf("window %d,%d+%dx%d outside %dx%d raster", xOff, yOff, width, height, s.SizeX, s.SizeY)
	}
	return nil
}

// ReadBand implements geogrid.Handle
func (h *Handle) ReadBand(band, xOff, yOff, width, height int) (*geogrid.Array, error) {
	if err := h.check(band, xOff, yOff, width, height); err != nil {
		return nil, err
	}
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	a := geogrid.NewArray(width, height, 1)
	src := h.r.bands[band-1]
	for l := 0; l < height; l++ {
		off := (yOff+l)*h.r.structure.SizeX + xOff
		copy(a.Data[l*width:(l+1)*width], src[off:off+width])
	}
	return a, nil
}

// WriteBand implements geogrid.Handle. Values are converted to the raster data
// type: integer types are rounded and clamped to their range.
func (h *Handle) WriteBand(band int, data *geogrid.Array, xOff, yOff int) error {
	if data == nil || data.Bands != 1 {
		return fmt.Errorf("write band %d: %w", band, geogrid.ErrShapeMismatch)
	}
	if err := h.check(band, xOff, yOff, data.Width, data.Height); err != nil {
		return err
	}
	if !h.update {
		return fmt.Errorf("%s opened read-only", h.r.name)
	}
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	dst := h.r.bands[band-1]
	dt := h.r.structure.DataType
	for l := 0; l < data.Height; l++ {
		off := (yOff+l)*h.r.structure.SizeX + xOff
		for c := 0; c < data.Width; c++ {
			dst[off+c] = convert(data.At(l, c, 0), dt)
		}
	}
	return nil
}

var ranges = map[geogrid.DataType][2]float64{
	geogrid.Byte:   {0, math.MaxUint8},
	geogrid.UInt16: {0, math.MaxUint16},
	geogrid.Int16:  {math.MinInt16, math.MaxInt16},
	geogrid.UInt32: {0, math.MaxUint32},
	geogrid.Int32:  {math.MinInt32, math.MaxInt32},
}

func convert(v float64, dt geogrid.DataType) float64 {
	switch dt {
	case geogrid.Float32:
		return float64(float32(v))
	case geogrid.Float64:
		return v
	}
	rg := ranges[dt]
	return math.Max(rg[0], math.Min(rg[1], math.Round(v)))
}

// GeoTransform implements geogrid.Handle
func (h *Handle) GeoTransform() ([6]float64, error) {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	if !h.r.hasGT {
		return [6]float64{}, fmt.Errorf("%s has no geotransform", h.r.name)
	}
	return h.r.gt, nil
}

// SetGeoTransform implements geogrid.Handle
func (h *Handle) SetGeoTransform(gt [6]float64) error {
	if !h.update {
		return fmt.Errorf("%s opened read-only", h.r.name)
	}
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	h.r.gt, h.r.hasGT = gt, true
	return nil
}

// Projection implements geogrid.Handle
func (h *Handle) Projection() string {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	return h.r.proj
}

// SetProjection implements geogrid.Handle
func (h *Handle) SetProjection(wkt string) error {
	if !h.update {
		return fmt.Errorf("%s opened read-only", h.r.name)
	}
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	h.r.proj = wkt
	return nil
}

// Flush implements geogrid.Handle. It is a no-op.
func (h *Handle) Flush() error {
	return nil
}

// Close implements geogrid.Handle
func (h *Handle) Close() error {
	if h.closed {
		return fmt.Errorf("%s already closed", h.r.name)
	}
	h.closed = true
	return nil
}
