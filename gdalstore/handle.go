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

package gdalstore

import (
	"fmt"

	"github.com/airbusgeo/geogrid"
	"github.com/airbusgeo/godal"
)

// Handle is an opened godal.Dataset
type Handle struct {
	st     *Store
	ds     *godal.Dataset
	name   string
	driver geogrid.DriverName
}

var _ geogrid.Handle = (*Handle)(nil)

func (st *Store) handle(ds *godal.Dataset, name string) *Handle {
	driver := geogrid.DriverName(ds.Driver().ShortName())
	if driver == "MEM" {
		driver = geogrid.Memory
	}
	return &Handle{st: st, ds: ds, name: name, driver: driver}
}

// Dataset returns the underlying dataset, or nil once the handle is closed
func (h *Handle) Dataset() *godal.Dataset {
	return h.ds
}

func (h *Handle) open() error {
	if h.ds == nil {
		return fmt.Errorf("%s is closed", h.name)
	}
	return nil
}

// Name implements geogrid.Handle
func (h *Handle) Name() string {
	return h.name
}

// Driver implements geogrid.Handle
func (h *Handle) Driver() geogrid.DriverName {
	return h.driver
}

// Structure implements geogrid.Handle
func (h *Handle) Structure() geogrid.Structure {
	if h.ds == nil {
		return geogrid.Structure{}
	}
	s := h.ds.Structure()
	ret := geogrid.Structure{
		SizeX:      s.SizeX,
		SizeY:      s.SizeY,
		BlockSizeX: s.BlockSizeX,
		BlockSizeY: s.BlockSizeY,
		NBands:     s.NBands,
		DataType:   fromGDAL(s.DataType),
	}
	for _, b := range h.ds.Bands() {
		bs := b.Structure()
		ret.BandBlockSizes = append(ret.BandBlockSizes, [2]int{bs.BlockSizeX, bs.BlockSizeY})
	}
	return ret
}

func (h *Handle) band(band int) (godal.Band, error) {
	if err := h.open(); err != nil {
		return godal.Band{}, err
	}
	bands := h.ds.Bands()
	if band < 1 || band > len(bands) {
		return godal.Band{}, fmt.Errorf("band %d out of range [1,%d]", band, len(bands))
	}
	return bands[band-1], nil
}

// ReadBand implements geogrid.Handle
func (h *Handle) ReadBand(band, xOff, yOff, width, height int) (*geogrid.Array, error) {
	b, err := h.band(band)
	if err != nil {
		return nil, err
	}
	buf := make([]float64, width*height)
	if err := b.Read(xOff, yOff, buf, width, height, godal.ErrLogger(h.st.errorHandler)); err != nil {
		return nil, fmt.Errorf("band.read: %w", err)
	}
	return geogrid.NewArrayFrom(width, height, 1, buf)
}

// WriteBand implements geogrid.Handle
func (h *Handle) WriteBand(band int, data *geogrid.Array, xOff, yOff int) error {
	b, err := h.band(band)
	if err != nil {
		return err
	}
	if data == nil || data.Bands != 1 {
		return fmt.Errorf("write band %d: %w", band, geogrid.ErrShapeMismatch)
	}
	if err := b.Write(xOff, yOff, data.Data, data.Width, data.Height, godal.ErrLogger(h.st.errorHandler)); err != nil {
		return fmt.Errorf("band.write: %w", err)
	}
	return nil
}

// GeoTransform implements geogrid.Handle
func (h *Handle) GeoTransform() ([6]float64, error) {
	if err := h.open(); err != nil {
		return [6]float64{}, err
	}
	return h.ds.GeoTransform(godal.ErrLogger(h.st.errorHandler))
}

// SetGeoTransform implements geogrid.Handle
func (h *Handle) SetGeoTransform(gt [6]float64) error {
	if err := h.open(); err != nil {
		return err
	}
	return h.ds.SetGeoTransform(gt, godal.ErrLogger(h.st.errorHandler))
}

// Projection implements geogrid.Handle
func (h *Handle) Projection() string {
	if h.ds == nil {
		return ""
	}
	return h.ds.Projection()
}

// SetProjection implements geogrid.Handle
func (h *Handle) SetProjection(wkt string) error {
	if err := h.open(); err != nil {
		return err
	}
	return h.ds.SetProjection(wkt, godal.ErrLogger(h.st.errorHandler))
}

// Flush implements geogrid.Handle. godal offers no explicit cache flush, pending
// writes are committed by Close.
func (h *Handle) Flush() error {
	return h.open()
}

// Close implements geogrid.Handle
func (h *Handle) Close() error {
	if err := h.open(); err != nil {
		return err
	}
	ds := h.ds
	h.ds = nil
	return ds.Close(godal.ErrLogger(h.st.errorHandler))
}
