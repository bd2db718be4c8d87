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

package memstore_test

import (
	"errors"
	"testing"

	"github.com/airbusgeo/geogrid"
	"github.com/airbusgeo/geogrid/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOpen(t *testing.T) {
	st := memstore.New(64, 32)
	_, err := st.Open("nope.tif", false)
	assert.Error(t, err)

	h, err := st.Create("foo.tif", geogrid.CreateParams{Width: 100, Height: 50, Bands: 3, DataType: geogrid.UInt16})
	require.NoError(t, err)
	assert.Equal(t, geogrid.GTiff, h.Driver())
	assert.Equal(t, "foo.tif", h.Name())
	s := h.Structure()
	assert.Equal(t, 100, s.SizeX)
	assert.Equal(t, 50, s.SizeY)
	assert.Equal(t, 64, s.BlockSizeX)
	assert.Equal(t, 32, s.BlockSizeY)
	assert.Equal(t, 3, s.NBands)
	assert.Len(t, s.BandBlockSizes, 3)
	assert.Equal(t, geogrid.UInt16, s.DataType)

	_, err = h.GeoTransform()
	assert.Error(t, err)
	gt := [6]float64{10, 2, 0, 20, 0, -2}
	require.NoError(t, h.SetGeoTransform(gt))
	require.NoError(t, h.SetProjection("EPSG:32631"))
	require.NoError(t, h.Close())
	assert.Error(t, h.Close())
	assert.True(t, st.Exists("foo.tif"))

	ro, err := st.Open("foo.tif", false)
	require.NoError(t, err)
	rgt, err := ro.GeoTransform()
	assert.NoError(t, err)
	assert.Equal(t, gt, rgt)
	assert.Equal(t, "EPSG:32631", ro.Projection())
	assert.Error(t, ro.WriteBand(1, geogrid.NewArray(2, 2, 1), 0, 0))
	assert.Error(t, ro.SetProjection(""))
	_ = ro.Close()

	st.Remove("foo.tif")
	assert.False(t, st.Exists("foo.tif"))

	_, err = st.Create("", geogrid.CreateParams{Width: 10, Height: 10, Bands: 1, DataType: geogrid.Byte})
	assert.Error(t, err)
	_, err = st.Create("", geogrid.CreateParams{Width: 10, Height: 10, Bands: 1})
	assert.Error(t, err)
	mem, err := st.Create("", geogrid.CreateParams{Width: 10, Height: 10, Bands: 1, DataType: geogrid.Byte, InMemory: true})
	assert.NoError(t, err)
	assert.Equal(t, geogrid.Memory, mem.Driver())
	assert.False(t, st.Exists(""))
}

func TestBlockSize(t *testing.T) {
	st := memstore.New(0, 0)
	h, err := st.Create("scan.tif", geogrid.CreateParams{Width: 100, Height: 50, Bands: 1, DataType: geogrid.Byte})
	require.NoError(t, err)
	assert.Equal(t, 100, h.Structure().BlockSizeX)
	assert.Equal(t, 1, h.Structure().BlockSizeY)

	h, err = st.Create("tiled.tif", geogrid.CreateParams{Width: 100, Height: 50, Bands: 1, DataType: geogrid.Byte,
		Options: []string{"TILED=YES", "BLOCKXSIZE=32", "blockysize=16"}})
	require.NoError(t, err)
	assert.Equal(t, 32, h.Structure().BlockSizeX)
	assert.Equal(t, 16, h.Structure().BlockSizeY)

	h, err = st.Create("big.tif", geogrid.CreateParams{Width: 100, Height: 50, Bands: 1, DataType: geogrid.Byte,
		Options: []string{"BLOCKXSIZE=256", "BLOCKYSIZE=256"}})
	require.NoError(t, err)
	assert.Equal(t, 100, h.Structure().BlockSizeX)
	assert.Equal(t, 50, h.Structure().BlockSizeY)

	_, err = st.Create("bad.tif", geogrid.CreateParams{Width: 100, Height: 50, Bands: 1, DataType: geogrid.Byte,
		Options: []string{"BLOCKXSIZE=abc"}})
	assert.Error(t, err)
	_, err = st.Create("bad.tif", geogrid.CreateParams{Width: 100, Height: 50, Bands: 1, DataType: geogrid.Byte,
		Options: []string{"COMPRESS"}})
	assert.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	st := memstore.New(4, 4)
	h, err := st.Create("rw.tif", geogrid.CreateParams{Width: 10, Height: 8, Bands: 2, DataType: geogrid.Byte})
	require.NoError(t, err)

	data := geogrid.NewArray(3, 2, 1)
	copy(data.Data, []float64{1, 2, 3, -5, 300, 7.6})
	require.NoError(t, h.WriteBand(2, data, 4, 5))

	a, err := h.ReadBand(2, 4, 5, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 0, 255, 8}, a.Data)

	a, err = h.ReadBand(1, 4, 5, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 6), a.Data)

	a, err = h.ReadBand(2, 3, 5, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, a.Data)

	_, err = h.ReadBand(3, 0, 0, 1, 1)
	assert.Error(t, err)
	_, err = h.ReadBand(1, 9, 0, 2, 1)
	assert.Error(t, err)
	_, err = h.ReadBand(1, 0, 0, 0, 1)
	assert.Error(t, err)
	assert.Error(t, h.WriteBand(1, geogrid.NewArray(2, 2, 1), 9, 7))
	assert.Error(t, h.WriteBand(1, nil, 0, 0))
	err = h.WriteBand(1, geogrid.NewArray(3, 2, 2), 4, 5)
	assert.True(t, errors.Is(err, geogrid.ErrShapeMismatch))
	a, err = h.ReadBand(1, 4, 5, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 6), a.Data)

	f, err := st.Create("f.tif", geogrid.CreateParams{Width: 2, Height: 1, Bands: 1, DataType: geogrid.Float64})
	require.NoError(t, err)
	data = geogrid.NewArray(2, 1, 1)
	copy(data.Data, []float64{-1.25, 1e300})
	require.NoError(t, f.WriteBand(1, data, 0, 0))
	a, _ = f.ReadBand(1, 0, 0, 2, 1)
	assert.Equal(t, data.Data, a.Data)

	require.NoError(t, h.Close())
	_, err = h.ReadBand(1, 0, 0, 1, 1)
	assert.Error(t, err)
}

func TestSystems(t *testing.T) {
	st := memstore.New(0, 0)
	assert.True(t, st.SameSystem("", ""))
	assert.True(t, st.SameSystem(`GEOGCS["WGS 84", DATUM["WGS_1984"]]`, `geogcs["WGS 84",datum["WGS_1984"]]`))
	assert.False(t, st.SameSystem("EPSG:4326", "EPSG:3857"))
	assert.False(t, st.SameSystem("EPSG:4326", ""))
	assert.True(t, st.SameSystem(" epsg:4326", "EPSG:4326"))
	// definitions are not resolved: a code and its WKT differ
	assert.False(t, st.SameSystem("EPSG:4326", `GEOGCS["WGS 84",DATUM["WGS_1984"],AUTHORITY["EPSG","4326"]]`))

	srs, err := st.ImportSystem(" epsg:4326 ")
	assert.NoError(t, err)
	assert.Equal(t, "EPSG:4326", srs)
	srs, err = st.ImportSystem("+proj=longlat +datum=WGS84")
	assert.NoError(t, err)
	assert.Equal(t, "+proj=longlat +datum=WGS84", srs)
	_, err = st.ImportSystem("EPSG:abc")
	assert.Error(t, err)
	_, err = st.ImportSystem("  ")
	assert.Error(t, err)
}

func TestWarpUnsupported(t *testing.T) {
	st := memstore.New(0, 0)
	h, _ := st.Create("", geogrid.CreateParams{Width: 2, Height: 2, Bands: 1, DataType: geogrid.Byte, InMemory: true})
	_, err := st.Warp(h, "", geogrid.WarpParams{Resolution: 2})
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}
