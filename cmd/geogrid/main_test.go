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

package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/airbusgeo/geogrid"
	"github.com/airbusgeo/geogrid/gdalstore"
	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	godal.RegisterAll()
}

func pixel(band, row, col int) float64 {
	return float64(band*1000 + row*80 + col)
}

// fixture writes a 80x100 two band raster tiled in 32x32 blocks
func fixture(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "in.tif")
	r, err := geogrid.Create(gdalstore.New(), name, 100, 80, 10, 500000, 4000000,
		geogrid.Bands(2), geogrid.Float32,
		geogrid.CreationOption("TILED=YES", "BLOCKXSIZE=32", "BLOCKYSIZE=32"))
	require.NoError(t, err)
	require.NoError(t, r.SetEPSG(32631))
	for b := 0; b < 2; b++ {
		a := geogrid.NewArray(80, 100, 1)
		for row := 0; row < 100; row++ {
			for col := 0; col < 80; col++ {
				a.Set(row, col, 0, pixel(b, row, col))
			}
		}
		require.NoError(t, r.WriteAll(a, b+1))
	}
	require.NoError(t, r.Close())
	return name
}

func run(args ...string) (string, error) {
	buf := bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--log-level=error"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestInfo(t *testing.T) {
	in := fixture(t)
	out, err := run("info", in)
	require.NoError(t, err)
	assert.Contains(t, out, "size: 80x100, 2 band(s) of Float32\n")
	assert.Contains(t, out, "origin: 500000,4e+06\n")
	assert.Contains(t, out, "extent: 500000,3.999e+06,500800,4e+06\n")
	assert.Contains(t, out, "block size: 32x32\n")
	assert.Contains(t, out, "blocks: 4 rows x 3 cols\n")
	assert.Contains(t, out, "srs: ")

	_, err = run("info", filepath.Join(t.TempDir(), "missing.tif"))
	assert.ErrorIs(t, err, geogrid.ErrIOFailure)

	_, err = run("info")
	assert.Error(t, err)
}

func TestBlocks(t *testing.T) {
	in := fixture(t)
	out, err := run("blocks", in)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "0\t0,0\t0,0\t32x32", lines[0])
	assert.Equal(t, "3\t3,0\t0,96\t32x4", lines[3])
	assert.Equal(t, "4\t0,1\t32,0\t32x32", lines[4])
	assert.Equal(t, "11\t3,2\t64,96\t16x4", lines[11])
}

func TestWindow(t *testing.T) {
	in := fixture(t)

	out, err := run("window", in, "500000", "3999000", "500800", "4000000")
	require.NoError(t, err)
	assert.Equal(t, "offset: 0,0\nsize: 80x100\norigin: 500000,4e+06\n", out)

	out, err = run("window", in, "500025", "3999025", "500075", "3999075")
	require.NoError(t, err)
	assert.Equal(t, "offset: 2,92\nsize: 4x5\norigin: 500020,3.99908e+06\n", out)

	_, err = run("window", in, "499950", "3999025", "500075", "3999075")
	assert.ErrorIs(t, err, geogrid.ErrPartialCoverage)
	out, err = run("window", "--partial", in, "499950", "3999025", "500075", "3999075")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "offset: 0,92\n"))

	_, err = run("window", in, "600000", "3999025", "600075", "3999075")
	assert.ErrorIs(t, err, geogrid.ErrOutOfBounds)

	_, err = run("window", in, "a", "3999025", "500075", "3999075")
	assert.ErrorIs(t, err, geogrid.ErrInvalidInput)
}

func TestCrop(t *testing.T) {
	in := fixture(t)
	name := filepath.Join(t.TempDir(), "crop.tif")
	_, err := run("crop", in, "500025", "3999025", "500075", "3999075", "-o", name)
	require.NoError(t, err)

	r, err := geogrid.Open(gdalstore.New(), name)
	require.NoError(t, err)
	defer r.Close()
	rows, cols, bands := r.Shape()
	assert.Equal(t, []int{5, 4, 2}, []int{rows, cols, bands})
	assert.Equal(t, geogrid.Float32, r.DataType())
	assert.Equal(t, 500020.0, r.GeoTransform().OriginX)
	assert.Equal(t, 3999080.0, r.GeoTransform().OriginY)
	a, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, pixel(0, 92, 2), a.At(0, 0, 0))
	assert.Equal(t, pixel(1, 96, 5), a.At(4, 3, 1))

	_, err = run("crop", in, "499950", "3999025", "500075", "3999075", "-o", name)
	assert.True(t, errors.Is(err, geogrid.ErrPartialCoverage))
}

func TestCog(t *testing.T) {
	in := fixture(t)
	dir := t.TempDir()
	name := filepath.Join(dir, "cog.tif")
	_, err := run("cog", in, "-o", name, "--tmp", dir, "--metrics")
	require.NoError(t, err)

	st := gdalstore.New()
	r, err := geogrid.Open(st, name)
	require.NoError(t, err)
	defer r.Close()
	bw, bh := r.BlockSize()
	assert.Equal(t, 32, bw)
	assert.Equal(t, 32, bh)
	src, err := geogrid.Open(st, in)
	require.NoError(t, err)
	defer src.Close()
	assert.True(t, r.Equal(src))

	got, err := r.ReadAll()
	require.NoError(t, err)
	want, err := src.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want.Data, got.Data)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tif"))
	assert.Equal(t, []string{name}, matches)
}
