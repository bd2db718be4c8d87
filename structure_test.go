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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockGrid(t *testing.T) {
	for _, tc := range [][4]int{{0, 10, 1, 1}, {10, -1, 1, 1}, {10, 10, 0, 1}, {10, 10, 1, -3}} {
		_, err := NewBlockGrid(tc[0], tc[1], tc[2], tc[3])
		assert.True(t, errors.Is(err, ErrInvalidInput), "%v", tc)
	}
	g, err := NewBlockGrid(10, 10, 64, 64)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	w, err := g.Window(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, Window{Width: 10, Height: 10}, w)
}

func TestBlockGridTiling(t *testing.T) {
	sizes := [][4]int{
		{257, 259, 128, 128},
		{256, 256, 128, 128},
		{1000, 7, 1000, 1},
		{33, 65, 16, 8},
		{1, 1, 256, 256},
	}
	for _, sz := range sizes {
		g, err := NewBlockGrid(sz[0], sz[1], sz[2], sz[3])
		require.NoError(t, err)
		nx, ny := g.BlockCount()
		assert.Equal(t, nx, g.BlockCols())
		assert.Equal(t, ny, g.BlockRows())
		for br := 0; br < ny; br++ {
			sum := 0
			for bc := 0; bc < nx; bc++ {
				w, err := g.Window(br, bc)
				require.NoError(t, err)
				assert.Equal(t, sum, w.XOffset)
				sum += w.Width
			}
			assert.Equal(t, g.Cols, sum, "row %d of %v", br, sz)
		}
		for bc := 0; bc < nx; bc++ {
			sum := 0
			for br := 0; br < ny; br++ {
				w, _ := g.Window(br, bc)
				assert.Equal(t, sum, w.YOffset)
				sum += w.Height
			}
			assert.Equal(t, g.Rows, sum, "column %d of %v", bc, sz)
		}
	}
}

func TestBlockGridRagged(t *testing.T) {
	g, err := NewBlockGrid(257, 259, 128, 128)
	require.NoError(t, err)
	nx, ny := g.BlockCount()
	assert.Equal(t, 3, nx)
	assert.Equal(t, 3, ny)
	assert.Equal(t, 9, g.Len())

	w, err := g.Window(2, 2)
	assert.NoError(t, err)
	assert.Equal(t, Window{XOffset: 256, YOffset: 256, Width: 1, Height: 3}, w)
	w, _ = g.Window(1, 2)
	assert.Equal(t, Window{XOffset: 256, YOffset: 128, Width: 1, Height: 128}, w)
	w, _ = g.Window(2, 0)
	assert.Equal(t, Window{XOffset: 0, YOffset: 256, Width: 128, Height: 3}, w)

	_, err = g.Window(3, 0)
	assert.True(t, errors.Is(err, ErrIndex))
	_, err = g.Window(0, -1)
	assert.True(t, errors.Is(err, ErrIndex))
	_, err = g.WindowAt(9)
	assert.True(t, errors.Is(err, ErrIndex))
	_, err = g.Cell(-1)
	assert.True(t, errors.Is(err, ErrIndex))
	_, err = g.Index(0, 3)
	assert.True(t, errors.Is(err, ErrIndex))
}

func TestBlockGridOrder(t *testing.T) {
	g, _ := NewBlockGrid(300, 200, 100, 100)
	// 3 columns of 2 rows of blocks
	expected := []BlockIndex{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}, {1, 2}}
	for pass := 0; pass < 2; pass++ {
		var got []BlockIndex
		for i, bi := range g.All() {
			assert.Equal(t, len(got), i)
			got = append(got, bi)
			idx, err := g.Index(bi.Row, bi.Col)
			assert.NoError(t, err)
			assert.Equal(t, i, idx)
			cell, err := g.Cell(i)
			assert.NoError(t, err)
			assert.Equal(t, bi, cell)
		}
		assert.Equal(t, expected, got)
	}

	n := 0
	for range g.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	w, err := g.WindowAt(3)
	assert.NoError(t, err)
	assert.Equal(t, Window{XOffset: 100, YOffset: 100, Width: 100, Height: 100}, w)

	i := 0
	for bl, ok := g.First(), true; ok; bl, ok = bl.Next() {
		assert.Equal(t, i, bl.Index)
		assert.Equal(t, expected[i], BlockIndex{Row: bl.Row, Col: bl.Col})
		ww, _ := g.WindowAt(i)
		assert.Equal(t, ww, bl.Window)
		i++
	}
	assert.Equal(t, g.Len(), i)
}

func TestBlockGridPositions(t *testing.T) {
	g, _ := NewBlockGrid(257, 259, 128, 128)
	pos := g.Positions()
	require.Len(t, pos, 3)
	require.Len(t, pos[0], 3)
	assert.Equal(t, Span{Y0: 0, Y1: 128, X0: 0, X1: 128}, pos[0][0])
	assert.Equal(t, Span{Y0: 0, Y1: 128, X0: 128, X1: 256}, pos[0][1])
	assert.Equal(t, Span{Y0: 256, Y1: 259, X0: 256, X1: 257}, pos[2][2])

	idx := g.ArrayIndices()
	require.Len(t, idx, 9)
	assert.Equal(t, BlockIndex{Row: 0, Col: 1}, idx[1])
	assert.Equal(t, BlockIndex{Row: 1, Col: 0}, idx[3])
	for _, bi := range idx {
		w, _ := g.Window(bi.Row, bi.Col)
		assert.Equal(t, w.Span(), pos[bi.Row][bi.Col])
	}
}
