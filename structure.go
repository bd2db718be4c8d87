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
	"iter"
)

// Window is a pixel window inside a raster, starting at pixel XOffset,YOffset
// and spanning Width,Height pixels.
type Window struct {
	XOffset, YOffset int
	Width, Height    int
}

// Span is a window expressed with end-exclusive bounds, rows first
type Span struct {
	Y0, Y1 int
	X0, X1 int
}

// BlockIndex identifies a cell of a BlockGrid
type BlockIndex struct {
	Row, Col int
}

// BlockGrid is the partition of a Cols x Rows raster into blocks of
// BlockWidth x BlockHeight pixels. Blocks of the last row and column are clipped
// to the raster extent.
//
// Blocks are enumerated in column-major order: all the rows of a column of blocks
// come before the next column. Block number i is at row i%BlockRows() and column
// i/BlockRows().
type BlockGrid struct {
	Cols, Rows              int
	BlockWidth, BlockHeight int
	nx, ny                  int
}

// NewBlockGrid returns the blocks covering a cols,rows raster. All sizes must be
// strictly positive.
func NewBlockGrid(cols, rows int, blockWidth, blockHeight int) (BlockGrid, error) {
	if cols <= 0 || rows <= 0 {
		return BlockGrid{}, fmt.Errorf("raster size %dx%d: %w", cols, rows, ErrInvalidInput)
	}
	if blockWidth <= 0 || blockHeight <= 0 {
		return BlockGrid{}, fmt.Errorf("block size %dx%d: %w", blockWidth, blockHeight, ErrInvalidInput)
	}
	return BlockGrid{
		Cols:        cols,
		Rows:        rows,
		BlockWidth:  blockWidth,
		BlockHeight: blockHeight,
		nx:          (cols + blockWidth - 1) / blockWidth,
		ny:          (rows + blockHeight - 1) / blockHeight,
	}, nil
}

// BlockCount returns the number of blocks in the x and y dimensions
func (g BlockGrid) BlockCount() (int, int) {
	return g.nx, g.ny
}

// BlockRows returns the number of rows of blocks
func (g BlockGrid) BlockRows() int {
	return g.ny
}

// BlockCols returns the number of columns of blocks
func (g BlockGrid) BlockCols() int {
	return g.nx
}

// Len returns the total number of blocks
func (g BlockGrid) Len() int {
	return g.nx * g.ny
}

// Window returns the pixel window of the block at blockRow,blockCol
func (g BlockGrid) Window(blockRow, blockCol int) (Window, error) {
	if blockRow < 0 || blockCol < 0 || blockRow >= g.ny || blockCol >= g.nx {
		return Window{}, fmt.Errorf("block (%d,%d) of a %dx%d grid: %w", blockRow, blockCol, g.ny, g.nx, ErrIndex)
	}
	w, h := actualBlockSize(g.Cols, g.Rows, g.BlockWidth, g.BlockHeight, blockCol, blockRow)
	return Window{
		XOffset: blockCol * g.BlockWidth,
		YOffset: blockRow * g.BlockHeight,
		Width:   w,
		Height:  h,
	}, nil
}

// Cell returns the row and column of the block numbered index
func (g BlockGrid) Cell(index int) (BlockIndex, error) {
	if index < 0 || index >= g.Len() {
		return BlockIndex{}, fmt.Errorf("block %d of %d: %w", index, g.Len(), ErrIndex)
	}
	return BlockIndex{Row: index % g.ny, Col: index / g.ny}, nil
}

// Index is the inverse of Cell
func (g BlockGrid) Index(blockRow, blockCol int) (int, error) {
	if blockRow < 0 || blockCol < 0 || blockRow >= g.ny || blockCol >= g.nx {
		return 0, fmt.Errorf("block (%d,%d) of a %dx%d grid: %w", blockRow, blockCol, g.ny, g.nx, ErrIndex)
	}
	return blockCol*g.ny + blockRow, nil
}

// WindowAt returns the pixel window of the block numbered index
func (g BlockGrid) WindowAt(index int) (Window, error) {
	c, err := g.Cell(index)
	if err != nil {
		return Window{}, err
	}
	return g.Window(c.Row, c.Col)
}

// All iterates over the block numbers and cells of the grid in column-major order.
// The sequence may be ranged over any number of times.
func (g BlockGrid) All() iter.Seq2[int, BlockIndex] {
	return func(yield func(int, BlockIndex) bool) {
		i := 0
		for col := 0; col < g.nx; col++ {
			for row := 0; row < g.ny; row++ {
				if !yield(i, BlockIndex{Row: row, Col: col}) {
					return
				}
				i++
			}
		}
	}
}

// Positions returns the end-exclusive span of every block, indexed as
// [blockRow][blockCol].
func (g BlockGrid) Positions() [][]Span {
	ret := make([][]Span, g.ny)
	for row := range ret {
		ret[row] = make([]Span, g.nx)
		for col := range ret[row] {
			w, _ := g.Window(row, col)
			ret[row][col] = Span{
				Y0: w.YOffset, Y1: w.YOffset + w.Height,
				X0: w.XOffset, X1: w.XOffset + w.Width,
			}
		}
	}
	return ret
}

// ArrayIndices lists the (row,col) indexes of the Positions matrix, row-major
func (g BlockGrid) ArrayIndices() []BlockIndex {
	ret := make([]BlockIndex, 0, g.Len())
	for row := 0; row < g.ny; row++ {
		for col := 0; col < g.nx; col++ {
			ret = append(ret, BlockIndex{Row: row, Col: col})
		}
	}
	return ret
}

// First returns the first block of the grid, to be walked with Block.Next:
//
//	for bl, ok := grid.First(), true; ok; bl, ok = bl.Next() {
//		...
//	}
func (g BlockGrid) First() Block {
	w, _ := g.Window(0, 0)
	return Block{Window: w, grid: g}
}

// Block is a cursor over the blocks of a BlockGrid
type Block struct {
	Window
	Index    int
	Row, Col int
	grid     BlockGrid
}

// Next returns the following block in column-major order. It returns Block{},false
// when there are no more blocks.
func (b Block) Next() (Block, bool) {
	nb := b
	nb.Row++
	if nb.Row >= nb.grid.ny {
		nb.Row = 0
		nb.Col++
	}
	if nb.Col >= nb.grid.nx {
		return Block{}, false
	}
	nb.Index++
	nb.Window, _ = nb.grid.Window(nb.Row, nb.Col)
	return nb, true
}

func actualBlockSize(sizeX, sizeY int, blockSizeX, blockSizeY int, blockX, blockY int) (int, int) {
	cx, cy := (sizeX+blockSizeX-1)/blockSizeX,
		(sizeY+blockSizeY-1)/blockSizeY
	if blockX < 0 || blockY < 0 || blockX >= cx || blockY >= cy {
		return 0, 0
	}
	retx := blockSizeX
	rety := blockSizeY
	if blockX == cx-1 {
		retx = sizeX - blockX*blockSizeX
	}
	if blockY == cy-1 {
		rety = sizeY - blockY*blockSizeY
	}
	return retx, rety
}
