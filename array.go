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

import "fmt"

// Array is a Height x Width x Bands block of pixels. Data is pixel interleaved,
// i.e. the band axis is the last one:
//
//	Data[(row*Width+col)*Bands+band]
//
// For a three band RGB image pixels are stored r1g1b1, r2g2b2, ..., rngnbn.
type Array struct {
	Width, Height, Bands int
	Data                 []float64
}

// NewArray allocates a zeroed array
func NewArray(width, height, bands int) *Array {
	return &Array{
		Width:  width,
		Height: height,
		Bands:  bands,
		Data:   make([]float64, width*height*bands),
	}
}

// NewArrayFrom wraps data, which must hold exactly width*height*bands values
func NewArrayFrom(width, height, bands int, data []float64) (*Array, error) {
	if width <= 0 || height <= 0 || bands <= 0 || len(data) != width*height*bands {
		return nil, fmt.Errorf("%d values for a %dx%dx%d array: %w", len(data), height, width, bands, ErrShapeMismatch)
	}
	return &Array{Width: width, Height: height, Bands: bands, Data: data}, nil
}

// Shape returns the array dimensions, rows first
func (a *Array) Shape() (int, int, int) {
	return a.Height, a.Width, a.Bands
}

// At returns the value of band at row,col
func (a *Array) At(row, col, band int) float64 {
	return a.Data[(row*a.Width+col)*a.Bands+band]
}

// Set sets the value of band at row,col
func (a *Array) Set(row, col, band int, v float64) {
	a.Data[(row*a.Width+col)*a.Bands+band] = v
}

// Band extracts a single band array
func (a *Array) Band(band int) (*Array, error) {
	if band < 0 || band >= a.Bands {
		return nil, fmt.Errorf("band %d of %d: %w", band, a.Bands, ErrIndex)
	}
	if a.Bands == 1 {
		return a.Clone(), nil
	}
	ret := NewArray(a.Width, a.Height, 1)
	for i := range ret.Data {
		ret.Data[i] = a.Data[i*a.Bands+band]
	}
	return ret, nil
}

// Clone returns a deep copy of a
func (a *Array) Clone() *Array {
	ret := &Array{Width: a.Width, Height: a.Height, Bands: a.Bands, Data: make([]float64, len(a.Data))}
	copy(ret.Data, a.Data)
	return ret
}

// Stack concatenates arrays along the band axis. All arrays must have the same
// width and height.
func Stack(arrays ...*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("stack no arrays: %w", ErrInvalidInput)
	}
	w, h := arrays[0].Width, arrays[0].Height
	bands := 0
	for _, a := range arrays {
		if a.Width != w || a.Height != h {
			return nil, fmt.Errorf("stack %dx%d with %dx%d: %w", h, w, a.Height, a.Width, ErrShapeMismatch)
		}
		bands += a.Bands
	}
	if len(arrays) == 1 {
		return arrays[0], nil
	}
	ret := NewArray(w, h, bands)
	for p := 0; p < w*h; p++ {
		dst := ret.Data[p*bands : (p+1)*bands]
		off := 0
		for _, a := range arrays {
			off += copy(dst[off:], a.Data[p*a.Bands:(p+1)*a.Bands])
		}
	}
	return ret, nil
}
