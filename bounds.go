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
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox is an envelope in projected coordinates, along with the
// spatial reference system (usually WKT) it is expressed in.
type BoundingBox struct {
	XMin, YMin float64
	XMax, YMax float64
	SRS        string
}

// NewBoundingBox returns a validated BoundingBox
func NewBoundingBox(xmin, ymin, xmax, ymax float64, srs string) (BoundingBox, error) {
	b := BoundingBox{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax, SRS: srs}
	if err := b.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}

// BoundingBoxFromBound converts an orb.Bound
func BoundingBoxFromBound(b orb.Bound, srs string) BoundingBox {
	return BoundingBox{
		XMin: b.Min.X(),
		YMin: b.Min.Y(),
		XMax: b.Max.X(),
		YMax: b.Max.Y(),
		SRS:  srs,
	}
}

// Validate checks that the box is not empty or inverted
func (b BoundingBox) Validate() error {
	if !(b.XMin < b.XMax) || !(b.YMin < b.YMax) {
		return fmt.Errorf("bounding box [%v,%v,%v,%v]: %w", b.XMin, b.YMin, b.XMax, b.YMax, ErrInvalidInput)
	}
	return nil
}

// Bound returns the envelope as an orb.Bound, dropping the SRS
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.XMin, b.YMin},
		Max: orb.Point{b.XMax, b.YMax},
	}
}

// Width returns the X extent
func (b BoundingBox) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the Y extent
func (b BoundingBox) Height() float64 {
	return b.YMax - b.YMin
}

// Intersects reports whether both boxes share some area. Boxes touching only by
// an edge or a corner do not intersect. SRSs are not compared.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(other.XMax <= b.XMin ||
		other.XMin >= b.XMax ||
		other.YMax <= b.YMin ||
		other.YMin >= b.YMax)
}

// Contains reports whether other lies entirely inside b (edges included).
// SRSs are not compared.
func (b BoundingBox) Contains(other BoundingBox) bool {
	return other.XMin >= b.XMin && other.XMax <= b.XMax &&
		other.YMin >= b.YMin && other.YMax <= b.YMax
}

// Union returns the union of these bounds with other ones, keeping the SRS of b
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		XMin: math.Min(b.XMin, other.XMin),
		YMin: math.Min(b.YMin, other.YMin),
		XMax: math.Max(b.XMax, other.XMax),
		YMax: math.Max(b.YMax, other.YMax),
		SRS:  b.SRS,
	}
}

// Clip returns b restricted to the extent of other, along with the edges that
// had to be moved.
func (b BoundingBox) Clip(other BoundingBox) (BoundingBox, ClippedEdges) {
	c := b
	var e ClippedEdges
	if c.YMax > other.YMax {
		c.YMax = other.YMax
		e.Top = true
	}
	if c.YMin < other.YMin {
		c.YMin = other.YMin
		e.Bottom = true
	}
	if c.XMax > other.XMax {
		c.XMax = other.XMax
		e.Right = true
	}
	if c.XMin < other.XMin {
		c.XMin = other.XMin
		e.Left = true
	}
	return c, e
}

// ClippedEdges records which edges of a box were moved by BoundingBox.Clip
type ClippedEdges struct {
	Left, Right, Top, Bottom bool
}

// Any reports whether at least one edge was clipped
func (e ClippedEdges) Any() bool {
	return e.Left || e.Right || e.Top || e.Bottom
}
