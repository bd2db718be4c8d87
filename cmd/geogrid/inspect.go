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
	"fmt"
	"strconv"

	"github.com/airbusgeo/geogrid"
	"github.com/spf13/cobra"
)

func (a *app) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "print the georeferencing and block layout of a raster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			def := r.Definition()
			ext := def.Extent()
			bw, bh := r.BlockSize()
			brows, bcols := r.Grid().BlockCount()
			fmt.Fprintf(a.out, "size: %dx%d, %d band(s) of %s\n", r.Cols(), r.Rows(), r.Bands(), r.DataType())
			fmt.Fprintf(a.out, "origin: %v,%v\n", def.OriginX, def.OriginY)
			fmt.Fprintf(a.out, "pixel size: %v\n", def.PixelSize)
			fmt.Fprintf(a.out, "extent: %v,%v,%v,%v\n", ext.XMin, ext.YMin, ext.XMax, ext.YMax)
			fmt.Fprintf(a.out, "block size: %dx%d\n", bw, bh)
			fmt.Fprintf(a.out, "blocks: %d rows x %d cols\n", brows, bcols)
			if def.SRS != "" {
				fmt.Fprintf(a.out, "srs: %s\n", def.SRS)
			}
			return nil
		},
	}
}

func (a *app) blocksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks FILE",
		Short: "list the block windows of a raster in storage order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return geogrid.Use(a.store, args[0], func(r *geogrid.Raster) error {
				grid := r.Grid()
				for i, cell := range grid.All() {
					w, err := grid.Window(cell.Row, cell.Col)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%d\t%d,%d\t%d,%d\t%dx%d\n", i, cell.Row, cell.Col,
						w.XOffset, w.YOffset, w.Width, w.Height)
				}
				return nil
			}, geogrid.Logger(a.logger))
		},
	}
}

func parseBox(args []string, srs string) (geogrid.BoundingBox, error) {
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return geogrid.BoundingBox{}, fmt.Errorf("parse coordinate %q: %w", args[i], geogrid.ErrInvalidInput)
		}
		v[i] = f
	}
	return geogrid.NewBoundingBox(v[0], v[1], v[2], v[3], srs)
}

func (a *app) windowCommand() *cobra.Command {
	var partial, anySRS bool
	cmd := &cobra.Command{
		Use:   "window FILE XMIN YMIN XMAX YMAX",
		Short: "resolve the pixel window covering a bounding box",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return geogrid.Use(a.store, args[0], func(r *geogrid.Raster) error {
				bbox, err := parseBox(args[1:], r.Projection())
				if err != nil {
					return err
				}
				var opts []geogrid.ResolveOption
				if partial {
					opts = append(opts, geogrid.AllowPartial())
				}
				if anySRS {
					opts = append(opts, geogrid.AllowAnySystem())
				}
				rw, err := r.ResolveWindow(bbox, opts...)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "offset: %d,%d\nsize: %dx%d\norigin: %v,%v\n",
					rw.XOffset, rw.YOffset, rw.Width, rw.Height, rw.OriginX, rw.OriginY)
				return nil
			}, geogrid.Logger(a.logger))
		},
	}
	cmd.Flags().BoolVar(&partial, "partial", false, "clip boxes partially outside the raster")
	cmd.Flags().BoolVar(&anySRS, "any-srs", false, "skip the spatial reference system check")
	return cmd
}
