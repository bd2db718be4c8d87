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

	"github.com/airbusgeo/geogrid"
	"github.com/spf13/cobra"
)

func (a *app) cropCommand() *cobra.Command {
	var outfile string
	var partial bool
	cmd := &cobra.Command{
		Use:   "crop FILE XMIN YMIN XMAX YMAX -o OUT",
		Short: "copy the pixels covering a bounding box into a new GeoTIFF",
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
				data, rw, err := r.ReadBoundingBox(bbox, opts...)
				if err != nil {
					return err
				}
				def := geogrid.RasterDefinition{
					GeoTransform: geogrid.GeoTransform{
						OriginX:   rw.OriginX,
						OriginY:   rw.OriginY,
						PixelSize: r.GeoTransform().PixelSize,
						Rows:      rw.Height,
						Cols:      rw.Width,
					},
					SRS: r.Projection(),
				}
				out, err := geogrid.CreateFromDefinition(a.store, outfile, def,
					geogrid.Bands(r.Bands()), r.DataType(), geogrid.Logger(a.logger))
				if err != nil {
					return err
				}
				for b := 0; b < r.Bands(); b++ {
					band, err := data.Band(b)
					if err != nil {
						_ = out.Close()
						return err
					}
					if err := out.WriteAll(band, b+1); err != nil {
						_ = out.Close()
						return fmt.Errorf("write %s: %w", outfile, err)
					}
				}
				a.logger.Info().Str("input", args[0]).Str("output", outfile).Int("x", rw.XOffset).
					Int("y", rw.YOffset).Int("width", rw.Width).Int("height", rw.Height).Msg("cropped")
				return out.Close()
			}, geogrid.Logger(a.logger))
		},
	}
	cmd.Flags().StringVarP(&outfile, "out", "o", "crop.tif", "output file name")
	cmd.Flags().BoolVar(&partial, "partial", false, "clip boxes partially outside the raster")
	return cmd
}
