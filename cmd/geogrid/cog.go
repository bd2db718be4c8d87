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
	"io"
	"os"

	"github.com/airbusgeo/cogger"
	"github.com/airbusgeo/geogrid"
	"github.com/airbusgeo/geogrid/gcs"
	"github.com/airbusgeo/godal"
	"github.com/spf13/cobra"
)

func (a *app) cogCommand() *cobra.Command {
	var outfile string
	var overviews bool
	var creation []string
	cmd := &cobra.Command{
		Use:   "cog FILE -o OUT",
		Short: "convert a raster to a cloud optimized GeoTIFF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infile := args[0]
			ob, oo := gcs.Parse(outfile)
			if ob != "" && a.gs == nil {
				return fmt.Errorf("no gs:// client for %s", outfile)
			}

			tmpf, err := os.CreateTemp(a.cfg.TmpDir, "*.tif")
			if err != nil {
				return err
			}
			tmpf.Close()
			tmpfname := tmpf.Name()
			defer os.Remove(tmpfname)

			if err := a.tile(infile, tmpfname, creation); err != nil {
				return err
			}
			if overviews {
				if err := buildOverviews(tmpfname); err != nil {
					return err
				}
			}

			tmpf, err = os.Open(tmpfname)
			if err != nil {
				return fmt.Errorf("re-open temp tif %s: %w", tmpfname, err)
			}
			defer tmpf.Close()

			var outr io.WriteCloser
			if ob == "" {
				outr, err = os.Create(outfile)
				if err != nil {
					return fmt.Errorf("create %s: %w", outfile, err)
				}
			} else {
				outr = a.gs.Bucket(ob).Object(oo).NewWriter(cmd.Context())
			}
			if err := cogger.Rewrite(outr, tmpf); err != nil {
				_ = outr.Close()
				return fmt.Errorf("cogger.rewrite: %w", err)
			}
			if err := outr.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outfile, err)
			}
			a.logger.Info().Str("input", infile).Str("output", outfile).Msg("cog written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outfile, "out", "o", "out-cog.tif", "output cog name")
	cmd.Flags().BoolVar(&overviews, "ovr", true, "compute overviews")
	cmd.Flags().StringSliceVar(&creation, "co", []string{"COMPRESS=LZW"}, "creation options of the tiled copy")
	return cmd
}

// tile copies infile into a tiled GeoTIFF, one block at a time
func (a *app) tile(infile, tmpfname string, creation []string) error {
	return geogrid.Use(a.store, infile, func(r *geogrid.Raster) error {
		opts := append([]string{"BIGTIFF=YES"}, creation...)
		clone, err := r.CloneEmpty(tmpfname, geogrid.Bands(r.Bands()), r.DataType(),
			geogrid.CreationOption(opts...))
		if err != nil {
			return err
		}
		for idx, w := range clone.Blocks() {
			data, err := r.ReadPixelWindow(w.YOffset, w.YOffset+w.Height, w.XOffset, w.XOffset+w.Width)
			if err != nil {
				_ = clone.Close()
				return err
			}
			for b := 0; b < r.Bands(); b++ {
				band, err := data.Band(b)
				if err != nil {
					_ = clone.Close()
					return err
				}
				if err := clone.WriteBlock(band, idx, b+1); err != nil {
					_ = clone.Close()
					return err
				}
			}
		}
		bw, bh := clone.BlockSize()
		a.logger.Debug().Str("input", infile).Int("blocks", len(clone.Blocks())).Int("block_width", bw).
			Int("block_height", bh).Msg("tiled copy written")
		return clone.Close()
	}, geogrid.Logger(a.logger))
}

func buildOverviews(name string) error {
	ds, err := godal.Open(name, godal.Update())
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if err := ds.BuildOverviews(); err != nil {
		_ = ds.Close()
		return fmt.Errorf("build overviews: %w", err)
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("close temp tif: %w", err)
	}
	return nil
}
