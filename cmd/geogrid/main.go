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

// Command geogrid inspects, crops and converts tiled rasters.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/airbusgeo/geogrid"
	"github.com/airbusgeo/geogrid/gcs"
	"github.com/airbusgeo/geogrid/gdalstore"
	"github.com/airbusgeo/geogrid/internal/config"
	"github.com/airbusgeo/geogrid/internal/logger"
	"github.com/airbusgeo/geogrid/metrics"
	"github.com/airbusgeo/godal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	cfg     config.Config
	metrics bool

	out    io.Writer
	logger zerolog.Logger
	store  geogrid.Storage
	reg    *prometheus.Registry
	gs     *storage.Client
}

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.FromEnv()}
	root := &cobra.Command{
		Use:           "geogrid",
		Short:         "inspect, crop and convert tiled rasters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, args)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.report()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.BoolVar(&a.cfg.LogConsole, "log-console", a.cfg.LogConsole, "human readable logs")
	pf.StringVarP(&a.cfg.GSBlockSize, "gs.blocksize", "b", a.cfg.GSBlockSize, "gs:// block size")
	pf.IntVarP(&a.cfg.GSNumBlocks, "gs.numblocks", "n", a.cfg.GSNumBlocks, "number of gs:// blocks to cache")
	pf.BoolVar(&a.cfg.GSNoAuth, "gs.noauth", a.cfg.GSNoAuth, "access gs:// anonymously")
	pf.StringVar(&a.cfg.TmpDir, "tmp", a.cfg.TmpDir, "directory to use for temp files")
	pf.BoolVar(&a.metrics, "metrics", false, "log storage metrics on exit")

	root.AddCommand(
		a.infoCommand(),
		a.blocksCommand(),
		a.windowCommand(),
		a.cropCommand(),
		a.cogCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.out = cmd.OutOrStdout()
	a.logger = logger.Build(logger.Config{
		Level:     a.cfg.LogLevel,
		Console:   a.cfg.LogConsole,
		Component: cmd.Name(),
	}, cmd.ErrOrStderr())
	godal.RegisterAll()

	uris := append([]string{}, args...)
	if f := cmd.Flags().Lookup("out"); f != nil {
		uris = append(uris, f.Value.String())
	}
	if a.gs == nil && hasGSURI(uris) {
		opts := []gcs.Option{
			gcs.BlockSize(a.cfg.GSBlockSize),
			gcs.NumCachedBlocks(a.cfg.GSNumBlocks),
		}
		if a.cfg.GSNoAuth {
			opts = append(opts, gcs.NoAuth())
		}
		cl, err := gcs.Register(cmd.Context(), opts...)
		if err != nil {
			return fmt.Errorf("register gs:// handler: %w", err)
		}
		a.gs = cl
		a.logger.Debug().Str("blocksize", a.cfg.GSBlockSize).Int("numblocks", a.cfg.GSNumBlocks).
			Msg("gs:// handler registered")
	}

	var st geogrid.Storage = gdalstore.New(gdalstore.Logger(a.logger))
	if a.metrics {
		a.reg = prometheus.NewRegistry()
		st = metrics.Instrument(st, a.reg)
	}
	a.store = st
	return nil
}

func hasGSURI(uris []string) bool {
	for _, u := range uris {
		if strings.HasPrefix(u, "gs://") {
			return true
		}
	}
	return false
}

// report logs the totals of the storage metrics
func (a *app) report() {
	if a.reg == nil {
		return
	}
	mfs, err := a.reg.Gather()
	if err != nil {
		a.logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range mfs {
		total := 0.0
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		a.logger.Info().Str("metric", mf.GetName()).Float64("total", total).Msg("storage metrics")
	}
}

func (a *app) open(name string) (*geogrid.Raster, error) {
	return geogrid.Open(a.store, name, geogrid.Logger(a.logger))
}
