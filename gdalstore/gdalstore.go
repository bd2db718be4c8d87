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

// Package gdalstore implements geogrid.Storage with GDAL, through godal.
//
// GDAL drivers must have been registered before opening or creating rasters:
//
//	godal.RegisterAll()
//	st := gdalstore.New(gdalstore.Logger(logger))
//	raster, err := geogrid.Open(st, "gs://bucket/image.tif")
package gdalstore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/airbusgeo/geogrid"
	"github.com/airbusgeo/godal"
	"github.com/rs/zerolog"
)

// Store is a geogrid.Storage backed by GDAL datasets
type Store struct {
	logger zerolog.Logger
}

var _ geogrid.Storage = (*Store)(nil)

type storeOpts struct {
	logger zerolog.Logger
}

// Option is an option that can be passed to New
type Option interface {
	setStoreOpt(so *storeOpts)
}

type loggerOpt struct {
	l zerolog.Logger
}

// Logger sets the logger GDAL warnings and debug messages are sent to.
// Defaults to a disabled logger.
func Logger(l zerolog.Logger) Option {
	return loggerOpt{l}
}

func (lo loggerOpt) setStoreOpt(so *storeOpts) {
	so.logger = lo.l
}

// New creates a Store
func New(opts ...Option) *Store {
	so := storeOpts{logger: zerolog.Nop()}
	for _, o := range opts {
		o.setStoreOpt(&so)
	}
	return &Store{logger: so.logger}
}

// errorHandler routes GDAL messages: failures are returned as errors, lower
// severities are logged.
func (st *Store) errorHandler(ec godal.ErrorCategory, code int, msg string) error {
	switch {
	case ec >= godal.CE_Failure:
		return errors.New(msg)
	case ec == godal.CE_Warning:
		st.logger.Warn().Int("code", code).Msg(msg)
	default:
		st.logger.Debug().Int("code", code).Msg(msg)
	}
	return nil
}

var dataTypes = map[geogrid.DataType]godal.DataType{
	geogrid.Byte:    godal.Byte,
	geogrid.UInt16:  godal.UInt16,
	geogrid.Int16:   godal.Int16,
	geogrid.UInt32:  godal.UInt32,
	geogrid.Int32:   godal.Int32,
	geogrid.Float32: godal.Float32,
	geogrid.Float64: godal.Float64,
}

func fromGDAL(dt godal.DataType) geogrid.DataType {
	for k, v := range dataTypes {
		if v == dt {
			return k
		}
	}
	return geogrid.Unknown
}

func gdalDriver(dn geogrid.DriverName, inMemory bool) (godal.DriverName, string) {
	if inMemory || dn == geogrid.Memory {
		return godal.Memory, "MEM"
	}
	if dn == "" {
		return godal.GTiff, "GTiff"
	}
	return godal.DriverName(dn), string(dn)
}

// Open implements geogrid.Storage
func (st *Store) Open(name string, update bool) (geogrid.Handle, error) {
	opts := []godal.OpenOption{godal.ErrLogger(st.errorHandler)}
	if update {
		opts = append(opts, godal.Update())
	}
	ds, err := godal.Open(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("godal.open %s: %w", name, err)
	}
	return st.handle(ds, name), nil
}

// Create implements geogrid.Storage
func (st *Store) Create(name string, p geogrid.CreateParams) (geogrid.Handle, error) {
	dt, ok := dataTypes[p.DataType]
	if !ok {
		return nil, fmt.Errorf("unsupported datatype %s", p.DataType)
	}
	drv, _ := gdalDriver(p.Driver, p.InMemory)
	if drv == godal.Memory {
		name = ""
	}
	ds, err := godal.Create(drv, name, p.Bands, dt, p.Width, p.Height,
		godal.CreationOption(p.Options...), godal.ErrLogger(st.errorHandler))
	if err != nil {
		return nil, fmt.Errorf("godal.create %s: %w", name, err)
	}
	return st.handle(ds, name), nil
}

// WarpSwitches returns the gdalwarp command line switches matching p
func WarpSwitches(p geogrid.WarpParams) []string {
	_, format := gdalDriver(p.Driver, p.InMemory)
	sw := []string{"-of", format}
	if p.Resolution > 0 {
		res := strconv.FormatFloat(p.Resolution, 'g', -1, 64)
		sw = append(sw, "-tr", res, res)
	}
	if p.TargetAlignedPixels {
		sw = append(sw, "-tap")
	}
	if p.TargetSRS != "" {
		sw = append(sw, "-t_srs", p.TargetSRS)
	}
	for _, co := range p.Options {
		sw = append(sw, "-co", co)
	}
	return sw
}

// Warp implements geogrid.Storage. src must have been obtained from a Store.
func (st *Store) Warp(src geogrid.Handle, dst string, p geogrid.WarpParams) (geogrid.Handle, error) {
	h, ok := src.(*Handle)
	if !ok {
		return nil, fmt.Errorf("cannot warp a %T", src)
	}
	if err := h.open(); err != nil {
		return nil, err
	}
	sw := WarpSwitches(p)
	if sw[1] == "MEM" {
		dst = ""
	}
	ds, err := h.ds.Warp(dst, sw, godal.ErrLogger(st.errorHandler))
	if err != nil {
		return nil, fmt.Errorf("godal.warp %s: %w", h.name, err)
	}
	return st.handle(ds, dst), nil
}

// SameSystem implements geogrid.SpatialSystems. Two empty definitions are the
// same, an empty and a non empty one are not.
func (st *Store) SameSystem(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	sa, err := godal.NewSpatialRefFromWKT(a, godal.ErrLogger(st.errorHandler))
	if err != nil {
		st.logger.Debug().Err(err).Msg("invalid wkt")
		return false
	}
	defer sa.Close()
	sb, err := godal.NewSpatialRefFromWKT(b, godal.ErrLogger(st.errorHandler))
	if err != nil {
		st.logger.Debug().Err(err).Msg("invalid wkt")
		return false
	}
	defer sb.Close()
	return sa.IsSame(sb)
}

// ImportSystem implements geogrid.SpatialSystems. userInput is anything
// accepted by OSRSetFromUserInput, the returned definition is WKT.
func (st *Store) ImportSystem(userInput string) (string, error) {
	sr, err := godal.NewSpatialRef(userInput, godal.ErrLogger(st.errorHandler))
	if err != nil {
		return "", fmt.Errorf("godal.newspatialref: %w", err)
	}
	defer sr.Close()
	wkt, err := sr.WKT(godal.ErrLogger(st.errorHandler))
	if err != nil {
		return "", fmt.Errorf("export wkt: %w", err)
	}
	return wkt, nil
}
