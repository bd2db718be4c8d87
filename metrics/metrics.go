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

// Package metrics instruments a geogrid.Storage with Prometheus metrics.
package metrics

import (
	"time"

	"github.com/airbusgeo/geogrid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type collectors struct {
	ops      *prometheus.CounterVec
	pixels   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newCollectors(reg prometheus.Registerer) *collectors {
	f := promauto.With(reg)
	return &collectors{
		ops: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geogrid_storage_operations_total",
				Help: "Storage operations by operation and result.",
			},
			[]string{"op", "result"},
		),
		pixels: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geogrid_storage_pixels_total",
				Help: "Pixels read or written, per band.",
			},
			[]string{"op"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geogrid_storage_operation_duration_seconds",
				Help:    "Duration of storage operations in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"op"},
		),
	}
}

func (c *collectors) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ops.WithLabelValues(op, result).Inc()
	c.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Storage is an instrumented geogrid.Storage
type Storage struct {
	geogrid.Storage
	c *collectors
}

// Instrument wraps st so that its operations and the ones of the handles it
// returns are counted and timed. Collectors are registered on reg, which must
// not already hold them.
func Instrument(st geogrid.Storage, reg prometheus.Registerer) *Storage {
	return &Storage{Storage: st, c: newCollectors(reg)}
}

func (s *Storage) wrap(h geogrid.Handle, err error) (geogrid.Handle, error) {
	if err != nil || h == nil {
		return h, err
	}
	return &Handle{Handle: h, c: s.c}, nil
}

// Open implements geogrid.Storage
func (s *Storage) Open(name string, update bool) (geogrid.Handle, error) {
	start := time.Now()
	h, err := s.Storage.Open(name, update)
	s.c.observe("open", start, err)
	return s.wrap(h, err)
}

// Create implements geogrid.Storage
func (s *Storage) Create(name string, p geogrid.CreateParams) (geogrid.Handle, error) {
	start := time.Now()
	h, err := s.Storage.Create(name, p)
	s.c.observe("create", start, err)
	return s.wrap(h, err)
}

// Warp implements geogrid.Storage
func (s *Storage) Warp(src geogrid.Handle, dst string, p geogrid.WarpParams) (geogrid.Handle, error) {
	if ih, ok := src.(*Handle); ok {
		src = ih.Handle
	}
	start := time.Now()
	h, err := s.Storage.Warp(src, dst, p)
	s.c.observe("warp", start, err)
	return s.wrap(h, err)
}

// Handle is an instrumented geogrid.Handle
type Handle struct {
	geogrid.Handle
	c *collectors
}

// Unwrap returns the instrumented handle
func (h *Handle) Unwrap() geogrid.Handle {
	return h.Handle
}

// ReadBand implements geogrid.Handle
func (h *Handle) ReadBand(band, xOff, yOff, width, height int) (*geogrid.Array, error) {
	start := time.Now()
	a, err := h.Handle.ReadBand(band, xOff, yOff, width, height)
	h.c.observe("read", start, err)
	if err == nil {
		h.c.pixels.WithLabelValues("read").Add(float64(width * height))
	}
	return a, err
}

// WriteBand implements geogrid.Handle
func (h *Handle) WriteBand(band int, data *geogrid.Array, xOff, yOff int) error {
	start := time.Now()
	err := h.Handle.WriteBand(band, data, xOff, yOff)
	h.c.observe("write", start, err)
	if err == nil {
		h.c.pixels.WithLabelValues("write").Add(float64(data.Width * data.Height))
	}
	return err
}
