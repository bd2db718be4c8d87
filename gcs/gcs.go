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

// Package gcs makes objects stored on Google Cloud Storage readable by
// gdalstore, by registering an osio adapter as a GDAL virtual file system
// handler.
package gcs

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/osio"
	osiogcs "github.com/airbusgeo/osio/gcs"
	"google.golang.org/api/option"
)

type registerOpts struct {
	prefix          string
	client          *storage.Client
	noAuth          bool
	blockSize       string
	numCachedBlocks int
}

// Option is an option that can be passed to Register
type Option func(o *registerOpts)

// Prefix is the prefix that a file must have in order to be handled.
// Defaults to "gs://", i.e. geogrid.Open(st, "gs://mybucket/myfile.tif")
func Prefix(prefix string) Option {
	return func(o *registerOpts) {
		o.prefix = prefix
	}
}

// Client sets the storage client used to access the objects. NoAuth is ignored
// when a client is provided.
func Client(cl *storage.Client) Option {
	return func(o *registerOpts) {
		o.client = cl
	}
}

// NoAuth creates an anonymous client, for public buckets
func NoAuth() Option {
	return func(o *registerOpts) {
		o.noAuth = true
	}
}

// BlockSize sets the size of requests that will go out to the storage API,
// e.g. "512k" or "1M". Defaults to 512k
func BlockSize(bs string) Option {
	return func(o *registerOpts) {
		o.blockSize = bs
	}
}

// NumCachedBlocks sets the number of blocks to keep in the lru cache.
// Defaults to 512
func NumCachedBlocks(n int) Option {
	if n < 1 {
		panic("invalid number of cached blocks")
	}
	return func(o *registerOpts) {
		o.numCachedBlocks = n
	}
}

// Register registers a handler to gdal in order to use cloud.google.com/go/storage
// APIs to access objects on cloud storage buckets. It returns the storage client,
// which may be used to write objects.
func Register(ctx context.Context, opts ...Option) (*storage.Client, error) {
	ro := registerOpts{
		prefix:          "gs://",
		blockSize:       "512k",
		numCachedBlocks: 512,
	}
	for _, o := range opts {
		o(&ro)
	}
	if ro.client == nil {
		var copts []option.ClientOption
		if ro.noAuth {
			copts = append(copts, option.WithoutAuthentication())
		}
		cl, err := storage.NewClient(ctx, copts...)
		if err != nil {
			return nil, fmt.Errorf("storage.newclient: %w", err)
		}
		ro.client = cl
	}
	gsh, err := osiogcs.Handle(ctx, osiogcs.GCSClient(ro.client))
	if err != nil {
		return nil, fmt.Errorf("osio gcs.handle: %w", err)
	}
	gsa, err := osio.NewAdapter(gsh, osio.BlockSize(ro.blockSize), osio.NumCachedBlocks(ro.numCachedBlocks))
	if err != nil {
		return nil, fmt.Errorf("osio.newadapter: %w", err)
	}
	if err := godal.RegisterVSIHandler(ro.prefix, gsa, godal.VSIHandlerStripPrefix(true)); err != nil {
		return nil, fmt.Errorf("godal.registervsihandler: %w", err)
	}
	return ro.client, nil
}

// Parse splits a gs://bucket/object uri. It returns empty strings if uri is not
// a gs:// uri or has no object part.
func Parse(uri string) (bucket, object string) {
	if !strings.HasPrefix(uri, "gs://") {
		return
	}
	uri = uri[5:]
	firstSlash := strings.Index(uri, "/")
	if firstSlash == -1 {
		return
	}
	obj := strings.Trim(uri[firstSlash:], "/")
	if obj == "" {
		return
	}
	return uri[0:firstSlash], obj
}
