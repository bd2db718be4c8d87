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

// Package config reads the command line tools configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the environment configuration. Every field can be overridden by a
// command line flag.
type Config struct {
	LogLevel    string
	LogConsole  bool
	GSBlockSize string
	GSNumBlocks int
	GSNoAuth    bool
	TmpDir      string
}

// FromEnv reads the GEOGRID_* environment variables
func FromEnv() Config {
	return Config{
		LogLevel:    getenv("GEOGRID_LOG_LEVEL", "info"),
		LogConsole:  getbool("GEOGRID_LOG_CONSOLE", false),
		GSBlockSize: getenv("GEOGRID_GS_BLOCKSIZE", "512k"),
		GSNumBlocks: getint("GEOGRID_GS_NUMBLOCKS", 512),
		GSNoAuth:    getbool("GEOGRID_GS_NOAUTH", false),
		TmpDir:      getenv("GEOGRID_TMPDIR", os.TempDir()),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}
