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

// SpatialSystems is the spatial reference system capability of a storage.
//
// SameSystem compares two definitions structurally: the same system written as
// two different WKT strings is the same, two systems sharing a name but with
// different parameters are not.
//
// ImportSystem converts user input (WKT, PROJ string, "EPSG:4326", ...) to the
// definition stored in rasters.
type SpatialSystems interface {
	SameSystem(a, b string) bool
	ImportSystem(userInput string) (string, error)
}

// EPSG returns the user input designating an EPSG code
func EPSG(code int) string {
	return fmt.Sprintf("EPSG:%d", code)
}

// SameSystem reports whether both boxes are expressed in the same system
func (b BoundingBox) SameSystem(other BoundingBox, systems SpatialSystems) bool {
	return systems.SameSystem(b.SRS, other.SRS)
}
