// Copyright 2026 The IdlerMeow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store holds the RecordStore implementations: a directory of
// JSON files, one per port, and a SQLite table.
package store

import (
	"fmt"

	"github.com/MoonlightPanel/IdlerMeow"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open returns the RecordStore for driver, rooted at path.
func Open(driver, path string) (idlermeow.RecordStore, error) {
	switch driver {
	case DriverJSON, "":
		return NewDir(path)
	case DriverSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("unknown record driver %q", driver)
}
