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

package idlermeow

import (
	"errors"
)

var (
	ErrAlreadyRunning = errors.New("Server is already running")
	ErrNotRunning     = errors.New("Server is not running")
	ErrConfigNotFound = errors.New("Server configuration not found")
	ErrSpawnFailed    = errors.New("Failed to start server process")
	ErrPathEscape     = errors.New("Path escapes the sandbox")
	ErrInvalidPath    = errors.New("Invalid path")
	ErrNotFound       = errors.New("File or directory not found")
	ErrNotText        = errors.New("Not a text file")
	ErrExists         = errors.New("File already exists")
	ErrIOFailure      = errors.New("I/O failure")
	ErrNetwork        = errors.New("Network failure")
	ErrRecordNotFound = errors.New("Record not found")
	ErrInvalidRecord  = errors.New("Invalid instance record")
	ErrShuttingDown   = errors.New("Supervisor is shutting down")
)
