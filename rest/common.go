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

// Package rest serves the instance supervisor, the instance files, and
// the daemon log over HTTP, and streams instance consoles over
// WebSocket.  Client is the matching Go client.
package rest

import (
	"github.com/MoonlightPanel/IdlerMeow"
)

const (
	mimeJson = "application/json; charset=UTF-8"

	// PollEtagHeader and PollTimeHeader ask GET /log to wait, up to
	// the given number of seconds, for the ETag to move on.
	PollEtagHeader = "X-Idler-Poll-Etag"
	PollTimeHeader = "X-Idler-Poll-Time"
)

// Result is the body of every successful action, and of every error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Error struct {
	Code    int    `json:"-"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

type InstanceInfo struct {
	Port           int              `json:"port"`
	Status         idlermeow.Status `json:"status"`
	StartupCommand string           `json:"startupCommand"`
	Owner          string           `json:"owner"`
	Users          []string         `json:"users"`
	CPU            string           `json:"cpu,omitempty"`
	RAM            string           `json:"ram,omitempty"`
	Disk           string           `json:"disk,omitempty"`
}

type StatusInfo struct {
	Port   int              `json:"port"`
	Status idlermeow.Status `json:"status"`
}

type FileList struct {
	Path    string               `json:"path"`
	Entries []idlermeow.FileInfo `json:"entries"`
}

type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type CommandRequest struct {
	Command string `json:"command"`
}

type UserRequest struct {
	Email string `json:"email"`
}

type CreateRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type RenameRequest struct {
	OldPath string `json:"oldPath"`
	NewName string `json:"newName"`
}

type DeleteRequest struct {
	Files []string `json:"files"`
}

type DeleteResult struct {
	Result
	Deleted []string `json:"deleted"`
}

type ArchiveRequest struct {
	Files       []string `json:"files"`
	ArchiveName string   `json:"archiveName"`
}

type ArchiveResult struct {
	Result
	idlermeow.ArchiveResult
}

type LogInfo struct {
	etag    string
	Records []idlermeow.LogRecord
}
