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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	PropertiesFile = "server.properties"
	EULAFile       = "eula.txt"

	portKey = "server-port="
)

// PortChange describes what SyncServerPort did to server.properties.
type PortChange struct {
	Port    int
	Old     string // previous value, empty unless Updated
	Updated bool   // an existing line was rewritten
	Added   bool   // a line was appended (or the file created)
	Created bool   // the file did not exist before
}

// Changed reports whether the file was written.
func (pc PortChange) Changed() bool {
	return pc.Updated || pc.Added
}

// Message is the console line announcing the change, or "" if there
// was none.
func (pc PortChange) Message() string {
	switch {
	case pc.Updated:
		return fmt.Sprintf("[Server] Updated server-port from %s to %d in %s",
			pc.Old, pc.Port, PropertiesFile)
	case pc.Added:
		return fmt.Sprintf("[Server] Added server-port=%d to %s",
			pc.Port, PropertiesFile)
	}
	return ""
}

// SyncServerPort makes the server-port line of dir/server.properties
// name port.  The first server-port line is rewritten in place when
// stale; if there is none, one is appended; if the file is missing it
// is created holding just that line.  Every other line, including its
// line ending, is left alone.
func SyncServerPort(dir string, port int) (PortChange, error) {
	pc := PortChange{Port: port}
	name := filepath.Join(dir, PropertiesFile)
	want := portKey + strconv.Itoa(port)

	b, e := os.ReadFile(name)
	if errors.Is(e, fs.ErrNotExist) {
		pc.Added = true
		pc.Created = true
		return pc, writeFileAtomic(name, []byte(want+"\n"), 0644)
	}
	if e != nil {
		return pc, e
	}

	lines := strings.Split(string(b), "\n")
	found := false
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(body, portKey) {
			continue
		}
		found = true
		old := strings.TrimSpace(strings.TrimPrefix(body, portKey))
		if old != strconv.Itoa(port) {
			pc.Old = old
			pc.Updated = true
			lines[i] = want + line[len(body):]
		}
		break
	}
	if !found {
		pc.Added = true
		eol := "\n"
		if strings.Contains(string(b), "\r\n") {
			eol = "\r\n"
			want += "\r"
		}
		if n := len(lines); lines[n-1] == "" {
			// keep the trailing newline where it was
			lines = append(lines[:n-1], want, "")
		} else {
			lines[n-1] += strings.TrimSuffix(eol, "\n")
			lines = append(lines, strings.TrimSuffix(want, "\r"))
		}
	}
	if !pc.Changed() {
		return pc, nil
	}
	return pc, writeFileAtomic(name, []byte(strings.Join(lines, "\n")), 0644)
}

// EnsureEULA writes eula.txt into dir unless it already exists.  It
// reports whether the file was written.
func EnsureEULA(dir string) (bool, error) {
	f, e := os.OpenFile(filepath.Join(dir, EULAFile),
		os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(e, fs.ErrExist) {
		return false, nil
	}
	if e != nil {
		return false, e
	}
	if _, e = f.WriteString("eula=true\n"); e != nil {
		f.Close()
		return false, e
	}
	return true, f.Close()
}

// writeFileAtomic writes to a temporary file in the same directory and
// renames it over name.
func writeFileAtomic(name string, data []byte, perm os.FileMode) error {
	f, e := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if e != nil {
		return e
	}
	tmp := f.Name()
	if _, e = f.Write(data); e == nil {
		e = f.Chmod(perm)
	}
	if ce := f.Close(); e == nil {
		e = ce
	}
	if e == nil {
		e = os.Rename(tmp, name)
	}
	if e != nil {
		os.Remove(tmp)
	}
	return e
}
