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
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var textExtensions = map[string]bool{
	".txt":        true,
	".log":        true,
	".json":       true,
	".properties": true,
	".yml":        true,
	".yaml":       true,
	".js":         true,
	".css":        true,
	".html":       true,
	".ejs":        true,
	".xml":        true,
}

// IsTextFile reports whether name has an extension we edit inline.
func IsTextFile(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// FileInfo describes one entry of an instance directory.  Path is
// relative to the instance root and always uses forward slashes.
type FileInfo struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"isDirectory"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
}

// Files is sandboxed access to one instance directory.  Every path it
// takes is relative to the root and is checked before use.
type Files struct {
	sb *Sandbox
}

func NewFiles(root string) (*Files, error) {
	sb, e := NewSandbox(root)
	if e != nil {
		return nil, e
	}
	return &Files{sb: sb}, nil
}

func (f *Files) Sandbox() *Sandbox {
	return f.sb
}

func (f *Files) resolve(p string) (string, error) {
	full, e := f.sb.Resolve(p)
	if e != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, e)
	}
	return full, nil
}

// fileError classifies an error from the os package.
func fileError(e error) error {
	switch {
	case e == nil:
		return nil
	case errors.Is(e, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, e)
	case errors.Is(e, fs.ErrExist):
		return fmt.Errorf("%w: %v", ErrExists, e)
	}
	return fmt.Errorf("%w: %v", ErrIOFailure, e)
}

func (f *Files) info(full string, fi fs.FileInfo) FileInfo {
	return FileInfo{
		Name:        fi.Name(),
		Path:        f.sb.Rel(full),
		IsDirectory: fi.IsDir(),
		Size:        fi.Size(),
		ModTime:     fi.ModTime(),
	}
}

func (f *Files) Stat(p string) (FileInfo, error) {
	full, e := f.resolve(p)
	if e != nil {
		return FileInfo{}, e
	}
	fi, e := os.Stat(full)
	if e != nil {
		return FileInfo{}, fileError(e)
	}
	return f.info(full, fi), nil
}

// List returns the entries of dir, directories first and then by name.
func (f *Files) List(dir string) ([]FileInfo, error) {
	full, e := f.resolve(dir)
	if e != nil {
		return nil, e
	}
	ents, e := os.ReadDir(full)
	if e != nil {
		return nil, fileError(e)
	}
	infos := make([]FileInfo, 0, len(ents))
	for _, ent := range ents {
		fi, e := ent.Info()
		if e != nil {
			// Raced with a delete.
			continue
		}
		infos = append(infos, f.info(filepath.Join(full, ent.Name()), fi))
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDirectory != infos[j].IsDirectory {
			return infos[i].IsDirectory
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Read returns the content of a text file.  Other files fail with
// ErrNotText; use Open for those.
func (f *Files) Read(p string) (string, error) {
	full, e := f.resolve(p)
	if e != nil {
		return "", e
	}
	if !IsTextFile(full) {
		return "", fmt.Errorf("%w: %s", ErrNotText, p)
	}
	b, e := os.ReadFile(full)
	if e != nil {
		return "", fileError(e)
	}
	return string(b), nil
}

// Open opens a regular file for download.  The caller closes it.
func (f *Files) Open(p string) (*os.File, FileInfo, error) {
	full, e := f.resolve(p)
	if e != nil {
		return nil, FileInfo{}, e
	}
	fd, e := os.Open(full)
	if e != nil {
		return nil, FileInfo{}, fileError(e)
	}
	fi, e := fd.Stat()
	if e != nil {
		fd.Close()
		return nil, FileInfo{}, fileError(e)
	}
	if fi.IsDir() {
		fd.Close()
		return nil, FileInfo{}, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, p)
	}
	return fd, f.info(full, fi), nil
}

// Write replaces the content of p, creating it if needed.  The parent
// directory must exist.
func (f *Files) Write(p string, content string) error {
	full, e := f.resolve(p)
	if e != nil {
		return e
	}
	if full == f.sb.Root() {
		return fmt.Errorf("%w: cannot write the root", ErrInvalidPath)
	}
	return fileError(os.WriteFile(full, []byte(content), 0644))
}

// CreateFile creates an empty file called name in dir.  It fails with
// ErrExists if there is already something there.
func (f *Files) CreateFile(dir, name string) error {
	full, e := f.resolve(joinRel(dir, name))
	if e != nil {
		return e
	}
	fd, e := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if e != nil {
		return fileError(e)
	}
	return fileError(fd.Close())
}

// CreateDirectory creates dir/name and any missing parents.
func (f *Files) CreateDirectory(dir, name string) error {
	full, e := f.resolve(joinRel(dir, name))
	if e != nil {
		return e
	}
	return fileError(os.MkdirAll(full, 0755))
}

// Rename gives the entry at p the name newName, within the same
// directory.  Both ends are checked.
func (f *Files) Rename(p string, newName string) error {
	from, e := f.resolve(p)
	if e != nil {
		return e
	}
	if from == f.sb.Root() {
		return fmt.Errorf("%w: cannot rename the root", ErrInvalidPath)
	}
	to, e := f.resolve(joinRel(f.sb.Rel(filepath.Dir(from)), newName))
	if e != nil {
		return e
	}
	if to == f.sb.Root() {
		return fmt.Errorf("%w: %q", ErrInvalidPath, newName)
	}
	if _, e := os.Lstat(from); e != nil {
		return fileError(e)
	}
	return fileError(os.Rename(from, to))
}

// Delete removes each of paths, recursively for directories.  All of
// them are checked before anything is removed; one bad path rejects
// the lot.  Paths that do not exist are skipped.  It returns the paths
// actually removed.
func (f *Files) Delete(paths []string) ([]string, error) {
	fulls := make([]string, 0, len(paths))
	for _, p := range paths {
		full, e := f.resolve(p)
		if e != nil {
			return nil, e
		}
		if full == f.sb.Root() {
			return nil, fmt.Errorf("%w: cannot delete the root", ErrInvalidPath)
		}
		fulls = append(fulls, full)
	}

	var removed []string
	for _, full := range fulls {
		if _, e := os.Lstat(full); errors.Is(e, fs.ErrNotExist) {
			continue
		}
		if e := os.RemoveAll(full); e != nil {
			return removed, fileError(e)
		}
		removed = append(removed, f.sb.Rel(full))
	}
	return removed, nil
}

// Upload stores r as dir/base(name).  The directory must already exist.
// It returns the sandbox relative path of the new file.
func (f *Files) Upload(dir, name string, r io.Reader) (string, error) {
	full, e := f.resolve(dir)
	if e != nil {
		return "", e
	}
	fi, e := os.Stat(full)
	if e != nil {
		return "", fileError(e)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, dir)
	}
	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if base == "." || base == ".." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("%w: bad file name %q", ErrInvalidPath, name)
	}
	dest, e := f.resolve(joinRel(f.sb.Rel(full), base))
	if e != nil {
		return "", e
	}

	tmp, e := os.CreateTemp(full, "."+base+".*")
	if e != nil {
		return "", fileError(e)
	}
	_, e = io.Copy(tmp, r)
	if ce := tmp.Close(); e == nil {
		e = ce
	}
	if e == nil {
		e = os.Rename(tmp.Name(), dest)
	}
	if e != nil {
		os.Remove(tmp.Name())
		return "", fileError(e)
	}
	return f.sb.Rel(dest), nil
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
