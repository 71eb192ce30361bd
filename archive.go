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
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// ArchiveResult reports what Archive put into the archive, and which
// requested entries it passed over.
type ArchiveResult struct {
	Path    string   `json:"path"`
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

// Archive writes a ZIP of entries to name, both relative to the root.
// Entries that escape the sandbox or do not exist are skipped and
// reported, as are symbolic links.  Directories are added recursively.
// The archive is built in a temporary file and renamed into place, and
// never contains itself.  A name without an extension gets ".zip".
func (f *Files) Archive(entries []string, name string) (*ArchiveResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: missing archive name", ErrInvalidPath)
	}
	if filepath.Ext(name) == "" {
		name += ".zip"
	}
	dest, e := f.resolve(name)
	if e != nil {
		return nil, e
	}
	if dest == f.sb.Root() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	if fi, e := os.Stat(dest); e == nil && fi.IsDir() {
		return nil, fmt.Errorf("%w: %q is a directory", ErrInvalidPath, name)
	}

	tmp, e := os.CreateTemp(filepath.Dir(dest), ".archive-*.tmp")
	if e != nil {
		return nil, fileError(e)
	}
	ar := &archiver{
		f:     f,
		zw:    zip.NewWriter(tmp),
		skip:  map[string]bool{dest: true, tmp.Name(): true},
		added: map[string]bool{},
		res:   &ArchiveResult{Path: f.sb.Rel(dest)},
	}
	ar.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, ent := range entries {
		full, re := f.sb.Resolve(ent)
		if re != nil {
			ar.res.Skipped = append(ar.res.Skipped, ent)
			continue
		}
		if e = ar.add(full); errors.Is(e, fs.ErrNotExist) {
			ar.res.Skipped = append(ar.res.Skipped, ent)
			e = nil
		} else if e != nil {
			break
		}
	}
	if e == nil {
		e = ar.zw.Close()
	}
	if ce := tmp.Close(); e == nil {
		e = ce
	}
	if e == nil {
		e = os.Rename(tmp.Name(), dest)
	}
	if e != nil {
		os.Remove(tmp.Name())
		return nil, fileError(e)
	}
	return ar.res, nil
}

type archiver struct {
	f     *Files
	zw    *zip.Writer
	skip  map[string]bool
	added map[string]bool
	res   *ArchiveResult
}

func (ar *archiver) add(full string) error {
	fi, e := os.Lstat(full)
	if e != nil {
		return e
	}
	if !fi.IsDir() {
		return ar.addFile(full, fi)
	}
	return filepath.WalkDir(full, func(p string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		fi, e := d.Info()
		if e != nil {
			return e
		}
		if d.IsDir() {
			return ar.addDir(p, fi)
		}
		return ar.addFile(p, fi)
	})
}

func (ar *archiver) addDir(full string, fi fs.FileInfo) error {
	if full == ar.f.sb.Root() {
		return nil
	}
	name := ar.f.sb.Rel(full) + "/"
	if ar.added[name] {
		return nil
	}
	hdr, e := zip.FileInfoHeader(fi)
	if e != nil {
		return e
	}
	hdr.Name = name
	if _, e = ar.zw.CreateHeader(hdr); e != nil {
		return e
	}
	ar.added[name] = true
	ar.res.Added = append(ar.res.Added, name)
	return nil
}

func (ar *archiver) addFile(full string, fi fs.FileInfo) error {
	name := ar.f.sb.Rel(full)
	switch {
	case ar.skip[full], ar.added[name]:
		return nil
	case !fi.Mode().IsRegular():
		ar.res.Skipped = append(ar.res.Skipped, name)
		return nil
	}
	hdr, e := zip.FileInfoHeader(fi)
	if e != nil {
		return e
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, e := ar.zw.CreateHeader(hdr)
	if e != nil {
		return e
	}
	fd, e := os.Open(full)
	if e != nil {
		return e
	}
	defer fd.Close()
	if _, e = io.Copy(w, fd); e != nil {
		return e
	}
	ar.added[name] = true
	ar.res.Added = append(ar.res.Added, name)
	return nil
}
