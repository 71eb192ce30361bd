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

package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/MoonlightPanel/IdlerMeow"
)

// Dir keeps each record in <path>/<port>.json.  Keys it does not know
// about are preserved when a record is saved.
type Dir struct {
	path   string
	logger *log.Logger
	mx     sync.Mutex
}

func NewDir(path string) (*Dir, error) {
	if e := os.MkdirAll(path, 0755); e != nil {
		return nil, e
	}
	return &Dir{path: path, logger: log.New(io.Discard, "", 0)}, nil
}

func (d *Dir) SetLogger(l *log.Logger) {
	d.logger = l
}

func (d *Dir) file(port int) string {
	return filepath.Join(d.path, strconv.Itoa(port)+".json")
}

// parseRecord decodes a record file.  Older files name the owner "user".
func parseRecord(b []byte, port int) (*idlermeow.Record, error) {
	if !gjson.ValidBytes(b) {
		return nil, errors.New("malformed JSON")
	}
	res := gjson.ParseBytes(b)
	if !res.IsObject() {
		return nil, errors.New("not a JSON object")
	}
	rec := &idlermeow.Record{
		Port:           int(res.Get("port").Int()),
		StartupCommand: res.Get("startupCommand").String(),
		Owner:          res.Get("owner").String(),
		CPU:            res.Get("cpu").String(),
		RAM:            res.Get("ram").String(),
		Disk:           res.Get("disk").String(),
		Users:          []string{},
	}
	if rec.Owner == "" {
		rec.Owner = res.Get("user").String()
	}
	if rec.Port == 0 {
		rec.Port = port
	}
	for _, u := range res.Get("users").Array() {
		rec.Users = append(rec.Users, u.String())
	}
	return rec, nil
}

func (d *Dir) Load(port int) (*idlermeow.Record, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.load(port)
}

func (d *Dir) load(port int) (*idlermeow.Record, error) {
	b, e := os.ReadFile(d.file(port))
	if errors.Is(e, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: port %d", idlermeow.ErrRecordNotFound, port)
	}
	if e != nil {
		return nil, e
	}
	rec, e := parseRecord(b, port)
	if e != nil {
		return nil, fmt.Errorf("%s: %v", d.file(port), e)
	}
	return rec, nil
}

func (d *Dir) Save(rec *idlermeow.Record) error {
	d.mx.Lock()
	defer d.mx.Unlock()

	name := d.file(rec.Port)
	b, e := os.ReadFile(name)
	if e != nil || !gjson.ValidBytes(b) || !gjson.ParseBytes(b).IsObject() {
		b = []byte("{}")
	}
	users := rec.Users
	if users == nil {
		users = []string{}
	}
	fields := []struct {
		key string
		val interface{}
	}{
		{"port", rec.Port},
		{"startupCommand", rec.StartupCommand},
		{"owner", rec.Owner},
		{"users", users},
		{"cpu", rec.CPU},
		{"ram", rec.RAM},
		{"disk", rec.Disk},
	}
	for _, f := range fields {
		if b, e = sjson.SetBytes(b, f.key, f.val); e != nil {
			return e
		}
	}
	return writeAtomic(name, pretty.Pretty(b))
}

// List returns every readable record.  Files that fail to parse are
// logged and skipped.
func (d *Dir) List() ([]*idlermeow.Record, error) {
	d.mx.Lock()
	defer d.mx.Unlock()

	ents, e := os.ReadDir(d.path)
	if e != nil {
		return nil, e
	}
	var recs []*idlermeow.Record
	for _, ent := range ents {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		port, e := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if e != nil {
			continue
		}
		rec, e := d.load(port)
		if e != nil {
			d.logger.Printf("Failed to parse record %s: %v", name, e)
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Port < recs[j].Port })
	return recs, nil
}

func (d *Dir) Delete(port int) error {
	d.mx.Lock()
	defer d.mx.Unlock()

	e := os.Remove(d.file(port))
	if errors.Is(e, fs.ErrNotExist) {
		return fmt.Errorf("%w: port %d", idlermeow.ErrRecordNotFound, port)
	}
	return e
}

func writeAtomic(name string, data []byte) error {
	f, e := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if e != nil {
		return e
	}
	if _, e = f.Write(data); e == nil {
		e = f.Chmod(0644)
	}
	if ce := f.Close(); e == nil {
		e = ce
	}
	if e == nil {
		e = os.Rename(f.Name(), name)
	}
	if e != nil {
		os.Remove(f.Name())
	}
	return e
}
