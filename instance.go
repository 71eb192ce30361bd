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
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// LaunchConfig is everything needed to spawn an instance.
type LaunchConfig struct {
	Port    int
	Command []string
	Dir     string
}

// Resolver turns a port into a LaunchConfig, repairing what it can on
// the way: a blank startup command, a missing eula.txt, and a stale
// server-port in server.properties.
type Resolver struct {
	store          RecordStore
	dataDir        string
	defaultCommand string
	logger         *log.Logger
}

func NewResolver(store RecordStore, dataDir string) *Resolver {
	return &Resolver{
		store:          store,
		dataDir:        dataDir,
		defaultCommand: DefaultCommand,
		logger:         log.New(io.Discard, "", 0),
	}
}

func (r *Resolver) SetDefaultCommand(cmd string) {
	if strings.TrimSpace(cmd) != "" {
		r.defaultCommand = cmd
	}
}

func (r *Resolver) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Resolver) Store() RecordStore {
	return r.store
}

// Dir returns the working directory of the instance on port.
func (r *Resolver) Dir(port int) string {
	return filepath.Join(r.dataDir, strconv.Itoa(port))
}

// Sandbox returns the sandbox rooted at the instance directory.
func (r *Resolver) Sandbox(port int) (*Sandbox, error) {
	return NewSandbox(r.Dir(port))
}

// Load fetches the record for port, mapping a missing record to
// ErrConfigNotFound.
func (r *Resolver) Load(port int) (*Record, error) {
	rec, e := r.store.Load(port)
	if errors.Is(e, ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: port %d", ErrConfigNotFound, port)
	}
	if e != nil {
		return nil, e
	}
	return rec, nil
}

// Prepare loads and repairs the configuration of the instance on port.
// Progress and non-fatal problems are reported through note, which may
// be nil.
func (r *Resolver) Prepare(port int, note func(text string, isError bool)) (*LaunchConfig, error) {
	if note == nil {
		note = func(string, bool) {}
	}
	rec, e := r.Load(port)
	if e != nil {
		if errors.Is(e, ErrConfigNotFound) {
			note(fmt.Sprintf("[Server] Configuration for port %d not found.", port), true)
		}
		return nil, e
	}

	dir := r.Dir(port)
	if e := os.MkdirAll(dir, 0755); e != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, e)
	}

	if strings.TrimSpace(rec.StartupCommand) == "" {
		rec.StartupCommand = r.defaultCommand
		if e := r.store.Save(rec); e != nil {
			r.logger.Printf("[%d] Failed saving default command: %v", port, e)
		} else {
			r.logger.Printf("[%d] Startup command set to %q", port, rec.StartupCommand)
		}
	}

	if _, e := EnsureEULA(dir); e != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIOFailure, EULAFile, e)
	}

	if pc, e := SyncServerPort(dir, port); e != nil {
		note(fmt.Sprintf("[Server] Failed to update %s: %v", PropertiesFile, e), true)
	} else if msg := pc.Message(); msg != "" {
		note(msg, false)
	}

	args := strings.Fields(rec.StartupCommand)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty startup command", ErrConfigNotFound)
	}
	return &LaunchConfig{Port: port, Command: args, Dir: dir}, nil
}

// Provisioner creates instances and edits their records.
type Provisioner struct {
	*Resolver
	fetcher *Fetcher
	mx      sync.Mutex
}

func NewProvisioner(r *Resolver, f *Fetcher) *Provisioner {
	if f == nil {
		f = NewFetcher("")
	}
	return &Provisioner{Resolver: r, fetcher: f}
}

// Create saves rec, makes its working directory, and downloads the
// server binary into it.  The record is kept even if the download
// fails; the error is returned so the caller can report it.
func (p *Provisioner) Create(ctx context.Context, rec *Record) error {
	if rec.Port <= 0 || rec.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidRecord, rec.Port)
	}
	if strings.TrimSpace(rec.StartupCommand) == "" {
		rec.StartupCommand = p.defaultCommand
	}
	if rec.Users == nil {
		rec.Users = []string{}
	}
	if e := p.store.Save(rec); e != nil {
		return e
	}
	dir := p.Dir(rec.Port)
	if e := os.MkdirAll(dir, 0755); e != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, e)
	}
	if e := p.fetcher.EnsureBinaryPresent(ctx, dir); e != nil {
		p.logger.Printf("[%d] Failed to download server binary: %v", rec.Port, e)
		return e
	}
	return nil
}

// List returns every record, ordered by port.
func (p *Provisioner) List() ([]*Record, error) {
	recs, e := p.store.List()
	if e != nil {
		return nil, e
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Port < recs[j].Port })
	return recs, nil
}

func (p *Provisioner) AddUser(port int, email string) error {
	return p.editUsers(port, func(rec *Record) { rec.AddUser(email) })
}

func (p *Provisioner) RemoveUser(port int, email string) error {
	return p.editUsers(port, func(rec *Record) { rec.RemoveUser(email) })
}

func (p *Provisioner) editUsers(port int, edit func(*Record)) error {
	p.mx.Lock()
	defer p.mx.Unlock()

	rec, e := p.Load(port)
	if e != nil {
		return e
	}
	edit(rec)
	return p.store.Save(rec)
}
