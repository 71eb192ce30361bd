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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type testLog struct {
	t *testing.T
}

func (tl *testLog) Write(p []byte) (n int, err error) {
	tl.t.Log(strings.Trim(string(p), "\n"))
	return len(p), nil
}

// memStore is a RecordStore kept in memory.
type memStore struct {
	recs  map[int]Record
	saves int
	mx    sync.Mutex
}

func newMemStore(recs ...Record) *memStore {
	m := &memStore{recs: make(map[int]Record)}
	for _, r := range recs {
		m.recs[r.Port] = r
	}
	return m
}

func (m *memStore) Load(port int) (*Record, error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	r, ok := m.recs[port]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, port)
	}
	r.Users = append([]string(nil), r.Users...)
	return &r, nil
}

func (m *memStore) Save(r *Record) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.saves++
	c := *r
	c.Users = append([]string(nil), r.Users...)
	m.recs[r.Port] = c
	return nil
}

func (m *memStore) List() ([]*Record, error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	var out []*Record
	for _, r := range m.recs {
		r := r
		out = append(out, &r)
	}
	return out, nil
}

func (m *memStore) Delete(port int) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	delete(m.recs, port)
	return nil
}

// installFakeServer copies testdata/fakeserver.sh into the instance
// directory for port.
func installFakeServer(r *Resolver, port int) {
	b, e := os.ReadFile(filepath.Join("testdata", "fakeserver.sh"))
	So(e, ShouldBeNil)
	dir := r.Dir(port)
	So(os.MkdirAll(dir, 0755), ShouldBeNil)
	So(os.WriteFile(filepath.Join(dir, "fakeserver.sh"), b, 0755), ShouldBeNil)
}

// collect reads events from s until match returns true, failing the
// test if that takes longer than a few seconds.
func collect(s *Subscriber, match func(Event) bool) []Event {
	var evs []Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				So("subscriber closed", ShouldBeEmpty)
				return evs
			}
			evs = append(evs, ev)
			if match(ev) {
				return evs
			}
		case <-deadline:
			So(fmt.Sprintf("timed out after %v", evs), ShouldBeEmpty)
			return evs
		}
	}
}

func isStatus(st Status) func(Event) bool {
	return func(ev Event) bool {
		return ev.Type == EventStatus && ev.Status != nil && *ev.Status == st
	}
}

func isConsole(text string) func(Event) bool {
	return func(ev Event) bool {
		return ev.Type == EventConsole && ev.Message == text
	}
}

func messages(evs []Event) []string {
	var out []string
	for _, ev := range evs {
		out = append(out, ev.String())
	}
	return out
}

func waitDone(p *Process) {
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		So("process did not exit", ShouldBeEmpty)
	}
}
