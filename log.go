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
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	MaxLogRecords = 1000
)

// LogRecord is one line of the daemon log.  Port is set when the line
// was written by a per-instance logger, and zero otherwise.
type LogRecord struct {
	ID   int64     `json:"id,string"`
	Time time.Time `json:"time"`
	Port int       `json:"port,omitempty"`
	Text string    `json:"text"`
}

var portPrefix = regexp.MustCompile(`^\[(\d+)\] `)

// Log keeps the most recent lines written to it, so that the daemon log
// can be served over HTTP.  The ID of the newest record doubles as an
// ETag: it changes whenever anything is written.
type Log struct {
	records []LogRecord
	next    int // total records ever written since the last Clear
	id      int64
	notify  chan struct{}
	mx      sync.Mutex
}

func NewLog() *Log {
	return &Log{
		records: make([]LogRecord, MaxLogRecords),
		id:      time.Now().UnixNano(),
		notify:  make(chan struct{}),
	}
}

func (l *Log) lock() {
	l.mx.Lock()
}

func (l *Log) unlock() {
	l.mx.Unlock()
}

// Write splits b into lines and records each one.
func (l *Log) Write(b []byte) (int, error) {
	str := strings.Trim(string(b), "\n")
	now := time.Now()
	l.lock()
	for _, line := range strings.Split(str, "\n") {
		rec := LogRecord{Time: now, Text: line}
		if m := portPrefix.FindStringSubmatch(line); m != nil {
			rec.Port, _ = strconv.Atoi(m[1])
		}
		l.id++
		rec.ID = l.id
		l.records[l.next%len(l.records)] = rec
		l.next++
	}
	close(l.notify)
	l.notify = make(chan struct{})
	l.unlock()
	return len(b), nil
}

// Clear discards every record.
func (l *Log) Clear() {
	l.lock()
	l.next = 0
	// IDs must never repeat, even across a Clear.
	if now := time.Now().UnixNano(); now > l.id {
		l.id = now
	} else {
		l.id++
	}
	close(l.notify)
	l.notify = make(chan struct{})
	l.unlock()
}

// Records returns the retained records, oldest first, and the current
// ID.  If last equals the current ID nothing has changed and no records
// are returned.  A nonzero port limits the result to that instance.
func (l *Log) Records(last int64, port int) ([]LogRecord, int64) {
	l.lock()
	defer l.unlock()

	if l.id == last {
		return nil, last
	}
	cnt := l.next
	if cnt > len(l.records) {
		cnt = len(l.records)
	}
	recs := make([]LogRecord, 0, cnt)
	for i := l.next - cnt; i < l.next; i++ {
		rec := l.records[i%len(l.records)]
		if port == 0 || rec.Port == port {
			recs = append(recs, rec)
		}
	}
	return recs, l.id
}

// ID returns the ID of the newest record.
func (l *Log) ID() int64 {
	l.lock()
	defer l.unlock()
	return l.id
}

// Watch waits until the ID differs from last or ctx is done, and
// returns the ID at that time.
func (l *Log) Watch(ctx context.Context, last int64) int64 {
	for {
		l.lock()
		id, ch := l.id, l.notify
		l.unlock()
		if id != last {
			return id
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return id
		}
	}
}
