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
	"io"
	"log"
	"strings"
	"sync"
)

// MultiLogger copies every line written to it to a set of writers, for
// example stderr and the daemon Log.
type MultiLogger struct {
	log     *log.Logger
	writers []io.Writer
	lock    sync.Mutex
}

func (l *MultiLogger) Write(b []byte) (int, error) {
	lines := strings.Split(strings.Trim(string(b), "\n"), "\n")
	l.lock.Lock()
	for _, w := range l.writers {
		for _, line := range lines {
			io.WriteString(w, line+"\n")
		}
	}
	l.lock.Unlock()
	return len(b), nil
}

func (l *MultiLogger) AddWriter(w io.Writer) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, x := range l.writers {
		if x == w {
			return
		}
	}
	l.writers = append(l.writers, w)
}

func (l *MultiLogger) DelWriter(w io.Writer) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for i, x := range l.writers {
		if x == w {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			break
		}
	}
}

type logWriter struct {
	l *log.Logger
}

func (w logWriter) Write(b []byte) (int, error) {
	w.l.Print(string(b))
	return len(b), nil
}

// AddLogger adds a logger, which applies its own prefix and flags.
func (l *MultiLogger) AddLogger(logger *log.Logger) {
	l.AddWriter(logWriter{logger})
}

func (l *MultiLogger) DelLogger(logger *log.Logger) {
	l.DelWriter(logWriter{logger})
}

// Logger returns a logger that writes through l.
func (l *MultiLogger) Logger() *log.Logger {
	return l.log
}

// PortLogger returns a logger whose lines are tagged with port, in the
// form the daemon Log recognizes.
func (l *MultiLogger) PortLogger(port int) *log.Logger {
	return log.New(l, fmt.Sprintf("[%d] ", port), 0)
}

func NewMultiLogger() *MultiLogger {
	m := &MultiLogger{}
	m.log = log.New(m, "", 0)
	return m
}
