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
	"sort"
	"sync"
	"time"

	"github.com/MoonlightPanel/IdlerMeow/clock"
)

const (
	DefaultStopTimeout  = 10 * time.Second
	DefaultRestartDelay = 5 * time.Second
)

// Preparer produces the launch configuration for a port.  Resolver is
// the usual implementation.
type Preparer interface {
	Prepare(port int, note func(text string, isError bool)) (*LaunchConfig, error)
}

type pendingRestart struct {
	timer *clock.Timer
}

// Supervisor owns the game server processes, at most one per port.
// Every console line and status change it sees is published to its
// Broadcaster.  The supervisor lock and the broadcaster lock are never
// held together.
type Supervisor struct {
	procs    map[int]*Process
	starting map[int]bool
	restarts map[int]*pendingRestart
	bcast    *Broadcaster
	config   Preparer
	clock    clock.Clock
	logger   *log.Logger

	stopTimeout  time.Duration
	restartDelay time.Duration

	observers sync.WaitGroup
	closed    bool
	killing   bool
	mx        sync.Mutex
}

func NewSupervisor(config Preparer, b *Broadcaster) *Supervisor {
	return &Supervisor{
		procs:        make(map[int]*Process),
		starting:     make(map[int]bool),
		restarts:     make(map[int]*pendingRestart),
		bcast:        b,
		config:       config,
		clock:        clock.Real(),
		logger:       log.New(io.Discard, "", 0),
		stopTimeout:  DefaultStopTimeout,
		restartDelay: DefaultRestartDelay,
	}
}

func (s *Supervisor) lock() {
	s.mx.Lock()
}

func (s *Supervisor) unlock() {
	s.mx.Unlock()
}

func (s *Supervisor) SetLogger(l *log.Logger) {
	s.logger = l
}

func (s *Supervisor) SetClock(c clock.Clock) {
	s.clock = c
}

func (s *Supervisor) SetStopTimeout(d time.Duration) {
	if d > 0 {
		s.stopTimeout = d
	}
}

func (s *Supervisor) SetRestartDelay(d time.Duration) {
	if d >= 0 {
		s.restartDelay = d
	}
}

func (s *Supervisor) Broadcaster() *Broadcaster {
	return s.bcast
}

func (s *Supervisor) portLogger(port int) *log.Logger {
	return log.New(s.logger.Writer(), fmt.Sprintf("[%d] ", port), s.logger.Flags())
}

func (s *Supervisor) console(port int, text string, isError bool) {
	s.bcast.Publish(port, ConsoleEvent(text, isError))
}

// Start launches the instance on port.  It returns once the process has
// been spawned; the instance is reported Online from then on.
func (s *Supervisor) Start(port int) error {
	s.lock()
	if s.closed {
		s.unlock()
		return fmt.Errorf("%w: port %d", ErrShuttingDown, port)
	}
	if s.procs[port] != nil || s.starting[port] {
		s.unlock()
		return fmt.Errorf("%w: port %d", ErrAlreadyRunning, port)
	}
	s.starting[port] = true
	// The observer slot is taken here so Shutdown also waits for
	// starts that are still in flight.
	s.observers.Add(1)
	s.unlock()

	s.bcast.SetStatus(port, Starting)

	lc, e := s.config.Prepare(port, func(text string, isError bool) {
		s.console(port, text, isError)
	})
	if e != nil {
		s.abortStart(port)
		return e
	}

	logger := s.portLogger(port)
	p, e := startProcess(lc, logger)
	if e != nil {
		logger.Printf("Failed to start: %v", e)
		s.console(port, fmt.Sprintf("[ERROR] Failed to start server process: %v.", e), true)
		s.abortStart(port)
		return fmt.Errorf("%w: %v", ErrSpawnFailed, e)
	}

	s.lock()
	delete(s.starting, port)
	s.procs[port] = p
	closed, killing := s.closed, s.killing
	s.unlock()

	// A Stop that raced us may already have moved the status on.
	s.bcast.Transition(port, Starting, Online)

	p.readers.Add(2)
	go p.doLog(p.stdout, "stdout> ", func(line string) {
		s.console(port, line, false)
	})
	go p.doLog(p.stderr, "stderr> ", func(line string) {
		s.console(port, line, true)
	})
	go s.observe(p)

	switch {
	case killing:
		logger.Printf("Killing at shutdown")
		p.Kill()
	case closed:
		s.Stop(port)
	}
	return nil
}

func (s *Supervisor) abortStart(port int) {
	s.lock()
	delete(s.starting, port)
	s.unlock()
	s.bcast.SetStatus(port, Offline)
	s.observers.Done()
}

// observe is the only place a process leaves the map.
func (s *Supervisor) observe(p *Process) {
	defer s.observers.Done()

	msg := p.wait()
	s.console(p.port, msg, false)
	s.bcast.SetStatus(p.port, Offline)

	s.lock()
	if s.procs[p.port] == p {
		delete(s.procs, p.port)
	}
	s.unlock()
	close(p.done)
}

func (s *Supervisor) lookup(port int) *Process {
	s.lock()
	defer s.unlock()
	return s.procs[port]
}

// Stop asks the instance on port to shut down by sending it "stop".  If
// it has not exited when the stop timeout expires it is killed.
func (s *Supervisor) Stop(port int) error {
	p := s.lookup(port)
	if p == nil {
		return fmt.Errorf("%w: port %d", ErrNotRunning, port)
	}
	if !s.bcast.Transition(port, Online, Stopping) {
		s.bcast.Transition(port, Starting, Stopping)
	}
	if e := p.Write("stop"); e != nil {
		p.logger.Printf("Failed sending stop: %v", e)
	}
	if p.markStopping() {
		p.setKillTimer(s.clock.AfterFunc(s.stopTimeout, func() {
			s.forceKill(p)
		}))
	}
	return nil
}

func (s *Supervisor) forceKill(p *Process) {
	if s.lookup(p.port) != p {
		return
	}
	select {
	case <-p.done:
		return
	default:
	}
	p.logger.Printf("Graceful shutdown timed out")
	s.console(p.port, "[Server] Graceful shutdown timed out. Forcing termination.", false)
	p.Kill()
}

// Restart stops the instance, if running, and starts it again after the
// restart delay.  It does not wait for the old process to exit.
func (s *Supervisor) Restart(port int) error {
	s.lock()
	closed := s.closed
	s.unlock()
	if closed {
		return fmt.Errorf("%w: port %d", ErrShuttingDown, port)
	}
	if e := s.Stop(port); e != nil && !errors.Is(e, ErrNotRunning) {
		return e
	}

	r := &pendingRestart{}
	s.lock()
	if old := s.restarts[port]; old != nil {
		old.timer.Stop()
	}
	s.restarts[port] = r
	s.unlock()

	t := s.clock.AfterFunc(s.restartDelay, func() {
		s.lock()
		if s.closed || s.restarts[port] != r {
			s.unlock()
			return
		}
		delete(s.restarts, port)
		s.unlock()

		if e := s.Start(port); e != nil {
			s.logger.Printf("[%d] Restart failed: %v", port, e)
			s.console(port, fmt.Sprintf("[Server] Restart failed: %v", e), true)
		}
	})

	s.lock()
	if !s.closed && s.restarts[port] == r {
		r.timer = t
	} else {
		t.Stop()
	}
	s.unlock()
	return nil
}

// SendCommand writes text as one line to the instance's console.
func (s *Supervisor) SendCommand(port int, text string) error {
	p := s.lookup(port)
	if p == nil {
		return fmt.Errorf("%w: port %d", ErrNotRunning, port)
	}
	if e := p.Write(text); e != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, e)
	}
	return nil
}

// Status reports the state of port from the supervisor's own maps.
func (s *Supervisor) Status(port int) Status {
	s.lock()
	p := s.procs[port]
	starting := s.starting[port]
	s.unlock()

	switch {
	case p != nil && p.isStopping():
		return Stopping
	case p != nil:
		return Online
	case starting:
		return Starting
	}
	return Offline
}

// Running returns the ports with a live process, in order.
func (s *Supervisor) Running() []int {
	s.lock()
	ports := make([]int, 0, len(s.procs))
	for port := range s.procs {
		ports = append(ports, port)
	}
	s.unlock()
	sort.Ints(ports)
	return ports
}

// Process returns the live process for port, or nil.
func (s *Supervisor) Process(port int) *Process {
	return s.lookup(port)
}

// Shutdown cancels pending restarts and stops every instance.  Start
// and Restart fail with ErrShuttingDown from then on.  Whatever is still
// running when ctx ends is killed.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.lock()
	s.closed = true
	for port, r := range s.restarts {
		r.timer.Stop()
		delete(s.restarts, port)
	}
	s.unlock()

	for _, port := range s.Running() {
		if e := s.Stop(port); e != nil && !errors.Is(e, ErrNotRunning) {
			s.logger.Printf("[%d] Stop failed: %v", port, e)
		}
	}

	done := make(chan struct{})
	go func() {
		s.observers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	s.lock()
	s.killing = true
	procs := make([]*Process, 0, len(s.procs))
	for _, p := range s.procs {
		procs = append(procs, p)
	}
	s.unlock()
	for _, p := range procs {
		p.logger.Printf("Killing at shutdown")
		p.Kill()
	}
	<-done
	return ctx.Err()
}
