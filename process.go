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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/MoonlightPanel/IdlerMeow/clock"
)

// Process is one running game server.  It is created by the Supervisor
// and lives in its map until the exit is observed.
type Process struct {
	port   int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	logger *log.Logger
	done   chan struct{}

	readers sync.WaitGroup
	wmx     sync.Mutex // serializes stdin writes

	stopping  bool
	exited    bool
	killTimer *clock.Timer
	mx        sync.Mutex
}

func startProcess(lc *LaunchConfig, logger *log.Logger) (*Process, error) {
	if len(lc.Command) == 0 {
		return nil, errors.New("empty command")
	}
	p := &Process{
		port:   lc.Port,
		logger: logger,
		done:   make(chan struct{}),
	}
	p.cmd = exec.Command(lc.Command[0], lc.Command[1:]...)
	p.cmd.Dir = lc.Dir

	var e error
	if p.stdin, e = p.cmd.StdinPipe(); e != nil {
		return nil, e
	}
	if p.stdout, e = p.cmd.StdoutPipe(); e != nil {
		return nil, e
	}
	if p.stderr, e = p.cmd.StderrPipe(); e != nil {
		return nil, e
	}
	if e = p.cmd.Start(); e != nil {
		return nil, e
	}
	p.logger.Printf("Started pid %d: %s", p.cmd.Process.Pid, strings.Join(lc.Command, " "))
	return p, nil
}

// doLog reads r a line at a time, handing each line (without its line
// terminator) to emit.  It returns when the stream closes.
func (p *Process) doLog(r io.Reader, prefix string, emit func(string)) {
	defer p.readers.Done()

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) != 0 {
			line = strings.TrimRight(line, "\r\n")
			p.logger.Print(prefix, line)
			emit(line)
		}
		if err != nil {
			return
		}
	}
}

// Port returns the port this process serves.
func (p *Process) Port() int {
	return p.port
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the exit has been observed and published.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Write sends text followed by a newline to the process.  Concurrent
// writes never interleave.
func (p *Process) Write(text string) error {
	p.wmx.Lock()
	defer p.wmx.Unlock()
	_, e := io.WriteString(p.stdin, text+"\n")
	return e
}

func (p *Process) Kill() {
	if e := p.cmd.Process.Kill(); e != nil {
		p.logger.Printf("Failed killing: %v", e)
	}
}

func (p *Process) isStopping() bool {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.stopping
}

// markStopping flags the process as stopping.  It returns true only for
// the first caller, who is then responsible for the kill timer.
func (p *Process) markStopping() bool {
	p.mx.Lock()
	defer p.mx.Unlock()
	if p.stopping || p.exited {
		return false
	}
	p.stopping = true
	return true
}

// setKillTimer records t, or stops it if the process already exited.
func (p *Process) setKillTimer(t *clock.Timer) {
	p.mx.Lock()
	if p.exited {
		p.mx.Unlock()
		t.Stop()
		return
	}
	p.killTimer = t
	p.mx.Unlock()
}

// wait drains both readers, reaps the process, and cancels any kill
// timer.  It returns the console line describing the exit.
func (p *Process) wait() string {
	p.readers.Wait()
	e := p.cmd.Wait()
	p.stdin.Close()

	p.mx.Lock()
	p.exited = true
	t := p.killTimer
	p.killTimer = nil
	p.mx.Unlock()
	t.Stop()

	msg := exitMessage(p.cmd.ProcessState, e)
	p.logger.Print(msg)
	return msg
}

func exitMessage(ps *os.ProcessState, e error) string {
	if ps == nil {
		return fmt.Sprintf("[Server] Server stopped: %v.", e)
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return fmt.Sprintf("[Server] Server stopped by signal %v.", ws.Signal())
	}
	return fmt.Sprintf("[Server] Server stopped with exit code %d.", ps.ExitCode())
}
