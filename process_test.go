//go:build unix

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

// These tests drive testdata/fakeserver.sh, and so need a POSIX shell.

package idlermeow

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func launchFake(t *testing.T, mode string) (*Process, *[]string, *sync.Mutex) {
	dir := t.TempDir()
	b, e := os.ReadFile(filepath.Join("testdata", "fakeserver.sh"))
	So(e, ShouldBeNil)
	So(os.WriteFile(filepath.Join(dir, "fakeserver.sh"), b, 0755), ShouldBeNil)

	args := []string{"sh", "fakeserver.sh"}
	if mode != "" {
		args = append(args, mode)
	}
	p, e := startProcess(&LaunchConfig{Port: 1, Command: args, Dir: dir},
		log.New(&testLog{t}, "[1] ", 0))
	So(e, ShouldBeNil)

	lines := &[]string{}
	mx := &sync.Mutex{}
	emit := func(prefix string) func(string) {
		return func(line string) {
			mx.Lock()
			*lines = append(*lines, prefix+line)
			mx.Unlock()
		}
	}
	p.readers.Add(2)
	go p.doLog(p.stdout, "stdout> ", emit("out:"))
	go p.doLog(p.stderr, "stderr> ", emit("err:"))
	return p, lines, mx
}

func TestProcess(t *testing.T) {
	Convey("A process echoes commands and exits on stop", t, func() {
		p, lines, mx := launchFake(t, "")
		So(p.Pid(), ShouldBeGreaterThan, 0)
		So(p.Write("list"), ShouldBeNil)
		So(p.Write("stop"), ShouldBeNil)
		So(p.wait(), ShouldEqual, "[Server] Server stopped with exit code 0.")

		mx.Lock()
		defer mx.Unlock()
		So(*lines, ShouldContain, "out:Starting fake server")
		So(*lines, ShouldContain, "err:warming up")
		So(*lines, ShouldContain, "out:> list")
		So(*lines, ShouldContain, "out:Stopping server")
	})

	Convey("A killed process reports the signal", t, func() {
		p, _, _ := launchFake(t, "stubborn")
		So(p.markStopping(), ShouldBeTrue)
		So(p.markStopping(), ShouldBeFalse)
		So(p.isStopping(), ShouldBeTrue)
		p.Kill()
		So(p.wait(), ShouldEqual, "[Server] Server stopped by signal killed.")

		Convey("and refuses further writes", func() {
			So(p.Write("stop"), ShouldNotBeNil)
		})
	})

	Convey("A missing executable fails to start", t, func() {
		_, e := startProcess(&LaunchConfig{Command: []string{"/nonexistent/server"}, Dir: t.TempDir()},
			log.New(&testLog{t}, "", 0))
		So(e, ShouldNotBeNil)
		_, e = startProcess(&LaunchConfig{}, log.New(&testLog{t}, "", 0))
		So(e, ShouldNotBeNil)
	})
}
