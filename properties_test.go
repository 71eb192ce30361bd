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
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func readProps(dir string) string {
	b, e := os.ReadFile(filepath.Join(dir, PropertiesFile))
	So(e, ShouldBeNil)
	return string(b)
}

func writeProps(dir, text string) {
	So(os.WriteFile(filepath.Join(dir, PropertiesFile), []byte(text), 0644), ShouldBeNil)
}

func TestSyncServerPort(t *testing.T) {
	Convey("Given an instance directory", t, func() {
		dir := t.TempDir()

		Convey("A stale port line is rewritten in place", func() {
			writeProps(dir, "motd=hi\nserver-port=25565\nmax-players=20\n")
			pc, e := SyncServerPort(dir, 25570)
			So(e, ShouldBeNil)
			So(pc.Updated, ShouldBeTrue)
			So(pc.Old, ShouldEqual, "25565")
			So(pc.Message(), ShouldEqual,
				"[Server] Updated server-port from 25565 to 25570 in server.properties")
			So(readProps(dir), ShouldEqual, "motd=hi\nserver-port=25570\nmax-players=20\n")
		})

		Convey("A current port line leaves the file alone", func() {
			writeProps(dir, "server-port=25565\r\nmotd=x")
			pc, e := SyncServerPort(dir, 25565)
			So(e, ShouldBeNil)
			So(pc.Changed(), ShouldBeFalse)
			So(pc.Message(), ShouldBeEmpty)
			So(readProps(dir), ShouldEqual, "server-port=25565\r\nmotd=x")
		})

		Convey("Windows line endings survive a rewrite", func() {
			writeProps(dir, "a=1\r\nserver-port=1\r\nb=2\r\n")
			_, e := SyncServerPort(dir, 2)
			So(e, ShouldBeNil)
			So(readProps(dir), ShouldEqual, "a=1\r\nserver-port=2\r\nb=2\r\n")
		})

		Convey("A missing line is appended", func() {
			writeProps(dir, "motd=hi\n")
			pc, e := SyncServerPort(dir, 25565)
			So(e, ShouldBeNil)
			So(pc.Added, ShouldBeTrue)
			So(pc.Created, ShouldBeFalse)
			So(pc.Message(), ShouldEqual, "[Server] Added server-port=25565 to server.properties")
			So(readProps(dir), ShouldEqual, "motd=hi\nserver-port=25565\n")
		})

		Convey("A missing line is appended after an unterminated last line", func() {
			writeProps(dir, "motd=hi")
			_, e := SyncServerPort(dir, 25565)
			So(e, ShouldBeNil)
			So(readProps(dir), ShouldEqual, "motd=hi\nserver-port=25565")
		})

		Convey("Only the first port line is considered", func() {
			writeProps(dir, "server-port=1\nserver-port=2\n")
			pc, e := SyncServerPort(dir, 3)
			So(e, ShouldBeNil)
			So(pc.Old, ShouldEqual, "1")
			So(readProps(dir), ShouldEqual, "server-port=3\nserver-port=2\n")
		})

		Convey("A missing file is created", func() {
			pc, e := SyncServerPort(dir, 25565)
			So(e, ShouldBeNil)
			So(pc.Created, ShouldBeTrue)
			So(readProps(dir), ShouldEqual, "server-port=25565\n")
		})

		Convey("A missing directory is an error", func() {
			_, e := SyncServerPort(filepath.Join(dir, "nope"), 1)
			So(e, ShouldNotBeNil)
		})
	})
}

func TestEnsureEULA(t *testing.T) {
	Convey("eula.txt is written only once", t, func() {
		dir := t.TempDir()
		wrote, e := EnsureEULA(dir)
		So(e, ShouldBeNil)
		So(wrote, ShouldBeTrue)
		b, e := os.ReadFile(filepath.Join(dir, EULAFile))
		So(e, ShouldBeNil)
		So(string(b), ShouldEqual, "eula=true\n")

		So(os.WriteFile(filepath.Join(dir, EULAFile), []byte("eula=false\n"), 0644), ShouldBeNil)
		wrote, e = EnsureEULA(dir)
		So(e, ShouldBeNil)
		So(wrote, ShouldBeFalse)
		b, _ = os.ReadFile(filepath.Join(dir, EULAFile))
		So(string(b), ShouldEqual, "eula=false\n")
	})
}
