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
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	. "github.com/smartystreets/goconvey/convey"
)

func zipContents(name string) map[string]string {
	zr, e := zip.OpenReader(name)
	So(e, ShouldBeNil)
	defer zr.Close()
	out := map[string]string{}
	for _, zf := range zr.File {
		rc, e := zf.Open()
		So(e, ShouldBeNil)
		b, _ := io.ReadAll(rc)
		rc.Close()
		out[zf.Name] = string(b)
	}
	return out
}

func TestArchive(t *testing.T) {
	Convey("Given an instance directory", t, func() {
		root := t.TempDir()
		f, e := NewFiles(root)
		So(e, ShouldBeNil)
		mkfile(root, "server.properties", "server-port=25565\n")
		mkfile(root, "world/level.dat", "LEVEL")
		mkfile(root, "world/region/r.0.0.mca", "REGION")

		Convey("Selected entries are archived recursively", func() {
			res, e := f.Archive([]string{"world", "server.properties"}, "backup.zip")
			So(e, ShouldBeNil)
			So(res.Path, ShouldEqual, "backup.zip")
			So(res.Skipped, ShouldBeEmpty)

			got := zipContents(filepath.Join(root, "backup.zip"))
			So(got["server.properties"], ShouldEqual, "server-port=25565\n")
			So(got["world/level.dat"], ShouldEqual, "LEVEL")
			So(got["world/region/r.0.0.mca"], ShouldEqual, "REGION")
			_, ok := got["world/"]
			So(ok, ShouldBeTrue)
		})

		Convey("Escapes and missing entries are skipped and reported", func() {
			res, e := f.Archive([]string{"server.properties", "../../etc/passwd", "ghost.txt"}, "out.zip")
			So(e, ShouldBeNil)
			sort.Strings(res.Skipped)
			So(res.Skipped, ShouldResemble, []string{"../../etc/passwd", "ghost.txt"})
			So(res.Added, ShouldResemble, []string{"server.properties"})

			got := zipContents(filepath.Join(root, "out.zip"))
			So(len(got), ShouldEqual, 1)
		})

		Convey("Archiving the root never includes the archive", func() {
			res, e := f.Archive([]string{"."}, "world/snapshot")
			So(e, ShouldBeNil)
			So(res.Path, ShouldEqual, "world/snapshot.zip")

			got := zipContents(filepath.Join(root, "world", "snapshot.zip"))
			for name := range got {
				So(name, ShouldNotContainSubstring, "snapshot")
				So(name, ShouldNotContainSubstring, ".archive-")
			}
			So(got["world/level.dat"], ShouldEqual, "LEVEL")

			Convey("and archiving again replaces it", func() {
				_, e := f.Archive([]string{"server.properties"}, "world/snapshot.zip")
				So(e, ShouldBeNil)
				So(len(zipContents(filepath.Join(root, "world", "snapshot.zip"))), ShouldEqual, 1)
			})
		})

		Convey("Entries named twice are stored once", func() {
			res, e := f.Archive([]string{"world", "world/level.dat"}, "dup.zip")
			So(e, ShouldBeNil)
			n := 0
			for _, a := range res.Added {
				if a == "world/level.dat" {
					n++
				}
			}
			So(n, ShouldEqual, 1)
		})

		Convey("No temporary files are left behind", func() {
			_, e := f.Archive([]string{"world"}, "a.zip")
			So(e, ShouldBeNil)
			ents, _ := os.ReadDir(root)
			for _, ent := range ents {
				So(ent.Name(), ShouldNotStartWith, ".archive-")
			}
		})

		Convey("A bad archive name is rejected", func() {
			_, e := f.Archive([]string{"world"}, "")
			So(e, ShouldNotBeNil)
			_, e = f.Archive([]string{"world"}, ".")
			So(e, ShouldNotBeNil)
			mkfile(root, "backups.d/keep", "")
			_, e = f.Archive([]string{"world"}, "backups.d")
			So(e, ShouldNotBeNil)
		})
	})
}
