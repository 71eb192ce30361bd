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
	"errors"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSandboxResolve(t *testing.T) {
	Convey("Given a sandbox rooted in a temporary directory", t, func() {
		root := t.TempDir()
		sb, e := NewSandbox(root)
		So(e, ShouldBeNil)
		clean := filepath.Clean(root)
		So(sb.Root(), ShouldEqual, clean)

		Convey("Paths that stay inside resolve under the root", func() {
			cases := map[string]string{
				"":                  clean,
				".":                 clean,
				"./":                clean,
				"config.yml":        filepath.Join(clean, "config.yml"),
				"world/region/":     filepath.Join(clean, "world", "region"),
				"a/b/../c":          filepath.Join(clean, "a", "c"),
				"plugins/./x.jar":   filepath.Join(clean, "plugins", "x.jar"),
				"logs/..":           clean,
				"a/../../" + "b/..": "",
			}
			for in, want := range cases {
				got, e := sb.Resolve(in)
				if want == "" {
					So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
					continue
				}
				So(e, ShouldBeNil)
				So(got, ShouldEqual, want)
				So(strings.HasPrefix(got, clean), ShouldBeTrue)
				So(filepath.IsAbs(got), ShouldBeTrue)
			}
		})

		Convey("Parent escapes are rejected", func() {
			for _, in := range []string{
				"..",
				"../",
				"../escape",
				"a/../../escape",
				"world/../../..",
			} {
				_, e := sb.Resolve(in)
				So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
			}
		})

		Convey("Absolute overrides are rejected", func() {
			_, e := sb.Resolve("/etc/passwd")
			So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
			_, e = sb.Resolve(clean + "/config.yml")
			So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
		})

		Convey("A sibling sharing the root as a name prefix is outside", func() {
			base := filepath.Base(clean)
			_, e := sb.Resolve("../" + base + "0/file")
			So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
		})

		Convey("NUL bytes are rejected", func() {
			_, e := sb.Resolve("a\x00b")
			So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
		})

		Convey("Rel gives forward-slash paths", func() {
			So(sb.Rel(filepath.Join(clean, "a", "b.txt")), ShouldEqual, "a/b.txt")
			So(sb.Rel(clean), ShouldEqual, ".")
		})
	})

	Convey("The package level Resolve agrees", t, func() {
		root := t.TempDir()
		p, e := Resolve(root, "x/y")
		So(e, ShouldBeNil)
		So(p, ShouldEqual, filepath.Join(root, "x", "y"))
		_, e = Resolve(root, "../x")
		So(errors.Is(e, ErrPathEscape), ShouldBeTrue)
	})
}
