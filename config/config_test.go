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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "idlermeow.yaml")
	So(os.WriteFile(path, []byte(text), 0644), ShouldBeNil)
	return path
}

func TestConfig(t *testing.T) {
	Convey("The defaults are valid", t, func() {
		So(Default().Validate(), ShouldBeNil)
	})

	Convey("A partial file overrides only what it names", t, func() {
		path := writeConfig(t, `
listen: ":9000"
records:
  driver: sqlite
  path: records.db
supervisor:
  stopTimeout: 30s
  restartDelay: 1500ms
`)
		cfg, err := Load(path)
		So(err, ShouldBeNil)
		So(cfg.Listen, ShouldEqual, ":9000")
		So(cfg.Records.Driver, ShouldEqual, "sqlite")
		So(cfg.Supervisor.StopTimeout, ShouldEqual, 30*time.Second)
		So(cfg.Supervisor.RestartDelay, ShouldEqual, 1500*time.Millisecond)
		So(cfg.DataDir, ShouldEqual, "server_files")
		So(cfg.Supervisor.SubscriberBuffer, ShouldEqual, 256)
	})

	Convey("Bad values are all reported", t, func() {
		path := writeConfig(t, `
records:
  driver: mongo
supervisor:
  stopTimeout: 0s
asset:
  fileName: ../server.jar
auth:
  user: admin
`)
		_, err := Load(path)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "records.driver")
		So(err.Error(), ShouldContainSubstring, "stopTimeout")
		So(err.Error(), ShouldContainSubstring, "asset.fileName")
		So(err.Error(), ShouldContainSubstring, "auth.user")
	})

	Convey("Broken YAML and missing files are errors", t, func() {
		_, err := Load(writeConfig(t, "listen: [oops"))
		So(err, ShouldNotBeNil)
		_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldNotBeNil)
	})

	Convey("A config survives a round trip", t, func() {
		b, err := Default().Marshal()
		So(err, ShouldBeNil)
		cfg, err := Load(writeConfig(t, string(b)))
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, Default())
	})
}
