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

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/MoonlightPanel/IdlerMeow"
)

func exerciseStore(s idlermeow.RecordStore) {
	Convey("A missing record is not found", func() {
		_, e := s.Load(25565)
		So(errors.Is(e, idlermeow.ErrRecordNotFound), ShouldBeTrue)
		e = s.Delete(25565)
		So(errors.Is(e, idlermeow.ErrRecordNotFound), ShouldBeTrue)
	})

	Convey("A saved record loads back", func() {
		rec := &idlermeow.Record{
			Port:           25565,
			StartupCommand: "java -jar server.jar nogui",
			Owner:          "owner@example.com",
			Users:          []string{"a@example.com", "b@example.com"},
			CPU:            "2",
			RAM:            "4G",
			Disk:           "10G",
		}
		So(s.Save(rec), ShouldBeNil)
		got, e := s.Load(25565)
		So(e, ShouldBeNil)
		So(got, ShouldResemble, rec)

		Convey("and can be updated", func() {
			rec.Users = nil
			rec.StartupCommand = ""
			So(s.Save(rec), ShouldBeNil)
			got, e := s.Load(25565)
			So(e, ShouldBeNil)
			So(got.Users, ShouldBeEmpty)
			So(got.StartupCommand, ShouldBeEmpty)
			So(got.Owner, ShouldEqual, "owner@example.com")
		})

		Convey("and listed in port order", func() {
			So(s.Save(&idlermeow.Record{Port: 25564}), ShouldBeNil)
			recs, e := s.List()
			So(e, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].Port, ShouldEqual, 25564)
			So(recs[1].Port, ShouldEqual, 25565)
		})

		Convey("and deleted", func() {
			So(s.Delete(25565), ShouldBeNil)
			_, e := s.Load(25565)
			So(errors.Is(e, idlermeow.ErrRecordNotFound), ShouldBeTrue)
		})
	})
}

func TestDir(t *testing.T) {
	Convey("Given a JSON directory store", t, func() {
		path := filepath.Join(t.TempDir(), "servers")
		d, e := NewDir(path)
		So(e, ShouldBeNil)

		exerciseStore(d)

		Convey("Legacy records take the owner from user", func() {
			So(os.WriteFile(filepath.Join(path, "25570.json"),
				[]byte(`{"cpu": 1, "ram": "1G", "user": "old@example.com", "port": 25570}`), 0644), ShouldBeNil)
			rec, e := d.Load(25570)
			So(e, ShouldBeNil)
			So(rec.Owner, ShouldEqual, "old@example.com")
			So(rec.CPU, ShouldEqual, "1")
			So(rec.Users, ShouldBeEmpty)
		})

		Convey("Unknown keys survive a save", func() {
			name := filepath.Join(path, "25571.json")
			So(os.WriteFile(name, []byte(`{"port": 25571, "motd": "hello", "owner": "x"}`), 0644), ShouldBeNil)
			rec, e := d.Load(25571)
			So(e, ShouldBeNil)
			rec.AddUser("y")
			So(d.Save(rec), ShouldBeNil)

			b, e := os.ReadFile(name)
			So(e, ShouldBeNil)
			So(gjson.GetBytes(b, "motd").String(), ShouldEqual, "hello")
			So(gjson.GetBytes(b, "users.0").String(), ShouldEqual, "y")
			So(string(b), ShouldContainSubstring, "\n  \"")
		})

		Convey("Unreadable files are skipped by List", func() {
			So(os.WriteFile(filepath.Join(path, "1.json"), []byte("{nope"), 0644), ShouldBeNil)
			So(os.WriteFile(filepath.Join(path, "notes.txt"), []byte("x"), 0644), ShouldBeNil)
			So(d.Save(&idlermeow.Record{Port: 2}), ShouldBeNil)
			recs, e := d.List()
			So(e, ShouldBeNil)
			So(len(recs), ShouldEqual, 1)
			So(recs[0].Port, ShouldEqual, 2)

			_, e = d.Load(1)
			So(e, ShouldNotBeNil)
			So(errors.Is(e, idlermeow.ErrRecordNotFound), ShouldBeFalse)
		})
	})
}

func TestSQLite(t *testing.T) {
	Convey("Given a SQLite store", t, func() {
		s, e := OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
		So(e, ShouldBeNil)
		Reset(func() {
			s.Close()
		})

		exerciseStore(s)
	})
}

func TestOpen(t *testing.T) {
	Convey("Open picks the driver", t, func() {
		s, e := Open(DriverJSON, t.TempDir())
		So(e, ShouldBeNil)
		_, ok := s.(*Dir)
		So(ok, ShouldBeTrue)

		_, e = Open("mongo", t.TempDir())
		So(e, ShouldNotBeNil)
	})
}
