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
	"bytes"
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLog(t *testing.T) {
	Convey("Given a daemon log", t, func() {
		l := NewLog()
		start := l.ID()

		Convey("Lines are recorded with increasing IDs", func() {
			fmt.Fprintf(l, "one\ntwo\n")
			recs, id := l.Records(0, 0)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].Text, ShouldEqual, "one")
			So(recs[1].ID, ShouldEqual, recs[0].ID+1)
			So(id, ShouldEqual, recs[1].ID)

			Convey("and an unchanged ID returns nothing", func() {
				recs, id2 := l.Records(id, 0)
				So(recs, ShouldBeNil)
				So(id2, ShouldEqual, id)
			})
		})

		Convey("Port tagged lines can be filtered", func() {
			ml := NewMultiLogger()
			ml.AddWriter(l)
			ml.Logger().Print("daemon starting")
			ml.PortLogger(25565).Print("stdout> Done")
			ml.PortLogger(25566).Print("stdout> Other")

			recs, _ := l.Records(0, 25565)
			So(len(recs), ShouldEqual, 1)
			So(recs[0].Port, ShouldEqual, 25565)
			So(recs[0].Text, ShouldEqual, "[25565] stdout> Done")
			recs, _ = l.Records(0, 0)
			So(len(recs), ShouldEqual, 3)
		})

		Convey("Only the newest records are kept", func() {
			for i := 0; i < MaxLogRecords+10; i++ {
				fmt.Fprintf(l, "line %d\n", i)
			}
			recs, _ := l.Records(0, 0)
			So(len(recs), ShouldEqual, MaxLogRecords)
			So(recs[0].Text, ShouldEqual, "line 10")
		})

		Convey("Clear empties the log and changes the ID", func() {
			fmt.Fprintln(l, "x")
			id := l.ID()
			l.Clear()
			So(l.ID(), ShouldNotEqual, id)
			recs, _ := l.Records(0, 0)
			So(recs, ShouldBeEmpty)
		})

		Convey("Watch wakes on a write", func() {
			go func() {
				time.Sleep(20 * time.Millisecond)
				fmt.Fprintln(l, "wake")
			}()
			id := l.Watch(context.Background(), start)
			So(id, ShouldNotEqual, start)
		})

		Convey("Watch gives up with its context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			So(l.Watch(ctx, start), ShouldEqual, start)
		})
	})
}

func TestMultiLogger(t *testing.T) {
	Convey("A MultiLogger fans out to every writer once", t, func() {
		ml := NewMultiLogger()
		a := &bytes.Buffer{}
		b := &bytes.Buffer{}
		ml.AddWriter(a)
		ml.AddWriter(a)
		ml.AddLogger(log.New(b, "pfx: ", 0))
		ml.Logger().Print("hello")
		So(a.String(), ShouldEqual, "hello\n")
		So(b.String(), ShouldEqual, "pfx: hello\n")

		ml.DelWriter(a)
		ml.Logger().Print("again")
		So(a.String(), ShouldEqual, "hello\n")
	})
}
