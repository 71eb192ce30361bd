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

package clock

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFakeClock(t *testing.T) {
	Convey("Given a fake clock", t, func() {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c := Fake(start)
		So(c.Now().Equal(start), ShouldBeTrue)

		Convey("AfterFunc fires only once the deadline passes", func() {
			fired := 0
			c.AfterFunc(10*time.Second, func() { fired++ })
			So(c.Pending(), ShouldEqual, 1)

			c.Advance(9 * time.Second)
			So(fired, ShouldEqual, 0)

			c.Advance(time.Second)
			So(fired, ShouldEqual, 1)
			So(c.Pending(), ShouldEqual, 0)

			c.Advance(time.Minute)
			So(fired, ShouldEqual, 1)
		})

		Convey("A stopped timer never fires", func() {
			fired := false
			tm := c.AfterFunc(time.Second, func() { fired = true })
			So(tm.Stop(), ShouldBeTrue)
			So(tm.Stop(), ShouldBeFalse)
			c.Advance(time.Hour)
			So(fired, ShouldBeFalse)
		})

		Convey("Timers fire in deadline order", func() {
			var order []int
			c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
			c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
			c.AfterFunc(2*time.Second, func() { order = append(order, 2) })
			c.Advance(5 * time.Second)
			So(order, ShouldResemble, []int{1, 2, 3})
		})

		Convey("After delivers on its channel", func() {
			ch := c.After(time.Second)
			early := false
			select {
			case <-ch:
				early = true
			default:
			}
			So(early, ShouldBeFalse)
			c.Advance(time.Second)
			got := <-ch
			So(got.Equal(start.Add(time.Second)), ShouldBeTrue)
		})

		Convey("WaitForTimers returns once a timer is armed elsewhere", func() {
			go c.AfterFunc(time.Second, func() {})
			c.WaitForTimers(1)
			So(c.Pending(), ShouldEqual, 1)
		})
	})
}
