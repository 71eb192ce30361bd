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

package util

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/MoonlightPanel/IdlerMeow"
	"github.com/MoonlightPanel/IdlerMeow/rest"
)

func TestUtil(t *testing.T) {
	Convey("Durations print as h:mm:ss", t, func() {
		So(FormatDuration(0), ShouldEqual, "0:00:00")
		So(FormatDuration(90*time.Second), ShouldEqual, "0:01:30")
		So(FormatDuration(26*time.Hour+5*time.Second), ShouldEqual, "26:00:05")
	})

	Convey("Ports are checked", t, func() {
		p, e := ParsePort("25565")
		So(e, ShouldBeNil)
		So(p, ShouldEqual, 25565)
		for _, bad := range []string{"", "0", "65536", "-1", "mc"} {
			_, e = ParsePort(bad)
			So(e, ShouldNotBeNil)
		}
	})

	Convey("Instances sort busy, online, then offline", t, func() {
		items := []*rest.InstanceInfo{
			{Port: 3, Status: idlermeow.Offline},
			{Port: 2, Status: idlermeow.Online},
			{Port: 5, Status: idlermeow.Stopping},
			{Port: 1, Status: idlermeow.Offline},
			{Port: 4, Status: idlermeow.Online},
		}
		SortInstances(items)
		var ports []int
		for _, it := range items {
			ports = append(ports, it.Port)
		}
		So(ports, ShouldResemble, []int{5, 2, 4, 1, 3})
	})

	Convey("Listing lines show the owner or a dash", t, func() {
		s := &rest.InstanceInfo{Port: 25565, Status: idlermeow.Online, StartupCommand: "java -jar server.jar"}
		So(Line(s), ShouldStartWith, "25565  online    -")
		So(Line(s), ShouldEndWith, "java -jar server.jar")
		s.Owner = "steve@example.com"
		So(Line(s), ShouldContainSubstring, "steve@example.com")
	})
}
