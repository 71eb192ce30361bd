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

package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/MoonlightPanel/IdlerMeow"
)

func TestMarkup(t *testing.T) {
	Convey("Bracketed keys are highlighted", t, func() {
		So(markup([]string{"[Q] Quit", "[H] Help"}), ShouldEqual,
			"[%AQ%N] Quit [%AH%N] Help")
	})
	Convey("Percent signs are escaped", t, func() {
		So(markup([]string{"100%"}), ShouldEqual, "100%%")
	})
	Convey("Empty words add no space", t, func() {
		So(markup([]string{"[Q] Quit", ""}), ShouldEqual, "[%AQ%N] Quit")
	})
}

func TestClip(t *testing.T) {
	Convey("Short fields are padded", t, func() {
		So(clip([]rune("bob"), false), ShouldEqual, "bob             ")
		So(clip([]rune("bob"), true), ShouldEqual, "bob_            ")
	})
	Convey("Long fields show their tail", t, func() {
		s := clip([]rune("abcdefghijklmnopqrstuvwxyz"), true)
		So(len(s), ShouldEqual, fieldWidth)
		So(s, ShouldEqual, "<mnopqrstuvwxyz_")
	})
}

func TestInstanceLevel(t *testing.T) {
	Convey("Instance states color the status bar", t, func() {
		So(InstanceLevel(idlermeow.Online), ShouldEqual, LevelGood)
		So(InstanceLevel(idlermeow.Starting), ShouldEqual, LevelWarn)
		So(InstanceLevel(idlermeow.Stopping), ShouldEqual, LevelWarn)
		So(InstanceLevel(idlermeow.Offline), ShouldEqual, LevelNormal)
	})
	Convey("Unknown levels fall back to normal", t, func() {
		_, ok := statusBarStyles[Level(42)]
		So(ok, ShouldBeFalse)
		So(statusBarStyles[LevelError], ShouldResemble, StatusBarStyleError)
	})
}
