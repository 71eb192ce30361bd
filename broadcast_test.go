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
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func drain(s *Subscriber) []Event {
	var evs []Event
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return evs
			}
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func TestBroadcaster(t *testing.T) {
	Convey("Given a broadcaster", t, func() {
		b := NewBroadcaster(8)

		Convey("A new subscriber is told the current status first", func() {
			b.SetStatus(25565, Online)
			s := b.NewSubscriber(25565)
			So(s.ID(), ShouldNotBeEmpty)
			So(s.Port(), ShouldEqual, 25565)
			b.Subscribe(s)
			b.Publish(25565, ConsoleEvent("hello", false))

			evs := drain(s)
			So(len(evs), ShouldEqual, 2)
			So(evs[0].Type, ShouldEqual, EventStatus)
			So(*evs[0].Status, ShouldEqual, Online)
			So(evs[1].Message, ShouldEqual, "hello")
		})

		Convey("An unknown port reports Offline", func() {
			s := b.NewSubscriber(1)
			b.Subscribe(s)
			evs := drain(s)
			So(len(evs), ShouldEqual, 1)
			So(*evs[0].Status, ShouldEqual, Offline)
		})

		Convey("Ports are isolated", func() {
			a := b.NewSubscriber(1)
			c := b.NewSubscriber(2)
			b.Subscribe(a)
			b.Subscribe(c)
			drain(a)
			drain(c)
			b.Publish(1, ConsoleEvent("one", false))
			So(len(drain(a)), ShouldEqual, 1)
			So(len(drain(c)), ShouldEqual, 0)
		})

		Convey("Publishing with no subscribers is harmless", func() {
			b.Publish(7, ConsoleEvent("nobody", true))
			So(b.Subscribers(7), ShouldEqual, 0)
		})

		Convey("Every subscriber sees the same order", func() {
			subs := []*Subscriber{b.NewSubscriber(3), b.NewSubscriber(3)}
			for _, s := range subs {
				b.Subscribe(s)
				drain(s)
			}
			for i := 0; i < 5; i++ {
				b.Publish(3, ConsoleEvent(fmt.Sprint(i), false))
			}
			for _, s := range subs {
				evs := drain(s)
				So(len(evs), ShouldEqual, 5)
				for i, ev := range evs {
					So(ev.Message, ShouldEqual, fmt.Sprint(i))
				}
			}
		})

		Convey("Unsubscribe closes the channel and is idempotent", func() {
			s := b.NewSubscriber(4)
			b.Subscribe(s)
			So(b.Subscribers(4), ShouldEqual, 1)
			b.Unsubscribe(s)
			b.Unsubscribe(s)
			So(b.Subscribers(4), ShouldEqual, 0)
			drain(s)
			_, ok := <-s.Events()
			So(ok, ShouldBeFalse)

			b.Publish(4, ConsoleEvent("late", false))
		})

		Convey("A stalled subscriber is pruned without blocking others", func() {
			slow := b.NewSubscriber(5)
			fast := b.NewSubscriber(5)
			b.Subscribe(slow)
			b.Subscribe(fast)
			for i := 0; i < 20; i++ {
				b.Publish(5, ConsoleEvent(fmt.Sprint(i), false))
				drain(fast)
			}
			So(b.Subscribers(5), ShouldEqual, 1)

			evs := drain(slow)
			So(len(evs), ShouldEqual, 8)
			_, ok := <-slow.Events()
			So(ok, ShouldBeFalse)
		})

		Convey("Transition only applies from the expected status", func() {
			s := b.NewSubscriber(6)
			b.Subscribe(s)
			drain(s)
			So(b.Transition(6, Online, Stopping), ShouldBeFalse)
			b.SetStatus(6, Online)
			So(b.Transition(6, Online, Stopping), ShouldBeTrue)
			So(b.Status(6), ShouldEqual, Stopping)

			evs := drain(s)
			So(len(evs), ShouldEqual, 2)
			So(*evs[1].Status, ShouldEqual, Stopping)
		})

		Convey("Close releases every subscriber", func() {
			a := b.NewSubscriber(8)
			c := b.NewSubscriber(9)
			b.Subscribe(a)
			b.Subscribe(c)
			b.Close()
			drain(a)
			drain(c)
			_, ok := <-a.Events()
			So(ok, ShouldBeFalse)
			_, ok = <-c.Events()
			So(ok, ShouldBeFalse)
			So(b.Subscribers(8), ShouldEqual, 0)
		})

		Convey("Concurrent publishers and subscribers do not race", func() {
			wg := sync.WaitGroup{}
			for i := 0; i < 4; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						b.Publish(10, ConsoleEvent("x", false))
					}
				}()
				go func() {
					defer wg.Done()
					s := b.NewSubscriber(10)
					b.Subscribe(s)
					drain(s)
					b.Unsubscribe(s)
				}()
			}
			wg.Wait()
			So(b.Subscribers(10), ShouldEqual, 0)
		})
	})
}

func TestEventJSON(t *testing.T) {
	Convey("Events have the console wire form", t, func() {
		So(StatusEvent(Online).String(), ShouldEqual, "status: Online")
		So(ConsoleEvent("boom", true).String(), ShouldEqual, "stderr> boom")

		var s Status
		So(s.UnmarshalText([]byte("Stopping")), ShouldBeNil)
		So(s, ShouldEqual, Stopping)
		So(s.UnmarshalText([]byte("Bogus")), ShouldNotBeNil)
	})
}
