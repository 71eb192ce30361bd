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
	"log"
	"sync"

	"github.com/google/uuid"
)

// DefaultSubscriberDepth is the number of events buffered for a
// subscriber before it is considered stalled and pruned.
const DefaultSubscriberDepth = 256

// Subscriber is one consumer of a port's event stream.  Its events
// arrive on the channel returned by Events, which is closed when the
// subscriber is unsubscribed or pruned.
type Subscriber struct {
	id     string
	port   int
	events chan Event
	closed bool
}

func (s *Subscriber) ID() string {
	return s.id
}

func (s *Subscriber) Port() int {
	return s.port
}

func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Broadcaster fans console lines and status transitions out to the
// subscribers of each port.  Ports are independent; events for a given
// port reach each subscriber in the order Publish was called.
type Broadcaster struct {
	subs   map[int]map[*Subscriber]bool
	status map[int]Status
	depth  int
	logger *log.Logger
	mx     sync.Mutex
}

func NewBroadcaster(depth int) *Broadcaster {
	if depth <= 0 {
		depth = DefaultSubscriberDepth
	}
	return &Broadcaster{
		subs:   make(map[int]map[*Subscriber]bool),
		status: make(map[int]Status),
		depth:  depth,
		logger: log.New(io.Discard, "", 0),
	}
}

func (b *Broadcaster) lock() {
	b.mx.Lock()
}

func (b *Broadcaster) unlock() {
	b.mx.Unlock()
}

// SetLogger sets the logger used to report pruned subscribers.
func (b *Broadcaster) SetLogger(l *log.Logger) {
	b.lock()
	b.logger = l
	b.unlock()
}

// NewSubscriber makes a subscriber for the port, not yet registered.
func (b *Broadcaster) NewSubscriber(port int) *Subscriber {
	return &Subscriber{
		id:     uuid.NewString(),
		port:   port,
		events: make(chan Event, b.depth),
	}
}

// Subscribe registers s with its port and delivers the port's current
// status to it before any later event.
func (b *Broadcaster) Subscribe(s *Subscriber) {
	b.lock()
	defer b.unlock()

	if s.closed {
		return
	}
	set := b.subs[s.port]
	if set == nil {
		set = make(map[*Subscriber]bool)
		b.subs[s.port] = set
	}
	set[s] = true
	b.deliver(s, StatusEvent(b.status[s.port]))
}

// Unsubscribe removes s and closes its channel.  It is a no-op if s is
// not registered.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.lock()
	defer b.unlock()

	set := b.subs[s.port]
	if !set[s] {
		return
	}
	b.drop(s)
}

// Publish delivers ev to every subscriber of port.  It never blocks;
// a subscriber whose buffer is full is pruned.
func (b *Broadcaster) Publish(port int, ev Event) {
	b.lock()
	b.publish(port, ev)
	b.unlock()
}

// SetStatus records the status for port and publishes it.
func (b *Broadcaster) SetStatus(port int, s Status) {
	b.lock()
	b.status[port] = s
	b.publish(port, StatusEvent(s))
	b.unlock()
}

// Transition is SetStatus, but only when the current status of port is
// from.  It reports whether the transition happened.
func (b *Broadcaster) Transition(port int, from, to Status) bool {
	b.lock()
	defer b.unlock()

	if b.status[port] != from {
		return false
	}
	b.status[port] = to
	b.publish(port, StatusEvent(to))
	return true
}

// Status returns the last status recorded for port.
func (b *Broadcaster) Status(port int) Status {
	b.lock()
	defer b.unlock()
	return b.status[port]
}

// Subscribers returns the number of subscribers attached to port.
func (b *Broadcaster) Subscribers(port int) int {
	b.lock()
	defer b.unlock()
	return len(b.subs[port])
}

// Close unsubscribes everyone.
func (b *Broadcaster) Close() {
	b.lock()
	defer b.unlock()

	for _, set := range b.subs {
		for s := range set {
			b.drop(s)
		}
	}
}

// Call with lock held.
func (b *Broadcaster) publish(port int, ev Event) {
	for s := range b.subs[port] {
		if !b.deliver(s, ev) {
			b.logger.Printf("[%d] Dropping stalled subscriber %s", port, s.id)
			b.drop(s)
		}
	}
}

// Call with lock held.
func (b *Broadcaster) deliver(s *Subscriber, ev Event) bool {
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// Call with lock held.
func (b *Broadcaster) drop(s *Subscriber) {
	if set := b.subs[s.port]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, s.port)
		}
	}
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
