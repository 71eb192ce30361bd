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
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock whose time only moves when Advance is called.
// It is safe for concurrent use.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline
// order, without the clock's lock held.  A callback may therefore
// schedule further timers, but must not call Advance.
type FakeClock struct {
	mx      sync.Mutex
	now     time.Time
	waiters []*waiter
	cv      *sync.Cond
}

type waiter struct {
	deadline time.Time
	callback func()
	channel  chan time.Time
	stopped  bool
	fired    bool
}

// Fake returns a FakeClock set to the given time.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{now: initial}
	c.cv = sync.NewCond(&c.mx)
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mx.Lock()
	defer c.mx.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, &waiter{
		deadline: c.now.Add(d),
		channel:  ch,
	})
	c.cv.Broadcast()
	return ch
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mx.Lock()
	w := &waiter{
		deadline: c.now.Add(d),
		callback: f,
	}
	if d <= 0 {
		w.fired = true
		c.mx.Unlock()
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}
	c.waiters = append(c.waiters, w)
	c.cv.Broadcast()
	c.mx.Unlock()

	return &Timer{stopFunc: func() bool {
		c.mx.Lock()
		defer c.mx.Unlock()
		if w.stopped || w.fired {
			return false
		}
		w.stopped = true
		return true
	}}
}

// Advance moves the clock forward by d, firing every timer whose deadline
// has been reached.
func (c *FakeClock) Advance(d time.Duration) {
	c.mx.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mx.Unlock()

	for {
		due := c.expired(now)
		if len(due) == 0 {
			return
		}
		for _, w := range due {
			if w.callback != nil {
				w.callback()
			} else {
				select {
				case w.channel <- now:
				default:
				}
			}
		}
	}
}

// expired removes and returns the waiters due at or before now, sorted
// by deadline.
func (c *FakeClock) expired(now time.Time) []*waiter {
	c.mx.Lock()
	defer c.mx.Unlock()

	var due []*waiter
	keep := c.waiters[:0]
	for _, w := range c.waiters {
		switch {
		case w.stopped:
		case !w.deadline.After(now):
			w.fired = true
			due = append(due, w)
		default:
			keep = append(keep, w)
		}
	}
	for i := len(keep); i < len(c.waiters); i++ {
		c.waiters[i] = nil
	}
	c.waiters = keep
	sort.Slice(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	return due
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *FakeClock) Pending() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	n := 0
	for _, w := range c.waiters {
		if !w.stopped && !w.fired {
			n++
		}
	}
	return n
}

// WaitForTimers blocks until at least n timers are pending.  Tests use it
// to synchronize with goroutines that arm timers asynchronously.
func (c *FakeClock) WaitForTimers(n int) {
	c.mx.Lock()
	defer c.mx.Unlock()
	for {
		pending := 0
		for _, w := range c.waiters {
			if !w.stopped && !w.fired {
				pending++
			}
		}
		if pending >= n {
			return
		}
		c.cv.Wait()
	}
}
