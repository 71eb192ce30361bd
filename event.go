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
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of an instance.
//
//	Offline --> Starting --> Online --> Stopping --> Offline
//
// Online is entered as soon as the process has been spawned; no attempt
// is made to detect when the game server is actually ready.
type Status int

const (
	Offline Status = iota
	Starting
	Online
	Stopping
)

func (s Status) String() string {
	switch s {
	case Offline:
		return "Offline"
	case Starting:
		return "Starting"
	case Online:
		return "Online"
	case Stopping:
		return "Stopping"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "Offline":
		return Offline, nil
	case "Starting":
		return Starting, nil
	case "Online":
		return Online, nil
	case "Stopping":
		return Stopping, nil
	}
	return Offline, fmt.Errorf("unknown status %q", name)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, e := ParseStatus(string(b))
	if e != nil {
		return e
	}
	*s = v
	return nil
}

// EventType tags an Event as console text or a status change.
type EventType string

const (
	EventConsole EventType = "console"
	EventStatus  EventType = "status"
)

// Event is one item of a port's console stream.  It is transient: events
// are never stored, and a port with no subscribers simply drops them.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	IsError bool      `json:"isError,omitempty"`
	Status  *Status   `json:"status,omitempty"`
}

// ConsoleEvent returns an event carrying a line of console text.
func ConsoleEvent(text string, isError bool) Event {
	return Event{Type: EventConsole, Message: text, IsError: isError}
}

// StatusEvent returns an event announcing a new status.
func StatusEvent(s Status) Event {
	return Event{Type: EventStatus, Status: &s}
}

func (ev Event) String() string {
	switch ev.Type {
	case EventStatus:
		if ev.Status != nil {
			return "status: " + ev.Status.String()
		}
	case EventConsole:
		if ev.IsError {
			return "stderr> " + ev.Message
		}
		return "stdout> " + ev.Message
	}
	b, _ := json.Marshal(ev)
	return string(b)
}
