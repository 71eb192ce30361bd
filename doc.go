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

// Package idlermeow provides the control plane for a fleet of game server
// processes, one per network port, each living in its own working
// directory.
//
// The Supervisor owns the operating system processes.  It can start, stop,
// restart, and send console commands to them, and it publishes every line
// of their output, together with every status transition, to a
// Broadcaster.  Any number of subscribers may attach to a port's stream;
// a subscriber that joins late is first told the port's current status.
//
// Files gives sandboxed access to an instance's directory.  Every path
// handed to it is resolved with a Sandbox, which proves the result stays
// within the instance root before anything touches the disk.
//
// Instance records (startup command, owner, users) come from a
// RecordStore, which lives outside this package; see the store
// subpackage for implementations.  The rest subpackage exposes all of
// this over HTTP and WebSocket.
//
package idlermeow
