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

// Package util is used for internal implementation bits in the CLI/UI.
package util

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MoonlightPanel/IdlerMeow"
	"github.com/MoonlightPanel/IdlerMeow/rest"
)

// Status describes the state of an instance in lower case, as the
// listings show it.
func Status(s *rest.InstanceInfo) string {
	return strings.ToLower(s.Status.String())
}

// FormatDuration renders d as h:mm:ss.
func FormatDuration(d time.Duration) string {

	sec := int((d % time.Minute) / time.Second)
	min := int((d % time.Hour) / time.Minute)
	hour := int(d / time.Hour)

	return fmt.Sprintf("%d:%02d:%02d", hour, min, sec)
}

// ParsePort checks that s names a TCP port.
func ParsePort(s string) (int, error) {
	p, e := strconv.Atoi(s)
	if e != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("bad port %q", s)
	}
	return p, nil
}

// Line formats an instance as one row of a listing.
func Line(s *rest.InstanceInfo) string {
	owner := s.Owner
	if owner == "" {
		owner = "-"
	}
	return fmt.Sprintf("%-6d %-9s %-24s %s", s.Port, Status(s), owner, s.StartupCommand)
}

// rank orders instances that need attention first.
func rank(st idlermeow.Status) int {
	switch st {
	case idlermeow.Starting, idlermeow.Stopping:
		return 0
	case idlermeow.Online:
		return 1
	}
	return 2
}

type sorted []*rest.InstanceInfo

func (s sorted) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s sorted) Len() int {
	return len(s)
}

func (s sorted) Less(i, j int) bool {
	a := s[i]
	b := s[j]

	if ra, rb := rank(a.Status), rank(b.Status); ra != rb {
		return ra < rb
	}
	return a.Port < b.Port
}

// SortInstances puts instances in transition first, then running ones,
// then the rest, each group by port.
func SortInstances(items []*rest.InstanceInfo) {
	sort.Sort(sorted(items))
}
