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

// DefaultCommand is used when a record has no startup command.
const DefaultCommand = "java -Xms1G -Xmx1G -jar server.jar nogui"

// Record is the persisted description of one instance.  The resource
// fields are informational; nothing here enforces them.
type Record struct {
	Port           int      `json:"port"`
	StartupCommand string   `json:"startupCommand"`
	Owner          string   `json:"owner"`
	Users          []string `json:"users"`
	CPU            string   `json:"cpu,omitempty"`
	RAM            string   `json:"ram,omitempty"`
	Disk           string   `json:"disk,omitempty"`
}

// HasUser reports whether email is the owner or one of the users.
func (r *Record) HasUser(email string) bool {
	if r.Owner == email {
		return true
	}
	for _, u := range r.Users {
		if u == email {
			return true
		}
	}
	return false
}

// AddUser adds email to the user list.  It returns false if it was
// already present.
func (r *Record) AddUser(email string) bool {
	for _, u := range r.Users {
		if u == email {
			return false
		}
	}
	r.Users = append(r.Users, email)
	return true
}

// RemoveUser removes email from the user list.  It returns false if it
// was not present.
func (r *Record) RemoveUser(email string) bool {
	for i, u := range r.Users {
		if u == email {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return true
		}
	}
	return false
}

// RecordStore persists instance records.  Load returns an error wrapping
// ErrRecordNotFound when the port has no record.  Implementations must
// be safe for concurrent use.
type RecordStore interface {
	Load(port int) (*Record, error)
	Save(r *Record) error
	List() ([]*Record, error)
	Delete(port int) error
}
