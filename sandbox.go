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
	"path/filepath"
	"strings"
)

// Sandbox confines paths to a root directory.  The check is lexical:
// paths are normalized and compared against the root, and the target
// need not exist.  Callers check existence themselves, as appropriate to
// the operation.
type Sandbox struct {
	root string
}

// NewSandbox returns a Sandbox rooted at root, which is made absolute and
// cleaned first.
func NewSandbox(root string) (*Sandbox, error) {
	abs, e := filepath.Abs(root)
	if e != nil {
		return nil, e
	}
	return &Sandbox{root: filepath.Clean(abs)}, nil
}

// Root returns the normalized sandbox root.
func (sb *Sandbox) Root() string {
	return sb.root
}

// Resolve maps a relative request onto an absolute path within the root.
// It fails with ErrPathEscape if the request is absolute, contains a NUL,
// or normalizes to somewhere outside the root.  Both slash styles are
// accepted as separators on hosts that use backslash; elsewhere a
// backslash is an ordinary file name character.
func (sb *Sandbox) Resolve(requested string) (string, error) {
	if strings.IndexByte(requested, 0) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, requested)
	}
	rel := filepath.FromSlash(requested)
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" ||
		strings.HasPrefix(rel, string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathEscape, requested)
	}
	full := filepath.Join(sb.root, rel)
	if !sb.contains(full) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, requested)
	}
	return full, nil
}

func (sb *Sandbox) contains(full string) bool {
	if full == sb.root {
		return true
	}
	prefix := sb.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(full, prefix)
}

// Rel returns the forward-slash form of an absolute path relative to the
// root, as shown to users.  The root itself is ".".
func (sb *Sandbox) Rel(full string) string {
	rel, e := filepath.Rel(sb.root, full)
	if e != nil {
		return "."
	}
	return filepath.ToSlash(rel)
}

// Resolve is a convenience wrapper that builds a Sandbox for root and
// resolves requested against it.
func Resolve(root, requested string) (string, error) {
	sb, e := NewSandbox(root)
	if e != nil {
		return "", e
	}
	return sb.Resolve(requested)
}
