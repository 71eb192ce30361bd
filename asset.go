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
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

const (
	DefaultAssetURL      = "https://api.papermc.io/v2/projects/paper/versions/1.20.1/builds/101/downloads/paper-1.20.1-101.jar"
	DefaultAssetFileName = "server.jar"
)

// Fetcher downloads the server binary into instance directories.
type Fetcher struct {
	URL      string
	FileName string
	Client   *http.Client

	mx sync.Mutex
}

func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = DefaultAssetURL
	}
	return &Fetcher{URL: url, FileName: DefaultAssetFileName}
}

// EnsureBinaryPresent downloads the binary into dir unless a file of
// that name is already there.  A partial download never takes the
// final name.  Transport failures and non-2xx responses wrap ErrNetwork.
func (f *Fetcher) EnsureBinaryPresent(ctx context.Context, dir string) error {
	f.mx.Lock()
	defer f.mx.Unlock()

	name := f.FileName
	if name == "" {
		name = DefaultAssetFileName
	}
	dest := filepath.Join(dir, name)
	if _, e := os.Stat(dest); e == nil {
		return nil
	} else if !errors.Is(e, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrIOFailure, e)
	}

	req, e := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if e != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, e)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, e := client.Do(req)
	if e != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, e)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %s", ErrNetwork, f.URL, res.Status)
	}

	tmp, e := os.CreateTemp(dir, "."+name+".*")
	if e != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, e)
	}
	_, e = io.Copy(tmp, res.Body)
	if ce := tmp.Close(); e == nil && ce != nil {
		e = fmt.Errorf("%w: %v", ErrIOFailure, ce)
	} else if e != nil {
		e = fmt.Errorf("%w: %v", ErrNetwork, e)
	}
	if e == nil {
		if re := os.Rename(tmp.Name(), dest); re != nil {
			e = fmt.Errorf("%w: %v", ErrIOFailure, re)
		}
	}
	if e != nil {
		os.Remove(tmp.Name())
	}
	return e
}
