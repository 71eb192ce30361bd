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

// Package config loads the daemon configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Name       string     `yaml:"name"`
	Listen     string     `yaml:"listen"`
	DataDir    string     `yaml:"dataDir"`
	Records    Records    `yaml:"records"`
	Supervisor Supervisor `yaml:"supervisor"`
	Asset      Asset      `yaml:"asset"`
	Auth       Auth       `yaml:"auth"`
}

// Records selects the record store.  Driver is "json" (a directory of
// files) or "sqlite" (a database file).
type Records struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type Supervisor struct {
	StopTimeout      time.Duration `yaml:"stopTimeout"`
	RestartDelay     time.Duration `yaml:"restartDelay"`
	DefaultCommand   string        `yaml:"defaultCommand"`
	SubscriberBuffer int           `yaml:"subscriberBuffer"`
}

// Asset is the server binary downloaded into new instances.
type Asset struct {
	URL      string        `yaml:"url"`
	FileName string        `yaml:"fileName"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Auth enables HTTP basic authentication when User is set.
// PasswordHash is a bcrypt hash, as printed by "idlerctl hash-password".
type Auth struct {
	User         string `yaml:"user"`
	PasswordHash string `yaml:"passwordHash"`
}

func Default() *Config {
	return &Config{
		Name:    "idlermeow",
		Listen:  "localhost:8321",
		DataDir: "server_files",
		Records: Records{
			Driver: "json",
			Path:   "servers",
		},
		Supervisor: Supervisor{
			StopTimeout:      10 * time.Second,
			RestartDelay:     5 * time.Second,
			DefaultCommand:   "java -Xms1G -Xmx1G -jar server.jar nogui",
			SubscriberBuffer: 256,
		},
		Asset: Asset{
			URL:      "https://api.papermc.io/v2/projects/paper/versions/1.20.1/builds/101/downloads/paper-1.20.1-101.jar",
			FileName: "server.jar",
			Timeout:  5 * time.Minute,
		},
	}
}

// Load reads path over the defaults.  Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem it finds, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("dataDir is empty"))
	}
	switch c.Records.Driver {
	case "json", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("records.driver %q is not json or sqlite", c.Records.Driver))
	}
	if c.Records.Path == "" {
		errs = append(errs, errors.New("records.path is empty"))
	}
	if c.Supervisor.StopTimeout <= 0 {
		errs = append(errs, errors.New("supervisor.stopTimeout must be positive"))
	}
	if c.Supervisor.RestartDelay < 0 {
		errs = append(errs, errors.New("supervisor.restartDelay must not be negative"))
	}
	if strings.TrimSpace(c.Supervisor.DefaultCommand) == "" {
		errs = append(errs, errors.New("supervisor.defaultCommand is empty"))
	}
	if c.Supervisor.SubscriberBuffer <= 0 {
		errs = append(errs, errors.New("supervisor.subscriberBuffer must be positive"))
	}
	if u, err := url.Parse(c.Asset.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("asset.url %q is not an http(s) URL", c.Asset.URL))
	}
	if c.Asset.FileName == "" || strings.ContainsAny(c.Asset.FileName, `/\`) {
		errs = append(errs, fmt.Errorf("asset.fileName %q must be a plain file name", c.Asset.FileName))
	}
	if (c.Auth.User == "") != (c.Auth.PasswordHash == "") {
		errs = append(errs, errors.New("auth.user and auth.passwordHash must be set together"))
	}
	return errors.Join(errs...)
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
