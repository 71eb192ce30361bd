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

// Command idlermeowd is the game server daemon.  It supervises one
// server process per port and serves the REST and console API.
//
//	idlermeowd [--config idlermeow.yaml] [--listen addr] [--data-dir dir]
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/MoonlightPanel/IdlerMeow"
	"github.com/MoonlightPanel/IdlerMeow/config"
	"github.com/MoonlightPanel/IdlerMeow/rest"
	"github.com/MoonlightPanel/IdlerMeow/store"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func main() {
	flags := pflag.NewFlagSet("idlermeowd", pflag.ContinueOnError)
	cfgFile := flags.StringP("config", "c", "", "configuration file (YAML)")
	listen := flags.StringP("listen", "l", "", "listen address, overrides the config")
	dataDir := flags.StringP("data-dir", "d", "", "instance directory, overrides the config")
	dump := flags.Bool("print-config", false, "print the effective configuration and exit")
	if e := flags.Parse(os.Args[1:]); e != nil {
		if errors.Is(e, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, e := loadConfig(*cfgFile)
	if e != nil {
		log.Fatalf("Failed to load configuration: %v", e)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if e := cfg.Validate(); e != nil {
		log.Fatalf("Bad configuration: %v", e)
	}
	if *dump {
		b, e := cfg.Marshal()
		if e != nil {
			log.Fatalf("%v", e)
		}
		os.Stdout.Write(b)
		return
	}

	ml := idlermeow.NewMultiLogger()
	dlog := idlermeow.NewLog()
	ml.AddWriter(dlog)
	ml.AddLogger(log.New(os.Stderr, cfg.Name+": ", log.LstdFlags))
	logger := ml.Logger()

	recs, e := store.Open(cfg.Records.Driver, cfg.Records.Path)
	if e != nil {
		log.Fatalf("Failed to open %s record store %s: %v",
			cfg.Records.Driver, cfg.Records.Path, e)
	}
	if d, ok := recs.(*store.Dir); ok {
		d.SetLogger(logger)
	}

	res := idlermeow.NewResolver(recs, cfg.DataDir)
	res.SetDefaultCommand(cfg.Supervisor.DefaultCommand)
	res.SetLogger(logger)

	fetcher := idlermeow.NewFetcher(cfg.Asset.URL)
	fetcher.FileName = cfg.Asset.FileName
	fetcher.Client = &http.Client{Timeout: cfg.Asset.Timeout}
	prov := idlermeow.NewProvisioner(res, fetcher)

	bcast := idlermeow.NewBroadcaster(cfg.Supervisor.SubscriberBuffer)
	bcast.SetLogger(logger)
	sup := idlermeow.NewSupervisor(res, bcast)
	sup.SetLogger(logger)
	sup.SetStopTimeout(cfg.Supervisor.StopTimeout)
	sup.SetRestartDelay(cfg.Supervisor.RestartDelay)

	h := rest.NewHandler(sup, prov, dlog)
	h.SetLogger(logger)
	var handler http.Handler = h
	if cfg.Auth.User != "" {
		handler = rest.BasicAuth(cfg.Auth.User, cfg.Auth.PasswordHash, h)
	}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	failed := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s, instances in %s", cfg.Listen, cfg.DataDir)
		if e := srv.ListenAndServe(); !errors.Is(e, http.ErrServerClosed) {
			failed <- e
		}
	}()

	// Wait for a termination signal, and shutdown cleanly if we get it.
	status := 0
	select {
	case sig := <-sigs:
		logger.Printf("Received %v, shutting down", sig)
	case e := <-failed:
		logger.Printf("Server failed: %v", e)
		status = 1
	}

	// Stop taking requests first, so nothing can start an instance while
	// the supervisor is shutting down.  Long polls are cut off.
	hctx, hcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer hcancel()
	if e := srv.Shutdown(hctx); e != nil {
		srv.Close()
	}

	// Allow every instance its full stop timeout, plus a little.
	ctx, cancel := context.WithTimeout(context.Background(),
		cfg.Supervisor.StopTimeout+5*time.Second)
	defer cancel()
	if e := sup.Shutdown(ctx); e != nil {
		logger.Printf("Shutdown: %v", e)
		status = 1
	}
	bcast.Close()
	if c, ok := recs.(io.Closer); ok {
		c.Close()
	}
	os.Exit(status)
}
