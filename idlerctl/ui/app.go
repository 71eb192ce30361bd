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

// Package ui is the full screen terminal interface of idlerctl.  It
// lists the instances of one daemon, follows the daemon log, and
// attaches to instance consoles.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"

	"github.com/MoonlightPanel/IdlerMeow"
	"github.com/MoonlightPanel/IdlerMeow/idlerctl/util"
	"github.com/MoonlightPanel/IdlerMeow/rest"
)

type App struct {
	app       *views.Application
	view      views.View
	panel     views.Widget
	help      *HelpPanel
	log       *LogPanel
	main      *MainPanel
	console   *ConsolePanel
	auth      *AuthPanel
	client    *rest.Client
	url       string
	logger    *log.Logger
	err       error
	items     []*rest.InstanceInfo
	notice    string
	logPort   int
	logInfo   *rest.LogInfo
	logErr    error
	logCancel context.CancelFunc
	cons      *rest.Console
	dialing   bool

	views.WidgetWatchers
}

func (a *App) show(w views.Widget) {
	if w != a.panel {
		a.panel.SetView(nil)
		a.panel = w
	}
	a.panel.SetView(a.view)
	a.panel.Resize()
	a.app.Refresh()
}

func (a *App) ShowHelp() {
	a.show(a.help)
}

func (a *App) ShowMain() {
	a.detach()
	a.show(a.main)
}

func (a *App) ShowAuth() {
	a.auth.ResetFields()
	a.show(a.auth)
}

// ShowLog follows the daemon log, limited to port unless it is zero.
func (a *App) ShowLog(port int) {
	if a.logCancel != nil {
		a.logCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.logInfo = nil
	a.logErr = nil
	a.logPort = port
	a.logCancel = cancel
	a.log.SetPort(port)
	go a.refreshLog(ctx, port)

	a.show(a.log)
}

// ShowConsole switches to the console of the instance on port.  The
// connection is made when the panel is first drawn.
func (a *App) ShowConsole(port int) {
	a.detach()
	a.console.SetPort(port)
	a.show(a.console)
}

// ensureAttached dials the console unless a connection exists, is on
// its way, or failed.  It runs on the event loop.
func (a *App) ensureAttached() {
	if a.cons != nil || a.dialing || a.console.Err() != nil {
		return
	}
	a.dialing = true
	port := a.console.Port()
	go func() {
		cs, e := a.client.Console(port)
		a.app.PostFunc(func() {
			a.dialing = false
			if a.console.Port() != port || a.panel != a.console {
				if cs != nil {
					cs.Close()
				}
				return
			}
			if e != nil {
				a.Logf("Console %d: %v", port, e)
				a.console.Fail(e)
				a.app.Update()
				return
			}
			a.cons = cs
			go a.follow(cs)
		})
	}()
}

func (a *App) follow(cs *rest.Console) {
	for ev := range cs.Events() {
		a.app.PostFunc(func() {
			if a.cons == cs {
				a.console.AddEvent(ev)
				a.app.Update()
			}
		})
	}
	a.app.PostFunc(func() {
		if a.cons == cs {
			a.cons = nil
			e := cs.Err()
			if e == nil {
				e = errors.New("connection closed")
			}
			a.console.Fail(e)
			a.app.Update()
		}
	})
}

// detach drops the console connection, if any.
func (a *App) detach() {
	if a.cons != nil {
		a.cons.Close()
		a.cons = nil
	}
}

// SendCommand writes text to the attached console.
func (a *App) SendCommand(text string) {
	cs := a.cons
	if cs == nil {
		a.console.Fail(errors.New("not attached"))
		return
	}
	go func() {
		if e := cs.Send(text); e != nil {
			a.app.PostFunc(func() {
				a.console.Fail(e)
				a.app.Update()
			})
		}
	}()
}

// action runs fn in the background and reports its result on the main
// screen.
func (a *App) action(port int, fn func(int) (string, error)) {
	go func() {
		msg, e := fn(port)
		if e != nil {
			msg = fmt.Sprintf("%d: %v", port, e)
		} else {
			msg = fmt.Sprintf("%d: %s", port, msg)
		}
		a.Logf("%s", msg)
		a.app.PostFunc(func() {
			a.notice = msg
			a.app.Update()
		})
	}()
}

func (a *App) StartInstance(port int) {
	a.action(port, a.client.Start)
}

func (a *App) StopInstance(port int) {
	a.action(port, a.client.Stop)
}

func (a *App) RestartInstance(port int) {
	a.action(port, a.client.Restart)
}

func (a *App) SetUserPassword(user, pass string) {
	a.client.SetAuth(user, pass)
}

func (a *App) Quit() {
	a.detach()
	a.app.Quit()
}

func (a *App) SetLogger(logger *log.Logger) {
	a.logger = logger
	if logger != nil {
		logger.Printf("Start logger")
	}
}

func (a *App) Logf(fmt string, v ...interface{}) {
	if a.logger != nil {
		a.logger.Printf(fmt, v...)
	}
}

func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		// Intercept a few control keys up front, for global handling.
		case tcell.KeyCtrlC:
			a.Quit()
			return true
		case tcell.KeyCtrlL:
			a.app.Refresh()
			return true
		}
	}

	if a.panel != nil {
		return a.panel.HandleEvent(ev)
	}
	return false
}

func (a *App) Draw() {
	if a.panel != nil {
		a.panel.Draw()
	}
}

func (a *App) Resize() {
	if a.panel != nil {
		a.panel.Resize()
	}
}

func (a *App) SetView(view views.View) {
	a.view = view
	if a.panel != nil {
		a.panel.SetView(view)
	}
}

func (a *App) Size() (int, int) {
	if a.panel != nil {
		return a.panel.Size()
	}
	return 0, 0
}

func (a *App) GetClient() *rest.Client {
	return a.client
}

// Server is the address of the daemon the client talks to.
func (a *App) Server() string {
	return a.url
}

func (a *App) GetAppName() string {
	return "IdlerMeow v1.0"
}

func NewApp(client *rest.Client, url string) *App {

	app := &App{}
	app.app = &views.Application{}
	app.client = client
	app.url = url
	app.help = NewHelpPanel(app)
	app.log = NewLogPanel(app)
	app.console = NewConsolePanel(app)
	app.auth = NewAuthPanel(app)
	app.main = NewMainPanel(app)
	app.panel = app.main

	go app.refresh()
	return app
}

// refresh keeps the app items current.  There is no change feed for
// instance state, so it polls.
func (a *App) refresh() {
	for {
		items, e := a.client.Instances()
		if e == nil {
			util.SortInstances(items)
		}

		a.app.PostFunc(func() {
			a.items = items
			a.err = e
			a.app.Update()
		})
		time.Sleep(2 * time.Second)
	}
}

func (a *App) refreshLog(ctx context.Context, port int) {
	info, e := a.client.GetLog(port)

	for {
		a.app.PostFunc(func() {
			if a.logPort == port {
				a.logInfo = info
				a.logErr = e
				a.app.Update()
			}
		})
		select {
		case <-ctx.Done():
			return
		default:
		}
		if e != nil {
			time.Sleep(2 * time.Second)
			info, e = a.client.GetLog(port)
			continue
		}
		if next, ne := a.client.WatchLog(ctx, port, info); ne == nil {
			info = next
		} else if ctx.Err() == nil {
			e = ne
		}
	}
}

func (a *App) GetItems() ([]*rest.InstanceInfo, error) {
	return a.items, a.err
}

func (a *App) GetItem(port int) (*rest.InstanceInfo, error) {
	if a.err != nil {
		return nil, a.err
	}
	for _, i := range a.items {
		if i.Port == port {
			return i, nil
		}
	}
	return nil, fmt.Errorf("%w: port %d", idlermeow.ErrConfigNotFound, port)
}

func (a *App) GetLog(port int) (*rest.LogInfo, error) {
	if a.logPort == port {
		return a.logInfo, a.logErr
	}
	return nil, nil
}

// Notice returns the result of the last action.
func (a *App) Notice() string {
	return a.notice
}

// Run shows the instance list, or the console of port if it is not
// zero, until the user quits.
func (a *App) Run(port int) error {
	a.Logf("Starting up user interface")
	a.app.SetRootWidget(a)
	if port != 0 {
		a.ShowConsole(port)
	} else {
		a.ShowMain()
	}
	go func() {
		// Give us periodic updates
		for {
			a.app.Update()
			time.Sleep(time.Second)
		}
	}()
	a.Logf("Starting app loop")
	return a.app.Run()
}
