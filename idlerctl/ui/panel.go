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

package ui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2/views"

	"github.com/MoonlightPanel/IdlerMeow"
)

// Level selects the colors of the status bar.
type Level int

const (
	LevelNormal Level = iota
	LevelGood
	LevelWarn
	LevelError
)

// InstanceLevel is the status bar level used to show an instance in
// state st.
func InstanceLevel(st idlermeow.Status) Level {
	switch st {
	case idlermeow.Online:
		return LevelGood
	case idlermeow.Starting, idlermeow.Stopping:
		return LevelWarn
	}
	return LevelNormal
}

// Panel is the frame every screen shares.  The title bar carries the
// daemon address on the left, the screen title in the middle, and the
// client name on the right.  Under it is the status bar, and the keys
// that work on the screen are listed at the bottom.
type Panel struct {
	title  *TitleBar
	status *StatusBar
	keys   *KeyBar
	once   sync.Once
	app    *App

	views.Panel
}

func (p *Panel) SetTitle(title string) {
	p.title.SetCenter(title)
}

func (p *Panel) SetKeys(words ...string) {
	p.keys.SetKeys(words)
}

// SetStatus replaces the status line.
func (p *Panel) SetStatus(l Level, format string, args ...interface{}) {
	p.status.SetLevel(l)
	p.status.SetText(fmt.Sprintf(format, args...))
}

// SetInstanceStatus shows st in the status bar, colored by state, with
// note after it.  A non-nil err takes over the color.
func (p *Panel) SetInstanceStatus(st idlermeow.Status, note string, err error) {
	text := "Status: " + st.String()
	if note != "" {
		text += "   " + note
	}
	if err != nil {
		p.SetStatus(LevelError, "%s   %v", text, err)
		return
	}
	p.SetStatus(InstanceLevel(st), "%s", text)
}

func (p *Panel) Init(app *App) {
	p.once.Do(func() {
		p.app = app

		p.title = NewTitleBar()
		p.title.SetLeft(app.Server())
		p.title.SetRight(app.GetAppName())
		p.title.SetCenter(" ")

		p.keys = NewKeyBar()
		p.status = NewStatusBar()

		p.Panel.SetTitle(p.title)
		p.Panel.SetMenu(p.status)
		p.Panel.SetStatus(p.keys)
	})
}

func (p *Panel) App() *App {
	return p.app
}
