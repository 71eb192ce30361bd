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

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"

	"github.com/MoonlightPanel/IdlerMeow"
)

// MaxConsoleLines bounds the scrollback of the console screen.
const MaxConsoleLines = 2000

var StyleInput = tcell.StyleDefault.
	Foreground(tcell.ColorWhite).
	Background(tcell.ColorNavy)

// ConsolePanel shows the live console of one instance, with a command
// line at the bottom.
type ConsolePanel struct {
	text   *views.TextArea
	input  *views.Text
	box    *views.BoxLayout
	port   int
	status idlermeow.Status
	lines  []string
	line   []rune // command being typed
	follow bool   // keep the newest line in view
	err    error

	Panel
}

func NewConsolePanel(app *App) *ConsolePanel {
	p := &ConsolePanel{follow: true}

	p.Panel.Init(app)

	p.text = views.NewTextArea()
	p.text.EnableCursor(false)
	p.text.SetStyle(StyleNormal)

	p.input = views.NewText()
	p.input.SetStyle(StyleInput)

	p.box = views.NewBoxLayout(views.Vertical)
	p.box.SetStyle(StyleNormal)
	p.box.AddWidget(p.text, 1.0)
	p.box.AddWidget(p.input, 0.0)
	p.SetContent(p.box)

	p.SetKeys("[ESC] Main", "[F1] Help", "[ENTER] Send", "[END] Follow", "[^R] Reconnect")
	p.update()
	return p
}

func (p *ConsolePanel) Port() int {
	return p.port
}

// SetPort clears the screen for a new instance.
func (p *ConsolePanel) SetPort(port int) {
	p.port = port
	p.status = idlermeow.Offline
	p.lines = nil
	p.line = p.line[:0]
	p.follow = true
	p.err = nil
	p.SetTitle(fmt.Sprintf("Console for %d", port))
	p.text.SetLines(nil)
}

// AddEvent appends console text, or records a status change.
func (p *ConsolePanel) AddEvent(ev idlermeow.Event) {
	switch ev.Type {
	case idlermeow.EventStatus:
		if ev.Status == nil {
			return
		}
		p.status = *ev.Status
		p.lines = append(p.lines, "-- "+p.status.String()+" --")
	case idlermeow.EventConsole:
		p.lines = append(p.lines, ev.Message)
	default:
		return
	}
	if n := len(p.lines) - MaxConsoleLines; n > 0 {
		p.lines = append(p.lines[:0:0], p.lines[n:]...)
	}
}

func (p *ConsolePanel) Fail(e error) {
	p.err = e
}

func (p *ConsolePanel) Err() error {
	return p.err
}

func (p *ConsolePanel) Draw() {
	p.app.ensureAttached()
	p.update()
	p.Panel.Draw()
}

func (p *ConsolePanel) HandleEvent(ev tcell.Event) bool {
	app := p.app
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEsc:
			app.ShowMain()
			return true
		case tcell.KeyF1:
			app.ShowHelp()
			return true
		case tcell.KeyEnter:
			if len(p.line) > 0 {
				app.SendCommand(string(p.line))
				p.line = p.line[:0]
				p.follow = true
			}
			return true
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(p.line) > 0 {
				p.line = p.line[:len(p.line)-1]
			}
			return true
		case tcell.KeyCtrlU:
			p.line = p.line[:0]
			return true
		case tcell.KeyEnd:
			p.follow = true
			return true
		case tcell.KeyCtrlR:
			// reconnect after an error
			p.err = nil
			return true
		case tcell.KeyUp, tcell.KeyDown, tcell.KeyPgUp, tcell.KeyPgDn, tcell.KeyHome:
			p.follow = false
			return p.text.HandleEvent(ev)
		case tcell.KeyRune:
			p.line = append(p.line, ev.Rune())
			return true
		}
	}
	return p.Panel.HandleEvent(ev)
}

func (p *ConsolePanel) update() {
	note := ""
	if !p.follow {
		note = "(scrolled, END to follow)"
	}
	p.SetInstanceStatus(p.status, note, p.err)

	p.text.SetLines(p.lines)
	if p.follow && len(p.lines) > 0 {
		p.text.MakeVisible(0, len(p.lines)-1)
	}
	p.input.SetText("> " + string(p.line))
}
