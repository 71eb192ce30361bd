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
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"
)

// LogPanel shows the daemon log, optionally only one instance's lines.
type LogPanel struct {
	text *views.TextArea
	port int

	Panel
}

func NewLogPanel(app *App) *LogPanel {
	p := &LogPanel{}

	p.Panel.Init(app)

	p.text = views.NewTextArea()
	p.text.EnableCursor(false)
	p.text.SetStyle(StyleNormal)
	p.SetContent(p.text)
	p.update()

	return p
}

func (p *LogPanel) Draw() {
	p.update()
	p.Panel.Draw()
}

func (p *LogPanel) HandleEvent(ev tcell.Event) bool {
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
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'Q', 'q':
				app.ShowMain()
				return true
			case 'H', 'h':
				app.ShowHelp()
				return true
			case 'C', 'c':
				if p.port != 0 {
					app.ShowConsole(p.port)
					return true
				}
			case 'R', 'r':
				if p.port != 0 {
					app.RestartInstance(p.port)
					return true
				}
			}
		}
	}
	return p.Panel.HandleEvent(ev)
}

func (p *LogPanel) SetPort(port int) {
	p.SetTitle("Loading")
	p.text.SetLines(nil)
	p.port = port
}

// update runs on the event loop.
func (p *LogPanel) update() {
	info, err := p.app.GetLog(p.port)

	words := []string{"[ESC] Main", "[H] Help"}
	if p.port == 0 {
		p.SetTitle("Daemon Log")
	} else {
		p.SetTitle(fmt.Sprintf("Log for %d", p.port))
		words = append(words, "[C] Console", "[R] Restart")
	}
	p.SetKeys(words...)

	if info == nil {
		if err != nil {
			p.SetStatus(LevelError, "No data: %v", err)
		} else {
			p.SetStatus(LevelNormal, "Loading ...")
		}
		p.text.SetLines([]string{""})
		return
	}

	if err != nil {
		p.SetStatus(LevelWarn, "%d records, stale: %v", len(info.Records), err)
	} else {
		p.SetStatus(LevelNormal, "%d records", len(info.Records))
	}

	lines := make([]string, 0, len(info.Records))
	for _, r := range info.Records {
		line := fmt.Sprintf("%s %s",
			r.Time.Format(time.StampMilli), r.Text)
		lines = append(lines, line)
	}
	p.text.SetLines(lines)
}
