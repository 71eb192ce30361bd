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
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"

	"github.com/MoonlightPanel/IdlerMeow"
	"github.com/MoonlightPanel/IdlerMeow/idlerctl/util"
	"github.com/MoonlightPanel/IdlerMeow/rest"
)

var (
	StyleNormal = tcell.StyleDefault.
			Foreground(tcell.ColorSilver).
			Background(tcell.ColorBlack)
	StyleGood = tcell.StyleDefault.
			Foreground(tcell.ColorGreen).
			Background(tcell.ColorBlack)
	StyleWarn = tcell.StyleDefault.
			Foreground(tcell.ColorYellow).
			Background(tcell.ColorBlack)
	StyleError = tcell.StyleDefault.
			Foreground(tcell.ColorMaroon).
			Background(tcell.ColorBlack)
)

func statusStyle(st idlermeow.Status) tcell.Style {
	switch st {
	case idlermeow.Online:
		return StyleGood
	case idlermeow.Starting, idlermeow.Stopping:
		return StyleWarn
	}
	return StyleNormal
}

// MainPanel lists the daemon's instances, one per row, and acts on the
// selected one.
type MainPanel struct {
	content *views.CellView
	rows    []row
	sel     int // selected row, or -1
	selPort int // port of the selected row, kept across refreshes
	width   int

	Panel
}

type row struct {
	info  *rest.InstanceInfo
	text  string
	style tcell.Style
}

func NewMainPanel(app *App) *MainPanel {
	m := &MainPanel{sel: -1}

	m.Panel.Init(app)
	m.content = views.NewCellView()
	m.content.SetModel(m)
	m.content.SetStyle(StyleNormal)
	m.SetContent(m.content)

	m.SetTitle("Instances")
	m.SetKeys("[Q] Quit")

	return m
}

// Selected returns the selected instance, or nil.
func (m *MainPanel) Selected() *rest.InstanceInfo {
	if m.sel < 0 || m.sel >= len(m.rows) {
		return nil
	}
	return m.rows[m.sel].info
}

func (m *MainPanel) Draw() {
	m.update()
	m.Panel.Draw()
}

func (m *MainPanel) HandleEvent(ev tcell.Event) bool {
	app := m.App()
	sel := m.Selected()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEsc:
			m.selectRow(-1)
			return true
		case tcell.KeyF1:
			app.ShowHelp()
			return true
		case tcell.KeyEnter:
			if sel != nil {
				app.ShowConsole(sel.Port)
				return true
			}
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'Q', 'q':
				app.Quit()
				return true
			case 'H', 'h':
				app.ShowHelp()
				return true
			case 'L', 'l':
				if sel != nil {
					app.ShowLog(sel.Port)
				} else {
					app.ShowLog(0)
				}
				return true
			case 'C', 'c':
				if sel != nil {
					app.ShowConsole(sel.Port)
					return true
				}
			case 'S', 's':
				if sel != nil && sel.Status == idlermeow.Offline {
					app.StartInstance(sel.Port)
					return true
				}
			case 'T', 't':
				if sel != nil && sel.Status != idlermeow.Offline {
					app.StopInstance(sel.Port)
					return true
				}
			case 'R', 'r':
				if sel != nil {
					app.RestartInstance(sel.Port)
					return true
				}
			}
		}
	}
	return m.Panel.HandleEvent(ev)
}

// The panel is its own views.CellModel.  Rows are ASCII, so a byte
// offset is a column.

func (m *MainPanel) GetCell(x, y int) (rune, tcell.Style, []rune, int) {
	if y < 0 || y >= len(m.rows) {
		return ' ', StyleNormal, nil, 1
	}
	r := m.rows[y]
	ch := ' '
	if x >= 0 && x < len(r.text) {
		ch = rune(r.text[x])
	}
	if y == m.sel {
		return ch, r.style.Reverse(true), nil, 1
	}
	return ch, r.style, nil, 1
}

func (m *MainPanel) GetBounds() (int, int) {
	return m.width, len(m.rows)
}

func (m *MainPanel) GetCursor() (int, int, bool, bool) {
	y := m.sel
	if y < 0 {
		y = 0
	}
	return 0, y, true, false
}

func (m *MainPanel) MoveCursor(_, offy int) {
	if m.sel < 0 {
		m.selectRow(0)
		return
	}
	m.selectRow(m.sel + offy)
}

func (m *MainPanel) SetCursor(_, y int) {
	m.selectRow(y)
}

// selectRow selects row y, clamped to the list; a negative y clears
// the selection.
func (m *MainPanel) selectRow(y int) {
	switch {
	case y < 0 || len(m.rows) == 0:
		m.sel, m.selPort = -1, 0
	case y >= len(m.rows):
		y = len(m.rows) - 1
		fallthrough
	default:
		m.sel, m.selPort = y, m.rows[y].info.Port
	}
}

// update rebuilds the rows from the app's instance list.  It runs on
// the event loop.
func (m *MainPanel) update() {
	items, err := m.App().GetItems()
	if err != nil {
		var re *rest.Error
		if errors.As(err, &re) && re.Code == 401 {
			m.App().ShowAuth()
			return
		}
		m.SetStatus(LevelError, "Cannot load instances: %v", err)
		m.rows = nil
		m.sel = -1
		m.SetKeys("[Q] Quit", "[H] Help", "[L] Log")
		return
	}

	m.rows = m.rows[:0]
	m.width = 0
	m.sel = -1
	online, offline, busy := 0, 0, 0
	for i, info := range items {
		text := util.Line(info)
		if len(text) > m.width {
			m.width = len(text)
		}
		m.rows = append(m.rows, row{info: info, text: text, style: statusStyle(info.Status)})
		if info.Port == m.selPort {
			m.sel = i
		}
		switch info.Status {
		case idlermeow.Online:
			online++
		case idlermeow.Offline:
			offline++
		default:
			busy++
		}
	}

	status := fmt.Sprintf("%6d Instances %6d Online %6d Busy %6d Offline",
		len(items), online, busy, offline)
	if n := m.App().Notice(); n != "" {
		status += "   " + n
	}
	level := LevelNormal
	switch {
	case busy > 0:
		level = LevelWarn
	case online > 0:
		level = LevelGood
	}
	m.SetStatus(level, "%s", status)

	words := []string{"[Q] Quit", "[H] Help", "[L] Log"}
	if sel := m.Selected(); sel != nil {
		words = append(words, "[C] Console")
		if sel.Status == idlermeow.Offline {
			words = append(words, "[S] Start")
		} else {
			words = append(words, "[T] Stop")
		}
		words = append(words, "[R] Restart")
	}
	m.SetKeys(words...)
}
