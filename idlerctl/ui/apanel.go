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
	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"
)

const fieldWidth = 16

// AuthPanel asks for the daemon's basic auth credentials after a
// request is refused.
type AuthPanel struct {
	form     *views.BoxLayout
	labels   *views.BoxLayout
	fields   *views.BoxLayout
	ufield   *views.Text
	pfield   *views.Text
	password bool // password field has focus
	username []rune
	secret   []rune

	Panel
}

func NewAuthPanel(app *App) *AuthPanel {
	a := &AuthPanel{}
	a.Panel.Init(app)

	prompt := func(s string) *views.Text {
		t := views.NewText()
		t.SetText(s)
		t.SetStyle(StyleNormal)
		return t
	}
	a.ufield = prompt("")
	a.pfield = prompt("")

	a.labels = views.NewBoxLayout(views.Vertical)
	a.labels.AddWidget(views.NewSpacer(), 1.0)
	a.labels.AddWidget(prompt("Username: "), 0.0)
	a.labels.AddWidget(prompt("Password: "), 0.0)
	a.labels.AddWidget(views.NewSpacer(), 1.0)

	a.fields = views.NewBoxLayout(views.Vertical)
	a.fields.AddWidget(views.NewSpacer(), 1.0)
	a.fields.AddWidget(a.ufield, 0.0)
	a.fields.AddWidget(a.pfield, 0.0)
	a.fields.AddWidget(views.NewSpacer(), 1.0)

	a.form = views.NewBoxLayout(views.Horizontal)
	a.form.AddWidget(views.NewSpacer(), 1.0)
	a.form.AddWidget(a.labels, 0.0)
	a.form.AddWidget(a.fields, 0.0)
	a.form.AddWidget(views.NewSpacer(), 1.0)
	for _, b := range []*views.BoxLayout{a.labels, a.fields, a.form} {
		b.SetStyle(StyleNormal)
	}

	a.SetTitle("Login")
	a.SetStatus(LevelError, "Authentication Required")
	a.SetKeys("[ESC] Quit", "[TAB] Next", "[ENTER] Login")
	a.SetContent(a.form)

	return a
}

func (a *AuthPanel) ResetFields() {
	a.password = false
	a.username = a.username[:0]
	a.secret = a.secret[:0]
}

// focused returns the field being edited.
func (a *AuthPanel) focused() *[]rune {
	if a.password {
		return &a.secret
	}
	return &a.username
}

func (a *AuthPanel) Draw() {
	a.update()
	a.Panel.Draw()
}

func (a *AuthPanel) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		f := a.focused()
		switch ev.Key() {
		case tcell.KeyEsc:
			a.App().Quit()
		case tcell.KeyTab, tcell.KeyEnter:
			if !a.password {
				a.password = true
				break
			}
			a.App().SetUserPassword(string(a.username), string(a.secret))
			a.App().ShowMain()
		case tcell.KeyBacktab:
			a.password = false
		case tcell.KeyCtrlU, tcell.KeyCtrlW:
			*f = (*f)[:0]
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(*f) > 0 {
				*f = (*f)[:len(*f)-1]
			}
		case tcell.KeyRune:
			if len(*f) < 256 {
				*f = append(*f, ev.Rune())
			}
		default:
			return false
		}
		return true
	}
	return a.Panel.HandleEvent(ev)
}

// clip fits text into the field width, with a marker when the start
// has scrolled out of view.
func clip(text []rune, active bool) string {
	out := append([]rune{}, text...)
	if active {
		out = append(out, '_')
	}
	if len(out) > fieldWidth {
		out = out[len(out)-fieldWidth:]
		out[0] = '<'
	}
	for len(out) < fieldWidth {
		out = append(out, ' ')
	}
	return string(out)
}

func (a *AuthPanel) update() {
	masked := make([]rune, len(a.secret))
	for i := range masked {
		masked[i] = '*'
	}
	a.ufield.SetText(clip(a.username, !a.password))
	a.pfield.SetText(clip(masked, a.password))

	if a.password {
		a.pfield.SetStyle(StyleInput)
		a.ufield.SetStyle(StyleNormal)
	} else {
		a.ufield.SetStyle(StyleInput)
		a.pfield.SetStyle(StyleNormal)
	}
}
