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
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"
)

var (
	barNormal = tcell.StyleDefault.
			Foreground(tcell.ColorBlack).
			Background(tcell.ColorSilver)
	barAlternate = tcell.StyleDefault.
			Foreground(tcell.ColorBlue).
			Background(tcell.ColorSilver)

	StatusBarStyleNormal = barNormal
	StatusBarStyleGood   = tcell.StyleDefault.
				Foreground(tcell.ColorWhite).
				Background(tcell.ColorGreen).
				Bold(true)
	StatusBarStyleWarn = tcell.StyleDefault.
				Foreground(tcell.ColorBlack).
				Background(tcell.ColorYellow)
	StatusBarStyleError = tcell.StyleDefault.
				Foreground(tcell.ColorWhite).
				Background(tcell.ColorMaroon).
				Bold(true)
)

type TitleBar struct {
	once sync.Once
	views.SimpleStyledTextBar
}

func (tb *TitleBar) Init() {
	tb.once.Do(func() {
		tb.SimpleStyledTextBar.Init()
		tb.SimpleStyledTextBar.SetStyle(barNormal)
		tb.RegisterLeftStyle('N', barNormal)
		tb.RegisterLeftStyle('A', barAlternate)
		tb.RegisterCenterStyle('N', barNormal)
		tb.RegisterCenterStyle('A', barAlternate)
		tb.RegisterRightStyle('N', barNormal)
		tb.RegisterRightStyle('A', barAlternate)
	})
}

func NewTitleBar() *TitleBar {
	tb := &TitleBar{}
	tb.Init()
	return tb
}

// StatusBar is like a titlebar, but it changes color based on the
// status of a screen -- e.g. red background when the server is down.
type StatusBar struct {
	once   sync.Once
	status string
	views.SimpleStyledTextBar
}

func (sb *StatusBar) Init() {
	sb.once.Do(func() {
		sb.SimpleStyledTextBar.Init()
		sb.SetLevel(LevelNormal)
	})
}

func (sb *StatusBar) SetStyle(style tcell.Style) {
	sb.SimpleStyledTextBar.SetStyle(style)
	sb.SimpleStyledTextBar.RegisterLeftStyle('N', style)
	sb.SimpleStyledTextBar.SetLeft(sb.status)
}

var statusBarStyles = map[Level]tcell.Style{
	LevelNormal: StatusBarStyleNormal,
	LevelGood:   StatusBarStyleGood,
	LevelWarn:   StatusBarStyleWarn,
	LevelError:  StatusBarStyleError,
}

func (sb *StatusBar) SetLevel(l Level) {
	style, ok := statusBarStyles[l]
	if !ok {
		style = StatusBarStyleNormal
	}
	sb.SetStyle(style)
}

func (sb *StatusBar) SetText(status string) {
	sb.status = status
	sb.SetLeft(status)
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.Init()
	return sb
}

// KeyBar shows the keys that work on the current screen.  A key is
// written in brackets, as in "[Q] Quit", and drawn highlighted.
type KeyBar struct {
	once sync.Once
	views.SimpleStyledTextBar
}

func (k *KeyBar) Init() {
	k.once.Do(func() {
		k.SimpleStyledTextBar.Init()
		k.SimpleStyledTextBar.SetStyle(barNormal)
		k.RegisterLeftStyle('N', barNormal)
		k.RegisterLeftStyle('A', barAlternate.Bold(true))
	})
}

// markup converts bracketed keys to the styled text bar's %A/%N
// escapes, doubling any literal %.
func markup(words []string) string {
	b := make([]rune, 0, 80)
	for i, w := range words {
		if i != 0 && len(w) != 0 {
			b = append(b, ' ')
		}
		esc := false
		for _, r := range w {
			switch {
			case r == '%':
				b = append(b, '%', '%')
			case r == '[' && !esc:
				esc = true
				b = append(b, r, '%', 'A')
			case r == ']' && esc:
				esc = false
				b = append(b, '%', 'N', r)
			default:
				b = append(b, r)
			}
		}
	}
	return string(b)
}

func (k *KeyBar) SetKeys(words []string) {
	k.SetLeft(markup(words))
}

func NewKeyBar() *KeyBar {
	kb := &KeyBar{}
	kb.Init()
	return kb
}
