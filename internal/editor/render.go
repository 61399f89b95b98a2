package editor

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Render draws the visible lines, the status line and the message line.
func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	s.Clear()
	viewHeight := h - 2
	e.ensureCursorVisible(viewHeight)

	style := tcell.StyleDefault
	tabWidth := e.doc.TabSize()
	for y := 0; y < viewHeight; y++ {
		row := e.scroll + y
		if row >= e.doc.LineCount() {
			s.SetContent(0, y, '~', nil, style.Foreground(tcell.ColorGray))
			continue
		}
		x := 0
		for _, r := range e.doc.Line(row) {
			if x >= w {
				break
			}
			if r == '\t' {
				next := x + tabWidth - (x % tabWidth)
				for ; x < next && x < w; x++ {
					s.SetContent(x, y, ' ', nil, style)
				}
				continue
			}
			s.SetContent(x, y, r, nil, style)
			x++
		}
	}

	if h >= 2 {
		e.renderStatusline(s, w, h-2)
	}
	if h >= 1 {
		clearLine(s, h-1, w, style)
		for i, r := range []rune(e.status) {
			if i >= w {
				break
			}
			s.SetContent(i, h-1, r, nil, style)
		}
	}

	cy := e.cursor.Row - e.scroll
	if cy >= 0 && cy < viewHeight {
		line := []rune(e.doc.Line(e.cursor.Row))
		s.ShowCursor(visualCol(line, e.cursor.Col, tabWidth), cy)
	} else {
		s.HideCursor()
	}
	s.Show()
}

func (e *Editor) ensureCursorVisible(viewHeight int) {
	if viewHeight <= 0 {
		return
	}
	if e.cursor.Row < e.scroll {
		e.scroll = e.cursor.Row
		return
	}
	if e.cursor.Row >= e.scroll+viewHeight {
		e.scroll = e.cursor.Row - viewHeight + 1
	}
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	style := tcell.StyleDefault.Reverse(true)
	name := e.buf.Path
	if name == "" {
		name = "[scratch]"
	}
	if e.Modified() {
		name += " [+]"
	}
	lang := e.buf.LanguageName()
	if lang == "" {
		lang = "text"
	}
	left := fmt.Sprintf(" %s | %s", name, lang)
	right := fmt.Sprintf("%s:%d | Ln %d, Col %d ", e.buf.IndentStyle, e.buf.TabWidth, e.cursor.Row+1, e.cursor.Col+1)
	for x, r := range composeStatusLine(left, right, w) {
		s.SetContent(x, y, r, nil, style)
	}
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for len(line) < width-len(rightRunes) {
		line = append(line, ' ')
	}
	return append(line, rightRunes...)
}

// visualCol converts a rune column into a screen column with tabs expanded.
func visualCol(line []rune, logicalCol int, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}
	if logicalCol > len(line) {
		logicalCol = len(line)
	}
	col := 0
	for i := 0; i < logicalCol; i++ {
		if line[i] == '\t' {
			col += tabWidth - (col % tabWidth)
			continue
		}
		col++
	}
	return col
}

// keyString names a key event the way keymap entries spell it.
func keyString(ev *tcell.EventKey) string {
	// Enter, Tab, Backspace and Escape share codes with ctrl letters.
	switch ev.Key() {
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyTab:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyDelete:
		return "del"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyRune:
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			return "ctrl+" + strings.ToLower(string(r))
		}
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return "alt+" + string(r)
		}
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(k-tcell.KeyCtrlA)))
	}
	return ""
}
