// Package editor is the terminal editing surface: it turns key and paste
// events into document edits and draws the buffer with a status line.
package editor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qindent/internal/buffer"
	"github.com/kobzarvs/qindent/internal/config"
	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/logger"
	"github.com/kobzarvs/qindent/internal/session"
)

type Editor struct {
	buf      *buffer.Buffer
	doc      *document.Document
	keymap   config.Keymap
	opts     config.EditorOptions
	sessions *session.Manager

	cursor    document.Position
	scroll    int
	clipboard string
	status    string
	saved     uint64

	pasting bool
	paste   []rune
}

// New opens an editing surface over buf. sm may be nil; when set, the cursor
// is restored from and saved to the session.
func New(buf *buffer.Buffer, cfg config.Config, sm *session.Manager) *Editor {
	e := &Editor{
		buf:      buf,
		doc:      buf.Doc,
		keymap:   cfg.Keymap,
		opts:     cfg.Editor,
		sessions: sm,
		saved:    buf.Doc.Version(),
	}
	if sm != nil {
		if st, ok := sm.FileState(e.sessionKey()); ok {
			e.cursor = document.Position{Row: st.CursorRow, Col: st.CursorCol}
			e.clampCursor()
		}
	}
	return e
}

func (e *Editor) Cursor() document.Position { return e.cursor }

// StatusMessage returns the message shown under the status line.
func (e *Editor) StatusMessage() string { return e.status }

func (e *Editor) SetStatusMessage(msg string) { e.status = msg }

// Modified reports whether the document changed since it was opened or saved.
func (e *Editor) Modified() bool { return e.doc.Version() != e.saved }

// HandleEvent dispatches one screen event. It returns true when the editor
// should exit.
func (e *Editor) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventPaste:
		if ev.Start() {
			e.pasting = true
			e.paste = e.paste[:0]
			return false
		}
		e.pasting = false
		e.insertPaste(string(e.paste))
		return false
	case *tcell.EventKey:
		if e.pasting {
			e.collectPaste(ev)
			return false
		}
		return e.HandleKey(ev)
	}
	return false
}

func (e *Editor) collectPaste(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		e.paste = append(e.paste, ev.Rune())
	case tcell.KeyEnter, tcell.KeyLF:
		e.paste = append(e.paste, '\n')
	case tcell.KeyTab:
		e.paste = append(e.paste, '\t')
	}
}

// HandleKey applies one key press. Keys bound in the keymap run their action;
// everything else edits or moves the cursor. It returns true on quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if action, ok := e.keymap[keyString(ev)]; ok {
		return e.runAction(action)
	}
	switch ev.Key() {
	case tcell.KeyRune:
		e.insertText(string(ev.Rune()))
	case tcell.KeyTab:
		e.insertText(e.doc.TabString())
	case tcell.KeyEnter:
		e.newline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.backspace()
	case tcell.KeyDelete:
		e.deleteForward()
	case tcell.KeyLeft:
		e.moveLeft()
	case tcell.KeyRight:
		e.moveRight()
	case tcell.KeyUp:
		e.cursor.Row--
		e.clampCursor()
	case tcell.KeyDown:
		e.cursor.Row++
		e.clampCursor()
	case tcell.KeyHome:
		e.cursor.Col = 0
	case tcell.KeyEnd:
		e.cursor.Col = e.doc.LineLen(e.cursor.Row)
	case tcell.KeyPgUp:
		e.cursor.Row -= 20
		e.clampCursor()
	case tcell.KeyPgDn:
		e.cursor.Row += 20
		e.clampCursor()
	}
	return false
}

func (e *Editor) runAction(action string) bool {
	switch action {
	case "quit":
		e.Close()
		return true
	case "save":
		e.save()
	case "undo":
		if pos, ok := e.doc.Undo(); ok {
			e.cursor = pos
			e.clampCursor()
		} else {
			e.status = "nothing to undo"
		}
	case "redo":
		if pos, ok := e.doc.Redo(); ok {
			e.cursor = pos
			e.clampCursor()
		} else {
			e.status = "nothing to redo"
		}
	case "reindent":
		e.reindent(document.RowRange(0, e.doc.LineCount()-1))
	case "reindent_line":
		e.reindent(document.RowRange(e.cursor.Row, e.cursor.Row))
	case "copy_line":
		e.clipboard = e.doc.Line(e.cursor.Row) + "\n"
		e.status = "line copied"
	case "paste":
		e.insertPaste(e.clipboard)
	default:
		e.status = fmt.Sprintf("unknown action %q", action)
		logger.Warn("unknown keymap action", "action", action)
	}
	return false
}

func (e *Editor) save() {
	if err := e.buf.Save(); err != nil {
		e.status = err.Error()
		return
	}
	e.saved = e.doc.Version()
	e.status = fmt.Sprintf("wrote %d lines", e.doc.LineCount())
	e.remember()
}

// reindent keeps the cursor on the same character of its row.
func (e *Editor) reindent(r document.Range) {
	tail := e.doc.LineLen(e.cursor.Row) - e.cursor.Col
	if err := e.buf.Engine.Reindent(r); err != nil {
		e.status = "reindent failed: " + err.Error()
		return
	}
	e.cursor.Col = max(e.doc.LineLen(e.cursor.Row)-tail, 0)
	st := e.buf.Engine.Stats()
	e.status = fmt.Sprintf("reindented %d rows, %d skipped", st.Rows, st.Skipped)
}

// insertText types text at the cursor. The post-insert hooks may realign the
// row, so the cursor is placed by its distance from the end of the line.
func (e *Editor) insertText(text string) {
	tail := e.doc.LineLen(e.cursor.Row) - e.cursor.Col
	end, err := e.doc.Insert(e.cursor, text)
	if err != nil {
		e.status = err.Error()
		return
	}
	e.cursor = document.Position{Row: end.Row, Col: max(e.doc.LineLen(end.Row)-tail, 0)}
}

func (e *Editor) newline() {
	pos, err := e.buf.Engine.InsertNewline(e.cursor)
	if err != nil {
		e.status = err.Error()
		return
	}
	e.cursor = pos
}

// insertPaste inserts text and, for multi-line text, reindents what was
// pasted. Both happen in one undo step.
func (e *Editor) insertPaste(text string) {
	if text == "" {
		return
	}
	start := e.cursor
	tail := e.doc.LineLen(start.Row) - start.Col
	var end document.Position
	err := e.doc.Transact(func() error {
		var err error
		end, err = e.doc.Insert(start, text)
		if err != nil {
			return err
		}
		if e.opts.ReindentOnPaste && strings.Contains(text, "\n") {
			return e.buf.Engine.IndentPastedRange(document.Range{Start: start, End: end})
		}
		return nil
	})
	if err != nil {
		e.status = "paste failed: " + err.Error()
		return
	}
	e.cursor = document.Position{Row: end.Row, Col: max(e.doc.LineLen(end.Row)-tail, 0)}
}

func (e *Editor) backspace() {
	at := e.cursor
	switch {
	case at.Col > 0:
		at.Col--
	case at.Row > 0:
		at = document.Position{Row: at.Row - 1, Col: e.doc.LineLen(at.Row - 1)}
	default:
		return
	}
	if err := e.doc.Remove(document.Range{Start: at, End: e.cursor}); err != nil {
		e.status = err.Error()
		return
	}
	e.cursor = at
}

func (e *Editor) deleteForward() {
	to := e.cursor
	switch {
	case to.Col < e.doc.LineLen(to.Row):
		to.Col++
	case to.Row < e.doc.LineCount()-1:
		to = document.Position{Row: to.Row + 1}
	default:
		return
	}
	if err := e.doc.Remove(document.Range{Start: e.cursor, End: to}); err != nil {
		e.status = err.Error()
	}
}

func (e *Editor) moveLeft() {
	if e.cursor.Col > 0 {
		e.cursor.Col--
	} else if e.cursor.Row > 0 {
		e.cursor.Row--
		e.cursor.Col = e.doc.LineLen(e.cursor.Row)
	}
}

func (e *Editor) moveRight() {
	if e.cursor.Col < e.doc.LineLen(e.cursor.Row) {
		e.cursor.Col++
	} else if e.cursor.Row < e.doc.LineCount()-1 {
		e.cursor.Row++
		e.cursor.Col = 0
	}
}

func (e *Editor) clampCursor() {
	if e.cursor.Row >= e.doc.LineCount() {
		e.cursor.Row = e.doc.LineCount() - 1
	}
	if e.cursor.Row < 0 {
		e.cursor.Row = 0
	}
	if n := e.doc.LineLen(e.cursor.Row); e.cursor.Col > n {
		e.cursor.Col = n
	}
	if e.cursor.Col < 0 {
		e.cursor.Col = 0
	}
}

func (e *Editor) sessionKey() string {
	if abs, err := filepath.Abs(e.buf.Path); err == nil {
		return abs
	}
	return e.buf.Path
}

func (e *Editor) remember() {
	if e.sessions == nil || e.buf.Path == "" {
		return
	}
	e.sessions.SetFileState(e.sessionKey(), session.FileState{
		CursorRow:   e.cursor.Row,
		CursorCol:   e.cursor.Col,
		IndentStyle: e.buf.IndentStyle,
		TabWidth:    e.buf.TabWidth,
	})
}

// Close records the cursor in the session.
func (e *Editor) Close() {
	e.remember()
}
