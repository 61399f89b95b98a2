package indent

import (
	"strings"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/lexer"
	"github.com/kobzarvs/qindent/internal/logger"
)

// Stats summarizes the last reindent pass.
type Stats struct {
	Rows      int // rows whose prefix was (re)applied
	Skipped   int // rows left alone: inside a string or no model value
	Realigned int // rows handed to AutoOutdent
}

type Engine struct {
	doc   Session
	model Model
	stats Stats
}

// New binds model to doc and registers the engine's post-insert and
// post-undo hooks on it.
func New(doc Session, model Model) *Engine {
	if model == nil {
		model = Base{}
	}
	e := &Engine{doc: doc, model: model}
	doc.OnInsert(e.afterInsert)
	doc.OnUndo(e.afterUndo)
	return e
}

func (e *Engine) Model() Model { return e.model }

func (e *Engine) Stats() Stats { return e.stats }

// Reindent recomputes the leading whitespace of every row in r, top-down,
// as one undo step. It only fails when the document rejects an edit, in
// which case nothing is changed.
func (e *Engine) Reindent(r document.Range) error {
	r = document.NormalizeRange(r)
	start, end := r.Start.Row, r.End.Row
	if start < 0 {
		start = 0
	}
	if last := e.doc.LineCount() - 1; end > last {
		end = last
	}
	var st Stats
	err := e.doc.Transact(func() error {
		for row := start; row <= end; row++ {
			if err := e.reindentRow(row, &st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("reindent aborted", "start", start, "end", end, "error", err)
		return err
	}
	e.stats = st
	logger.Debug("reindent", "start", start, "end", end, "rows", st.Rows, "skipped", st.Skipped, "realigned", st.Realigned)
	return nil
}

func (e *Engine) reindentRow(row int, st *Stats) error {
	if row == 0 {
		st.Rows++
		return e.applyIndent(0, "")
	}
	state := e.doc.State(row - 1)
	if state.InString() {
		st.Skipped++
		logger.Debug("reindent skipped", "row", row, "reason", "inside string", "state", state)
		return nil
	}
	indent, ok := e.nextLineIndent(state, row-1)
	if !ok {
		st.Skipped++
		return nil
	}
	current := e.doc.Line(row)
	outdent := e.checkOutdent(state, " ", current)
	if err := e.applyIndent(row, indent); err != nil {
		return err
	}
	st.Rows++
	if !outdent {
		return nil
	}
	st.Realigned++
	return AutoOutdent(e.doc, e.model, state, row)
}

func (e *Engine) nextLineIndent(state lexer.State, row int) (string, bool) {
	if !e.model.Capabilities().Has(CapNextLineIndent) {
		logger.Debug("reindent skipped", "row", row+1, "reason", "model has no next-line-indent")
		return "", false
	}
	indent, ok := e.model.NextLineIndent(state, e.doc.Line(row), e.doc.TabString(), e.doc.TabSize(), row)
	if !ok {
		logger.Debug("reindent skipped", "row", row+1, "reason", "model returned no indent")
		return "", false
	}
	if !validIndent(indent) {
		logger.Warn("reindent skipped", "row", row+1, "reason", "model returned non-whitespace indent", "indent", indent)
		return "", false
	}
	return indent, true
}

func (e *Engine) checkOutdent(state lexer.State, line, input string) bool {
	if e.model.Capabilities().Has(CapCheckOutdent) {
		return e.model.CheckOutdent(state, line, input)
	}
	return CheckOutdent(state, line, input)
}

// applyIndent replaces the leading whitespace of row with indent.
func (e *Engine) applyIndent(row int, indent string) error {
	n := leadingWhitespace(e.doc.Line(row))
	return e.doc.Replace(document.Range{
		Start: document.Position{Row: row},
		End:   document.Position{Row: row, Col: n},
	}, indent)
}

// IndentPastedRange reindents text that was just pasted into r. When the
// paste started after other text on its first row, that row keeps its
// indentation and the pass starts on the next row.
func (e *Engine) IndentPastedRange(r document.Range) error {
	r = document.NormalizeRange(r)
	line := []rune(e.doc.Line(r.Start.Row))
	col := min(r.Start.Col, len(line))
	if strings.TrimSpace(string(line[:col])) != "" {
		next := document.Position{Row: r.Start.Row + 1}
		if document.ComparePos(next, r.End) >= 0 {
			return nil
		}
		r.Start = next
	}
	return e.Reindent(r)
}

// NewlineIndent is the indent a freshly opened row should start with.
func (e *Engine) NewlineIndent(row int) (string, bool) {
	if row <= 0 {
		return "", true
	}
	state := e.doc.State(row - 1)
	if state.InString() {
		return "", false
	}
	return e.nextLineIndent(state, row-1)
}

// InsertNewline splits the line at pos and indents the new row, as one undo
// step. It returns the cursor position after the indent.
func (e *Engine) InsertNewline(pos document.Position) (document.Position, error) {
	var at document.Position
	err := e.doc.Transact(func() error {
		end, err := e.doc.Insert(pos, "\n")
		if err != nil {
			return err
		}
		at = end
		indent, ok := e.NewlineIndent(end.Row)
		if !ok {
			return nil
		}
		if err := e.applyIndent(end.Row, indent); err != nil {
			return err
		}
		at.Col = len([]rune(indent))
		return nil
	})
	return at, err
}

// afterInsert is the post-insert hook: a single-line keystroke that leaves a
// lone brace on a previously blank line realigns that line.
func (e *Engine) afterInsert(pos document.Position, text string) error {
	if strings.Contains(text, "\n") {
		return nil
	}
	row := pos.Row
	line := []rune(e.doc.Line(row))
	n := len([]rune(text))
	if pos.Col+n > len(line) {
		return nil
	}
	before := string(line[:pos.Col]) + string(line[pos.Col+n:])
	state := e.doc.State(row)
	if !e.checkOutdent(state, before, string(line)) {
		return nil
	}
	if row > 0 && e.doc.State(row-1).InString() {
		logger.Debug("realign skipped", "row", row, "reason", "inside string")
		return nil
	}
	return AutoOutdent(e.doc, e.model, state, row)
}

func (e *Engine) afterUndo(redo bool) {
	e.stats = Stats{}
	logger.Debug("history step", "redo", redo)
}
