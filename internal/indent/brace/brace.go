// Package brace is the indent model for curly-brace languages: a line that
// leaves a bracket open indents the next one by a unit, and braces align
// with the line that opened their block.
package brace

import (
	"strings"
	"unicode"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/indent"
	"github.com/kobzarvs/qindent/internal/lexer"
)

// Document is what the model reads. *document.Document satisfies it.
type Document interface {
	Line(row int) string
	LineCount() int
	State(row int) lexer.State
	FindMatchingBracket(pos document.Position) (document.Position, bool)
	TabString() string
}

// Scanner visits the code runes of a line, as lexer.Tokenizer does.
type Scanner interface {
	Scan(prev lexer.State, line string, visit func(col int, r rune)) lexer.State
}

type Model struct {
	indent.Base
	doc    Document
	lex    Scanner
	labels []string
}

type Option func(*Model)

// WithCaseLabels names the keywords that open a case clause, such as "case"
// and "default" in Go. A label line sits one unit left of the clause body.
func WithCaseLabels(labels ...string) Option {
	return func(m *Model) {
		m.labels = labels
	}
}

func New(doc Document, lex Scanner, opts ...Option) *Model {
	if lex == nil {
		lex = lexer.Default()
	}
	m := &Model{doc: doc, lex: lex}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Capabilities() indent.Capability {
	return indent.CapNextLineIndent | indent.CapIndentForOpenBrace | indent.CapBraceIndent
}

// NextLineIndent keeps the indent of line, one unit deeper when line leaves a
// bracket open. A blank line defers to the nearest non-blank one above it, and
// a line ending a wrapped call defers to the line that started the call. Case
// labels indent their body and sit one unit left of it.
func (m *Model) NextLineIndent(state lexer.State, line, tab string, tabSize, row int) (string, bool) {
	target := row + 1
	for isBlank(line) {
		row--
		if row < 0 {
			return "", true
		}
		line = m.doc.Line(row)
	}
	var indent string
	switch {
	case m.openDepth(row, line) > 0, m.isLabel(line):
		indent = leading(line) + tab
	default:
		indent = leading(m.doc.Line(m.anchor(row, len([]rune(line)))))
	}
	if target < m.doc.LineCount() && m.isLabel(m.doc.Line(target)) {
		indent = strings.TrimSuffix(indent, tab)
	}
	return indent, true
}

// isLabel reports whether line starts with one of the case labels.
func (m *Model) isLabel(line string) bool {
	code := strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, label := range m.labels {
		rest, ok := strings.CutPrefix(code, label)
		if !ok {
			continue
		}
		if rest == "" || rest[0] == ':' || rest[0] == ' ' || rest[0] == '\t' {
			return true
		}
	}
	return false
}

// IndentForOpenBrace is the indent of the line holding the opener at pos. When
// that line closes a parenthesis opened higher up, as in a wrapped function
// header, the indent comes from the line with the opening parenthesis.
func (m *Model) IndentForOpenBrace(pos document.Position) (string, bool) {
	if pos.Row < 0 || pos.Row >= m.doc.LineCount() {
		return "", false
	}
	return leading(m.doc.Line(m.anchor(pos.Row, pos.Col))), true
}

// BraceIndent places a lone opening brace under the nearest non-blank line at
// or above row, one unit deeper when that line leaves a brace open.
func (m *Model) BraceIndent(row int) (string, bool) {
	for ; row >= 0; row-- {
		line := m.doc.Line(row)
		if isBlank(line) {
			continue
		}
		if m.openBraces(row, line) > 0 {
			return leading(line) + m.doc.TabString(), true
		}
		return leading(m.doc.Line(m.anchor(row, len([]rune(line))))), true
	}
	return "", true
}

// anchor follows parentheses closed before col on row back to the row that
// opened them.
func (m *Model) anchor(row, col int) int {
	for hops := 0; hops < m.doc.LineCount(); hops++ {
		paren := m.unmatchedClose(row, col)
		if paren < 0 {
			break
		}
		open, ok := m.doc.FindMatchingBracket(document.Position{Row: row, Col: paren + 1})
		if !ok || open.Row >= row {
			break
		}
		row, col = open.Row, open.Col
	}
	return row
}

func (m *Model) prev(row int) lexer.State {
	if row <= 0 {
		return lexer.Start
	}
	return m.doc.State(row - 1)
}

// openDepth counts brackets left open at the end of line. Closers with
// nothing to close on the line are ignored, so "} else {" opens one level.
func (m *Model) openDepth(row int, line string) int {
	depth := 0
	m.lex.Scan(m.prev(row), line, func(_ int, r rune) {
		switch r {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
	})
	return depth
}

func (m *Model) openBraces(row int, line string) int {
	depth := 0
	m.lex.Scan(m.prev(row), line, func(_ int, r rune) {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	})
	return depth
}

// unmatchedClose returns the column of the first ')' before col on row that
// has no '(' on the row, or -1.
func (m *Model) unmatchedClose(row, col int) int {
	depth, found := 0, -1
	m.lex.Scan(m.prev(row), m.doc.Line(row), func(c int, r rune) {
		if found >= 0 || c >= col {
			return
		}
		switch r {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				found = c
				return
			}
			depth--
		}
	})
	return found
}

// leading is the indentation of line. A trailing "\r" is not part of it.
func leading(line string) string {
	for i, r := range line {
		if r == '\r' || r == '\n' || !unicode.IsSpace(r) {
			return line[:i]
		}
	}
	return line
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

var _ indent.Model = (*Model)(nil)
