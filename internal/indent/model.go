// Package indent is the reindentation engine: the outdent trigger, brace
// realignment and the row-by-row reindent pass, wired to a document through
// its post-insert and post-undo hooks.
package indent

import (
	"strings"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/lexer"
)

// Capability is the set of hooks a Model implements.
type Capability uint8

const (
	CapNextLineIndent Capability = 1 << iota
	CapIndentForOpenBrace
	CapBraceIndent
	CapCheckOutdent

	CapAll = CapNextLineIndent | CapIndentForOpenBrace | CapBraceIndent | CapCheckOutdent
)

func (c Capability) Has(f Capability) bool {
	return c&f == f
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, n := range []struct {
		cap  Capability
		name string
	}{
		{CapNextLineIndent, "next-line-indent"},
		{CapIndentForOpenBrace, "indent-for-open-brace"},
		{CapBraceIndent, "brace-indent"},
		{CapCheckOutdent, "check-outdent"},
	} {
		if c.Has(n.cap) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Model is a language indent model. Callers consult Capabilities before
// using a hook; a hook that cannot produce a value returns ok=false.
type Model interface {
	Capabilities() Capability
	// NextLineIndent is the indent for the line following row, whose text is
	// line and whose end state is state.
	NextLineIndent(state lexer.State, line, tab string, tabSize, row int) (string, bool)
	// IndentForOpenBrace is the indent a closing brace takes when its
	// opening partner sits at pos.
	IndentForOpenBrace(pos document.Position) (string, bool)
	// BraceIndent is the indent of an opening brace placed alone on the
	// line after row.
	BraceIndent(row int) (string, bool)
	CheckOutdent(state lexer.State, line, input string) bool
}

// Base declares no capabilities. Embed it and override what a model supports.
type Base struct{}

func (Base) Capabilities() Capability { return 0 }

func (Base) NextLineIndent(lexer.State, string, string, int, int) (string, bool) {
	return "", false
}

func (Base) IndentForOpenBrace(document.Position) (string, bool) { return "", false }

func (Base) BraceIndent(int) (string, bool) { return "", false }

func (Base) CheckOutdent(state lexer.State, line, input string) bool {
	return CheckOutdent(state, line, input)
}

// Document is the part of the editing session the engine reads and edits.
type Document interface {
	Line(row int) string
	LineCount() int
	State(row int) lexer.State
	Replace(r document.Range, text string) error
	FindMatchingBracket(pos document.Position) (document.Position, bool)
	TabString() string
	TabSize() int
	Transact(fn func() error) error
}

// Session is a Document that accepts hook registration and typed input.
type Session interface {
	Document
	Insert(pos document.Position, text string) (document.Position, error)
	OnInsert(h document.InsertHook)
	OnUndo(h document.UndoHook)
}

var (
	_ Session = (*document.Document)(nil)
	_ Model   = Base{}
)
