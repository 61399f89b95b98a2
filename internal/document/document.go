// Package document holds the editing session a reindentation pass works on:
// lines, the per-row lexical state cache, ranged replacement, bracket search,
// undo history and the post-insert / post-undo hook lists.
//
// A Document is not safe for concurrent use. The host serializes input events.
package document

import (
	"errors"
	"strings"

	"github.com/kobzarvs/qindent/internal/lexer"
)

var (
	ErrInvalidRange    = errors.New("document: invalid range")
	ErrInvalidPosition = errors.New("document: invalid position")
)

const (
	DefaultTabSize      = 4
	DefaultHistoryLimit = 500
)

// Lexer assigns the state at the end of a line from the state at the end of
// the previous one. visit receives the runes that are code.
type Lexer interface {
	Scan(prev lexer.State, line string, visit func(col int, r rune)) lexer.State
}

type Document struct {
	// lines are never mutated in place; edits build new rows and a new
	// outer slice so history snapshots can share them.
	lines     [][]rune
	tabString string
	tabSize   int
	lexer     Lexer
	states    []lexer.State
	matcher   BracketMatcher
	version   uint64

	hist        history
	txn         []txnFrame
	insertHooks []InsertHook
	undoHooks   []UndoHook
}

type Option func(*Document)

// WithLexer sets the tokenizer used for the state cache and bracket search.
func WithLexer(l Lexer) Option {
	return func(d *Document) {
		if l != nil {
			d.lexer = l
		}
	}
}

// WithIndent sets the indentation unit and the visual tab width.
func WithIndent(tabString string, tabSize int) Option {
	return func(d *Document) {
		if tabString != "" {
			d.tabString = tabString
		}
		if tabSize > 0 {
			d.tabSize = tabSize
		}
	}
}

// WithBracketMatcher installs a structural matcher consulted before the
// lexical scan.
func WithBracketMatcher(m BracketMatcher) Option {
	return func(d *Document) {
		d.matcher = m
	}
}

// WithHistoryLimit bounds the undo stack. Zero disables history.
func WithHistoryLimit(n int) Option {
	return func(d *Document) {
		d.hist.limit = n
	}
}

func New(text string, opts ...Option) *Document {
	d := &Document{
		lines:     splitLines(text),
		tabString: strings.Repeat(" ", DefaultTabSize),
		tabSize:   DefaultTabSize,
		lexer:     lexer.Default(),
		hist:      history{limit: DefaultHistoryLimit},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

// Line returns the text of row, or "" when row is out of range.
func (d *Document) Line(row int) string {
	if row < 0 || row >= len(d.lines) {
		return ""
	}
	return string(d.lines[row])
}

func (d *Document) LineCount() int {
	return len(d.lines)
}

func (d *Document) LineLen(row int) int {
	if row < 0 || row >= len(d.lines) {
		return 0
	}
	return len(d.lines[row])
}

func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	for i, l := range d.lines {
		out[i] = string(l)
	}
	return out
}

func (d *Document) Text() string {
	return strings.Join(d.Lines(), "\n")
}

// Version increases on every change to the text.
func (d *Document) Version() uint64 {
	return d.version
}

func (d *Document) TabString() string {
	return d.tabString
}

func (d *Document) TabSize() int {
	return d.tabSize
}

// SetIndent changes the indentation unit, for example after detection.
func (d *Document) SetIndent(tabString string, tabSize int) {
	WithIndent(tabString, tabSize)(d)
}

// SetBracketMatcher replaces the structural matcher; nil restores the plain scan.
func (d *Document) SetBracketMatcher(m BracketMatcher) {
	d.matcher = m
}

func (d *Document) validPos(p Position) bool {
	return p.Row >= 0 && p.Row < len(d.lines) && p.Col >= 0 && p.Col <= len(d.lines[p.Row])
}

// Replace substitutes the text in r with text, which may span lines. Rows
// outside r are not touched.
func (d *Document) Replace(r Range, text string) error {
	if !d.validPos(r.Start) || !d.validPos(r.End) || ComparePos(r.Start, r.End) > 0 {
		return ErrInvalidRange
	}
	if d.slice(r) == text {
		return nil
	}
	d.begin()
	d.apply(r, text)
	d.end()
	return nil
}

// Insert places text at pos, runs the post-insert hooks and returns the
// position right after the inserted text. A hook failure rolls the whole
// input cycle back.
func (d *Document) Insert(pos Position, text string) (Position, error) {
	if !d.validPos(pos) {
		return pos, ErrInvalidPosition
	}
	if text == "" {
		return pos, nil
	}
	end := endOf(pos, text)
	err := d.Transact(func() error {
		d.apply(Range{Start: pos, End: pos}, text)
		for _, h := range d.insertHooks {
			if err := h(pos, text); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pos, err
	}
	return end, nil
}

// Remove deletes the text in r.
func (d *Document) Remove(r Range) error {
	return d.Replace(NormalizeRange(r), "")
}

func endOf(pos Position, text string) Position {
	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		return Position{Row: pos.Row, Col: pos.Col + len([]rune(text))}
	}
	return Position{Row: pos.Row + len(parts) - 1, Col: len([]rune(parts[len(parts)-1]))}
}

func (d *Document) slice(r Range) string {
	if r.Start.Row == r.End.Row {
		return string(d.lines[r.Start.Row][r.Start.Col:r.End.Col])
	}
	var b strings.Builder
	b.WriteString(string(d.lines[r.Start.Row][r.Start.Col:]))
	for row := r.Start.Row + 1; row < r.End.Row; row++ {
		b.WriteByte('\n')
		b.WriteString(string(d.lines[row]))
	}
	b.WriteByte('\n')
	b.WriteString(string(d.lines[r.End.Row][:r.End.Col]))
	return b.String()
}

func (d *Document) apply(r Range, text string) {
	repl := splitLines(text)
	head := d.lines[r.Start.Row][:r.Start.Col]
	tail := d.lines[r.End.Row][r.End.Col:]

	first := make([]rune, 0, len(head)+len(repl[0]))
	first = append(append(first, head...), repl[0]...)
	repl[0] = first
	last := repl[len(repl)-1]
	joined := make([]rune, 0, len(last)+len(tail))
	repl[len(repl)-1] = append(append(joined, last...), tail...)

	lines := make([][]rune, 0, len(d.lines)-(r.End.Row-r.Start.Row)+len(repl)-1)
	lines = append(lines, d.lines[:r.Start.Row]...)
	lines = append(lines, repl...)
	lines = append(lines, d.lines[r.End.Row+1:]...)
	d.lines = lines

	d.touch(r.Start)
	d.invalidate(r.Start.Row)
	d.version++
}
