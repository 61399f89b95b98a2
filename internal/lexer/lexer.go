// Package lexer classifies where each line of a document ends: in plain code,
// inside an unterminated string literal or inside an open block comment.
package lexer

import "strings"

// State is the carry-over classification at the end of a line.
type State string

const (
	Start        State = "start"
	SingleQuoted State = "qstring"
	DoubleQuoted State = "qqstring"
	Backquoted   State = "bqstring"
	BlockComment State = "comment"
)

// InString reports whether the following line starts inside string data.
func (s State) InString() bool {
	switch s {
	case SingleQuoted, DoubleQuoted, Backquoted:
		return true
	}
	return false
}

func (s State) quote() rune {
	switch s {
	case SingleQuoted:
		return '\''
	case DoubleQuoted:
		return '"'
	case Backquoted:
		return '`'
	}
	return 0
}

func stringState(q rune) State {
	switch q {
	case '\'':
		return SingleQuoted
	case '"':
		return DoubleQuoted
	case '`':
		return Backquoted
	}
	return Start
}

// SupportedQuote reports whether r can open a string literal.
func SupportedQuote(r rune) bool {
	return stringState(r) != Start
}

// Tokenizer is a line-at-a-time scanner configured per language.
type Tokenizer struct {
	Quotes       string // string delimiters honouring backslash escapes
	RawQuotes    string // string delimiters without escapes
	LineComment  string
	BlockComment [2]string
}

// Default covers C-like and R-like sources.
func Default() Tokenizer {
	return Tokenizer{Quotes: `"'`, LineComment: "#"}
}

// Tokenize returns the state at the end of line given the state at the end of
// the previous line.
func (t Tokenizer) Tokenize(prev State, line string) State {
	return t.Scan(prev, line, nil)
}

// Scan walks line and calls visit for every rune that is code, that is, not
// part of a string literal or a comment. Columns count runes.
func (t Tokenizer) Scan(prev State, line string, visit func(col int, r rune)) State {
	runes := []rune(line)
	state := prev
	if state == "" {
		state = Start
	}
	open, end := t.BlockComment[0], t.BlockComment[1]
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case state == BlockComment:
			if end != "" && hasPrefixAt(runes, i, end) {
				i += len([]rune(end)) - 1
				state = Start
			}
		case state.InString():
			q := state.quote()
			if r == '\\' && !strings.ContainsRune(t.RawQuotes, q) {
				i++
				continue
			}
			if r == q {
				state = Start
			}
		default:
			if t.LineComment != "" && hasPrefixAt(runes, i, t.LineComment) {
				return state
			}
			if open != "" && end != "" && hasPrefixAt(runes, i, open) {
				i += len([]rune(open)) - 1
				state = BlockComment
				continue
			}
			if t.isQuote(r) {
				state = stringState(r)
				continue
			}
			if visit != nil {
				visit(i, r)
			}
		}
	}
	return state
}

func (t Tokenizer) isQuote(r rune) bool {
	if !SupportedQuote(r) {
		return false
	}
	return strings.ContainsRune(t.Quotes, r) || strings.ContainsRune(t.RawQuotes, r)
}

func hasPrefixAt(runes []rune, i int, prefix string) bool {
	for _, p := range prefix {
		if i >= len(runes) || runes[i] != p {
			return false
		}
		i++
	}
	return true
}
