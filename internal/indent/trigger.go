package indent

import (
	"strings"
	"unicode"

	"github.com/kobzarvs/qindent/internal/lexer"
)

// CheckOutdent reports whether a keystroke turned a blank line into one
// whose first non-blank character is a curly brace. line is the content
// before the keystroke and must hold at least one whitespace character;
// input is the resulting line.
func CheckOutdent(state lexer.State, line, input string) bool {
	if line == "" || strings.TrimSpace(line) != "" {
		return false
	}
	rest := strings.TrimLeftFunc(input, unicode.IsSpace)
	return strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "}")
}

// leadingWhitespace returns the rune length of the whitespace run that
// starts line. A line terminator left on the row ends the run.
func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if !isIndentRune(r) {
			break
		}
		n++
	}
	return n
}

func isIndentRune(r rune) bool {
	return r != '\r' && r != '\n' && unicode.IsSpace(r)
}

// validIndent reports whether a model value is usable as a prefix: nothing
// but indentation whitespace.
func validIndent(s string) bool {
	for _, r := range s {
		if !isIndentRune(r) {
			return false
		}
	}
	return true
}

// braceAfterIndent reports whether line is optional whitespace followed by
// brace, and returns the length of that whitespace.
func braceAfterIndent(line string, brace rune) (int, bool) {
	ws := leadingWhitespace(line)
	runes := []rune(line)
	if ws >= len(runes) || runes[ws] != brace {
		return ws, false
	}
	return ws, true
}
