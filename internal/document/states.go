package document

import "github.com/kobzarvs/qindent/internal/lexer"

// State returns the lexical state at the end of row. States are computed
// lazily top-down and cached; an edit drops the cached state of the edited
// row and of every row below it.
func (d *Document) State(row int) lexer.State {
	if row < 0 || row >= len(d.lines) {
		return lexer.Start
	}
	for n := len(d.states); n <= row; n++ {
		prev := lexer.Start
		if n > 0 {
			prev = d.states[n-1]
		}
		d.states = append(d.states, d.lexer.Scan(prev, string(d.lines[n]), nil))
	}
	return d.states[row]
}

func (d *Document) invalidate(row int) {
	if row < 0 {
		row = 0
	}
	if row < len(d.states) {
		d.states = d.states[:row]
	}
}

// cachedStates reports how many rows currently have a cached state.
func (d *Document) cachedStates() int {
	return len(d.states)
}
