package document

import "github.com/kobzarvs/qindent/internal/lexer"

// MatchResult tells the document what a BracketMatcher concluded.
type MatchResult int

const (
	// MatchUnknown defers to the lexical scan.
	MatchUnknown MatchResult = iota
	MatchFound
	MatchNone
)

// Source is the read-only view a BracketMatcher works on.
type Source interface {
	Text() string
	Version() uint64
	Line(row int) string
}

// BracketMatcher resolves the structural partner of the bracket at pos.
type BracketMatcher interface {
	MatchBracket(src Source, pos Position) (Position, MatchResult)
}

func partnerOf(r rune) (match rune, forward bool, ok bool) {
	switch r {
	case '(':
		return ')', true, true
	case ')':
		return '(', false, true
	case '[':
		return ']', true, true
	case ']':
		return '[', false, true
	case '{':
		return '}', true, true
	case '}':
		return '{', false, true
	}
	return 0, false, false
}

type codeBracket struct {
	col int
	r   rune
}

// brackets lists the brackets of row that are code, not string or comment text.
func (d *Document) brackets(row int) []codeBracket {
	prev := lexer.Start
	if row > 0 {
		prev = d.State(row - 1)
	}
	var out []codeBracket
	d.lexer.Scan(prev, string(d.lines[row]), func(col int, r rune) {
		if _, _, ok := partnerOf(r); ok {
			out = append(out, codeBracket{col: col, r: r})
		}
	})
	return out
}

// FindMatchingBracket looks at the bracket just before pos, or failing that
// the one at pos, and returns the position of its partner.
func (d *Document) FindMatchingBracket(pos Position) (Position, bool) {
	if pos.Row < 0 || pos.Row >= len(d.lines) {
		return Position{}, false
	}
	list := d.brackets(pos.Row)
	idx := -1
	for i, b := range list {
		if b.col == pos.Col-1 {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, b := range list {
			if b.col == pos.Col {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return Position{}, false
	}
	at := Position{Row: pos.Row, Col: list[idx].col}

	if d.matcher != nil {
		match, res := d.matcher.MatchBracket(d, at)
		switch res {
		case MatchFound:
			return match, true
		case MatchNone:
			return Position{}, false
		}
	}
	return d.scanMatchingBracket(at.Row, idx, list)
}

// scanMatchingBracket counts nesting depth of one bracket kind, the way a
// cursor jump to the matching bracket does, skipping strings and comments.
func (d *Document) scanMatchingBracket(row, idx int, list []codeBracket) (Position, bool) {
	open := list[idx].r
	match, forward, _ := partnerOf(open)
	depth := 1
	if forward {
		for i := idx + 1; ; i = 0 {
			for ; i < len(list); i++ {
				switch list[i].r {
				case open:
					depth++
				case match:
					depth--
					if depth == 0 {
						return Position{Row: row, Col: list[i].col}, true
					}
				}
			}
			row++
			if row >= len(d.lines) {
				return Position{}, false
			}
			list = d.brackets(row)
		}
	}
	for i := idx - 1; ; {
		for ; i >= 0; i-- {
			switch list[i].r {
			case open:
				depth++
			case match:
				depth--
				if depth == 0 {
					return Position{Row: row, Col: list[i].col}, true
				}
			}
		}
		row--
		if row < 0 {
			return Position{}, false
		}
		list = d.brackets(row)
		i = len(list) - 1
	}
}
