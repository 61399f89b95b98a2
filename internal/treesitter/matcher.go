package treesitter

import (
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kobzarvs/qindent/internal/document"
)

// Matcher implements document.BracketMatcher for one document.
type Matcher struct {
	e       *Engine
	key     string
	grammar string
}

var partners = map[string]string{
	"{": "}", "}": "{",
	"(": ")", ")": "(",
	"[": "]", "]": "[",
}

func isOpen(t string) bool {
	return t == "{" || t == "(" || t == "["
}

// MatchBracket finds the bracket token at pos in the tree and returns the
// partner token under the same parent. A partner the parser had to invent
// counts as none; a bracket the tree does not know about is left to the
// caller's own scan.
func (m *Matcher) MatchBracket(src document.Source, pos document.Position) (document.Position, document.MatchResult) {
	tree := m.e.tree(m.key, m.grammar, src)
	if tree == nil {
		return document.Position{}, document.MatchUnknown
	}
	line := src.Line(pos.Row)
	at := sitter.Point{Row: uint32(pos.Row), Column: uint32(byteCol(line, pos.Col))}
	end := sitter.Point{Row: at.Row, Column: at.Column + 1}

	node := tree.RootNode().NamedDescendantForPointRange(at, end)
	for ; node != nil; node = node.Parent() {
		idx := bracketChild(node, at)
		if idx < 0 {
			continue
		}
		open := node.Child(idx).Type()
		partner := partners[open]
		if p := findPartner(node, idx, partner, isOpen(open)); p != nil {
			if p.IsMissing() {
				return document.Position{}, document.MatchNone
			}
			sp := p.StartPoint()
			row := int(sp.Row)
			return document.Position{Row: row, Col: runeCol(src.Line(row), int(sp.Column))}, document.MatchFound
		}
		return document.Position{}, document.MatchNone
	}
	return document.Position{}, document.MatchUnknown
}

// bracketChild returns the index of the bracket token child of n starting at p.
func bracketChild(n *sitter.Node, p sitter.Point) int {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || c.StartPoint() != p {
			continue
		}
		if _, ok := partners[c.Type()]; ok {
			return i
		}
	}
	return -1
}

func findPartner(n *sitter.Node, idx int, partner string, forward bool) *sitter.Node {
	if forward {
		for i := idx + 1; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil && c.Type() == partner {
				return c
			}
		}
		return nil
	}
	for i := idx - 1; i >= 0; i-- {
		if c := n.Child(i); c != nil && c.Type() == partner {
			return c
		}
	}
	return nil
}

func byteCol(line string, col int) int {
	b := 0
	for i := 0; i < col && b < len(line); i++ {
		_, size := utf8.DecodeRuneInString(line[b:])
		b += size
	}
	return b
}

func runeCol(line string, b int) int {
	if b > len(line) {
		b = len(line)
	}
	return utf8.RuneCountInString(line[:b])
}

var _ document.BracketMatcher = (*Matcher)(nil)
