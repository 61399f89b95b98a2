// Package treesitter resolves bracket partners from a syntax tree for the
// languages that have a grammar, so braces inside constructs the line lexer
// does not understand still pair correctly.
package treesitter

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/logger"
)

type Engine struct {
	parsers  map[string]*sitter.Parser
	trees    map[string]*sitter.Tree
	sources  map[string][]byte
	versions map[string]uint64
	mu       sync.Mutex
}

func New() *Engine {
	return &Engine{
		parsers:  make(map[string]*sitter.Parser),
		trees:    make(map[string]*sitter.Tree),
		sources:  make(map[string][]byte),
		versions: make(map[string]uint64),
	}
}

func tsLanguageForName(name string) *sitter.Language {
	switch name {
	case "go":
		return golang.GetLanguage()
	case "yaml":
		return yaml.GetLanguage()
	case "toml":
		return toml.GetLanguage()
	case "bash":
		return bash.GetLanguage()
	default:
		return nil
	}
}

// Grammars lists the grammar names the engine can parse.
func Grammars() []string {
	return []string{"bash", "go", "toml", "yaml"}
}

// Supported reports whether grammar names a known grammar.
func Supported(grammar string) bool {
	return tsLanguageForName(grammar) != nil
}

// Matcher returns a bracket matcher for the document identified by key. It
// returns false when grammar is unknown.
func (e *Engine) Matcher(key, grammar string) (*Matcher, bool) {
	if !Supported(grammar) {
		return nil, false
	}
	return &Matcher{e: e, key: key, grammar: grammar}, true
}

// Forget drops the cached tree for key.
func (e *Engine) Forget(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t := e.trees[key]; t != nil {
		t.Close()
	}
	delete(e.trees, key)
	delete(e.sources, key)
	delete(e.versions, key)
}

// tree returns the syntax tree for src, reparsing when the text changed since
// the last call for key. A reparse reuses the previous tree, edited to the
// span that changed.
func (e *Engine) tree(key, grammar string, src document.Source) *sitter.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.trees[key]; ok && e.versions[key] == src.Version() {
		return t
	}
	parser := e.parsers[grammar]
	if parser == nil {
		parser = sitter.NewParser()
		parser.SetLanguage(tsLanguageForName(grammar))
		e.parsers[grammar] = parser
	}
	text := []byte(src.Text())
	prev := e.trees[key]
	if prev != nil {
		prev.Edit(diffEdit(e.sources[key], text))
	}
	tree, err := parser.ParseCtx(context.Background(), prev, text)
	if err != nil || tree == nil {
		logger.Warn("tree-sitter parse failed", "key", key, "grammar", grammar, "error", err)
		if prev != nil {
			prev.Close()
		}
		delete(e.trees, key)
		delete(e.sources, key)
		delete(e.versions, key)
		return nil
	}
	if prev != nil {
		prev.Close()
	}
	e.trees[key] = tree
	e.sources[key] = text
	e.versions[key] = src.Version()
	return tree
}

// diffEdit describes the change from old to text as one replaced span
// between their common prefix and suffix.
func diffEdit(old, text []byte) sitter.EditInput {
	n := min(len(old), len(text))
	start := 0
	for start < n && old[start] == text[start] {
		start++
	}
	suffix := 0
	for suffix < n-start && old[len(old)-1-suffix] == text[len(text)-1-suffix] {
		suffix++
	}
	oldEnd, newEnd := len(old)-suffix, len(text)-suffix
	return sitter.EditInput{
		StartIndex:  uint32(start),
		OldEndIndex: uint32(oldEnd),
		NewEndIndex: uint32(newEnd),
		StartPoint:  pointAt(text, start),
		OldEndPoint: pointAt(old, oldEnd),
		NewEndPoint: pointAt(text, newEnd),
	}
}

func pointAt(src []byte, offset int) sitter.Point {
	var p sitter.Point
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			p.Row++
			lineStart = i + 1
		}
	}
	p.Column = uint32(offset - lineStart)
	return p
}
