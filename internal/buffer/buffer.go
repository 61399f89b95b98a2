// Package buffer opens a file as an indentation session: the document, its
// lexer and bracket matcher, the language's indent model and the engine that
// drives them.
package buffer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kobzarvs/qindent/internal/config"
	"github.com/kobzarvs/qindent/internal/document"
	"github.com/kobzarvs/qindent/internal/indent"
	"github.com/kobzarvs/qindent/internal/indent/brace"
	"github.com/kobzarvs/qindent/internal/logger"
	"github.com/kobzarvs/qindent/internal/script"
	"github.com/kobzarvs/qindent/internal/treesitter"
)

type Buffer struct {
	Path   string
	Lang   *config.Language
	Doc    *document.Document
	Engine *indent.Engine

	// IndentStyle and TabWidth are what the buffer settled on after language
	// overrides and detection.
	IndentStyle string
	TabWidth    int

	mode  os.FileMode
	ts    *treesitter.Engine
	key   string
	model *script.Model
}

type Option func(*options)

type options struct {
	language string
	ts       *treesitter.Engine
}

// WithLanguage forces the named language instead of matching the file name.
func WithLanguage(name string) Option {
	return func(o *options) { o.language = name }
}

// WithTreeSitter lets languages with a grammar resolve brackets from a
// syntax tree.
func WithTreeSitter(ts *treesitter.Engine) Option {
	return func(o *options) { o.ts = ts }
}

// Open reads path and builds its session. A missing file opens empty.
func Open(path string, cfg config.Config, langs config.Languages, opts ...Option) (*Buffer, error) {
	data, err := os.ReadFile(path)
	mode := os.FileMode(0o644)
	switch {
	case err == nil:
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
	case os.IsNotExist(err):
		data = nil
	default:
		return nil, err
	}
	b, err := New(path, string(data), cfg, langs, opts...)
	if err != nil {
		return nil, err
	}
	b.mode = mode
	return b, nil
}

// New builds a session over text. path selects the language and is where
// Save writes.
func New(path, text string, cfg config.Config, langs config.Languages, opts ...Option) (*Buffer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var lang *config.Language
	if o.language != "" {
		if lang = langs.Named(o.language); lang == nil {
			return nil, fmt.Errorf("unknown language %q", o.language)
		}
	} else if path != "" {
		lang = langs.Match(path)
	}

	b := &Buffer{Path: path, Lang: lang, mode: 0o644}

	editorOpts := cfg.Editor
	if lang != nil {
		if lang.TabWidth > 0 {
			editorOpts.TabWidth = lang.TabWidth
		}
		if lang.IndentStyle != "" {
			editorOpts.IndentStyle = lang.IndentStyle
		}
	}
	if cfg.Editor.DetectIndent && hasIndentedLine(text) {
		width, tabs := document.DetectIndentation(strings.Split(text, "\n"))
		if tabs {
			editorOpts.IndentStyle = config.IndentTabs
		} else {
			editorOpts.IndentStyle = config.IndentSpaces
			editorOpts.TabWidth = width
		}
	}
	tab, width := editorOpts.IndentUnit()
	b.IndentStyle = editorOpts.IndentStyle
	b.TabWidth = width

	docOpts := []document.Option{
		document.WithIndent(tab, width),
		document.WithHistoryLimit(cfg.Editor.HistoryLimit),
	}
	if lang != nil {
		docOpts = append(docOpts, document.WithLexer(lang.Tokenizer()))
	}
	b.Doc = document.New(text, docOpts...)

	if lang != nil && lang.Grammar != "" && o.ts != nil {
		b.key = path
		if abs, err := filepath.Abs(path); err == nil {
			b.key = abs
		}
		if m, ok := o.ts.Matcher(b.key, lang.Grammar); ok {
			b.Doc.SetBracketMatcher(m)
			b.ts = o.ts
		} else {
			logger.Warn("no grammar for language", "language", lang.Name, "grammar", lang.Grammar)
		}
	}

	model, err := b.buildModel(lang)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Engine = indent.New(b.Doc, model)

	name := ""
	if lang != nil {
		name = lang.Name
	}
	logger.Debug("buffer opened", "path", path, "language", name,
		"indent_style", b.IndentStyle, "tab_width", b.TabWidth, "model", model.Capabilities().String())
	return b, nil
}

func (b *Buffer) buildModel(lang *config.Language) (indent.Model, error) {
	if lang == nil {
		return brace.New(b.Doc, nil), nil
	}
	switch lang.IndentModel {
	case config.ModelLua:
		path, err := lang.ScriptPath()
		if err != nil {
			return nil, err
		}
		m, err := script.Load(b.Doc, path)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", lang.Name, err)
		}
		b.model = m
		return m, nil
	default:
		return brace.New(b.Doc, lang.Tokenizer(), brace.WithCaseLabels(lang.CaseLabels...)), nil
	}
}

// LanguageName is the matched language, or "" for plain text.
func (b *Buffer) LanguageName() string {
	if b.Lang == nil {
		return ""
	}
	return b.Lang.Name
}

// Save writes the document back to Path.
func (b *Buffer) Save() error {
	if b.Path == "" {
		return fmt.Errorf("buffer has no path")
	}
	if err := os.WriteFile(b.Path, []byte(b.Doc.Text()), b.mode); err != nil {
		return fmt.Errorf("write %s: %w", b.Path, err)
	}
	logger.Info("buffer saved", "path", b.Path, "lines", b.Doc.LineCount())
	return nil
}

// Close releases the Lua state and the cached syntax tree.
func (b *Buffer) Close() {
	if b.model != nil {
		b.model.Close()
	}
	if b.ts != nil {
		b.ts.Forget(b.key)
	}
}

func hasIndentedLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			return true
		}
	}
	return false
}
