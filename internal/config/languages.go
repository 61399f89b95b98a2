package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kobzarvs/qindent/internal/lexer"
)

const (
	ModelBrace = "brace"
	ModelLua   = "lua"
)

type Language struct {
	Name         string   `toml:"name"`
	FileTypes    []string `toml:"file-types"`
	Quotes       string   `toml:"quotes"`
	RawQuotes    string   `toml:"raw-quotes"`
	LineComment  string   `toml:"line-comment"`
	BlockComment []string `toml:"block-comment"`
	IndentModel  string   `toml:"indent-model"`
	Script       string   `toml:"script"`
	Grammar      string   `toml:"grammar"`
	TabWidth     int      `toml:"tab-width"`
	IndentStyle  string   `toml:"indent-style"`
	CaseLabels   []string `toml:"case-labels"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

func DefaultLanguages() Languages {
	cBlock := []string{"/*", "*/"}
	return Languages{Languages: []Language{
		{Name: "r", FileTypes: []string{"r", "R", "Rprofile"}, Quotes: `"'`, LineComment: "#", IndentModel: ModelBrace},
		{Name: "go", FileTypes: []string{"go"}, Quotes: `"'`, RawQuotes: "`", LineComment: "//", BlockComment: cBlock,
			IndentModel: ModelBrace, Grammar: "go", IndentStyle: IndentTabs, CaseLabels: []string{"case", "default"}},
		{Name: "c", FileTypes: []string{"c", "h", "cc", "cpp", "hpp"}, Quotes: `"'`, LineComment: "//", BlockComment: cBlock,
			IndentModel: ModelBrace},
		{Name: "javascript", FileTypes: []string{"js", "mjs", "cjs", "ts"}, Quotes: "\"'`", LineComment: "//", BlockComment: cBlock,
			IndentModel: ModelBrace, TabWidth: 2},
		{Name: "bash", FileTypes: []string{"sh", "bash", ".bashrc"}, Quotes: `"`, RawQuotes: "'", LineComment: "#",
			IndentModel: ModelBrace, Grammar: "bash"},
		{Name: "toml", FileTypes: []string{"toml"}, Quotes: `"`, RawQuotes: "'", LineComment: "#",
			IndentModel: ModelBrace, Grammar: "toml"},
	}}
}

func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

// Named returns the language called name, or nil.
func (l Languages) Named(name string) *Language {
	for i := range l.Languages {
		if strings.EqualFold(l.Languages[i].Name, name) {
			return &l.Languages[i]
		}
	}
	return nil
}

// Tokenizer builds the line lexer for the language.
func (l Language) Tokenizer() lexer.Tokenizer {
	tok := lexer.Tokenizer{Quotes: l.Quotes, RawQuotes: l.RawQuotes, LineComment: l.LineComment}
	if len(l.BlockComment) == 2 {
		tok.BlockComment = [2]string{l.BlockComment[0], l.BlockComment[1]}
	}
	return tok
}

// ScriptPath resolves the Lua model script; relative paths are taken from
// the config directory.
func (l Language) ScriptPath() (string, error) {
	if l.Script == "" || filepath.IsAbs(l.Script) {
		return l.Script, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, l.Script), nil
}

// IndentUnit applies the language's overrides to the editor options.
func (l Language) IndentUnit(opts EditorOptions) (string, int) {
	if l.TabWidth > 0 {
		opts.TabWidth = l.TabWidth
	}
	if l.IndentStyle != "" {
		opts.IndentStyle = l.IndentStyle
	}
	return opts.IndentUnit()
}

// LoadLanguages reads languages.toml over the built-in table. A user entry
// with a built-in name overrides the fields it sets; other entries are added.
func LoadLanguages() (Languages, error) {
	langs := DefaultLanguages()
	path, err := LanguagesPath()
	if err != nil {
		return langs, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return langs, nil
		}
		return langs, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return langs, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, user := range cfg.Languages {
		if base := langs.Named(user.Name); base != nil {
			mergeLanguage(base, user)
			continue
		}
		langs.Languages = append(langs.Languages, user)
	}
	if err := langs.Validate(); err != nil {
		return langs, fmt.Errorf("%s: %w", path, err)
	}
	return langs, nil
}

func mergeLanguage(dst *Language, src Language) {
	if len(src.FileTypes) > 0 {
		dst.FileTypes = src.FileTypes
	}
	if src.Quotes != "" {
		dst.Quotes = src.Quotes
	}
	if src.RawQuotes != "" {
		dst.RawQuotes = src.RawQuotes
	}
	if src.LineComment != "" {
		dst.LineComment = src.LineComment
	}
	if len(src.BlockComment) > 0 {
		dst.BlockComment = src.BlockComment
	}
	if src.IndentModel != "" {
		dst.IndentModel = src.IndentModel
	}
	if src.Script != "" {
		dst.Script = src.Script
	}
	if src.Grammar != "" {
		dst.Grammar = src.Grammar
	}
	if src.TabWidth > 0 {
		dst.TabWidth = src.TabWidth
	}
	if src.IndentStyle != "" {
		dst.IndentStyle = src.IndentStyle
	}
	if src.CaseLabels != nil {
		dst.CaseLabels = src.CaseLabels
	}
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
