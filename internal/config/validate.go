package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/kobzarvs/qindent/internal/lexer"
)

const maxTabWidth = 16

func validStyle(s string) bool {
	return s == "" || s == IndentSpaces || s == IndentTabs
}

// Validate reports every problem in the editor options at once.
func (c Config) Validate() error {
	var err error
	e := c.Editor
	if e.TabWidth < 1 || e.TabWidth > maxTabWidth {
		err = multierr.Append(err, fmt.Errorf("editor.tab-width %d out of range 1..%d", e.TabWidth, maxTabWidth))
	}
	if !validStyle(e.IndentStyle) {
		err = multierr.Append(err, fmt.Errorf("editor.indent-style %q: want %q or %q", e.IndentStyle, IndentSpaces, IndentTabs))
	}
	if e.HistoryLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("editor.history-limit %d is negative", e.HistoryLimit))
	}
	for key, action := range c.Keymap {
		if action == "" {
			err = multierr.Append(err, fmt.Errorf("keymap.%s has no action", key))
		}
	}
	return err
}

// Validate reports every problem in the language table at once.
func (l Languages) Validate() error {
	var err error
	seen := make(map[string]bool)
	for i, lang := range l.Languages {
		name := lang.Name
		if name == "" {
			err = multierr.Append(err, fmt.Errorf("language #%d has no name", i+1))
			name = fmt.Sprintf("#%d", i+1)
		} else if seen[strings.ToLower(name)] {
			err = multierr.Append(err, fmt.Errorf("language %s defined twice", name))
		}
		seen[strings.ToLower(name)] = true

		for _, q := range lang.Quotes + lang.RawQuotes {
			if !lexer.SupportedQuote(q) {
				err = multierr.Append(err, fmt.Errorf("language %s: unsupported quote %q", name, q))
			}
		}
		if n := len(lang.BlockComment); n != 0 && n != 2 {
			err = multierr.Append(err, fmt.Errorf("language %s: block-comment wants [open, close], got %d strings", name, n))
		}
		switch lang.IndentModel {
		case "", ModelBrace:
		case ModelLua:
			if lang.Script == "" {
				err = multierr.Append(err, fmt.Errorf("language %s: indent-model lua needs a script", name))
			}
		default:
			err = multierr.Append(err, fmt.Errorf("language %s: unknown indent-model %q", name, lang.IndentModel))
		}
		if lang.TabWidth < 0 || lang.TabWidth > maxTabWidth {
			err = multierr.Append(err, fmt.Errorf("language %s: tab-width %d out of range", name, lang.TabWidth))
		}
		if !validStyle(lang.IndentStyle) {
			err = multierr.Append(err, fmt.Errorf("language %s: indent-style %q", name, lang.IndentStyle))
		}
	}
	return err
}
