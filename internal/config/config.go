package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type EditorOptions struct {
	TabWidth        int    `toml:"tab-width"`
	IndentStyle     string `toml:"indent-style"`
	DetectIndent    bool   `toml:"detect-indent"`
	ReindentOnPaste bool   `toml:"reindent-on-paste"`
	HistoryLimit    int    `toml:"history-limit"`
}

// Keymap maps key names such as "ctrl+r" to editing-surface actions.
type Keymap map[string]string

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Keymap Keymap        `toml:"keymap"`
}

const (
	IndentSpaces = "spaces"
	IndentTabs   = "tabs"
)

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:        4,
			IndentStyle:     IndentSpaces,
			DetectIndent:    true,
			ReindentOnPaste: true,
			HistoryLimit:    500,
		},
		Keymap: Keymap{
			"ctrl+s": "save",
			"ctrl+q": "quit",
			"esc":    "quit",
			"ctrl+z": "undo",
			"ctrl+y": "redo",
			"ctrl+r": "reindent",
			"ctrl+l": "reindent_line",
			"ctrl+c": "copy_line",
			"ctrl+v": "paste",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.IndentStyle != "" {
		cfg.Editor.IndentStyle = userCfg.Editor.IndentStyle
	}
	if md.IsDefined("editor", "detect-indent") {
		cfg.Editor.DetectIndent = userCfg.Editor.DetectIndent
	}
	if md.IsDefined("editor", "reindent-on-paste") {
		cfg.Editor.ReindentOnPaste = userCfg.Editor.ReindentOnPaste
	}
	if md.IsDefined("editor", "history-limit") {
		cfg.Editor.HistoryLimit = userCfg.Editor.HistoryLimit
	}
	for k, v := range userCfg.Keymap {
		cfg.Keymap[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// IndentUnit is the indentation string and visual width the editor options
// describe.
func (o EditorOptions) IndentUnit() (string, int) {
	width := o.TabWidth
	if width <= 0 {
		width = 4
	}
	if o.IndentStyle == IndentTabs {
		return "\t", width
	}
	return strings.Repeat(" ", width), width
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QINDENT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qindent"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qindent"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
