package app

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qindent/internal/buffer"
	"github.com/kobzarvs/qindent/internal/config"
	"github.com/kobzarvs/qindent/internal/editor"
	"github.com/kobzarvs/qindent/internal/logger"
	"github.com/kobzarvs/qindent/internal/session"
	"github.com/kobzarvs/qindent/internal/treesitter"
)

// App is the top-level runtime for the interactive editor.
type App struct {
	path     string
	language string
}

func New(path, language string) *App {
	return &App{path: path, language: language}
}

func (a *App) Run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}

	opts := []buffer.Option{buffer.WithTreeSitter(treesitter.New())}
	if a.language != "" {
		opts = append(opts, buffer.WithLanguage(a.language))
	}
	buf, err := buffer.Open(a.path, cfg, langs, opts...)
	if err != nil {
		return err
	}
	defer buf.Close()

	sm, err := session.NewManager()
	if err != nil {
		logger.Warn("session unavailable", "error", err)
		sm = nil
	}
	if sm != nil {
		defer func() { err = multierr.Append(err, sm.Stop()) }()
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnablePaste()
	defer s.Fini()

	ed := editor.New(buf, cfg, sm)
	return Loop(s, ed)
}

// Loop feeds screen events to ed and redraws after each one until ed asks
// to quit.
func Loop(s tcell.Screen, ed *editor.Editor) error {
	ed.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			// Screen finalized.
			return nil
		case *tcell.EventResize:
			s.Sync()
		default:
			if ed.HandleEvent(ev) {
				return nil
			}
		}
		ed.Render(s)
	}
}
