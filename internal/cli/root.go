package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qindent/internal/app"
	"github.com/kobzarvs/qindent/internal/buffer"
	"github.com/kobzarvs/qindent/internal/config"
	"github.com/kobzarvs/qindent/internal/logger"
	"github.com/kobzarvs/qindent/internal/treesitter"
)

type App struct {
	Debug    bool
	Language string

	logging bool
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "qindent [FILE]",
		Short:        "Brace-aware reindentation for source files",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Edit a file with live reindentation
  qindent script.R

  # Reindent a whole file in place
  qindent reindent --write script.R

  # Reindent rows 10 to 20 of stdin as R
  qindent reindent --language r --rows 10:20 - < script.R
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return app.New(args[0], a.Language).Run()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !a.Debug && os.Getenv("QINDENT_LOG_FILE") == "" {
			return nil
		}
		if err := logger.Init(a.Debug); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		a.logging = true
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.logging {
			logger.Close()
		}
	}

	cmd.PersistentFlags().BoolVar(&a.Debug, "debug", false, "Write debug logs (QINDENT_LOG_FILE or the config dir)")
	cmd.PersistentFlags().StringVarP(&a.Language, "language", "l", "", "Language name instead of matching the file name")

	cmd.AddCommand(newReindentCmd(a))
	cmd.AddCommand(newEditCmd(a))
	cmd.AddCommand(newDetectCmd(a))
	cmd.AddCommand(newLanguagesCmd(a))

	return cmd
}

func newEditCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit FILE",
		Short: "Open FILE in the terminal editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New(args[0], a.Language).Run()
		},
	}
}

// loadConfig reads both configuration files.
func loadConfig() (config.Config, config.Languages, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, config.Languages{}, err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return cfg, langs, err
	}
	return cfg, langs, nil
}

// openBuffer opens path, or stdin when path is "-".
func openBuffer(cmd *cobra.Command, a *App, path string) (*buffer.Buffer, error) {
	cfg, langs, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts := []buffer.Option{buffer.WithTreeSitter(treesitter.New())}
	if a.Language != "" {
		opts = append(opts, buffer.WithLanguage(a.Language))
	}
	if path != "-" {
		return buffer.Open(path, cfg, langs, opts...)
	}
	data, err := readAll(cmd)
	if err != nil {
		return nil, err
	}
	return buffer.New("", data, cfg, langs, opts...)
}

func readAll(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
