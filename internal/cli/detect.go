package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qindent/internal/config"
	"github.com/kobzarvs/qindent/internal/document"
)

func newDetectCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detect FILE",
		Short: "Print the indentation style FILE uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			width, tabs := document.DetectIndentation(strings.Split(string(data), "\n"))
			style := config.IndentSpaces
			if tabs {
				style = config.IndentTabs
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", style, width)
			return err
		},
	}
}

func newLanguagesCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List configured languages with their indent model and grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, langs, err := loadConfig()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODEL\tGRAMMAR\tFILE TYPES")
			for _, lang := range langs.Languages {
				model := lang.IndentModel
				if model == "" {
					model = config.ModelBrace
				}
				if model == config.ModelLua {
					model += " (" + lang.Script + ")"
				}
				grammar := lang.Grammar
				if grammar == "" {
					grammar = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", lang.Name, model, grammar, strings.Join(lang.FileTypes, ","))
			}
			return w.Flush()
		},
	}
}
