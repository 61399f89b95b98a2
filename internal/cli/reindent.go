package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qindent/internal/document"
)

func newReindentCmd(a *App) *cobra.Command {
	var (
		rows  string
		write bool
	)
	cmd := &cobra.Command{
		Use:   "reindent FILE",
		Short: "Recompute the indentation of FILE (or - for stdin)",
		Long: strings.TrimSpace(`
Reindent rewrites the leading whitespace of every row in range using the
language's indent model, then realigns rows that start with a brace. Rows
inside multi-line strings are left alone.

The result goes to stdout unless --write is given.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if write && path == "-" {
				return errors.New("--write needs a file, not stdin")
			}
			buf, err := openBuffer(cmd, a, path)
			if err != nil {
				return err
			}
			defer buf.Close()

			r, err := parseRows(rows, buf.Doc.LineCount())
			if err != nil {
				return err
			}
			if err := buf.Engine.Reindent(r); err != nil {
				return fmt.Errorf("reindent %s: %w", path, err)
			}

			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), buf.Doc.Text())
				return err
			}
			if err := buf.Save(); err != nil {
				return err
			}
			st := buf.Engine.Stats()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d rows reindented, %d skipped, %d realigned\n",
				path, st.Rows, st.Skipped, st.Realigned)
			return nil
		},
	}
	cmd.Flags().StringVar(&rows, "rows", "", "1-based inclusive row range A:B (A: and :B are open-ended)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite FILE instead of printing the result")
	return cmd
}

// parseRows turns "A:B" (1-based, inclusive) into a row range over a
// document of count lines. An empty arg covers every row.
func parseRows(arg string, count int) (document.Range, error) {
	last := count - 1
	if arg == "" {
		return document.RowRange(0, last), nil
	}
	from, to, found := strings.Cut(arg, ":")
	if !found {
		to = from
	}
	start, err := parseRow(from, 1)
	if err != nil {
		return document.Range{}, fmt.Errorf("--rows %q: %w", arg, err)
	}
	end, err := parseRow(to, count)
	if err != nil {
		return document.Range{}, fmt.Errorf("--rows %q: %w", arg, err)
	}
	if start > end {
		return document.Range{}, fmt.Errorf("--rows %q: start after end", arg)
	}
	if start > count {
		return document.Range{}, fmt.Errorf("--rows %q: document has %d rows", arg, count)
	}
	return document.RowRange(start-1, min(end, count)-1), nil
}

func parseRow(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad row %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("rows start at 1, got %d", n)
	}
	return n, nil
}
