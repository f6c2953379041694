package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hql/internal/grammar"
)

// TableOptions holds flags for the table command.
type TableOptions struct {
	*RootOptions
	Stats bool
}

// TableStats summarizes the HQL syntax table.
type TableStats struct {
	States       int      `json:"states"`
	Expressions  int      `json:"expressions"`
	Terminals    []string `json:"terminals"`
	NonTerminals []string `json:"nonterminals"`
}

// NewTableCommand creates the table command.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the LR(1) syntax table",
		Long: `Build the HQL grammar's LR(1) syntax table and print it.

Examples:
  hql table
  hql table --stats
  hql table --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print table dimensions only")

	return cmd
}

func runTable(opts *TableOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	table := grammar.DefaultTable()
	stats := TableStats{
		States:       table.StateCount(),
		Expressions:  len(grammar.Expressions()),
		Terminals:    table.Terminals(),
		NonTerminals: table.NonTerminals(),
	}

	if formatter.Format == "json" {
		return formatter.Success(stats)
	}

	if opts.Stats {
		w := formatter.Writer
		fmt.Fprintf(w, "States:        %d\n", stats.States)
		fmt.Fprintf(w, "Expressions:   %d\n", stats.Expressions)
		fmt.Fprintf(w, "Terminals:     %d\n", len(stats.Terminals))
		fmt.Fprintf(w, "Non-terminals: %d\n", len(stats.NonTerminals))
		return nil
	}

	fmt.Fprint(formatter.Writer, table.String())
	return nil
}
