package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/grammar"
	"github.com/roach88/hql/internal/lexer"
)

// TreeOptions holds flags for the tree command.
type TreeOptions struct {
	*RootOptions
	Query QueryOptions
	Spans bool
}

// TreeOutput is the tree command's JSON payload.
type TreeOutput struct {
	Query    string            `json:"query"`
	Tree     string            `json:"tree,omitempty"`
	Warnings []diag.Diagnostic `json:"warnings"`
	Errors   []diag.Diagnostic `json:"errors,omitempty"`
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TreeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tree [query...]",
		Short: "Print the syntax tree for a query",
		Long: `Parse a query and print its syntax tree without semantic analysis.

Exit codes:
  0 - The query parsed
  1 - The query has a lexical or grammar error
  2 - Command error

Examples:
  hql tree 'a.b rating:[A,C)|D~E sort:+partition'
  hql tree --spans '-^cat'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(opts, args, cmd)
		},
	}

	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().BoolVar(&opts.Spans, "spans", false, "print the rune span of every node")

	return cmd
}

func runTree(opts *TreeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	text, err := opts.Query.text(cmd, args)
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}

	tokens, lexWarnings := lexer.Tokenize(text, opts.Query.lexical())
	root, parseWarnings, errs := grammar.Parse(tokens, grammar.DefaultTable())

	out := TreeOutput{
		Query:    text,
		Warnings: append(append([]diag.Diagnostic{}, lexWarnings...), parseWarnings...),
		Errors:   errs,
	}
	if root != nil && len(errs) == 0 {
		out.Tree = ast.Format(root, opts.Spans)
	}

	if len(out.Errors) > 0 {
		first := out.Errors[0]
		if formatter.Format == "json" {
			if err := formatter.Error(first.Code, first.Message(), out); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Parse failed")
			for _, d := range diag.Sorted(append(out.Warnings, out.Errors...)) {
				fmt.Fprintln(formatter.Writer)
				writeDiagnostic(formatter.Writer, text, d)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("parse failed with %d error(s)", len(out.Errors)))
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	fmt.Fprint(formatter.Writer, out.Tree)
	for _, d := range diag.Sorted(out.Warnings) {
		fmt.Fprintln(formatter.Writer)
		writeDiagnostic(formatter.Writer, text, d)
	}
	return nil
}
