package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/lexer"
)

// TokensOptions holds flags for the tokens command.
type TokensOptions struct {
	*RootOptions
	Query  QueryOptions
	Spaces bool // include whitespace tokens
}

// TokensOutput is the tokens command's JSON payload.
type TokensOutput struct {
	Query    string            `json:"query"`
	Tokens   []lexer.Token     `json:"tokens"`
	Warnings []diag.Diagnostic `json:"warnings"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokensOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tokens [query...]",
		Short: "Print the lexer output for a query",
		Long: `Tokenize a query and print one token per line with its rune span.

Examples:
  hql tokens 'score>=3 "quoted text"'
  hql tokens --chinese-symbols 'score：5'
  hql tokens --format json --spaces 'a b'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(opts, args, cmd)
		},
	}

	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().BoolVar(&opts.Spaces, "spaces", false, "include whitespace tokens")

	return cmd
}

func runTokens(opts *TokensOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	text, err := opts.Query.text(cmd, args)
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}

	tokens, warnings := lexer.Tokenize(text, opts.Query.lexical())
	if !opts.Spaces {
		kept := tokens[:0]
		for _, tok := range tokens {
			if tok.Type != lexer.Space {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}
	if warnings == nil {
		warnings = []diag.Diagnostic{}
	}
	formatter.VerboseLog("Tokenized %d rune(s) into %d token(s)", len([]rune(text)), len(tokens))

	if formatter.Format == "json" {
		return formatter.Success(TokensOutput{Query: text, Tokens: tokens, Warnings: warnings})
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BEGIN\tEND\tTYPE\tKIND\tVALUE")
	for _, tok := range tokens {
		kind := string(tok.Kind)
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%q\n", tok.Begin, tok.End, tok.Type, kind, tok.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, d := range warnings {
		fmt.Fprintln(formatter.Writer)
		writeDiagnostic(formatter.Writer, text, d)
	}
	return nil
}
