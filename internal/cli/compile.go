package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hql/internal/compiler"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
	"github.com/roach88/hql/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Query QueryOptions

	SQL           string // table to compile the plan against
	CommentColumn string // column searched by comment elements
	Output        string // output file path
}

// CompileOutput is the compile command's JSON payload.
type CompileOutput struct {
	Query       string             `json:"query"`
	Dialect     dialect.Name       `json:"dialect"`
	Plan        *queryir.QueryPlan `json:"plan,omitempty"`
	Fingerprint string             `json:"fingerprint,omitempty"`
	Warnings    []diag.Diagnostic  `json:"warnings"`
	Errors      []diag.Diagnostic  `json:"errors,omitempty"`
	SQL         *SQLOutput         `json:"sql,omitempty"`
}

// SQLOutput is the plan compiled to SQLite.
type SQLOutput struct {
	Query      string                `json:"query"`
	Params     []any                 `json:"params"`
	Unresolved []queryir.MetaElement `json:"unresolved,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [query...]",
		Short: "Compile a query to a query plan",
		Long: `Compile an HQL query into a typed query plan.

Arguments are joined with spaces to form the query. Diagnostics are printed
under the query with a caret marking the offending span.

Exit codes:
  0 - The query compiled (warnings allowed)
  1 - The query was rejected
  2 - Command error (bad flags, unreadable files, unknown dialect)

Examples:
  hql compile 'pt:2021-01 score>3 -cat sort:-score'
  hql compile --dialect book 'count>10'
  hql compile --sql images --format json 'fav size>1MB'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().StringVar(&opts.SQL, "sql", "", "also compile the plan to SQLite against this table")
	cmd.Flags().StringVar(&opts.CommentColumn, "comment-column", "", "column searched by [comment] elements with --sql")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the plan JSON to a file")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	text, err := opts.Query.text(cmd, args)
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}
	d, err := opts.Query.dialect()
	if err != nil {
		return commandError(formatter, ErrCodeDialect, err.Error())
	}
	today, err := opts.Query.today()
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}

	formatter.VerboseLog("Compiling %q with dialect %s", text, d.Name)
	res := compiler.Compile(text, compiler.Options{
		Dialect: d,
		Lexical: opts.Query.lexical(),
		Today:   today,
		Logger:  cliLogger(formatter),
	})

	out := CompileOutput{
		Query:    text,
		Dialect:  d.Name,
		Plan:     res.Plan,
		Warnings: res.Warnings,
	}

	if !res.OK() {
		out.Errors = res.Errors
		return outputRejected(formatter, out)
	}

	out.Fingerprint, err = queryir.Fingerprint(res.Plan)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	if opts.SQL != "" {
		c := querysql.NewSQLCompiler(querysql.Schema{Table: opts.SQL, Comment: opts.CommentColumn})
		query, params, unresolved, err := c.Compile(res.Plan)
		if err != nil {
			return commandError(formatter, ErrCodeSQL, err.Error())
		}
		if params == nil {
			params = []any{}
		}
		out.SQL = &SQLOutput{Query: query, Params: params, Unresolved: unresolved}
	}

	if opts.Output != "" {
		if err := writePlanToFile(res.Plan, opts.Output); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		formatter.VerboseLog("Wrote plan to %s", opts.Output)
	}

	return outputCompileSuccess(formatter, out)
}

// cliLogger routes compile logs to stderr, at debug level when verbose.
func cliLogger(f *OutputFormatter) *slog.Logger {
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f.GetErrWriter(), &slog.HandlerOptions{Level: level}))
}

func outputCompileSuccess(formatter *OutputFormatter, out CompileOutput) error {
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled (%s)\n", out.Dialect)
	for _, d := range out.Warnings {
		fmt.Fprintln(w)
		writeDiagnostic(w, out.Query, d)
	}

	plan, err := json.MarshalIndent(out.Plan, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPlan:\n%s\n", plan)
	fmt.Fprintf(w, "\nFingerprint: %s\n", out.Fingerprint)

	if out.SQL != nil {
		fmt.Fprintf(w, "\nSQL: %s\n", out.SQL.Query)
		fmt.Fprintf(w, "Params: %v\n", out.SQL.Params)
		if len(out.SQL.Unresolved) > 0 {
			fmt.Fprintf(w, "Unresolved: %d meta element(s) need a tag index\n", len(out.SQL.Unresolved))
		}
	}
	return nil
}

// outputRejected reports a query with errors. Rejection is a validation
// failure (exit code 1), not a command error.
func outputRejected(formatter *OutputFormatter, out CompileOutput) error {
	first := out.Errors[0]
	if formatter.Format == "json" {
		if err := formatter.Error(first.Code, first.Message(), out); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintln(w, "✗ Query rejected")
		all := append(append([]diag.Diagnostic{}, out.Warnings...), out.Errors...)
		for _, d := range diag.Sorted(all) {
			fmt.Fprintln(w)
			writeDiagnostic(w, out.Query, d)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("query rejected with %d error(s)", len(out.Errors)))
}

// writePlanToFile writes the plan as indented JSON.
func writePlanToFile(plan *queryir.QueryPlan, filename string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(filename, data, 0644)
}
