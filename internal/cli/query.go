package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/lexer"
)

// QueryOptions holds the flags shared by every command that reads a query.
type QueryOptions struct {
	Dialect         string
	Overlay         string
	ChineseSymbols  bool
	UnderscoreSpace bool
	Today           string
	File            string
}

func addQueryFlags(cmd *cobra.Command, q *QueryOptions) {
	cmd.Flags().StringVarP(&q.Dialect, "dialect", "d", string(dialect.Image), "dialect to resolve fields against")
	cmd.Flags().StringVar(&q.Overlay, "overlay", "", "YAML or CUE dialect overlay")
	cmd.Flags().BoolVar(&q.ChineseSymbols, "chinese-symbols", false, "map full-width punctuation to ASCII symbols")
	cmd.Flags().BoolVar(&q.UnderscoreSpace, "underscore-space", false, "translate '_' to ' ' in unquoted strings")
	cmd.Flags().StringVar(&q.Today, "today", "", "date partial dates are resolved against (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&q.File, "file", "f", "", "read the query from a file ('-' for stdin)")
}

// text returns the query from --file or the joined arguments.
func (q *QueryOptions) text(cmd *cobra.Command, args []string) (string, error) {
	if q.File == "" {
		if len(args) == 0 {
			return "", fmt.Errorf("a query argument or --file is required")
		}
		return strings.Join(args, " "), nil
	}
	if len(args) > 0 {
		return "", fmt.Errorf("--file cannot be combined with a query argument")
	}

	var data []byte
	var err error
	if q.File == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(q.File)
	}
	if err != nil {
		return "", fmt.Errorf("reading query: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (q *QueryOptions) lexical() lexer.Options {
	return lexer.Options{
		ChineseSymbolReflect:       q.ChineseSymbols,
		TranslateUnderscoreToSpace: q.UnderscoreSpace,
	}
}

// today parses --today. The zero time means "now".
func (q *QueryOptions) today() (time.Time, error) {
	if q.Today == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, q.Today)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today %q: want YYYY-MM-DD", q.Today)
	}
	return t, nil
}

// dialect resolves --dialect and applies --overlay.
func (q *QueryOptions) dialect() (*dialect.Dialect, error) {
	d, err := dialect.Lookup(dialect.Name(strings.ToLower(q.Dialect)))
	if err != nil {
		return nil, err
	}
	if q.Overlay == "" {
		return d, nil
	}
	o, err := dialect.LoadOverlay(q.Overlay)
	if err != nil {
		return nil, err
	}
	return d.With(o)
}
