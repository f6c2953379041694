package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
)

// DialectOptions holds flags for the dialect command.
type DialectOptions struct {
	*RootOptions
	Overlay string
}

// FieldInfo describes one filter field.
type FieldInfo struct {
	Name      string       `json:"name"`
	Aliases   []string     `json:"aliases,omitempty"`
	Type      string       `json:"type"`
	Source    bool         `json:"source,omitempty"`
	Relations []ast.Family `json:"relations"`
	Enum      []string     `json:"enum,omitempty"`
}

// SortInfo describes one sort key.
type SortInfo struct {
	Key     string   `json:"key"`
	Aliases []string `json:"aliases,omitempty"`
	Source  bool     `json:"source,omitempty"`
}

// DialectInfo is the dialect command's JSON payload for one dialect.
type DialectInfo struct {
	Name        dialect.Name       `json:"name"`
	DefaultKind queryir.MetaKind   `json:"default_kind"`
	MetaKinds   []queryir.MetaKind `json:"meta_kinds"`
	Fields      []FieldInfo        `json:"fields"`
	Sorts       []SortInfo         `json:"sorts"`
}

// NewDialectCommand creates the dialect command.
func NewDialectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DialectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dialect [name]",
		Short: "List dialects or describe one",
		Long: `Without arguments, list the built-in dialects. With a name, print the
dialect's fields, sort keys and meta kinds, after applying --overlay.

Examples:
  hql dialect
  hql dialect image
  hql dialect book --overlay registry.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialect(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Overlay, "overlay", "", "YAML or CUE dialect overlay")

	return cmd
}

func runDialect(opts *DialectOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if len(args) == 0 {
		names := dialect.Names()
		if formatter.Format == "json" {
			return formatter.Success(names)
		}
		for _, n := range names {
			fmt.Fprintln(formatter.Writer, n)
		}
		return nil
	}

	q := QueryOptions{Dialect: args[0], Overlay: opts.Overlay}
	d, err := q.dialect()
	if err != nil {
		return commandError(formatter, ErrCodeDialect, err.Error())
	}

	info := describeDialect(d)
	if formatter.Format == "json" {
		return formatter.Success(info)
	}
	return writeDialect(formatter, info)
}

func describeDialect(d *dialect.Dialect) DialectInfo {
	info := DialectInfo{
		Name:        d.Name,
		DefaultKind: d.DefaultKind,
		MetaKinds:   d.MetaKinds,
		Fields:      make([]FieldInfo, 0, len(d.Fields)),
		Sorts:       make([]SortInfo, 0, len(d.Sorts)),
	}
	for _, f := range d.Fields {
		relations := f.Families()
		if relations == nil {
			relations = []ast.Family{}
		}
		info.Fields = append(info.Fields, FieldInfo{
			Name:      f.Name,
			Aliases:   f.Aliases,
			Type:      string(f.Type),
			Source:    f.Source,
			Relations: relations,
			Enum:      f.EnumValues(),
		})
	}
	for _, s := range d.Sorts {
		info.Sorts = append(info.Sorts, SortInfo{Key: s.Key, Aliases: s.Aliases, Source: s.Source})
	}
	return info
}

func writeDialect(formatter *OutputFormatter, info DialectInfo) error {
	w := formatter.Writer
	fmt.Fprintf(w, "Dialect: %s (default kind %s)\n", info.Name, info.DefaultKind)

	kinds := make([]string, len(info.MetaKinds))
	for i, k := range info.MetaKinds {
		kinds[i] = string(k)
	}
	fmt.Fprintf(w, "Meta kinds: %s\n\n", strings.Join(kinds, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tALIASES\tTYPE\tRELATIONS\tENUM")
	for _, f := range info.Fields {
		name := f.Name
		if f.Source {
			name = "^" + name
		}
		relations := make([]string, len(f.Relations))
		for i, r := range f.Relations {
			relations[i] = string(r)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, dash(f.Aliases), f.Type, dash(relations), dash(f.Enum))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SORT\tALIASES")
	for _, s := range info.Sorts {
		key := s.Key
		if s.Source {
			key = "^" + key
		}
		fmt.Fprintf(tw, "%s\t%s\n", key, dash(s.Aliases))
	}
	return tw.Flush()
}

func dash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}
