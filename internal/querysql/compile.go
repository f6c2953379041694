// Package querysql compiles a QueryPlan into parameterized SQLite SQL.
//
// Only the parts of a plan that map onto columns are compiled: filter groups,
// comment elements (when the schema names a comment column) and sorts. Tag,
// author, topic, source tag and name elements need a tag index to resolve,
// so they are handed back to the caller as unresolved.
//
// Values are always bound as ? parameters, never interpolated. Every query
// ends with the schema's id column as a tiebreaker so row order is
// deterministic.
package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/hql/internal/queryir"
)

// Schema maps plan fields onto a SQLite table.
type Schema struct {
	// Table is the table to select from.
	Table string

	// Columns renames plan fields. Fields not listed use their own name.
	Columns map[string]string

	// Comment is the column searched by comment elements. Empty leaves
	// comment elements unresolved.
	Comment string

	// ID is the tiebreaker column. Defaults to "id".
	ID string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLCompiler compiles plans against a fixed schema.
type SQLCompiler struct {
	schema Schema
}

// NewSQLCompiler creates a compiler for schema.
func NewSQLCompiler(schema Schema) *SQLCompiler {
	if schema.ID == "" {
		schema.ID = "id"
	}
	return &SQLCompiler{schema: schema}
}

// Compile converts plan to a SELECT statement and its parameters. Elements
// that cannot be expressed in SQL are returned as unresolved, in plan order.
func (c *SQLCompiler) Compile(plan *queryir.QueryPlan) (sql string, params []any, unresolved []queryir.MetaElement, err error) {
	if res := queryir.Validate(plan); !res.Valid {
		return "", nil, nil, fmt.Errorf("invalid plan: %s", strings.Join(res.Problems, "; "))
	}
	table, err := ident(c.schema.Table)
	if err != nil {
		return "", nil, nil, fmt.Errorf("table: %w", err)
	}

	var where []string
	for i, g := range plan.Filters {
		clause, args, err := c.compileGroup(g)
		if err != nil {
			return "", nil, nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		where = append(where, clause)
		params = append(params, args...)
	}

	for _, e := range plan.Elements {
		if e.Kind != queryir.MetaComment || c.schema.Comment == "" {
			unresolved = append(unresolved, e)
			continue
		}
		clause, args, err := c.compileComment(e)
		if err != nil {
			return "", nil, nil, fmt.Errorf("comment: %w", err)
		}
		where = append(where, clause)
		params = append(params, args...)
	}

	order, err := c.orderBy(plan.Sorts)
	if err != nil {
		return "", nil, nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(order)
	return sb.String(), params, unresolved, nil
}

func (c *SQLCompiler) column(field string) (string, error) {
	if col, ok := c.schema.Columns[field]; ok {
		field = col
	}
	return ident(field)
}

func ident(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return name, nil
}

// compileGroup ORs the group's filters and negates the result for an
// excluded group.
func (c *SQLCompiler) compileGroup(g queryir.FilterGroup) (string, []any, error) {
	var parts []string
	var params []any
	for _, f := range g.Filters {
		sql, args, err := c.compileFilter(f)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, args...)
	}
	clause := "(" + strings.Join(parts, " OR ") + ")"
	if g.Exclude {
		clause = "NOT " + clause
	}
	return clause, params, nil
}

func (c *SQLCompiler) compileFilter(f queryir.Filter) (string, []any, error) {
	col, err := c.column(f.FieldName())
	if err != nil {
		return "", nil, err
	}

	switch filter := f.(type) {
	case queryir.Equal:
		params := make([]any, 0, len(filter.Values))
		for _, v := range filter.Values {
			p, err := valueToParam(v)
			if err != nil {
				return "", nil, err
			}
			params = append(params, p)
		}
		if len(params) == 1 {
			return col + " = ?", params, nil
		}
		return col + " IN (" + placeholders(len(params)) + ")", params, nil

	case queryir.Match:
		var parts []string
		var params []any
		for _, v := range filter.Values {
			switch val := v.(type) {
			case queryir.StringValue:
				parts = append(parts, col+` LIKE ? ESCAPE '\'`)
				params = append(params, "%"+escapeLike(val.Value)+"%")
			case queryir.PatternNumberValue:
				parts = append(parts, "CAST("+col+" AS TEXT) LIKE ?")
				params = append(params, patternToLike(val.Pattern))
			default:
				return "", nil, fmt.Errorf("cannot match %s with %T", col, v)
			}
		}
		return "(" + strings.Join(parts, " OR ") + ")", params, nil

	case queryir.Range:
		var parts []string
		var params []any
		if filter.From != nil {
			p, err := valueToParam(filter.From)
			if err != nil {
				return "", nil, err
			}
			op := " > ?"
			if filter.IncludeFrom {
				op = " >= ?"
			}
			parts = append(parts, col+op)
			params = append(params, p)
		}
		if filter.To != nil {
			p, err := valueToParam(filter.To)
			if err != nil {
				return "", nil, err
			}
			op := " < ?"
			if filter.IncludeTo {
				op = " <= ?"
			}
			parts = append(parts, col+op)
			params = append(params, p)
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil

	case queryir.Flag:
		return col + " <> 0", nil, nil

	default:
		return "", nil, fmt.Errorf("unsupported filter type: %T", f)
	}
}

// compileComment matches any of the element's values as a substring of the
// comment column.
func (c *SQLCompiler) compileComment(e queryir.MetaElement) (string, []any, error) {
	col, err := ident(c.schema.Comment)
	if err != nil {
		return "", nil, err
	}
	var parts []string
	var params []any
	for _, v := range e.Values {
		single, ok := v.(queryir.SingleValue)
		if !ok {
			return "", nil, fmt.Errorf("unsupported comment value %T", v)
		}
		parts = append(parts, col+` LIKE ? ESCAPE '\'`)
		params = append(params, "%"+escapeLike(single.Value.Value)+"%")
	}
	clause := "(" + strings.Join(parts, " OR ") + ")"
	if e.Exclude {
		clause = "NOT " + clause
	}
	return clause, params, nil
}

// orderBy renders the plan's sorts followed by the id tiebreaker, which is
// skipped when the plan already sorts by id.
func (c *SQLCompiler) orderBy(sorts []queryir.Sort) (string, error) {
	id, err := ident(c.schema.ID)
	if err != nil {
		return "", fmt.Errorf("id column: %w", err)
	}
	var parts []string
	hasID := false
	for _, s := range sorts {
		col, err := c.column(s.Key)
		if err != nil {
			return "", fmt.Errorf("sort: %w", err)
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
		hasID = hasID || col == id
	}
	if !hasID {
		parts = append(parts, id+" ASC COLLATE BINARY")
	}
	return strings.Join(parts, ", "), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// patternToLike turns a number pattern into a LIKE pattern: '?' is one
// digit and '*' any run of digits.
func patternToLike(p string) string {
	return strings.NewReplacer("?", "_", "*", "%").Replace(p)
}

// valueToParam converts a filter value to a SQLite parameter. Dates bind as
// ISO-8601 text, which SQLite compares in calendar order.
func valueToParam(v queryir.FilterValue) (any, error) {
	switch val := v.(type) {
	case queryir.StringValue:
		return val.Value, nil
	case queryir.NumberValue:
		return val.Value, nil
	case queryir.DateValue:
		return val.Value.String(), nil
	case queryir.SizeValue:
		return val.Bytes, nil
	case queryir.PatternNumberValue:
		return nil, fmt.Errorf("pattern %q cannot be used as SQL parameter directly", val.Pattern)
	default:
		return nil, fmt.Errorf("unsupported filter value type for SQL parameter: %T", v)
	}
}
