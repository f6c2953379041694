// Package grammar turns a token stream into an HQL query tree.
//
// Parse drives a shift/reduce automaton over a syntax.Table built from
// Expressions. Each reduction builds the query-tree node for its grammar
// expression. Space tokens are dropped before parsing; spans still refer to
// the original text, so "a : b" and "a:b" differ only in spans.
//
// The table is expensive to build and read-only afterwards. DefaultTable
// builds it once per process and is safe for concurrent use; every Parse
// call owns its own stacks.
package grammar

import (
	"sort"
	"sync"

	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/lexer"
	"github.com/roach88/hql/internal/syntax"
)

// DefaultTable returns the shared HQL syntax table, building it on first use.
var DefaultTable = sync.OnceValue(func() *syntax.Table {
	return syntax.Build(Expressions())
})

type parser struct {
	warnings []diag.Diagnostic
}

func (p *parser) warn(d diag.Diagnostic) {
	p.warnings = append(p.warnings, d)
}

// Parse runs the automaton over tokens. On success it returns the root and
// any grammar warnings. On failure root is nil and errs holds a single
// UnexpectedToken; warnings collected before the failure are still returned.
//
// Empty input, or input with only spaces, parses to an empty root.
func Parse(tokens []lexer.Token, table *syntax.Table) (root *ast.Root, warnings, errs []diag.Diagnostic) {
	end := 0
	var input []lexer.Token
	for _, tok := range tokens {
		end = max(end, tok.End)
		if tok.Type != lexer.Space {
			input = append(input, tok)
		}
	}
	if len(input) == 0 {
		return &ast.Root{Span: ast.Span{Begin: 0, End: end}, Items: []ast.SequenceItem{}}, nil, nil
	}

	p := &parser{}
	states := []int{0}
	var values []ast.Node
	pos := 0

	for {
		terminal, leaf := syntax.EndSymbol, ast.Node(nil)
		if pos < len(input) {
			terminal, leaf = terminalOf(input[pos])
		}
		state := states[len(states)-1]

		action, ok := table.Action(state, terminal)
		if !ok {
			span := ast.Span{Begin: end, End: end}
			if leaf != nil {
				span = leaf.Pos()
			}
			return nil, p.warnings, []diag.Diagnostic{unexpected(input, pos, span, table.Expected(state))}
		}

		switch action.Kind {
		case syntax.Shift:
			states = append(states, action.Target)
			values = append(values, leaf)
			pos++

		case syntax.Reduce:
			r := rules[action.Target]
			n := len(r.body)
			args := values[len(values)-n:]
			span := ast.Span{Begin: args[0].Pos().Begin, End: args[n-1].Pos().End}
			node := r.reduce(p, span, append([]ast.Node(nil), args...))

			values = values[:len(values)-n]
			states = states[:len(states)-n]
			next, ok := table.Goto(states[len(states)-1], r.head)
			if !ok {
				panic("grammar: missing goto for " + r.head)
			}
			states = append(states, next)
			values = append(values, node)

		case syntax.Accept:
			return values[0].(*ast.Root), p.warnings, nil
		}
	}
}

// terminalOf maps a token to its grammar terminal and shifted leaf.
func terminalOf(tok lexer.Token) (string, ast.Node) {
	span := ast.Span{Begin: tok.Begin, End: tok.End}
	if tok.Type == lexer.Symbol {
		return tok.Value, symbol{Span: span, Value: tok.Value}
	}
	return StrTerminal, ast.Str{Span: span, Value: tok.Value, Precise: tok.Kind.Precise()}
}

func unexpected(input []lexer.Token, pos int, span ast.Span, expected []string) diag.Diagnostic {
	found := "end of input"
	if pos < len(input) {
		found = input[pos].String()
	}
	names := make([]string, len(expected))
	for i, e := range expected {
		switch e {
		case syntax.EndSymbol:
			names[i] = "end of input"
		case StrTerminal:
			names[i] = "string"
		default:
			names[i] = "'" + e + "'"
		}
	}
	sort.Strings(names)
	return diag.New(diag.UnexpectedToken, span.Begin, span.End, map[string]any{
		"found":    found,
		"expected": names,
	})
}
