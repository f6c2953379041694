package syntax

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

// EndSymbol is the synthetic end-of-input terminal.
const EndSymbol = "$end"

// ExpandExpression is one grammar production: Head expands to Body.
// Symbols that never appear as a Head are terminals.
type ExpandExpression struct {
	Head string
	Body []string
}

func (e ExpandExpression) String() string {
	return e.Head + " -> " + strings.Join(e.Body, " ")
}

// ActionKind is the kind of a table action.
type ActionKind int

const (
	Shift ActionKind = iota
	Reduce
	Accept
)

// Action is one cell of the action table. Target is the next state for
// Shift and the expression id for Reduce; it is unused for Accept.
type Action struct {
	Kind   ActionKind
	Target int
}

func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("s%d", a.Target)
	case Reduce:
		return fmt.Sprintf("r%d", a.Target)
	default:
		return "acc"
	}
}

// Table is the shift/reduce/goto table of a grammar. It is immutable after
// Build and safe for concurrent use.
type Table struct {
	expressions  []ExpandExpression
	terminals    []string
	nonterminals []string
	actions      []map[string]Action
	gotos        []map[string]int
}

// Action returns the action for terminal in state.
func (t *Table) Action(state int, terminal string) (Action, bool) {
	if state < 0 || state >= len(t.actions) {
		return Action{}, false
	}
	a, ok := t.actions[state][terminal]
	return a, ok
}

// Goto returns the state reached from state after reducing to nonterminal.
func (t *Table) Goto(state int, nonterminal string) (int, bool) {
	if state < 0 || state >= len(t.gotos) {
		return 0, false
	}
	next, ok := t.gotos[state][nonterminal]
	return next, ok
}

// Expected returns the terminals that have an action in state, sorted.
func (t *Table) Expected(state int) []string {
	if state < 0 || state >= len(t.actions) {
		return nil
	}
	out := make([]string, 0, len(t.actions[state]))
	for sym := range t.actions[state] {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Expression returns the grammar expression with the given id.
func (t *Table) Expression(id int) ExpandExpression {
	return t.expressions[id]
}

// StateCount returns the number of states.
func (t *Table) StateCount() int {
	return len(t.actions)
}

// Terminals returns the terminal alphabet, sorted, followed by EndSymbol.
func (t *Table) Terminals() []string {
	return append([]string(nil), t.terminals...)
}

// NonTerminals returns the nonterminals, sorted.
func (t *Table) NonTerminals() []string {
	return append([]string(nil), t.nonterminals...)
}

// String renders the table with one row per state: s<n> shifts, r<n>
// reduces, acc accepts, and bare numbers in nonterminal columns are gotos.
func (t *Table) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', 0)

	fmt.Fprint(w, "state")
	for _, sym := range t.terminals {
		fmt.Fprintf(w, "\t%s", sym)
	}
	for _, sym := range t.nonterminals {
		fmt.Fprintf(w, "\t%s", sym)
	}
	fmt.Fprintln(w)

	for state := range t.actions {
		fmt.Fprintf(w, "%d", state)
		for _, sym := range t.terminals {
			cell := ""
			if a, ok := t.actions[state][sym]; ok {
				cell = a.String()
			}
			fmt.Fprintf(w, "\t%s", cell)
		}
		for _, sym := range t.nonterminals {
			cell := ""
			if next, ok := t.gotos[state][sym]; ok {
				cell = fmt.Sprint(next)
			}
			fmt.Fprintf(w, "\t%s", cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return sb.String()
}
