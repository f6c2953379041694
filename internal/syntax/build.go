// Package syntax builds canonical LR(1) shift/reduce/goto tables from a
// static grammar description.
//
// Build is a pure function of its grammar. Construction is far more
// expensive than a parse, so callers build once and share the resulting
// Table, which is read-only.
//
// Ambiguity is a programming error: if two actions claim the same cell,
// Build panics with the conflicting expressions instead of picking one.
package syntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const acceptHead = "$accept"

// item is an LR(1) item: expression, dot position and lookahead terminal.
type item struct {
	expr, dot, look int
}

type expression struct {
	head int
	body []int
}

type builder struct {
	symbols    []string
	symbolID   map[string]int
	isTerminal []bool
	exprs      []expression
	byHead     map[int][]int
	first      map[int]map[int]bool
	augmented  int
	end        int
}

// Build constructs the table for grammar. The head of grammar[0] is the
// start symbol. Expressions keep their index as id in Reduce actions.
func Build(grammar []ExpandExpression) *Table {
	if len(grammar) == 0 {
		panic("syntax: empty grammar")
	}
	b := newBuilder(grammar)
	states, transitions := b.collection()
	return b.table(grammar, states, transitions)
}

func newBuilder(grammar []ExpandExpression) *builder {
	heads := make(map[string]bool)
	for i, e := range grammar {
		if len(e.Body) == 0 {
			panic(fmt.Sprintf("syntax: expression %d (%s) has an empty body", i, e.Head))
		}
		heads[e.Head] = true
	}

	var terminals, nonterminals []string
	seen := make(map[string]bool)
	for _, e := range grammar {
		for _, sym := range append([]string{e.Head}, e.Body...) {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			if heads[sym] {
				nonterminals = append(nonterminals, sym)
			} else {
				terminals = append(terminals, sym)
			}
		}
	}
	sort.Strings(terminals)
	sort.Strings(nonterminals)
	terminals = append(terminals, EndSymbol)

	b := &builder{
		symbolID: make(map[string]int),
		byHead:   make(map[int][]int),
		first:    make(map[int]map[int]bool),
	}
	for _, sym := range terminals {
		b.addSymbol(sym, true)
	}
	for _, sym := range nonterminals {
		b.addSymbol(sym, false)
	}
	b.end = b.symbolID[EndSymbol]
	accept := b.addSymbol(acceptHead, false)

	for _, e := range grammar {
		body := make([]int, len(e.Body))
		for i, sym := range e.Body {
			body[i] = b.symbolID[sym]
		}
		b.addExpression(b.symbolID[e.Head], body)
	}
	b.augmented = b.addExpression(accept, []int{b.symbolID[grammar[0].Head]})

	b.computeFirst()
	return b
}

func (b *builder) addSymbol(name string, terminal bool) int {
	id := len(b.symbols)
	b.symbols = append(b.symbols, name)
	b.isTerminal = append(b.isTerminal, terminal)
	b.symbolID[name] = id
	return id
}

func (b *builder) addExpression(head int, body []int) int {
	id := len(b.exprs)
	b.exprs = append(b.exprs, expression{head: head, body: body})
	b.byHead[head] = append(b.byHead[head], id)
	return id
}

// computeFirst fills FIRST sets for nonterminals. Bodies are never empty,
// so FIRST of a body is FIRST of its first symbol.
func (b *builder) computeFirst() {
	for id, terminal := range b.isTerminal {
		if !terminal {
			b.first[id] = make(map[int]bool)
		}
	}
	for changed := true; changed; {
		changed = false
		for _, e := range b.exprs {
			for t := range b.firstOf(e.body[0]) {
				if !b.first[e.head][t] {
					b.first[e.head][t] = true
					changed = true
				}
			}
		}
	}
}

func (b *builder) firstOf(sym int) map[int]bool {
	if b.isTerminal[sym] {
		return map[int]bool{sym: true}
	}
	return b.first[sym]
}

// closure adds, until a fixpoint, every item reachable by expanding the
// nonterminal after a dot.
func (b *builder) closure(kernel []item) []item {
	set := make(map[item]bool, len(kernel))
	queue := make([]item, 0, len(kernel))
	for _, it := range kernel {
		if !set[it] {
			set[it] = true
			queue = append(queue, it)
		}
	}

	for len(queue) > 0 {
		it := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		body := b.exprs[it.expr].body
		if it.dot >= len(body) || b.isTerminal[body[it.dot]] {
			continue
		}
		var looks map[int]bool
		if it.dot+1 < len(body) {
			looks = b.firstOf(body[it.dot+1])
		} else {
			looks = map[int]bool{it.look: true}
		}
		for _, exprID := range b.byHead[body[it.dot]] {
			for look := range looks {
				next := item{expr: exprID, dot: 0, look: look}
				if !set[next] {
					set[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	out := make([]item, 0, len(set))
	for it := range set {
		out = append(out, it)
	}
	sortItems(out)
	return out
}

// gotoSet advances every item of items over sym and closes the result.
func (b *builder) gotoSet(items []item, sym int) []item {
	var kernel []item
	for _, it := range items {
		body := b.exprs[it.expr].body
		if it.dot < len(body) && body[it.dot] == sym {
			kernel = append(kernel, item{expr: it.expr, dot: it.dot + 1, look: it.look})
		}
	}
	if len(kernel) == 0 {
		return nil
	}
	return b.closure(kernel)
}

// collection builds the canonical collection of item sets. State 0 is the
// closure of the augmented start item.
func (b *builder) collection() ([][]item, []map[int]int) {
	start := b.closure([]item{{expr: b.augmented, dot: 0, look: b.end}})
	states := [][]item{start}
	index := map[string]int{itemSetKey(start): 0}
	var transitions []map[int]int

	for s := 0; s < len(states); s++ {
		trans := make(map[int]int)
		for _, sym := range b.nextSymbols(states[s]) {
			next := b.gotoSet(states[s], sym)
			key := itemSetKey(next)
			id, ok := index[key]
			if !ok {
				id = len(states)
				states = append(states, next)
				index[key] = id
			}
			trans[sym] = id
		}
		transitions = append(transitions, trans)
	}
	return states, transitions
}

func (b *builder) nextSymbols(items []item) []int {
	seen := make(map[int]bool)
	var out []int
	for _, it := range items {
		body := b.exprs[it.expr].body
		if it.dot < len(body) && !seen[body[it.dot]] {
			seen[body[it.dot]] = true
			out = append(out, body[it.dot])
		}
	}
	sort.Ints(out)
	return out
}

func (b *builder) table(grammar []ExpandExpression, states [][]item, transitions []map[int]int) *Table {
	t := &Table{
		expressions: append([]ExpandExpression(nil), grammar...),
		actions:     make([]map[string]Action, len(states)),
		gotos:       make([]map[string]int, len(states)),
	}
	for id, name := range b.symbols {
		switch {
		case name == acceptHead:
		case b.isTerminal[id]:
			t.terminals = append(t.terminals, name)
		default:
			t.nonterminals = append(t.nonterminals, name)
		}
	}

	for s, items := range states {
		actions := make(map[string]Action)
		gotos := make(map[string]int)

		for sym, next := range transitions[s] {
			name := b.symbols[sym]
			if b.isTerminal[sym] {
				b.setAction(actions, s, name, Action{Kind: Shift, Target: next})
			} else {
				gotos[name] = next
			}
		}
		for _, it := range items {
			if it.dot < len(b.exprs[it.expr].body) {
				continue
			}
			look := b.symbols[it.look]
			if it.expr == b.augmented {
				b.setAction(actions, s, look, Action{Kind: Accept})
			} else {
				b.setAction(actions, s, look, Action{Kind: Reduce, Target: it.expr})
			}
		}

		t.actions[s] = actions
		t.gotos[s] = gotos
	}
	return t
}

func (b *builder) setAction(actions map[string]Action, state int, sym string, a Action) {
	existing, ok := actions[sym]
	if !ok || existing == a {
		actions[sym] = a
		return
	}
	panic(fmt.Sprintf("syntax: conflict in state %d on %q: %s (%s) vs %s (%s)",
		state, sym, existing, b.describe(existing), a, b.describe(a)))
}

func (b *builder) describe(a Action) string {
	switch a.Kind {
	case Reduce:
		e := b.exprs[a.Target]
		names := make([]string, len(e.body))
		for i, sym := range e.body {
			names[i] = b.symbols[sym]
		}
		return b.symbols[e.head] + " -> " + strings.Join(names, " ")
	case Shift:
		return "shift"
	default:
		return "accept"
	}
}

func sortItems(items []item) {
	sort.Slice(items, func(i, j int) bool {
		a, c := items[i], items[j]
		if a.expr != c.expr {
			return a.expr < c.expr
		}
		if a.dot != c.dot {
			return a.dot < c.dot
		}
		return a.look < c.look
	})
}

func itemSetKey(items []item) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(strconv.Itoa(it.expr))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.dot))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.look))
		sb.WriteByte(';')
	}
	return sb.String()
}
