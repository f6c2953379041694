package grammar

import (
	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/syntax"
)

// StrTerminal is the terminal every character sequence maps to. Symbols
// map to their own text.
const StrTerminal = "str"

// rule is one grammar expression and the node its reduction builds. span
// covers the reduced children.
type rule struct {
	head   string
	body   []string
	reduce func(p *parser, span ast.Span, args []ast.Node) ast.Node
}

// symbol is a shifted symbol token.
type symbol struct {
	ast.Span
	Value string
}

// Intermediate list nodes that never reach the final tree.
type (
	itemList struct {
		ast.Span
		items []ast.SequenceItem
	}
	sfpList struct {
		ast.Span
		sfps []ast.SFP
	}
	sortSeq struct {
		ast.Span
		items []ast.SortItem
	}
	collItems struct {
		ast.Span
		items []ast.StrList
	}
	annoPrefixes struct {
		ast.Span
		values []string
	}
	annoStrs struct {
		ast.Span
		values []ast.StrList
	}
)

// rules is the HQL grammar. The index of a rule is its expression id in the
// syntax table; rules[0].head is the start symbol.
var rules = []rule{
	{"Root", []string{"Items"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return &ast.Root{Span: span, Items: a[0].(itemList).items}
	}},
	{"Items", []string{"Item"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return itemList{Span: span, items: []ast.SequenceItem{a[0].(ast.SequenceItem)}}
	}},
	{"Items", []string{"Items", "Item"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		l := a[0].(itemList)
		return itemList{Span: span, items: append(l.items, a[1].(ast.SequenceItem))}
	}},

	{"Item", []string{"Body"}, item(false, false)},
	{"Item", []string{"-", "Body"}, item(true, false)},
	{"Item", []string{"^", "Body"}, item(false, true)},
	{"Item", []string{"-", "^", "Body"}, item(true, true)},
	{"Item", []string{"^", "-", "Body"}, item(true, true)},

	{"Body", []string{"Element"}, first},
	{"Body", []string{"Annotation"}, first},

	{"Element", []string{"SFPs"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.Element{Span: span, SFPs: a[0].(sfpList).sfps}
	}},
	{"Element", []string{"Prefix", "SFPs"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.Element{Span: span, Prefix: a[0].(symbol).Value, SFPs: a[1].(sfpList).sfps}
	}},
	{"Prefix", []string{"@"}, first},
	{"Prefix", []string{"#"}, first},
	{"Prefix", []string{"$"}, first},

	{"SFPs", []string{"SFP"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return sfpList{Span: span, sfps: []ast.SFP{a[0].(ast.SFP)}}
	}},
	{"SFPs", []string{"SFPs", "|", "SFP"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		l := a[0].(sfpList)
		return sfpList{Span: span, sfps: append(l.sfps, a[2].(ast.SFP))}
	}},

	{"SFP", []string{"StrList"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.SFP{Span: span, Subject: a[0].(ast.StrList)}
	}},
	{"SFP", []string{"StrList", ":", "Predicative"}, relation},
	{"SFP", []string{"StrList", "~", "StrList"}, relation},
	{"SFP", []string{"StrList", "Cmp", "StrList"}, relation},
	{"SFP", []string{"StrList", "~+"}, relation},
	{"SFP", []string{"StrList", "~-"}, relation},
	{"Cmp", []string{">"}, first},
	{"Cmp", []string{"<"}, first},
	{"Cmp", []string{">="}, first},
	{"Cmp", []string{"<="}, first},

	{"Predicative", []string{"StrList"}, first},
	{"Predicative", []string{"SortList"}, first},
	{"Predicative", []string{"Range"}, first},
	{"Predicative", []string{"Collection"}, first},

	{"StrList", []string{StrTerminal}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.StrList{Span: span, Items: []ast.Str{a[0].(ast.Str)}}
	}},
	{"StrList", []string{"StrList", ".", StrTerminal}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		l := a[0].(ast.StrList)
		return ast.StrList{Span: span, Items: append(l.Items, a[2].(ast.Str))}
	}},

	{"SortList", []string{"SortItemP"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.SortList{Span: span, Items: []ast.SortItem{a[0].(ast.SortItem)}}
	}},
	{"SortList", []string{"SortSeq"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.SortList{Span: span, Items: a[0].(sortSeq).items}
	}},
	{"SortSeq", []string{"SortItem", ",", "SortItem"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return sortSeq{Span: span, items: []ast.SortItem{a[0].(ast.SortItem), a[2].(ast.SortItem)}}
	}},
	{"SortSeq", []string{"SortSeq", ",", "SortItem"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		l := a[0].(sortSeq)
		return sortSeq{Span: span, items: append(l.items, a[2].(ast.SortItem))}
	}},
	{"SortItem", []string{"SortItemP"}, first},
	{"SortItem", []string{StrTerminal}, sortItem},
	{"SortItemP", []string{"+", StrTerminal}, sortItem},
	{"SortItemP", []string{"-", StrTerminal}, sortItem},
	{"SortItemP", []string{"^", StrTerminal}, sortItem},
	{"SortItemP", []string{"+", "^", StrTerminal}, sortItem},
	{"SortItemP", []string{"-", "^", StrTerminal}, sortItem},
	{"SortItemP", []string{"^", "+", StrTerminal}, sortItem},
	{"SortItemP", []string{"^", "-", StrTerminal}, sortItem},

	{"Range", []string{"Open", "StrList", ",", "StrList", "Close"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		from, to := a[1].(ast.StrList), a[3].(ast.StrList)
		return newRange(span, a[0], a[4], &from, &to)
	}},
	{"Range", []string{"Open", ",", "StrList", "Close"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		to := a[2].(ast.StrList)
		return newRange(span, a[0], a[3], nil, &to)
	}},
	{"Range", []string{"Open", "StrList", ",", "Close"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		from := a[1].(ast.StrList)
		return newRange(span, a[0], a[3], &from, nil)
	}},
	{"Open", []string{"["}, first},
	{"Open", []string{"("}, first},
	{"Close", []string{"]"}, first},
	{"Close", []string{")"}, first},

	{"Collection", []string{"{", "}"}, func(_ *parser, span ast.Span, _ []ast.Node) ast.Node {
		return ast.Collection{Span: span, Items: []ast.StrList{}}
	}},
	{"Collection", []string{"{", "CollItems", "}"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.Collection{Span: span, Items: a[1].(collItems).items}
	}},
	{"CollItems", []string{"StrList"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return collItems{Span: span, items: []ast.StrList{a[0].(ast.StrList)}}
	}},
	{"CollItems", []string{"CollItems", ",", "StrList"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		l := a[0].(collItems)
		return collItems{Span: span, items: append(l.items, a[2].(ast.StrList))}
	}},

	{"Annotation", []string{"[", "AnnoStrs", "]"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.Annotation{Span: span, Values: a[1].(annoStrs).values}
	}},
	{"Annotation", []string{"[", "AnnoPrefixes", "AnnoStrs", "]"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.Annotation{Span: span, Prefixes: a[1].(annoPrefixes).values, Values: a[2].(annoStrs).values}
	}},
	{"AnnoPrefixes", []string{"Prefix"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return annoPrefixes{Span: span, values: []string{a[0].(symbol).Value}}
	}},
	{"AnnoPrefixes", []string{"AnnoPrefixes", "Prefix"}, func(p *parser, span ast.Span, a []ast.Node) ast.Node {
		l, s := a[0].(annoPrefixes), a[1].(symbol)
		for _, v := range l.values {
			if v == s.Value {
				p.warn(diag.New(diag.DuplicatedAnnotationPrefix, s.Begin, s.End, map[string]any{"symbol": s.Value}))
				return annoPrefixes{Span: span, values: l.values}
			}
		}
		return annoPrefixes{Span: span, values: append(l.values, s.Value)}
	}},
	{"AnnoStrs", []string{"StrList"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return annoStrs{Span: span, values: []ast.StrList{a[0].(ast.StrList)}}
	}},
	{"AnnoStrs", []string{"AnnoStrs", "|", "StrList"}, func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		l := a[0].(annoStrs)
		return annoStrs{Span: span, values: append(l.values, a[2].(ast.StrList))}
	}},
}

// Expressions returns the grammar as syntax table input.
func Expressions() []syntax.ExpandExpression {
	out := make([]syntax.ExpandExpression, len(rules))
	for i, r := range rules {
		out[i] = syntax.ExpandExpression{Head: r.head, Body: r.body}
	}
	return out
}

func first(_ *parser, _ ast.Span, a []ast.Node) ast.Node {
	return a[0]
}

func item(minus, source bool) func(*parser, ast.Span, []ast.Node) ast.Node {
	return func(_ *parser, span ast.Span, a []ast.Node) ast.Node {
		return ast.SequenceItem{
			Span:   span,
			Minus:  minus,
			Source: source,
			Body:   a[len(a)-1].(ast.Body),
		}
	}
}

// relation builds an SFP from StrList, family symbol and optional value.
func relation(_ *parser, span ast.Span, a []ast.Node) ast.Node {
	sfp := ast.SFP{
		Span:    span,
		Subject: a[0].(ast.StrList),
		Family:  ast.Family(a[1].(symbol).Value),
	}
	if len(a) == 3 {
		sfp.Predicative = a[2].(ast.Predicative)
	}
	return sfp
}

// sortItem builds a SortItem from its sign and source symbols and the str.
func sortItem(_ *parser, span ast.Span, a []ast.Node) ast.Node {
	it := ast.SortItem{Span: span, Value: a[len(a)-1].(ast.Str)}
	for _, n := range a[:len(a)-1] {
		switch n.(symbol).Value {
		case "-":
			it.Desc = true
		case "^":
			it.Source = true
		}
	}
	return it
}

func newRange(span ast.Span, open, closing ast.Node, from, to *ast.StrList) ast.Range {
	return ast.Range{
		Span:        span,
		From:        from,
		To:          to,
		IncludeFrom: open.(symbol).Value == "[",
		IncludeTo:   closing.(symbol).Value == "]",
	}
}
