package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders the tree as indented text, one node per line. With spans
// false the output depends only on tree shape, so queries that differ only
// in whitespace format identically.
func Format(root *Root, spans bool) string {
	p := &printer{spans: spans}
	p.line(0, root.Span, "root")
	for _, item := range root.Items {
		p.item(1, item)
	}
	return p.sb.String()
}

type printer struct {
	sb    strings.Builder
	spans bool
}

func (p *printer) line(depth int, span Span, format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&p.sb, format, args...)
	if p.spans {
		fmt.Fprintf(&p.sb, " [%d,%d)", span.Begin, span.End)
	}
	p.sb.WriteByte('\n')
}

func (p *printer) item(depth int, item SequenceItem) {
	label := "item"
	if item.Minus {
		label += " minus"
	}
	if item.Source {
		label += " source"
	}
	p.line(depth, item.Span, "%s", label)

	switch b := item.Body.(type) {
	case Element:
		label := "element"
		if b.Prefix != "" {
			label += " " + b.Prefix
		}
		p.line(depth+1, b.Span, "%s", label)
		for _, sfp := range b.SFPs {
			p.sfp(depth+2, sfp)
		}
	case Annotation:
		label := "annotation"
		if len(b.Prefixes) > 0 {
			label += " " + strings.Join(b.Prefixes, "")
		}
		p.line(depth+1, b.Span, "%s", label)
		for _, v := range b.Values {
			p.line(depth+2, v.Span, "%s", strList(v))
		}
	}
}

func (p *printer) sfp(depth int, sfp SFP) {
	if sfp.Family == FamilyNone {
		p.line(depth, sfp.Span, "sfp %s", strList(sfp.Subject))
		return
	}
	p.line(depth, sfp.Span, "sfp %s %s", strList(sfp.Subject), sfp.Family)
	if sfp.Predicative != nil {
		p.predicative(depth+1, sfp.Predicative)
	}
}

func (p *printer) predicative(depth int, pred Predicative) {
	switch v := pred.(type) {
	case StrList:
		p.line(depth, v.Span, "%s", strList(v))
	case SortList:
		p.line(depth, v.Span, "sort")
		for _, it := range v.Items {
			label := "+"
			if it.Desc {
				label = "-"
			}
			if it.Source {
				label += "^"
			}
			p.line(depth+1, it.Span, "%s%s", label, quote(it.Value))
		}
	case Range:
		open, closing := "(", ")"
		if v.IncludeFrom {
			open = "["
		}
		if v.IncludeTo {
			closing = "]"
		}
		from, to := "", ""
		if v.From != nil {
			from = strList(*v.From)
		}
		if v.To != nil {
			to = strList(*v.To)
		}
		p.line(depth, v.Span, "range %s%s,%s%s", open, from, to, closing)
	case Collection:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = strList(it)
		}
		p.line(depth, v.Span, "collection {%s}", strings.Join(parts, ","))
	}
}

func strList(l StrList) string {
	parts := make([]string, len(l.Items))
	for i, s := range l.Items {
		parts[i] = quote(s)
	}
	return strings.Join(parts, ".")
}

func quote(s Str) string {
	if s.Precise {
		return "`" + s.Value + "`"
	}
	return strconv.Quote(s.Value)
}
