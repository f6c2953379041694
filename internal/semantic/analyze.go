// Package semantic resolves a query tree against a dialect into a typed
// QueryPlan.
//
// Each sequence item becomes exactly one of:
//   - a sort directive (sort:...), appended to the plan's sorts
//   - a filter group, when every alternative names a dialect field
//   - a meta element (author, topic, tag, source tag, comment or name)
//
// Errors from independent items are collected rather than stopping at the
// first, so a caller can highlight every problem at once. Any error makes
// the whole plan invalid.
package semantic

import (
	"strings"
	"time"

	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
)

// timeNow is the clock used when Options.Today is zero. Tests replace it.
var timeNow = time.Now

// Options configures analysis.
type Options struct {
	// Today anchors dates written without a year. Zero means the current
	// local date.
	Today time.Time
}

type analyzer struct {
	dialect  *dialect.Dialect
	today    queryir.Date
	plan     *queryir.QueryPlan
	sortKeys map[string]bool
	warnings []diag.Diagnostic
	errs     []diag.Diagnostic
}

// Analyze builds the plan for root. When errs is non-empty plan is nil;
// warnings are returned either way.
func Analyze(root *ast.Root, d *dialect.Dialect, opts Options) (plan *queryir.QueryPlan, warnings, errs []diag.Diagnostic) {
	today := opts.Today
	if today.IsZero() {
		today = timeNow()
	}
	a := &analyzer{
		dialect:  d,
		today:    queryir.DateOf(today),
		plan:     queryir.NewQueryPlan(),
		sortKeys: make(map[string]bool),
	}

	for _, item := range root.Items {
		switch body := item.Body.(type) {
		case ast.Annotation:
			a.annotation(item, body)
		case ast.Element:
			a.element(item, body)
		}
	}

	if len(a.errs) > 0 {
		return nil, a.warnings, a.errs
	}
	return a.plan, a.warnings, nil
}

func (a *analyzer) fail(kind diag.Kind, span ast.Span, info map[string]any) {
	a.errs = append(a.errs, diag.New(kind, span.Begin, span.End, info))
}

func (a *analyzer) warn(kind diag.Kind, span ast.Span, info map[string]any) {
	a.warnings = append(a.warnings, diag.New(kind, span.Begin, span.End, info))
}

func (a *analyzer) element(item ast.SequenceItem, el ast.Element) {
	if el.Prefix == "" && isSortDirective(el) {
		a.sortDirective(item, el)
		return
	}

	fields := make([]dialect.Field, len(el.SFPs))
	matched := 0
	for i, sfp := range el.SFPs {
		if f, ok := a.filterField(item, el, sfp); ok {
			fields[i] = f
			matched++
		}
	}

	switch matched {
	case len(el.SFPs):
		a.filterGroup(item, el, fields)
	case 0:
		a.metaElement(item, el)
	default:
		a.fail(diag.FilterCannotMixWithMetaTag, el.Span, nil)
	}
}

// filterField resolves the field sfp filters on. A prefix always means a
// meta tag, and only single-segment subjects name fields.
func (a *analyzer) filterField(item ast.SequenceItem, el ast.Element, sfp ast.SFP) (dialect.Field, bool) {
	if el.Prefix != "" || len(sfp.Subject.Items) != 1 {
		return dialect.Field{}, false
	}
	return a.dialect.Field(sfp.Subject.Items[0].Value, item.Source)
}

// isSortDirective reports whether any alternative of el is sort, sort:...
// or a bare fuzzy "sort" subject.
func isSortDirective(el ast.Element) bool {
	for _, sfp := range el.SFPs {
		s := sfp.Subject
		if len(s.Items) == 1 && !s.Items[0].Precise && strings.EqualFold(s.Items[0].Value, "sort") {
			return true
		}
	}
	return false
}

func (a *analyzer) annotation(item ast.SequenceItem, anno ast.Annotation) {
	if item.Source {
		a.fail(diag.BracketCannotHaveSourceFlag, item.Span, nil)
		return
	}

	values := make([]queryir.MetaValue, len(anno.Values))
	for i, v := range anno.Values {
		values[i] = queryir.SingleValue{Value: metaString(v)}
	}

	if len(anno.Prefixes) == 0 {
		a.plan.Elements = append(a.plan.Elements, queryir.MetaElement{
			Kind:    queryir.MetaComment,
			Exclude: item.Minus,
			Values:  values,
		})
		return
	}

	targets := make([]queryir.MetaKind, 0, len(anno.Prefixes))
	for _, p := range anno.Prefixes {
		kind := prefixKinds[p]
		if !a.dialect.AllowsKind(kind) {
			a.fail(diag.InvalidMetaTagForThisPrefix, anno.Span, map[string]any{"prefix": p})
			return
		}
		targets = append(targets, kind)
	}
	a.plan.Elements = append(a.plan.Elements, queryir.MetaElement{
		Kind:    queryir.MetaName,
		Exclude: item.Minus,
		Values:  values,
		Targets: targets,
	})
}

var prefixKinds = map[string]queryir.MetaKind{
	"@": queryir.MetaAuthor,
	"#": queryir.MetaTopic,
	"$": queryir.MetaTag,
}

func metaString(l ast.StrList) queryir.MetaString {
	return queryir.MetaString{Value: joined(l), Precise: l.Precise()}
}

func address(l ast.StrList) queryir.Address {
	out := make(queryir.Address, len(l.Items))
	for i, s := range l.Items {
		out[i] = queryir.MetaString{Value: s.Value, Precise: s.Precise}
	}
	return out
}
