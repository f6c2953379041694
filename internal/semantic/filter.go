package semantic

import (
	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
)

// filterGroup resolves an element whose alternatives all name fields. The
// group is dropped when every alternative was an empty collection.
func (a *analyzer) filterGroup(item ast.SequenceItem, el ast.Element, fields []dialect.Field) {
	var filters []queryir.Filter
	ok := true
	for i, sfp := range el.SFPs {
		fs, valid := a.filter(fields[i], sfp)
		ok = ok && valid
		filters = append(filters, fs...)
	}
	if !ok || len(filters) == 0 {
		return
	}
	a.plan.Filters = append(a.plan.Filters, queryir.FilterGroup{
		Exclude: item.Minus,
		Filters: mergeFilters(filters),
	})
}

// filter casts one alternative into sub-filters.
func (a *analyzer) filter(field dialect.Field, sfp ast.SFP) ([]queryir.Filter, bool) {
	name := map[string]any{"field": field.Name}

	if field.Type == dialect.Flag {
		if sfp.Family != ast.FamilyNone {
			a.fail(diag.FilterValueNotRequired, sfp.Span, name)
			return nil, false
		}
		return []queryir.Filter{queryir.Flag{Field: field.Name}}, true
	}
	if sfp.Family == ast.FamilyNone {
		a.fail(diag.FilterValueRequired, sfp.Span, name)
		return nil, false
	}
	if !field.Accepts(sfp.Family) {
		a.fail(diag.UnsupportedFilterRelationSymbol, sfp.Span, map[string]any{
			"field":    field.Name,
			"relation": string(sfp.Family),
		})
		return nil, false
	}

	if sfp.Family.IsComparison() {
		return a.comparison(field, sfp)
	}

	switch pred := sfp.Predicative.(type) {
	case ast.StrList:
		lit, ok := a.cast(field, pred)
		if !ok {
			return nil, false
		}
		return []queryir.Filter{lit.filter(field.Name)}, true

	case ast.Collection:
		var out []queryir.Filter
		ok := true
		for _, v := range pred.Items {
			lit, valid := a.cast(field, v)
			if !valid {
				ok = false
				continue
			}
			out = append(out, lit.filter(field.Name))
		}
		return out, ok

	case ast.Range:
		if !field.Type.Ordered() {
			a.unsupportedShape(field, sfp, "range")
			return nil, false
		}
		return a.rangeFilter(field, pred)

	case ast.SortList:
		a.fail(diag.UnsupportedFilterValueType, pred.Span, map[string]any{
			"field":      field.Name,
			"value_type": "sort list",
		})
	}
	return nil, false
}

func (a *analyzer) unsupportedShape(field dialect.Field, sfp ast.SFP, shape string) {
	a.fail(diag.UnsupportedFilterValueTypeOfRelation, sfp.Span, map[string]any{
		"field":      field.Name,
		"value_type": shape,
		"relation":   string(sfp.Family),
	})
}

// comparison handles > < >= <= as one-sided ranges.
func (a *analyzer) comparison(field dialect.Field, sfp ast.SFP) ([]queryir.Filter, bool) {
	value, ok := sfp.Predicative.(ast.StrList)
	if !ok {
		a.unsupportedShape(field, sfp, "collection")
		return nil, false
	}
	lit, ok := a.castBound(field, value)
	if !ok {
		return nil, false
	}

	lower := sfp.Family == ast.FamilyGreater || sfp.Family == ast.FamilyGreaterEq
	inclusive := sfp.Family == ast.FamilyGreaterEq || sfp.Family == ast.FamilyLessEq
	v, include := lit.bound(lower, inclusive)

	r := queryir.Range{Field: field.Name}
	if lower {
		r.From, r.IncludeFrom = v, include
	} else {
		r.To, r.IncludeTo = v, include
	}
	return []queryir.Filter{r}, true
}

func (a *analyzer) rangeFilter(field dialect.Field, pred ast.Range) ([]queryir.Filter, bool) {
	r := queryir.Range{Field: field.Name}
	ok := true
	if pred.From != nil {
		if lit, valid := a.castBound(field, *pred.From); valid {
			r.From, r.IncludeFrom = lit.bound(true, pred.IncludeFrom)
		} else {
			ok = false
		}
	}
	if pred.To != nil {
		if lit, valid := a.castBound(field, *pred.To); valid {
			r.To, r.IncludeTo = lit.bound(false, pred.IncludeTo)
		} else {
			ok = false
		}
	}
	if !ok {
		return nil, false
	}
	return []queryir.Filter{r}, true
}

// castBound casts a literal used as a range bound. Wildcard patterns other
// than a trailing run of '?' have no order and cannot bound a range.
func (a *analyzer) castBound(field dialect.Field, l ast.StrList) (literal, bool) {
	lit, ok := a.cast(field, l)
	if !ok {
		return literal{}, false
	}
	if lit.fuzzy {
		a.fail(diag.TypeCastError, l.Span, map[string]any{"literal": joined(l), "type": string(field.Type)})
		return literal{}, false
	}
	return lit, true
}

// mergeFilters folds Equal and Match filters on the same field into the
// first of their kind, keeping first-seen order.
func mergeFilters(filters []queryir.Filter) []queryir.Filter {
	type key struct {
		field string
		match bool
	}
	index := make(map[key]int)
	var out []queryir.Filter

	for _, f := range filters {
		switch v := f.(type) {
		case queryir.Equal:
			k := key{v.Field, false}
			if i, ok := index[k]; ok {
				eq := out[i].(queryir.Equal)
				eq.Values = append(eq.Values, v.Values...)
				out[i] = eq
				continue
			}
			index[k] = len(out)
		case queryir.Match:
			k := key{v.Field, true}
			if i, ok := index[k]; ok {
				m := out[i].(queryir.Match)
				m.Values = append(m.Values, v.Values...)
				out[i] = m
				continue
			}
			index[k] = len(out)
		}
		out = append(out, f)
	}
	return out
}
