package semantic

import (
	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/queryir"
)

// sortDirective resolves sort:<list>. It must stand alone: one
// alternative, no exclusion and no source flag.
func (a *analyzer) sortDirective(item ast.SequenceItem, el ast.Element) {
	if len(el.SFPs) > 1 || item.Minus {
		a.fail(diag.SortIsIndependent, item.Span, nil)
		return
	}
	if item.Source {
		a.fail(diag.ThisIdentifyCannotHaveSourceFlag, item.Span, map[string]any{"name": "sort"})
		return
	}

	sfp := el.SFPs[0]
	if sfp.Family == ast.FamilyNone {
		a.fail(diag.SortValueRequired, sfp.Span, nil)
		return
	}

	var items []ast.SortItem
	switch pred := sfp.Predicative.(type) {
	case ast.SortList:
		if sfp.Family == ast.FamilyColon {
			items = pred.Items
		}
	case ast.StrList:
		if sfp.Family == ast.FamilyColon && len(pred.Items) == 1 {
			items = []ast.SortItem{{Span: pred.Span, Value: pred.Items[0]}}
		}
	}
	if len(items) == 0 {
		a.fail(diag.SortValueMustBeSortList, sfp.Span, nil)
		return
	}

	var sorts []queryir.Sort
	for _, it := range items {
		key, ok := a.dialect.SortKey(it.Value.Value, it.Source)
		if !ok {
			name := it.Value.Value
			if it.Source {
				name = "^" + name
			}
			a.fail(diag.InvalidSortItem, it.Span, map[string]any{
				"name":  name,
				"valid": a.dialect.SortNames(),
			})
			continue
		}
		if a.sortKeys[key.Key] {
			a.warn(diag.DuplicatedSortItem, it.Span, map[string]any{"name": it.Value.Value})
			continue
		}
		a.sortKeys[key.Key] = true
		sorts = append(sorts, queryir.Sort{Key: key.Key, Desc: it.Desc})
	}
	a.plan.Sorts = append(a.plan.Sorts, sorts...)
}
