package semantic

import (
	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/queryir"
)

// metaElement resolves an element that names no field. The prefix, or the
// source flag, picks the meta kind; otherwise the dialect default applies.
func (a *analyzer) metaElement(item ast.SequenceItem, el ast.Element) {
	kind, ok := a.metaKind(item, el)
	if !ok {
		return
	}

	var values []queryir.MetaValue
	valid := true
	for _, sfp := range el.SFPs {
		v, ok := a.metaValues(kind, el.Prefix, sfp)
		valid = valid && ok
		values = append(values, v...)
	}
	if !valid || len(values) == 0 {
		return
	}
	a.plan.Elements = append(a.plan.Elements, queryir.MetaElement{
		Kind:    kind,
		Exclude: item.Minus,
		Values:  values,
	})
}

func (a *analyzer) metaKind(item ast.SequenceItem, el ast.Element) (queryir.MetaKind, bool) {
	if el.Prefix != "" {
		if item.Source {
			a.fail(diag.ThisIdentifyCannotHaveSourceFlag, item.Span, map[string]any{"name": el.Prefix})
			return "", false
		}
		kind := prefixKinds[el.Prefix]
		if !a.dialect.AllowsKind(kind) {
			a.fail(diag.InvalidMetaTagForThisPrefix, el.Span, map[string]any{"prefix": el.Prefix})
			return "", false
		}
		return kind, true
	}

	if !item.Source {
		return a.dialect.DefaultKind, true
	}
	if !a.dialect.AllowsKind(queryir.MetaSourceTag) {
		a.fail(diag.ThisIdentifyCannotHaveSourceFlag, item.Span, map[string]any{"name": subjectName(el)})
		return "", false
	}
	for _, sfp := range el.SFPs {
		if len(sfp.Subject.Items) != 1 {
			continue
		}
		name := sfp.Subject.Items[0].Value
		if _, plain := a.dialect.Field(name, false); plain {
			a.fail(diag.ThisIdentifyCannotHaveSourceFlag, sfp.Subject.Span, map[string]any{"name": name})
			return "", false
		}
	}
	return queryir.MetaSourceTag, true
}

func subjectName(el ast.Element) string {
	return joined(el.SFPs[0].Subject)
}

// metaValues converts one alternative. Author, topic, source tag and name
// elements take a bare single name; tags accept every shape.
func (a *analyzer) metaValues(kind queryir.MetaKind, prefix string, sfp ast.SFP) ([]queryir.MetaValue, bool) {
	if kind != queryir.MetaTag {
		if len(sfp.Subject.Items) == 1 && sfp.Family == ast.FamilyNone {
			return []queryir.MetaValue{queryir.SingleValue{Value: metaString(sfp.Subject)}}, true
		}
		if prefix != "" {
			a.fail(diag.InvalidMetaTagForThisPrefix, sfp.Span, map[string]any{"prefix": prefix})
			return nil, false
		}
		a.unsupportedElement(kind, sfp)
		return nil, false
	}

	addr := address(sfp.Subject)
	switch sfp.Family {
	case ast.FamilyNone:
		if len(addr) == 1 {
			return []queryir.MetaValue{queryir.SingleValue{Value: addr[0]}}, true
		}
		return []queryir.MetaValue{queryir.SimpleAddress{Address: addr}}, true

	case ast.FamilyAscending, ast.FamilyDescending:
		return []queryir.MetaValue{queryir.DirectionOnly{Address: addr, Desc: sfp.Family == ast.FamilyDescending}}, true

	case ast.FamilyLink:
		other := sfp.Predicative.(ast.StrList)
		return []queryir.MetaValue{queryir.LinkToOther{Address: addr, Other: address(other)}}, true

	case ast.FamilyGreater, ast.FamilyGreaterEq, ast.FamilyLess, ast.FamilyLessEq:
		bound := metaString(sfp.Predicative.(ast.StrList))
		r := queryir.RangeOfAddress{Address: addr}
		inclusive := sfp.Family == ast.FamilyGreaterEq || sfp.Family == ast.FamilyLessEq
		if sfp.Family == ast.FamilyGreater || sfp.Family == ast.FamilyGreaterEq {
			r.From, r.IncludeFrom = &bound, inclusive
		} else {
			r.To, r.IncludeTo = &bound, inclusive
		}
		return []queryir.MetaValue{r}, true
	}

	switch pred := sfp.Predicative.(type) {
	case ast.StrList:
		return []queryir.MetaValue{queryir.CollectionOfAddress{Address: addr, Values: []queryir.MetaString{metaString(pred)}}}, true
	case ast.Collection:
		if len(pred.Items) == 0 {
			return nil, true
		}
		values := make([]queryir.MetaString, len(pred.Items))
		for i, v := range pred.Items {
			values[i] = metaString(v)
		}
		return []queryir.MetaValue{queryir.CollectionOfAddress{Address: addr, Values: values}}, true
	case ast.Range:
		r := queryir.RangeOfAddress{Address: addr, IncludeFrom: pred.IncludeFrom, IncludeTo: pred.IncludeTo}
		if pred.From != nil {
			from := metaString(*pred.From)
			r.From = &from
		}
		if pred.To != nil {
			to := metaString(*pred.To)
			r.To = &to
		}
		return []queryir.MetaValue{r}, true
	}

	a.unsupportedElement(kind, sfp)
	return nil, false
}

func (a *analyzer) unsupportedElement(kind queryir.MetaKind, sfp ast.SFP) {
	shape := predicativeShape(sfp)
	if sfp.Family == ast.FamilyNone {
		a.fail(diag.UnsupportedElementValueType, sfp.Span, map[string]any{
			"kind":       string(kind),
			"value_type": shape,
		})
		return
	}
	a.fail(diag.UnsupportedElementValueTypeOfRelation, sfp.Span, map[string]any{
		"kind":       string(kind),
		"value_type": shape,
		"relation":   string(sfp.Family),
	})
}

func predicativeShape(sfp ast.SFP) string {
	switch pred := sfp.Predicative.(type) {
	case ast.StrList:
		if len(pred.Items) > 1 {
			return "address"
		}
		return "string"
	case ast.SortList:
		return "sort list"
	case ast.Range:
		return "range"
	case ast.Collection:
		return "collection"
	}
	if len(sfp.Subject.Items) > 1 {
		return "address"
	}
	return "direction"
}
