package queryir

import "fmt"

// ValidationResult lists structural problems found in a plan.
//
// The semantic analyzer never produces an invalid plan. Validate exists for
// plans assembled by hand or decoded from elsewhere before they reach a
// backend.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	Problems []string
}

// Validate checks structural rules every backend relies on:
//  1. Sort keys are non-empty and not repeated
//  2. Filter groups and Equal/Match filters are non-empty
//  3. Ranges have at least one bound, and both bounds share a type
//  4. Meta elements carry at least one value
//
// Validate is a pure function with no side effects.
func Validate(plan *QueryPlan) ValidationResult {
	v := &validator{problems: []string{}}
	if plan == nil {
		v.add("nil plan")
	} else {
		v.validatePlan(plan)
	}
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) add(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validatePlan(plan *QueryPlan) {
	seen := make(map[string]bool)
	for i, s := range plan.Sorts {
		if s.Key == "" {
			v.add("sorts[%d]: empty key", i)
			continue
		}
		if seen[s.Key] {
			v.add("sorts[%d]: key %q repeated", i, s.Key)
		}
		seen[s.Key] = true
	}

	for i, g := range plan.Filters {
		if len(g.Filters) == 0 {
			v.add("filters[%d]: empty group", i)
		}
		for j, f := range g.Filters {
			v.validateFilter(fmt.Sprintf("filters[%d][%d]", i, j), f)
		}
	}

	for i, e := range plan.Elements {
		if len(e.Values) == 0 {
			v.add("elements[%d]: %s element has no values", i, e.Kind)
		}
	}
}

func (v *validator) validateFilter(path string, f Filter) {
	if f == nil {
		v.add("%s: nil filter", path)
		return
	}
	if f.FieldName() == "" {
		v.add("%s: empty field", path)
	}

	switch filter := f.(type) {
	case Equal:
		if len(filter.Values) == 0 {
			v.add("%s: equal on %q has no values", path, filter.Field)
		}
	case Match:
		if len(filter.Values) == 0 {
			v.add("%s: match on %q has no values", path, filter.Field)
		}
	case Range:
		switch {
		case filter.From == nil && filter.To == nil:
			v.add("%s: range on %q has no bounds", path, filter.Field)
		case filter.From != nil && filter.To != nil && fmt.Sprintf("%T", filter.From) != fmt.Sprintf("%T", filter.To):
			v.add("%s: range on %q mixes %T and %T", path, filter.Field, filter.From, filter.To)
		}
	case Flag:
	default:
		v.add("%s: unknown filter type %T", path, f)
	}
}
