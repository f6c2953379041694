package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/hql/internal/compiler"
	"github.com/roach88/hql/internal/diag"
)

// AssertionError is returned when an assertion fails.
// It includes the diagnostics of the compile to help debug the failure.
type AssertionError struct {
	Type        string            // Assertion type for categorization
	Expected    string            // Human-readable expected outcome
	Actual      string            // Human-readable actual outcome
	Diagnostics []diag.Diagnostic // Everything the compile reported
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Diagnostics) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for _, d := range e.Diagnostics {
			fmt.Fprintf(&buf, "  %s\n", d.Error())
		}
	}

	return buf.String()
}

func fail(res compiler.Result, typ string, expected, actual any) error {
	return &AssertionError{
		Type:        typ,
		Expected:    fmt.Sprint(expected),
		Actual:      fmt.Sprint(actual),
		Diagnostics: res.Diagnostics(),
	}
}

func assertOK(res compiler.Result) error {
	if res.OK() {
		return nil
	}
	return fail(res, AssertOK, "a plan", fmt.Sprintf("%d errors", len(res.Errors)))
}

// assertList compares an ordered list exactly.
func assertList(res compiler.Result, typ string, expected, actual []string) error {
	if expected == nil {
		expected = []string{}
	}
	if slices.Equal(expected, actual) {
		return nil
	}
	return fail(res, typ, expected, actual)
}

func kindNames(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d.Kind)
	}
	return out
}

func sortKeys(res compiler.Result) []string {
	out := []string{}
	if res.Plan == nil {
		return out
	}
	for _, s := range res.Plan.Sorts {
		if s.Desc {
			out = append(out, "-"+s.Key)
		} else {
			out = append(out, s.Key)
		}
	}
	return out
}

func filterFields(res compiler.Result) []string {
	out := []string{}
	if res.Plan == nil {
		return out
	}
	for _, g := range res.Plan.Filters {
		for _, f := range g.Filters {
			out = append(out, f.FieldName())
		}
	}
	return out
}

func elementKinds(res compiler.Result) []string {
	out := []string{}
	if res.Plan == nil {
		return out
	}
	for _, e := range res.Plan.Elements {
		out = append(out, string(e.Kind))
	}
	return out
}

// assertSpan checks the first diagnostic of the assertion's kind.
func assertSpan(res compiler.Result, a Assertion) error {
	for _, d := range res.Diagnostics() {
		if string(d.Kind) != a.Kind {
			continue
		}
		if d.Begin == a.Begin && d.End == a.End {
			return nil
		}
		return fail(res, AssertSpan,
			fmt.Sprintf("%s at [%d,%d)", a.Kind, a.Begin, a.End),
			fmt.Sprintf("%s at [%d,%d)", d.Kind, d.Begin, d.End))
	}
	return fail(res, AssertSpan, a.Kind, "no such diagnostic")
}

// EvaluateAssertions evaluates all assertions against a compile result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(res compiler.Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertOK:
			err = assertOK(res)
		case AssertErrors:
			err = assertList(res, a.Type, a.Values, kindNames(res.Errors))
		case AssertWarnings:
			err = assertList(res, a.Type, a.Values, kindNames(res.Warnings))
		case AssertSorts:
			err = assertList(res, a.Type, a.Values, sortKeys(res))
		case AssertFilterFields:
			err = assertList(res, a.Type, a.Values, filterFields(res))
		case AssertElementKinds:
			err = assertList(res, a.Type, a.Values, elementKinds(res))
		case AssertSpan:
			err = assertSpan(res, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
