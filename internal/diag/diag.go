// Package diag defines the diagnostics shared by every HQL compile stage.
//
// A Diagnostic is data, not control flow: lexing, grammar analysis and
// semantic analysis each return the diagnostics they produced, and the caller
// decides whether the errors among them are fatal. Every diagnostic carries a
// machine-readable Kind, a stable Code, structured Info parameters and a
// [Begin, End) span measured in runes of the original query text so a UI can
// highlight the offending characters.
//
// Code ranges:
//
//	W1xx  lexical warnings
//	E2xx  grammar errors, W2xx grammar warnings
//	E3xx  semantic errors, W3xx semantic warnings
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Level is the severity of a diagnostic.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Kind identifies what went wrong.
type Kind string

// Lexical kinds (always warnings).
const (
	NormalCharacterEscaped       Kind = "NormalCharacterEscaped"
	ExpectEscapedCharacterButEOF Kind = "ExpectEscapedCharacterButEOF"
	ExpectQuoteButEOF            Kind = "ExpectQuoteButEOF"
	UselessSymbol                Kind = "UselessSymbol"
)

// Grammar kinds.
const (
	UnexpectedToken            Kind = "UnexpectedToken"
	DuplicatedAnnotationPrefix Kind = "DuplicatedAnnotationPrefix"
)

// Semantic kinds.
const (
	TypeCastError                         Kind = "TypeCastError"
	UnsupportedFilterValueType            Kind = "UnsupportedFilterValueType"
	UnsupportedFilterValueTypeOfRelation  Kind = "UnsupportedFilterValueTypeOfRelation"
	UnsupportedFilterRelationSymbol       Kind = "UnsupportedFilterRelationSymbol"
	UnsupportedElementValueType           Kind = "UnsupportedElementValueType"
	UnsupportedElementValueTypeOfRelation Kind = "UnsupportedElementValueTypeOfRelation"
	InvalidMetaTagForThisPrefix           Kind = "InvalidMetaTagForThisPrefix"
	InvalidSortItem                       Kind = "InvalidSortItem"
	SortIsIndependent                     Kind = "SortIsIndependent"
	SortValueRequired                     Kind = "SortValueRequired"
	SortValueMustBeSortList               Kind = "SortValueMustBeSortList"
	FilterValueRequired                   Kind = "FilterValueRequired"
	FilterValueNotRequired                Kind = "FilterValueNotRequired"
	BracketCannotHaveSourceFlag           Kind = "BracketCannotHaveSourceFlag"
	ThisIdentifyCannotHaveSourceFlag      Kind = "ThisIdentifyCannotHaveSourceFlag"
	FilterCannotMixWithMetaTag            Kind = "FilterCannotMixWithMetaTag"
	DuplicatedSortItem                    Kind = "DuplicatedSortItem"
)

// Diagnostic is a single warning or error tied to a span of the query.
type Diagnostic struct {
	Kind  Kind           `json:"kind"`
	Code  string         `json:"code"`
	Level Level          `json:"level"`
	Info  map[string]any `json:"info,omitempty"`
	Begin int            `json:"begin"`
	End   int            `json:"end"`
}

// New creates a diagnostic. Code and Level come from the kind's catalog entry.
func New(kind Kind, begin, end int, info map[string]any) Diagnostic {
	entry, ok := catalog[kind]
	if !ok {
		entry = catalogEntry{code: "E000", level: LevelError}
	}
	return Diagnostic{
		Kind:  kind,
		Code:  entry.code,
		Level: entry.level,
		Info:  info,
		Begin: begin,
		End:   end,
	}
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("[%s] %d..%d: %s", d.Code, d.Begin, d.End, d.Message())
}

// IsError reports whether the diagnostic is fatal.
func (d Diagnostic) IsError() bool {
	return d.Level == LevelError
}

// Message renders the human-readable text for the diagnostic.
func (d Diagnostic) Message() string {
	entry, ok := catalog[d.Kind]
	if !ok || entry.message == nil {
		return string(d.Kind)
	}
	return entry.message(d.Info)
}

// Kinds returns the kinds of the given diagnostics, in order.
func Kinds(ds []Diagnostic) []Kind {
	kinds := make([]Kind, len(ds))
	for i, d := range ds {
		kinds[i] = d.Kind
	}
	return kinds
}

// Split separates diagnostics into warnings and errors, preserving order.
func Split(ds []Diagnostic) (warnings, errors []Diagnostic) {
	for _, d := range ds {
		if d.IsError() {
			errors = append(errors, d)
		} else {
			warnings = append(warnings, d)
		}
	}
	return warnings, errors
}

// Sorted returns a copy of ds ordered by span start, then code.
func Sorted(ds []Diagnostic) []Diagnostic {
	out := append([]Diagnostic(nil), ds...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Begin != out[j].Begin {
			return out[i].Begin < out[j].Begin
		}
		return out[i].Code < out[j].Code
	})
	return out
}

type catalogEntry struct {
	code    string
	level   Level
	message func(info map[string]any) string
}

func str(info map[string]any, key string) string {
	v, ok := info[key]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}

var catalog = map[Kind]catalogEntry{
	NormalCharacterEscaped: {"W101", LevelWarning, func(i map[string]any) string {
		return fmt.Sprintf("normal character %q does not need escaping", str(i, "char"))
	}},
	ExpectEscapedCharacterButEOF: {"W102", LevelWarning, func(map[string]any) string {
		return "expected an escaped character but reached end of input"
	}},
	ExpectQuoteButEOF: {"W103", LevelWarning, func(i map[string]any) string {
		return fmt.Sprintf("expected closing quote %s but reached end of input", str(i, "quote"))
	}},
	UselessSymbol: {"W104", LevelWarning, func(i map[string]any) string {
		return fmt.Sprintf("symbol %q has no meaning and was ignored", str(i, "symbol"))
	}},

	UnexpectedToken: {"E201", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("unexpected %s, expected one of: %s", str(i, "found"), str(i, "expected"))
	}},
	DuplicatedAnnotationPrefix: {"W202", LevelWarning, func(i map[string]any) string {
		return fmt.Sprintf("annotation prefix %q is repeated", str(i, "symbol"))
	}},

	TypeCastError: {"E301", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("%q cannot be read as %s", str(i, "literal"), str(i, "type"))
	}},
	UnsupportedFilterValueType: {"E302", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("field %q does not accept a %s value", str(i, "field"), str(i, "value_type"))
	}},
	UnsupportedFilterValueTypeOfRelation: {"E303", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("field %q does not accept a %s value after %q", str(i, "field"), str(i, "value_type"), str(i, "relation"))
	}},
	UnsupportedFilterRelationSymbol: {"E304", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("field %q does not support relation %q", str(i, "field"), str(i, "relation"))
	}},
	UnsupportedElementValueType: {"E305", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("%s element does not accept a %s value", str(i, "kind"), str(i, "value_type"))
	}},
	UnsupportedElementValueTypeOfRelation: {"E306", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("%s element does not accept a %s value after %q", str(i, "kind"), str(i, "value_type"), str(i, "relation"))
	}},
	InvalidMetaTagForThisPrefix: {"E307", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("this meta tag is not valid for prefix %q", str(i, "prefix"))
	}},
	InvalidSortItem: {"E308", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("unknown sort item %q, valid items: %s", str(i, "name"), str(i, "valid"))
	}},
	SortIsIndependent: {"E309", LevelError, func(map[string]any) string {
		return "sort must be an independent item without exclusion or alternatives"
	}},
	SortValueRequired: {"E310", LevelError, func(map[string]any) string {
		return "sort requires a value"
	}},
	SortValueMustBeSortList: {"E311", LevelError, func(map[string]any) string {
		return "sort value must be a sort list"
	}},
	FilterValueRequired: {"E312", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("field %q requires a value", str(i, "field"))
	}},
	FilterValueNotRequired: {"E313", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("field %q does not take a value", str(i, "field"))
	}},
	BracketCannotHaveSourceFlag: {"E314", LevelError, func(map[string]any) string {
		return "annotation brackets cannot carry the source flag"
	}},
	ThisIdentifyCannotHaveSourceFlag: {"E315", LevelError, func(i map[string]any) string {
		return fmt.Sprintf("%q cannot carry the source flag", str(i, "name"))
	}},
	FilterCannotMixWithMetaTag: {"E316", LevelError, func(map[string]any) string {
		return "filters and meta tags cannot be joined with |"
	}},
	DuplicatedSortItem: {"W317", LevelWarning, func(i map[string]any) string {
		return fmt.Sprintf("sort item %q is repeated and was ignored", str(i, "name"))
	}},
}
