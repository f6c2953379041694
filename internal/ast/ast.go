// Package ast defines the HQL query tree produced by grammar analysis.
//
// Node categories with several shapes are sealed interfaces: Body is an
// Element or an Annotation, and Predicative is a StrList, SortList, Range or
// Collection. The marker methods restrict implementations to this package so
// a type switch over a category can be exhaustive.
//
// Every node embeds a Span of rune offsets into the original query text.
package ast

// Span is a [Begin, End) range of rune offsets.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Pos returns the span itself; embedding Span gives every node Pos.
func (s Span) Pos() Span { return s }

// Node is anything that occupies a span of the query.
type Node interface {
	Pos() Span
}

// Root is the whole query: an implicit AND of its items.
type Root struct {
	Span
	Items []SequenceItem `json:"items"`
}

// SequenceItem is one top-level term with its exclusion and source flags.
type SequenceItem struct {
	Span
	Minus  bool `json:"minus,omitempty"`
	Source bool `json:"source,omitempty"`
	Body   Body `json:"body"`
}

// Body is an Element or an Annotation.
type Body interface {
	Node
	body()
}

// Element is an optionally prefixed list of OR'd SFPs.
type Element struct {
	Span
	Prefix string `json:"prefix,omitempty"`
	SFPs   []SFP  `json:"sfps"`
}

func (Element) body() {}

// Annotation is a bracketed list of OR'd strings with optional prefixes.
type Annotation struct {
	Span
	Prefixes []string  `json:"prefixes,omitempty"`
	Values   []StrList `json:"values"`
}

func (Annotation) body() {}

// Family is the relation symbol between subject and predicative.
type Family string

const (
	FamilyNone       Family = ""
	FamilyColon      Family = ":"
	FamilyLink       Family = "~"
	FamilyGreater    Family = ">"
	FamilyLess       Family = "<"
	FamilyGreaterEq  Family = ">="
	FamilyLessEq     Family = "<="
	FamilyAscending  Family = "~+"
	FamilyDescending Family = "~-"
)

// IsComparison reports whether f is one of > < >= <=.
func (f Family) IsComparison() bool {
	switch f {
	case FamilyGreater, FamilyLess, FamilyGreaterEq, FamilyLessEq:
		return true
	}
	return false
}

// IsDirection reports whether f is ~+ or ~-.
func (f Family) IsDirection() bool {
	return f == FamilyAscending || f == FamilyDescending
}

// SFP is a subject with an optional family and predicative. Predicative is
// nil when Family is FamilyNone or a direction.
type SFP struct {
	Span
	Subject     StrList     `json:"subject"`
	Family      Family      `json:"family,omitempty"`
	Predicative Predicative `json:"predicative,omitempty"`
}

// Predicative is the right-hand value of an SFP.
type Predicative interface {
	Node
	predicative()
}

// Str is one string token. Precise is true for backtick-quoted strings.
type Str struct {
	Span
	Value   string `json:"value"`
	Precise bool   `json:"precise,omitempty"`
}

// StrList is a dot-chained address such as a.b.c.
type StrList struct {
	Span
	Items []Str `json:"items"`
}

func (StrList) predicative() {}

// Values returns the string payloads of the list.
func (l StrList) Values() []string {
	out := make([]string, len(l.Items))
	for i, s := range l.Items {
		out[i] = s.Value
	}
	return out
}

// Precise reports whether every segment of the list is precise.
func (l StrList) Precise() bool {
	for _, s := range l.Items {
		if !s.Precise {
			return false
		}
	}
	return len(l.Items) > 0
}

// SortList is the value of a sort directive.
type SortList struct {
	Span
	Items []SortItem `json:"items"`
}

func (SortList) predicative() {}

// SortItem names one sort key with its direction and source flag.
type SortItem struct {
	Span
	Value  Str  `json:"value"`
	Desc   bool `json:"desc,omitempty"`
	Source bool `json:"source,omitempty"`
}

// Range is an interval. From or To is nil when that side is open.
type Range struct {
	Span
	From        *StrList `json:"from,omitempty"`
	To          *StrList `json:"to,omitempty"`
	IncludeFrom bool     `json:"include_from"`
	IncludeTo   bool     `json:"include_to"`
}

func (Range) predicative() {}

// Collection is a braced, possibly empty list of values.
type Collection struct {
	Span
	Items []StrList `json:"items"`
}

func (Collection) predicative() {}
