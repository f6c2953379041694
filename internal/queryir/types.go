package queryir

import (
	"bytes"
	"encoding/json"
)

// QueryPlan is a compiled query. The zero value is the empty query.
type QueryPlan struct {
	Sorts    []Sort        `json:"sorts"`
	Filters  []FilterGroup `json:"filters"`
	Elements []MetaElement `json:"elements"`
}

// NewQueryPlan returns an empty plan with non-nil slices, so it marshals
// as empty arrays rather than null.
func NewQueryPlan() *QueryPlan {
	return &QueryPlan{
		Sorts:    []Sort{},
		Filters:  []FilterGroup{},
		Elements: []MetaElement{},
	}
}

// Empty reports whether the plan constrains nothing.
func (p *QueryPlan) Empty() bool {
	return len(p.Sorts) == 0 && len(p.Filters) == 0 && len(p.Elements) == 0
}

// Sort orders results by a dialect sort key.
type Sort struct {
	Key  string `json:"key"`
	Desc bool   `json:"desc"`
}

// FilterGroup is an OR of sub-filters produced by one query item. Exclude
// negates the whole group.
type FilterGroup struct {
	Exclude bool     `json:"exclude"`
	Filters []Filter `json:"filters"`
}

// Filter is one typed condition on a named field.
//
// This is a sealed interface - only types in this package implement it.
type Filter interface {
	filterNode()
	FieldName() string
}

// Equal matches rows whose field equals any of Values.
type Equal struct {
	Field  string        `json:"field"`
	Values []FilterValue `json:"values"`
}

func (Equal) filterNode()         {}
func (f Equal) FieldName() string { return f.Field }

func (f Equal) MarshalJSON() ([]byte, error) {
	type alias Equal
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"equal", alias(f)})
}

// Match matches rows whose field partially matches any of Values. String
// values match as substrings; PatternNumber values match digit patterns.
type Match struct {
	Field  string        `json:"field"`
	Values []FilterValue `json:"values"`
}

func (Match) filterNode()         {}
func (f Match) FieldName() string { return f.Field }

func (f Match) MarshalJSON() ([]byte, error) {
	type alias Match
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"match", alias(f)})
}

// Range bounds a field. A nil From or To leaves that side open.
type Range struct {
	Field       string      `json:"field"`
	From        FilterValue `json:"from,omitempty"`
	To          FilterValue `json:"to,omitempty"`
	IncludeFrom bool        `json:"include_from"`
	IncludeTo   bool        `json:"include_to"`
}

func (Range) filterNode()         {}
func (f Range) FieldName() string { return f.Field }

func (f Range) MarshalJSON() ([]byte, error) {
	type alias Range
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"range", alias(f)})
}

// Flag matches rows where a boolean field is set.
type Flag struct {
	Field string `json:"field"`
}

func (Flag) filterNode()         {}
func (f Flag) FieldName() string { return f.Field }

func (f Flag) MarshalJSON() ([]byte, error) {
	type alias Flag
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"flag", alias(f)})
}

// marshalTagged encodes a type-tagged wrapper without HTML escaping, so
// nested values reach CanonicalJSON unescaped.
func marshalTagged(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
