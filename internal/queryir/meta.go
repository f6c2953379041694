package queryir

import "strings"

// MetaKind is the kind of metadata a MetaElement refers to.
type MetaKind string

const (
	MetaAuthor    MetaKind = "author"
	MetaTopic     MetaKind = "topic"
	MetaTag       MetaKind = "tag"
	MetaSourceTag MetaKind = "source_tag"
	MetaComment   MetaKind = "comment"
	MetaName      MetaKind = "name"
)

// MetaElement is one meta-tag query term: an OR of Values of one kind.
// Targets is set for Name elements built from a prefixed annotation and
// lists the kinds whose names are searched.
type MetaElement struct {
	Kind    MetaKind    `json:"kind"`
	Exclude bool        `json:"exclude"`
	Values  []MetaValue `json:"values"`
	Targets []MetaKind  `json:"targets,omitempty"`
}

// MetaString is a string carried into the plan with its match precision.
// Precise strings match exactly; fuzzy strings match partially.
type MetaString struct {
	Value   string `json:"value"`
	Precise bool   `json:"precise"`
}

func (s MetaString) String() string {
	if s.Precise {
		return "`" + s.Value + "`"
	}
	return s.Value
}

// Address is a hierarchical name such as site.tag.
type Address []MetaString

func (a Address) String() string {
	parts := make([]string, len(a))
	for i, s := range a {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// MetaValue is one alternative inside a MetaElement.
//
// This is a sealed interface - only types in this package implement it.
type MetaValue interface {
	metaValue()
}

// SingleValue matches a bare name.
type SingleValue struct {
	Value MetaString `json:"value"`
}

// SimpleAddress matches a dotted address.
type SimpleAddress struct {
	Address Address `json:"address"`
}

// RangeOfAddress bounds the value stored under Address. A nil bound is open.
type RangeOfAddress struct {
	Address     Address     `json:"address"`
	From        *MetaString `json:"from,omitempty"`
	To          *MetaString `json:"to,omitempty"`
	IncludeFrom bool        `json:"include_from"`
	IncludeTo   bool        `json:"include_to"`
}

// CollectionOfAddress matches when the value under Address is any of Values.
type CollectionOfAddress struct {
	Address Address      `json:"address"`
	Values  []MetaString `json:"values"`
}

// LinkToOther relates Address to another value with '~'.
type LinkToOther struct {
	Address Address `json:"address"`
	Other   Address `json:"other"`
}

// DirectionOnly marks Address with a direction and no value.
type DirectionOnly struct {
	Address Address `json:"address"`
	Desc    bool    `json:"desc"`
}

func (SingleValue) metaValue()         {}
func (SimpleAddress) metaValue()       {}
func (RangeOfAddress) metaValue()      {}
func (CollectionOfAddress) metaValue() {}
func (LinkToOther) metaValue()         {}
func (DirectionOnly) metaValue()       {}

func (v SingleValue) MarshalJSON() ([]byte, error) {
	type alias SingleValue
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"single", alias(v)})
}

func (v SimpleAddress) MarshalJSON() ([]byte, error) {
	type alias SimpleAddress
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"simple_address", alias(v)})
}

func (v RangeOfAddress) MarshalJSON() ([]byte, error) {
	type alias RangeOfAddress
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"range_of_address", alias(v)})
}

func (v CollectionOfAddress) MarshalJSON() ([]byte, error) {
	type alias CollectionOfAddress
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"collection_of_address", alias(v)})
}

func (v LinkToOther) MarshalJSON() ([]byte, error) {
	type alias LinkToOther
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"link_to_other", alias(v)})
}

func (v DirectionOnly) MarshalJSON() ([]byte, error) {
	type alias DirectionOnly
	return marshalTagged(struct {
		Type string `json:"type"`
		alias
	}{"direction_only", alias(v)})
}
