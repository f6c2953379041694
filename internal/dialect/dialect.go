// Package dialect holds the per-entity tables the semantic analyzer
// resolves queries against.
//
// A Dialect names the filter fields, sort keys and meta kinds one entity
// kind understands. The built-in dialects (image, book, source, topic,
// author) are static tables; Overlay files extend them the way an external
// metadata registry would, without touching the compiler.
//
// Dialects are immutable once built and safe for concurrent use.
package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/queryir"
)

// Name identifies a dialect.
type Name string

const (
	Image  Name = "image"
	Book   Name = "book"
	Source Name = "source"
	Topic  Name = "topic"
	Author Name = "author"
)

// ValueType is the type a filter field casts its values to.
type ValueType string

const (
	String        ValueType = "string"
	Number        ValueType = "number"
	PatternNumber ValueType = "pattern_number"
	Date          ValueType = "date"
	Size          ValueType = "size"
	Enum          ValueType = "enum"
	Flag          ValueType = "flag"
)

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	switch t {
	case String, Number, PatternNumber, Date, Size, Enum, Flag:
		return true
	}
	return false
}

// Ordered reports whether values of t can be compared and bounded.
func (t ValueType) Ordered() bool {
	switch t {
	case Number, PatternNumber, Date, Size:
		return true
	}
	return false
}

// Field is a named filter field.
type Field struct {
	// Name is the canonical field name written into the plan.
	Name string

	// Aliases are the other spellings a query may use. Matching is case
	// insensitive and always includes Name.
	Aliases []string

	Type ValueType

	// Source fields are only reachable with the ^ flag.
	Source bool

	// Enum lists the members of an Enum field.
	Enum []EnumMember

	// Relations overrides the families the field accepts. Empty means the
	// default for Type.
	Relations []ast.Family
}

// EnumMember is one member of an Enum field.
type EnumMember struct {
	Value   string
	Aliases []string
}

// Accepts reports whether the field allows family f.
func (f Field) Accepts(family ast.Family) bool {
	for _, r := range f.relations() {
		if r == family {
			return true
		}
	}
	return false
}

// Families returns the relation families the field accepts.
func (f Field) Families() []ast.Family {
	return f.relations()
}

func (f Field) relations() []ast.Family {
	if len(f.Relations) > 0 {
		return f.Relations
	}
	switch {
	case f.Type == Flag:
		return nil
	case f.Type.Ordered():
		return []ast.Family{ast.FamilyColon, ast.FamilyGreater, ast.FamilyLess, ast.FamilyGreaterEq, ast.FamilyLessEq}
	default:
		return []ast.Family{ast.FamilyColon}
	}
}

// EnumValue resolves a member by value or alias, case insensitively.
func (f Field) EnumValue(s string) (string, bool) {
	s = strings.ToLower(s)
	for _, m := range f.Enum {
		if strings.ToLower(m.Value) == s {
			return m.Value, true
		}
		for _, a := range m.Aliases {
			if strings.ToLower(a) == s {
				return m.Value, true
			}
		}
	}
	return "", false
}

// EnumValues returns the canonical member names.
func (f Field) EnumValues() []string {
	out := make([]string, len(f.Enum))
	for i, m := range f.Enum {
		out[i] = m.Value
	}
	return out
}

// SortKey is a named sort key.
type SortKey struct {
	// Key is the canonical identifier written into the plan.
	Key string

	// Aliases are the spellings a query may use after sort:.
	Aliases []string

	// Source keys are only reachable as ^name.
	Source bool
}

// Dialect is a resolved table of fields, sort keys and meta kinds.
type Dialect struct {
	Name Name

	// DefaultKind is the meta kind of an unprefixed meta-tag element.
	DefaultKind queryir.MetaKind

	// MetaKinds lists the kinds the dialect accepts, DefaultKind included.
	MetaKinds []queryir.MetaKind

	Fields []Field
	Sorts  []SortKey

	fields map[lookupKey]int
	sorts  map[lookupKey]int
}

type lookupKey struct {
	name   string
	source bool
}

// New builds a dialect and its lookup indexes. It fails when two fields or
// two sort keys claim the same spelling.
func New(name Name, defaultKind queryir.MetaKind, kinds []queryir.MetaKind, fields []Field, sorts []SortKey) (*Dialect, error) {
	d := &Dialect{
		Name:        name,
		DefaultKind: defaultKind,
		MetaKinds:   kinds,
		Fields:      fields,
		Sorts:       sorts,
		fields:      make(map[lookupKey]int),
		sorts:       make(map[lookupKey]int),
	}

	for i, f := range fields {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("dialect %s: field %q: unknown type %q", name, f.Name, f.Type)
		}
		if f.Type == Enum && len(f.Enum) == 0 {
			return nil, fmt.Errorf("dialect %s: enum field %q has no members", name, f.Name)
		}
		for _, spelling := range append([]string{f.Name}, f.Aliases...) {
			key := lookupKey{strings.ToLower(spelling), f.Source}
			if prev, ok := d.fields[key]; ok && prev != i {
				return nil, fmt.Errorf("dialect %s: field spelling %q used by %q and %q", name, spelling, fields[prev].Name, f.Name)
			}
			d.fields[key] = i
		}
	}

	for i, s := range sorts {
		for _, spelling := range append([]string{s.Key}, s.Aliases...) {
			key := lookupKey{strings.ToLower(spelling), s.Source}
			if prev, ok := d.sorts[key]; ok && prev != i {
				return nil, fmt.Errorf("dialect %s: sort spelling %q used by %q and %q", name, spelling, sorts[prev].Key, s.Key)
			}
			d.sorts[key] = i
		}
	}
	return d, nil
}

// Field finds a field by spelling. source selects ^ fields.
func (d *Dialect) Field(name string, source bool) (Field, bool) {
	i, ok := d.fields[lookupKey{strings.ToLower(name), source}]
	if !ok {
		return Field{}, false
	}
	return d.Fields[i], true
}

// SortKey finds a sort key by spelling. source selects ^ keys.
func (d *Dialect) SortKey(name string, source bool) (SortKey, bool) {
	i, ok := d.sorts[lookupKey{strings.ToLower(name), source}]
	if !ok {
		return SortKey{}, false
	}
	return d.Sorts[i], true
}

// SortNames lists every spelling accepted after sort:, sorted, with source
// keys written as ^name.
func (d *Dialect) SortNames() []string {
	var out []string
	for key := range d.sorts {
		if key.source {
			out = append(out, "^"+key.name)
		} else {
			out = append(out, key.name)
		}
	}
	sort.Strings(out)
	return out
}

// AllowsKind reports whether the dialect accepts meta kind k.
func (d *Dialect) AllowsKind(k queryir.MetaKind) bool {
	for _, allowed := range d.MetaKinds {
		if allowed == k {
			return true
		}
	}
	return false
}

func mustNew(name Name, defaultKind queryir.MetaKind, kinds []queryir.MetaKind, fields []Field, sorts []SortKey) *Dialect {
	d, err := New(name, defaultKind, kinds, fields, sorts)
	if err != nil {
		panic(err)
	}
	return d
}
