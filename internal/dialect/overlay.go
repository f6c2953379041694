package dialect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/hql/internal/ast"
)

// Overlay extends a built-in dialect with fields, sort keys and aliases
// supplied by a metadata registry. It is loaded from YAML or CUE.
//
// Example (YAML):
//
//	dialect: image
//	fields:
//	  - name: rating
//	    aliases: [r]
//	    type: number
//	aliases:
//	  description: [comment]
//	sorts:
//	  - key: rating
//	    aliases: [r]
type Overlay struct {
	// Dialect, when set, must match the dialect the overlay is applied to.
	Dialect string `json:"dialect,omitempty" yaml:"dialect"`

	Fields []FieldSpec `json:"fields,omitempty" yaml:"fields"`
	Sorts  []SortSpec  `json:"sorts,omitempty" yaml:"sorts"`

	// Aliases adds spellings to existing fields, keyed by canonical field
	// name. Source fields are keyed as ^name.
	Aliases map[string][]string `json:"aliases,omitempty" yaml:"aliases"`
}

// FieldSpec declares a field. A spec whose name matches an existing field
// of the same source flag replaces it.
type FieldSpec struct {
	Name      string   `json:"name" yaml:"name"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases"`
	Type      string   `json:"type" yaml:"type"`
	Source    bool     `json:"source,omitempty" yaml:"source"`
	Enum      []string `json:"enum,omitempty" yaml:"enum"`
	Relations []string `json:"relations,omitempty" yaml:"relations"`
}

// SortSpec declares a sort key.
type SortSpec struct {
	Key     string   `json:"key" yaml:"key"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases"`
	Source  bool     `json:"source,omitempty" yaml:"source"`
}

// OverlayError reports a problem in an overlay file. Pos is set for CUE
// errors that carry a position.
type OverlayError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *OverlayError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadOverlay reads an overlay from a .yaml, .yml or .cue file.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAMLOverlay(data)
	case ".cue":
		return ParseCUEOverlay(data, path)
	default:
		return nil, fmt.Errorf("overlay %s: unsupported extension (want .yaml, .yml or .cue)", path)
	}
}

// ParseYAMLOverlay decodes a YAML overlay, rejecting unknown keys.
func ParseYAMLOverlay(data []byte) (*Overlay, error) {
	var o Overlay
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&o); err != nil {
		return nil, fmt.Errorf("failed to parse YAML overlay: %w", err)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// ParseCUEOverlay evaluates a CUE overlay. CUE constraints in the file are
// checked before decoding; the value must be concrete.
func ParseCUEOverlay(data []byte, filename string) (*Overlay, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var o Overlay
	if err := v.Decode(&o); err != nil {
		return nil, formatCUEError(err)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// formatCUEError returns the first CUE error with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &OverlayError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}

func (o *Overlay) validate() error {
	for i, f := range o.Fields {
		if f.Name == "" {
			return &OverlayError{Field: fmt.Sprintf("fields[%d].name", i), Message: "name is required"}
		}
		if !ValueType(f.Type).Valid() {
			return &OverlayError{Field: fmt.Sprintf("fields[%d].type", i), Message: fmt.Sprintf("unknown type %q", f.Type)}
		}
		for _, r := range f.Relations {
			if !validRelation(ast.Family(r)) {
				return &OverlayError{Field: fmt.Sprintf("fields[%d].relations", i), Message: fmt.Sprintf("unknown relation %q", r)}
			}
		}
	}
	for i, s := range o.Sorts {
		if s.Key == "" {
			return &OverlayError{Field: fmt.Sprintf("sorts[%d].key", i), Message: "key is required"}
		}
	}
	return nil
}

func validRelation(f ast.Family) bool {
	return f == ast.FamilyColon || f.IsComparison()
}

func (s FieldSpec) field() Field {
	f := Field{
		Name:    s.Name,
		Aliases: append([]string(nil), s.Aliases...),
		Type:    ValueType(s.Type),
		Source:  s.Source,
	}
	for _, v := range s.Enum {
		f.Enum = append(f.Enum, EnumMember{Value: v})
	}
	for _, r := range s.Relations {
		f.Relations = append(f.Relations, ast.Family(r))
	}
	return f
}

// With returns a new dialect with the overlay applied. d is unchanged.
func (d *Dialect) With(o *Overlay) (*Dialect, error) {
	if o.Dialect != "" && Name(o.Dialect) != d.Name {
		return nil, fmt.Errorf("overlay for dialect %q cannot apply to %q", o.Dialect, d.Name)
	}

	fields := make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		f.Aliases = append([]string(nil), f.Aliases...)
		fields[i] = f
	}
	for _, spec := range o.Fields {
		f := spec.field()
		if i := indexField(fields, f.Name, f.Source); i >= 0 {
			fields[i] = f
		} else {
			fields = append(fields, f)
		}
	}

	names := make([]string, 0, len(o.Aliases))
	for name := range o.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		source := strings.HasPrefix(name, "^")
		i := indexField(fields, strings.TrimPrefix(name, "^"), source)
		if i < 0 {
			return nil, fmt.Errorf("overlay alias: unknown field %q in dialect %q", name, d.Name)
		}
		fields[i].Aliases = append(fields[i].Aliases, o.Aliases[name]...)
	}

	sorts := append([]SortKey(nil), d.Sorts...)
	for _, spec := range o.Sorts {
		key := SortKey{Key: spec.Key, Aliases: append([]string(nil), spec.Aliases...), Source: spec.Source}
		replaced := false
		for i, s := range sorts {
			if s.Key == key.Key && s.Source == key.Source {
				sorts[i] = key
				replaced = true
			}
		}
		if !replaced {
			sorts = append(sorts, key)
		}
	}

	return New(d.Name, d.DefaultKind, d.MetaKinds, fields, sorts)
}

func indexField(fields []Field, name string, source bool) int {
	for i, f := range fields {
		if f.Name == name && f.Source == source {
			return i
		}
	}
	return -1
}
