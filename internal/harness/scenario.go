package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/lexer"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect selects the built-in dialect. Defaults to image.
	Dialect string `yaml:"dialect,omitempty"`

	// Overlay is an optional YAML or CUE dialect overlay. Relative paths are
	// resolved against the scenario file.
	Overlay string `yaml:"overlay,omitempty"`

	// Today anchors partial dates, as YYYY-MM-DD. Required so results do not
	// depend on the wall clock.
	Today string `yaml:"today"`

	// Lexical enables optional lexer rewrites for every case.
	Lexical lexer.Options `yaml:"lexical,omitempty"`

	// Cases are compiled in order.
	Cases []Case `yaml:"cases"`
}

// Case is one query and what its compile must produce.
type Case struct {
	// Name labels the case in failure messages. Defaults to the query.
	Name string `yaml:"name,omitempty"`

	Query string `yaml:"query"`

	Assertions []Assertion `yaml:"assertions"`
}

// Label returns the case name, or the query when unnamed.
func (c Case) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%q", c.Query)
}

// Assertion checks one aspect of a compile result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Values holds the expected list for errors, warnings, sorts,
	// filter_fields and element_kinds.
	Values []string `yaml:"values,omitempty"`

	// Kind, Begin and End are used by span.
	Kind  string `yaml:"kind,omitempty"`
	Begin int    `yaml:"begin,omitempty"`
	End   int    `yaml:"end,omitempty"`
}

// Assertion type constants.
const (
	AssertOK           = "ok"
	AssertErrors       = "errors"
	AssertWarnings     = "warnings"
	AssertSorts        = "sorts"
	AssertFilterFields = "filter_fields"
	AssertElementKinds = "element_kinds"
	AssertSpan         = "span"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so "assertion:" vs "assertions:" is caught.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Overlay != "" && !filepath.IsAbs(scenario.Overlay) {
		scenario.Overlay = filepath.Join(filepath.Dir(path), scenario.Overlay)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Today == "" {
		return fmt.Errorf("today is required")
	}
	if _, err := time.Parse(time.DateOnly, s.Today); err != nil {
		return fmt.Errorf("today: %w", err)
	}

	if s.Dialect != "" {
		if _, err := dialect.Lookup(dialect.Name(s.Dialect)); err != nil {
			return err
		}
	}

	if s.Overlay != "" {
		if _, err := os.Stat(s.Overlay); os.IsNotExist(err) {
			return fmt.Errorf("overlay file not found: %s", s.Overlay)
		}
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if len(c.Assertions) == 0 {
			return fmt.Errorf("cases[%d]: assertions list is required and must be non-empty", i)
		}
		for j, a := range c.Assertions {
			if err := validateAssertion(j, &a); err != nil {
				return fmt.Errorf("cases[%d]: %w", i, err)
			}
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOK, AssertErrors, AssertWarnings, AssertSorts, AssertFilterFields, AssertElementKinds:
	case AssertSpan:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for span", index)
		}
		if a.End < a.Begin {
			return fmt.Errorf("assertions[%d]: end must not precede begin", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
