package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
)

// Snapshot renders a scenario result as stable text: a header, then one
// block per case with the canonical plan JSON and every diagnostic in
// position order.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	var buf strings.Builder

	name := scenario.Dialect
	if name == "" {
		name = string(dialect.Image)
	}
	fmt.Fprintf(&buf, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(&buf, "dialect: %s\n", name)
	fmt.Fprintf(&buf, "today: %s\n", scenario.Today)

	for _, c := range result.Cases {
		fmt.Fprintf(&buf, "\nquery: %s\n", c.Query)
		if c.Result.Plan != nil {
			data, err := queryir.CanonicalJSON(c.Result.Plan)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, "plan: %s\n", data)
		}
		for _, d := range c.Result.Diagnostics() {
			fmt.Fprintf(&buf, "%s %s %s [%d,%d)\n", d.Level, d.Code, d.Kind, d.Begin, d.End)
		}
	}

	return []byte(buf.String()), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
