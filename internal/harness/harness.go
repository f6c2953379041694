package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/hql/internal/compiler"
	"github.com/roach88/hql/internal/dialect"
)

// Options tunes a run. The zero value is ready to use.
type Options struct {
	// Logger receives compile logs. Nil discards them.
	Logger *slog.Logger

	// Metrics, if set, records every compile.
	Metrics *compiler.Metrics
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Resolve the dialect and apply the overlay, if any
// 2. Compile every case with the scenario's fixed today
// 3. Evaluate each case's assertions against its compile result
//
// An error is returned only when the scenario cannot be run at all;
// assertion failures are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, Options{})
}

// RunWithOptions is Run with a caller-supplied logger and metrics.
func RunWithOptions(scenario *Scenario, opts Options) (*Result, error) {
	d, err := resolveDialect(scenario)
	if err != nil {
		return nil, err
	}
	today, err := time.Parse(time.DateOnly, scenario.Today)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	copts := compiler.Options{
		Dialect: d,
		Lexical: scenario.Lexical,
		Today:   today,
		Logger:  logger,
		Metrics: opts.Metrics,
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		res := compiler.Compile(c.Query, copts)
		result.Cases = append(result.Cases, CaseResult{
			Label:  c.Label(),
			Query:  c.Query,
			Result: res,
		})
		for _, msg := range EvaluateAssertions(res, c.Assertions) {
			result.AddError(fmt.Sprintf("cases[%d] %s: %s", i, c.Label(), msg))
		}
	}

	logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"cases", len(scenario.Cases),
		"pass", result.Pass,
	)
	return result, nil
}

func resolveDialect(s *Scenario) (*dialect.Dialect, error) {
	name := dialect.Image
	if s.Dialect != "" {
		name = dialect.Name(s.Dialect)
	}
	d, err := dialect.Lookup(name)
	if err != nil {
		return nil, err
	}
	if s.Overlay == "" {
		return d, nil
	}
	o, err := dialect.LoadOverlay(s.Overlay)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlay: %w", err)
	}
	return d.With(o)
}
