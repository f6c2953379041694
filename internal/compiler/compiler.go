// Package compiler chains the HQL stages into a single call.
//
// text -> lexer.Tokenize -> grammar.Parse -> semantic.Analyze -> QueryPlan
//
// Warnings from every stage are accumulated. A grammar error stops the
// pipeline before semantic analysis; semantic errors are collected in full.
// The syntax table is shared by all calls and is never mutated after it is
// built, so Compile is safe for concurrent use.
package compiler

import (
	"log/slog"
	"time"

	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/grammar"
	"github.com/roach88/hql/internal/lexer"
	"github.com/roach88/hql/internal/queryir"
	"github.com/roach88/hql/internal/semantic"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures a compile.
type Options struct {
	// Dialect resolves field names and sort keys. Nil means the image dialect.
	Dialect *dialect.Dialect
	Lexical lexer.Options
	// Today anchors dates written without a year. Zero means Clock.Now().
	Today time.Time
	// Clock is read when Today is zero. Nil means the system clock.
	Clock   Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

// today resolves the anchor date of a compile.
func (o Options) today() time.Time {
	if !o.Today.IsZero() {
		return o.Today
	}
	if o.Clock == nil {
		return systemClock{}.Now()
	}
	return o.Clock.Now()
}

// Result is the outcome of a compile. Plan is nil whenever Errors is
// non-empty.
type Result struct {
	Plan     *queryir.QueryPlan `json:"plan,omitempty"`
	Warnings []diag.Diagnostic  `json:"warnings"`
	Errors   []diag.Diagnostic  `json:"errors"`
}

// OK reports whether the compile produced a plan.
func (r Result) OK() bool {
	return len(r.Errors) == 0 && r.Plan != nil
}

// Diagnostics returns warnings and errors ordered by position.
func (r Result) Diagnostics() []diag.Diagnostic {
	all := make([]diag.Diagnostic, 0, len(r.Warnings)+len(r.Errors))
	all = append(all, r.Warnings...)
	all = append(all, r.Errors...)
	return diag.Sorted(all)
}

// Compile runs the full pipeline over text.
func Compile(text string, opts Options) Result {
	start := time.Now()
	d := opts.Dialect
	if d == nil {
		d = dialect.MustLookup(dialect.Image)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := Result{Warnings: []diag.Diagnostic{}, Errors: []diag.Diagnostic{}}

	tokens, lexWarnings := lexer.Tokenize(text, opts.Lexical)
	res.Warnings = append(res.Warnings, lexWarnings...)

	root, grammarWarnings, grammarErrs := grammar.Parse(tokens, grammar.DefaultTable())
	res.Warnings = append(res.Warnings, grammarWarnings...)
	if len(grammarErrs) > 0 {
		res.Errors = append(res.Errors, grammarErrs...)
	} else {
		plan, semWarnings, semErrs := semantic.Analyze(root, d, semantic.Options{Today: opts.today()})
		res.Warnings = append(res.Warnings, semWarnings...)
		res.Errors = append(res.Errors, semErrs...)
		res.Plan = plan
	}

	elapsed := time.Since(start)
	opts.Metrics.observe(d.Name, res, elapsed)
	logger.Debug("hql compiled",
		"dialect", d.Name,
		"tokens", len(tokens),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"duration", elapsed,
	)
	return res
}
