package semantic

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/hql/internal/ast"
	"github.com/roach88/hql/internal/diag"
	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
)

// literal is one predicative string cast to a field type. Exactly one of
// exact or the [from, to) interval is set.
type literal struct {
	exact queryir.FilterValue
	fuzzy bool

	from, to queryir.FilterValue
}

func (l literal) interval() bool {
	return l.exact == nil
}

// filter builds the sub-filter a literal stands for on its own.
func (l literal) filter(field string) queryir.Filter {
	switch {
	case l.interval():
		return queryir.Range{Field: field, From: l.from, To: l.to, IncludeFrom: true}
	case l.fuzzy:
		return queryir.Match{Field: field, Values: []queryir.FilterValue{l.exact}}
	default:
		return queryir.Equal{Field: field, Values: []queryir.FilterValue{l.exact}}
	}
}

// bound turns a literal into one side of a range. A partial literal such as
// a month contributes the edge of its interval that keeps the bound's
// meaning: "> 2021-01" starts after January, "<= 2021-01" ends with it.
func (l literal) bound(lower, inclusive bool) (queryir.FilterValue, bool) {
	if !l.interval() {
		return l.exact, inclusive
	}
	switch {
	case lower && inclusive:
		return l.from, true
	case lower:
		return l.to, true
	case inclusive:
		return l.to, false
	default:
		return l.from, false
	}
}

func joined(l ast.StrList) string {
	return strings.Join(l.Values(), ".")
}

// cast converts l to field's type, recording TypeCastError on failure.
func (a *analyzer) cast(field dialect.Field, l ast.StrList) (literal, bool) {
	text := joined(l)
	var (
		lit literal
		ok  bool
	)
	switch field.Type {
	case dialect.String:
		lit, ok = literal{exact: queryir.StringValue{Value: text}, fuzzy: !l.Precise()}, true
	case dialect.Number:
		lit, ok = castNumber(text)
	case dialect.PatternNumber:
		lit, ok = castPatternNumber(text)
	case dialect.Date:
		lit, ok = castDate(text, a.today)
	case dialect.Size:
		lit, ok = castSize(text)
	case dialect.Enum:
		var v string
		if v, ok = field.EnumValue(text); ok {
			lit = literal{exact: queryir.StringValue{Value: v}}
		}
	}
	if !ok {
		info := map[string]any{"literal": text, "type": string(field.Type)}
		if field.Type == dialect.Enum {
			info["type"] = "one of " + strings.Join(field.EnumValues(), "|")
		}
		a.fail(diag.TypeCastError, l.Span, info)
	}
	return lit, ok
}

func castNumber(text string) (literal, bool) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return literal{}, false
	}
	return literal{exact: queryir.NumberValue{Value: n}}, true
}

var (
	patternRe  = regexp.MustCompile(`^[0-9?*]+$`)
	trailingRe = regexp.MustCompile(`^([1-9][0-9]*)(\?+)$`)
)

// castPatternNumber reads digits with '?' and '*' wildcards. Digits alone
// are an exact number; digits followed only by '?' are the interval of
// numbers with that prefix and length; anything else stays a pattern.
func castPatternNumber(text string) (literal, bool) {
	if !patternRe.MatchString(text) {
		return literal{}, false
	}
	if !strings.ContainsAny(text, "?*") {
		return castNumber(text)
	}
	if m := trailingRe.FindStringSubmatch(text); m != nil && len(text) <= 18 {
		prefix, _ := strconv.ParseInt(m[1], 10, 64)
		scale := int64(math.Pow10(len(m[2])))
		return literal{
			from: queryir.NumberValue{Value: prefix * scale},
			to:   queryir.NumberValue{Value: (prefix + 1) * scale},
		}, true
	}
	return literal{exact: queryir.PatternNumberValue{Pattern: text}, fuzzy: true}, true
}

// castDate reads YYYY-MM-DD, YYYY-MM, MM-DD, YYYY or MM, with '-' or '.'
// separators. Forms without a year use today's year. Forms naming a whole
// month or year become an interval.
func castDate(text string, today queryir.Date) (literal, bool) {
	parts := strings.Split(strings.ReplaceAll(text, ".", "-"), "-")
	nums := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || len(p) > 4 {
			return literal{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return literal{}, false
		}
		nums[i] = n
	}

	switch {
	case len(parts) == 3 && len(parts[0]) == 4:
		return exactDate(nums[0], nums[1], nums[2])
	case len(parts) == 2 && len(parts[0]) == 4:
		if !validMonth(nums[1]) || len(parts[1]) > 2 {
			return literal{}, false
		}
		from := queryir.NewDate(nums[0], time.Month(nums[1]), 1)
		return dateInterval(from, queryir.NewDate(nums[0], time.Month(nums[1])+1, 1)), true
	case len(parts) == 2 && len(parts[0]) <= 2:
		return exactDate(today.Year, nums[0], nums[1])
	case len(parts) == 1 && len(parts[0]) == 4:
		return dateInterval(queryir.NewDate(nums[0], time.January, 1), queryir.NewDate(nums[0]+1, time.January, 1)), true
	case len(parts) == 1 && len(parts[0]) <= 2:
		if !validMonth(nums[0]) {
			return literal{}, false
		}
		from := queryir.NewDate(today.Year, time.Month(nums[0]), 1)
		return dateInterval(from, queryir.NewDate(today.Year, time.Month(nums[0])+1, 1)), true
	}
	return literal{}, false
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}

// exactDate rejects components that would normalize to another day.
func exactDate(year, month, day int) (literal, bool) {
	if !validMonth(month) {
		return literal{}, false
	}
	d := queryir.NewDate(year, time.Month(month), day)
	if d.Month != time.Month(month) || d.Day != day {
		return literal{}, false
	}
	return literal{exact: queryir.DateValue{Value: d}}, true
}

func dateInterval(from, to queryir.Date) literal {
	return literal{from: queryir.DateValue{Value: from}, to: queryir.DateValue{Value: to}}
}

var sizeRe = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-zA-Z]*)$`)

var sizeUnits = map[string]int64{
	"":    1,
	"b":   1,
	"kb":  1e3,
	"mb":  1e6,
	"gb":  1e9,
	"tb":  1e12,
	"kib": 1 << 10,
	"mib": 1 << 20,
	"gib": 1 << 30,
	"tib": 1 << 40,
}

// castSize reads a byte count with an optional decimal (KB, MB, GB, TB) or
// binary (KiB, MiB, GiB, TiB) unit, case insensitively. Counts that do not
// fit in an int64 are rejected.
func castSize(text string) (literal, bool) {
	m := sizeRe.FindStringSubmatch(text)
	if m == nil {
		return literal{}, false
	}
	unit, ok := sizeUnits[strings.ToLower(m[2])]
	if !ok {
		return literal{}, false
	}

	if !strings.Contains(m[1], ".") {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || n > math.MaxInt64/unit {
			return literal{}, false
		}
		return literal{exact: queryir.SizeValue{Bytes: n * unit}}, true
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return literal{}, false
	}
	// float64(math.MaxInt64) is 2^63, one past the largest int64.
	bytes := math.Round(n * float64(unit))
	if bytes >= math.MaxInt64 {
		return literal{}, false
	}
	return literal{exact: queryir.SizeValue{Bytes: int64(bytes)}}, true
}
