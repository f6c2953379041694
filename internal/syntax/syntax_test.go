package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprGrammar() []ExpandExpression {
	return []ExpandExpression{
		{Head: "E", Body: []string{"E", "+", "T"}},
		{Head: "E", Body: []string{"T"}},
		{Head: "T", Body: []string{"id"}},
		{Head: "T", Body: []string{"(", "E", ")"}},
	}
}

// run drives table over input and returns the reduced expression ids in
// order, or ok=false when the input is rejected.
func run(table *Table, input []string) (reductions []int, ok bool) {
	input = append(append([]string(nil), input...), EndSymbol)
	stack := []int{0}
	pos := 0
	for {
		state := stack[len(stack)-1]
		a, found := table.Action(state, input[pos])
		if !found {
			return reductions, false
		}
		switch a.Kind {
		case Shift:
			stack = append(stack, a.Target)
			pos++
		case Reduce:
			e := table.Expression(a.Target)
			stack = stack[:len(stack)-len(e.Body)]
			next, found := table.Goto(stack[len(stack)-1], e.Head)
			if !found {
				return reductions, false
			}
			stack = append(stack, next)
			reductions = append(reductions, a.Target)
		case Accept:
			return reductions, true
		}
	}
}

func TestBuildAlphabet(t *testing.T) {
	table := Build(exprGrammar())

	assert.Equal(t, []string{"(", ")", "+", "id", EndSymbol}, table.Terminals())
	assert.Equal(t, []string{"E", "T"}, table.NonTerminals())
	assert.Equal(t, "E -> E + T", table.Expression(0).String())
}

func TestBuildStartState(t *testing.T) {
	table := Build(exprGrammar())

	assert.Equal(t, []string{"(", "id"}, table.Expected(0))

	a, ok := table.Action(0, "id")
	require.True(t, ok)
	assert.Equal(t, Shift, a.Kind)

	_, ok = table.Action(0, "+")
	assert.False(t, ok)

	_, ok = table.Goto(0, "E")
	assert.True(t, ok)
	_, ok = table.Goto(0, "T")
	assert.True(t, ok)
}

func TestBuildAcceptAfterStart(t *testing.T) {
	table := Build(exprGrammar())

	afterE, ok := table.Goto(0, "E")
	require.True(t, ok)

	a, ok := table.Action(afterE, EndSymbol)
	require.True(t, ok)
	assert.Equal(t, Accept, a.Kind)
	assert.Equal(t, "acc", a.String())
}

func TestBuildDrivesParse(t *testing.T) {
	table := Build(exprGrammar())

	testCases := []struct {
		name       string
		input      []string
		wantOK     bool
		reductions []int
	}{
		{"single", []string{"id"}, true, []int{2, 1}},
		{"sum", []string{"id", "+", "id"}, true, []int{2, 1, 2, 0}},
		{"nested", []string{"(", "id", ")"}, true, []int{2, 1, 3, 1}},
		{"dangling plus", []string{"id", "+"}, false, nil},
		{"unbalanced", []string{"(", "id"}, false, nil},
		{"empty", nil, false, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reductions, ok := run(table, tc.input)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.reductions, reductions)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(exprGrammar())
	b := Build(exprGrammar())

	assert.Equal(t, a.StateCount(), b.StateCount())
	assert.Equal(t, a.String(), b.String())
}

func TestBuildLR1Lookahead(t *testing.T) {
	// Not SLR(1): an SLR table has a shift/reduce conflict on "=".
	grammar := []ExpandExpression{
		{Head: "S", Body: []string{"L", "=", "R"}},
		{Head: "S", Body: []string{"R"}},
		{Head: "L", Body: []string{"*", "R"}},
		{Head: "L", Body: []string{"id"}},
		{Head: "R", Body: []string{"L"}},
	}

	var table *Table
	require.NotPanics(t, func() { table = Build(grammar) })

	_, ok := run(table, []string{"*", "id", "=", "id"})
	assert.True(t, ok)
	_, ok = run(table, []string{"id", "="})
	assert.False(t, ok)
}

func TestBuildPanics(t *testing.T) {
	testCases := []struct {
		name    string
		grammar []ExpandExpression
	}{
		{"empty grammar", nil},
		{"empty body", []ExpandExpression{{Head: "S", Body: nil}}},
		{"ambiguous", []ExpandExpression{
			{Head: "E", Body: []string{"E", "+", "E"}},
			{Head: "E", Body: []string{"id"}},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Panics(t, func() { Build(tc.grammar) })
		})
	}
}

func TestTableString(t *testing.T) {
	table := Build([]ExpandExpression{{Head: "S", Body: []string{"a"}}})

	out := table.String()
	assert.Contains(t, out, "state")
	assert.Contains(t, out, "$end")
	assert.Contains(t, out, "acc")
	assert.Contains(t, out, "s")
	assert.Equal(t, 3, table.StateCount())
}
