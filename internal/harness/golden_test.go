package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	s := &Scenario{
		Name:    "snap",
		Dialect: "book",
		Today:   "2024-06-15",
		Cases: []Case{
			{Query: "fav", Assertions: []Assertion{{Type: AssertOK}}},
			{Query: "sort", Assertions: []Assertion{{Type: AssertErrors}}},
		},
	}
	result, err := Run(s)
	require.NoError(t, err)

	data, err := Snapshot(s, result)
	require.NoError(t, err)

	want := `scenario: snap
dialect: book
today: 2024-06-15

query: fav
plan: {"sorts":[],"filters":[{"exclude":false,"filters":[{"type":"flag","field":"favorite"}]}],"elements":[]}

query: sort
error E310 SortValueRequired [0,4)
`
	assert.Equal(t, want, string(data))
}

func TestSnapshot_DefaultsDialect(t *testing.T) {
	s := &Scenario{Name: "x", Today: "2024-06-15"}
	data, err := Snapshot(s, NewResult())
	require.NoError(t, err)
	assert.Equal(t, "scenario: x\ndialect: image\ntoday: 2024-06-15\n", string(data))
}
