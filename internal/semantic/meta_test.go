package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hql/internal/dialect"
	"github.com/roach88/hql/internal/queryir"
)

func ms(v string) queryir.MetaString {
	return queryir.MetaString{Value: v}
}

func addr(parts ...string) queryir.Address {
	out := make(queryir.Address, len(parts))
	for i, p := range parts {
		out[i] = ms(p)
	}
	return out
}

func onlyElement(t *testing.T, name dialect.Name, text string) queryir.MetaElement {
	t.Helper()
	plan := mustAnalyze(t, name, text)
	require.Len(t, plan.Elements, 1)
	return plan.Elements[0]
}

func TestTagValues(t *testing.T) {
	five := ms("5")
	a, c := ms("A"), ms("C")

	testCases := []struct {
		input string
		want  queryir.MetaValue
	}{
		{"cat", queryir.SingleValue{Value: ms("cat")}},
		{"a.b", queryir.SimpleAddress{Address: addr("a", "b")}},
		{"a:b.c", queryir.CollectionOfAddress{Address: addr("a"), Values: []queryir.MetaString{ms("b.c")}}},
		{"a:{x,y}", queryir.CollectionOfAddress{Address: addr("a"), Values: []queryir.MetaString{ms("x"), ms("y")}}},
		{"rating:[A,C)", queryir.RangeOfAddress{Address: addr("rating"), From: &a, To: &c, IncludeFrom: true}},
		{"x>5", queryir.RangeOfAddress{Address: addr("x"), From: &five}},
		{"x<=5", queryir.RangeOfAddress{Address: addr("x"), To: &five, IncludeTo: true}},
		{"D~E.F", queryir.LinkToOther{Address: addr("D"), Other: addr("E", "F")}},
		{"x~+", queryir.DirectionOnly{Address: addr("x")}},
		{"x.y~-", queryir.DirectionOnly{Address: addr("x", "y"), Desc: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			el := onlyElement(t, dialect.Image, tc.input)
			assert.Equal(t, queryir.MetaTag, el.Kind)
			assert.Equal(t, []queryir.MetaValue{tc.want}, el.Values)
		})
	}
}

func TestMetaKinds(t *testing.T) {
	testCases := []struct {
		dialect dialect.Name
		input   string
		kind    queryir.MetaKind
		exclude bool
	}{
		{dialect.Image, "@alice", queryir.MetaAuthor, false},
		{dialect.Image, "-#series", queryir.MetaTopic, true},
		{dialect.Image, "$a", queryir.MetaTag, false},
		{dialect.Image, "^abc", queryir.MetaSourceTag, false},
		{dialect.Book, "cat", queryir.MetaTag, false},
		{dialect.Source, "cat", queryir.MetaSourceTag, false},
		{dialect.Topic, "-name", queryir.MetaName, true},
		{dialect.Author, "alice", queryir.MetaName, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.dialect)+" "+tc.input, func(t *testing.T) {
			el := onlyElement(t, tc.dialect, tc.input)
			assert.Equal(t, tc.kind, el.Kind)
			assert.Equal(t, tc.exclude, el.Exclude)
		})
	}
}

func TestPrefixedTagAcceptsAddress(t *testing.T) {
	el := onlyElement(t, dialect.Image, "$a.b|c")
	assert.Equal(t, queryir.MetaTag, el.Kind)
	assert.Equal(t, []queryir.MetaValue{
		queryir.SimpleAddress{Address: addr("a", "b")},
		queryir.SingleValue{Value: ms("c")},
	}, el.Values)
}

func TestPrecision(t *testing.T) {
	el := onlyElement(t, dialect.Image, "`cat`|'dog'|\"cow\"")
	assert.Equal(t, []queryir.MetaValue{
		queryir.SingleValue{Value: queryir.MetaString{Value: "cat", Precise: true}},
		queryir.SingleValue{Value: ms("dog")},
		queryir.SingleValue{Value: ms("cow")},
	}, el.Values)
}

func TestEmptyTagCollection(t *testing.T) {
	plan := mustAnalyze(t, dialect.Image, "a:{}")
	assert.True(t, plan.Empty())

	el := onlyElement(t, dialect.Image, "a:{}|b")
	assert.Equal(t, []queryir.MetaValue{queryir.SingleValue{Value: ms("b")}}, el.Values)
}

func TestAnnotations(t *testing.T) {
	el := onlyElement(t, dialect.Image, "[foo|bar.baz]")
	assert.Equal(t, queryir.MetaComment, el.Kind)
	assert.Equal(t, []queryir.MetaValue{
		queryir.SingleValue{Value: ms("foo")},
		queryir.SingleValue{Value: ms("bar.baz")},
	}, el.Values)

	el = onlyElement(t, dialect.Image, "-[@#foo]")
	assert.Equal(t, queryir.MetaName, el.Kind)
	assert.True(t, el.Exclude)
	assert.Equal(t, []queryir.MetaKind{queryir.MetaAuthor, queryir.MetaTopic}, el.Targets)

	el = onlyElement(t, dialect.Topic, "[free text]")
	assert.Equal(t, queryir.MetaComment, el.Kind)
}

func TestExampleQuery(t *testing.T) {
	plan := mustAnalyze(t, dialect.Image, "a.b rating:[A,C)|D~E sort:+partition,-^id")
	a, c := ms("A"), ms("C")

	assert.Equal(t, []queryir.Sort{{Key: "partition"}, {Key: "source_id", Desc: true}}, plan.Sorts)
	assert.Empty(t, plan.Filters)
	assert.Equal(t, []queryir.MetaElement{
		{Kind: queryir.MetaTag, Values: []queryir.MetaValue{queryir.SimpleAddress{Address: addr("a", "b")}}},
		{Kind: queryir.MetaTag, Values: []queryir.MetaValue{
			queryir.RangeOfAddress{Address: addr("rating"), From: &a, To: &c, IncludeFrom: true},
			queryir.LinkToOther{Address: addr("D"), Other: addr("E")},
		}},
	}, plan.Elements)
}
