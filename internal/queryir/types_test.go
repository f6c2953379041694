package queryir

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterJSON(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name:   "equal",
			filter: Equal{Field: "id", Values: []FilterValue{NumberValue{Value: 12}}},
			want:   `{"type":"equal","field":"id","values":[{"type":"number","value":12}]}`,
		},
		{
			name:   "match",
			filter: Match{Field: "desc", Values: []FilterValue{StringValue{Value: "a"}, PatternNumberValue{Pattern: "4?6"}}},
			want:   `{"type":"match","field":"desc","values":[{"type":"string","value":"a"},{"type":"pattern_number","pattern":"4?6"}]}`,
		},
		{
			name: "range",
			filter: Range{
				Field:       "pt",
				From:        DateValue{Value: NewDate(2021, time.January, 1)},
				To:          DateValue{Value: NewDate(2021, time.February, 1)},
				IncludeFrom: true,
			},
			want: `{"type":"range","field":"pt","from":{"type":"date","value":"2021-01-01"},"to":{"type":"date","value":"2021-02-01"},"include_from":true,"include_to":false}`,
		},
		{
			name:   "open range",
			filter: Range{Field: "size", To: SizeValue{Bytes: 1024}},
			want:   `{"type":"range","field":"size","to":{"type":"size","bytes":1024},"include_from":false,"include_to":false}`,
		},
		{
			name:   "flag",
			filter: Flag{Field: "favorite"},
			want:   `{"type":"flag","field":"favorite"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.filter)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestMetaValueJSON(t *testing.T) {
	from := MetaString{Value: "1"}
	testCases := []struct {
		name  string
		value MetaValue
		want  string
	}{
		{
			name:  "single",
			value: SingleValue{Value: MetaString{Value: "a", Precise: true}},
			want:  `{"type":"single","value":{"value":"a","precise":true}}`,
		},
		{
			name:  "range",
			value: RangeOfAddress{Address: Address{{Value: "rating"}}, From: &from, IncludeFrom: true},
			want:  `{"type":"range_of_address","address":[{"value":"rating","precise":false}],"from":{"value":"1","precise":false},"include_from":true,"include_to":false}`,
		},
		{
			name:  "direction",
			value: DirectionOnly{Address: Address{{Value: "x"}}, Desc: true},
			want:  `{"type":"direction_only","address":[{"value":"x","precise":false}],"desc":true}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.value)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestEmptyPlanJSON(t *testing.T) {
	data, err := json.Marshal(NewQueryPlan())
	require.NoError(t, err)
	assert.JSONEq(t, `{"sorts":[],"filters":[],"elements":[]}`, string(data))
	assert.True(t, NewQueryPlan().Empty())
}

func TestFilterSealed(t *testing.T) {
	filters := []Filter{Equal{Field: "a"}, Match{Field: "b"}, Range{Field: "c"}, Flag{Field: "d"}}

	for _, f := range filters {
		switch f.(type) {
		case Equal, Match, Range, Flag:
		default:
			t.Fatalf("unexpected filter %T", f)
		}
	}
	assert.Equal(t, "c", filters[2].FieldName())
}

func TestDate(t *testing.T) {
	d := NewDate(2021, time.December, 32)
	assert.Equal(t, "2022-01-01", d.String())
	assert.Equal(t, "2022-01-02", d.AddDays(1).String())
	assert.True(t, NewDate(2021, time.March, 1).Before(d))

	var parsed Date
	require.NoError(t, parsed.UnmarshalText([]byte("2020-02-29")))
	assert.Equal(t, NewDate(2020, time.February, 29), parsed)
	assert.Error(t, parsed.UnmarshalText([]byte("2021-02-30")))
}

func TestMetaStringRendering(t *testing.T) {
	addr := Address{{Value: "site"}, {Value: "tag", Precise: true}}
	assert.Equal(t, "site.`tag`", addr.String())
}
