package querysql

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hql/internal/compiler"
	"github.com/roach88/hql/internal/queryir"
	"github.com/roach88/hql/internal/testutil"
)

var imageSchema = Schema{
	Table:   "images",
	Columns: map[string]string{"filesize": "size_bytes"},
	Comment: "description",
}

const fixture = `
CREATE TABLE images (
	id          INTEGER PRIMARY KEY,
	score       INTEGER NOT NULL,
	favorite    INTEGER NOT NULL,
	partition   TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL,
	description TEXT NOT NULL
);
INSERT INTO images VALUES
	(1, 5, 1, '2021-01-05', 1000,    'sunset over sea'),
	(2, 8, 0, '2021-02-10', 2500000, 'cat on a mat'),
	(3, 3, 1, '2022-06-01', 500,     '100% pure'),
	(4, 8, 0, '2021-01-31', 4000,    'another cat');
`

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(fixture)
	require.NoError(t, err)
	return db
}

func plan(t *testing.T, text string) *queryir.QueryPlan {
	t.Helper()
	res := compiler.Compile(text, compiler.Options{
		Today:  testutil.Today,
		Logger: testutil.QuietLogger(),
	})
	require.True(t, res.OK(), "compile %q: %v", text, res.Errors)
	return res.Plan
}

func queryIDs(t *testing.T, db *sql.DB, query string, params []any) []int64 {
	t.Helper()
	rows, err := db.Query(query, params...)
	require.NoError(t, err, query)
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var (
			id, score, favorite, size int64
			partition, description    string
		)
		require.NoError(t, rows.Scan(&id, &score, &favorite, &partition, &size, &description))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestCompile_ExecutesAgainstSQLite(t *testing.T) {
	db := openDB(t)
	c := NewSQLCompiler(imageSchema)

	testCases := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3, 4}},
		{"fav", []int64{1, 3}},
		{"-fav", []int64{2, 4}},
		{"score>4 sort:-score", []int64{2, 4, 1}},
		{"score:3|score:5", []int64{1, 3}},
		{"pt:2021-01", []int64{1, 4}},
		{"pt:2021 sort:pt", []int64{1, 4, 2}},
		{"pt:[2021-01-31,2022]", []int64{2, 3, 4}},
		{"size>=1KB", []int64{1, 2, 4}},
		{"size<1KB|fav", []int64{1, 3}},
		{"id:*4", []int64{4}},
		{"id:1?", []int64{}},
		{"[cat]", []int64{2, 4}},
		{"-[cat]", []int64{1, 3}},
		{"['100%']", []int64{3}},
		{"[cat] -fav sort:-id", []int64{4, 2}},
		{"sort:score", []int64{3, 1, 2, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			query, params, unresolved, err := c.Compile(plan(t, tc.query))
			require.NoError(t, err)
			assert.Empty(t, unresolved)
			assert.Equal(t, tc.want, queryIDs(t, db, query, params))
		})
	}
}

func TestCompile_Parameterized(t *testing.T) {
	c := NewSQLCompiler(imageSchema)

	query, params, _, err := c.Compile(plan(t, "score:7 [sunset] sort:-pt"))
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT * FROM images WHERE (score = ?) AND (description LIKE ? ESCAPE '\') ORDER BY partition DESC, id ASC COLLATE BINARY`,
		query)
	assert.Equal(t, []any{int64(7), "%sunset%"}, params)
	assert.NotContains(t, query, "sunset")
}

func TestCompile_OrderByAlwaysPresent(t *testing.T) {
	c := NewSQLCompiler(imageSchema)

	testCases := []struct {
		query string
		order string
	}{
		{"", " ORDER BY id ASC COLLATE BINARY"},
		{"sort:id", " ORDER BY id ASC"},
		{"sort:-id", " ORDER BY id DESC"},
		{"sort:size,score", " ORDER BY size_bytes ASC, score ASC, id ASC COLLATE BINARY"},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			query, _, _, err := c.Compile(plan(t, tc.query))
			require.NoError(t, err)
			assert.Contains(t, query, "ORDER BY")
			assert.True(t, len(query) >= len(tc.order) && query[len(query)-len(tc.order):] == tc.order, query)
		})
	}
}

func TestCompile_Unresolved(t *testing.T) {
	c := NewSQLCompiler(Schema{Table: "images"})

	p := plan(t, "cat @alice [note] fav")
	query, params, unresolved, err := c.Compile(p)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM images WHERE (favorite <> 0) ORDER BY id ASC COLLATE BINARY", query)
	assert.Empty(t, params)
	require.Len(t, unresolved, 3)
	assert.Equal(t, []queryir.MetaKind{queryir.MetaTag, queryir.MetaAuthor, queryir.MetaComment},
		[]queryir.MetaKind{unresolved[0].Kind, unresolved[1].Kind, unresolved[2].Kind})
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		schema Schema
		plan   *queryir.QueryPlan
		errMsg string
	}{
		{
			name:   "nil plan",
			schema: imageSchema,
			errMsg: "invalid plan",
		},
		{
			name:   "empty equal",
			schema: imageSchema,
			plan: &queryir.QueryPlan{Filters: []queryir.FilterGroup{{Filters: []queryir.Filter{
				queryir.Equal{Field: "score"},
			}}}},
			errMsg: "has no values",
		},
		{
			name:   "bad table",
			schema: Schema{Table: "images; DROP TABLE images"},
			plan:   queryir.NewQueryPlan(),
			errMsg: "invalid identifier",
		},
		{
			name:   "bad column",
			schema: Schema{Table: "images", Columns: map[string]string{"score": "score--"}},
			plan:   &queryir.QueryPlan{Sorts: []queryir.Sort{{Key: "score"}}},
			errMsg: "invalid identifier",
		},
		{
			name:   "pattern in equal",
			schema: imageSchema,
			plan: &queryir.QueryPlan{Filters: []queryir.FilterGroup{{Filters: []queryir.Filter{
				queryir.Equal{Field: "id", Values: []queryir.FilterValue{queryir.PatternNumberValue{Pattern: "1*"}}},
			}}}},
			errMsg: "cannot be used as SQL parameter",
		},
		{
			name:   "number in match",
			schema: imageSchema,
			plan: &queryir.QueryPlan{Filters: []queryir.FilterGroup{{Filters: []queryir.Filter{
				queryir.Match{Field: "id", Values: []queryir.FilterValue{queryir.NumberValue{Value: 1}}},
			}}}},
			errMsg: "cannot match",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := NewSQLCompiler(tc.schema).Compile(tc.plan)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	assert.Equal(t, "1_%", patternToLike("1?*"))
}
