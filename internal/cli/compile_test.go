package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type compileResponse struct {
	Status  string `json:"status"`
	TraceID string `json:"trace_id"`
	Data    struct {
		Query       string          `json:"query"`
		Dialect     string          `json:"dialect"`
		Plan        json.RawMessage `json:"plan"`
		Fingerprint string          `json:"fingerprint"`
		Warnings    []struct {
			Kind string `json:"kind"`
		} `json:"warnings"`
		SQL *struct {
			Query      string            `json:"query"`
			Params     []any             `json:"params"`
			Unresolved []json.RawMessage `json:"unresolved"`
		} `json:"sql"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Errors []struct {
				Kind  string `json:"kind"`
				Begin int    `json:"begin"`
				End   int    `json:"end"`
			} `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

func compileJSON(t *testing.T, args ...string) (compileResponse, error) {
	t.Helper()
	stdout, _, err := execute(t, "", append([]string{"--format", "json", "compile", "--today", "2024-06-15"}, args...)...)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	return resp, err
}

func TestCompileCommand_Text(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "--today", "2024-06-15", "fav", "sort:-score")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Compiled (image)")
	assert.Contains(t, stdout, "Plan:")
	assert.Contains(t, stdout, `"favorite"`)
	assert.Contains(t, stdout, "Fingerprint: ")
}

func TestCompileCommand_JSON(t *testing.T) {
	resp, err := compileJSON(t, "score>3")
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, "score>3", resp.Data.Query)
	assert.Equal(t, "image", resp.Data.Dialect)
	assert.Len(t, resp.Data.Fingerprint, 64)
	assert.NotEmpty(t, resp.Data.Plan)
	assert.Nil(t, resp.Data.SQL)
}

func TestCompileCommand_SameQuerySameFingerprint(t *testing.T) {
	a, err := compileJSON(t, "score>3  fav")
	require.NoError(t, err)
	b, err := compileJSON(t, "score>3", "fav")
	require.NoError(t, err)

	assert.Equal(t, a.Data.Fingerprint, b.Data.Fingerprint)
	assert.NotEqual(t, a.TraceID, b.TraceID)
}

func TestCompileCommand_Warnings(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "'cat")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Compiled")
	assert.Contains(t, stdout, "warning[W103] ExpectQuoteButEOF")
}

func TestCompileCommand_Rejected(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "score:x")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "✗ Query rejected")
	assert.Contains(t, stdout, "error[E301] TypeCastError")
	assert.Contains(t, stdout, "  score:x\n        ^\n")
}

func TestCompileCommand_RejectedJSON(t *testing.T) {
	resp, err := compileJSON(t, "score:x")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E301", resp.Error.Code)
	require.Len(t, resp.Error.Details.Errors, 1)
	assert.Equal(t, "TypeCastError", resp.Error.Details.Errors[0].Kind)
	assert.Equal(t, 6, resp.Error.Details.Errors[0].Begin)
	assert.Equal(t, 7, resp.Error.Details.Errors[0].End)
}

func TestCompileCommand_CommandErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		code string
	}{
		{"no query", []string{"compile"}, ErrCodeBadFlag},
		{"unknown dialect", []string{"compile", "-d", "music", "cat"}, ErrCodeDialect},
		{"bad today", []string{"compile", "--today", "2024/06/15", "cat"}, ErrCodeBadFlag},
		{"missing file", []string{"compile", "-f", "does-not-exist.hql"}, ErrCodeBadFlag},
		{"file and argument", []string{"compile", "-f", "-", "cat"}, ErrCodeBadFlag},
		{"missing overlay", []string{"compile", "--overlay", "does-not-exist.yaml", "cat"}, ErrCodeDialect},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+tc.code+"]")
		})
	}
}

func TestCompileCommand_DialectFlag(t *testing.T) {
	resp, err := compileJSON(t, "--dialect", "BOOK", "count>3")
	require.NoError(t, err)
	assert.Equal(t, "book", resp.Data.Dialect)
}

func TestCompileCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.hql")
	require.NoError(t, os.WriteFile(path, []byte("fav -cat\n"), 0644))

	resp, err := compileJSON(t, "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "fav -cat", resp.Data.Query)
}

func TestCompileCommand_Stdin(t *testing.T) {
	stdout, _, err := execute(t, "score>=5\n", "--format", "json", "compile", "-f", "-")
	require.NoError(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "score>=5", resp.Data.Query)
}

func TestCompileCommand_LexicalFlags(t *testing.T) {
	resp, err := compileJSON(t, "score：5")
	require.NoError(t, err)
	assert.NotContains(t, string(resp.Data.Plan), `"field": "score"`)

	resp, err = compileJSON(t, "--chinese-symbols", "score：5")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data.Plan), `"field": "score"`)
}

func TestCompileCommand_SQL(t *testing.T) {
	resp, err := compileJSON(t, "--sql", "images", "fav", "cat")
	require.NoError(t, err)

	require.NotNil(t, resp.Data.SQL)
	assert.Contains(t, resp.Data.SQL.Query, "SELECT * FROM images WHERE")
	assert.Contains(t, resp.Data.SQL.Query, "favorite <> 0")
	assert.Contains(t, resp.Data.SQL.Query, "ORDER BY id ASC COLLATE BINARY")
	assert.Empty(t, resp.Data.SQL.Params)
	assert.Len(t, resp.Data.SQL.Unresolved, 1)
}

func TestCompileCommand_SQLText(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "--sql", "images", "--comment-column", "description", "score:7", "[sunset]")
	require.NoError(t, err)

	assert.Contains(t, stdout, "SQL: SELECT * FROM images WHERE (score = ?) AND (description LIKE ? ESCAPE '\\')")
	assert.Contains(t, stdout, "Params: [7 %sunset%]")
	assert.NotContains(t, stdout, "Unresolved:")
}

func TestCompileCommand_SQLInvalidTable(t *testing.T) {
	stdout, _, err := execute(t, "", "compile", "--sql", "images; DROP TABLE x", "fav")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeSQL+"]")
}

func TestCompileCommand_Output(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")

	_, _, err := execute(t, "", "compile", "-o", path, "fav")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var plan map[string]any
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.Contains(t, plan, "filters")
}

func TestCompileCommand_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`dialect: book
fields:
  - name: language
    aliases: [lang]
    type: string
`), 0644))

	resp, err := compileJSON(t, "-d", "book", "--overlay", path, "lang:en")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data.Plan), `"language"`)
}

func TestCompileCommand_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "", "--verbose", "--format", "json", "compile", "fav")
	require.NoError(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Contains(t, stderr, "hql compiled")
}
