package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hql/internal/ast"
)

func TestDialectCommand_List(t *testing.T) {
	stdout, _, err := execute(t, "", "dialect")
	require.NoError(t, err)
	assert.Equal(t, "author\nbook\nimage\nsource\ntopic\n", stdout)
}

func TestDialectCommand_Describe(t *testing.T) {
	stdout, _, err := execute(t, "", "dialect", "image")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Dialect: image (default kind tag)")
	assert.Contains(t, stdout, "FIELD")
	assert.Contains(t, stdout, "filesize")
	assert.Contains(t, stdout, "^source_id")
	assert.Contains(t, stdout, "jpg,png,gif,webp,bmp,avif")
}

func TestDialectCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "", "--format", "json", "dialect", "image")
	require.NoError(t, err)

	var resp struct {
		Data DialectInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	fields := make(map[string]FieldInfo)
	for _, f := range resp.Data.Fields {
		if !f.Source {
			fields[f.Name] = f
		}
	}

	require.Contains(t, fields, "favorite")
	assert.Equal(t, "flag", fields["favorite"].Type)
	assert.Empty(t, fields["favorite"].Relations)

	require.Contains(t, fields, "score")
	assert.Contains(t, fields["score"].Relations, ast.FamilyGreaterEq)

	require.Contains(t, fields, "description")
	assert.Equal(t, []ast.Family{ast.FamilyColon}, fields["description"].Relations)
}

func TestDialectCommand_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sorts:
  - key: language
    aliases: [lang]
`), 0644))

	stdout, _, err := execute(t, "", "dialect", "book", "--overlay", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "language")
}

func TestDialectCommand_Unknown(t *testing.T) {
	stdout, _, err := execute(t, "", "dialect", "music")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeDialect+"]")
}
