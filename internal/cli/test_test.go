package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: smoke
description: Flag filter with a sort
today: "2024-06-15"
cases:
  - query: "fav sort:-score"
    assertions:
      - type: ok
      - type: sorts
        values: [-score]
`

const failingScenario = `name: wrong
description: Asserts the wrong filter field
today: "2024-06-15"
cases:
  - query: "fav"
    assertions:
      - type: filter_fields
        values: [score]
`

// scenarioDir lays out root/scenarios with the given files and returns the
// scenarios directory.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "overlays"), 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommand_Pass(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})

	stdout, _, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ smoke (1 cases)")
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Fail(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"smoke.yaml": passingScenario,
		"wrong.yaml": failingScenario,
	})

	stdout, _, err := execute(t, "", "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)

	require.Len(t, resp.Data.Scenarios, 2)
	wrong := resp.Data.Scenarios[1]
	assert.Equal(t, "wrong", wrong.Name)
	assert.False(t, wrong.Pass)
	require.NotEmpty(t, wrong.Errors)
	assert.Contains(t, wrong.Errors[0], "filter_fields")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"smoke.yaml": passingScenario,
		"wrong.yaml": failingScenario,
	})

	stdout, _, err := execute(t, "", "test", dir, "--filter", "sm*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Golden(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})
	goldenPath := filepath.Join(filepath.Dir(dir), "golden", "smoke.golden")

	stdout, _, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(golden updated)")

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), "scenario: smoke\n")
	assert.Contains(t, string(golden), "query: fav sort:-score\n")

	_, _, err = execute(t, "", "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("stale\n"), 0644))
	stdout, _, err = execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "does not match golden file")
}

func TestTestCommand_GoldenDirFlag(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})
	golden := t.TempDir()

	_, _, err := execute(t, "", "test", dir, "--golden", golden, "--update")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(golden, "smoke.golden"))
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\n"})

	stdout, _, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "description is required")
}

func TestTestCommand_Empty(t *testing.T) {
	dir := scenarioDir(t, nil)

	stdout, _, err := execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_HarnessScenarios(t *testing.T) {
	stdout, _, err := execute(t, "", "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "0 failed, 6 total")
}
