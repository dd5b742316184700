package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

func TestTestCommand_HarnessScenariosPass(t *testing.T) {
	out := mustExecute(t, "test", harnessScenarios)
	assert.Contains(t, out, "✓ owner_update")
	assert.Contains(t, out, "✓ non_owner_rejected")
	assert.Contains(t, out, "5 passed, 0 failed, 5 total")
}

func TestTestCommand_SingleFileJSON(t *testing.T) {
	out := mustExecute(t, "test", "--format", "json", filepath.Join(harnessScenarios, "create_record.yaml"))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const failingScenario = `name: wrong_owner
description: expects the wrong owner
steps:
  - op: create
    as: alice
    data: x
  - op: get
    id: 1
    expect:
      owner: bob
`

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "wrong_owner.yaml", failingScenario)

	out, _, err := execute(t, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_owner")
	assert.Contains(t, out, `expected owner "bob", got "alice"`)
}

func TestTestCommand_UpdateThenCompareGolden(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0o755))
	writeScenario(t, scenarios, "one.yaml", `name: one
description: single create
steps:
  - op: create
    as: alice
    data: x
`)

	mustExecute(t, "test", "--update", scenarios)

	golden, err := os.ReadFile(filepath.Join(root, "golden", "one.golden"))
	require.NoError(t, err)
	assert.Equal(t, `scenario: one
steps:
  1 create as="alice" data="x" => ok id=1
events:
  #1 created record=1 owner="alice" data="x"
`, string(golden))

	mustExecute(t, "test", scenarios)

	require.NoError(t, os.WriteFile(filepath.Join(root, "golden", "one.golden"), []byte("stale\n"), 0o644))
	out, _, err := execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
