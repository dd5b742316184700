package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
name: test_scenario
description: "Test scenario for validation"
steps:
  - op: create
    as: alice
    data: hello
    expect:
      id: 1
  - op: count
assertions:
  - type: final_count
    count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "test_scenario", s.Name)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, OpCreate, s.Steps[0].Op)
	require.NotNil(t, s.Steps[0].Expect.ID)
	assert.Equal(t, int64(1), *s.Steps[0].Expect.ID)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, int64(1), *s.Assertions[0].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nstep:\n  - op: count\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nsteps:\n  - op: count\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nsteps:\n  - op: count\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: d\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: delete\n    id: 1\n",
			wantErr: `unknown op "delete"`,
		},
		{
			name:    "create without caller",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: create\n    data: y\n",
			wantErr: "as is required for create",
		},
		{
			name:    "update without id",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: update\n    as: a\n",
			wantErr: "id is required for update",
		},
		{
			name:    "get without id",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: get\n",
			wantErr: "id is required for get",
		},
		{
			name:    "unknown error code",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: count\n    expect:\n      error: TEAPOT\n",
			wantErr: `unknown error code "TEAPOT"`,
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: count\nassertions:\n  - type: vibes\n",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "event_count without count",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: count\nassertions:\n  - type: event_count\n",
			wantErr: "count is required for event_count",
		},
		{
			name:    "bad event kind",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: count\nassertions:\n  - type: event_order\n    kinds: [deleted]\n",
			wantErr: "unknown event kind",
		},
		{
			name:    "final_record without fields",
			yaml:    "name: x\ndescription: d\nsteps:\n  - op: count\nassertions:\n  - type: final_record\n    id: 1\n",
			wantErr: "data or owner is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioDir_SortedByName(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"create_record",
		"interleaved_owners",
		"non_owner_rejected",
		"owner_update",
		"unknown_record",
	}, names)
}

func TestLoadScenarioDir_ReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\n"), 0o644))

	_, err := LoadScenarioDir(dir)
	assert.ErrorContains(t, err, "bad.yaml")
}
