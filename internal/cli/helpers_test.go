package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/roach88/recordregistry/internal/config"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// tempDB returns a database path in a fresh temp dir and clears the
// environment override.
func tempDB(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvDatabase, "")
	return filepath.Join(t.TempDir(), "registry.db")
}

// mustExecute runs the command and fails the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}
