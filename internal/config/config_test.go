package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Setenv(EnvDatabase, "")

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "recreg.db", cfg.Database)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "500ms", cfg.Listen.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Listen.Interval)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestParse_OverridesDefaults(t *testing.T) {
	t.Setenv(EnvDatabase, "")

	cfg, err := Parse([]byte(`
database: /var/lib/recreg/registry.db
log:
  level: debug
listen:
  poll_interval: 2s
metrics_addr: ":9090"
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/recreg/registry.db", cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 2*time.Second, cfg.Listen.Interval)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown level", "log:\n  level: loud\n"},
		{"unknown format", "log:\n  format: xml\n"},
		{"unknown field", "databse: x.db\n"},
		{"empty database", "database: \"\"\n"},
		{"interval not a duration", "listen:\n  poll_interval: soon\n"},
		{"interval is a number", "listen:\n  poll_interval: 5\n"},
		{"zero interval", "listen:\n  poll_interval: 0s\n"},
		{"malformed yaml", "log: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var cfgErr *Error
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: file.db\n"), 0o644))

	t.Setenv(EnvDatabase, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.Database)

	t.Setenv(EnvDatabase, "env.db")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
