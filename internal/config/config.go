// Package config loads recreg configuration from YAML.
//
// A config file is decoded with yaml.v3, unified with the embedded CUE
// schema (which supplies defaults and rejects unknown or malformed fields),
// then decoded into Config. RECREG_DATABASE overrides the database path.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// EnvDatabase overrides Config.Database when set.
const EnvDatabase = "RECREG_DATABASE"

// Config is the validated recreg configuration.
type Config struct {
	Database    string       `json:"database"`
	Log         LogConfig    `json:"log"`
	Listen      ListenConfig `json:"listen"`
	MetricsAddr string       `json:"metrics_addr"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// ListenConfig controls how `recreg listen` follows the feed.
type ListenConfig struct {
	PollInterval string `json:"poll_interval"`

	// Interval is PollInterval parsed.
	Interval time.Duration `json:"-"`
}

// Error is a configuration value that failed schema validation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no file is given, with the
// environment override applied.
func Default() (*Config, error) {
	return Parse(nil)
}

// Load reads and validates the YAML file at path. An empty path means
// Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates YAML config bytes against the schema.
func Parse(data []byte) (*Config, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}

	interval, err := time.ParseDuration(cfg.Listen.PollInterval)
	if err != nil || interval <= 0 {
		return nil, &Error{Field: "listen.poll_interval", Message: fmt.Sprintf("must be a positive duration, got %q", cfg.Listen.PollInterval)}
	}
	cfg.Listen.Interval = interval

	if db := strings.TrimSpace(os.Getenv(EnvDatabase)); db != "" {
		cfg.Database = db
	}
	return &cfg, nil
}

func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}
	first := errs[0]
	return &Error{
		Field:   strings.Join(first.Path(), "."),
		Message: first.Error(),
	}
}
