package cli

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/recordregistry/internal/config"
	"github.com/roach88/recordregistry/internal/feed"
	"github.com/roach88/recordregistry/internal/logging"
	"github.com/roach88/recordregistry/internal/metrics"
	"github.com/roach88/recordregistry/internal/registry"
	"github.com/roach88/recordregistry/internal/store"
)

// session is the per-command wiring: config, logger, metrics, the SQLite
// store and the feed over it.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	gatherer *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.Store
	feed     *feed.Feed
}

// openSession loads config, applies flag overrides and opens the database.
// The caller must Close the session.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid logging configuration", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	return &session{
		cfg:      cfg,
		logger:   logger,
		gatherer: promReg,
		metrics:  m,
		store:    st,
		feed:     feed.New(st, feed.WithLogger(logger), feed.WithMetrics(m)),
	}, nil
}

// registry replays the log into a Registry.
func (s *session) registry(ctx context.Context) (*registry.Registry, error) {
	reg, err := registry.Open(ctx, s.feed,
		registry.WithLogger(s.logger),
		registry.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to replay event log", err)
	}
	return reg, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// discardUnlessVerbose returns a debug logger on stderr with --verbose and
// a discarding logger otherwise.
func discardUnlessVerbose(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	if !opts.Verbose {
		return logging.Discard()
	}
	logger, err := logging.New("debug", logging.FormatText, cmd.ErrOrStderr())
	if err != nil {
		return logging.Discard()
	}
	return logger
}
