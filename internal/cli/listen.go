package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/recordregistry/internal/metrics"
	"github.com/roach88/recordregistry/internal/record"
)

// ListenOptions holds flags for the listen command.
type ListenOptions struct {
	*RootOptions
	From        int64
	Kind        string
	Interval    time.Duration
	MetricsAddr string
	Limit       int
}

// NewListenCommand creates the listen command.
func NewListenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Follow the event log",
		Long: `Print events as they are appended to the database, including events
written by other processes. Without --from only new events are printed.
Stops on Ctrl+C, or after --limit events.

With --metrics-addr, Prometheus metrics are served on /metrics while
listening.

Examples:
  recreg listen
  recreg listen --kind created
  recreg listen --from 1 --interval 100ms --metrics-addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.From, "from", 0, "first sequence number to print (default: next event)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only print events of this kind (created|updated)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "poll interval (default from config)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many events (0 = no limit)")

	return cmd
}

func runListen(opts *ListenOptions, cmd *cobra.Command) error {
	kinds, err := parseKinds(opts.Kind)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	from := opts.From
	if from <= 0 {
		tail, err := s.store.Tail(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read log tail", err)
		}
		from = tail + 1
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = s.cfg.Listen.Interval
	}
	addr := opts.MetricsAddr
	if addr == "" {
		addr = s.cfg.MetricsAddr
	}

	if opts.Format != FormatJSON {
		fmt.Fprintln(cmd.ErrOrStderr(), "Listening for events... (Ctrl+C to stop)")
	}

	g, gctx := errgroup.WithContext(ctx)

	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(s.gatherer))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
		s.logger.Info("serving metrics", "addr", addr)
	}

	g.Go(func() error {
		defer cancel()
		return follow(gctx, opts, cmd, s, from, interval, kinds)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "listen failed", err)
	}
	return nil
}

func follow(ctx context.Context, opts *ListenOptions, cmd *cobra.Command, s *session, from int64, interval time.Duration, kinds []record.EventKind) error {
	sub := s.feed.Poll(ctx, from, interval, kinds...)
	defer sub.Close()

	w := cmd.OutOrStdout()
	enc := json.NewEncoder(w)
	seen := 0
	for ev := range sub.Events() {
		if opts.Format == FormatJSON {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(w, formatEvent(ev))
		}

		seen++
		if opts.Limit > 0 && seen >= opts.Limit {
			return nil
		}
	}
	return sub.Err()
}
