package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recordregistry/internal/registry"
)

// VerifyResult is the outcome of a successful verify.
type VerifyResult struct {
	Events  int64 `json:"events"`
	Records int64 `json:"records"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the event log's hash chain and replay it",
		Long: `Walk the whole event log, check sequence numbers and the hash chain,
then replay it to check that ids are gapless and every update targets an
existing record.

Exit codes:
  0 - Log is intact
  1 - Log is broken or inconsistent
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.feed.Verify(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("event log broken after %d valid events", n), err)
	}

	reg, err := registry.Open(ctx, s.feed, registry.WithLogger(s.logger))
	if err != nil {
		return WrapExitError(ExitFailure, "event log inconsistent", err)
	}

	stored, err := s.store.CountRecords(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count records", err)
	}
	if stored != reg.Count() {
		return NewExitError(ExitFailure,
			fmt.Sprintf("record count mismatch: log has %d created events, replay built %d records", stored, reg.Count()))
	}

	res := VerifyResult{Events: n, Records: reg.Count()}
	return opts.formatter(cmd).Emit(
		fmt.Sprintf("OK: %d events, %d records", res.Events, res.Records),
		res,
	)
}
