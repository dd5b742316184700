package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recordregistry/internal/record"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	From   int64
	Kind   string
	Record int64
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past events in order",
		Long: `List stored events with sequence number >= --from, oldest first.

Examples:
  recreg history
  recreg history --from 10 --kind updated
  recreg history --record 3
  recreg history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.From, "from", 1, "first sequence number to list")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only list events of this kind (created|updated)")
	cmd.Flags().Int64Var(&opts.Record, "record", 0, "only list events for this record id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	kinds, err := parseKinds(opts.Kind)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var evs []record.Event
	if opts.Record > 0 {
		evs, err = s.store.ReadRecordEvents(cmd.Context(), opts.Record)
	} else {
		evs, err = s.feed.History(cmd.Context(), opts.From)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	matched := make([]record.Event, 0, len(evs))
	for _, ev := range evs {
		if ev.Seq >= opts.From && ev.Matches(kinds) {
			matched = append(matched, ev)
		}
	}

	if opts.Format == FormatJSON {
		return opts.formatter(cmd).Success(matched)
	}

	w := cmd.OutOrStdout()
	if len(matched) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}
	for _, ev := range matched {
		fmt.Fprintln(w, formatEvent(ev))
	}
	return nil
}

// formatEvent renders one event as a single line.
func formatEvent(ev record.Event) string {
	if ev.Kind == record.KindCreated {
		return fmt.Sprintf("#%d [%s] id=%d owner=%s data=%q", ev.Seq, ev.Kind, ev.RecordID, ev.Owner, ev.Data)
	}
	return fmt.Sprintf("#%d [%s] id=%d data=%q", ev.Seq, ev.Kind, ev.RecordID, ev.Data)
}

func parseKinds(s string) ([]record.EventKind, error) {
	if s == "" {
		return nil, nil
	}
	k, err := record.ParseEventKind(s)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --kind", err)
	}
	return []record.EventKind{k}, nil
}
