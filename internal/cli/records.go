package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/recordregistry/internal/record"
)

// WriteOptions holds flags for commands that change the registry.
type WriteOptions struct {
	*RootOptions
	As string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <data>",
		Short: "Create a record owned by --as",
		Long: `Create a new record with the given data. The caller named by --as becomes
its owner. Prints the new record id.

Examples:
  recreg create --as alice "Hello World"
  recreg create --as alice "Hello World" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "caller identity (required)")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

func runCreate(opts *WriteOptions, cmd *cobra.Command, data string) error {
	ctx := cmd.Context()
	caller, err := parseCaller(opts.As)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	reg, err := s.registry(ctx)
	if err != nil {
		return err
	}

	id, err := reg.Create(ctx, caller, data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create record", err)
	}

	return opts.formatter(cmd).Emit(
		fmt.Sprintf("Record created with ID: %d", id),
		map[string]int64{"id": id},
	)
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id> <data>",
		Short: "Replace the data of a record you own",
		Long: `Replace the data of record <id>. Only the record's owner may do this.

Exit codes:
  0 - Record updated
  1 - Rejected (RECORD_NOT_FOUND or NOT_OWNER); nothing changed
  2 - Command error

Examples:
  recreg update --as alice 1 "Updated Data"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "caller identity (required)")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

func runUpdate(opts *WriteOptions, cmd *cobra.Command, rawID, data string) error {
	ctx := cmd.Context()
	caller, err := parseCaller(opts.As)
	if err != nil {
		return err
	}
	id, err := parseRecordID(rawID)
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	reg, err := s.registry(ctx)
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	if err := reg.Update(ctx, caller, id, data); err != nil {
		return f.Rejected(err)
	}

	return f.Emit(
		fmt.Sprintf("Record %d updated", id),
		map[string]int64{"id": id},
	)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a record",
		Long: `Show the id, data, owner and creation time of a record.

Examples:
  recreg get 1
  recreg get 1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runGet(opts *RootOptions, cmd *cobra.Command, rawID string) error {
	ctx := cmd.Context()
	id, err := parseRecordID(rawID)
	if err != nil {
		return err
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	reg, err := s.registry(ctx)
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	rec, err := reg.Get(id)
	if err != nil {
		return f.Rejected(err)
	}
	return f.Emit(formatRecord(rec), rec)
}

func formatRecord(rec record.Record) string {
	return fmt.Sprintf("ID: %d\nData: %s\nOwner: %s\nCreated: %s",
		rec.ID, rec.Data, rec.Owner, rec.CreatedAt.Format(time.RFC3339))
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "count",
		Short:         "Print the number of records ever created",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(rootOpts, cmd)
		},
	}
	return cmd
}

func runCount(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	reg, err := s.registry(cmd.Context())
	if err != nil {
		return err
	}

	n := reg.Count()
	return opts.formatter(cmd).Emit(strconv.FormatInt(n, 10), map[string]int64{"count": n})
}

func parseRecordID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid record id %q", s), err)
	}
	return id, nil
}
