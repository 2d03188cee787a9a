package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/lazylist/internal/source"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Count  int
	Prefix string
}

// SeedResult reports what seed wrote.
type SeedResult struct {
	Database string `json:"database"`
	Added    int    `json:"added"`
	Total    int    `json:"total"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Append generated records to the database",
		Long: `Append generated records to the configured SQLite database, creating it
if needed. New records get fresh ids and sequence numbers after the
current highest one, so a running scroll --watch picks them up at the end.

Example:
  lazylist seed --count 100
  lazylist seed -c lazylist.yaml --count 5 --prefix "late"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 50, "number of records to add")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "Record", "title prefix")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) (err error) {
	if opts.Count < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("count must be >= 0, got %d", opts.Count))
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	db, err := source.OpenSQLite(cfg.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	ctx := cmd.Context()
	last, err := db.MaxSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}

	records := make([]source.Record, opts.Count)
	for i := range records {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		seq := last + int64(i) + 1
		records[i] = source.Record{
			ID:    id.String(),
			Seq:   seq,
			Title: fmt.Sprintf("%s %d", opts.Prefix, seq),
			Body:  fmt.Sprintf("Generated record number %d.", seq),
		}
	}
	if err := db.Upsert(ctx, records...); err != nil {
		return WrapExitError(ExitCommandError, "failed to write records", err)
	}

	total, err := db.Count(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}
	formatter.VerboseLog("Seeded %s with sequence %d..%d", cfg.Database, last+1, last+int64(opts.Count))

	result := SeedResult{Database: cfg.Database, Added: opts.Count, Total: total}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ added %d record(s) to %s (%d total)", result.Added, result.Database, result.Total))
}
