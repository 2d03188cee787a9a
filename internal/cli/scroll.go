package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/lazylist/internal/config"
	"github.com/roach88/lazylist/internal/engine"
	"github.com/roach88/lazylist/internal/loader"
	"github.com/roach88/lazylist/internal/observer"
	"github.com/roach88/lazylist/internal/source"
	"github.com/roach88/lazylist/internal/store"
)

// ScrollOptions holds flags for the scroll command.
type ScrollOptions struct {
	*RootOptions
	Limit  int
	Watch  bool
	Settle time.Duration
}

// recordView is a record as scroll prints it in JSON.
type recordView struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Title    string `json:"title"`
}

// NewScrollCommand creates the scroll command.
func NewScrollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScrollOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scroll",
		Short: "Read the database one increment at a time",
		Long: `Read every record in the configured database through a loading engine,
the way a list view scrolling to the bottom would. Each record is read with
the "present" hint, so the next page is loaded once the reader comes within
look_ahead records of the end.

With --watch, scroll keeps running after the last record. When the database
changes it refreshes from the first page and prints records it has not
shown yet.

With --format json, each record is printed as one JSON object per line.

Example:
  lazylist scroll -c lazylist.yaml
  lazylist scroll --limit 30 --format json
  lazylist scroll --watch`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScroll(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many records (0 means all)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "keep running and pick up database changes (overrides config)")
	cmd.Flags().DurationVar(&opts.Settle, "settle", source.DefaultSettle, "quiet period before a database change is picked up")

	return cmd
}

func runScroll(opts *ScrollOptions, cmd *cobra.Command) (err error) {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("limit must be >= 0, got %d", opts.Limit))
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	watch := cfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := slog.Default()
	ctx := cmd.Context()

	db, err := source.OpenSQLite(cfg.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	s, err := newRecordStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid sort", err)
	}

	var l loader.Loader[source.Record] = source.NewThrottle[source.Record](db.Pager(cfg.PageSize), cfg.Rate, cfg.Burst)
	e, err := engine.New(l, s,
		engine.WithLookAhead(cfg.LookAhead),
		engine.WithLogger(logger),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	defer e.Close()

	e.RegisterLoadingObserver(&engine.StateFuncs{
		OnLoadingChanged: func(loading bool) {
			logger.DebugContext(ctx, "loading", "loading", loading, "size", e.Size())
		},
	})
	// Registering the first change observer starts loading.
	e.RegisterChangeObserver(&observer.ChangeFuncs{})

	var changed chan struct{}
	if watch {
		changed = make(chan struct{}, 1)
		err := source.Watch(ctx, cfg.Database, opts.Settle, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to watch database", err)
		}
		formatter.VerboseLog("Watching %s", cfg.Database)
	}

	emit := textEmitter(cmd.OutOrStdout())
	if formatter.JSON() {
		emit = jsonEmitter(cmd.OutOrStdout())
	}

	n, err := scroll(ctx, e, opts.Limit, emit, changed)
	if err != nil {
		return scrollError(formatter, err)
	}

	if !formatter.JSON() {
		fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", n)
	}
	return nil
}

// scrollError maps an error that ended the reader loop to the command's
// result. Interrupting a scroll is not a failure.
func scrollError(f *OutputFormatter, err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	var le *engine.LoadError
	if errors.As(err, &le) {
		_ = f.Error(ErrCodeLoad, err.Error(), map[string]any{"engine": le.Engine, "gen": le.Gen})
		return WrapExitError(ExitFailure, "load failed", err)
	}
	return err
}

// scroll reads e from the top, emitting each record once, until the source
// is exhausted or limit records were read. With changed non-nil it then waits
// for a signal, refreshes and carries on from where it stopped, until ctx is
// done. It returns how many records were emitted.
func scroll(ctx context.Context, e *engine.Engine[source.Record], limit int, emit func(int, source.Record) error, changed <-chan struct{}) (int, error) {
	pos := 0
	for {
		if err := e.WaitIdle(ctx); err != nil {
			return pos, err
		}
		if err := e.Err(); err != nil {
			return pos, err
		}

		size := e.Size()
		grew := pos < size
		for ; pos < size; pos++ {
			if limit > 0 && pos >= limit {
				return pos, nil
			}
			if err := emit(pos, e.Get(pos, engine.Present)); err != nil {
				return pos, err
			}
		}
		if limit > 0 && pos >= limit {
			return pos, nil
		}

		if e.Available() == 0 {
			if changed == nil {
				return pos, nil
			}
			select {
			case <-ctx.Done():
				return pos, ctx.Err()
			case <-changed:
				e.Refresh()
			}
			continue
		}

		// Nothing new to read, so no read came near the end. Pull the next
		// increment explicitly.
		if !grew {
			e.Next()
		}
	}
}

func textEmitter(w io.Writer) func(int, source.Record) error {
	return func(_ int, r source.Record) error {
		_, err := fmt.Fprintf(w, "%6d  %s  %s\n", r.Seq, r.ID, r.Title)
		return err
	}
}

func jsonEmitter(w io.Writer) func(int, source.Record) error {
	enc := json.NewEncoder(w)
	return func(pos int, r source.Record) error {
		return enc.Encode(recordView{Position: pos, ID: r.ID, Seq: r.Seq, Title: r.Title})
	}
}

// newRecordStore returns the store for cfg.Sort. Sorted stores treat records
// with the same id as the same entity.
func newRecordStore(cfg config.Config) (store.Store[source.Record], error) {
	byID := store.By(func(r source.Record) string { return r.ID })

	var compare func(a, b source.Record) int
	switch cfg.Sort {
	case config.SortNone, "":
		return store.NewArray[source.Record](), nil
	case config.SortSeq:
		compare = store.Then(store.By(func(r source.Record) int64 { return r.Seq }), byID)
	case config.SortTitle:
		byTitle, err := store.Collator(cfg.Locale, func(r source.Record) string { return r.Title })
		if err != nil {
			return nil, err
		}
		compare = store.Then(byTitle, byID)
	default:
		return nil, fmt.Errorf("unknown sort %q", cfg.Sort)
	}

	return store.NewSorted(store.Callback[source.Record]{
		Compare:      compare,
		SameIdentity: func(a, b source.Record) bool { return a.ID == b.ID },
		SameContent:  func(old, new source.Record) bool { return old == new },
	}), nil
}
