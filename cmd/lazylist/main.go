// Command lazylist pages through a SQLite record table with the lazylist
// loading engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/lazylist/internal/cli"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "lazylist: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	slog.SetDefault(cli.NewLogger(os.Stderr, level))

	return cli.NewRootCommand(level).ExecuteContext(ctx)
}
