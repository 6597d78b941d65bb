package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prenaissance/steam-desktop-authenticator/internal/apperr"
	"github.com/prenaissance/steam-desktop-authenticator/internal/cli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", apperr.KindOf(err), err)
		os.Exit(1)
	}
}
