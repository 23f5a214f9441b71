package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xvim/internal/app"
	"xvim/internal/bridge"
	"xvim/internal/config"
	"xvim/internal/logging"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "xvim [files...] [-- nvim args...]",
		Short:         "Run an embedded nvim and stream its UI events",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.Bind(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(args, cmd.ArgsLenAtDash(), os.Environ())
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		defer log.Close()
		if log.Path != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Logging to %s\n", log.Path)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.Run(ctx, log.Logger, app.Options{
			CmdLine: cfg.CmdLine,
			Version: version,
		})
	}
	return cmd
}

func main() {
	err := newRootCommand().ExecuteContext(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, bridge.ErrVersionMismatch):
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
