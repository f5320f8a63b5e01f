// Command facectl registers, verifies and lists users against the same store
// the API server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/facegate/internal/bootstrap"
	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
)

// app is opened by the root command before any subcommand runs.
var app *bootstrap.App

var rootCmd = &cobra.Command{
	Use:           "facectl",
	Short:         "Manage registered faces from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := config.NewLogger(cfg.Environment, os.Stderr)

		app, err = bootstrap.New(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(newRegisterCmd(), newVerifyCmd(), newListCmd(), newImportCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
