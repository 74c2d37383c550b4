// Command devpulsectl runs DevPulse maintenance tasks against the configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devansh054/dev-pulse-sub000/internal/app"
	"github.com/devansh054/dev-pulse-sub000/internal/config"
	"github.com/devansh054/dev-pulse-sub000/internal/logging"
)

var (
	cfg    config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "devpulsectl",
	Short:         "DevPulse maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = logging.New(cfg.LogLevel, cfg.LogFormat)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

// openApp wires the shared services for a single command invocation.
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.Open(cmd.Context(), cfg, logger)
}

// requirePostgres rejects commands that make no sense against the in-memory store.
func requirePostgres(a *app.App) error {
	if a.Pool == nil {
		return fmt.Errorf("POSTGRES_URL must be set")
	}
	return nil
}
