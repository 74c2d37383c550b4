package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devansh054/dev-pulse-sub000/internal/app"
	"github.com/devansh054/dev-pulse-sub000/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: withPool(func(cmd *cobra.Command, a *app.App) error {
		if err := migrations.Up(cmd.Context(), a.Pool); err != nil {
			return err
		}
		return printVersion(cmd, a, "migrated to")
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: withPool(func(cmd *cobra.Command, a *app.App) error {
		if err := migrations.Down(cmd.Context(), a.Pool); err != nil {
			return err
		}
		return printVersion(cmd, a, "rolled back to")
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema version",
	RunE: withPool(func(cmd *cobra.Command, a *app.App) error {
		return printVersion(cmd, a, "schema version")
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withPool(run func(*cobra.Command, *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := requirePostgres(a); err != nil {
			return err
		}
		return run(cmd, a)
	}
}

func printVersion(cmd *cobra.Command, a *app.App, label string) error {
	version, err := migrations.Version(cmd.Context(), a.Pool)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", label, green(version))
	return nil
}
