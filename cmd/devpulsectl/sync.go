package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devansh054/dev-pulse-sub000/internal/githubsync"
)

var syncUserID string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull GitHub activity for every user with a stored token",
	Long: `Pull recent GitHub events and rebuild the daily metric rows.

Examples:
  # Sync every user with a stored token
  devpulsectl sync

  # Sync a single user
  devpulsectl sync --user 4f0c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		green := color.New(color.FgGreen).SprintFunc()

		if syncUserID == "" {
			synced, err := a.Syncer.SyncAll(cmd.Context(), githubsync.TriggerCLI)
			fmt.Fprintf(out, "synced %s users\n", green(synced))
			return err
		}

		user, err := a.Users.Get(cmd.Context(), syncUserID)
		if err != nil {
			return err
		}
		token, err := a.Users.AccessToken(*user)
		if err != nil {
			return err
		}
		res, err := a.Syncer.Sync(cmd.Context(), *user, token, githubsync.TriggerCLI)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d events, %d commits over %d days\n",
			green(res.Login), res.Events, res.Commits, res.Days)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncUserID, "user", "", "sync only this user id")
	rootCmd.AddCommand(syncCmd)
}
