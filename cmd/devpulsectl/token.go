package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devansh054/dev-pulse-sub000/internal/auth"
	authlib "github.com/devansh054/dev-pulse-sub000/libs/auth"
)

var (
	tokenLogin string
	tokenAdmin bool
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a session token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scopes := append([]string(nil), auth.DefaultScopes...)
		role := "member"
		if tokenAdmin {
			role = authlib.RoleAdmin
			scopes = append(scopes, auth.ScopeAdmin)
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.SessionTTL
		}
		token, expires, err := authlib.Issue(authlib.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: ttl},
			args[0], tokenLogin, role, scopes, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenLogin, "login", "", "GitHub login embedded in the token")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the admin role and scope")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to SESSION_TTL)")
	rootCmd.AddCommand(tokenCmd)
}
