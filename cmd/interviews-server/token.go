package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token signed with the configured secret (development only)",
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "User id the token identifies")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleApplicant), "employer, applicant, or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("sub")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	role, err := auth.ParseRole(tokenRole)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		return err
	}
	tok, err := tokens.Issue(auth.Actor{ID: tokenSubject, Role: role}, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
