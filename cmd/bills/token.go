package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetwise/internal/http/auth"
)

var (
	flagSubject string
	flagTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an API token with JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&flagSubject, "subject", "cli", "Token subject")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 30*24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if cfg.Server.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	token, err := auth.NewVerifier(cfg.Server.JWTSecret).Sign(flagSubject, flagTTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}
