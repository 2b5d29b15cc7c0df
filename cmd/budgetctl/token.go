package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"example.com/adaptive-budget/backend/internal/auth"
	"example.com/adaptive-budget/backend/internal/config"
)

func newTokenCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := uuid.New()
			if userFlag != "" {
				parsed, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				userID = parsed
			}

			cfg, err := config.LoadAuth()
			if err != nil {
				return err
			}

			manager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
			token, expiresAt, err := manager.IssueAccessToken(userID)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"userId":      userID.String(),
				"accessToken": token,
				"expiresAt":   expiresAt.UTC().Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID to put into the token subject (random when empty)")

	return cmd
}
