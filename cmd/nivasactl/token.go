package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nivasa/internal/auth"
	"nivasa/internal/config"
)

var (
	flagTTL     time.Duration
	flagNewUser bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long:  "Token signs a JWT with JWT_SECRET for --user, or for a fresh user id with --new.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Flags().BoolVar(&flagNewUser, "new", false, "Generate a new user id")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	var user uuid.UUID
	if flagNewUser {
		user = uuid.New()
	} else {
		var err error
		if user, err = requireUser(); err != nil {
			return err
		}
	}
	if flagTTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	cfg := config.Load()
	if len(cfg.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	token, err := auth.NewSigner(cfg.JWTSecret).Issue(user, flagTTL)
	if err != nil {
		return err
	}
	if flagNewUser {
		fmt.Println("user:", user)
	}
	fmt.Println(token)
	return nil
}
