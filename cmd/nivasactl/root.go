package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nivasa/internal/backend"
	"nivasa/internal/cli"
	"nivasa/internal/config"
	"nivasa/internal/log"
	"nivasa/internal/services"
)

var (
	flagUser     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "nivasactl",
	Short:         "Home construction tracker administration",
	Long:          "Inspect dashboards, export expenses, drive milestones and issue API tokens against the configured backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cli.LoadEnvFile()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User id (UUID) the command acts for")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// session is an opened backend plus the tracker wired over it.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	svc     *services.TrackerService
	backend *backend.BackendResult
}

func (s *session) Close() {
	if err := s.backend.Cleanup(); err != nil {
		s.logger.Warn("Backend cleanup failed", log.FieldError, err)
	}
}

// openSession loads and validates the configuration and opens the backend.
func openSession(ctx context.Context) (*session, error) {
	logger := cli.SetupLogger(flagLogLevel).WithComponent(log.ComponentCLI)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:     cfg,
		logger:  logger,
		svc:     cli.NewTracker(res, logger),
		backend: res,
	}, nil
}

func requireUser() (uuid.UUID, error) {
	if flagUser == "" {
		return uuid.Nil, fmt.Errorf("--user is required")
	}
	id, err := uuid.Parse(flagUser)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", flagUser, err)
	}
	return id, nil
}
