package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nivasa/internal/cli"
	"nivasa/internal/core"
	"nivasa/internal/filter"
)

var (
	flagStatus      string
	flagMilestoneID string
	flagTarget      string
)

var milestonesCmd = &cobra.Command{
	Use:     "milestones",
	Aliases: []string{"ms"},
	Short:   "List and move construction milestones",
}

var milestonesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's milestones in order",
	RunE:  runMilestonesList,
}

var milestonesAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Move a milestone one step forward, or to --to",
	RunE:  runMilestonesAdvance,
}

func init() {
	milestonesListCmd.Flags().StringVar(&flagStatus, "status", "", "Only milestones with this status")
	milestonesAdvanceCmd.Flags().StringVar(&flagMilestoneID, "id", "", "Milestone id")
	milestonesAdvanceCmd.Flags().StringVar(&flagTarget, "to", "", "Explicit target status")
	_ = milestonesAdvanceCmd.MarkFlagRequired("id")

	milestonesCmd.AddCommand(milestonesListCmd, milestonesAdvanceCmd)
	rootCmd.AddCommand(milestonesCmd)
}

func runMilestonesList(cmd *cobra.Command, _ []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	ms, err := s.svc.ListMilestones(cmd.Context(), user, filter.MilestoneQuery{Status: flagStatus})
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		fmt.Println("No milestones.")
		return nil
	}
	return cli.WriteMilestones(os.Stdout, ms)
}

func runMilestonesAdvance(cmd *cobra.Command, _ []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(flagMilestoneID)
	if err != nil {
		return fmt.Errorf("invalid --id %q: %w", flagMilestoneID, err)
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	var m core.Milestone
	if flagTarget != "" {
		m, err = s.svc.TransitionMilestone(cmd.Context(), user, id, core.MilestoneStatus(flagTarget))
	} else {
		m, err = s.svc.AdvanceMilestone(cmd.Context(), user, id)
	}
	if err != nil {
		return err
	}
	return cli.WriteMilestones(os.Stdout, []core.Milestone{m})
}
