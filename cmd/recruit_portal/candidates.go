package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-portal/internal/httpclient"
)

var (
	candidatesJD string
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Review screened candidates",
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List screened candidates with their AI scores",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesList,
}

var candidatesShortlistCmd = &cobra.Command{
	Use:   "shortlist <jdId>",
	Short: "Start resume screening for a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesShortlist,
}

func init() {
	candidatesListCmd.Flags().StringVar(&candidatesJD, "jd", "", "Only candidates for this job description")

	candidatesCmd.AddCommand(candidatesListCmd, candidatesShortlistCmd)
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidatesList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	cands, err := a.api.Resumes.Shortlisted(cmd.Context(), candidatesJD)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %s", httpclient.UserMessage(err, "Failed to load candidates"))
	}
	a.print.PrintScreened(cands)
	return nil
}

func runCandidatesShortlist(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	resp, err := a.api.Resumes.Shortlist(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to start screening: %s", httpclient.UserMessage(err, "Failed to start screening"))
	}
	msg := resp.Message
	if msg == "" {
		msg = "Screening started"
	}
	printf(cmd, "%s", msg)
	return nil
}
