package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

var (
	jdListStatus   string
	jdCreatePrompt string
	jdPlatforms    []string
)

var jdCmd = &cobra.Command{
	Use:   "jd",
	Short: "Manage AI-generated job descriptions",
}

var jdListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job descriptions",
	Args:  cobra.NoArgs,
	RunE:  runJDList,
}

var jdShowCmd = &cobra.Command{
	Use:   "show <jdId>",
	Short: "Show one job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runJDShow,
}

var jdCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a job description from a prompt",
	Args:  cobra.NoArgs,
	RunE:  runJDCreate,
}

var jdApproveCmd = &cobra.Command{
	Use:   "approve <jdId>",
	Short: "Approve a job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJDApproval(cmd, args[0], types.ApprovalApproved)
	},
}

var jdRejectCmd = &cobra.Command{
	Use:   "reject <jdId>",
	Short: "Reject a job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJDApproval(cmd, args[0], types.ApprovalRejected)
	},
}

var jdDeleteCmd = &cobra.Command{
	Use:   "delete <jdId>",
	Short: "Delete a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runJDDelete,
}

var jdPostCmd = &cobra.Command{
	Use:   "post <jdId>",
	Short: "Publish an approved job description to job platforms",
	Args:  cobra.ExactArgs(1),
	RunE:  runJDPost,
}

func init() {
	jdListCmd.Flags().StringVar(&jdListStatus, "status", "", "Filter by approval status: pending, approved or rejected")
	jdCreateCmd.Flags().StringVar(&jdCreatePrompt, "prompt", "", "Describe the role (at least 20 characters)")
	_ = jdCreateCmd.MarkFlagRequired("prompt")
	jdPostCmd.Flags().StringSliceVar(&jdPlatforms, "platform", nil, "Platform to post to (repeatable)")

	jdCmd.AddCommand(jdListCmd, jdShowCmd, jdCreateCmd, jdApproveCmd, jdRejectCmd, jdDeleteCmd, jdPostCmd)
	rootCmd.AddCommand(jdCmd)
}

func runJDList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	status := types.ApprovalStatus(strings.ToLower(jdListStatus))
	if status != "" && !status.IsKnown() {
		return fmt.Errorf("unknown approval status %q", jdListStatus)
	}

	jds, err := a.api.JDs.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list job descriptions: %s", httpclient.UserMessage(err, "Failed to load job descriptions"))
	}
	if status != "" {
		filtered := jds[:0]
		for _, jd := range jds {
			if jd.ApprovalStatus == status {
				filtered = append(filtered, jd)
			}
		}
		jds = filtered
	}
	a.print.PrintJDs(jds)
	return nil
}

func runJDShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	jd, err := a.api.JDs.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load job description: %s", httpclient.UserMessage(err, "Job description not found"))
	}
	a.print.PrintJD(jd)
	return nil
}

func runJDCreate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	req := types.CreateJDRequest{Prompt: strings.TrimSpace(jdCreatePrompt)}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("prompt must be at least 20 characters")
	}

	jd, err := a.api.JDs.Create(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to generate job description: %s", httpclient.UserMessage(err, "Failed to generate job description"))
	}
	printf(cmd, "Job description generated: %s", jd.Key())
	a.print.PrintJD(jd)
	return nil
}

func runJDApproval(cmd *cobra.Command, id string, status types.ApprovalStatus) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	if _, err := a.api.JDs.SetApproval(cmd.Context(), id, status); err != nil {
		return fmt.Errorf("failed to update approval: %s", httpclient.UserMessage(err, "Failed to update job description"))
	}
	printf(cmd, "Job description %s %s", id, status)
	return nil
}

func runJDDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	if err := a.api.JDs.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete job description: %s", httpclient.UserMessage(err, "Failed to delete job description"))
	}
	printf(cmd, "Job description %s deleted", args[0])
	return nil
}

func runJDPost(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	req := types.PostJDRequest{Platforms: jdPlatforms}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("select at least one platform with --platform")
	}

	if err := a.api.JDs.Post(cmd.Context(), args[0], req); err != nil {
		return fmt.Errorf("failed to post job description: %s", httpclient.UserMessage(err, "Failed to post job description"))
	}
	printf(cmd, "Job description %s posted to %s", args[0], strings.Join(jdPlatforms, ", "))
	return nil
}
