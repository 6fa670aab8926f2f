package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

var (
	interviewStatusFilter string

	scheduleCandidate    string
	scheduleJob          string
	scheduleBatch        bool
	scheduleMode         string
	scheduleTime         string
	scheduleDuration     int
	scheduleLink         string
	scheduleInterviewers []string

	feedbackText   string
	feedbackRating int
)

var interviewsCmd = &cobra.Command{
	Use:   "interviews",
	Short: "Schedule interviews and record feedback",
}

var interviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interviews visible to the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runInterviewsList,
}

var interviewsScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule an interview for one candidate or every shortlisted candidate of a job",
	Args:  cobra.NoArgs,
	RunE:  runInterviewsSchedule,
}

var interviewsStatusCmd = &cobra.Command{
	Use:   "status <interviewId> <status>",
	Short: "Change an interview's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runInterviewsStatus,
}

var interviewsFeedbackCmd = &cobra.Command{
	Use:   "feedback <interviewId>",
	Short: "Submit interview feedback",
	Args:  cobra.ExactArgs(1),
	RunE:  runInterviewsFeedback,
}

func init() {
	interviewsListCmd.Flags().StringVar(&interviewStatusFilter, "status", "", "Filter by status")

	f := interviewsScheduleCmd.Flags()
	f.StringVar(&scheduleCandidate, "candidate", "", "Candidate id (omit with --batch)")
	f.StringVar(&scheduleJob, "job", "", "Job description id (required)")
	f.BoolVar(&scheduleBatch, "batch", false, "Schedule every shortlisted candidate of the job")
	f.StringVar(&scheduleMode, "mode", string(types.ModeOnline), "online or onsite")
	f.StringVar(&scheduleTime, "time", "", "Scheduled time, e.g. 2025-03-20T10:00")
	f.IntVar(&scheduleDuration, "duration", 60, "Duration in minutes")
	f.StringVar(&scheduleLink, "link", "", "Meeting link for online interviews")
	f.StringSliceVar(&scheduleInterviewers, "interviewer", nil, "Interviewer id (repeatable)")
	_ = interviewsScheduleCmd.MarkFlagRequired("job")

	interviewsFeedbackCmd.Flags().StringVar(&feedbackText, "comments", "", "Feedback text (required)")
	interviewsFeedbackCmd.Flags().IntVar(&feedbackRating, "rating", 0, "Rating from 1 to 5 (required)")
	_ = interviewsFeedbackCmd.MarkFlagRequired("comments")
	_ = interviewsFeedbackCmd.MarkFlagRequired("rating")

	interviewsCmd.AddCommand(interviewsListCmd, interviewsScheduleCmd, interviewsStatusCmd, interviewsFeedbackCmd)
	rootCmd.AddCommand(interviewsCmd)
}

func runInterviewsList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	u, err := a.user(cmd.Context())
	if err != nil {
		return err
	}

	status := types.InterviewStatus(strings.ToLower(interviewStatusFilter))
	if status != "" && !status.IsKnown() {
		return fmt.Errorf("unknown interview status %q", interviewStatusFilter)
	}

	list, err := a.api.Interviews.List(cmd.Context(), types.ListInterviewsParams{
		UserID: u.Key(),
		Role:   u.Role,
		Status: status,
	})
	if err != nil {
		return fmt.Errorf("failed to list interviews: %s", httpclient.UserMessage(err, "Failed to load interviews"))
	}
	a.print.PrintInterviews(list)
	return nil
}

func runInterviewsSchedule(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	req := types.CreateInterviewRequest{
		CandidateID:     scheduleCandidate,
		JobID:           scheduleJob,
		InterviewerIDs:  scheduleInterviewers,
		Mode:            types.InterviewMode(scheduleMode),
		ScheduledTime:   scheduleTime,
		DurationMinutes: scheduleDuration,
		MeetingLink:     scheduleLink,
		Batch:           scheduleBatch,
	}
	if req.Batch {
		req.CandidateID = ""
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid interview: %w", err)
	}

	resp, err := a.api.Interviews.Create(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to schedule interview: %s", httpclient.UserMessage(err, "Failed to schedule interview"))
	}
	switch {
	case req.Batch:
		printf(cmd, "Scheduled %d interview(s)", resp.ScheduledCount)
	case resp.Interview != nil:
		printf(cmd, "Interview scheduled: %s", resp.Interview.Key())
	default:
		printf(cmd, "Interview scheduled")
	}
	return nil
}

func runInterviewsStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireRole(cmd.Context(), types.RoleAdmin, types.RoleHR, types.RoleInterviewer); err != nil {
		return err
	}

	status := types.InterviewStatus(strings.ToLower(args[1]))
	if !status.IsKnown() {
		return fmt.Errorf("unknown interview status %q", args[1])
	}
	if _, err := a.api.Interviews.UpdateStatus(cmd.Context(), args[0], status); err != nil {
		return fmt.Errorf("failed to update interview: %s", httpclient.UserMessage(err, "Failed to update interview"))
	}
	printf(cmd, "Interview %s marked %s", args[0], types.Humanize(string(status)))
	return nil
}

func runInterviewsFeedback(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireRole(cmd.Context(), types.RoleAdmin, types.RoleHR, types.RoleInterviewer); err != nil {
		return err
	}

	req := types.SubmitFeedbackRequest{Feedback: strings.TrimSpace(feedbackText), Rating: feedbackRating}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("feedback needs comments and a rating from 1 to 5")
	}
	if _, err := a.api.Interviews.SubmitFeedback(cmd.Context(), args[0], req); err != nil {
		return fmt.Errorf("failed to submit feedback: %s", httpclient.UserMessage(err, "Failed to submit feedback"))
	}
	printf(cmd, "Feedback recorded for interview %s", args[0])
	return nil
}
