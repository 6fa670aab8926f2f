package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

var (
	offerCandidate string
	offerJob       string
	offerSalary    float64
	offerTitle     string
	offerEmail     string

	taskOffer       string
	taskTitle       string
	taskDescription string
	taskDue         string
)

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Create and track employment offers",
}

var offersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List offers",
	Args:  cobra.NoArgs,
	RunE:  runOffersList,
}

var offersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Draft an offer for a candidate",
	Args:  cobra.NoArgs,
	RunE:  runOffersCreate,
}

var offersStatusCmd = &cobra.Command{
	Use:   "status <offerId> <status>",
	Short: "Change an offer's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runOffersStatus,
}

var offersResendCmd = &cobra.Command{
	Use:   "resend <offerId>",
	Short: "Resend a sent offer to the candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runOffersResend,
}

var onboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Manage onboarding tasks for hired candidates",
}

var onboardingListCmd = &cobra.Command{
	Use:   "list <candidateId>",
	Short: "List a candidate's onboarding tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runOnboardingList,
}

var onboardingCreateCmd = &cobra.Command{
	Use:   "create <candidateId>",
	Short: "Assign an onboarding task",
	Args:  cobra.ExactArgs(1),
	RunE:  runOnboardingCreate,
}

func init() {
	f := offersCreateCmd.Flags()
	f.StringVar(&offerCandidate, "candidate", "", "Candidate id (required)")
	f.StringVar(&offerJob, "job", "", "Job description id (required)")
	f.Float64Var(&offerSalary, "salary", 0, "Base salary (required)")
	f.StringVar(&offerTitle, "title", "", "Position title (required)")
	f.StringVar(&offerEmail, "email", "", "Candidate email (required)")
	for _, name := range []string{"candidate", "job", "salary", "title", "email"} {
		_ = offersCreateCmd.MarkFlagRequired(name)
	}

	g := onboardingCreateCmd.Flags()
	g.StringVar(&taskOffer, "offer", "", "Offer id (required)")
	g.StringVar(&taskTitle, "title", "", "Task title (required)")
	g.StringVar(&taskDescription, "description", "", "Task description")
	g.StringVar(&taskDue, "due", "", "Due date, YYYY-MM-DD (required)")
	for _, name := range []string{"offer", "title", "due"} {
		_ = onboardingCreateCmd.MarkFlagRequired(name)
	}

	offersCmd.AddCommand(offersListCmd, offersCreateCmd, offersStatusCmd, offersResendCmd)
	onboardingCmd.AddCommand(onboardingListCmd, onboardingCreateCmd)
	rootCmd.AddCommand(offersCmd, onboardingCmd)
}

func runOffersList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	offers, err := a.api.Offers.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list offers: %s", httpclient.UserMessage(err, "Failed to load offers"))
	}
	a.print.PrintOffers(offers)
	return nil
}

func runOffersCreate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	req := types.CreateOfferRequest{
		CandidateID:    offerCandidate,
		JobID:          offerJob,
		BaseSalary:     offerSalary,
		PositionTitle:  strings.TrimSpace(offerTitle),
		CandidateEmail: strings.TrimSpace(offerEmail),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid offer: %w", err)
	}

	offer, err := a.api.Offers.Create(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create offer: %s", httpclient.UserMessage(err, "Failed to create offer"))
	}
	if offer == nil {
		printf(cmd, "Offer created")
		return nil
	}
	printf(cmd, "Offer created: %s (%s)", offer.Key(), types.Humanize(string(offer.Status)))
	return nil
}

func runOffersStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	status := types.OfferStatus(strings.ToLower(args[1]))
	if !status.IsKnown() {
		return fmt.Errorf("unknown offer status %q", args[1])
	}
	if _, err := a.api.Offers.UpdateStatus(cmd.Context(), args[0], status); err != nil {
		return fmt.Errorf("failed to update offer: %s", httpclient.UserMessage(err, "Failed to update offer"))
	}
	printf(cmd, "Offer %s marked %s", args[0], types.Humanize(string(status)))
	return nil
}

func runOffersResend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	offer, err := a.api.Offers.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load offer: %s", httpclient.UserMessage(err, "Offer not found"))
	}
	if !offer.CanResend() {
		return fmt.Errorf("only sent offers can be resent (offer is %s)", types.Humanize(string(offer.Status)))
	}

	resp, err := a.api.Offers.Resend(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to resend offer: %s", httpclient.UserMessage(err, "Failed to resend offer"))
	}
	msg := resp.Message
	if msg == "" {
		msg = "Offer resent"
	}
	printf(cmd, "%s", msg)
	return nil
}

func runOnboardingList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	u, err := a.user(cmd.Context())
	if err != nil {
		return err
	}
	if u.Role == types.RoleCandidate && u.Key() != args[0] {
		return fmt.Errorf("candidates can only view their own onboarding tasks")
	}

	tasks, err := a.api.Offers.OnboardingTasks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list onboarding tasks: %s", httpclient.UserMessage(err, "Failed to load onboarding tasks"))
	}
	a.print.PrintTasks(tasks)
	return nil
}

func runOnboardingCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	req := types.CreateOnboardingTaskRequest{
		CandidateID:     args[0],
		OfferID:         taskOffer,
		TaskTitle:       strings.TrimSpace(taskTitle),
		TaskDescription: strings.TrimSpace(taskDescription),
		DueDate:         taskDue,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid onboarding task: %w", err)
	}

	task, err := a.api.Offers.CreateOnboardingTask(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create onboarding task: %s", httpclient.UserMessage(err, "Failed to create onboarding task"))
	}
	title := req.TaskTitle
	if task != nil {
		title = task.TaskTitle
	}
	printf(cmd, "Onboarding task created: %s", title)
	return nil
}
