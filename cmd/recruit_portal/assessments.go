package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/api"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/report"
)

var (
	assessInitLimit int
	assessOutDir    string
)

var assessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "Initialise and review candidate assessments",
}

var assessmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scored assessments",
	Args:  cobra.NoArgs,
	RunE:  runAssessmentsList,
}

var assessmentsInitCmd = &cobra.Command{
	Use:   "init <jdId>",
	Short: "Send an MCQ assessment to every eligible screened candidate of a job",
	Long: `Generate an MCQ assessment for each candidate of the job description whose
screening score meets the shortlist threshold. Candidates are processed concurrently;
a failure for one candidate does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssessmentsInit,
}

var assessmentsReportCmd = &cobra.Command{
	Use:   "report <assessmentId>",
	Short: "Write the text report for one scored candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssessmentsReport,
}

var assessmentsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every scored assessment to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runAssessmentsExport,
}

func init() {
	assessmentsInitCmd.Flags().IntVar(&assessInitLimit, "concurrency", api.DefaultBulkLimit, "Maximum concurrent initialisations")
	assessmentsReportCmd.Flags().StringVar(&assessOutDir, "out", ".", "Directory to write the report to")
	assessmentsExportCmd.Flags().StringVar(&assessOutDir, "out", ".", "Directory to write the workbook to")

	assessmentsCmd.AddCommand(assessmentsListCmd, assessmentsInitCmd, assessmentsReportCmd, assessmentsExportCmd)
	rootCmd.AddCommand(assessmentsCmd)
}

func runAssessmentsList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	list, err := a.api.Assessments.Shortlisted(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list assessments: %s", httpclient.UserMessage(err, "Failed to load assessments"))
	}
	a.print.PrintAssessments(list.Shortlisted)
	return nil
}

func runAssessmentsInit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}
	ctx := cmd.Context()

	jd, err := a.api.JDs.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load job description: %s", httpclient.UserMessage(err, "Job description not found"))
	}
	cands, err := a.api.Resumes.Shortlisted(ctx, jd.Key())
	if err != nil {
		return fmt.Errorf("failed to load candidates: %s", httpclient.UserMessage(err, "Failed to load candidates"))
	}

	eligible := api.EligibleForAssessment(cands)
	if len(eligible) == 0 {
		printf(cmd, "No candidates meet the shortlist threshold for %s", jd.Title())
		return nil
	}

	res := a.api.Assessments.InitBulk(ctx, api.AssessmentInits(*jd, eligible), assessInitLimit)
	for _, r := range res.Results {
		if r.Err != nil {
			a.log.Warn("assessment init failed", zap.String("candidate_id", r.Request.CandidateID), zap.Error(r.Err))
			printf(cmd, "✗ %s: %s", r.Request.CandidateID, httpclient.UserMessage(r.Err, "failed"))
			continue
		}
		printf(cmd, "✓ %s: test %s", r.Request.CandidateID, r.Response.TestID)
	}
	printf(cmd, "Assessment initialized for %d candidate(s), %d failed", res.Succeeded, res.Failed)
	if res.Succeeded == 0 {
		return fmt.Errorf("no assessments were initialized")
	}
	return nil
}

func runAssessmentsReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	detail, err := a.api.Assessments.Detail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load assessment: %s", httpclient.UserMessage(err, "Assessment not found"))
	}
	if detail.Shortlisted == nil {
		return fmt.Errorf("assessment not found: %s", args[0])
	}

	now := time.Now()
	item := *detail.Shortlisted
	path := filepath.Join(assessOutDir, report.ReportFilename(item.Profile().Name, now))
	if err := os.WriteFile(path, []byte(report.AssessmentReport(item, now)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printf(cmd, "Report written to %s", path)
	return nil
}

func runAssessmentsExport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if _, err := a.requireHR(cmd.Context()); err != nil {
		return err
	}

	list, err := a.api.Assessments.Shortlisted(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list assessments: %s", httpclient.UserMessage(err, "Failed to load assessments"))
	}
	if len(list.Shortlisted) == 0 {
		return fmt.Errorf("no assessments to export")
	}

	now := time.Now()
	path := filepath.Join(assessOutDir, report.ExportFilename(now))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	if err := report.WriteShortlisted(f, list.Shortlisted, now); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	printf(cmd, "Exported %d assessment(s) to %s", len(list.Shortlisted), path)
	return nil
}
