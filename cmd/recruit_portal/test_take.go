package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/observability"
	"github.com/jonathan/recruit-portal/internal/testsession"
	"github.com/jonathan/recruit-portal/internal/types"
)

// pollInterval is how often the terminal checks for an automatic submission.
const pollInterval = 500 * time.Millisecond

const takeHelp = `Commands:
  A, B, C ...  answer the current question and move on
  n / p        next / previous question
  g <number>   go to a question
  s            submit the test
  q            leave without submitting
  ?            show this help`

var errLeft = errors.New("left the test without submitting")

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Take an assigned assessment",
}

var testTakeCmd = &cobra.Command{
	Use:   "take [testId]",
	Short: "Take a timed test in the terminal",
	Long: `Take a timed test in the terminal. Without a test id the test assigned to the
signed-in candidate is used. When the countdown reaches zero the answers given so far
are submitted automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTestTake,
}

func init() {
	testCmd.AddCommand(testTakeCmd)
	rootCmd.AddCommand(testCmd)
}

func runTestTake(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	u, err := a.requireRole(ctx, types.RoleCandidate)
	if err != nil {
		return err
	}

	var resp *types.TestResponse
	if len(args) == 1 {
		resp, err = a.api.Assessments.Test(ctx, args[0])
	} else {
		resp, err = a.api.Assessments.TestForCandidate(ctx, u.Key())
	}
	if err != nil {
		return fmt.Errorf("failed to load test: %s", httpclient.UserMessage(err, "No test found"))
	}
	if resp.Test == nil || (resp.Test.CandidateID != "" && resp.Test.CandidateID != u.Key()) {
		return fmt.Errorf("no test found")
	}
	test := *resp.Test
	if test.TestStatus == types.TestCompleted || test.TestStatus == types.TestEvaluated {
		printf(cmd, "Assessment already submitted.")
		return nil
	}

	sess := testsession.New(test, testsession.Options{
		Duration:      a.cfg.TestDuration,
		SubmitTimeout: a.cfg.RequestTimeout,
		Submitter:     a.api.Assessments,
		Logger:        a.log,
	})
	defer sess.Close()

	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	snap := sess.Snapshot()
	fmt.Fprintf(out, "%s test: %d question(s), %d minutes.\n", orType(test.TestType), snap.Total, snap.Remaining/60)
	fmt.Fprintln(out, "The test is submitted automatically when time runs out.")
	fmt.Fprint(out, "Press Enter to start, or q to cancel: ")
	line, err := readLine(in)
	if err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(line), "q") {
		return errLeft
	}

	if err := sess.Start(); err != nil {
		return err
	}
	fmt.Fprintln(out, takeHelp)
	return takeTest(ctx, out, in, a.print, sess, pollInterval)
}

func orType(t string) string {
	if t == "" {
		return "Assessment"
	}
	return t
}

// takeTest drives a started session from line-oriented input until it is
// submitted, the user leaves, or ctx ends.
func takeTest(ctx context.Context, out io.Writer, in io.Reader, p *observability.Printer, sess *testsession.Session, poll time.Duration) error {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		for {
			line, err := readLine(in)
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-stop:
				return
			}
		}
	}()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	p.PrintQuestion(sess.Snapshot())
	var reportedErr error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			snap := sess.Snapshot()
			if snap.State == testsession.Submitted {
				fmt.Fprintln(out, "Time is up. Your answers were submitted automatically.")
				p.PrintSubmitResult(snap.Result)
				return nil
			}
			if snap.Remaining == 0 && snap.Err != nil && snap.Err != reportedErr {
				reportedErr = snap.Err
				fmt.Fprintf(out, "Automatic submission failed: %s. Type s to retry.\n", httpclient.UserMessage(snap.Err, "submission failed"))
			}

		case line, ok := <-lines:
			if !ok {
				return errLeft
			}
			done, err := handleTakeCommand(ctx, out, p, sess, strings.TrimSpace(line))
			if done || err != nil {
				return err
			}
		}
	}
}

// handleTakeCommand applies one input line. done reports that the session
// has ended, successfully or not.
func handleTakeCommand(ctx context.Context, out io.Writer, p *observability.Printer, sess *testsession.Session, line string) (done bool, err error) {
	snap := sess.Snapshot()
	if snap.State == testsession.Submitted {
		fmt.Fprintln(out, "Time is up. Your answers were submitted automatically.")
		p.PrintSubmitResult(snap.Result)
		return true, nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch strings.ToLower(cmd) {
	case "":
	case "?", "h", "help":
		fmt.Fprintln(out, takeHelp)
		return false, nil
	case "n":
		sess.Next()
	case "p":
		sess.Prev()
	case "g":
		n, convErr := strconv.Atoi(strings.TrimSpace(arg))
		if convErr != nil {
			fmt.Fprintln(out, "Usage: g <question number>")
			return false, nil
		}
		sess.Goto(n - 1)
	case "q":
		return true, errLeft
	case "s":
		res, submitErr := sess.Submit(ctx)
		if submitErr != nil {
			if errors.Is(submitErr, testsession.ErrAlreadySubmitted) {
				return true, nil
			}
			fmt.Fprintf(out, "Submission failed: %s\n", submitMessage(submitErr))
			return false, nil
		}
		p.PrintSubmitResult(res)
		return true, nil
	default:
		idx, ok := optionIndex(cmd, snap.Question)
		if !ok {
			fmt.Fprintf(out, "Unknown command %q. Type ? for help.\n", line)
			return false, nil
		}
		if answerErr := sess.Answer(snap.Question.QuestionID, snap.Question.Options[idx]); answerErr != nil {
			fmt.Fprintf(out, "Could not record answer: %s\n", submitMessage(answerErr))
			return false, nil
		}
		if snap.Current < snap.Total-1 {
			sess.Next()
		}
	}

	p.PrintQuestion(sess.Snapshot())
	return false, nil
}

// optionIndex maps a single letter to an option of q.
func optionIndex(s string, q *types.Question) (int, bool) {
	if q == nil || len(s) != 1 {
		return 0, false
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	idx := int(c - 'A')
	return idx, idx < len(q.Options)
}

func submitMessage(err error) string {
	switch {
	case errors.Is(err, testsession.ErrAlreadySubmitting):
		return "a submission is already in progress"
	case errors.Is(err, testsession.ErrClosed):
		return "the test session has ended"
	}
	return httpclient.UserMessage(err, err.Error())
}
