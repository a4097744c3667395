package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"regcheck/src/analyze"
	"regcheck/src/contracts"
	"regcheck/src/pipeline"
	"regcheck/src/provider"
	"regcheck/src/render"
	"regcheck/src/store"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		project string
		number  int
		format  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "evaluate [build-url]",
		Short: "Check a build for regressions against its baseline",
		Long: `Evaluates one build against the latest successful earlier build of the
same project and prints one line per regression.

Pass a Buildkite or GitHub Actions build URL to collect the build and its
history from the CI provider, or --project and --number to evaluate a build
recorded with 'regcheck record'.

Exit status is 2 when the build should fail.

Examples:
  regcheck evaluate https://buildkite.com/acme/api/builds/42
  regcheck evaluate --project acme/api --number 42 --format ci`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			var verdict contracts.Verdict
			switch {
			case len(args) == 1:
				verdict, err = a.evaluateURL(cmd.Context(), args[0], timeout)
			case project != "" && number > 0:
				verdict, err = a.evaluateRecorded(cmd.Context(), project, number)
			default:
				return errors.New("pass a build URL, or --project and --number")
			}
			if err != nil {
				return provider.WrapError(err)
			}

			return writeVerdict(cmd.OutOrStdout(), f, verdict)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project of a recorded build")
	cmd.Flags().IntVar(&number, "number", 0, "number of a recorded build")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, ci or json")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for a URL evaluation")
	addCheckFlags(cmd)
	return cmd
}

// writeVerdict prints v and maps a failing verdict to errBuildShouldFail.
func writeVerdict(w io.Writer, format render.Format, v contracts.Verdict) error {
	if err := render.Write(w, format, v); err != nil {
		return err
	}
	if v.BuildShouldFail {
		return errBuildShouldFail
	}
	return nil
}

func (a *app) evaluateRecorded(ctx context.Context, project string, number int) (contracts.Verdict, error) {
	st, err := a.openDurableStore(ctx)
	if err != nil {
		return contracts.Verdict{}, err
	}
	defer st.Close()

	return a.evaluateStored(ctx, st, project, number)
}

// evaluateStored evaluates a build already in st and saves the verdict. A
// failing build is stored as FAILURE from then on.
func (a *app) evaluateStored(ctx context.Context, st store.Store, project string, number int) (contracts.Verdict, error) {
	build, err := st.GetBuild(ctx, project, number)
	if err != nil {
		return contracts.Verdict{}, err
	}

	checks := a.cfg.CheckConfig()
	evaluator := analyze.NewEvaluator(st, checks, a.cfg.History.Depth, a.log)
	return evaluator.Evaluate(ctx, contracts.BuildCompleted{Build: *build, Checks: &checks})
}

// evaluateURL sends buildURL through the agents and waits for the verdict.
func (a *app) evaluateURL(ctx context.Context, buildURL string, timeout time.Duration) (contracts.Verdict, error) {
	p, err := pipeline.New(ctx, a.cfg, a.log)
	if err != nil {
		return contracts.Verdict{}, err
	}
	defer p.Close()

	a.log.Info("Evaluating %s (%s mode)", buildURL, p.Mode())

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	checks := a.cfg.CheckConfig()
	msg, err := p.Evaluate(ctx, buildURL, &checks)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return contracts.Verdict{}, fmt.Errorf("no verdict for %s within %s", buildURL, timeout)
		}
		return contracts.Verdict{}, err
	}
	return msg.Verdict, nil
}
