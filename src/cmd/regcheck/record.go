package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"regcheck/src/contracts"
	"regcheck/src/render"
	"regcheck/src/store"
	"regcheck/src/summary"
)

// recordOptions holds the flags of the record command.
type recordOptions struct {
	project  string
	number   int
	outcome  string
	url      string
	evaluate bool
	format   string
}

func newRecordCmd(a *app) *cobra.Command {
	var opts recordOptions

	cmd := &cobra.Command{
		Use:   "record <report-file>...",
		Short: "Record a build's outcome and report summaries in the history store",
		Long: `Parses Checkstyle, PMD, FindBugs/SpotBugs and Cobertura XML reports and
stores their summaries as one build of a project. Files are recognised by
name (checkstyle*.xml, pmd*.xml, findbugs*.xml, spotbugs*.xml, cobertura*.xml,
coverage.xml); reports of the same tool are summed.

With --evaluate the build is checked right away, exactly like
'regcheck evaluate --project --number'.

Example:
  regcheck record --project acme/api --number 42 --outcome success \
    target/pmd.xml target/checkstyle-result.xml target/site/cobertura/coverage.xml --evaluate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			// The memory store lives only as long as this command, which is
			// enough when the build is evaluated right away.
			open := a.openDurableStore
			if opts.evaluate {
				open = a.openStore
			}
			st, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			build, err := a.record(cmd.Context(), st, opts, args)
			if err != nil {
				return err
			}
			if !opts.evaluate {
				return nil
			}

			verdict, err := a.evaluateStored(cmd.Context(), st, build.Project, build.Number)
			if err != nil {
				return err
			}
			return writeVerdict(cmd.OutOrStdout(), f, verdict)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "project the build belongs to (required)")
	cmd.Flags().IntVar(&opts.number, "number", 0, "build number (required)")
	cmd.Flags().StringVar(&opts.outcome, "outcome", string(contracts.OutcomeSuccess), "build outcome: success, failure, unstable, aborted, not_built")
	cmd.Flags().StringVar(&opts.url, "url", "", "link to the build")
	cmd.Flags().BoolVar(&opts.evaluate, "evaluate", false, "evaluate the build after recording it")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "verdict output format with --evaluate: text, ci or json")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("number")
	addCheckFlags(cmd)
	return cmd
}

// record parses the report files and saves the build in st.
func (a *app) record(ctx context.Context, st store.Store, opts recordOptions, paths []string) (contracts.BuildRecord, error) {
	if opts.number <= 0 {
		return contracts.BuildRecord{}, fmt.Errorf("--number must be positive, got %d", opts.number)
	}
	outcome, err := contracts.ParseOutcome(opts.outcome)
	if err != nil {
		return contracts.BuildRecord{}, err
	}

	files, err := readReports(paths)
	if err != nil {
		return contracts.BuildRecord{}, err
	}

	build := contracts.BuildRecord{
		Project:     opts.project,
		Number:      opts.number,
		Outcome:     outcome,
		URL:         opts.url,
		CompletedAt: time.Now().UTC(),
	}
	used, err := summary.Collect(files, &build)
	if err != nil {
		return contracts.BuildRecord{}, fmt.Errorf("failed to parse reports: %w", err)
	}
	for _, p := range paths {
		if _, ok := summary.Detect(p); !ok {
			a.log.Info("Ignoring %s: not a recognised report", p)
		}
	}

	if err := st.SaveBuild(ctx, build); err != nil {
		return contracts.BuildRecord{}, fmt.Errorf("failed to save build: %w", err)
	}
	a.log.Info("Recorded %s#%d (%s) from %d report(s)", build.Project, build.Number, build.Outcome, len(used))
	return build, nil
}

// readReports loads report files keyed by slash-separated path.
func readReports(paths []string) (map[string][]byte, error) {
	files := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}
		files[filepath.ToSlash(p)] = data
	}
	return files, nil
}
