package analyze

import (
	"context"
	"errors"
	"fmt"

	"regcheck/src/contracts"
	"regcheck/src/history"
	"regcheck/src/logger"
	"regcheck/src/regression"
	"regcheck/src/store"
)

// Evaluator records collected builds and judges them against their history.
type Evaluator struct {
	store  store.Store
	checks contracts.CheckConfiguration
	page   int
	logger logger.Logger
}

// NewEvaluator creates an evaluator. With a nil store, only the history
// carried by each message is used and nothing is persisted. checks applies to
// messages that carry no configuration of their own. page is how many stored
// builds are read per query while looking for the baseline.
func NewEvaluator(st store.Store, checks contracts.CheckConfiguration, page int, log logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Evaluator{store: st, checks: checks, page: page, logger: log}
}

// Evaluate saves the build and its history, then runs the regression checks.
// A build the verdict fails is stored as FAILURE, so it never becomes the
// baseline of a later build.
func (e *Evaluator) Evaluate(ctx context.Context, completed contracts.BuildCompleted) (contracts.Verdict, error) {
	build := completed.Build
	if build.Project == "" {
		return contracts.Verdict{}, fmt.Errorf("build #%d has no project", build.Number)
	}

	checks := e.checks
	if completed.Checks != nil {
		checks = *completed.Checks
	}

	h, err := e.history(ctx, completed)
	if err != nil {
		return contracts.Verdict{}, err
	}

	e.logger.Debug("[Evaluator] %s#%d: %d earlier builds loaded", build.Project, build.Number, h.Len())
	verdict := regression.NewChecker(checks, e.logger).Evaluate(h, build)

	if e.store == nil {
		return verdict, nil
	}
	if err := e.store.SaveVerdict(ctx, verdict); err != nil {
		return verdict, fmt.Errorf("failed to save verdict: %w", err)
	}
	if verdict.BuildShouldFail && build.Outcome != contracts.OutcomeFailure {
		e.logger.Info("[Evaluator] Marking %s#%d as %s (was %s)", build.Project, build.Number, contracts.OutcomeFailure, build.Outcome)
		build.Outcome = contracts.OutcomeFailure
		if err := e.store.SaveBuild(ctx, build); err != nil {
			return verdict, fmt.Errorf("failed to mark build as failed: %w", err)
		}
	}
	return verdict, nil
}

func (e *Evaluator) history(ctx context.Context, completed contracts.BuildCompleted) (*history.Snapshot, error) {
	if e.store == nil {
		return history.NewSnapshot(completed.History), nil
	}

	for _, b := range completed.History {
		b, err := e.keepFailed(ctx, b)
		if err != nil {
			return nil, err
		}
		if err := e.store.SaveBuild(ctx, b); err != nil {
			return nil, fmt.Errorf("failed to save %s #%d: %w", b.Project, b.Number, err)
		}
	}
	if err := e.store.SaveBuild(ctx, completed.Build); err != nil {
		return nil, fmt.Errorf("failed to save build: %w", err)
	}

	return store.LoadHistory(ctx, e.store, completed.Build.Project, completed.Build.Number, e.page)
}

// keepFailed returns b as FAILURE when its stored verdict failed it, so
// history fetched again from a provider does not undo that.
func (e *Evaluator) keepFailed(ctx context.Context, b contracts.BuildRecord) (contracts.BuildRecord, error) {
	if b.Outcome == contracts.OutcomeFailure {
		return b, nil
	}
	v, err := e.store.GetVerdict(ctx, b.Project, b.Number)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return b, nil
	case err != nil:
		return b, fmt.Errorf("failed to load verdict for %s #%d: %w", b.Project, b.Number, err)
	}
	if v.BuildShouldFail {
		b.Outcome = contracts.OutcomeFailure
	}
	return b, nil
}
