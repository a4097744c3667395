package regression

import (
	"testing"

	"regcheck/src/contracts"
	"regcheck/src/history"
)

type buildOpt func(*contracts.BuildRecord)

func withWarnings(kind contracts.CheckKind, n int) buildOpt {
	return func(b *contracts.BuildRecord) { b.SetWarnings(kind, n) }
}

func withCoverage(line, branch float64) buildOpt {
	return func(b *contracts.BuildRecord) {
		b.SetCoverage(contracts.MetricLine, line)
		b.SetCoverage(contracts.MetricBranch, branch)
	}
}

func newBuild(number int, outcome contracts.Outcome, opts ...buildOpt) contracts.BuildRecord {
	b := contracts.BuildRecord{Project: "app", Number: number, Outcome: outcome}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func TestEvaluate_WarningRegressionAgainstLatestSuccess(t *testing.T) {
	snap := history.NewSnapshot([]contracts.BuildRecord{
		newBuild(1, contracts.OutcomeSuccess, withWarnings(contracts.KindPMD, 5)),
		newBuild(2, contracts.OutcomeSuccess, withWarnings(contracts.KindPMD, 5)),
	})
	current := newBuild(3, contracts.OutcomeFailure, withWarnings(contracts.KindPMD, 8))

	v := Evaluate(snap, current, contracts.CheckConfiguration{PMD: true})

	if !v.BuildShouldFail {
		t.Fatal("BuildShouldFail = false, want true")
	}
	if len(v.Findings) != 1 {
		t.Fatalf("len(Findings) = %d, want 1", len(v.Findings))
	}
	f := v.Findings[0]
	if f.BaselineNumber == nil || *f.BaselineNumber != 2 {
		t.Errorf("BaselineNumber = %v, want 2", f.BaselineNumber)
	}
	if f.Delta != 3 {
		t.Errorf("Delta = %v, want 3", f.Delta)
	}
	if v.Project != "app" || v.Number != 3 {
		t.Errorf("verdict identifies %s#%d, want app#3", v.Project, v.Number)
	}
}

func TestEvaluate(t *testing.T) {
	baselineOK := newBuild(4, contracts.OutcomeSuccess,
		withWarnings(contracts.KindPMD, 10),
		withWarnings(contracts.KindFindBugs, 3),
		withWarnings(contracts.KindCheckstyle, 20),
		withCoverage(90, 80))
	failed := newBuild(5, contracts.OutcomeFailure,
		withWarnings(contracts.KindPMD, 0),
		withCoverage(10, 10))

	tests := []struct {
		name      string
		history   []contracts.BuildRecord
		current   contracts.BuildRecord
		checks    contracts.CheckConfiguration
		wantKinds []contracts.CheckKind
		wantFail  bool
		wantLines int
	}{
		{
			name:    "only coverage regresses",
			history: []contracts.BuildRecord{baselineOK},
			current: newBuild(6, contracts.OutcomeSuccess,
				withWarnings(contracts.KindPMD, 10),
				withWarnings(contracts.KindFindBugs, 3),
				withCoverage(90, 70)),
			checks:    contracts.DefaultCheckConfiguration(),
			wantKinds: []contracts.CheckKind{contracts.KindBranchCoverage},
			wantFail:  true,
			wantLines: 1,
		},
		{
			name:    "disabled check is not evaluated",
			history: []contracts.BuildRecord{baselineOK},
			current: newBuild(6, contracts.OutcomeSuccess,
				withWarnings(contracts.KindPMD, 99),
				withCoverage(10, 10)),
			checks:   contracts.CheckConfiguration{FindBugs: true, Checkstyle: true},
			wantFail: false,
		},
		{
			name:      "missing coverage is silent",
			history:   []contracts.BuildRecord{baselineOK},
			current:   newBuild(6, contracts.OutcomeSuccess),
			checks:    contracts.CheckConfiguration{Coverage: true},
			wantFail:  false,
			wantLines: 0,
		},
		{
			name:     "baseline lacks metric",
			history:  []contracts.BuildRecord{newBuild(1, contracts.OutcomeSuccess)},
			current:  newBuild(2, contracts.OutcomeSuccess, withWarnings(contracts.KindPMD, 50), withCoverage(1, 1)),
			checks:   contracts.DefaultCheckConfiguration(),
			wantFail: false,
		},
		{
			name:     "no successful baseline",
			history:  []contracts.BuildRecord{newBuild(1, contracts.OutcomeFailure, withWarnings(contracts.KindPMD, 0))},
			current:  newBuild(2, contracts.OutcomeSuccess, withWarnings(contracts.KindPMD, 50)),
			checks:   contracts.DefaultCheckConfiguration(),
			wantFail: false,
		},
		{
			name:    "failed build between is skipped",
			history: []contracts.BuildRecord{baselineOK, failed},
			current: newBuild(6, contracts.OutcomeSuccess,
				withWarnings(contracts.KindPMD, 11),
				withWarnings(contracts.KindCheckstyle, 21)),
			checks:    contracts.DefaultCheckConfiguration(),
			wantKinds: []contracts.CheckKind{contracts.KindPMD, contracts.KindCheckstyle},
			wantFail:  true,
			wantLines: 2,
		},
		{
			name:    "exempt coverage drop logs but passes",
			history: []contracts.BuildRecord{baselineOK},
			current: newBuild(6, contracts.OutcomeSuccess,
				withCoverage(86, 80)),
			checks:    contracts.CheckConfiguration{Coverage: true},
			wantKinds: []contracts.CheckKind{contracts.KindLineCoverage},
			wantFail:  false,
			wantLines: 2,
		},
		{
			name:    "every regression is reported in order",
			history: []contracts.BuildRecord{baselineOK},
			current: newBuild(6, contracts.OutcomeSuccess,
				withWarnings(contracts.KindPMD, 11),
				withWarnings(contracts.KindFindBugs, 4),
				withWarnings(contracts.KindCheckstyle, 21),
				withCoverage(50, 50)),
			checks: contracts.DefaultCheckConfiguration(),
			wantKinds: []contracts.CheckKind{
				contracts.KindPMD,
				contracts.KindFindBugs,
				contracts.KindCheckstyle,
				contracts.KindBranchCoverage,
				contracts.KindLineCoverage,
			},
			wantFail:  true,
			wantLines: 5,
		},
		{
			name:     "nothing enabled",
			history:  []contracts.BuildRecord{baselineOK},
			current:  newBuild(6, contracts.OutcomeSuccess, withWarnings(contracts.KindPMD, 99)),
			checks:   contracts.CheckConfiguration{},
			wantFail: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(history.NewSnapshot(tt.history), tt.current, tt.checks)

			if v.BuildShouldFail != tt.wantFail {
				t.Errorf("BuildShouldFail = %v, want %v", v.BuildShouldFail, tt.wantFail)
			}
			if len(v.Findings) != len(tt.wantKinds) {
				t.Fatalf("Findings = %+v, want kinds %v", v.Findings, tt.wantKinds)
			}
			for i, k := range tt.wantKinds {
				if v.Findings[i].Kind != k {
					t.Errorf("Findings[%d].Kind = %v, want %v", i, v.Findings[i].Kind, k)
				}
			}
			if len(v.LogLines) != tt.wantLines {
				t.Errorf("LogLines = %q, want %d lines", v.LogLines, tt.wantLines)
			}
		})
	}
}

func TestEvaluate_NilHistory(t *testing.T) {
	current := newBuild(1, contracts.OutcomeSuccess, withWarnings(contracts.KindPMD, 3))

	v := NewChecker(contracts.DefaultCheckConfiguration(), nil).Evaluate(nil, current)
	if v.BuildShouldFail || len(v.Findings) != 0 {
		t.Errorf("Evaluate(nil history) = %+v, want empty passing verdict", v)
	}
}

func TestReport_LogLinesOrder(t *testing.T) {
	r := NewReport(contracts.BuildRecord{Project: "app", Number: 9})
	r.Add(contracts.Finding{Kind: contracts.KindLineCoverage, Message: "drop", Note: "exempt"})
	r.Add(contracts.Finding{Kind: contracts.KindPMD, Message: "more", Regressed: true})

	got := r.LogLines()
	want := []string{"drop", "exempt", "more"}
	if len(got) != len(want) {
		t.Fatalf("LogLines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LogLines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !r.Verdict().BuildShouldFail {
		t.Error("Verdict().BuildShouldFail = false, want true")
	}
}
