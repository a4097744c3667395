package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"regcheck/src/contracts"
	"regcheck/src/sanitize"
	"regcheck/src/store"
)

func sampleEntries() []store.Entry {
	b2 := contracts.BuildRecord{
		Project:     "acme/api",
		Number:      2,
		Outcome:     contracts.OutcomeSuccess,
		CompletedAt: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
	}
	b2.SetWarnings(contracts.KindPMD, 8)
	b2.SetCoverage(contracts.MetricLine, 84.25)

	b1 := contracts.BuildRecord{Project: "acme/api", Number: 1, Outcome: contracts.OutcomeFailure}

	return []store.Entry{
		{Build: b2, Verdict: &contracts.Verdict{Project: "acme/api", Number: 2, BuildShouldFail: true}},
		{Build: b1},
	}
}

func TestHistoryRow(t *testing.T) {
	entries := sampleEntries()

	got := HistoryRow(entries[0])
	want := []string{"2", "SUCCESS", "REGRESSED", "8", "-", "-", "84.2%", "-", "2026-05-04 09:30"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("HistoryRow() = %v, want %v", got, want)
	}

	if got := HistoryRow(entries[1]); got[2] != "-" || got[8] != "-" {
		t.Errorf("HistoryRow(unevaluated) = %v, want verdict and time as -", got)
	}
	if len(HistoryRow(entries[1])) != len(historyHeaders) {
		t.Error("row and header lengths differ")
	}
}

func TestFormatHistory(t *testing.T) {
	out := sanitize.StripANSI(FormatHistory("acme/api", sampleEntries()))

	for _, want := range []string{"acme/api", "Checkstyle", "REGRESSED", "FAILURE", "84.2%"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatHistory() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "SUCCESS") > strings.Index(out, "FAILURE") {
		t.Error("FormatHistory() should keep the given (newest first) order")
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	if got := FormatHistory("acme/api", nil); got != "No builds recorded for acme/api\n" {
		t.Errorf("FormatHistory(nil) = %q", got)
	}
}

func TestWriteHistory_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, JSONFormat, "acme/api", sampleEntries()); err != nil {
		t.Fatalf("WriteHistory() error = %v", err)
	}

	var decoded []struct {
		Number  int                `json:"number"`
		Outcome contracts.Outcome  `json:"outcome"`
		Verdict *contracts.Verdict `json:"verdict"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[0].Number != 2 || decoded[0].Verdict == nil || decoded[1].Verdict != nil {
		t.Errorf("decoded = %+v", decoded)
	}
}
