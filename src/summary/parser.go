// Package summary reads the reports static-analysis and coverage tools leave
// behind and reduces them to the counts and percentages a BuildRecord holds.
package summary

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
)

// CheckstyleReport is the root of a checkstyle-result.xml file.
type CheckstyleReport struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Files   []CheckstyleFile `xml:"file"`
}

// CheckstyleFile groups the errors reported for one source file.
type CheckstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []CheckstyleError `xml:"error"`
}

// CheckstyleError is one style violation.
type CheckstyleError struct {
	Line     int    `xml:"line,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

// PMDReport is the root of a pmd.xml file.
type PMDReport struct {
	XMLName xml.Name  `xml:"pmd"`
	Files   []PMDFile `xml:"file"`
}

// PMDFile groups violations for one source file.
type PMDFile struct {
	Name       string         `xml:"name,attr"`
	Violations []PMDViolation `xml:"violation"`
}

// PMDViolation is one rule violation.
type PMDViolation struct {
	Rule     string `xml:"rule,attr"`
	Priority int    `xml:"priority,attr"`
}

// BugCollection is the root of a FindBugs or SpotBugs XML report.
type BugCollection struct {
	XMLName      xml.Name      `xml:"BugCollection"`
	BugInstances []BugInstance `xml:"BugInstance"`
}

// BugInstance is one detected bug pattern.
type BugInstance struct {
	Type     string `xml:"type,attr"`
	Priority int    `xml:"priority,attr"`
	Category string `xml:"category,attr"`
}

// CoberturaReport is the root of a Cobertura coverage.xml file. Counts are
// kept as strings so a missing attribute can be told apart from zero.
type CoberturaReport struct {
	XMLName         xml.Name `xml:"coverage"`
	LineRate        string   `xml:"line-rate,attr"`
	BranchRate      string   `xml:"branch-rate,attr"`
	LinesCovered    string   `xml:"lines-covered,attr"`
	LinesValid      string   `xml:"lines-valid,attr"`
	BranchesCovered string   `xml:"branches-covered,attr"`
	BranchesValid   string   `xml:"branches-valid,attr"`
}

// ParseCheckstyle returns the number of Checkstyle errors in data.
func ParseCheckstyle(data []byte) (int, error) {
	var report CheckstyleReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("failed to parse Checkstyle XML: %w", err)
	}

	count := 0
	for _, f := range report.Files {
		count += len(f.Errors)
	}
	return count, nil
}

// ParsePMD returns the number of PMD violations in data.
func ParsePMD(data []byte) (int, error) {
	var report PMDReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("failed to parse PMD XML: %w", err)
	}

	count := 0
	for _, f := range report.Files {
		count += len(f.Violations)
	}
	return count, nil
}

// ParseFindBugs returns the number of bug instances in a FindBugs or SpotBugs report.
func ParseFindBugs(data []byte) (int, error) {
	var report BugCollection
	if err := xml.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("failed to parse FindBugs XML: %w", err)
	}
	return len(report.BugInstances), nil
}

// Coverage is the line and branch coverage read from one or more reports.
type Coverage struct {
	LinesCovered, LinesValid       int
	BranchesCovered, BranchesValid int

	// HasLineCounts and HasBranchCounts are set when a report carried the
	// covered/valid attributes. Rates are used only when it did not.
	HasLineCounts, HasBranchCounts bool
	LineRate, BranchRate           float64
	HasLineRate, HasBranchRate     bool
}

// ParseCobertura reads the root totals of a Cobertura report.
func ParseCobertura(data []byte) (Coverage, error) {
	var report CoberturaReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return Coverage{}, fmt.Errorf("failed to parse Cobertura XML: %w", err)
	}

	var c Coverage
	var err error
	if c.LinesCovered, c.LinesValid, c.HasLineCounts, err = counts(report.LinesCovered, report.LinesValid); err != nil {
		return Coverage{}, fmt.Errorf("invalid line counts: %w", err)
	}
	if c.BranchesCovered, c.BranchesValid, c.HasBranchCounts, err = counts(report.BranchesCovered, report.BranchesValid); err != nil {
		return Coverage{}, fmt.Errorf("invalid branch counts: %w", err)
	}
	if c.LineRate, c.HasLineRate, err = rate(report.LineRate); err != nil {
		return Coverage{}, fmt.Errorf("invalid line-rate: %w", err)
	}
	if c.BranchRate, c.HasBranchRate, err = rate(report.BranchRate); err != nil {
		return Coverage{}, fmt.Errorf("invalid branch-rate: %w", err)
	}
	return c, nil
}

// Add merges another report, e.g. from a second module. Percentages of
// several reports are combined from their counts only, so a metric that
// either side gives as a bare rate cannot be merged.
func (c *Coverage) Add(o Coverage) error {
	if err := mergeable("line", c.HasLineCounts, c.HasLineRate, o.HasLineCounts, o.HasLineRate); err != nil {
		return err
	}
	if err := mergeable("branch", c.HasBranchCounts, c.HasBranchRate, o.HasBranchCounts, o.HasBranchRate); err != nil {
		return err
	}

	c.LinesCovered += o.LinesCovered
	c.LinesValid += o.LinesValid
	c.BranchesCovered += o.BranchesCovered
	c.BranchesValid += o.BranchesValid
	c.HasLineCounts = c.HasLineCounts || o.HasLineCounts
	c.HasBranchCounts = c.HasBranchCounts || o.HasBranchCounts
	if !c.HasLineRate && o.HasLineRate {
		c.LineRate, c.HasLineRate = o.LineRate, true
	}
	if !c.HasBranchRate && o.HasBranchRate {
		c.BranchRate, c.HasBranchRate = o.BranchRate, true
	}
	return nil
}

func mergeable(metric string, counts, rate, otherCounts, otherRate bool) error {
	if !(counts || rate) || !(otherCounts || otherRate) {
		return nil
	}
	if !counts || !otherCounts {
		return fmt.Errorf("cannot merge %s coverage of several reports when one has only a %s-rate", metric, metric)
	}
	return nil
}

// LinePercent returns line coverage in percent (0-100).
func (c Coverage) LinePercent() (float64, bool) {
	return percent(c.LinesCovered, c.LinesValid, c.HasLineCounts, c.LineRate, c.HasLineRate)
}

// BranchPercent returns branch coverage in percent (0-100).
func (c Coverage) BranchPercent() (float64, bool) {
	return percent(c.BranchesCovered, c.BranchesValid, c.HasBranchCounts, c.BranchRate, c.HasBranchRate)
}

// percent prefers counts. Counts with nothing valid mean the metric was not
// measurable, so the rate is not consulted.
func percent(covered, valid int, hasCounts bool, rate float64, hasRate bool) (float64, bool) {
	if valid > 0 {
		return float64(covered) * 100 / float64(valid), true
	}
	if hasCounts {
		return 0, false
	}
	if hasRate {
		return rate * 100, true
	}
	return 0, false
}

func counts(covered, valid string) (int, int, bool, error) {
	if covered == "" || valid == "" {
		return 0, 0, false, nil
	}
	c, err := strconv.Atoi(covered)
	if err != nil {
		return 0, 0, false, err
	}
	v, err := strconv.Atoi(valid)
	if err != nil {
		return 0, 0, false, err
	}
	if c < 0 || v < 0 || c > v {
		return 0, 0, false, fmt.Errorf("covered %d of %d", c, v)
	}
	return c, v, true, nil
}

func rate(s string) (float64, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(r) || r < 0 || r > 1 {
		return 0, false, fmt.Errorf("rate %v outside [0, 1]", r)
	}
	return r, true, nil
}
