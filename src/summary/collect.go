package summary

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"regcheck/src/contracts"
)

// ReportType identifies the tool that wrote a report file.
type ReportType string

const (
	ReportCheckstyle ReportType = "checkstyle"
	ReportPMD        ReportType = "pmd"
	ReportFindBugs   ReportType = "findbugs"
	ReportCobertura  ReportType = "cobertura"
)

// Detect classifies a report by its file name. Paths may use either slash.
func Detect(filePath string) (ReportType, bool) {
	name := strings.ToLower(path.Base(strings.ReplaceAll(filePath, "\\", "/")))
	if !strings.HasSuffix(name, ".xml") {
		return "", false
	}

	switch {
	case strings.HasPrefix(name, "checkstyle"):
		return ReportCheckstyle, true
	case strings.HasPrefix(name, "pmd"):
		return ReportPMD, true
	case strings.HasPrefix(name, "findbugs"), strings.HasPrefix(name, "spotbugs"):
		return ReportFindBugs, true
	case strings.HasPrefix(name, "cobertura"), name == "coverage.xml":
		return ReportCobertura, true
	}
	return "", false
}

// Collect parses every recognised report in files (path -> content) and
// attaches the results to build. Reports of the same type are summed, so
// multi-module builds yield one count per tool. Unrecognised files are
// ignored; it returns the paths that were used.
func Collect(files map[string][]byte, build *contracts.BuildRecord) ([]string, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	warnings := make(map[contracts.CheckKind]int)
	var coverage Coverage
	hasCoverage := false
	var used []string

	for _, p := range paths {
		typ, ok := Detect(p)
		if !ok {
			continue
		}

		data := files[p]
		switch typ {
		case ReportCobertura:
			c, err := ParseCobertura(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			if err := coverage.Add(c); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			hasCoverage = true
		default:
			kind, count, err := parseWarnings(typ, data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			warnings[kind] += count
		}
		used = append(used, p)
	}

	for kind, count := range warnings {
		build.SetWarnings(kind, count)
	}
	if hasCoverage {
		if pct, ok := coverage.LinePercent(); ok {
			build.SetCoverage(contracts.MetricLine, pct)
		}
		if pct, ok := coverage.BranchPercent(); ok {
			build.SetCoverage(contracts.MetricBranch, pct)
		}
	}
	return used, nil
}

func parseWarnings(typ ReportType, data []byte) (contracts.CheckKind, int, error) {
	switch typ {
	case ReportCheckstyle:
		n, err := ParseCheckstyle(data)
		return contracts.KindCheckstyle, n, err
	case ReportPMD:
		n, err := ParsePMD(data)
		return contracts.KindPMD, n, err
	case ReportFindBugs:
		n, err := ParseFindBugs(data)
		return contracts.KindFindBugs, n, err
	}
	return "", 0, fmt.Errorf("unsupported report type %q", typ)
}
