// Package render formats verdicts for terminals, CI logs and machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"regcheck/src/contracts"
	"regcheck/src/sanitize"
)

// Format selects an output format.
type Format string

const (
	TextFormat Format = "text"
	CIFormat   Format = "ci"
	JSONFormat Format = "json"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", TextFormat:
		return TextFormat, nil
	case CIFormat, JSONFormat:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, ci or json)", s)
}

var (
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA4335")).Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#34A853")).Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBC04"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8AB4F8")).Bold(true)
)

// FormatText renders the verdict for a terminal: the report lines in order,
// then a one-line result.
func FormatText(v contracts.Verdict) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s #%d", v.Project, v.Number)))
	sb.WriteString("\n")

	for _, f := range v.Findings {
		style := failStyle
		if !f.Regressed {
			style = noteStyle
		}
		sb.WriteString("  " + style.Render(f.Message) + "\n")
		if f.Note != "" {
			sb.WriteString("  " + noteStyle.Render(f.Note) + "\n")
		}
	}

	sb.WriteString(Summary(v))
	sb.WriteString("\n")
	return sb.String()
}

// Summary is the final result line.
func Summary(v contracts.Verdict) string {
	if v.BuildShouldFail {
		return failStyle.Render(fmt.Sprintf("✗ %d regression(s), build should fail", len(v.Regressions())))
	}
	if len(v.Findings) > 0 {
		return passStyle.Render("✓ No failing regressions (coverage drop above threshold)")
	}
	return passStyle.Render("✓ No regressions")
}

// FormatCI renders GitHub Actions workflow annotations: an error per failing
// finding and a notice per exempt one.
func FormatCI(v contracts.Verdict) string {
	var sb strings.Builder
	for _, f := range v.Findings {
		level := "error"
		if !f.Regressed {
			level = "notice"
		}
		msg := f.Message
		if f.Note != "" {
			msg += "\n" + f.Note
		}
		sb.WriteString(fmt.Sprintf("::%s title=%s::%s\n",
			level, sanitize.EscapeProperty(f.Kind.DisplayName()), sanitize.EscapeAnnotation(msg)))
	}

	if v.BuildShouldFail {
		sb.WriteString(fmt.Sprintf("%s #%d: %d regression(s), failing build\n", v.Project, v.Number, len(v.Regressions())))
	} else {
		sb.WriteString(fmt.Sprintf("%s #%d: no failing regressions\n", v.Project, v.Number))
	}
	return sb.String()
}

// FormatJSON renders the verdict as indented JSON.
func FormatJSON(v contracts.Verdict) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// Write renders v in format to w.
func Write(w io.Writer, format Format, v contracts.Verdict) error {
	var out string
	switch format {
	case CIFormat:
		out = FormatCI(v)
	case JSONFormat:
		s, err := FormatJSON(v)
		if err != nil {
			return err
		}
		out = s
	default:
		out = FormatText(v)
	}
	_, err := io.WriteString(w, out)
	return err
}
