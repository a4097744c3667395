// Package sanitize cleans text that leaves regcheck: report messages written
// to CI logs as annotations and tool responses sent over MCP.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Buildkite timestamp markers: \x1b_bk;t=...\x07
var buildkiteTimestamp = regexp.MustCompile(`\x1b_bk;t=[0-9]+\x07`)

// StripANSI removes ANSI escape sequences and Buildkite timestamp markers.
func StripANSI(s string) string {
	return ansi.Strip(buildkiteTimestamp.ReplaceAllString(s, ""))
}

// Clean strips escape sequences, normalises line endings and trims
// surrounding whitespace.
func Clean(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(s)
}

var annotationEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

var propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")

// EscapeAnnotation escapes a GitHub Actions workflow command message so that
// it stays on one line.
func EscapeAnnotation(s string) string {
	return annotationEscaper.Replace(Clean(s))
}

// EscapeProperty escapes a workflow command property value such as title.
func EscapeProperty(s string) string {
	return propertyEscaper.Replace(Clean(s))
}
