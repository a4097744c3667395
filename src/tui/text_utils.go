package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of plain text.
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// StyledWidth returns the display width of text that may carry escape codes.
func StyledWidth(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s to maxLen columns, ending in "..." when ellipsis is set and
// there is room for it.
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxLen {
		return s
	}
	if ellipsis && maxLen > 3 {
		return runewidth.Truncate(s, maxLen, "...")
	}
	return runewidth.Truncate(s, maxLen, "")
}

// TruncateAndPad truncates and then right-pads s to exactly width columns.
func TruncateAndPad(s string, width int, ellipsis bool) string {
	s = Truncate(s, width, ellipsis)
	return runewidth.FillRight(s, width)
}

// PadLeft right-aligns s in width columns.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// Wrap breaks text into lines of at most width columns. Words are kept whole
// where they fit and split where they do not.
func Wrap(text string, width int) string {
	if width <= 0 || text == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(ansi.Wrap(strings.Join(strings.Fields(line), " "), width, "-/"), " ")
	}
	return strings.Join(lines, "\n")
}

// FitLines clips each line of s to width columns, keeping escape codes intact.
func FitLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if StyledWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
