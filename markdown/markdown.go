// Package markdown renders the markdown of text parts to ANSI-styled
// terminal output, parsing with goldmark and styling with lipgloss.
package markdown

import (
	"strings"

	"github.com/fwojciec/uistream"
)

// DefaultWidth is used when the requested width is not positive.
const DefaultWidth = 80

// Render parses source and returns styled terminal output. Paragraphs and
// list items wrap to width. Code blocks keep their lines as written.
func Render(source string, width int, theme uistream.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return newRenderer([]byte(source), width, theme).document()
}

// RenderStreaming renders text that may still be growing. A code fence left
// open by the text so far is closed before parsing, so half-streamed code
// renders as code instead of reflowing as prose.
func RenderStreaming(source string, width int, theme uistream.Theme) string {
	if fence := openFence(source); fence != "" {
		if !strings.HasSuffix(source, "\n") {
			source += "\n"
		}
		source += fence
	}
	return Render(source, width, theme)
}

// HasOpenFence reports whether source opens a code fence it does not close.
func HasOpenFence(source string) bool {
	return openFence(source) != ""
}

// openFence returns the marker of the code fence left open at the end of
// source, or "" when every fence is closed.
func openFence(source string) string {
	var fence string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		marker := fenceMarker(trimmed)
		switch {
		case marker == "":
		case fence == "":
			fence = marker
		case strings.HasPrefix(trimmed, fence) && strings.TrimSpace(strings.TrimLeft(trimmed, fence[:1])) == "":
			fence = ""
		}
	}
	return fence
}

// fenceMarker returns the run of backticks or tildes opening line, if it
// is long enough to be a fence.
func fenceMarker(line string) string {
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return ""
	}
	n := len(line) - len(strings.TrimLeft(line, line[:1]))
	if n < 3 {
		return ""
	}
	return line[:n]
}
