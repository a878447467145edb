package bubbletea

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/tidwall/pretty"
)

const ellipsis = "…"

// preview returns the first line of s cut to at most width cells, breaking
// only between grapheme clusters.
func preview(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " " + ellipsis
	}
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	var sb strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		sb.WriteString(g.Str())
		used += w
	}
	return sb.String() + ellipsis
}

// compactJSON renders v on one line. Strings are returned as is.
func compactJSON(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// indentedJSON renders v across lines for expanded blocks.
func indentedJSON(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(string(pretty.PrettyOptions(b, &pretty.Options{Width: 80, Indent: "  ", SortKeys: true})), "\n")
}
