package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/uistream"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const minListWidth = 10

type renderer struct {
	src   []byte
	width int

	bold    lipgloss.Style
	italic  lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	link    lipgloss.Style
	code    lipgloss.Style
}

func newRenderer(src []byte, width int, theme uistream.Theme) *renderer {
	return &renderer{
		src:     src,
		width:   width,
		bold:    lipgloss.NewStyle().Bold(true),
		italic:  lipgloss.NewStyle().Italic(true),
		heading: lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
		link:    lipgloss.NewStyle().Underline(true),
		code:    lipgloss.NewStyle().Bold(true).Background(color(theme.CodeBg)),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) document() string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(r.src))
	return strings.TrimRight(r.blocks(doc, r.width), "\n")
}

// blocks renders the block children of node separated by blank lines.
func (r *renderer) blocks(node ast.Node, width int) string {
	var out []string
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c, width); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n\n")
}

func (r *renderer) block(node ast.Node, width int) string {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return r.wrap(r.inline(n), width)
	case *ast.Heading:
		return r.wrap(r.heading.Render(r.inline(n)), width)
	case *ast.FencedCodeBlock:
		body := r.codeLines(n)
		if lang := string(n.Language(r.src)); lang != "" {
			return r.muted.Render(lang) + "\n" + body
		}
		return body
	case *ast.CodeBlock:
		return r.codeLines(n)
	case *ast.List:
		return strings.Join(r.list(n, width, 0), "\n")
	case *ast.Blockquote:
		return r.quote(n, width)
	case *ast.ThematicBreak:
		return r.muted.Render(strings.Repeat("─", min(width, 40)))
	case *ast.HTMLBlock:
		return strings.TrimRight(r.rawLines(n), "\n")
	default:
		return r.blocks(n, width)
	}
}

func (r *renderer) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (r *renderer) rawLines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(r.src))
	}
	return sb.String()
}

// codeLines renders each line of a code block behind a gutter.
func (r *renderer) codeLines(n ast.Node) string {
	gutter := r.muted.Render("│") + " "
	raw := strings.TrimRight(r.rawLines(n), "\n")
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = gutter + l
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) quote(n *ast.Blockquote, width int) string {
	bar := r.muted.Render("▌") + " "
	inner := r.blocks(n, max(width-2, minListWidth))
	lines := strings.Split(inner, "\n")
	for i, l := range lines {
		lines[i] = bar + r.italic.Render(l)
	}
	return strings.Join(lines, "\n")
}

// list renders the items of n as lines, nested lists indented by depth.
func (r *renderer) list(n *ast.List, width, depth int) []string {
	var lines []string
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		indent := strings.Repeat("  ", depth)

		var content []string
		flush := func() {
			if len(content) == 0 {
				return
			}
			lines = append(lines, r.item(indent, marker, strings.Join(content, " "), width)...)
			content = nil
			marker = strings.Repeat(" ", len(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content = append(content, r.inline(in))
			case *ast.List:
				flush()
				lines = append(lines, r.list(in, width, depth+1)...)
			default:
				content = append(content, r.block(in, width))
			}
		}
		flush()
	}
	return lines
}

// item wraps content behind its marker and aligns continuation lines with
// the text after the marker.
func (r *renderer) item(indent, marker, content string, width int) []string {
	prefix := indent + marker
	wrapped := r.wrap(content, max(width-len(prefix), minListWidth))
	lines := strings.Split(wrapped, "\n")
	pad := strings.Repeat(" ", len(prefix))
	for i, l := range lines {
		if i == 0 {
			lines[i] = prefix + l
		} else {
			lines[i] = pad + l
		}
	}
	return lines
}

// inline renders the inline children of node.
func (r *renderer) inline(node ast.Node) string {
	var sb strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &sb)
	}
	return sb.String()
}

func (r *renderer) span(node ast.Node, sb *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		sb.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			sb.WriteByte('\n')
		case n.SoftLineBreak():
			sb.WriteByte(' ')
		}
	case *ast.String:
		sb.Write(n.Value)
	case *ast.Emphasis:
		// ***x*** parses as nested emphasis, so levels are 1 or 2.
		if n.Level == 1 {
			sb.WriteString(r.italic.Render(r.inline(n)))
		} else {
			sb.WriteString(r.bold.Render(r.inline(n)))
		}
	case *ast.CodeSpan:
		sb.WriteString(r.code.Render(r.inline(n)))
	case *ast.Link:
		r.target(sb, r.inline(n), string(n.Destination))
	case *ast.Image:
		r.target(sb, r.inline(n), string(n.Destination))
	case *ast.AutoLink:
		sb.WriteString(r.link.Render(string(n.URL(r.src))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(r.src))
		}
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, sb)
		}
	}
}

func (r *renderer) target(sb *strings.Builder, label, url string) {
	sb.WriteString(r.link.Render(label))
	if url != "" && url != label {
		sb.WriteString(" " + r.muted.Render("("+url+")"))
	}
}
