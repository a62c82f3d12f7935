// Package markdown converts raw, possibly mid-stream assistant text
// into an HTML fragment.
//
// Render is a pure function: calling it again on a longer prefix of the
// same text reproduces all previously emitted structure plus the
// additions. It never fails on unbalanced markers; an unterminated
// construct renders best effort.
//
// The transform is an ordered pass pipeline. Escaping runs first, then
// code regions are lifted out into a protected store so no later pass
// can touch their contents, then block structure (tables), then line
// and inline markup, and paragraph normalization last.
package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Render converts raw text to an HTML fragment.
func Render(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	p := newProtector()

	s := escapeText(raw)
	s = extractFencedCode(s, p)
	s = extractInlineCode(s, p)
	s = renderTables(s, p)
	s = renderHeadings(s)
	s = renderEmphasis(s)
	s = renderLists(s)
	s = renderBlockquotes(s)
	s = renderRules(s)
	s = renderLinks(s)
	s = renderParagraphs(s, p)

	return p.restore(s)
}

// --- Protected regions ---

// protector stores finished HTML for regions later passes must not
// reprocess (code contents above all). Regions are referenced by an
// index placeholder; the HTML itself never travels through the passes.
type protector struct {
	regions []string
	block   []bool
}

func newProtector() *protector {
	return &protector{}
}

const (
	phOpen  = "\x00"
	phClose = "\x01"
)

// protect stores html and returns its placeholder. Block-level regions
// are kept on their own line and never wrapped in a paragraph.
func (p *protector) protect(html string, block bool) string {
	p.regions = append(p.regions, html)
	p.block = append(p.block, block)
	return phOpen + strconv.Itoa(len(p.regions)-1) + phClose
}

func (p *protector) isBlockPlaceholder(line string) bool {
	idx, ok := p.placeholderIndex(strings.TrimSpace(line))
	return ok && p.block[idx]
}

func (p *protector) placeholderIndex(s string) (int, bool) {
	if !strings.HasPrefix(s, phOpen) || !strings.HasSuffix(s, phClose) {
		return 0, false
	}
	idx, err := strconv.Atoi(s[len(phOpen) : len(s)-len(phClose)])
	if err != nil || idx < 0 || idx >= len(p.regions) {
		return 0, false
	}
	return idx, true
}

var placeholderRe = regexp.MustCompile("\x00(\\d+)\x01")

func (p *protector) restore(s string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(ph string) string {
		idx, err := strconv.Atoi(ph[1 : len(ph)-1])
		if err != nil || idx < 0 || idx >= len(p.regions) {
			return ""
		}
		return p.regions[idx]
	})
}

// --- Pass 1: escape ---

// escapeText escapes markup-significant characters. It must run first:
// every later pass emits markup that would be corrupted by escaping.
// The placeholder control bytes are stripped so input text can never
// alias a protected region.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, phOpen, "")
	s = strings.ReplaceAll(s, phClose, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return html.EscapeString(s)
}

// --- Pass 2: fenced code blocks ---

// extractFencedCode lifts ``` fenced blocks into protected regions. An
// unterminated fence swallows the rest of the input: while the backend
// is still mid-emitting a block, it renders as code in progress rather
// than leaking markers into later passes.
func extractFencedCode(s string, p *protector) string {
	lines := strings.Split(s, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "```") {
			out = append(out, lines[i])
			continue
		}

		lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		var body []string
		closed := false
		j := i + 1
		for ; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				closed = true
				break
			}
			body = append(body, lines[j])
		}

		var b strings.Builder
		if lang != "" {
			fmt.Fprintf(&b, `<pre><code class="language-%s">`, lang)
		} else {
			b.WriteString("<pre><code>")
		}
		b.WriteString(strings.Join(body, "\n"))
		b.WriteString("</code></pre>")
		out = append(out, p.protect(b.String(), true))

		if closed {
			i = j
		} else {
			i = len(lines)
		}
	}
	return strings.Join(out, "\n")
}

// --- Pass 3: inline code ---

func extractInlineCode(s string, p *protector) string {
	var out strings.Builder
	for {
		open := strings.IndexByte(s, '`')
		if open < 0 {
			break
		}
		rest := s[open+1:]
		length := strings.IndexByte(rest, '`')
		if length < 0 || strings.Contains(rest[:length], "\n") {
			// Unbalanced or spanning lines: leave the backtick literal.
			out.WriteString(s[:open+1])
			s = rest
			continue
		}
		out.WriteString(s[:open])
		out.WriteString(p.protect("<code>"+rest[:length]+"</code>", false))
		s = rest[length+1:]
	}
	out.WriteString(s)
	return out.String()
}

// --- Pass 4: tables ---

// renderTables converts runs of two or more consecutive pipe rows into
// a table. It runs before emphasis so markers inside cells cannot be
// mistaken for structural separators.
func renderTables(s string, p *protector) string {
	lines := strings.Split(s, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		if !isPipeRow(lines[i]) {
			out = append(out, lines[i])
			continue
		}
		j := i
		for j < len(lines) && isPipeRow(lines[j]) {
			j++
		}
		if j-i < 2 {
			out = append(out, lines[i])
			continue
		}
		out = append(out, p.protect(buildTable(lines[i:j]), true))
		i = j - 1
	}
	return strings.Join(out, "\n")
}

func isPipeRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

// isSeparatorRow reports a row of only dashes, colons, and pipes. It is
// dropped, never rendered as data.
func isSeparatorRow(cells []string) bool {
	sawDash := false
	for _, cell := range cells {
		for _, r := range cell {
			switch r {
			case '-':
				sawDash = true
			case ':', ' ':
			default:
				return false
			}
		}
	}
	return sawDash
}

func splitCells(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = strings.TrimSpace(part)
	}
	return cells
}

func buildTable(rows []string) string {
	var b strings.Builder
	b.WriteString("<table>")
	headerDone := false
	for _, row := range rows {
		cells := splitCells(row)
		if isSeparatorRow(cells) {
			continue
		}
		tag := "td"
		if !headerDone {
			tag = "th"
			headerDone = true
		}
		b.WriteString("<tr>")
		for _, cell := range cells {
			b.WriteString("<" + tag + ">")
			b.WriteString(renderLinks(renderEmphasis(cell)))
			b.WriteString("</" + tag + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// --- Pass 5: headings, bold, italic ---

var (
	h3Re     = regexp.MustCompile(`(?m)^###[ \t]+(.+)$`)
	h2Re     = regexp.MustCompile(`(?m)^##[ \t]+(.+)$`)
	boldRe   = regexp.MustCompile(`\*\*([^\n]+?)\*\*`)
	italicRe = regexp.MustCompile(`(^|[^\w*])\*([^\s*][^\n*]*?)\*`)
)

func renderHeadings(s string) string {
	s = h3Re.ReplaceAllString(s, "<h3>$1</h3>")
	s = h2Re.ReplaceAllString(s, "<h2>$1</h2>")
	return s
}

func renderEmphasis(s string) string {
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "$1<em>$2</em>")
	return s
}

// --- Pass 6: lists ---

var orderedItemRe = regexp.MustCompile(`^\d+\.[ \t]+`)

// renderLists groups contiguous list items into one container. Each
// finished group collapses to a single line so the paragraph pass sees
// it as a block.
func renderLists(s string) string {
	lines := strings.Split(s, "\n")
	var out []string

	i := 0
	for i < len(lines) {
		if item, ok := unorderedItem(lines[i]); ok {
			items := []string{item}
			j := i + 1
			for j < len(lines) {
				next, ok := unorderedItem(lines[j])
				if !ok {
					break
				}
				items = append(items, next)
				j++
			}
			out = append(out, wrapList("ul", items))
			i = j
			continue
		}
		if item, ok := orderedItem(lines[i]); ok {
			items := []string{item}
			j := i + 1
			for j < len(lines) {
				next, ok := orderedItem(lines[j])
				if !ok {
					break
				}
				items = append(items, next)
				j++
			}
			out = append(out, wrapList("ol", items))
			i = j
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n")
}

func unorderedItem(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"- ", "• "} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", false
}

func orderedItem(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if loc := orderedItemRe.FindStringIndex(trimmed); loc != nil {
		return strings.TrimSpace(trimmed[loc[1]:]), true
	}
	return "", false
}

func wrapList(tag string, items []string) string {
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(item)
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

// --- Pass 7: blockquotes, horizontal rules ---

// The quote marker was escaped in pass 1, so detection matches &gt;.
var quoteRe = regexp.MustCompile(`(?m)^&gt;[ \t]?(.*)$`)

func renderBlockquotes(s string) string {
	s = quoteRe.ReplaceAllString(s, "<blockquote>$1</blockquote>")
	// Adjacent quote lines collapse into one block.
	s = strings.ReplaceAll(s, "</blockquote>\n<blockquote>", "<br>")
	return s
}

var hrRe = regexp.MustCompile(`(?m)^(?:---+|\*\*\*+|___+)[ \t]*$`)

func renderRules(s string) string {
	return hrRe.ReplaceAllString(s, "<hr>")
}

// --- Pass 8: links ---

var linkRe = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)

func renderLinks(s string) string {
	return linkRe.ReplaceAllString(s, `<a href="$2" target="_blank" rel="noopener">$1</a>`)
}

// --- Pass 9: paragraphs ---

// blockTags are elements a paragraph must never wrap.
var blockTags = []string{"<h2>", "<h3>", "<ul>", "<ol>", "<blockquote>", "<hr>", "<table>", "<pre>"}

func isBlockLine(line string, p *protector) bool {
	trimmed := strings.TrimSpace(line)
	if p.isBlockPlaceholder(trimmed) {
		return true
	}
	for _, tag := range blockTags {
		if strings.HasPrefix(trimmed, tag) {
			return true
		}
	}
	return false
}

// renderParagraphs runs last: double newline becomes a paragraph break,
// single newline a soft break, and block-level lines stay unwrapped.
func renderParagraphs(s string, p *protector) string {
	lines := strings.Split(s, "\n")
	var out []string
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		out = append(out, "<p>"+strings.Join(para, "<br>")+"</p>")
		para = nil
	}

	for _, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case isBlockLine(line, p):
			flush()
			out = append(out, strings.TrimSpace(line))
		default:
			para = append(para, line)
		}
	}
	flush()

	return strings.Join(out, "\n")
}
