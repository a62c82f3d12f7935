package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ─── Welcome Screen ─────────────────────────────────────────────────────────

func renderWelcome(version, server string) string {
	titleLine := logoTitleStyle.Render("AskDesk") + " " + versionStyle.Render("v"+version)

	var infoLine string
	if server == "" {
		infoLine = welcomeHintStyle.Render("Run `askdesk login <url>` to get started")
	} else {
		serverDisplay := server
		if len(serverDisplay) > 48 {
			serverDisplay = serverDisplay[:45] + "..."
		}
		infoLine = dimStyle.Render(serverDisplay)
	}

	return fmt.Sprintf("\n%s\n%s\n", titleLine, infoLine)
}

// ─── Live markdown (lightweight line renderer) ─────────────────────────────
//
// Used for the in-flight answer area, re-rendered from the full
// accumulated text on every delta. Styled but fast; the finished
// message goes through glamour instead.

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiItalic    = "\033[3m"
	ansiUnderline = "\033[4m"

	ansiHeading = "\033[1;97m"
	ansiCode    = "\033[38;5;220m"
	ansiBorder  = "\033[38;5;73m"
	ansiBody    = "\033[38;5;252m"
)

type mdState struct {
	inCodeBlock bool
}

// RenderLive renders raw markdown into styled terminal lines. It is a
// pure function of its input, safe to re-run on every growing prefix,
// and tolerates unterminated constructs.
func RenderLive(content string) string {
	lines := strings.Split(content, "\n")
	state := &mdState{}
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		result = append(result, renderLiveLine(line, state))
	}
	return strings.Join(result, "\n")
}

func renderLiveLine(line string, state *mdState) string {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "```") {
		if !state.inCodeBlock {
			state.inCodeBlock = true
			lang := strings.TrimSpace(trimmed[3:])
			if lang != "" {
				return fmt.Sprintf("%s┌─ %s ─%s", ansiBorder, lang, ansiReset)
			}
			return fmt.Sprintf("%s┌──%s", ansiBorder, ansiReset)
		}
		state.inCodeBlock = false
		return fmt.Sprintf("%s└──%s", ansiBorder, ansiReset)
	}

	if state.inCodeBlock {
		return fmt.Sprintf("%s│%s %s%s%s", ansiBorder, ansiReset, ansiBody, line, ansiReset)
	}

	if strings.HasPrefix(trimmed, "### ") {
		return fmt.Sprintf("%s%s%s", ansiHeading, trimmed[4:], ansiReset)
	}
	if strings.HasPrefix(trimmed, "## ") {
		return fmt.Sprintf("%s%s%s", ansiHeading, trimmed[3:], ansiReset)
	}

	if trimmed == "---" || trimmed == "***" || trimmed == "___" {
		return fmt.Sprintf("%s────────────────────────────────────────%s", ansiBorder, ansiReset)
	}

	if strings.HasPrefix(trimmed, "> ") {
		return fmt.Sprintf("%s│%s %s%s%s", ansiBorder, ansiReset, ansiBody, renderInline(trimmed[2:]), ansiReset)
	}

	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	pad := strings.Repeat(" ", indent)

	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "• ") {
		return fmt.Sprintf("%s%s• %s%s", pad, ansiBody, renderInline(strings.TrimSpace(trimmed[2:])), ansiReset)
	}

	if dotIdx := strings.Index(trimmed, ". "); dotIdx > 0 && dotIdx <= 3 {
		num := trimmed[:dotIdx]
		allDigit := true
		for _, c := range num {
			if c < '0' || c > '9' {
				allDigit = false
				break
			}
		}
		if allDigit {
			return fmt.Sprintf("%s%s%s.%s %s%s%s", pad, ansiBorder, num, ansiReset, ansiBody, renderInline(trimmed[dotIdx+2:]), ansiReset)
		}
	}

	return fmt.Sprintf("%s%s%s", ansiBody, renderInline(line), ansiReset)
}

// renderInline handles **bold**, *italic*, `code`, and [links](url).
func renderInline(text string) string {
	var out strings.Builder
	i := 0
	for i < len(text) {
		if i+3 < len(text) && text[i] == '*' && text[i+1] == '*' {
			end := strings.Index(text[i+2:], "**")
			if end > 0 {
				out.WriteString(ansiBold)
				out.WriteString(renderInline(text[i+2 : i+2+end]))
				out.WriteString(ansiReset)
				i += 4 + end
				continue
			}
		}

		if text[i] == '*' && (i == 0 || text[i-1] == ' ') {
			end := strings.IndexByte(text[i+1:], '*')
			if end > 0 {
				out.WriteString(ansiItalic)
				out.WriteString(text[i+1 : i+1+end])
				out.WriteString(ansiReset)
				i += 2 + end
				continue
			}
		}

		if text[i] == '`' {
			end := strings.IndexByte(text[i+1:], '`')
			if end >= 0 {
				out.WriteString(ansiCode)
				out.WriteString(text[i+1 : i+1+end])
				out.WriteString(ansiReset)
				i += 2 + end
				continue
			}
		}

		if text[i] == '[' {
			cb := strings.IndexByte(text[i:], ']')
			if cb > 1 && i+cb+1 < len(text) && text[i+cb+1] == '(' {
				cp := strings.IndexByte(text[i+cb+1:], ')')
				if cp > 0 {
					linkText := text[i+1 : i+cb]
					url := text[i+cb+2 : i+cb+1+cp]
					out.WriteString(ansiUnderline)
					out.WriteString(linkText)
					out.WriteString(ansiReset)
					out.WriteString(dimStyle.Render(" (" + url + ")"))
					i += cb + 1 + cp + 1
					continue
				}
			}
		}

		out.WriteByte(text[i])
		i++
	}
	return out.String()
}

// renderFinal renders a finished assistant answer through glamour,
// falling back to the lightweight renderer if glamour cannot set up.
func renderFinal(content string, width int) string {
	if width <= 0 || width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return RenderLive(content)
	}
	out, err := r.Render(content)
	if err != nil {
		return RenderLive(content)
	}
	return strings.TrimRight(out, "\n")
}

// tailLines keeps the last n lines of a rendered block, for the live
// area while an answer is still streaming.
func tailLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
