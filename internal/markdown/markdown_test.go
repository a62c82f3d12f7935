package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "whitespace only",
			raw:  "  \n\t ",
			want: "",
		},
		{
			name: "plain paragraph",
			raw:  "hello world",
			want: "<p>hello world</p>",
		},
		{
			name: "soft break inside paragraph",
			raw:  "line one\nline two",
			want: "<p>line one<br>line two</p>",
		},
		{
			name: "paragraph break",
			raw:  "first\n\nsecond",
			want: "<p>first</p>\n<p>second</p>",
		},
		{
			name: "bold",
			raw:  "sales are **up**",
			want: "<p>sales are <strong>up</strong></p>",
		},
		{
			name: "italic",
			raw:  "a *subtle* change",
			want: "<p>a <em>subtle</em> change</p>",
		},
		{
			name: "bold not mistaken for italic",
			raw:  "**bold** only",
			want: "<p><strong>bold</strong> only</p>",
		},
		{
			name: "inline code",
			raw:  "run `SELECT 1` now",
			want: "<p>run <code>SELECT 1</code> now</p>",
		},
		{
			name: "bold and code together",
			raw:  "**bold** and `code`",
			want: "<p><strong>bold</strong> and <code>code</code></p>",
		},
		{
			name: "markers inside code stay literal",
			raw:  "`**not bold**`",
			want: "<p><code>**not bold**</code></p>",
		},
		{
			name: "h2 heading",
			raw:  "## Overview",
			want: "<h2>Overview</h2>",
		},
		{
			name: "h3 heading",
			raw:  "### Details",
			want: "<h3>Details</h3>",
		},
		{
			name: "link",
			raw:  "see [the report](https://example.com/r)",
			want: `<p>see <a href="https://example.com/r" target="_blank" rel="noopener">the report</a></p>`,
		},
		{
			name: "horizontal rule",
			raw:  "before\n\n---\n\nafter",
			want: "<p>before</p>\n<hr>\n<p>after</p>",
		},
		{
			name: "blockquote",
			raw:  "> stock is low",
			want: "<blockquote>stock is low</blockquote>",
		},
		{
			name: "adjacent quote lines merge",
			raw:  "> first\n> second",
			want: "<blockquote>first<br>second</blockquote>",
		},
		{
			name: "html in input is escaped",
			raw:  "a <script>alert(1)</script> tag",
			want: "<p>a &lt;script&gt;alert(1)&lt;/script&gt; tag</p>",
		},
		{
			name: "unordered list",
			raw:  "- one\n- two",
			want: "<ul><li>one</li><li>two</li></ul>",
		},
		{
			name: "bullet list variant",
			raw:  "• one\n• two",
			want: "<ul><li>one</li><li>two</li></ul>",
		},
		{
			name: "ordered list",
			raw:  "1. first\n2. second",
			want: "<ol><li>first</li><li>second</li></ol>",
		},
		{
			name: "single dash is still a list",
			raw:  "- only item",
			want: "<ul><li>only item</li></ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.raw); got != tt.want {
				t.Errorf("Render(%q) =\n  %q\nwant:\n  %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRenderFencedCode(t *testing.T) {
	t.Run("terminated fence", func(t *testing.T) {
		raw := "```sql\nSELECT *\nFROM sales\n```"
		want := `<pre><code class="language-sql">SELECT *` + "\nFROM sales</code></pre>"
		if got := Render(raw); got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("unterminated fence renders best effort", func(t *testing.T) {
		raw := "intro\n```python\nprint('hi')"
		got := Render(raw)
		if !strings.Contains(got, `<pre><code class="language-python">print(&#39;hi&#39;)</code></pre>`) {
			t.Errorf("unterminated fence not rendered as code: %q", got)
		}
	})

	t.Run("emphasis inside code untouched", func(t *testing.T) {
		raw := "```\n**raw** stays\n```"
		got := Render(raw)
		if strings.Contains(got, "<strong>") {
			t.Errorf("emphasis applied inside code block: %q", got)
		}
	})
}

func TestRenderTables(t *testing.T) {
	t.Run("table with separator row", func(t *testing.T) {
		raw := "| Region | Units |\n|--------|-------|\n| North  | 540   |"
		got := Render(raw)
		want := "<table><tr><th>Region</th><th>Units</th></tr><tr><td>North</td><td>540</td></tr></table>"
		if got != want {
			t.Errorf("Render() =\n  %q\nwant:\n  %q", got, want)
		}
	})

	t.Run("emphasis inside cells", func(t *testing.T) {
		raw := "| a | b |\n| **x** | y |"
		got := Render(raw)
		if !strings.Contains(got, "<td><strong>x</strong></td>") {
			t.Errorf("cell emphasis missing: %q", got)
		}
	})

	t.Run("single pipe row is not a table", func(t *testing.T) {
		raw := "| lonely | row |"
		got := Render(raw)
		if strings.Contains(got, "<table>") {
			t.Errorf("single row rendered as table: %q", got)
		}
	})
}

// Rendering a growing prefix of streamed text must reproduce earlier
// structure unchanged: the renderer is pure and derives everything from
// the full input.
func TestRenderPureOverGrowingInput(t *testing.T) {
	full := "## Sales\n\nToday's total: **1,240 units**.\n\n| Region | Units |\n|---|---|\n| North | 540 |\n\n- restock Widget Pro\n- review pricing\n\n```sql\nSELECT 1;\n```"

	final := Render(full)

	// Every prefix a stream could pause at must render without
	// corrupting output, and re-rendering the same input is stable.
	for cut := 1; cut <= len(full); cut++ {
		prefix := full[:cut]
		first := Render(prefix)
		if second := Render(prefix); second != first {
			t.Fatalf("Render not deterministic at prefix %d", cut)
		}
	}

	if got := Render(full); got != final {
		t.Errorf("repeat render of full input differs")
	}
	for _, want := range []string{"<h2>Sales</h2>", "<strong>1,240 units</strong>", "<table>", "<ul>", "language-sql"} {
		if !strings.Contains(final, want) {
			t.Errorf("final rendering missing %q:\n%s", want, final)
		}
	}

	// Structure completed earlier in the stream survives later growth:
	// the markup a mid-stream render produced for the heading, the bold
	// span, and the finished table row appears verbatim in the final
	// rendering too.
	cut := strings.Index(full, "\n\n- restock")
	if cut < 0 {
		t.Fatal("list marker not found in input")
	}
	mid := Render(full[:cut])
	for _, want := range []string{
		"<h2>Sales</h2>",
		"<strong>1,240 units</strong>",
		"<tr><td>North</td><td>540</td></tr>",
	} {
		if !strings.Contains(mid, want) {
			t.Errorf("mid-stream rendering missing %q:\n%s", want, mid)
		}
		if !strings.Contains(final, want) {
			t.Errorf("completed structure %q lost after input grew:\n%s", want, final)
		}
	}
}

func TestRenderStripsPlaceholderBytes(t *testing.T) {
	raw := "evil \x001\x01 input"
	got := Render(raw)
	if strings.ContainsAny(got, "\x00\x01") {
		t.Errorf("control bytes leaked: %q", got)
	}
	if got != "<p>evil 1 input</p>" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderUnbalancedMarkers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"dangling bold", "**unfinished"},
		{"dangling backtick", "code ` open"},
		{"dangling bracket", "[no link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.raw)
			if got == "" {
				t.Errorf("Render(%q) = empty, want best-effort output", tt.raw)
			}
			if strings.Contains(got, "<strong>") || strings.Contains(got, "<code>") || strings.Contains(got, "<a ") {
				t.Errorf("unbalanced marker produced markup: %q", got)
			}
		})
	}
}
