// mdpreview renders markdown through both renderers side by side, for
// eyeballing changes to the render pipeline without a live backend.
//
// Usage: go run ./cmd/mdpreview [file.md]
package main

import (
	"fmt"
	"os"

	"askdesk-cli/internal/markdown"
	"askdesk-cli/internal/tui"
)

const sample = `## Sales Overview

Today's sales: **1,240 units** across *three* regions.

| Region | Units | Change |
|--------|-------|--------|
| North  | 540   | +12%   |
| South  | 410   | -3%    |
| West   | 290   | +8%    |

Top performers:
1. Widget Pro
2. Widget Mini

> Inventory for Widget Pro is running low.

Details in the [weekly report](https://example.com/report).

` + "```sql\nSELECT region, SUM(units) FROM sales GROUP BY region;\n```"

func main() {
	input := sample
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "mdpreview: %v\n", err)
			os.Exit(1)
		}
		input = string(data)
	}

	fmt.Println("═══ Terminal renderer ═══")
	fmt.Println()
	fmt.Println(tui.RenderLive(input))

	fmt.Println("═══ HTML renderer ═══")
	fmt.Println()
	fmt.Println(markdown.Render(input))
}
