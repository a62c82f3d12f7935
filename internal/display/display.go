package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"askdesk-cli/internal/api"
)

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
	Gray   = "\033[90m"
)

func Header(text string) {
	fmt.Printf("\n%s%s%s\n", Bold+Cyan, text, Reset)
	fmt.Println(strings.Repeat("─", minInt(len(text)+4, 80)))
}

func Success(text string) {
	fmt.Printf("%s✓%s %s\n", Green, Reset, text)
}

func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s✗%s %s\n", Red, Reset, text)
}

func Warn(text string) {
	fmt.Printf("%s!%s %s\n", Yellow, Reset, text)
}

func Info(label, value string) {
	fmt.Printf("  %s%-20s%s %s\n", Dim, label, Reset, value)
}

// SessionStatusLabel colors a session lifecycle status.
func SessionStatusLabel(status string) string {
	labels := map[string]string{
		"Active": Green + "Active" + Reset,
		"Closed": Gray + "Closed" + Reset,
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return status
}

// SessionTable prints stored sessions, most recent first.
func SessionTable(sessions []api.SessionInfo) {
	fmt.Print(FormatSessionTable(sessions))
}

// FormatSessionTable renders the session list as a table.
func FormatSessionTable(sessions []api.SessionInfo) string {
	if len(sessions) == 0 {
		return "No sessions found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s%-34s %-36s %-8s %s%s\n", Bold, "ID", "TITLE", "MSGS", "UPDATED", Reset)
	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		if len(title) > 34 {
			title = title[:31] + "..."
		}
		fmt.Fprintf(&b, "%-34s %-36s %-8d %s  %s\n",
			s.SessionID, title, s.MessageCount, FormatTime(s.LastUpdate), SessionStatusLabel(s.Status))
	}
	return b.String()
}

func FormatTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return ts
		}
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
