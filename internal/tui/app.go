package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive chat. The program runs in inline mode so
// finished answers land in the terminal scrollback; /fullscreen flips
// to the alt screen.
func Run(version, profile string) error {
	m := initialModel(version, profile)

	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("ui error: %w", err)
	}

	if fm, ok := final.(model); ok && fm.eng != nil {
		fm.eng.Close()
	}
	return nil
}
