package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"askdesk-cli/internal/api"
	"askdesk-cli/internal/chat"
	"askdesk-cli/internal/display"
)

// ─── Async command messages ─────────────────────────────────────────────────

type sessionsLoadedMsg struct {
	sessions []api.SessionInfo
	err      error
}

type statusLoadedMsg struct {
	status *api.ChatStatusResponse
	err    error
}

type sessionResumedMsg struct {
	sessionID string
	err       error
}

// ─── Async commands ─────────────────────────────────────────────────────────

func listSessionsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		sessions, err := client.ListSessions(10)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func chatStatusCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.ChatStatus()
		return statusLoadedMsg{status: status, err: err}
	}
}

func resumeSessionCmd(eng *chat.Engine, sessionID string) tea.Cmd {
	return func() tea.Msg {
		err := eng.LoadSession(sessionID)
		return sessionResumedMsg{sessionID: sessionID, err: err}
	}
}

func refreshSuggestionsCmd(eng *chat.Engine) tea.Cmd {
	return func() tea.Msg {
		eng.RefreshSuggestions()
		return nil
	}
}

// ─── Result handlers ────────────────────────────────────────────────────────

func (m model) handleSessionsLoaded(msg sessionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ Could not load sessions: " + msg.err.Error()))
	}
	if len(msg.sessions) == 0 {
		return m, tea.Println(dimStyle.Render("  No sessions yet."))
	}
	return m, tea.Println(display.FormatSessionTable(msg.sessions))
}

func (m model) handleStatusLoaded(msg statusLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ Could not load status: " + msg.err.Error()))
	}

	var b strings.Builder
	b.WriteString("\n")
	if msg.status.FullName != "" {
		b.WriteString(fmt.Sprintf("  Account:    %s\n", msg.status.FullName))
	}
	enabled := "disabled"
	if msg.status.Enabled {
		enabled = "enabled"
	}
	b.WriteString(fmt.Sprintf("  Assistant:  %s\n", enabled))
	if msg.status.DailyLimit > 0 {
		b.WriteString(fmt.Sprintf("  Usage:      %d of %d questions today (%d left)\n",
			msg.status.DailyUsed, msg.status.DailyLimit, msg.status.DailyRemaining))
	}
	if msg.status.ActiveSessionID != "" {
		b.WriteString(fmt.Sprintf("  Session:    %s\n", msg.status.ActiveSessionID))
	}
	return m, tea.Println(b.String())
}

func (m model) handleSessionResumed(msg sessionResumedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Stale persisted session ids are expected; fall back quietly.
		if m.uiState.SessionID == msg.sessionID {
			m.uiState.SessionID = ""
			_ = m.uiState.Save()
			return m, refreshSuggestionsCmd(m.eng)
		}
		return m, tea.Println(errorMsgStyle.Render("  ✗ Could not resume session: " + msg.err.Error()))
	}

	m.uiState.SessionID = msg.sessionID
	_ = m.uiState.Save()
	m.sessionTitle = m.eng.Store().Title()

	var cmds []tea.Cmd
	title := m.sessionTitle
	if title == "" {
		title = msg.sessionID
	}
	cmds = append(cmds, tea.Println(dimStyle.Render("  Resumed: "+title)))
	for _, message := range m.eng.Store().Messages() {
		switch message.Role {
		case chat.RoleUser:
			cmds = append(cmds, tea.Println(userPromptStyle.Render("❯ ")+message.Content))
		case chat.RoleAssistant:
			cmds = append(cmds, tea.Println(renderFinal(message.Content, m.width)))
		}
	}
	return m, tea.Sequence(cmds...)
}
