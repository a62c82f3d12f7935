package tui

import (
	"askdesk-cli/internal/api"
	"askdesk-cli/internal/chat"

	tea "github.com/charmbracelet/bubbletea"
)

// ─── Messages sent from the engine sink to Bubble Tea ───────────────────────

type messageAppendedMsg struct {
	role    string
	content string
}

type assistantUpdatedMsg struct {
	raw      string
	rendered string
}

type toolStatusMsg struct {
	status string
}

type statusChangedMsg struct {
	status chat.TurnStatus
}

type suggestionsMsg struct {
	suggestions []api.Suggestion
}

type errorMsg struct {
	kind    chat.ErrorKind
	message string
}

type sessionTitledMsg struct {
	title string
}

type sendResultMsg struct {
	err error
}

// ─── Sink adapter ───────────────────────────────────────────────────────────

// channelSink forwards engine events onto a channel the Bubble Tea
// loop drains one message per Update cycle, so all state mutation stays
// on the program goroutine.
type channelSink struct {
	ch chan tea.Msg
}

func newChannelSink() *channelSink {
	return &channelSink{ch: make(chan tea.Msg, 256)}
}

func (s *channelSink) MessageAppended(msg *chat.Message) {
	s.ch <- messageAppendedMsg{role: msg.Role, content: msg.Content}
}

func (s *channelSink) AssistantUpdated(msg *chat.Message, rendered string) {
	s.ch <- assistantUpdatedMsg{raw: msg.Content, rendered: rendered}
}

func (s *channelSink) ToolStatus(status string) {
	s.ch <- toolStatusMsg{status: status}
}

func (s *channelSink) StatusChanged(status chat.TurnStatus) {
	s.ch <- statusChangedMsg{status: status}
}

func (s *channelSink) SuggestionsReplaced(suggestions []api.Suggestion) {
	s.ch <- suggestionsMsg{suggestions: suggestions}
}

func (s *channelSink) ErrorSurfaced(kind chat.ErrorKind, message string) {
	s.ch <- errorMsg{kind: kind, message: message}
}

func (s *channelSink) SessionTitled(title string) {
	s.ch <- sessionTitledMsg{title: title}
}

// waitForEvent reads the next engine event. Update re-arms it after
// each message.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// sendCmd submits an utterance off the program goroutine; the engine's
// gate makes a duplicate submission a harmless no-op.
func sendCmd(eng *chat.Engine, text string) tea.Cmd {
	return func() tea.Msg {
		return sendResultMsg{err: eng.Send(text)}
	}
}
