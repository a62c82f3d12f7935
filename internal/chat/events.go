package chat

import "askdesk-cli/internal/api"

// Sink receives engine events. Implementations must be fast and must
// not call back into the engine from within a callback; the TUI adapter
// forwards each event onto a channel.
type Sink interface {
	// MessageAppended fires for every store append. Doubles as the
	// scroll-to-latest signal.
	MessageAppended(msg *Message)

	// AssistantUpdated fires each time new streamed text arrives. The
	// message holds the full raw text; rendered is its markup
	// projection at this instant.
	AssistantUpdated(msg *Message, rendered string)

	// ToolStatus carries a transient "working" indicator. An empty
	// string clears it. A new status replaces the previous one.
	ToolStatus(status string)

	StatusChanged(status TurnStatus)

	// SuggestionsReplaced swaps the whole suggestion set. Nil clears.
	SuggestionsReplaced(suggestions []api.Suggestion)

	// ErrorSurfaced reports a turn-terminal failure.
	ErrorSurfaced(kind ErrorKind, message string)

	// SessionTitled reports a backend-assigned session title.
	SessionTitled(title string)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) MessageAppended(*Message)                 {}
func (NopSink) AssistantUpdated(*Message, string)        {}
func (NopSink) ToolStatus(string)                        {}
func (NopSink) StatusChanged(TurnStatus)                 {}
func (NopSink) SuggestionsReplaced([]api.Suggestion)     {}
func (NopSink) ErrorSurfaced(ErrorKind, string)          {}
func (NopSink) SessionTitled(string)                     {}
