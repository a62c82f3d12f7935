package chat

import "errors"

// Send rejections. Both are no-ops from the store's perspective.
var (
	ErrEmptyMessage   = errors.New("chat: empty message")
	ErrTurnInProgress = errors.New("chat: a turn is already in progress")
)

// ErrorKind classifies turn-terminal failures for the presentation
// layer. Clarification is not an error and has no kind.
type ErrorKind int

const (
	// ErrorTransport covers network failure and malformed responses on
	// any backend call. Never retried automatically.
	ErrorTransport ErrorKind = iota
	// ErrorBackend is a rejection with an error string, surfaced
	// verbatim.
	ErrorBackend
	// ErrorBudget is the non-retryable monthly budget stop.
	ErrorBudget
	// ErrorStreamLost is a mid-stream failure after streaming began.
	ErrorStreamLost
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorTransport:
		return "transport"
	case ErrorBackend:
		return "backend"
	case ErrorBudget:
		return "budget"
	case ErrorStreamLost:
		return "stream_lost"
	default:
		return "unknown"
	}
}

// User-facing fallback messages.
const (
	msgGenericFailure = "Something went wrong. Please try again."
	msgConnectionLost = "Connection lost. Please try again."
	msgBudgetReached  = "The AI budget has been reached. Contact your administrator."
)
