package chat

// TurnStatus is the turn state machine. A new turn may only begin from
// Idle or Errored.
type TurnStatus int

const (
	StatusIdle TurnStatus = iota
	StatusSending
	StatusAwaitingClarification
	StatusStreaming
	StatusFinalizing
	StatusErrored
)

func (s TurnStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSending:
		return "sending"
	case StatusAwaitingClarification:
		return "awaiting_clarification"
	case StatusStreaming:
		return "streaming"
	case StatusFinalizing:
		return "finalizing"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}
