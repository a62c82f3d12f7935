package chat

import "strings"

// Send submits one user utterance and classifies the backend's
// immediate response: error surfaced, clarification shown, or streaming
// started. Exactly one of those happens per accepted call.
//
// Empty input and input while a turn is in flight are rejected without
// side effects; the Idle/Errored gate is the single guard against
// double submission.
func (e *Engine) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	e.mu.Lock()
	if e.status != StatusIdle && e.status != StatusErrored {
		e.mu.Unlock()
		return ErrTurnInProgress
	}
	e.setStatusLocked(StatusSending)
	e.store.Append(RoleUser, text)
	e.replaceSuggestionsLocked(nil)
	sessionID := e.store.SessionID()
	epoch := e.epoch
	e.mu.Unlock()

	resp, err := e.client.ChatStart(text, sessionID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != epoch {
		// The conversation was reset, reloaded, or cancelled while the
		// request was on the wire; the reply belongs to an abandoned
		// turn and must not touch the fresh state.
		return nil
	}

	switch {
	case err != nil, resp == nil:
		// Transport failure and a malformed body end the turn the same
		// way.
		e.failTurnLocked(ErrorTransport, msgGenericFailure)

	case resp.NeedsClarification:
		if resp.SessionID != "" {
			e.store.SetSessionID(resp.SessionID)
		}
		question := resp.ClarificationQuestion
		if question == "" {
			question = "Could you clarify your question?"
		}
		e.setStatusLocked(StatusAwaitingClarification)
		msg := e.store.Append(RoleAssistant, question)
		e.sink.AssistantUpdated(msg, e.opts.Renderer(question))
		// Options become selectable chips; picking one re-enters Send
		// with the option text, it does not trigger a suggestion fetch.
		e.replaceSuggestionsLocked(clarificationChips(resp.ClarificationOptions))
		e.setStatusLocked(StatusIdle)

	case resp.BudgetExceeded:
		message := resp.Error
		if message == "" {
			message = msgBudgetReached
		}
		e.failTurnLocked(ErrorBudget, message)

	case resp.Error != "":
		e.failTurnLocked(ErrorBackend, resp.Error)

	case resp.StreamID == "":
		// Structured response with no stream and no recognized outcome.
		e.failTurnLocked(ErrorTransport, msgGenericFailure)

	default:
		if resp.SessionID != "" {
			e.store.SetSessionID(resp.SessionID)
		}
		e.store.SetStreaming(true)
		h := &streamHandle{id: resp.StreamID}
		e.stream = h
		e.setStatusLocked(StatusStreaming)
		e.wg.Add(1)
		go e.pollLoop(h)
	}
	return nil
}
