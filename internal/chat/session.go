package chat

import "fmt"

// CancelTurn abandons the in-flight turn without touching the
// conversation record: partial assistant text already shown stays, only
// the pending submit or stream is invalidated.
func (e *Engine) CancelTurn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusIdle || e.status == StatusErrored {
		return
	}
	e.epoch++
	e.stream = nil
	e.store.SetStreaming(false)
	e.sink.ToolStatus("")
	e.setStatusLocked(StatusIdle)
}

// NewChat abandons the current session: the stream handle is dropped
// and the epoch bumped first so any in-flight callback becomes a no-op,
// then the store is cleared. The server-side close is best effort.
func (e *Engine) NewChat() {
	e.mu.Lock()
	e.epoch++
	e.stream = nil
	sessionID := e.store.SessionID()
	e.store.Reset()
	e.replaceSuggestionsLocked(nil)
	e.setStatusLocked(StatusIdle)
	e.mu.Unlock()

	if sessionID != "" {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			_ = e.client.CloseSession(sessionID)
		}()
	}
	e.refreshSuggestionsAsync()
}

// LoadSession replaces the conversation with a stored session's
// messages. Like NewChat, it invalidates the stream handle before
// touching the store.
func (e *Engine) LoadSession(sessionID string) error {
	resp, err := e.client.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	e.mu.Lock()
	e.epoch++
	e.stream = nil
	messages := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	e.store.ReplaceAll(messages)
	e.store.SetSessionID(sessionID)
	if resp.Title != "" {
		e.store.SetTitle(resp.Title)
	}
	e.store.SetStreaming(false)
	e.setStatusLocked(StatusIdle)
	e.mu.Unlock()

	e.refreshSuggestionsAsync()
	return nil
}
