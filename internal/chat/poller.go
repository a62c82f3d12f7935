package chat

import (
	"time"

	"askdesk-cli/internal/api"
)

// pollLoop drives one stream to completion. Polls are strictly
// sequential: the next request is scheduled only after the previous
// response has been fully processed, so the watermark only ever
// advances and no result is applied out of order.
//
// The handle identity check after every suspension point is the
// cooperative cancellation mechanism: "new chat" or a session reload
// drops Engine.stream, and the stale callback then mutates nothing.
func (e *Engine) pollLoop(h *streamHandle) {
	defer e.wg.Done()

	for {
		e.mu.Lock()
		if e.stream != h {
			e.mu.Unlock()
			return
		}
		streamID, last := h.id, h.lastObserved
		e.mu.Unlock()

		resp, err := e.client.StreamPoll(streamID, last)

		e.mu.Lock()
		if e.stream != h {
			e.mu.Unlock()
			return
		}

		if err != nil || resp == nil {
			e.failTurnLocked(ErrorStreamLost, msgConnectionLost)
			e.mu.Unlock()
			return
		}

		// Response fields are inspected independently; one poll can
		// carry a tool status, new text, and the done flag together.
		if resp.ToolStatus != "" && !resp.Done {
			e.sink.ToolStatus(resp.ToolStatus)
		}

		if resp.Delta != "" {
			e.sink.ToolStatus("")
			if h.msg == nil {
				h.msg = e.store.Append(RoleAssistant, "")
			}
			h.sawText = true
			// Always re-render the full accumulated text: tables, code
			// fences, and bold spans can straddle delta boundaries.
			e.store.SetContent(h.msg, resp.Text)
			e.sink.AssistantUpdated(h.msg, e.opts.Renderer(resp.Text))
			if resp.TextLength > h.lastObserved {
				h.lastObserved = resp.TextLength
			}
		}

		if resp.Done {
			e.finishStreamLocked(h, resp)
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		select {
		case <-e.ctx.Done():
			return
		case <-time.After(e.opts.PollInterval):
		}
	}
}

// finishStreamLocked applies the terminal poll and releases the handle.
func (e *Engine) finishStreamLocked(h *streamHandle, resp *api.StreamPollResponse) {
	e.sink.ToolStatus("")
	e.setStatusLocked(StatusFinalizing)

	switch {
	case resp.Error != "" && !h.sawText:
		// No streamed text was shown, so the error becomes the
		// assistant's content.
		msg := e.store.Append(RoleAssistant, resp.Error)
		e.sink.AssistantUpdated(msg, e.opts.Renderer(resp.Error))

	case resp.Error != "" && h.sawText:
		// Partial text wins; a partially successful answer is never
		// replaced by the error.

	case h.msg == nil && resp.Text != "":
		// No deltas ever arrived but a final text exists.
		msg := e.store.Append(RoleAssistant, resp.Text)
		e.sink.AssistantUpdated(msg, e.opts.Renderer(resp.Text))
	}

	if resp.SessionTitle != "" {
		e.store.SetTitle(resp.SessionTitle)
		e.sink.SessionTitled(resp.SessionTitle)
	}

	e.stream = nil
	e.store.SetStreaming(false)
	e.setStatusLocked(StatusIdle)
	e.refreshSuggestionsAsync()
}
