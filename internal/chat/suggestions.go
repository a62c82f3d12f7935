package chat

import (
	"unicode/utf8"

	"askdesk-cli/internal/api"
)

// Suggestions are an enhancement: fetch failures are silent, and a
// fetch never blocks or errors the turn that triggered it.

// RefreshSuggestions fetches contextual follow-up prompts from the
// latest user/assistant pair and replaces the current set atomically.
func (e *Engine) RefreshSuggestions() {
	lastQuery := truncate(e.store.LastUser(), e.opts.MaxQueryContext)
	lastResponse := truncate(e.store.LastAssistant(), e.opts.MaxAnswerContext)

	suggestions, err := e.client.Suggestions(lastQuery, lastResponse, e.opts.ScreenContext)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceSuggestionsLocked(suggestions)
}

func (e *Engine) refreshSuggestionsAsync() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.RefreshSuggestions()
	}()
}

// replaceSuggestionsLocked swaps the whole set; there is no partial
// replace.
func (e *Engine) replaceSuggestionsLocked(suggestions []api.Suggestion) {
	e.suggestions = suggestions
	e.sink.SuggestionsReplaced(suggestions)
}

// clarificationChips rewraps backend clarification options in the chip
// mechanism used for suggestions.
func clarificationChips(options []string) []api.Suggestion {
	if len(options) == 0 {
		return nil
	}
	chips := make([]api.Suggestion, 0, len(options))
	for _, opt := range options {
		chips = append(chips, api.Suggestion{Label: opt, Query: opt})
	}
	return chips
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
