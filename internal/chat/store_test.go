package chat

import "testing"

func TestStoreAppendAndSetContent(t *testing.T) {
	s := NewStore()

	var appended []*Message
	s.OnAppend(func(m *Message) { appended = append(appended, m) })

	s.Append(RoleUser, "question")
	placeholder := s.Append(RoleAssistant, "")

	if len(appended) != 2 {
		t.Fatalf("append listener fired %d times, want 2", len(appended))
	}

	s.SetContent(placeholder, "partial")
	s.SetContent(placeholder, "partial then full")

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("store has %d messages, want 2", len(msgs))
	}
	if msgs[1].Content != "partial then full" {
		t.Errorf("placeholder content = %q, want the latest full text", msgs[1].Content)
	}
	// Updating through the reference fired no extra append events.
	if len(appended) != 2 {
		t.Errorf("append listener fired %d times after updates, want 2", len(appended))
	}
}

func TestStoreLastByRole(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "first question")
	s.Append(RoleAssistant, "first answer")
	s.Append(RoleUser, "second question")
	s.Append(RoleAssistant, "") // typing placeholder, skipped

	if got := s.LastUser(); got != "second question" {
		t.Errorf("LastUser() = %q, want %q", got, "second question")
	}
	if got := s.LastAssistant(); got != "first answer" {
		t.Errorf("LastAssistant() = %q, want %q (empty placeholder skipped)", got, "first answer")
	}

	empty := NewStore()
	if got := empty.LastUser(); got != "" {
		t.Errorf("LastUser() on empty store = %q, want empty", got)
	}
}

func TestStoreReplaceAll(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "old")

	s.ReplaceAll([]Message{
		{Role: RoleUser, Content: "restored question"},
		{Role: RoleAssistant, Content: "restored answer"},
	})

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Content != "restored question" {
		t.Errorf("messages after ReplaceAll = %+v", msgs)
	}
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	s.Append(RoleUser, "q")
	s.SetSessionID("sess-1")
	s.SetTitle("A title")
	s.SetStreaming(true)

	s.Reset()

	if got := s.Messages(); len(got) != 0 {
		t.Errorf("messages after Reset = %d, want 0", len(got))
	}
	if s.SessionID() != "" || s.Title() != "" || s.Streaming() {
		t.Errorf("Reset left state: session=%q title=%q streaming=%v",
			s.SessionID(), s.Title(), s.Streaming())
	}
}

func TestTurnStatusString(t *testing.T) {
	tests := []struct {
		status TurnStatus
		want   string
	}{
		{StatusIdle, "idle"},
		{StatusSending, "sending"},
		{StatusAwaitingClarification, "awaiting_clarification"},
		{StatusStreaming, "streaming"},
		{StatusFinalizing, "finalizing"},
		{StatusErrored, "errored"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("TurnStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
