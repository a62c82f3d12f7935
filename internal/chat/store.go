package chat

import (
	"strings"
	"sync"
)

// Message roles. Assistant content is stored raw; rendering is a
// read-time projection, never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Store is the ordered record of exchanged messages plus the current
// session identifier and streaming flag. It is the single source of
// truth the other engine components read and write.
//
// Messages are append-only during a turn. The assistant placeholder is
// filled through its *Message reference, never by index lookup, so a
// session reload is always a full replace.
type Store struct {
	mu        sync.Mutex
	messages  []*Message
	sessionID string
	title     string
	streaming bool

	// onAppend is the scroll-to-latest signal to the presentation
	// layer. May be nil.
	onAppend func(*Message)
}

func NewStore() *Store {
	return &Store{}
}

// OnAppend registers the append listener. Must be set before use.
func (s *Store) OnAppend(fn func(*Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAppend = fn
}

// Append adds a message and returns its reference. An assistant message
// with empty content is the "assistant is typing" placeholder the
// poller later fills.
func (s *Store) Append(role, content string) *Message {
	s.mu.Lock()
	msg := &Message{Role: role, Content: content}
	s.messages = append(s.messages, msg)
	fn := s.onAppend
	s.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
	return msg
}

// SetContent updates a message through its reference.
func (s *Store) SetContent(msg *Message, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.Content = content
}

// Messages returns a snapshot of the current message list.
func (s *Store) Messages() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ReplaceAll swaps the entire message list, for session reload.
func (s *Store) ReplaceAll(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make([]*Message, 0, len(messages))
	for _, m := range messages {
		msg := m
		s.messages = append(s.messages, &msg)
	}
}

// Reset clears messages, session id, and title for a new chat.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.sessionID = ""
	s.title = ""
	s.streaming = false
}

func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// SetSessionID adopts a backend-assigned session id. The id stays
// stable until Reset.
func (s *Store) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

func (s *Store) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

func (s *Store) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

func (s *Store) SetStreaming(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = v
}

// LastUser returns the most recent user message content, scanning from
// the end.
func (s *Store) LastUser() string {
	return s.lastByRole(RoleUser)
}

// LastAssistant returns the most recent non-empty assistant message
// content, scanning from the end.
func (s *Store) LastAssistant() string {
	return s.lastByRole(RoleAssistant)
}

func (s *Store) lastByRole(role string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Role == role && strings.TrimSpace(m.Content) != "" {
			return m.Content
		}
	}
	return ""
}
