package chat

import (
	"context"
	"sync"
	"time"

	"askdesk-cli/internal/api"
	"askdesk-cli/internal/markdown"
)

// Backend is the slice of the AskDesk API the engine consumes.
// *api.Client satisfies it; tests substitute fakes.
type Backend interface {
	ChatStart(message, sessionID string) (*api.ChatStartResponse, error)
	StreamPoll(streamID string, lastLength int) (*api.StreamPollResponse, error)
	Suggestions(lastQuery, lastResponse, screenContext string) ([]api.Suggestion, error)
	GetSession(sessionID string) (*api.GetSessionResponse, error)
	CloseSession(sessionID string) error
}

// Options tune engine behavior. Zero values get defaults.
type Options struct {
	// PollInterval is the gap between polls, measured from the
	// completion of the previous poll.
	PollInterval time.Duration

	// ScreenContext is passed through to the suggestion endpoint.
	ScreenContext string

	// MaxQueryContext and MaxAnswerContext bound the last user/assistant
	// texts sent with a suggestion request.
	MaxQueryContext  int
	MaxAnswerContext int

	// Renderer projects raw assistant text to the host's markup.
	// Defaults to markdown.Render (HTML). The rendering is recomputed
	// from the full text on every delta and never stored.
	Renderer func(raw string) string
}

const (
	defaultPollInterval     = 300 * time.Millisecond
	defaultMaxQueryContext  = 300
	defaultMaxAnswerContext = 600
)

func (o *Options) fillDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.MaxQueryContext <= 0 {
		o.MaxQueryContext = defaultMaxQueryContext
	}
	if o.MaxAnswerContext <= 0 {
		o.MaxAnswerContext = defaultMaxAnswerContext
	}
	if o.Renderer == nil {
		o.Renderer = markdown.Render
	}
}

// streamHandle is the cursor state for one in-flight generation. At most
// one instance is alive per engine; dropping the reference from
// Engine.stream is how a stale poll callback becomes a no-op.
type streamHandle struct {
	id string

	// lastObserved is a non-decreasing watermark of how much assistant
	// text the client has seen.
	lastObserved int

	// msg is the assistant placeholder, materialized on the first
	// delta.
	msg *Message

	// sawText records that at least one delta was shown, which
	// suppresses a trailing error (a partially successful answer must
	// not be lost).
	sawText bool
}

// Engine drives one conversation: it owns the turn state machine, the
// single stream handle slot, and the suggestion set. All state mutation
// happens under mu; network calls never hold it.
type Engine struct {
	mu     sync.Mutex
	client Backend
	sink   Sink
	store  *Store
	opts   Options

	status      TurnStatus
	stream      *streamHandle
	suggestions []api.Suggestion

	// epoch counts conversation resets. A turn snapshots it before the
	// submit call and discards the reply if it changed while the
	// request was on the wire, the same guard the poll loop gets from
	// handle identity.
	epoch uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEngine(client Backend, sink Sink, opts Options) *Engine {
	opts.fillDefaults()
	if sink == nil {
		sink = NopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		client: client,
		sink:   sink,
		store:  NewStore(),
		opts:   opts,
		status: StatusIdle,
		ctx:    ctx,
		cancel: cancel,
	}
	e.store.OnAppend(sink.MessageAppended)
	return e
}

// Store exposes the conversation record for read access.
func (e *Engine) Store() *Store {
	return e.store
}

// Status returns the current turn status.
func (e *Engine) Status() TurnStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Suggestions returns the current suggestion set.
func (e *Engine) Suggestions() []api.Suggestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]api.Suggestion, len(e.suggestions))
	copy(out, e.suggestions)
	return out
}

// Close stops the poll loop and waits for it to exit. The engine must
// not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stream = nil
	e.mu.Unlock()
	e.cancel()
	e.wg.Wait()
}

func (e *Engine) setStatusLocked(s TurnStatus) {
	if e.status == s {
		return
	}
	e.status = s
	e.sink.StatusChanged(s)
}

// failTurnLocked is the single error exit: clears the streaming flag,
// releases the stream handle, re-enables input, surfaces the message,
// and kicks a suggestion refresh so the user is not left without next
// steps.
func (e *Engine) failTurnLocked(kind ErrorKind, message string) {
	e.stream = nil
	e.store.SetStreaming(false)
	e.setStatusLocked(StatusErrored)
	e.sink.ErrorSurfaced(kind, message)
	e.refreshSuggestionsAsync()
}
