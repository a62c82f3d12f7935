package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"askdesk-cli/internal/config"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Server, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		token: cfg.Token,
	}
}

// NewClientWithServer builds an unauthenticated client, used during
// login before a token exists.
func NewClientWithServer(server string) *Client {
	return &Client{
		baseURL: strings.TrimRight(server, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// --- Chat Start ---

type ChatStartRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatStartResponse is the immediate reply to a submitted utterance.
// Exactly one outcome applies: a stream to poll, a clarification
// request, a budget stop, or an error.
type ChatStartResponse struct {
	StreamID              string   `json:"stream_id,omitempty"`
	SessionID             string   `json:"session_id,omitempty"`
	NeedsClarification    bool     `json:"needs_clarification,omitempty"`
	ClarificationQuestion string   `json:"clarification_question,omitempty"`
	ClarificationOptions  []string `json:"clarification_options,omitempty"`
	BudgetExceeded        bool     `json:"budget_exceeded,omitempty"`
	Error                 string   `json:"error,omitempty"`
}

func (c *Client) ChatStart(message, sessionID string) (*ChatStartResponse, error) {
	reqBody := ChatStartRequest{Message: message, SessionID: sessionID}
	var resp ChatStartResponse
	if err := c.doJSON("POST", "/api/method/askdesk.api.chat_start", reqBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Stream Poll ---

// StreamPollResponse reports progress for an in-flight generation. Text
// is always the full accumulated string and Delta the unseen suffix
// since last_length (empty means no new text this poll). Fields are not
// mutually exclusive: one poll may carry a tool status, new text, and
// the done flag together.
type StreamPollResponse struct {
	Status       string `json:"status,omitempty"`
	Text         string `json:"text,omitempty"`
	Delta        string `json:"delta,omitempty"`
	TextLength   int    `json:"text_length,omitempty"`
	ToolStatus   string `json:"tool_status,omitempty"`
	Done         bool   `json:"done,omitempty"`
	Error        string `json:"error,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	SessionTitle string `json:"session_title,omitempty"`
	ToolCalls    int    `json:"tool_calls,omitempty"`
	MessageCount int    `json:"message_count,omitempty"`
	DailyLeft    int    `json:"daily_remaining,omitempty"`
}

func (c *Client) StreamPoll(streamID string, lastLength int) (*StreamPollResponse, error) {
	params := url.Values{}
	params.Set("stream_id", streamID)
	params.Set("last_length", strconv.Itoa(lastLength))
	var resp StreamPollResponse
	if err := c.doJSON("GET", "/api/method/askdesk.api.stream_poll?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Suggestions ---

type Suggestion struct {
	Label string `json:"label"`
	Query string `json:"query,omitempty"`
}

type SuggestionsRequest struct {
	LastQuery     string `json:"last_query,omitempty"`
	LastResponse  string `json:"last_response,omitempty"`
	ScreenContext string `json:"screen_context,omitempty"`
}

type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

func (c *Client) Suggestions(lastQuery, lastResponse, screenContext string) ([]Suggestion, error) {
	reqBody := SuggestionsRequest{
		LastQuery:     lastQuery,
		LastResponse:  lastResponse,
		ScreenContext: screenContext,
	}
	var resp SuggestionsResponse
	if err := c.doJSON("POST", "/api/method/askdesk.api.get_suggestions", reqBody, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// --- Sessions ---

type SessionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GetSessionResponse struct {
	SessionID string           `json:"session_id,omitempty"`
	Title     string           `json:"title,omitempty"`
	Messages  []SessionMessage `json:"messages,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func (c *Client) GetSession(sessionID string) (*GetSessionResponse, error) {
	params := url.Values{}
	params.Set("session_id", sessionID)
	var resp GetSessionResponse
	if err := c.doJSON("GET", "/api/method/askdesk.api.get_session?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}

type SessionInfo struct {
	SessionID    string `json:"session_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	MessageCount int    `json:"message_count"`
	LastUpdate   string `json:"last_update"`
}

type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions,omitempty"`
}

func (c *Client) ListSessions(limit int) ([]SessionInfo, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var resp ListSessionsResponse
	if err := c.doJSON("GET", "/api/method/askdesk.api.list_sessions?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *Client) CloseSession(sessionID string) error {
	reqBody := map[string]string{"session_id": sessionID}
	return c.doJSON("POST", "/api/method/askdesk.api.close_session", reqBody, nil)
}

// --- Login ---

type LoginResponse struct {
	Token    string `json:"token,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (c *Client) Login(username, password string) (*LoginResponse, error) {
	reqBody := map[string]string{"usr": username, "pwd": password}
	var resp LoginResponse
	if err := c.doJSON("POST", "/api/method/askdesk.api.login", reqBody, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("login failed: %s", resp.Error)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login failed: no token in response")
	}
	return &resp, nil
}

// --- Status ---

// ChatStatusResponse reports whether the assistant is enabled for the
// current user, the daily request budget, and the most recent active
// session (for resumption across restarts).
type ChatStatusResponse struct {
	Enabled         bool   `json:"enabled"`
	DailyLimit      int    `json:"daily_limit,omitempty"`
	DailyUsed       int    `json:"daily_used,omitempty"`
	DailyRemaining  int    `json:"daily_remaining,omitempty"`
	User            string `json:"user,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	ActiveSessionID string `json:"active_session_id,omitempty"`
}

func (c *Client) ChatStatus() (*ChatStatusResponse, error) {
	var resp ChatStatusResponse
	if err := c.doJSON("GET", "/api/method/askdesk.api.chat_status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Generic JSON helper ---

func (c *Client) doJSON(method, path string, reqBody interface{}, result interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil && method != "GET" {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		// Frappe-style backends wrap whitelisted replies in
		// {"message": ...}; accept both the wrapped and bare shapes.
		var envelope struct {
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil && len(envelope.Message) > 0 {
			respBody = envelope.Message
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
