package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"askdesk-cli/internal/config"
)

func testClient(serverURL string) *Client {
	return NewClient(&config.Config{Server: serverURL, Token: "test-token"})
}

func TestSetHeaders(t *testing.T) {
	t.Run("with token", func(t *testing.T) {
		c := &Client{token: "my-api-token"}
		req, _ := http.NewRequest("POST", "http://example.com", nil)
		c.setHeaders(req)

		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if got := req.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer my-api-token" {
			t.Errorf("Authorization = %q, want Bearer token", got)
		}
		if got := req.Header.Get("X-Request-ID"); got == "" {
			t.Error("X-Request-ID missing")
		}
	})

	t.Run("without token", func(t *testing.T) {
		c := &Client{}
		req, _ := http.NewRequest("GET", "http://example.com", nil)
		c.setHeaders(req)
		if got := req.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want unset", got)
		}
	})
}

func TestChatStart(t *testing.T) {
	var gotBody ChatStartRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/method/askdesk.api.chat_start" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("method = %q, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		fmt.Fprint(w, `{"message": {"stream_id": "s-1", "session_id": "sess-1"}}`)
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).ChatStart("how are sales", "sess-0")
	if err != nil {
		t.Fatalf("ChatStart() error = %v", err)
	}
	if resp.StreamID != "s-1" || resp.SessionID != "sess-1" {
		t.Errorf("ChatStart() = %+v", resp)
	}
	if gotBody.Message != "how are sales" || gotBody.SessionID != "sess-0" {
		t.Errorf("request body = %+v", gotBody)
	}
}

// Replies arrive either wrapped in the {"message": ...} envelope or
// bare; both must parse to the same struct.
func TestEnvelopeUnwrap(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"message": {"stream_id": "s-9"}}`},
		{"bare", `{"stream_id": "s-9"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			resp, err := testClient(srv.URL).ChatStart("q", "")
			if err != nil {
				t.Fatalf("ChatStart() error = %v", err)
			}
			if resp.StreamID != "s-9" {
				t.Errorf("StreamID = %q, want s-9", resp.StreamID)
			}
		})
	}
}

func TestStreamPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/method/askdesk.api.stream_poll" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("stream_id") != "s-1" {
			t.Errorf("stream_id = %q", q.Get("stream_id"))
		}
		if q.Get("last_length") != "42" {
			t.Errorf("last_length = %q, want 42", q.Get("last_length"))
		}
		fmt.Fprint(w, `{"message": {"status": "streaming", "text": "full text so far", "delta": "so far", "text_length": 16, "tool_status": "Running query"}}`)
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).StreamPoll("s-1", 42)
	if err != nil {
		t.Fatalf("StreamPoll() error = %v", err)
	}
	if resp.Text != "full text so far" || resp.Delta != "so far" || resp.TextLength != 16 {
		t.Errorf("StreamPoll() = %+v", resp)
	}
	if resp.Done {
		t.Error("Done = true, want false")
	}
	if resp.ToolStatus != "Running query" {
		t.Errorf("ToolStatus = %q", resp.ToolStatus)
	}
}

func TestSuggestions(t *testing.T) {
	var gotBody SuggestionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		fmt.Fprint(w, `{"message": {"suggestions": [{"label": "Break down by region", "query": "break down by region"}]}}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Suggestions("last q", "last a", "dashboard")
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}
	if len(got) != 1 || got[0].Label != "Break down by region" {
		t.Errorf("Suggestions() = %+v", got)
	}
	if gotBody.LastQuery != "last q" || gotBody.LastResponse != "last a" || gotBody.ScreenContext != "dashboard" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("session_id"); got != "sess-5" {
			t.Errorf("session_id = %q", got)
		}
		fmt.Fprint(w, `{"message": {"session_id": "sess-5", "title": "Q3 numbers", "messages": [{"role": "user", "content": "q"}, {"role": "assistant", "content": "a"}]}}`)
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).GetSession("sess-5")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if resp.Title != "Q3 numbers" || len(resp.Messages) != 2 {
		t.Errorf("GetSession() = %+v", resp)
	}
}

func TestListSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		fmt.Fprint(w, `{"message": {"sessions": [{"session_id": "a", "title": "First", "status": "Active", "message_count": 4}]}}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ListSessions(5)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "First" || got[0].MessageCount != 4 {
		t.Errorf("ListSessions() = %+v", got)
	}
}

func TestChatStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": {"enabled": true, "daily_limit": 50, "daily_used": 12, "daily_remaining": 38, "active_session_id": "sess-1"}}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).ChatStatus()
	if err != nil {
		t.Fatalf("ChatStatus() error = %v", err)
	}
	if !got.Enabled || got.DailyRemaining != 38 || got.ActiveSessionID != "sess-1" {
		t.Errorf("ChatStatus() = %+v", got)
	}
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, &body)
			if body["usr"] != "user@test.com" || body["pwd"] != "secret" {
				t.Errorf("credentials = %+v", body)
			}
			fmt.Fprint(w, `{"message": {"token": "tok-1", "full_name": "Test User"}}`)
		}))
		defer srv.Close()

		resp, err := NewClientWithServer(srv.URL).Login("user@test.com", "secret")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.Token != "tok-1" {
			t.Errorf("Token = %q", resp.Token)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"message": {"error": "invalid credentials"}}`)
		}))
		defer srv.Close()

		if _, err := NewClientWithServer(srv.URL).Login("u", "p"); err == nil {
			t.Error("Login() = nil error, want rejection")
		}
	})
}

func TestHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).ChatStart("q", ""); err == nil {
		t.Error("ChatStart() on 403 = nil error, want failure")
	}
}

func TestMalformedResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).ChatStart("q", ""); err == nil {
		t.Error("ChatStart() on garbage body = nil error, want parse failure")
	}
}
