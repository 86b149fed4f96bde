package utils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatStreamReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/tok-123/stream" {
			t.Errorf("path = %q, want /chat/tok-123/stream", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer token", got)
		}

		var body struct {
			Messages []ChatTurn `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.Messages) != 2 || body.Messages[1].Content != "hi" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}

		io.WriteString(w, `0:"Hello" 1:" there"`)
	}))
	defer srv.Close()

	client := NewAITutorClient(srv.URL, "secret")
	body, err := client.ChatStream(context.Background(), "tok-123", []ChatTurn{
		{Role: "assistant", Content: "earlier reply"},
		{Role: "user", Content: "hi"},
	})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(raw) != `0:"Hello" 1:" there"` {
		t.Errorf("stream body = %q", raw)
	}
}

func TestChatStreamUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
	}))
	defer srv.Close()

	client := NewAITutorClient(srv.URL, "secret")
	_, err := client.ChatStream(context.Background(), "tok-123", []ChatTurn{{Role: "user", Content: "hi"}})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", upstream.StatusCode)
	}
	if upstream.Message != "rate limited" {
		t.Errorf("Message = %q, want %q", upstream.Message, "rate limited")
	}
}

func TestRunWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run/wf-1" {
			t.Errorf("path = %q, want /run/wf-1", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"content":"write a haiku"`) {
			t.Errorf("unexpected request body: %s", raw)
		}
		io.WriteString(w, `{"success": true, "data": {"result": "haiku text"}}`)
	}))
	defer srv.Close()

	client := NewAITutorClient(srv.URL, "secret")
	body, err := client.RunWorkflow(context.Background(), "wf-1", map[string]string{"content": "write a haiku"})
	if err != nil {
		t.Fatalf("RunWorkflow: %v", err)
	}

	var parsed struct {
		Data struct {
			Result string `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if parsed.Data.Result != "haiku text" {
		t.Errorf("result = %q, want %q", parsed.Data.Result, "haiku text")
	}
}

func TestRunWorkflowUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "workflow crashed"})
	}))
	defer srv.Close()

	client := NewAITutorClient(srv.URL, "secret")
	_, err := client.RunWorkflow(context.Background(), "wf-1", map[string]string{"content": "x"})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", upstream.StatusCode)
	}
	if !strings.Contains(upstream.Error(), "workflow crashed") {
		t.Errorf("Error() = %q, want the upstream message included", upstream.Error())
	}
}

func TestIssueChatToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/token" {
			t.Errorf("path = %q, want /chat/token", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["chatbotId"] != "bot-1" || body["sessionId"] == "" {
			t.Errorf("unexpected request body: %v", body)
		}
		io.WriteString(w, `{"token": "chat-token-xyz"}`)
	}))
	defer srv.Close()

	client := NewAITutorClient(srv.URL, "secret")
	raw, err := client.IssueChatToken(context.Background(), "bot-1", NewSessionID())
	if err != nil {
		t.Fatalf("IssueChatToken: %v", err)
	}
	if !strings.Contains(string(raw), "chat-token-xyz") {
		t.Errorf("token response = %s", raw)
	}
}

func TestNewSessionIDFormat(t *testing.T) {
	id := NewSessionID()
	if !strings.HasPrefix(id, "user_session_") {
		t.Errorf("session id = %q, want user_session_ prefix", id)
	}
}
