package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatTurn is one role/content pair in a conversation
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UpstreamError carries a failure status from an external service so the
// caller can pass it through to the client.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// AITutorClient talks to the AI Tutor API: streaming chat completions,
// one-shot workflow runs, and chatbot token issuance.
type AITutorClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewAITutorClient(baseURL, apiKey string) *AITutorClient {
	return &AITutorClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		// No overall timeout: chat streams are long-lived. Callers bound
		// the non-streaming calls with their own contexts.
		HTTP: &http.Client{},
	}
}

// ChatStream posts the conversation to the chat stream endpoint and returns
// the raw chunked response body. The caller owns the body.
func (c *AITutorClient) ChatStream(ctx context.Context, token string, messages []ChatTurn) (io.ReadCloser, error) {
	payload, err := json.Marshal(map[string]interface{}{"messages": messages})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/%s/stream", c.BaseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: readErrorField(resp.Body)}
	}
	return resp.Body, nil
}

// RunWorkflow executes a one-shot workflow and returns the full response
// body. This is a blocking call; the body is received in its entirety
// before the caller touches quota or history.
func (c *AITutorClient) RunWorkflow(ctx context.Context, workflowID string, input interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/run/%s", c.BaseURL, workflowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    errorFieldOf(body),
		}
	}
	return body, nil
}

// IssueChatToken requests an opaque chat token for the configured chatbot.
// The upstream response is returned verbatim for the UI to consume.
func (c *AITutorClient) IssueChatToken(ctx context.Context, chatbotID, sessionID string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{
		"chatbotId": chatbotID,
		"sessionId": sessionID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/token", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: errorFieldOf(body)}
	}
	return body, nil
}

// NewSessionID builds the session identifier sent with token requests
func NewSessionID() string {
	return fmt.Sprintf("user_session_%d", time.Now().UnixMilli())
}

func readErrorField(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return ""
	}
	return errorFieldOf(body)
}

func errorFieldOf(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error
}
