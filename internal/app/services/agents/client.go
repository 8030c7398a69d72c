package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const completionsPath = "/v1/chat/completions"

// Completer sends a prompt pair to a language model and returns the reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

var _ Completer = (*Client)(nil)

// Client is a chat-completions API client. The baseURL should carry no
// trailing slash, e.g. "https://api.openai.com".
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
}

// NewClient creates a Client for a hosted chat-completions endpoint.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
}

type apiChoice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

// Complete sends a system/user prompt pair and returns the assistant's reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := apiRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []apiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("agent api: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("agent api: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("agent api: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("agent api: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("agent api: status %d: %s", httpResp.StatusCode, bytes.TrimSpace(raw))
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("agent api: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("agent api: empty choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}
