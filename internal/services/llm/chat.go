package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"eduvid/internal/config"
)

const (
	defaultChatModel = "openai"
	chatSeed         = 42
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Model    string        `json:"model"`
	Seed     int           `json:"seed"`
	JSONMode bool          `json:"jsonMode"`
}

// ChatClient posts chat messages to a keyless text endpoint that answers with
// plain text. It backs up the Ollama client when the local server is down.
type ChatClient struct {
	endpoint string
	model    string
	client   *Client
}

// NewChatClient builds a chat client for endpoint. Retry and HTTP options are
// shared with Client.
func NewChatClient(endpoint, model string, timeoutSeconds int, opts ...Option) *ChatClient {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultChatModel
	}
	return &ChatClient{
		endpoint: strings.TrimSpace(endpoint),
		model:    model,
		client:   NewClient(Config{TimeoutSeconds: timeoutSeconds}, opts...),
	}
}

// NewChatClientFrom builds the fallback client from the [llm] section. It
// returns nil when generation is disabled or no fallback_url is set.
func NewChatClientFrom(settings config.LLM, opts ...Option) *ChatClient {
	if !settings.Enabled || settings.FallbackURL == "" {
		return nil
	}
	return NewChatClient(settings.FallbackURL, settings.FallbackModel, settings.TimeoutSeconds, opts...)
}

// Available reports whether an endpoint is configured. The hosted endpoints
// have no cheap probe, so failures surface from Generate.
func (c *ChatClient) Available(context.Context) bool {
	return c != nil && c.endpoint != ""
}

// Generate sends the system and user prompts and returns the cleaned reply.
func (c *ChatClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("llm chat: prompt required")
	}
	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: strings.TrimSpace(systemPrompt)},
			{Role: "user", Content: userPrompt},
		},
		Model: c.model,
		Seed:  chatSeed,
	}
	return c.client.withRetry(ctx, "llm chat", func(ctx context.Context) (string, error) {
		return c.sendOnce(ctx, payload)
	})
}

func (c *ChatClient) sendOnce(ctx context.Context, payload chatRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm chat: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("llm chat: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm chat: http error (timeout=%s): %w", c.client.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm chat: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), 200),
			RetryAfter: retryAfter,
		}
	}
	return string(body), nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
