package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"eduvid/internal/services"
)

const defaultClientTimeout = 15 * time.Second

// Client calls a content API rooted at BaseURL (for example
// http://127.0.0.1:7590/api/practical).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient returns a client for baseURL. A non-positive timeout uses 15s.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type objectRequest struct {
	ObjectName string `json:"object_name"`
}

// GetFeatures fetches the feature card for label.
func (c *Client) GetFeatures(ctx context.Context, label string) (FeatureSet, error) {
	var out FeatureSet
	if err := c.post(ctx, "get features", "/object-features", objectRequest{ObjectName: label}, &out); err != nil {
		return FeatureSet{}, err
	}
	return out, nil
}

// GetQuiz fetches a question about label.
func (c *Client) GetQuiz(ctx context.Context, label string) (QuizQuestion, error) {
	var out QuizQuestion
	if err := c.post(ctx, "get quiz", "/quiz", objectRequest{ObjectName: label}, &out); err != nil {
		return QuizQuestion{}, err
	}
	if len(out.Options) == 0 {
		return QuizQuestion{}, services.Wrap(services.ErrExternalTool, "content-client", "get quiz", "quiz has no options", nil)
	}
	return out, nil
}

// CheckAnswer asks the server to grade an answer.
func (c *Client) CheckAnswer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	var out AnswerResult
	if err := c.post(ctx, "check answer", "/check-answer", req, &out); err != nil {
		return AnswerResult{}, err
	}
	out.Verified = true
	return out, nil
}

// Objects fetches the catalog listing.
func (c *Client) Objects(ctx context.Context) (ObjectListing, error) {
	var out ObjectListing
	if err := c.do(ctx, "objects", http.MethodGet, "/objects", nil, &out); err != nil {
		return ObjectListing{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return services.Wrap(services.ErrValidation, "content-client", op, "encode request", err)
	}
	return c.do(ctx, op, http.MethodPost, path, bytes.NewReader(body), out)
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, out any) error {
	if c.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, "content-client", op, "content base url not configured", nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "content-client", op, "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return services.Wrap(services.ErrTimeout, "content-client", op, "request timed out", err)
		}
		return services.Wrap(services.ErrTransient, "content-client", op, "request failed", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return services.Wrap(services.ErrTransient, "content-client", op, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(payload))
		var decoded errorBody
		if json.Unmarshal(payload, &decoded) == nil && decoded.Error != "" {
			msg = decoded.Error
		}
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, msg)
		switch {
		case resp.StatusCode == http.StatusBadRequest:
			return services.Wrap(services.ErrValidation, "content-client", op, detail, nil)
		case resp.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "content-client", op, detail, nil)
		case resp.StatusCode >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, "content-client", op, detail, nil)
		default:
			return services.Wrap(services.ErrExternalTool, "content-client", op, detail, nil)
		}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return services.Wrap(services.ErrExternalTool, "content-client", op, "decode response", err)
	}
	return nil
}
