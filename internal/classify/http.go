package classify

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

	"eduvid/internal/frame"
	"eduvid/internal/services"
)

const defaultTimeout = 10 * time.Second

// Option customizes an adapter.
type Option func(*endpoint)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *endpoint) {
		if client != nil {
			e.client = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(e *endpoint) {
		if timeout > 0 {
			e.client = &http.Client{Timeout: timeout}
		}
	}
}

type endpoint struct {
	component string
	baseURL   string
	client    *http.Client
}

func newEndpoint(component, baseURL string, opts []Option) endpoint {
	e := endpoint{
		component: component,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// health calls GET <base>/health.
func (e endpoint) health(ctx context.Context) error {
	if e.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, e.component, "load", "endpoint not configured", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, e.component, "load", "build request", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return e.transportError("load", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, e.component, "load", fmt.Sprintf("health returned http %d", resp.StatusCode), nil)
	}
	return nil
}

// post sends the frame as JPEG to <base>/<path> and decodes the JSON reply.
func (e endpoint) post(ctx context.Context, op, path string, f frame.Frame, out any) error {
	if e.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, e.component, op, "endpoint not configured", nil)
	}
	body, err := f.JPEG()
	if err != nil {
		return services.Wrap(services.ErrValidation, e.component, op, "encode frame", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, e.component, op, "build request", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return e.transportError(op, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return e.transportError(op, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return services.Wrap(services.ErrTransient, e.component, op, fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, e.component, op, fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return services.Wrap(services.ErrExternalTool, e.component, op, "decode response", err)
	}
	return nil
}

func (e endpoint) transportError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return services.Wrap(services.ErrTimeout, e.component, op, "request timed out", err)
	}
	return services.Wrap(services.ErrTransient, e.component, op, "request failed", err)
}
