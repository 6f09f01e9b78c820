package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"eduvid/internal/config"
)

func TestChatClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "prompt" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		if req.Model != "openai" || req.Seed != 42 {
			t.Errorf("unexpected request %+v", req)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no authorization header")
		}
		_, _ = w.Write([]byte("```\nShape: Round and flat.\n```"))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "", 0)
	if !client.Available(context.Background()) {
		t.Fatal("expected configured client to be available")
	}
	got, err := client.Generate(context.Background(), "system", "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "Shape: Round and flat." {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestChatClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("Science: Yes."))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "openai", 0, WithSleeper(func(time.Duration) {}))
	got, err := client.Generate(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "Science: Yes." || calls.Load() != 2 {
		t.Fatalf("unexpected result %q after %d calls", got, calls.Load())
	}
}

func TestNewChatClientFrom(t *testing.T) {
	settings := config.LLM{Enabled: true}
	if NewChatClientFrom(settings) != nil {
		t.Fatal("expected nil client without fallback_url")
	}
	settings.FallbackURL = "https://text.example.test/"
	if NewChatClientFrom(settings) == nil {
		t.Fatal("expected client when fallback_url is set")
	}
	settings.Enabled = false
	if NewChatClientFrom(settings) != nil {
		t.Fatal("expected nil client when generation is disabled")
	}
	var nilClient *ChatClient
	if nilClient.Available(context.Background()) {
		t.Fatal("nil client must be unavailable")
	}
}
