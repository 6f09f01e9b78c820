package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduvid/internal/services"
)

func TestClientRoundTrip(t *testing.T) {
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastBody = nil
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&lastBody)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/practical/object-features":
			_, _ = w.Write([]byte(`{"name":"Cup","category":"Kitchen","features":[{"title":"Material","detail":"Ceramic."}]}`))
		case "/api/practical/quiz":
			_, _ = w.Write([]byte(`{"quiz_id":7,"question":"Why?","options":["a","b"]}`))
		case "/api/practical/check-answer":
			_, _ = w.Write([]byte(`{"correct":true,"explanation":"Yes."}`))
		case "/api/practical/objects":
			_, _ = w.Write([]byte(`{"detectable_objects":["cup"],"object_details":{"cup":{"label":"Cup","fact":"Ceramic."}},"fallback_message":"hi"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/practical/", 0)
	ctx := context.Background()

	set, err := c.GetFeatures(ctx, "cup")
	if err != nil {
		t.Fatalf("GetFeatures: %v", err)
	}
	if set.Name != "Cup" || len(set.Features) != 1 || lastBody["object_name"] != "cup" {
		t.Fatalf("unexpected features %+v body=%v", set, lastBody)
	}

	q, err := c.GetQuiz(ctx, "cup")
	if err != nil || q.QuizID != 7 || len(q.Options) != 2 {
		t.Fatalf("GetQuiz: %+v, %v", q, err)
	}

	ans, err := c.CheckAnswer(ctx, AnswerRequest{ObjectName: "cup", SelectedIndex: 1, QuizID: 7})
	if err != nil || !ans.Correct || !ans.Verified {
		t.Fatalf("CheckAnswer: %+v, %v", ans, err)
	}
	if lastBody["selected_index"] != float64(1) || lastBody["quiz_id"] != float64(7) {
		t.Fatalf("unexpected answer body %v", lastBody)
	}

	listing, err := c.Objects(ctx)
	if err != nil || listing.ObjectDetails["cup"].Label != "Cup" {
		t.Fatalf("Objects: %+v, %v", listing, err)
	}
}

func TestClientErrors(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"object_name is required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.GetFeatures(context.Background(), "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	status = http.StatusBadGateway
	if _, err := c.GetQuiz(context.Background(), "cup"); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if _, err := NewClient("", 0).GetFeatures(context.Background(), "cup"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
