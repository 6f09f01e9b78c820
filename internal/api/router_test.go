package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eduvid/internal/content"
	"eduvid/internal/testsupport"
)

func newContentService(t *testing.T) *content.Service {
	t.Helper()
	store := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	return content.NewService(store, nil, nil, content.WithPicker(func(int) int { return 0 }))
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestPing(t *testing.T) {
	rec := doRequest(t, NewRouter(Options{}), http.MethodGet, "/ping", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestObjectFeatures(t *testing.T) {
	h := NewRouter(Options{Content: newContentService(t)})

	rec := doRequest(t, h, http.MethodPost, "/api/practical/object-features", `{"object_name":"bottle"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var set content.FeatureSet
	decodeBody(t, rec, &set)
	if set.Name != "Water Bottle" || len(set.Features) == 0 {
		t.Fatalf("unexpected set %+v", set)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/practical/object-features", `{"object_name":"harmonica"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &set)
	if set.Name != "Harmonica" || set.Category != content.GeneratedCategory || len(set.Features) != 2 {
		t.Fatalf("unexpected generic set %+v", set)
	}
}

func TestPracticalValidation(t *testing.T) {
	h := NewRouter(Options{Content: newContentService(t)})
	cases := []struct {
		path string
		body string
	}{
		{"/api/practical/object-features", `{"object_name":"  "}`},
		{"/api/practical/object-features", `not json`},
		{"/api/practical/object-features", ``},
		{"/api/practical/quiz", `{"object":"bottle"}`},
		{"/api/practical/check-answer", `{"object_name":"bottle"}`},
		{"/api/practical/check-answer", `{"object_name":"bottle","selected_index":7}`},
	}
	for _, tc := range cases {
		rec := doRequest(t, h, http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %q: status %d, want 400 (%s)", tc.path, tc.body, rec.Code, rec.Body.String())
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.Error == "" {
			t.Errorf("%s %q: empty error message", tc.path, tc.body)
		}
	}
}

func TestQuizAndCheckAnswer(t *testing.T) {
	h := NewRouter(Options{Content: newContentService(t)})

	rec := doRequest(t, h, http.MethodPost, "/api/practical/quiz", `{"object_name":"water bottle"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var quiz content.QuizQuestion
	decodeBody(t, rec, &quiz)
	if quiz.QuizID == 0 || len(quiz.Options) != 4 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	body, _ := json.Marshal(map[string]any{"object_name": "bottle", "selected_index": 1, "quiz_id": quiz.QuizID})
	rec = doRequest(t, h, http.MethodPost, "/api/practical/check-answer", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var verdict map[string]any
	decodeBody(t, rec, &verdict)
	if verdict["correct"] != true || verdict["explanation"] == "" {
		t.Fatalf("unexpected verdict %v", verdict)
	}
	if _, ok := verdict["verified"]; ok {
		t.Fatal("verified is internal and must not be serialized")
	}

	rec = doRequest(t, h, http.MethodPost, "/api/practical/check-answer", `{"object_name":"bottle","selected_index":0,"quiz_id":999}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestObjectsListing(t *testing.T) {
	h := NewRouter(Options{Content: newContentService(t)})
	rec := doRequest(t, h, http.MethodGet, "/api/practical/objects", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var listing content.ObjectListing
	decodeBody(t, rec, &listing)
	if len(listing.DetectableObjects) == 0 || listing.FallbackMessage == "" {
		t.Fatalf("unexpected listing %+v", listing)
	}
}

func TestContentUnavailable(t *testing.T) {
	rec := doRequest(t, NewRouter(Options{}), http.MethodPost, "/api/practical/quiz", `{"object_name":"cup"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := doRequest(t, NewRouter(Options{}), http.MethodGet, "/api/practical/quiz", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", rec.Code)
	}
}
