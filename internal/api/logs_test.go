package api

import (
	"net/http"
	"testing"
	"time"

	"eduvid/internal/logging"
)

func TestLogsTailAndFilter(t *testing.T) {
	hub := logging.NewStreamHub(16)
	hub.Publish(logging.LogEvent{Timestamp: time.Now(), Level: "INFO", Message: "daemon started", Component: "daemon"})
	hub.Publish(logging.LogEvent{Timestamp: time.Now(), Level: "INFO", Message: "subject confirmed", Component: "session", SessionID: "s-1"})
	hub.Publish(logging.LogEvent{Timestamp: time.Now(), Level: "WARN", Message: "frame recognition failed", Component: "session", SessionID: "s-2"})
	h := NewRouter(Options{Logs: hub})

	rec := doRequest(t, h, http.MethodGet, "/api/logs?tail=1&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp LogStreamResponse
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 2 || resp.Events[0].Message != "subject confirmed" || resp.Next != 3 {
		t.Fatalf("unexpected tail %+v", resp)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/logs?component=SESSION&session=s-2", "")
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 1 || resp.Events[0].Level != "WARN" {
		t.Fatalf("unexpected filtered events %+v", resp.Events)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/logs?since=3", "")
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 0 || resp.Next != 3 {
		t.Fatalf("unexpected page after last event %+v", resp)
	}
}

func TestLogsWithoutHub(t *testing.T) {
	rec := doRequest(t, NewRouter(Options{}), http.MethodGet, "/api/logs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
