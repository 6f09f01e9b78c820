package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"eduvid/internal/logging"
)

// LogStreamResponse is returned by /api/logs.
type LogStreamResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}

// handleLogs returns buffered log events. since/limit page through the
// buffer, follow=1 blocks until something new arrives, tail=1 returns the
// most recent entries, and session/component filter the result.
func (s *server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		s.writeJSON(w, http.StatusOK, LogStreamResponse{})
		return
	}
	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := truthy(query.Get("follow"))
	tail := truthy(query.Get("tail"))
	sessionID := strings.TrimSpace(query.Get("session"))
	component := strings.TrimSpace(query.Get("component"))

	var (
		entries []logging.Entry[logging.LogEvent]
		next    uint64
	)
	if tail && since == 0 && !follow {
		entries, next = s.logs.Tail(limit)
	} else {
		var err error
		entries, next, err = s.logs.Fetch(r.Context(), since, limit, follow)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.writeFailure(w, r, err)
			return
		}
	}

	events := make([]logging.LogEvent, 0, len(entries))
	for _, entry := range entries {
		evt := entry.Value
		if sessionID != "" && evt.SessionID != sessionID {
			continue
		}
		if component != "" && !strings.EqualFold(component, evt.Component) {
			continue
		}
		events = append(events, evt)
	}
	s.writeJSON(w, http.StatusOK, LogStreamResponse{Events: events, Next: next})
}

func truthy(value string) bool {
	return value == "1" || strings.EqualFold(value, "true")
}
