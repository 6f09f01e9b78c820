package api

import (
	"errors"
	"net/http"
	"strconv"

	"eduvid/internal/overlay"
	"eduvid/internal/services"
	"eduvid/internal/session"
)

type sessionAnswerRequest struct {
	SelectedIndex *int `json:"selected_index"`
}

func (s *server) liveSession(w http.ResponseWriter) (*session.Session, bool) {
	if s.sessions != nil {
		if sess := s.sessions.Session(); sess != nil {
			return sess, true
		}
	}
	s.writeError(w, http.StatusNotFound, "no live session")
	return nil, false
}

func (s *server) handleSession(w http.ResponseWriter, _ *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleStartSession starts a session and reports its snapshot. A session
// that failed to come up is reported with its error stage and message.
func (s *server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	if s.control == nil {
		s.writeError(w, http.StatusServiceUnavailable, "session control unavailable")
		return
	}
	sess, err := s.control.StartSession()
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, sess.Snapshot())
	case sess != nil && !errors.Is(err, session.ErrActive):
		s.writeJSON(w, http.StatusServiceUnavailable, sess.Snapshot())
	default:
		s.writeFailure(w, r, err)
	}
}

func (s *server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	if s.control == nil {
		s.writeError(w, http.StatusServiceUnavailable, "session control unavailable")
		return
	}
	if err := s.control.StopSession(); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleOpenQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	quiz, err := sess.OpenQuiz(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quiz)
}

func (s *server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	var req sessionAnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.SelectedIndex == nil {
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "answer", "selected_index is required", nil))
		return
	}
	quiz, err := sess.AnswerQuiz(r.Context(), *req.SelectedIndex)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quiz)
}

func (s *server) handleCloseQuiz(w http.ResponseWriter, _ *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	sess.CloseQuiz()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCloseFeatures(w http.ResponseWriter, _ *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	sess.CloseFeatures()
	w.WriteHeader(http.StatusNoContent)
}

// handleOverlay serves the latest frame with the current results drawn on it.
func (s *server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	f, ok := sess.Frame()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no frame captured yet")
		return
	}
	snap := sess.Snapshot()
	labels := overlay.Layout(snap.Results, snap.Subject, f.Width, f.Height)
	data, err := overlay.Render(f, labels, s.style)
	if err != nil {
		s.writeFailure(w, r, errors.Join(services.ErrExternalTool, err))
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Frame-Seq", strconv.FormatUint(f.Seq, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
