package api

import (
	"net/http"

	"eduvid/internal/content"
	"eduvid/internal/services"
)

type objectRequest struct {
	ObjectName string `json:"object_name"`
}

type answerRequest struct {
	ObjectName    string `json:"object_name"`
	SelectedIndex *int   `json:"selected_index"`
	QuizID        int64  `json:"quiz_id,omitempty"`
}

func (s *server) contentService(w http.ResponseWriter) (*content.Service, bool) {
	if s.content == nil {
		s.writeError(w, http.StatusServiceUnavailable, "content catalog unavailable")
		return nil, false
	}
	return s.content, true
}

func (s *server) handleObjectFeatures(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.contentService(w)
	if !ok {
		return
	}
	var req objectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	set, err := svc.Features(r.Context(), req.ObjectName)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, set)
}

func (s *server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.contentService(w)
	if !ok {
		return
	}
	var req objectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	quiz, err := svc.Quiz(r.Context(), req.ObjectName)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quiz)
}

func (s *server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.contentService(w)
	if !ok {
		return
	}
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.SelectedIndex == nil {
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "check answer", "selected_index is required", nil))
		return
	}
	result, err := svc.CheckAnswer(r.Context(), content.AnswerRequest{
		ObjectName:    req.ObjectName,
		SelectedIndex: *req.SelectedIndex,
		QuizID:        req.QuizID,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *server) handleObjects(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.contentService(w)
	if !ok {
		return
	}
	listing, err := svc.Objects(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listing)
}
