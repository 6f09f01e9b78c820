package session

import (
	"context"
	"fmt"

	"eduvid/internal/content"
	"eduvid/internal/logging"
	"eduvid/internal/services"
)

func (s *Session) activeSubject() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stage == StageClosed || s.stage == StageError:
		return "", ErrClosed
	case s.stage != StageDetecting || s.subject == "":
		return "", ErrNotDetecting
	default:
		return s.subject, nil
	}
}

// OpenQuiz loads a question about the confirmed subject and opens the quiz
// panel. On failure the panel is left as it was.
func (s *Session) OpenQuiz(ctx context.Context) (QuizState, error) {
	subject, err := s.activeSubject()
	if err != nil {
		return QuizState{}, err
	}
	if s.opts.Content == nil {
		return QuizState{}, services.Wrap(services.ErrConfiguration, "session", "open quiz", "no content provider", nil)
	}
	q, err := s.opts.Content.GetQuiz(ctx, subject)
	if err != nil {
		logging.WarnWithContext(s.logger, "quiz load failed", "quiz_load_failed",
			logging.Error(err),
			logging.String(logging.FieldSubject, subject),
			logging.String(logging.FieldErrorHint, "check that the content API is reachable"),
			logging.String(logging.FieldImpact, "quiz panel stays closed"),
		)
		return QuizState{}, err
	}

	s.mu.Lock()
	if s.stage != StageDetecting || s.subject != subject {
		s.mu.Unlock()
		return QuizState{}, fmt.Errorf("%w: subject changed while loading quiz", ErrNotDetecting)
	}
	state := QuizState{
		QuizID:   q.QuizID,
		Subject:  subject,
		Question: q.Question,
		Options:  append([]string(nil), q.Options...),
	}
	s.quiz = &state
	s.mu.Unlock()

	out := state
	s.publish(Event{Type: EventQuiz, Stage: StageDetecting, Subject: subject, Quiz: &out})
	return state, nil
}

// AnswerQuiz grades the selected option of the open quiz. A failed check is
// recorded as an unverified answer rather than returned as an error.
func (s *Session) AnswerQuiz(ctx context.Context, selected int) (QuizState, error) {
	if _, err := s.activeSubject(); err != nil {
		return QuizState{}, err
	}
	s.mu.Lock()
	if s.quiz == nil {
		s.mu.Unlock()
		return QuizState{}, services.Wrap(services.ErrValidation, "session", "answer quiz", "no quiz is open", nil)
	}
	quiz := *s.quiz
	s.mu.Unlock()

	if selected < 0 || selected >= len(quiz.Options) {
		return QuizState{}, services.Wrap(services.ErrValidation, "session", "answer quiz",
			fmt.Sprintf("selected index %d out of range", selected), nil)
	}

	result, err := s.opts.Content.CheckAnswer(ctx, content.AnswerRequest{
		ObjectName:    quiz.Subject,
		SelectedIndex: selected,
		QuizID:        quiz.QuizID,
	})
	if err != nil {
		logging.WarnWithContext(s.logger, "answer check failed", "quiz_answer_unverified",
			logging.Error(err),
			logging.String(logging.FieldSubject, quiz.Subject),
			logging.String(logging.FieldErrorHint, "check that the content API is reachable"),
			logging.String(logging.FieldImpact, "answer shown as unverified"),
		)
		result = content.UnverifiedAnswer()
	}

	s.mu.Lock()
	if s.quiz == nil || s.quiz.Subject != quiz.Subject || s.quiz.Question != quiz.Question {
		s.mu.Unlock()
		return QuizState{}, fmt.Errorf("%w: quiz closed while checking answer", ErrNotDetecting)
	}
	choice := selected
	s.quiz.Selected = &choice
	s.quiz.Correct = result.Correct
	s.quiz.Verified = result.Verified
	s.quiz.Explanation = result.Explanation
	if result.Verified && result.Correct {
		idx := selected
		s.quiz.CorrectIndex = &idx
	}
	state := *s.quiz
	s.mu.Unlock()

	out := state
	s.publish(Event{Type: EventAnswer, Stage: StageDetecting, Subject: quiz.Subject, Quiz: &out})
	return state, nil
}

// CloseQuiz dismisses the quiz panel.
func (s *Session) CloseQuiz() {
	s.mu.Lock()
	if s.quiz == nil {
		s.mu.Unlock()
		return
	}
	s.quiz = nil
	stage, subject := s.stage, s.subject
	s.mu.Unlock()
	s.publish(Event{Type: EventPanel, Stage: stage, Subject: subject, Message: "quiz closed"})
}

// CloseFeatures hides the feature panel until the next subject change.
func (s *Session) CloseFeatures() {
	s.mu.Lock()
	if s.featuresHidden {
		s.mu.Unlock()
		return
	}
	s.featuresHidden = true
	stage, subject := s.stage, s.subject
	s.mu.Unlock()
	s.publish(Event{Type: EventPanel, Stage: stage, Subject: subject, Message: "features closed"})
}
