package session

import (
	"time"

	"eduvid/internal/camera"
	"eduvid/internal/content"
	"eduvid/internal/recognition"
)

// Stage is the lifecycle position of a session.
type Stage string

const (
	StageLoading   Stage = "loading"
	StageDetecting Stage = "detecting"
	StageError     Stage = "error"
	StageClosed    Stage = "closed"
)

// Reason explains why a session entered the error stage.
type Reason string

const (
	ReasonModel            Reason = "model"
	ReasonPermissionDenied Reason = Reason(camera.ReasonPermissionDenied)
	ReasonNoDevice         Reason = Reason(camera.ReasonNoDevice)
	ReasonOther            Reason = Reason(camera.ReasonOther)
)

const modelFailureMessage = "The recognition model could not be loaded. Check that the classifier service is running and try again."

// QuizState is the quiz panel. Selected is nil until the user answers.
type QuizState struct {
	QuizID       int64    `json:"quiz_id,omitempty"`
	Subject      string   `json:"subject"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Selected     *int     `json:"selected,omitempty"`
	Correct      bool     `json:"correct"`
	Verified     bool     `json:"verified"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Answered reports whether an answer has been graded.
func (q QuizState) Answered() bool { return q.Selected != nil }

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	ID              string                   `json:"id"`
	Stage           Stage                    `json:"stage"`
	Reason          Reason                   `json:"reason,omitempty"`
	Message         string                   `json:"message,omitempty"`
	Device          string                   `json:"device,omitempty"`
	StartedAt       time.Time                `json:"started_at"`
	Subject         string                   `json:"subject,omitempty"`
	Pending         string                   `json:"pending,omitempty"`
	PendingCount    int                      `json:"pending_count,omitempty"`
	SignalLost      bool                     `json:"signal_lost"`
	Results         []recognition.Result     `json:"results,omitempty"`
	Features        *content.FeatureSet      `json:"features,omitempty"`
	FeaturesLoading bool                     `json:"features_loading"`
	FeaturesVisible bool                     `json:"features_visible"`
	Quiz            *QuizState               `json:"quiz,omitempty"`
	Sampler         recognition.SamplerStats `json:"sampler"`
	Camera          camera.StreamStats       `json:"camera"`
}

// Event is published on every visible state change.
type Event struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id"`
	At        time.Time           `json:"at"`
	Stage     Stage               `json:"stage"`
	Reason    Reason              `json:"reason,omitempty"`
	Message   string              `json:"message,omitempty"`
	Subject   string              `json:"subject,omitempty"`
	Features  *content.FeatureSet `json:"features,omitempty"`
	Quiz      *QuizState          `json:"quiz,omitempty"`
}

// Event types.
const (
	EventStage    = "stage"
	EventSubject  = "subject"
	EventFeatures = "features"
	EventQuiz     = "quiz"
	EventAnswer   = "answer"
	EventPanel    = "panel"
)
