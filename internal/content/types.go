package content

import "context"

// Feature is one fact card.
type Feature struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// FeatureSet is the content shown for a confirmed subject.
type FeatureSet struct {
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Features []Feature `json:"features"`
}

// QuizQuestion is a multiple-choice question. QuizID is zero for the generic
// question asked about objects without a stored quiz.
type QuizQuestion struct {
	QuizID   int64    `json:"quiz_id,omitempty"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// AnswerResult is the verdict on a quiz answer. Verified is false when the
// answer could not be checked and the result was synthesized locally.
type AnswerResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
	Verified    bool   `json:"-"`
}

// AnswerRequest identifies the question being answered.
type AnswerRequest struct {
	ObjectName    string `json:"object_name"`
	SelectedIndex int    `json:"selected_index"`
	QuizID        int64  `json:"quiz_id,omitempty"`
}

// ObjectDetail is the one-line summary of a catalogued object.
type ObjectDetail struct {
	Label string `json:"label"`
	Fact  string `json:"fact"`
}

// ObjectListing describes what the catalog can explain.
type ObjectListing struct {
	DetectableObjects []string                `json:"detectable_objects"`
	ObjectDetails     map[string]ObjectDetail `json:"object_details"`
	FallbackMessage   string                  `json:"fallback_message"`
}

// Provider is the content port of a live session.
type Provider interface {
	GetFeatures(ctx context.Context, label string) (FeatureSet, error)
	GetQuiz(ctx context.Context, label string) (QuizQuestion, error)
	CheckAnswer(ctx context.Context, req AnswerRequest) (AnswerResult, error)
}
