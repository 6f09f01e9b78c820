package catalog

import "time"

// Feature is one fact card.
type Feature struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Object is a catalogued object with its feature cards.
type Object struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Features []Feature `json:"features"`
}

// Quiz is one multiple-choice question about an object.
type Quiz struct {
	ID                 int64    `json:"id"`
	ObjectKey          string   `json:"object_key"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectIndex       int      `json:"correct_index"`
	ExplanationCorrect string   `json:"explanation_correct"`
	ExplanationWrong   string   `json:"explanation_wrong"`
}

// Sighting records a subject confirmed during a live session.
type Sighting struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Label       string    `json:"label"`
	Confidence  float64   `json:"confidence"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
