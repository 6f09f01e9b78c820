package content

import "fmt"

const (
	// DefaultCategory labels a fallback card built without the content API.
	DefaultCategory = "Object"
	// GeneratedCategory labels cards produced for uncatalogued objects.
	GeneratedCategory = "Detected Object"

	detectedPlaceholder = "We recognized this object but couldn't load more details right now."
	unverifiedMessage   = "We couldn't verify your answer right now. Try again in a moment."
	objectsFallback     = "Show any object to your camera!"
)

// DefaultFeatureSet is substituted when fetching content for label fails.
func DefaultFeatureSet(label string) FeatureSet {
	return FeatureSet{
		Name:     label,
		Category: DefaultCategory,
		Features: []Feature{{Title: "Detected", Detail: detectedPlaceholder}},
	}
}

// UnverifiedAnswer is substituted when an answer check fails.
func UnverifiedAnswer() AnswerResult {
	return AnswerResult{Correct: false, Verified: false, Explanation: unverifiedMessage}
}

// genericFeatures is the card shown for an unknown object when no generated
// content is available.
func genericFeatures(object string) []Feature {
	return []Feature{
		{Title: "Identified", Detail: fmt.Sprintf("This is a %s. Point your camera at common objects to learn more!", object)},
		{Title: "Explore", Detail: "Try showing bottles, phones, books, fruits, or plants for detailed educational content."},
	}
}

// genericQuiz is asked about objects without stored questions.
func genericQuiz(object string) QuizQuestion {
	return QuizQuestion{
		Question: fmt.Sprintf("What do you find most interesting about %s?", object),
		Options: []string{
			"How it's made",
			"The science behind it",
			"Its history",
			"How it affects the environment",
		},
	}
}

func genericAnswer(object string) AnswerResult {
	return AnswerResult{
		Correct:     true,
		Verified:    true,
		Explanation: fmt.Sprintf("Great choice! Every aspect of a %s is fascinating to learn about.", object),
	}
}
