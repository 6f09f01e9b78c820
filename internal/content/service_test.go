package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"eduvid/internal/services"
	"eduvid/internal/testsupport"
)

type fakeGenerator struct {
	available bool
	reply     string
	err       error
	prompts   []string
}

func (g *fakeGenerator) Available(context.Context) bool { return g.available }

func (g *fakeGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func newTestService(t *testing.T, gen Generator, opts ...ServiceOption) *Service {
	t.Helper()
	store := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	return NewService(store, gen, nil, opts...)
}

func TestFeaturesFromCatalog(t *testing.T) {
	svc := newTestService(t, nil)
	set, err := svc.Features(context.Background(), "Water Bottle")
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if set.Name != "Water Bottle" || set.Category != "Everyday Object" || len(set.Features) != 5 {
		t.Fatalf("unexpected set %+v", set)
	}
}

func TestFeaturesGenerated(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "Material: Plastic blades in a metal cage.\nScience: Moving air speeds up evaporation."}
	svc := newTestService(t, gen)
	set, err := svc.Features(context.Background(), "electric fan")
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if set.Name != "Electric Fan" || set.Category != GeneratedCategory {
		t.Fatalf("unexpected header %+v", set)
	}
	if len(set.Features) != 2 || set.Features[0].Title != "Material" {
		t.Fatalf("unexpected features %+v", set.Features)
	}
	if len(gen.prompts) != 1 || !strings.HasSuffix(gen.prompts[0], "electric fan") {
		t.Fatalf("unexpected prompts %q", gen.prompts)
	}
}

func TestFeaturesGenericFallback(t *testing.T) {
	cases := map[string]Generator{
		"no generator": nil,
		"unavailable":  &fakeGenerator{available: false},
		"failing":      &fakeGenerator{available: true, err: errors.New("boom")},
		"unparseable":  &fakeGenerator{available: true, reply: "I am not sure what this object is, sorry about that."},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, gen)
			set, err := svc.Features(context.Background(), "lamp")
			if err != nil {
				t.Fatalf("Features: %v", err)
			}
			if len(set.Features) != 2 || set.Features[0].Title != "Identified" || set.Features[1].Title != "Explore" {
				t.Fatalf("unexpected fallback %+v", set.Features)
			}
			if !strings.Contains(set.Features[0].Detail, "This is a lamp.") {
				t.Fatalf("unexpected detail %q", set.Features[0].Detail)
			}
		})
	}
}

func TestFeaturesFallbackGeneratorChain(t *testing.T) {
	fallbackReply := "Material: Brass reeds inside a wooden comb.\nScience: Air makes the reeds vibrate."
	cases := map[string]*fakeGenerator{
		"primary unavailable": {available: false},
		"primary failing":     {available: true, err: errors.New("connection refused")},
		"primary too short":   {available: true, reply: "Sound: Loud."},
	}
	for name, primary := range cases {
		t.Run(name, func(t *testing.T) {
			fallback := &fakeGenerator{available: true, reply: fallbackReply}
			svc := newTestService(t, primary, WithFallbackGenerator(fallback))
			set, err := svc.Features(context.Background(), "harmonica")
			if err != nil {
				t.Fatalf("Features: %v", err)
			}
			if len(set.Features) != 2 || set.Features[0].Title != "Material" || set.Features[1].Title != "Science" {
				t.Fatalf("expected fallback features, got %+v", set.Features)
			}
			if len(fallback.prompts) != 1 {
				t.Fatalf("fallback called %d times", len(fallback.prompts))
			}
		})
	}
}

func TestFeaturesPrimaryGeneratorSkipsFallback(t *testing.T) {
	primary := &fakeGenerator{available: true, reply: "Material: Plastic blades in a metal cage."}
	fallback := &fakeGenerator{available: true, reply: "Other: Should not be used at all here."}
	svc := newTestService(t, primary, WithFallbackGenerator(fallback))
	set, err := svc.Features(context.Background(), "electric fan")
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if len(set.Features) != 1 || set.Features[0].Title != "Material" {
		t.Fatalf("unexpected features %+v", set.Features)
	}
	if len(fallback.prompts) != 0 {
		t.Fatalf("fallback should not run, got prompts %q", fallback.prompts)
	}
}

func TestFeaturesGenericWhenEveryGeneratorFails(t *testing.T) {
	primary := &fakeGenerator{available: true, err: errors.New("boom")}
	fallback := &fakeGenerator{available: true, reply: "too short"}
	svc := newTestService(t, primary, WithFallbackGenerator(fallback))
	set, err := svc.Features(context.Background(), "lamp")
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if len(set.Features) != 2 || set.Features[0].Title != "Identified" {
		t.Fatalf("expected generic card, got %+v", set.Features)
	}
	if len(primary.prompts) != 1 || len(fallback.prompts) != 1 {
		t.Fatalf("expected both generators tried, got %d and %d", len(primary.prompts), len(fallback.prompts))
	}
}

func TestFeaturesRequiresName(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Features(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuizPicksStoredQuestion(t *testing.T) {
	svc := newTestService(t, nil, WithPicker(func(n int) int { return n - 1 }))
	q, err := svc.Quiz(context.Background(), "bottle")
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	if q.QuizID == 0 || len(q.Options) != 4 {
		t.Fatalf("unexpected quiz %+v", q)
	}
	first, _ := svc.catalog.Quizzes(context.Background(), "bottle")
	if q.Question != first[len(first)-1].Question {
		t.Fatalf("picker not honoured: %q", q.Question)
	}
}

func TestQuizGeneric(t *testing.T) {
	svc := newTestService(t, nil)
	q, err := svc.Quiz(context.Background(), "lamp")
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	if q.QuizID != 0 || q.Question != "What do you find most interesting about lamp?" || len(q.Options) != 4 {
		t.Fatalf("unexpected generic quiz %+v", q)
	}
}

func TestCheckAnswer(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	right, err := svc.CheckAnswer(ctx, AnswerRequest{ObjectName: "bottle", SelectedIndex: 1})
	if err != nil {
		t.Fatalf("CheckAnswer: %v", err)
	}
	if !right.Correct || !right.Verified || !strings.HasPrefix(right.Explanation, "Correct!") {
		t.Fatalf("unexpected verdict %+v", right)
	}

	wrong, err := svc.CheckAnswer(ctx, AnswerRequest{ObjectName: "bottle", SelectedIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	if wrong.Correct || wrong.Explanation == right.Explanation {
		t.Fatalf("unexpected verdict %+v", wrong)
	}

	quizzes, _ := svc.catalog.Quizzes(ctx, "bottle")
	second := quizzes[1]
	byID, err := svc.CheckAnswer(ctx, AnswerRequest{ObjectName: "bottle", QuizID: second.ID, SelectedIndex: second.CorrectIndex})
	if err != nil {
		t.Fatal(err)
	}
	if !byID.Correct || byID.Explanation != second.ExplanationCorrect {
		t.Fatalf("quiz id not honoured: %+v", byID)
	}

	if _, err := svc.CheckAnswer(ctx, AnswerRequest{ObjectName: "bottle", SelectedIndex: 9}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CheckAnswer(ctx, AnswerRequest{ObjectName: "bottle", QuizID: 4242}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	generic, err := svc.CheckAnswer(ctx, AnswerRequest{ObjectName: "lamp", SelectedIndex: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !generic.Correct || !strings.Contains(generic.Explanation, "Every aspect of a lamp") {
		t.Fatalf("unexpected generic verdict %+v", generic)
	}
}

func TestObjects(t *testing.T) {
	svc := newTestService(t, nil)
	listing, err := svc.Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if len(listing.DetectableObjects) == 0 || listing.DetectableObjects[0] != "bottle" {
		t.Fatalf("unexpected objects %v", listing.DetectableObjects)
	}
	detail := listing.ObjectDetails["bottle"]
	if detail.Label != "Water Bottle" || detail.Fact == "" {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if listing.FallbackMessage != "Show any object to your camera!" {
		t.Fatalf("unexpected fallback %q", listing.FallbackMessage)
	}
}

func TestDefaults(t *testing.T) {
	set := DefaultFeatureSet("Ceiling fan")
	if set.Name != "Ceiling fan" || set.Category != "Object" || len(set.Features) != 1 || set.Features[0].Title != "Detected" {
		t.Fatalf("unexpected default set %+v", set)
	}
	ans := UnverifiedAnswer()
	if ans.Correct || ans.Verified || ans.Explanation == "" {
		t.Fatalf("unexpected unverified answer %+v", ans)
	}
}
