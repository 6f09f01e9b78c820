package content

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"eduvid/internal/catalog"
	"eduvid/internal/logging"
	"eduvid/internal/services"
)

const featureSystemPrompt = "You are an educational assistant. A student has shown an object to their camera. " +
	"Generate exactly 4 educational features about this object. " +
	"Each feature should have a short title (1-2 words) and a detailed explanation (1-2 sentences, max 30 words). " +
	"Cover: what it's made of, how it works, a science fact, and a fun fact. " +
	"Format each feature on a new line as: Title: Detail"

// Catalog is the read side of catalog.Store used by the service.
type Catalog interface {
	Lookup(ctx context.Context, name string) (*catalog.Object, error)
	Quizzes(ctx context.Context, name string) ([]catalog.Quiz, error)
	Quiz(ctx context.Context, id int64) (*catalog.Quiz, error)
	Objects(ctx context.Context) ([]catalog.Object, error)
}

// Generator writes feature text for uncatalogued objects.
type Generator interface {
	Available(ctx context.Context) bool
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service answers content requests from the catalog.
type Service struct {
	catalog    Catalog
	generators []namedGenerator
	logger     *slog.Logger

	randMu sync.Mutex
	pick   func(n int) int
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithPicker replaces the random quiz selection (useful for tests).
func WithPicker(pick func(n int) int) ServiceOption {
	return func(s *Service) {
		if pick != nil {
			s.pick = pick
		}
	}
}

type namedGenerator struct {
	name string
	gen  Generator
}

// WithFallbackGenerator adds a generator tried when the primary one is
// unavailable, fails or returns too little text.
func WithFallbackGenerator(gen Generator) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.generators = append(s.generators, namedGenerator{name: "fallback", gen: gen})
		}
	}
}

// NewService builds a service. generator may be nil, in which case unknown
// objects get the generic card unless a fallback generator is configured.
func NewService(cat Catalog, generator Generator, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		catalog: cat,
		logger:  logging.NewComponentLogger(logger, "content"),
		pick:    rand.IntN,
	}
	if generator != nil {
		s.generators = append(s.generators, namedGenerator{name: "primary", gen: generator})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// titleCase capitalizes each word. Casers carry state, so one is built per call.
func titleCase(name string) string {
	return cases.Title(language.English).String(name)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "content", "lookup", "object_name is required", nil)
	}
	return name, nil
}

// Features returns the catalogued card for name, or a generated one.
func (s *Service) Features(ctx context.Context, name string) (FeatureSet, error) {
	name, err := cleanName(name)
	if err != nil {
		return FeatureSet{}, err
	}
	obj, err := s.catalog.Lookup(ctx, name)
	if err != nil {
		return FeatureSet{}, services.Wrap(services.ErrTransient, "content", "lookup", "catalog query failed", err)
	}
	if obj != nil {
		features := make([]Feature, 0, len(obj.Features))
		for _, f := range obj.Features {
			features = append(features, Feature{Title: f.Title, Detail: f.Detail})
		}
		return FeatureSet{Name: obj.Name, Category: obj.Category, Features: features}, nil
	}

	return FeatureSet{
		Name:     titleCase(name),
		Category: GeneratedCategory,
		Features: s.generateFeatures(ctx, name),
	}, nil
}

func (s *Service) generateFeatures(ctx context.Context, name string) []Feature {
	for _, g := range s.generators {
		if features := s.tryGenerator(ctx, g, name); len(features) > 0 {
			return features
		}
	}
	s.logger.Debug("no generator produced features; using generic card",
		logging.String(logging.FieldSubject, name),
		logging.Int("generators", len(s.generators)),
	)
	return genericFeatures(name)
}

func (s *Service) tryGenerator(ctx context.Context, g namedGenerator, name string) []Feature {
	if !g.gen.Available(ctx) {
		s.logger.Debug("generator unavailable",
			logging.String("generator", g.name),
			logging.String(logging.FieldSubject, name),
		)
		return nil
	}
	reply, err := g.gen.Generate(ctx, featureSystemPrompt, "Generate 4 educational features about: "+name)
	if err != nil {
		logging.WarnWithContext(s.logger, "feature generation failed", "content_generate_failed",
			logging.Error(err),
			logging.String("generator", g.name),
			logging.String(logging.FieldSubject, name),
			logging.String(logging.FieldErrorHint, "check that the LLM server is running and the model is pulled"),
			logging.String(logging.FieldImpact, "next generator or generic card used for uncatalogued object"),
		)
		return nil
	}
	if len(strings.TrimSpace(reply)) <= minGeneratedLength {
		s.logger.Debug("generated reply too short",
			logging.String("generator", g.name),
			logging.String(logging.FieldSubject, name),
			logging.Int("reply_len", len(reply)),
		)
		return nil
	}
	features := ParseGeneratedFeatures(reply)
	if len(features) == 0 {
		s.logger.Debug("generated reply had no features",
			logging.String("generator", g.name),
			logging.String(logging.FieldSubject, name),
			logging.Int("reply_len", len(reply)),
		)
		return nil
	}
	s.logger.Info("generated features for uncatalogued object",
		logging.String(logging.FieldEventType, "content_generated"),
		logging.String("generator", g.name),
		logging.String(logging.FieldSubject, name),
		logging.Int("features", len(features)),
	)
	return features
}

// Quiz returns a random stored question about name, or the generic question.
func (s *Service) Quiz(ctx context.Context, name string) (QuizQuestion, error) {
	name, err := cleanName(name)
	if err != nil {
		return QuizQuestion{}, err
	}
	quizzes, err := s.catalog.Quizzes(ctx, name)
	if err != nil {
		return QuizQuestion{}, services.Wrap(services.ErrTransient, "content", "quiz", "catalog query failed", err)
	}
	if len(quizzes) == 0 {
		return genericQuiz(name), nil
	}
	q := quizzes[s.choose(len(quizzes))]
	return QuizQuestion{QuizID: q.ID, Question: q.Question, Options: append([]string(nil), q.Options...)}, nil
}

func (s *Service) choose(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	idx := s.pick(n)
	if idx < 0 || idx >= n {
		return 0
	}
	return idx
}

// CheckAnswer grades an answer. When QuizID is set that question is graded;
// otherwise the first stored question about the object is. Objects without
// questions get an encouraging verdict.
func (s *Service) CheckAnswer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	name, err := cleanName(req.ObjectName)
	if err != nil {
		return AnswerResult{}, err
	}

	var quiz *catalog.Quiz
	if req.QuizID != 0 {
		quiz, err = s.catalog.Quiz(ctx, req.QuizID)
		if err != nil {
			return AnswerResult{}, services.Wrap(services.ErrTransient, "content", "check answer", "catalog query failed", err)
		}
		if quiz == nil {
			return AnswerResult{}, services.Wrap(services.ErrNotFound, "content", "check answer", fmt.Sprintf("quiz %d not found", req.QuizID), nil)
		}
	} else {
		quizzes, err := s.catalog.Quizzes(ctx, name)
		if err != nil {
			return AnswerResult{}, services.Wrap(services.ErrTransient, "content", "check answer", "catalog query failed", err)
		}
		if len(quizzes) > 0 {
			quiz = &quizzes[0]
		}
	}

	if quiz == nil {
		if req.SelectedIndex < 0 || req.SelectedIndex >= len(genericQuiz(name).Options) {
			return AnswerResult{}, services.Wrap(services.ErrValidation, "content", "check answer", "selected_index out of range", nil)
		}
		return genericAnswer(name), nil
	}
	if req.SelectedIndex < 0 || req.SelectedIndex >= len(quiz.Options) {
		return AnswerResult{}, services.Wrap(services.ErrValidation, "content", "check answer", "selected_index out of range", nil)
	}
	correct := req.SelectedIndex == quiz.CorrectIndex
	explanation := quiz.ExplanationWrong
	if correct {
		explanation = quiz.ExplanationCorrect
	}
	return AnswerResult{Correct: correct, Explanation: explanation, Verified: true}, nil
}

// Objects lists the catalogued objects with a one-line fact each.
func (s *Service) Objects(ctx context.Context) (ObjectListing, error) {
	objects, err := s.catalog.Objects(ctx)
	if err != nil {
		return ObjectListing{}, services.Wrap(services.ErrTransient, "content", "objects", "catalog query failed", err)
	}
	listing := ObjectListing{
		DetectableObjects: make([]string, 0, len(objects)),
		ObjectDetails:     make(map[string]ObjectDetail, len(objects)),
		FallbackMessage:   objectsFallback,
	}
	for _, obj := range objects {
		listing.DetectableObjects = append(listing.DetectableObjects, obj.Key)
		detail := ObjectDetail{Label: obj.Name}
		if len(obj.Features) > 0 {
			detail.Fact = obj.Features[0].Detail
		}
		listing.ObjectDetails[obj.Key] = detail
	}
	return listing, nil
}

// Local adapts a Service to Provider for in-process sessions.
type Local struct {
	Service *Service
}

func (l Local) GetFeatures(ctx context.Context, label string) (FeatureSet, error) {
	return l.Service.Features(ctx, label)
}

func (l Local) GetQuiz(ctx context.Context, label string) (QuizQuestion, error) {
	return l.Service.Quiz(ctx, label)
}

func (l Local) CheckAnswer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	return l.Service.CheckAnswer(ctx, req)
}
