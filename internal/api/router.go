package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"eduvid/internal/content"
	"eduvid/internal/logging"
	"eduvid/internal/overlay"
	"eduvid/internal/services"
	"eduvid/internal/session"
)

// SessionSource returns the live session, or nil when none is running.
type SessionSource interface {
	Session() *session.Session
}

// SessionController starts and stops the live session.
type SessionController interface {
	StartSession() (*session.Session, error)
	StopSession() error
}

// Options wires the router.
type Options struct {
	Content  *content.Service
	Sessions SessionSource
	// Control enables POST and DELETE on /api/session.
	Control  SessionController
	Logs     *logging.StreamHub
	Logger   *slog.Logger
	// Overlay styles the annotated frame; the zero value means DefaultStyle.
	Overlay *overlay.Style
}

type server struct {
	content  *content.Service
	sessions SessionSource
	control  SessionController
	logs     *logging.StreamHub
	logger   *slog.Logger
	style    overlay.Style
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	s := &server{
		content:  opts.Content,
		sessions: opts.Sessions,
		control:  opts.Control,
		logs:     opts.Logs,
		logger:   logging.NewComponentLogger(opts.Logger, "api"),
		style:    overlay.DefaultStyle,
	}
	if opts.Overlay != nil {
		s.style = *opts.Overlay
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/practical", func(r chi.Router) {
		r.Post("/object-features", s.handleObjectFeatures)
		r.Post("/quiz", s.handleQuiz)
		r.Post("/check-answer", s.handleCheckAnswer)
		r.Get("/objects", s.handleObjects)
	})

	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/", s.handleStartSession)
		r.Delete("/", s.handleStopSession)
		r.Post("/quiz", s.handleOpenQuiz)
		r.Delete("/quiz", s.handleCloseQuiz)
		r.Post("/answer", s.handleAnswer)
		r.Delete("/features", s.handleCloseFeatures)
		r.Get("/events", s.handleEvents)
		r.Get("/overlay.jpg", s.handleOverlay)
	})

	r.Get("/api/logs", s.handleLogs)
	return r
}

// requestLogger attaches the chi request id to the context and logs each
// request at debug level.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}
