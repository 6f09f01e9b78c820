package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eduvid/internal/camera"
	"eduvid/internal/catalog"
	"eduvid/internal/content"
	"eduvid/internal/frame"
	"eduvid/internal/logging"
	"eduvid/internal/recognition"
	"eduvid/internal/services"
)

// ErrClosed is returned by operations on a session that has ended.
var ErrClosed = errors.New("session closed")

// ErrNotDetecting is returned by panel operations outside the detecting stage
// or before a subject has been confirmed.
var ErrNotDetecting = errors.New("session is not detecting a subject")

// ErrActive is returned when a new session is requested while one is live.
var ErrActive = errors.New("a session is already live")

// SightingRecorder stores confirmed subjects.
type SightingRecorder interface {
	RecordSighting(ctx context.Context, sighting catalog.Sighting) (int64, error)
}

// Options wires a session.
type Options struct {
	SampleInterval  time.Duration
	StabilityFrames int
	Debounce        time.Duration
	ContentTimeout  time.Duration

	Recognizer recognition.Recognizer
	// Acquire opens the camera. It runs after the recognizer has loaded.
	Acquire   func(ctx context.Context) (camera.Stream, error)
	Content   content.Provider
	Sightings SightingRecorder
	Logger    *slog.Logger
	// Scheduler overrides the debounce timer (tests).
	Scheduler recognition.Scheduler
	// EventCapacity bounds the event buffer (default 256).
	EventCapacity int
}

// Session is one live recognition session.
type Session struct {
	id     string
	opts   Options
	logger *slog.Logger
	events *logging.Hub[Event]

	filter    *recognition.StabilityFilter
	debouncer *recognition.Debouncer
	errLog    *logging.RepeatSampler

	mu              sync.Mutex
	ctx             context.Context
	cancel          context.CancelFunc
	stage           Stage
	reason          Reason
	message         string
	startedAt       time.Time
	stream          camera.Stream
	sampler         *recognition.Sampler
	subject         string
	confidence      float64
	signalLost      bool
	results         []recognition.Result
	features        *content.FeatureSet
	featuresLoading bool
	featuresHidden  bool
	quiz            *QuizState

	started     bool
	fetches     sync.WaitGroup
	releaseOnce sync.Once
	released    chan struct{}
}

// New builds a session in the loading stage. Start brings it up.
func New(opts Options) *Session {
	if opts.StabilityFrames <= 0 {
		opts.StabilityFrames = 3
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 1200 * time.Millisecond
	}
	if opts.ContentTimeout <= 0 {
		opts.ContentTimeout = 15 * time.Second
	}
	if opts.EventCapacity <= 0 {
		opts.EventCapacity = 256
	}
	id := uuid.NewString()
	base := logging.NewComponentLogger(opts.Logger, "session")
	return &Session{
		id:        id,
		opts:      opts,
		logger:    base.With(logging.String(logging.FieldSessionID, id)),
		events:    logging.NewHub[Event](opts.EventCapacity),
		filter:    recognition.NewStabilityFilter(opts.StabilityFrames),
		debouncer: recognition.NewDebouncer(opts.Debounce, opts.Scheduler),
		errLog:    logging.NewRepeatSampler(20, 30*time.Second),
		stage:     StageLoading,
		startedAt: time.Now(),
		released:  make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Events returns the session's event buffer.
func (s *Session) Events() *logging.Hub[Event] { return s.events }

// Done is closed once the session has released its resources.
func (s *Session) Done() <-chan struct{} { return s.released }

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Start loads the recognizer, acquires the camera and begins sampling. It
// returns once the session is detecting or has failed; ctx bounds the whole
// session, and cancelling it closes the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("session already started")
	}
	s.started = true
	if s.stage != StageLoading {
		s.mu.Unlock()
		return ErrClosed
	}
	ctx = services.WithSessionID(ctx, s.id)
	s.ctx, s.cancel = context.WithCancel(ctx)
	sessionCtx := s.ctx
	s.mu.Unlock()

	s.publish(Event{Type: EventStage, Stage: StageLoading})
	s.logger.Info("session loading", logging.String(logging.FieldEventType, "session_loading"))

	if err := recognition.LoadModel(sessionCtx, s.opts.Recognizer); err != nil {
		if sessionCtx.Err() != nil {
			return s.abandon(sessionCtx)
		}
		return s.fail(ReasonModel, modelFailureMessage, err)
	}
	if s.opts.Acquire == nil {
		return s.fail(ReasonNoDevice, camera.UserMessage(camera.ErrNoDevice), camera.ErrNoDevice)
	}
	stream, err := s.opts.Acquire(sessionCtx)
	if err != nil {
		if sessionCtx.Err() != nil {
			return s.abandon(sessionCtx)
		}
		return s.fail(Reason(camera.Classify(err)), camera.UserMessage(err), err)
	}

	s.mu.Lock()
	if s.stage != StageLoading {
		s.mu.Unlock()
		_ = stream.Close()
		return ErrClosed
	}
	s.stream = stream
	s.sampler = recognition.NewSampler(recognition.SamplerConfig{
		Interval:   s.opts.SampleInterval,
		Source:     stream,
		Recognizer: s.opts.Recognizer,
		Active:     s.detecting,
		OnResult:   s.onResult,
		OnError:    s.onTickError,
	})
	// Close takes s.mu, so it cannot land between the stage change and the
	// detecting event.
	s.stage = StageDetecting
	s.sampler.Start(sessionCtx)
	s.publish(Event{Type: EventStage, Stage: StageDetecting})
	s.mu.Unlock()

	go s.watch(sessionCtx, stream)
	s.logger.Info("session detecting",
		logging.String(logging.FieldEventType, "session_detecting"),
		logging.String("device", stream.Device()),
	)
	return nil
}

// abandon closes a session whose context ended during start-up.
func (s *Session) abandon(ctx context.Context) error {
	_ = s.Close()
	return fmt.Errorf("%w: %w", ErrClosed, context.Cause(ctx))
}

// watch ends the session when its context ends or the stream dies.
func (s *Session) watch(ctx context.Context, stream camera.Stream) {
	select {
	case <-ctx.Done():
		_ = s.Close()
	case <-stream.Done():
		err := stream.Err()
		if err == nil {
			err = fmt.Errorf("%w: capture ended", camera.ErrCameraOther)
		}
		_ = s.fail(Reason(camera.Classify(err)), camera.UserMessage(err), err)
	case <-s.released:
	}
}

// DeviceRemoved fails the session when device is the stream it is using.
func (s *Session) DeviceRemoved(device string) {
	s.mu.Lock()
	stream := s.stream
	active := s.stage == StageDetecting
	s.mu.Unlock()
	if !active || stream == nil || stream.Device() != device {
		return
	}
	err := fmt.Errorf("%w: %s was unplugged", camera.ErrNoDevice, device)
	_ = s.fail(ReasonNoDevice, camera.UserMessage(err), err)
}

// fail moves a loading or detecting session to the error stage and releases
// its resources. It returns the error handed to Start callers.
func (s *Session) fail(reason Reason, message string, cause error) error {
	s.mu.Lock()
	if s.stage == StageError || s.stage == StageClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stage = StageError
	s.reason = reason
	s.message = message
	s.mu.Unlock()

	logging.WarnWithContext(s.logger, "session failed", "session_failed",
		logging.Error(cause),
		logging.String("reason", string(reason)),
		logging.String(logging.FieldErrorHint, message),
		logging.String(logging.FieldImpact, "live recognition stopped"),
	)
	s.publish(Event{Type: EventStage, Stage: StageError, Reason: reason, Message: message})
	s.release()
	return fmt.Errorf("session %s: %w", reason, cause)
}

// Close ends the session. Calling it again, or after a failure, is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.stage == StageClosed || s.stage == StageError {
		s.mu.Unlock()
		s.release()
		return nil
	}
	s.stage = StageClosed
	s.mu.Unlock()

	s.publish(Event{Type: EventStage, Stage: StageClosed})
	s.release()
	s.logger.Info("session closed", logging.String(logging.FieldEventType, "session_closed"))
	return nil
}

// release stops the sampler and timers and closes the camera, exactly once.
func (s *Session) release() {
	s.releaseOnce.Do(func() {
		s.debouncer.Stop()

		s.mu.Lock()
		sampler := s.sampler
		stream := s.stream
		cancel := s.cancel
		s.featuresLoading = false
		s.mu.Unlock()

		if sampler != nil {
			sampler.Stop()
		}
		if cancel != nil {
			cancel()
		}
		s.fetches.Wait()
		if stream != nil {
			if err := stream.Close(); err != nil {
				s.logger.Debug("camera close failed", logging.Error(err))
			}
		}

		s.mu.Lock()
		s.filter.Reset()
		s.mu.Unlock()

		close(s.released)
		s.events.Close()
	})
}

func (s *Session) detecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage == StageDetecting
}

// Frame returns the latest camera frame while a stream is held.
func (s *Session) Frame() (frame.Frame, bool) {
	s.mu.Lock()
	stream := s.stream
	done := s.stage == StageClosed || s.stage == StageError
	s.mu.Unlock()
	if stream == nil || done {
		return frame.Frame{}, false
	}
	return stream.Latest()
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, count := s.filter.Pending()
	snap := Snapshot{
		ID:              s.id,
		Stage:           s.stage,
		Reason:          s.reason,
		Message:         s.message,
		StartedAt:       s.startedAt,
		Subject:         s.subject,
		Pending:         pending,
		PendingCount:    count,
		SignalLost:      s.signalLost,
		Results:         append([]recognition.Result(nil), s.results...),
		FeaturesLoading: s.featuresLoading,
		FeaturesVisible: s.features != nil && !s.featuresHidden,
	}
	if s.stream != nil {
		snap.Device = s.stream.Device()
		snap.Camera = s.stream.Stats()
	}
	if s.sampler != nil {
		snap.Sampler = s.sampler.Stats()
	}
	if s.features != nil {
		features := *s.features
		snap.Features = &features
	}
	if s.quiz != nil {
		quiz := *s.quiz
		snap.Quiz = &quiz
	}
	return snap
}

func (s *Session) publish(ev Event) {
	ev.SessionID = s.id
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	s.events.Publish(ev)
}
