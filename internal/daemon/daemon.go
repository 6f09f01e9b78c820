package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"eduvid/internal/camera"
	"eduvid/internal/catalog"
	"eduvid/internal/config"
	"eduvid/internal/content"
	"eduvid/internal/deps"
	"eduvid/internal/logging"
	"eduvid/internal/recognition"
	"eduvid/internal/services"
	"eduvid/internal/session"
)

// Daemon hosts the API and the live session and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	content *content.Service
	logHub  *logging.StreamHub

	recognizer    recognition.Recognizer
	recognizerErr error
	acquire       AcquireFunc
	provider      content.Provider

	lockPath string
	lock     *flock.Flock

	running atomic.Bool

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	api     *apiServer
	monitor *camera.Monitor
	session *session.Session
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithLogStream exposes the hub on /api/logs.
func WithLogStream(hub *logging.StreamHub) Option {
	return func(d *Daemon) { d.logHub = hub }
}

// WithRecognizer replaces the recognizer built from configuration.
func WithRecognizer(rec recognition.Recognizer) Option {
	return func(d *Daemon) { d.recognizer = rec }
}

// WithAcquire replaces the camera opener built from configuration.
func WithAcquire(acquire AcquireFunc) Option {
	return func(d *Daemon) { d.acquire = acquire }
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool              `json:"running"`
	PID          int               `json:"pid"`
	LockPath     string            `json:"lock_path"`
	CatalogPath  string            `json:"catalog_path"`
	APIAddress   string            `json:"api_address,omitempty"`
	Session      *session.Snapshot `json:"session,omitempty"`
	Dependencies []deps.Status     `json:"dependencies"`
}

// New constructs a daemon. The recognizer is built from cfg unless supplied;
// a missing classifier only fails StartSession so the content API still runs.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and catalog store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.recognizer == nil {
		d.recognizer, d.recognizerErr = NewRecognizer(cfg)
	}
	if d.acquire == nil {
		d.acquire = NewAcquire(cfg, logger)
	}
	d.content = NewContentService(cfg, store, logger)
	d.provider = NewProvider(cfg, d.content)
	return d, nil
}

// Start acquires the daemon lock, serves the API and watches for camera
// removal.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another eduvid daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	srv := newAPIServer(d.cfg.Paths.APIBind, d.handler(), d.logger)
	if err := srv.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		logging.ErrorWithContext(d.logger, "api server failed to start", "api_start_failed",
			logging.Error(err),
			logging.String("bind", d.cfg.Paths.APIBind),
			logging.String(logging.FieldErrorHint, "free the port or change paths.api_bind (EDUVID_API_BIND)"),
		)
		return err
	}

	var monitor *camera.Monitor
	if d.cfg.Camera.WatchHotplug && d.cfg.Camera.FramesDir == "" {
		monitor = camera.NewMonitor(d.logger, d.deviceRemoved)
		if err := monitor.Start(runCtx); err != nil {
			logging.WarnWithContext(d.logger, "camera hotplug monitor unavailable", "hotplug_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check netlink permissions"),
				logging.String(logging.FieldImpact, "unplugging the camera is detected only when capture ends"),
			)
		}
	}

	d.mu.Lock()
	d.ctx, d.cancel = runCtx, cancel
	d.api = srv
	d.monitor = monitor
	d.mu.Unlock()

	d.running.Store(true)
	d.logger.Info("eduvid daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("api", srv.address()),
	)
	return nil
}

// Stop closes the live session, stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	sess := d.session
	cancel := d.cancel
	srv := d.api
	monitor := d.monitor
	d.cancel, d.api, d.monitor = nil, nil, nil
	d.mu.Unlock()

	if sess != nil {
		_ = sess.Close()
	}
	if cancel != nil {
		cancel()
	}
	monitor.Stop()
	srv.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
			logging.String(logging.FieldImpact, "the next start may report another instance"),
		)
	}
	d.running.Store(false)
	d.logger.Info("eduvid daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon and releases the recognizer and catalog store.
func (d *Daemon) Close() error {
	d.Stop()
	return errors.Join(recognition.CloseModel(d.recognizer), d.store.Close())
}

// Session returns the current session, live or ended, or nil before the
// first one starts.
func (d *Daemon) Session() *session.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// StartSession starts a live session bound to the daemon's lifetime. It
// returns once the session is detecting or has failed; a failed session is
// returned with its error so callers can report its message.
func (d *Daemon) StartSession() (*session.Session, error) {
	if !d.running.Load() {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "start session", "daemon not running", nil)
	}
	if d.recognizerErr != nil {
		return nil, d.recognizerErr
	}

	d.mu.Lock()
	if d.session != nil && live(d.session.Stage()) {
		d.mu.Unlock()
		return nil, session.ErrActive
	}
	sess := session.New(SessionOptions(d.cfg, d.recognizer, d.acquireWatched, d.provider, d.store, d.logger))
	d.session = sess
	ctx := d.ctx
	d.mu.Unlock()

	if err := sess.Start(ctx); err != nil {
		return sess, err
	}
	go d.unwatchWhenDone(sess)
	return sess, nil
}

// StopSession closes the live session.
func (d *Daemon) StopSession() error {
	sess := d.Session()
	if sess == nil || !live(sess.Stage()) {
		return services.Wrap(services.ErrNotFound, "daemon", "stop session", "no live session", nil)
	}
	return sess.Close()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		LockPath:    d.lockPath,
		CatalogPath: d.store.Path(),
		Dependencies: deps.CheckBinaries([]deps.Requirement{{
			Name:        "FFmpeg",
			Command:     d.cfg.Camera.FFmpegBinary,
			Description: "Camera capture",
			Optional:    d.cfg.Camera.FramesDir != "",
		}}),
	}
	d.mu.Lock()
	status.APIAddress = d.api.address()
	sess := d.session
	d.mu.Unlock()
	if sess != nil {
		snap := sess.Snapshot()
		status.Session = &snap
	}
	return status
}

func (d *Daemon) acquireWatched(ctx context.Context) (camera.Stream, error) {
	stream, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	monitor := d.monitor
	d.mu.Unlock()
	monitor.Watch(stream.Device())
	return stream, nil
}

func (d *Daemon) unwatchWhenDone(sess *session.Session) {
	<-sess.Done()
	d.mu.Lock()
	monitor := d.monitor
	current := d.session == sess
	d.mu.Unlock()
	if current {
		monitor.Watch("")
	}
}

func (d *Daemon) deviceRemoved(device string) {
	d.logger.Info("camera removed",
		logging.String(logging.FieldEventType, "camera_removed"),
		logging.String("device", device),
	)
	if sess := d.Session(); sess != nil {
		sess.DeviceRemoved(device)
	}
}

func live(stage session.Stage) bool {
	return stage == session.StageLoading || stage == session.StageDetecting
}
